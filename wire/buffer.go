// Package wire implements the alignment-aware binary buffer used to encode
// outgoing requests and decode incoming frames.
//
// A Buffer has a single cursor shared between reads and writes. Every typed
// accessor checks the access against the physical region first, then moves the
// cursor past the value and rounds it up to the buffer's alignment.
// All numbers are little-endian.
package wire

import (
	"encoding/binary"
	"math"
)

const (
	sizeBool = 1
	sizeU8   = 1
	sizeU16  = 2
	sizeU32  = 4
	sizeF32  = 4
	sizeF64  = 8
)

// Buffer is a fixed-size byte region with an aligned read/write cursor.
// A Buffer must not be used from more than one goroutine at a time.
type Buffer struct {
	mem       []byte
	length    int
	alignment int
	pos       int
}

// New allocates a buffer whose region is length rounded up to the alignment.
func New(length, alignment int) *Buffer {
	b := &Buffer{}
	b.Allocate(length, alignment)
	return b
}

// Wrap returns a buffer reading from p. The bytes are not copied.
func Wrap(p []byte, alignment int) *Buffer {
	b := &Buffer{alignment: normalizeAlignment(alignment)}
	b.Wrap(p)
	return b
}

// Allocate replaces the region with a fresh zeroed one and resets the cursor.
func (b *Buffer) Allocate(length, alignment int) {
	if length < 0 {
		length = 0
	}
	b.alignment = normalizeAlignment(alignment)
	b.length = length
	b.mem = make([]byte, alignUp(length, b.alignment))
	b.pos = 0
}

// Wrap replaces the backing region with p, keeping the alignment.
// The cursor goes back to the start of the region.
func (b *Buffer) Wrap(p []byte) {
	if b.alignment == 0 {
		b.alignment = 1
	}
	b.mem = p
	b.length = len(p)
	b.pos = 0
}

// Bytes returns the logical region.
func (b *Buffer) Bytes() []byte {
	return b.mem[:b.length]
}

// Written returns the region between the start and the cursor.
func (b *Buffer) Written() []byte {
	return b.mem[:min(b.pos, len(b.mem))]
}

// Len returns the logical length of the buffer.
func (b *Buffer) Len() int { return b.length }

// Cap returns the physical size of the region.
func (b *Buffer) Cap() int { return len(b.mem) }

// Pos returns the cursor.
func (b *Buffer) Pos() int { return b.pos }

// Alignment returns the cursor stride.
func (b *Buffer) Alignment() int { return b.alignment }

// Remaining returns the number of bytes between the cursor and the end of the region.
func (b *Buffer) Remaining() int {
	return max(len(b.mem)-b.pos, 0)
}

// Seek moves the cursor to pos rounded up to the alignment.
func (b *Buffer) Seek(pos int) error {
	return b.seek(pos, true)
}

// SeekUnaligned moves the cursor to pos exactly.
func (b *Buffer) SeekUnaligned(pos int) error {
	return b.seek(pos, false)
}

func (b *Buffer) seek(pos int, align bool) error {
	if pos < 0 {
		return &OpError{Op: "seek", Pos: b.pos, Size: pos, Err: ErrNegativeLength}
	}
	if align {
		pos = alignUp(pos, b.alignment)
	}
	if pos > len(b.mem) {
		return &OpError{Op: "seek", Pos: b.pos, Size: pos - b.pos, Err: ErrOutOfBounds}
	}
	b.pos = pos
	return nil
}

// Zero clears the region.
func (b *Buffer) Zero() {
	clear(b.mem)
}

// Fill sets every byte of the region to v.
func (b *Buffer) Fill(v byte) {
	for i := range b.mem {
		b.mem[i] = v
	}
}

// Clone returns a deep copy including the cursor.
func (b *Buffer) Clone() *Buffer {
	mem := make([]byte, len(b.mem))
	copy(mem, b.mem)
	return &Buffer{
		mem:       mem,
		length:    b.length,
		alignment: b.alignment,
		pos:       b.pos,
	}
}

// CopyTo copies n bytes starting at srcOff into dst at dstOff.
// Neither cursor moves.
func (b *Buffer) CopyTo(dst *Buffer, srcOff, dstOff, n int) error {
	if srcOff < 0 || dstOff < 0 || n < 0 {
		return &OpError{Op: "copy", Pos: srcOff, Size: n, Err: ErrNegativeLength}
	}
	if srcOff+n > len(b.mem) {
		return &OpError{Op: "copy", Pos: srcOff, Size: n, Err: ErrOutOfBounds}
	}
	if dstOff+n > len(dst.mem) {
		return &OpError{Op: "copy", Pos: dstOff, Size: n, Err: ErrOutOfBounds}
	}
	copy(dst.mem[dstOff:dstOff+n], b.mem[srcOff:srcOff+n])
	return nil
}

// Resize grows or shrinks the region to exactly n bytes, keeping its contents.
// The logical length becomes n and the cursor is clamped to the new end.
func (b *Buffer) Resize(n int) error {
	if n < 0 {
		return &OpError{Op: "resize", Pos: b.pos, Size: n, Err: ErrNegativeLength}
	}
	mem := make([]byte, n)
	copy(mem, b.mem)
	b.mem = mem
	b.length = n
	b.pos = min(b.pos, n)
	return nil
}

// check validates an access of size bytes at the cursor.
func (b *Buffer) check(op string, size int) error {
	if size < 0 {
		return &OpError{Op: op, Pos: b.pos, Size: size, Err: ErrNegativeLength}
	}
	if b.pos+size > len(b.mem) {
		return &OpError{Op: op, Pos: b.pos, Size: size, Err: ErrOutOfBounds}
	}
	return nil
}

func (b *Buffer) advance(n int) {
	b.pos = alignUp(b.pos+n, b.alignment)
}

// WriteBool writes 1 for true and 0 for false.
func (b *Buffer) WriteBool(v bool) error {
	var u uint8
	if v {
		u = 1
	}
	return b.writeU8("bool", u)
}

// WriteU8 writes one byte.
func (b *Buffer) WriteU8(v uint8) error {
	return b.writeU8("u8", v)
}

// WriteI8 writes one two's-complement byte.
func (b *Buffer) WriteI8(v int8) error {
	return b.writeU8("i8", uint8(v))
}

func (b *Buffer) writeU8(op string, v uint8) error {
	if err := b.check(op, sizeU8); err != nil {
		return err
	}
	b.mem[b.pos] = v
	b.advance(sizeU8)
	return nil
}

// WriteU16 writes a little-endian uint16.
func (b *Buffer) WriteU16(v uint16) error {
	return b.writeU16("u16", v)
}

// WriteI16 writes a little-endian int16.
func (b *Buffer) WriteI16(v int16) error {
	return b.writeU16("i16", uint16(v))
}

func (b *Buffer) writeU16(op string, v uint16) error {
	if err := b.check(op, sizeU16); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b.mem[b.pos:], v)
	b.advance(sizeU16)
	return nil
}

// WriteU32 writes a little-endian uint32.
func (b *Buffer) WriteU32(v uint32) error {
	return b.writeU32("u32", v)
}

// WriteI32 writes a little-endian int32.
func (b *Buffer) WriteI32(v int32) error {
	return b.writeU32("i32", uint32(v))
}

// WriteF32 writes an IEEE-754 float32.
func (b *Buffer) WriteF32(v float32) error {
	return b.writeU32("f32", math.Float32bits(v))
}

func (b *Buffer) writeU32(op string, v uint32) error {
	if err := b.check(op, sizeU32); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b.mem[b.pos:], v)
	b.advance(sizeU32)
	return nil
}

// WriteF64 writes an IEEE-754 float64.
func (b *Buffer) WriteF64(v float64) error {
	if err := b.check("f64", sizeF64); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b.mem[b.pos:], math.Float64bits(v))
	b.advance(sizeF64)
	return nil
}

// WriteBytes copies p into the region.
func (b *Buffer) WriteBytes(p []byte) error {
	if err := b.check("bytes", len(p)); err != nil {
		return err
	}
	copy(b.mem[b.pos:], p)
	b.advance(len(p))
	return nil
}

// ReadBool reads one byte; 1 is true, anything else is false.
func (b *Buffer) ReadBool() (bool, error) {
	u, err := b.readU8("bool")
	return u == 1, err
}

// ReadU8 reads one byte.
func (b *Buffer) ReadU8() (uint8, error) {
	return b.readU8("u8")
}

// ReadI8 reads one two's-complement byte.
func (b *Buffer) ReadI8() (int8, error) {
	u, err := b.readU8("i8")
	return int8(u), err
}

func (b *Buffer) readU8(op string) (uint8, error) {
	if err := b.check(op, sizeU8); err != nil {
		return 0, err
	}
	v := b.mem[b.pos]
	b.advance(sizeU8)
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (b *Buffer) ReadU16() (uint16, error) {
	return b.readU16("u16")
}

// ReadI16 reads a little-endian int16.
func (b *Buffer) ReadI16() (int16, error) {
	u, err := b.readU16("i16")
	return int16(u), err
}

func (b *Buffer) readU16(op string) (uint16, error) {
	if err := b.check(op, sizeU16); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(b.mem[b.pos:])
	b.advance(sizeU16)
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (b *Buffer) ReadU32() (uint32, error) {
	return b.readU32("u32")
}

// ReadI32 reads a little-endian int32.
func (b *Buffer) ReadI32() (int32, error) {
	u, err := b.readU32("i32")
	return int32(u), err
}

// ReadF32 reads an IEEE-754 float32.
func (b *Buffer) ReadF32() (float32, error) {
	u, err := b.readU32("f32")
	return math.Float32frombits(u), err
}

func (b *Buffer) readU32(op string) (uint32, error) {
	if err := b.check(op, sizeU32); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(b.mem[b.pos:])
	b.advance(sizeU32)
	return v, nil
}

// ReadF64 reads an IEEE-754 float64.
func (b *Buffer) ReadF64() (float64, error) {
	if err := b.check("f64", sizeF64); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(b.mem[b.pos:]))
	b.advance(sizeF64)
	return v, nil
}

// ReadBytes copies the next n bytes into a new slice.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if err := b.check("bytes", n); err != nil {
		return nil, err
	}
	p := make([]byte, n)
	copy(p, b.mem[b.pos:b.pos+n])
	b.advance(n)
	return p, nil
}

func normalizeAlignment(a int) int {
	if a <= 1 {
		return 1
	}
	p := 1
	for p < a {
		p <<= 1
	}
	return p
}

// alignUp rounds n up to a multiple of a, which must be a power of two.
func alignUp(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}
