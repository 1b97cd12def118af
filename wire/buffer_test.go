package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

var alignments = []int{1, 2, 4, 8}

func TestBufferRoundTrip(t *testing.T) {
	type step struct {
		name  string
		write func(*Buffer) error
		read  func(*Buffer) (any, error)
		want  any
	}
	steps := []step{
		{"bool", func(b *Buffer) error { return b.WriteBool(true) }, func(b *Buffer) (any, error) { return b.ReadBool() }, true},
		{"bool false", func(b *Buffer) error { return b.WriteBool(false) }, func(b *Buffer) (any, error) { return b.ReadBool() }, false},
		{"u8", func(b *Buffer) error { return b.WriteU8(0xFE) }, func(b *Buffer) (any, error) { return b.ReadU8() }, uint8(0xFE)},
		{"i8", func(b *Buffer) error { return b.WriteI8(-128) }, func(b *Buffer) (any, error) { return b.ReadI8() }, int8(-128)},
		{"u16", func(b *Buffer) error { return b.WriteU16(0xBEEF) }, func(b *Buffer) (any, error) { return b.ReadU16() }, uint16(0xBEEF)},
		{"i16", func(b *Buffer) error { return b.WriteI16(-12345) }, func(b *Buffer) (any, error) { return b.ReadI16() }, int16(-12345)},
		{"u32", func(b *Buffer) error { return b.WriteU32(math.MaxUint32) }, func(b *Buffer) (any, error) { return b.ReadU32() }, uint32(math.MaxUint32)},
		{"i32", func(b *Buffer) error { return b.WriteI32(math.MinInt32) }, func(b *Buffer) (any, error) { return b.ReadI32() }, int32(math.MinInt32)},
		{"f32", func(b *Buffer) error { return b.WriteF32(-3.25) }, func(b *Buffer) (any, error) { return b.ReadF32() }, float32(-3.25)},
		{"f64", func(b *Buffer) error { return b.WriteF64(math.MaxFloat64) }, func(b *Buffer) (any, error) { return b.ReadF64() }, math.MaxFloat64},
		{"f64 small", func(b *Buffer) error { return b.WriteF64(1.0 / 3.0) }, func(b *Buffer) (any, error) { return b.ReadF64() }, 1.0 / 3.0},
		{"string", func(b *Buffer) error { return b.WriteString("abc") }, func(b *Buffer) (any, error) { return b.ReadString() }, "abc"},
		{"empty string", func(b *Buffer) error { return b.WriteString("") }, func(b *Buffer) (any, error) { return b.ReadString() }, ""},
	}

	for _, align := range alignments {
		b := New(256, align)
		for _, s := range steps {
			if err := s.write(b); err != nil {
				t.Fatalf("align %d: write %s: %v", align, s.name, err)
			}
			if b.Pos()%align != 0 {
				t.Fatalf("align %d: cursor %d not aligned after write %s", align, b.Pos(), s.name)
			}
		}
		if err := b.WriteBytes([]byte{1, 2, 3, 4, 5}); err != nil {
			t.Fatalf("align %d: write bytes: %v", align, err)
		}

		if err := b.Seek(0); err != nil {
			t.Fatal(err)
		}
		for _, s := range steps {
			got, err := s.read(b)
			if err != nil {
				t.Fatalf("align %d: read %s: %v", align, s.name, err)
			}
			if got != s.want {
				t.Errorf("align %d: %s = %v, want %v", align, s.name, got, s.want)
			}
			if b.Pos()%align != 0 {
				t.Fatalf("align %d: cursor %d not aligned after read %s", align, b.Pos(), s.name)
			}
		}
		p, err := b.ReadBytes(5)
		if err != nil {
			t.Fatalf("align %d: read bytes: %v", align, err)
		}
		if !bytes.Equal(p, []byte{1, 2, 3, 4, 5}) {
			t.Errorf("align %d: bytes = %v", align, p)
		}
	}
}

func TestBufferLayout(t *testing.T) {
	t.Run("little endian", func(t *testing.T) {
		b := New(6, 1)
		_ = b.WriteU16(0x0102)
		_ = b.WriteU32(0x03040506)
		if !bytes.Equal(b.Bytes(), []byte{0x02, 0x01, 0x06, 0x05, 0x04, 0x03}) {
			t.Errorf("layout = % x", b.Bytes())
		}
	})

	t.Run("physical size is aligned", func(t *testing.T) {
		b := New(5, 4)
		if b.Cap() != 8 || b.Len() != 5 {
			t.Errorf("cap %d len %d, want 8 and 5", b.Cap(), b.Len())
		}
	})

	t.Run("alignment rounds to power of two", func(t *testing.T) {
		if a := New(8, 3).Alignment(); a != 4 {
			t.Errorf("alignment = %d, want 4", a)
		}
		if a := New(8, 0).Alignment(); a != 1 {
			t.Errorf("alignment = %d, want 1", a)
		}
	})

	t.Run("padding after write", func(t *testing.T) {
		b := New(16, 4)
		_ = b.WriteU8(7)
		if b.Pos() != 4 {
			t.Errorf("pos = %d, want 4", b.Pos())
		}
		_ = b.WriteU16(1)
		if b.Pos() != 8 {
			t.Errorf("pos = %d, want 8", b.Pos())
		}
	})

	t.Run("bool reads only one as true", func(t *testing.T) {
		b := Wrap([]byte{2, 1, 0}, 1)
		for _, want := range []bool{false, true, false} {
			got, err := b.ReadBool()
			if err != nil || got != want {
				t.Errorf("ReadBool = %v, %v; want %v", got, err, want)
			}
		}
	})
}

func TestBufferBounds(t *testing.T) {
	t.Run("read u32 with two bytes left", func(t *testing.T) {
		b := Wrap([]byte{1, 2, 3, 4, 5, 6}, 1)
		_ = b.SeekUnaligned(4)
		_, err := b.ReadU32()
		if !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("err = %v, want ErrOutOfBounds", err)
		}
		if b.Pos() != 4 {
			t.Errorf("cursor moved to %d", b.Pos())
		}
		var opErr *OpError
		if !errors.As(err, &opErr) || opErr.Op != "u32" || opErr.Pos != 4 {
			t.Errorf("op error = %+v", opErr)
		}
	})

	t.Run("read from subslice does not see adjacent memory", func(t *testing.T) {
		backing := []byte{1, 2, 0xAA, 0xBB}
		b := Wrap(backing[:2], 1)
		if _, err := b.ReadU32(); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("err = %v, want ErrOutOfBounds", err)
		}
	})

	t.Run("write past end", func(t *testing.T) {
		b := New(3, 1)
		if err := b.WriteU32(1); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("err = %v", err)
		}
		if err := b.WriteString("abc"); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("err = %v", err)
		}
		if err := b.WriteString("ab"); err != nil {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("every accessor fails on empty buffer", func(t *testing.T) {
		b := Wrap(nil, 1)
		reads := []func() error{
			func() error { _, err := b.ReadBool(); return err },
			func() error { _, err := b.ReadU8(); return err },
			func() error { _, err := b.ReadI8(); return err },
			func() error { _, err := b.ReadU16(); return err },
			func() error { _, err := b.ReadI16(); return err },
			func() error { _, err := b.ReadU32(); return err },
			func() error { _, err := b.ReadI32(); return err },
			func() error { _, err := b.ReadF32(); return err },
			func() error { _, err := b.ReadF64(); return err },
			func() error { _, err := b.ReadBytes(1); return err },
		}
		for i, read := range reads {
			if err := read(); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("read %d: err = %v", i, err)
			}
		}
	})

	t.Run("negative length", func(t *testing.T) {
		b := New(4, 1)
		if _, err := b.ReadBytes(-1); !errors.Is(err, ErrNegativeLength) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("cursor rounded past the end", func(t *testing.T) {
		b := Wrap([]byte{1, 2, 3}, 4)
		if _, err := b.ReadU8(); err != nil {
			t.Fatal(err)
		}
		if b.Pos() != 4 {
			t.Fatalf("pos = %d", b.Pos())
		}
		if _, err := b.ReadU8(); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("err = %v", err)
		}
		if _, err := b.ReadString(); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("err = %v", err)
		}
		if b.Remaining() != 0 {
			t.Errorf("remaining = %d", b.Remaining())
		}
	})
}

func TestBufferStrings(t *testing.T) {
	t.Run("ascii survives utf8 decoding", func(t *testing.T) {
		const s = "Hello, World! ~0123456789"
		b := New(StringSize(s), 1)
		if err := b.WriteString(s); err != nil {
			t.Fatal(err)
		}
		_ = b.Seek(0)
		got, err := b.ReadString()
		if err != nil || got != s {
			t.Errorf("ReadString = %q, %v", got, err)
		}
	})

	// Writes are ASCII only while reads decode UTF-8; this mirrors the server.
	t.Run("non ascii is written as question mark", func(t *testing.T) {
		b := New(16, 1)
		if err := b.WriteString("héllo"); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(b.Written(), []byte("h?llo\x00")) {
			t.Errorf("written = %q", b.Written())
		}
	})

	t.Run("utf8 bytes are decoded on read", func(t *testing.T) {
		b := Wrap([]byte("привет\x00"), 1)
		got, err := b.ReadString()
		if err != nil || got != "привет" {
			t.Errorf("ReadString = %q, %v", got, err)
		}
		if b.Pos() != len("привет")+1 {
			t.Errorf("pos = %d", b.Pos())
		}
	})

	t.Run("invalid utf8 is replaced", func(t *testing.T) {
		b := Wrap([]byte{'a', 0xFF, 'b', 0}, 1)
		got, err := b.ReadString()
		if err != nil || got != "a�b" {
			t.Errorf("ReadString = %q, %v", got, err)
		}
	})

	t.Run("unterminated string", func(t *testing.T) {
		b := Wrap([]byte("abc"), 1)
		_, err := b.ReadString()
		if !errors.Is(err, ErrMalformedString) {
			t.Fatalf("err = %v, want ErrMalformedString", err)
		}
		if b.Pos() != 0 {
			t.Errorf("cursor moved to %d", b.Pos())
		}
	})

	t.Run("consecutive strings", func(t *testing.T) {
		b := Wrap([]byte("one\x00two\x00\x00"), 1)
		for _, want := range []string{"one", "two", ""} {
			got, err := b.ReadString()
			if err != nil || got != want {
				t.Errorf("ReadString = %q, %v; want %q", got, err, want)
			}
		}
	})
}

func TestBufferCursor(t *testing.T) {
	t.Run("seek aligns", func(t *testing.T) {
		b := New(16, 4)
		if err := b.Seek(5); err != nil {
			t.Fatal(err)
		}
		if b.Pos() != 8 {
			t.Errorf("pos = %d, want 8", b.Pos())
		}
		if err := b.SeekUnaligned(5); err != nil {
			t.Fatal(err)
		}
		if b.Pos() != 5 {
			t.Errorf("pos = %d, want 5", b.Pos())
		}
	})

	t.Run("seek out of range", func(t *testing.T) {
		b := New(4, 1)
		if err := b.Seek(5); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("err = %v", err)
		}
		if err := b.Seek(-1); !errors.Is(err, ErrNegativeLength) {
			t.Errorf("err = %v", err)
		}
		if err := b.Seek(4); err != nil {
			t.Errorf("seek to end: %v", err)
		}
	})

	t.Run("wrap keeps alignment and resets cursor", func(t *testing.T) {
		b := New(8, 2)
		_ = b.WriteU8(1)
		b.Wrap([]byte{9, 8, 7})
		if b.Alignment() != 2 || b.Pos() != 0 || b.Len() != 3 {
			t.Errorf("alignment %d pos %d len %d", b.Alignment(), b.Pos(), b.Len())
		}
	})
}

func TestBufferRegion(t *testing.T) {
	t.Run("clone is independent", func(t *testing.T) {
		b := New(4, 1)
		_ = b.WriteU16(0xAAAA)
		c := b.Clone()
		_ = c.WriteU16(0xBBBB)
		if b.Pos() != 2 || c.Pos() != 4 {
			t.Errorf("pos %d/%d", b.Pos(), c.Pos())
		}
		if b.Bytes()[2] != 0 {
			t.Errorf("clone wrote through to original")
		}
	})

	t.Run("copy to", func(t *testing.T) {
		src := Wrap([]byte{1, 2, 3, 4}, 1)
		dst := New(4, 1)
		if err := src.CopyTo(dst, 1, 0, 3); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(dst.Bytes(), []byte{2, 3, 4, 0}) {
			t.Errorf("dst = %v", dst.Bytes())
		}
		if err := src.CopyTo(dst, 2, 2, 3); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("resize keeps contents", func(t *testing.T) {
		b := Wrap([]byte{1, 2, 3, 4}, 1)
		_ = b.Seek(4)
		if err := b.Resize(2); err != nil {
			t.Fatal(err)
		}
		if b.Len() != 2 || b.Pos() != 2 || !bytes.Equal(b.Bytes(), []byte{1, 2}) {
			t.Errorf("len %d pos %d bytes %v", b.Len(), b.Pos(), b.Bytes())
		}
		_ = b.Resize(3)
		if !bytes.Equal(b.Bytes(), []byte{1, 2, 0}) {
			t.Errorf("bytes %v", b.Bytes())
		}
	})

	t.Run("zero and fill", func(t *testing.T) {
		b := New(3, 1)
		b.Fill(0x7F)
		if !bytes.Equal(b.Bytes(), []byte{0x7F, 0x7F, 0x7F}) {
			t.Errorf("fill = %v", b.Bytes())
		}
		b.Zero()
		if !bytes.Equal(b.Bytes(), []byte{0, 0, 0}) {
			t.Errorf("zero = %v", b.Bytes())
		}
	})
}
