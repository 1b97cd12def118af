package wire

import "fmt"

// Frame layout:
//
//	------------------------------------------
//	|   1    |   1    |        N            |
//	------------------------------------------
//	| domain | opcode | payload             |
//	------------------------------------------
//
// There is no length prefix; one transport message carries exactly one frame.

// HeaderSize is the size of the frame header.
const HeaderSize = 2

const (
	// DomainGlobal routes session-level messages (errors, ping, auth).
	DomainGlobal Domain = 0x00
	// DomainDefault routes application messages (games, chat, maps).
	DomainDefault Domain = 0x01
)

type (
	// Domain selects one of the two opcode spaces multiplexed on the connection.
	Domain byte
	// Opcode is the operation within a domain.
	Opcode byte
	// Header is the first two bytes of every frame.
	Header struct {
		Domain Domain
		Opcode Opcode
	}
)

// Known reports whether d is one of the routing domains.
func (d Domain) Known() bool {
	return d == DomainGlobal || d == DomainDefault
}

func (d Domain) String() string {
	switch d {
	case DomainGlobal:
		return "global"
	case DomainDefault:
		return "default"
	default:
		return fmt.Sprintf("domain(0x%02x)", byte(d))
	}
}

func (h Header) String() string {
	return fmt.Sprintf("%s/0x%02x", h.Domain, byte(h.Opcode))
}

// NewFrame allocates an unaligned buffer for a header plus payload bytes and
// writes the header. The cursor is left at the start of the payload.
func NewFrame(h Header, payload int) (*Buffer, error) {
	if payload < 0 {
		return nil, &OpError{Op: "frame", Size: payload, Err: ErrNegativeLength}
	}
	b := New(HeaderSize+payload, 1)
	if err := b.WriteHeader(h); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteHeader writes the domain then the opcode.
func (b *Buffer) WriteHeader(h Header) error {
	if err := b.WriteU8(byte(h.Domain)); err != nil {
		return err
	}
	return b.WriteU8(byte(h.Opcode))
}

// ReadHeader reads the domain then the opcode.
func (b *Buffer) ReadHeader() (Header, error) {
	d, err := b.ReadU8()
	if err != nil {
		return Header{}, err
	}
	op, err := b.ReadU8()
	if err != nil {
		return Header{}, err
	}
	return Header{Domain: Domain(d), Opcode: Opcode(op)}, nil
}

// BlobSize returns the number of bytes WriteBlob uses for p.
func BlobSize(p []byte) int {
	return sizeU32 + len(p)
}

// WriteBlob writes an int32 length followed by p.
func (b *Buffer) WriteBlob(p []byte) error {
	if err := b.check("blob", BlobSize(p)); err != nil {
		return err
	}
	start := b.pos
	if err := b.WriteI32(int32(len(p))); err != nil {
		return err
	}
	if err := b.WriteBytes(p); err != nil {
		b.pos = start
		return err
	}
	return nil
}

// ReadBlob reads an int32 length and then exactly that many bytes.
// The cursor is left unchanged if the blob does not fit.
func (b *Buffer) ReadBlob() ([]byte, error) {
	start := b.pos
	n, err := b.ReadI32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		b.pos = start
		return nil, &OpError{Op: "blob", Pos: start, Size: int(n), Err: ErrNegativeLength}
	}
	p, err := b.ReadBytes(int(n))
	if err != nil {
		b.pos = start
		return nil, err
	}
	return p, nil
}
