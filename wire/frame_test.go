package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrame(t *testing.T) {
	t.Run("header order", func(t *testing.T) {
		b, err := NewFrame(Header{Domain: DomainDefault, Opcode: 0x0C}, 4)
		if err != nil {
			t.Fatal(err)
		}
		_ = b.WriteU32(0x01020304)
		if !bytes.Equal(b.Bytes(), []byte{0x01, 0x0C, 0x04, 0x03, 0x02, 0x01}) {
			t.Errorf("frame = % x", b.Bytes())
		}

		r := Wrap(b.Bytes(), 1)
		h, err := r.ReadHeader()
		if err != nil {
			t.Fatal(err)
		}
		if h.Domain != DomainDefault || h.Opcode != 0x0C {
			t.Errorf("header = %v", h)
		}
		if r.Pos() != HeaderSize {
			t.Errorf("pos = %d", r.Pos())
		}
	})

	t.Run("short header", func(t *testing.T) {
		if _, err := Wrap([]byte{0x01}, 1).ReadHeader(); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("domains", func(t *testing.T) {
		if !DomainGlobal.Known() || !DomainDefault.Known() || Domain(7).Known() {
			t.Error("unexpected Known result")
		}
		if s := (Header{Domain: DomainGlobal, Opcode: 2}).String(); s != "global/0x02" {
			t.Errorf("header string = %q", s)
		}
		if s := Domain(7).String(); s != "domain(0x07)" {
			t.Errorf("domain string = %q", s)
		}
	})

	t.Run("negative payload", func(t *testing.T) {
		if _, err := NewFrame(Header{}, -1); !errors.Is(err, ErrNegativeLength) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestBlob(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		p := []byte("TRUEVISION-XFILE")
		b := New(BlobSize(p), 1)
		if err := b.WriteBlob(p); err != nil {
			t.Fatal(err)
		}
		_ = b.Seek(0)
		got, err := b.ReadBlob()
		if err != nil || !bytes.Equal(got, p) {
			t.Errorf("ReadBlob = %q, %v", got, err)
		}
	})

	t.Run("length exceeds frame", func(t *testing.T) {
		b := Wrap([]byte{10, 0, 0, 0, 1, 2}, 1)
		if _, err := b.ReadBlob(); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("err = %v", err)
		}
		if b.Pos() != 0 {
			t.Errorf("cursor moved to %d", b.Pos())
		}
	})

	t.Run("negative length", func(t *testing.T) {
		b := Wrap([]byte{0xFF, 0xFF, 0xFF, 0xFF}, 1)
		if _, err := b.ReadBlob(); !errors.Is(err, ErrNegativeLength) {
			t.Fatalf("err = %v", err)
		}
		if b.Pos() != 0 {
			t.Errorf("cursor moved to %d", b.Pos())
		}
	})

	t.Run("write does not fit", func(t *testing.T) {
		b := New(5, 1)
		if err := b.WriteBlob([]byte{1, 2}); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("err = %v", err)
		}
		if b.Pos() != 0 {
			t.Errorf("cursor moved to %d", b.Pos())
		}
	})
}
