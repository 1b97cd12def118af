package wire

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Strings are written as ASCII and read back as UTF-8. The server relies on
// this exact byte layout, so the two directions intentionally differ.

const asciiReplacement = '?'

// StringSize returns the number of bytes WriteString uses for s, terminator included.
func StringSize(s string) int {
	return utf8.RuneCountInString(s) + 1
}

// WriteString writes s as ASCII followed by a 0x00 terminator.
// Runes outside the ASCII range are written as '?'.
func (b *Buffer) WriteString(s string) error {
	n := StringSize(s)
	if err := b.check("string", n); err != nil {
		return err
	}
	i := b.pos
	for _, r := range s {
		if r >= utf8.RuneSelf {
			r = asciiReplacement
		}
		b.mem[i] = byte(r)
		i++
	}
	b.mem[i] = 0
	b.advance(n)
	return nil
}

// ReadString reads bytes up to the next 0x00 and decodes them as UTF-8.
// Invalid sequences decode to U+FFFD.
func (b *Buffer) ReadString() (string, error) {
	if err := b.check("string", 0); err != nil {
		return "", err
	}
	span := b.mem[b.pos:]
	end := bytes.IndexByte(span, 0)
	if end < 0 {
		return "", &OpError{Op: "string", Pos: b.pos, Size: len(span), Err: ErrMalformedString}
	}

	s, err := decodeUTF8(span[:end])
	if err != nil {
		return "", &OpError{Op: "string", Pos: b.pos, Size: end, Err: err}
	}
	b.advance(end + 1)
	return s, nil
}

func decodeUTF8(p []byte) (string, error) {
	if utf8.Valid(p) {
		return string(p), nil
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
