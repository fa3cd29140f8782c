package transaction

import (
	"bytes"
	"fmt"
	"io"
)

const maxShortVecLen = 0xFFFF

// appendShortVecLen appends a compact-u16 length prefix: 7 bits per byte, high bit set on continuation.
func appendShortVecLen(buf []byte, n int) ([]byte, error) {
	if n < 0 || n > maxShortVecLen {
		return nil, fmt.Errorf("length %d out of compact-u16 range", n)
	}
	rem := uint16(n)
	for {
		b := byte(rem & 0x7F)
		rem >>= 7
		if rem == 0 {
			return append(buf, b), nil
		}
		buf = append(buf, b|0x80)
	}
}

func readShortVecLen(r *bytes.Reader) (int, error) {
	var value int
	for i := 0; i < 3; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("failed to read compact-u16: %w", err)
		}
		value |= int(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			if i > 0 && b == 0 {
				return 0, fmt.Errorf("non-canonical compact-u16 encoding")
			}
			if value > maxShortVecLen {
				return 0, fmt.Errorf("compact-u16 value %d out of range", value)
			}
			return value, nil
		}
	}
	return 0, fmt.Errorf("compact-u16 encoding longer than 3 bytes")
}

func readBytes(r *bytes.Reader, n int) ([]byte, error) {
	if n > r.Len() {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
