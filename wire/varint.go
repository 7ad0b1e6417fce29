// Package wire implements the binary frame codec (C1) described in the
// collaboration session wire protocol. The authenticated envelope (C2) that
// wraps these frames lives in package envelope.
package wire

import "fmt"

// maxVarintBytes bounds how many bytes a LEB128 varint may occupy. 10 bytes
// covers a full 64-bit value with continuation bits; anything longer is a
// malformed or adversarial encoding.
const maxVarintBytes = 10

// PutUvarint encodes v as an unsigned LEB128 varint (7 data bits per byte,
// MSB set on every byte but the last) and appends it to dst.
func PutUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Uvarint decodes an unsigned LEB128 varint from the front of b.
//
// It rejects encodings longer than maxVarintBytes and non-minimal forms
// (a final byte of 0x00 after at least one continuation byte, which could
// have been encoded shorter) since both are forward-compatibility and
// determinism hazards for a wire format shared across implementations.
func Uvarint(b []byte) (v uint64, n int, err error) {
	var shift uint
	for i := 0; i < len(b); i++ {
		if i >= maxVarintBytes {
			return 0, 0, fmt.Errorf("wire: varint exceeds %d bytes", maxVarintBytes)
		}
		c := b[i]
		if c < 0x80 {
			v |= uint64(c) << shift
			if i > 0 && c == 0 {
				return 0, 0, fmt.Errorf("wire: non-minimal varint encoding")
			}
			return v, i + 1, nil
		}
		v |= uint64(c&0x7f) << shift
		shift += 7
	}
	return 0, 0, fmt.Errorf("wire: truncated varint")
}
