package wrecord

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// decodeLegacyString decodes a fixed-width, zero-terminated legacy-encoded
// (CP-1252) byte slot to a UTF-8 string, trimming surrounding whitespace and
// the terminator.
func decodeLegacyString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		// CP-1252 has no undefined code points below 0x100, so this can't
		// realistically fail; fall back to a lossless byte-for-byte view.
		s = b
	}
	return strings.TrimSpace(string(s))
}

// encodeLegacyString encodes s to a fixed-width legacy-encoded (CP-1252)
// slot of exactly n bytes, dropping embedded nulls and zero-padding (or
// truncating) to length n.
func encodeLegacyString(s string, n int) []byte {
	// ReplaceUnsupported substitutes characters with no CP-1252
	// representation instead of failing the whole encode.
	b, _ := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).Bytes([]byte(s))
	b = bytes.ReplaceAll(b, []byte{0}, nil)

	out := make([]byte, n)
	copy(out, b)
	return out
}
