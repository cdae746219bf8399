package wrecord

import (
	"encoding/binary"
	"fmt"
)

const strdefMessageSize = 128

// StrdefMessageCount is the compile-time message count referenced by the
// source as STRDEF_MESSAGES_LEN (spec.md §3, §9 Open Questions). The real
// client's value was not reproduced in the retrieved sources; this is a
// placeholder a downstream integrator can override before first use if the
// original client used a different count.
var StrdefMessageCount = 300

// StrdefSize returns the exact on-disk size of strdef.bin for the current
// [StrdefMessageCount].
func StrdefSize() int {
	return StrdefMessageCount*strdefMessageSize + 4
}

// Strdef is the decoded form of strdef.bin: a table of legacy-encoded
// message strings, no obfuscation.
type Strdef struct {
	Messages []string
	Sentinel uint32
}

// DecodeStrdef decodes a raw strdef.bin image. buf must be exactly
// [StrdefSize] bytes.
func DecodeStrdef(buf []byte) (Strdef, error) {
	var sd Strdef
	if want := StrdefSize(); len(buf) != want {
		return sd, fmt.Errorf("%w: strdef: want %d bytes, got %d", ErrRecordSize, want, len(buf))
	}

	sd.Messages = make([]string, StrdefMessageCount)

	err := guardDecode(func() error {
		off := 0
		for i := range sd.Messages {
			sd.Messages[i] = decodeLegacyString(buf[off : off+strdefMessageSize])
			off += strdefMessageSize
		}
		sd.Sentinel = binary.LittleEndian.Uint32(buf[off : off+4])
		return nil
	})
	return sd, err
}

// EncodeStrdef encodes sd back to an on-disk strdef.bin image of exactly
// [StrdefSize] bytes. If sd.Messages has fewer entries than
// [StrdefMessageCount], the remainder are written as empty slots; extra
// entries beyond StrdefMessageCount are ignored.
func EncodeStrdef(sd Strdef) []byte {
	buf := make([]byte, StrdefSize())

	off := 0
	for i := 0; i < StrdefMessageCount; i++ {
		var s string
		if i < len(sd.Messages) {
			s = sd.Messages[i]
		}
		copy(buf[off:off+strdefMessageSize], encodeLegacyString(s, strdefMessageSize))
		off += strdefMessageSize
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], sd.Sentinel)
	return buf
}
