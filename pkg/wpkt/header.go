// Package wpkt implements the 12-byte wire header shared by the sniffer and
// the record library.
package wpkt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Size is the length in bytes of a serialized Header.
const Size = 12

// Header is the packed, little-endian wire header present at the start of
// every frame. Size covers the header and payload together.
type Header struct {
	Size      uint16
	Key       uint8
	Checksum  uint8
	PacketID  uint16
	ClientID  uint16
	Timestamp uint32
}

// Deserialize parses a Header from the first [Size] bytes of b. b must be
// exactly [Size] bytes long.
func Deserialize(b []byte) (Header, error) {
	var h Header
	if len(b) != Size {
		return h, fmt.Errorf("wpkt: deserialize: want %d bytes, got %d", Size, len(b))
	}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("wpkt: deserialize: %w", err)
	}
	return h, nil
}

// Serialize packs h into exactly [Size] bytes.
func Serialize(h Header) []byte {
	var b bytes.Buffer
	b.Grow(Size)
	// Header has no padding on any platform we target (all fields are
	// naturally aligned for packed little-endian encoding), so a plain
	// binary.Write round-trips exactly like the layout in spec.md §3.
	if err := binary.Write(&b, binary.LittleEndian, h); err != nil {
		panic(fmt.Errorf("wpkt: serialize: %w", err)) // only fails for unsupported types, which Header never has
	}
	return b.Bytes()
}
