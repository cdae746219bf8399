// Package wframe extracts and decodes length-prefixed frames from a
// reassembly buffer, per spec.md §4.2.
package wframe

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rechdan/w2sniff/pkg/wpkt"
)

// Direction is the direction of a Frame relative to the local client.
type Direction uint8

const (
	// SND is client -> server.
	SND Direction = iota
	// RCV is server -> client.
	RCV
)

func (d Direction) String() string {
	switch d {
	case SND:
		return "SND"
	case RCV:
		return "RCV"
	default:
		return "?"
	}
}

// ErrMalformed describes a frame whose declared size is shorter than a
// header. Extract does not return it: on such a frame it stops and leaves
// the buffer in place.
var ErrMalformed = errors.New("wframe: malformed frame (declared size < header size)")

// Frame is a captured, decoded application-layer message.
type Frame struct {
	ID        uint64
	Direction Direction
	Data      []byte // raw bytes as they appeared after decode, length >= wpkt.Size
	Header    wpkt.Header
	Selected  int // byte index selected by the UI; scoped to this Frame
}

// NewFrame builds a Frame from decoded bytes. data must be at least
// [wpkt.Size] bytes; a copy is made so the caller's buffer can be reused.
func NewFrame(id uint64, dir Direction, data []byte) (Frame, error) {
	if len(data) < wpkt.Size {
		return Frame{}, fmt.Errorf("wframe: frame too short (%d < %d)", len(data), wpkt.Size)
	}
	h, err := wpkt.Deserialize(data[:wpkt.Size])
	if err != nil {
		return Frame{}, fmt.Errorf("wframe: parse header: %w", err)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return Frame{
		ID:        id,
		Direction: dir,
		Data:      cp,
		Header:    h,
	}, nil
}

// DeclaredSize reads the little-endian u16 length prefix at the start of buf,
// without requiring the rest of the frame to be present yet.
func DeclaredSize(buf []byte) (int, bool) {
	if len(buf) < 2 {
		return 0, false
	}
	return int(binary.LittleEndian.Uint16(buf)), true
}
