package wframe

import (
	"github.com/rechdan/w2sniff/pkg/wpkt"
)

// Extracted is one frame pulled out of a reassembly buffer by Extract.
type Extracted struct {
	Raw []byte // the frame's bytes as they appeared on the wire, pre-decode
}

// Extract pulls as many complete frames as currently available out of buf,
// returning the extracted frames and the unconsumed remainder of buf.
//
// A frame is available once its declared size (the little-endian u16 at
// offset 0) is no larger than len(buf). If the declared size is shorter than
// a header, extraction stops and the buffer is returned unconsumed
// (spec.md §9: the safer of the two documented policies for
// FrameMalformed/declared-size-too-short). Extract never blocks and never
// mutates buf's backing array beyond the returned remainder.
func Extract(buf []byte) (frames []Extracted, rest []byte) {
	for len(buf) >= 2 {
		size, ok := DeclaredSize(buf)
		if !ok {
			break
		}
		if size < wpkt.Size {
			// malformed: shorter than a header. Leave the buffer in place;
			// the prefix does not change as more data is appended, so later
			// calls stop at the same point unless the caller drops bytes
			// (see ErrMalformed).
			break
		}
		if size > len(buf) {
			break // frame not fully buffered yet
		}
		raw := make([]byte, size)
		copy(raw, buf[:size])
		frames = append(frames, Extracted{Raw: raw})
		buf = buf[size:]
	}
	return frames, buf
}

// Decode applies t to the payload of a raw, just-extracted frame (the bytes
// after the 12-byte header) and returns the fully decoded frame, i.e. the
// bytes that get recorded and displayed. The header itself is left
// untouched so it stays directly readable (spec.md §3's Header is a view
// over the first 12 bytes of the decoded frame).
func Decode(t FrameTransform, raw []byte) []byte {
	b := make([]byte, len(raw))
	copy(b, raw)
	if len(b) > wpkt.Size {
		t.Decode(b[wpkt.Size:])
	}
	return b
}

// Encode is the inverse of Decode: given a previously decoded frame, it
// reconstructs the bytes as they appeared on the wire.
func Encode(t FrameTransform, decoded []byte) []byte {
	b := make([]byte, len(decoded))
	copy(b, decoded)
	if len(b) > wpkt.Size {
		t.Encode(b[wpkt.Size:])
	}
	return b
}
