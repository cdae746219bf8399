package wframe

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/rechdan/w2sniff/pkg/wframe/xorkey"
)

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// spec.md §8 scenario 1: two-frame relay, size=16, header + payload 04 00 05 00.
func TestExtractSingleFrame(t *testing.T) {
	raw := mustDecodeHex("10000000010002000300000004000500")

	frames, rest := Extract(raw)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if len(rest) != 0 {
		t.Fatalf("got %d leftover bytes, want 0", len(rest))
	}
	if !bytes.Equal(frames[0].Raw, raw) {
		t.Error("extracted frame does not match input")
	}
}

// spec.md §8 scenario 2: partial segment split at an arbitrary point.
func TestExtractPartialSegment(t *testing.T) {
	raw := mustDecodeHex("10000000010002000300000004000500")

	frames, rest := Extract(raw[:6])
	if len(frames) != 0 {
		t.Fatalf("got %d frames before full frame arrived, want 0", len(frames))
	}
	if !bytes.Equal(rest, raw[:6]) {
		t.Error("partial buffer should be returned untouched")
	}

	buf := append(rest, raw[6:]...)
	frames, rest = Extract(buf)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if len(rest) != 0 {
		t.Fatalf("got %d leftover bytes, want 0", len(rest))
	}
	if !bytes.Equal(frames[0].Raw, raw) {
		t.Error("reassembled frame does not match input")
	}
}

func TestExtractMultipleFrames(t *testing.T) {
	f1 := mustDecodeHex("10000000010002000300000004000500")
	f2 := mustDecodeHex("10000000050006000700000008000900")
	buf := append(append([]byte{}, f1...), f2...)

	frames, rest := Extract(buf)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if len(rest) != 0 {
		t.Fatalf("got %d leftover bytes, want 0", len(rest))
	}
	if !bytes.Equal(frames[0].Raw, f1) || !bytes.Equal(frames[1].Raw, f2) {
		t.Error("frames extracted out of order or corrupted")
	}
}

func TestExtractMalformedShortDeclaredSize(t *testing.T) {
	// declared size (5) is shorter than a header (12): malformed, buffer left in place.
	buf := mustDecodeHex("0500" + "0102030405060708090a")

	frames, rest := Extract(buf)
	if len(frames) != 0 {
		t.Fatalf("got %d frames for malformed input, want 0", len(frames))
	}
	if !bytes.Equal(rest, buf) {
		t.Error("malformed buffer should be left untouched per spec.md §9")
	}
}

func TestExtractResidueProperty(t *testing.T) {
	// concatenation of extracted frames + residue must equal the original stream.
	f1 := mustDecodeHex("10000000010002000300000004000500")
	f2 := mustDecodeHex("10000000050006000700000008000900")
	tail := []byte{0xAA, 0xBB, 0xCC}
	buf := append(append(append([]byte{}, f1...), f2...), tail...)

	frames, rest := Extract(buf)
	var reassembled []byte
	for _, f := range frames {
		reassembled = append(reassembled, f.Raw...)
	}
	reassembled = append(reassembled, rest...)
	if !bytes.Equal(reassembled, buf) {
		t.Error("frames + residue does not reconstruct the original stream")
	}
	if len(rest) >= 12 {
		t.Errorf("residue length %d should be smaller than the smallest possible frame", len(rest))
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	tr := xorkey.New([]byte{0x11, 0x22, 0x33})
	raw := mustDecodeHex("10000000010002000300000004000500")

	decoded := Decode(tr, raw)
	reencoded := Encode(tr, decoded)
	if !bytes.Equal(reencoded, raw) {
		t.Error("encode(decode(frame)) != frame")
	}
	// header bytes are never touched by the payload transform
	if !bytes.Equal(decoded[:12], raw[:12]) {
		t.Error("header bytes should be unaffected by payload transform")
	}
}

func FuzzDecodeEncodeRoundTrip(f *testing.F) {
	tr := xorkey.New([]byte{0x11, 0x22, 0x33, 0x44})
	f.Add(mustDecodeHex("10000000010002000300000004000500"))
	f.Add(mustDecodeHex("0c0000000000000000000000"))

	f.Fuzz(func(t *testing.T, raw []byte) {
		if len(raw) < 12 {
			t.Skip()
		}
		decoded := Decode(tr, raw)
		reencoded := Encode(tr, decoded)
		if !bytes.Equal(reencoded, raw) {
			t.Errorf("round trip mismatch for %x", raw)
		}
	})
}
