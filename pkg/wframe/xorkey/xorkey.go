// Package xorkey implements a keyed additive FrameTransform for
// pkg/wframe, in the same style as the ServerList obfuscation in
// pkg/wrecord: a fixed key table, applied with modular arithmetic over
// byte values via int16 intermediates.
package xorkey

// Transform applies a repeating additive key to a frame payload. Decode
// subtracts the key byte (mod 256); Encode adds it back. It is the concrete,
// fully-specified FrameTransform spec.md leaves abstract (the real client's
// transform lives in a sibling library out of this module's scope).
type Transform struct {
	Key []byte
}

// New creates a Transform using key, which must be non-empty. The key
// repeats cyclically over the payload.
func New(key []byte) Transform {
	if len(key) == 0 {
		panic("xorkey: key must not be empty")
	}
	return Transform{Key: key}
}

func (t Transform) Decode(b []byte) {
	for i := range b {
		k := t.Key[i%len(t.Key)]
		b[i] = byte((int16(b[i]) - int16(k)) & 0xFF)
	}
}

func (t Transform) Encode(b []byte) {
	for i := range b {
		k := t.Key[i%len(t.Key)]
		b[i] = byte((int16(b[i]) + int16(k)) & 0xFF)
	}
}
