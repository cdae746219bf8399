package wframe

// FrameTransform is a pure, deterministic, in-place, symmetric transform
// applied to a captured frame before it is recorded. Decode and Encode must
// be exact inverses of each other: Encode(Decode(b)) == b for any well-formed
// frame b.
//
// The exact numeric transform used by the original client lives outside the
// scope of this module (spec.md §4.2 calls it a sibling `enc_dec` library);
// implementations of this interface supply a concrete transform.
type FrameTransform interface {
	Decode(b []byte)
	Encode(b []byte)
}

// Identity is a no-op FrameTransform, useful for tests and for protocols
// observed to use no payload transform.
type Identity struct{}

func (Identity) Decode([]byte) {}
func (Identity) Encode([]byte) {}
