package wrecord

import (
	"errors"
	"fmt"
)

// ErrRecordSize is returned when a loaded file's length does not match the
// expected size for its record type (spec.md §7, §9: a size mismatch is
// always rejected, never silently dropped).
var ErrRecordSize = errors.New("wrecord: unexpected file size")

// ErrCodecPanic is returned when decoding a record panics. The size checks
// in each Decode* function rule this out for well-formed input, but record
// files are read from disk and may have been hand-edited or truncated by
// something other than this package, so the decode boundary recovers rather
// than taking the whole process down.
var ErrCodecPanic = errors.New("wrecord: codec panic")

// guardDecode runs decode and converts any panic into an error wrapping
// ErrCodecPanic instead of propagating it.
func guardDecode(decode func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCodecPanic, r)
		}
	}()
	return decode()
}
