package wsession

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ViewMode selects how a Frame's raw bytes are materialized for display.
type ViewMode int

const (
	ViewByte ViewMode = iota // space-separated decimal byte values
	ViewHex
	ViewASCII
)

func (m ViewMode) String() string {
	switch m {
	case ViewByte:
		return "Byte"
	case ViewHex:
		return "Hex"
	case ViewASCII:
		return "ASCII"
	default:
		return "Unknown"
	}
}

// Render materializes data according to m.
func Render(m ViewMode, data []byte) string {
	switch m {
	case ViewHex:
		return hex.EncodeToString(data)
	case ViewASCII:
		var b strings.Builder
		b.Grow(len(data))
		for _, c := range data {
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		return b.String()
	case ViewByte:
		parts := make([]string, len(data))
		for i, c := range data {
			parts[i] = strconv.Itoa(int(c))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%v", data)
	}
}
