package hst

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// decodeText converts a fixed-width Windows-1252 field to UTF-8 and drops the
// zero padding on the right.
func decodeText(b []byte) string {
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		out = b
	}
	return strings.TrimRight(string(out), "\x00")
}
