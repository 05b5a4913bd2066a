package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var upper = cases.Upper(language.Und)

// CanonicalName normalizes a station or source name for storage and matching:
// NFC, trimmed, upper case.
func CanonicalName(name string) string {
	return upper.String(norm.NFC.String(strings.TrimSpace(name)))
}

// AntennaIndex returns the index of the named antenna, or -1.
func (in *Input) AntennaIndex(name string) int {
	want := CanonicalName(name)
	for i, a := range in.Antennas {
		if CanonicalName(a.Name) == want {
			return i
		}
	}
	return -1
}
