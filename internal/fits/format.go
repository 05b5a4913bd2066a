package fits

import (
	"fmt"
	"strconv"
)

// Type is a TFORM data type code.
type Type byte

// Supported TFORM type codes.
const (
	Logical Type = 'L'
	Byte    Type = 'B'
	Char    Type = 'A'
	Int16   Type = 'I'
	Int32   Type = 'J'
	Int64   Type = 'K'
	Float32 Type = 'E'
	Float64 Type = 'D'
)

// Width returns the size in bytes of one element.
func (t Type) Width() int {
	switch t {
	case Logical, Byte, Char:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	}
	return 0
}

// Format is a parsed TFORM value: a repeat count and a type.
type Format struct {
	Repeat int
	Type   Type
}

// ParseFormat parses a TFORM string such as "1D", "E" or "24D".
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return Format{}, fmt.Errorf("empty format")
	}

	code := Type(s[len(s)-1])
	if code.Width() == 0 {
		return Format{}, fmt.Errorf("format %q: unsupported type %q", s, string(code))
	}

	repeat := 1
	if digits := s[:len(s)-1]; digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			return Format{}, fmt.Errorf("format %q: bad repeat count", s)
		}
		repeat = n
	}

	return Format{Repeat: repeat, Type: code}, nil
}

// Size returns the bytes the field occupies in a row.
func (f Format) Size() int {
	return f.Repeat * f.Type.Width()
}

// String renders the TFORM value.
func (f Format) String() string {
	return strconv.Itoa(f.Repeat) + string(f.Type)
}

// Repeated returns the TFORM string for n elements of type t, as used for
// columns whose width depends on the band count.
func Repeated(n int, t Type) string {
	return Format{Repeat: n, Type: t}.String()
}
