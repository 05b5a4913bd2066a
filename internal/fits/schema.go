package fits

import (
	"encoding/binary"
	"fmt"
)

// Column declares one table column.
type Column struct {
	Name    string
	Format  string // TFORM, e.g. "1D" or "24E"
	Comment string
	Unit    string
}

// Schema is an ordered column list with its parsed formats and row width.
type Schema struct {
	cols    []Column
	forms   []Format
	rowSize int
}

// NewSchema parses every column format and computes the row width.
func NewSchema(cols []Column) (*Schema, error) {
	s := &Schema{
		cols:  append([]Column(nil), cols...),
		forms: make([]Format, len(cols)),
	}
	for i, c := range cols {
		f, err := ParseFormat(c.Format)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", i+1, c.Name, err)
		}
		s.forms[i] = f
		s.rowSize += f.Size()
	}
	return s, nil
}

// Columns returns the column declarations.
func (s *Schema) Columns() []Column {
	return s.cols
}

// Formats returns the parsed column formats.
func (s *Schema) Formats() []Format {
	return s.forms
}

// RowSize returns the row width in bytes (NAXIS1).
func (s *Schema) RowSize() int {
	return s.rowSize
}

// Index returns the position of the named column, or -1.
func (s *Schema) Index(name string) int {
	for i, c := range s.cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Offset returns the byte offset of column i within a row.
func (s *Schema) Offset(i int) int {
	off := 0
	for _, f := range s.forms[:i] {
		off += f.Size()
	}
	return off
}

// hostBigEndian is true when native byte order already matches FITS.
var hostBigEndian = func() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[1] == 1
}()

// NeedsSwap reports whether rows built in host order must be swapped before
// they are written.
func NeedsSwap() bool {
	return !hostBigEndian
}

// SwapRow reverses the byte order of every element of every field of row,
// in place. Applying it twice restores the row.
func SwapRow(s *Schema, row []byte) error {
	if len(row) != s.rowSize {
		return &SizeMismatchError{Got: len(row), Want: s.rowSize}
	}
	off := 0
	for _, f := range s.forms {
		w := f.Type.Width()
		for n := 0; n < f.Repeat; n++ {
			swapElement(row[off : off+w])
			off += w
		}
	}
	return nil
}

func swapElement(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
