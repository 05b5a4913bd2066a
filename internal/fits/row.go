package fits

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// MaxRowBytes bounds the scratch row buffer.
const MaxRowBytes = 1 << 24

// ErrAllocation reports that a row buffer could not be allocated for a
// schema. It is fatal for the table.
var ErrAllocation = errors.New("row buffer allocation failed")

// SizeMismatchError reports a row whose length differs from the schema's row
// width. It is fatal for the table.
type SizeMismatchError struct {
	Table string
	Got   int
	Want  int
}

func (e *SizeMismatchError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: row is %d bytes, schema declares %d", e.Table, e.Got, e.Want)
	}
	return fmt.Sprintf("row is %d bytes, schema declares %d", e.Got, e.Want)
}

// IsSizeMismatch reports whether err is a SizeMismatchError.
func IsSizeMismatch(err error) bool {
	var se *SizeMismatchError
	return errors.As(err, &se)
}

// RowBuilder accumulates one row in host byte order. Fields must be appended
// in column order; Bytes checks the total against the schema.
type RowBuilder struct {
	schema *Schema
	buf    []byte
}

// NewRow allocates a builder for s. The buffer is reused across rows.
func (s *Schema) NewRow() (*RowBuilder, error) {
	if s.rowSize <= 0 || s.rowSize > MaxRowBytes {
		return nil, fmt.Errorf("%w: %d-byte row", ErrAllocation, s.rowSize)
	}
	return &RowBuilder{schema: s, buf: make([]byte, 0, s.rowSize)}, nil
}

// Reset empties the builder for the next row.
func (b *RowBuilder) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the bytes appended so far.
func (b *RowBuilder) Len() int {
	return len(b.buf)
}

// Float64 appends one double.
func (b *RowBuilder) Float64(v float64) {
	b.buf = binary.NativeEndian.AppendUint64(b.buf, math.Float64bits(v))
}

// Float64s appends doubles.
func (b *RowBuilder) Float64s(vs ...float64) {
	for _, v := range vs {
		b.Float64(v)
	}
}

// Float32 appends one float.
func (b *RowBuilder) Float32(v float32) {
	b.buf = binary.NativeEndian.AppendUint32(b.buf, math.Float32bits(v))
}

// Float32s appends floats.
func (b *RowBuilder) Float32s(vs ...float32) {
	for _, v := range vs {
		b.Float32(v)
	}
}

// Int32 appends one 32-bit integer.
func (b *RowBuilder) Int32(v int32) {
	b.buf = binary.NativeEndian.AppendUint32(b.buf, uint32(v))
}

// Int16 appends one 16-bit integer.
func (b *RowBuilder) Int16(v int16) {
	b.buf = binary.NativeEndian.AppendUint16(b.buf, uint16(v))
}

// Bytes returns the assembled row in host order. The slice aliases the
// builder's buffer and is valid until the next Reset.
func (b *RowBuilder) Bytes() ([]byte, error) {
	if len(b.buf) != b.schema.rowSize {
		return nil, &SizeMismatchError{Got: len(b.buf), Want: b.schema.rowSize}
	}
	return b.buf, nil
}
