package fits

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Table is a binary table extension read back from a file.
type Table struct {
	Name   string
	Header Header
	Schema *Schema
	data   []byte
	rows   int
}

// ReadFile reads the first BINTABLE extension of a FITS file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read reads the first BINTABLE extension from r.
func Read(r io.Reader) (*Table, error) {
	primary, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("primary header: %w", err)
	}
	if naxis, _ := primary.Int("NAXIS"); naxis != 0 {
		return nil, fmt.Errorf("primary HDU with data is not supported")
	}

	hdr, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("extension header: %w", err)
	}
	if x, _ := hdr.Text("XTENSION"); x != "BINTABLE" {
		return nil, fmt.Errorf("extension %q is not a binary table", x)
	}

	schema, err := schemaFromHeader(hdr)
	if err != nil {
		return nil, err
	}
	width, err := hdr.Int("NAXIS1")
	if err != nil {
		return nil, err
	}
	if int(width) != schema.RowSize() {
		return nil, &SizeMismatchError{Got: int(width), Want: schema.RowSize()}
	}
	rows, err := hdr.Int("NAXIS2")
	if err != nil {
		return nil, err
	}

	data := make([]byte, int(rows)*schema.RowSize())
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read %d rows: %w", rows, err)
	}

	name, _ := hdr.Text("EXTNAME")
	return &Table{Name: name, Header: hdr, Schema: schema, data: data, rows: int(rows)}, nil
}

func readHeader(r io.Reader) (Header, error) {
	var h Header
	block := make([]byte, BlockSize)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, err
		}
		for off := 0; off < BlockSize; off += CardSize {
			c := ParseCard(string(block[off : off+CardSize]))
			if c.Key == "END" {
				return h, nil
			}
			if c.Key == "" && c.Value == nil && c.Comment == "" {
				continue
			}
			h = append(h, c)
		}
	}
}

func schemaFromHeader(h Header) (*Schema, error) {
	n, err := h.Int("TFIELDS")
	if err != nil {
		return nil, err
	}
	cols := make([]Column, n)
	for i := range cols {
		k := i + 1
		ttype, _ := h.Get(fmt.Sprintf("TTYPE%d", k))
		name, _ := ttype.Value.(string)
		form, err := h.Text(fmt.Sprintf("TFORM%d", k))
		if err != nil {
			return nil, err
		}
		unit, _ := h.Text(fmt.Sprintf("TUNIT%d", k))
		cols[i] = Column{Name: name, Format: form, Comment: ttype.Comment, Unit: unit}
	}
	return NewSchema(cols)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Raw returns row i exactly as stored, in FITS byte order.
func (t *Table) Raw(i int) []byte {
	w := t.Schema.RowSize()
	return t.data[i*w : (i+1)*w]
}

// Values decodes column name of row i as float64 values.
func (t *Table) Values(i int, name string) ([]float64, error) {
	if i < 0 || i >= t.rows {
		return nil, fmt.Errorf("row %d out of range [0, %d)", i, t.rows)
	}
	c := t.Schema.Index(name)
	if c < 0 {
		return nil, fmt.Errorf("no column %s", name)
	}
	f := t.Schema.Formats()[c]
	field := t.Raw(i)[t.Schema.Offset(c):]

	out := make([]float64, f.Repeat)
	be := binary.BigEndian
	for n := range out {
		b := field[n*f.Type.Width():]
		switch f.Type {
		case Float64:
			out[n] = math.Float64frombits(be.Uint64(b))
		case Float32:
			out[n] = float64(math.Float32frombits(be.Uint32(b)))
		case Int32:
			out[n] = float64(int32(be.Uint32(b)))
		case Int16:
			out[n] = float64(int16(be.Uint16(b)))
		case Int64:
			out[n] = float64(int64(be.Uint64(b)))
		default:
			out[n] = float64(b[0])
		}
	}
	return out, nil
}
