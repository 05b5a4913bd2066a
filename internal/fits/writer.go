package fits

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Writer appends rows to one binary table extension.
//
// The header, including caller keywords, is written by NewWriter before any
// row. Close pads the data unit, patches NAXIS2 and releases the file; it
// must run whether or not writing succeeded.
type Writer struct {
	ws       io.WriteSeeker
	bw       *bufio.Writer
	closer   io.Closer
	schema   *Schema
	name     string
	rows     int64
	naxis2At int64
	closed   bool
}

// Create creates path and starts a table in it.
func Create(path, extname string, schema *Schema, keys []Card) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create table file: %w", err)
	}
	w, err := NewWriter(f, extname, schema, keys)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewWriter writes a primary HDU and the BINTABLE header to ws.
func NewWriter(ws io.WriteSeeker, extname string, schema *Schema, keys []Card) (*Writer, error) {
	w := &Writer{
		ws:     ws,
		bw:     bufio.NewWriter(ws),
		schema: schema,
		name:   extname,
	}

	primary := Header{
		{Key: "SIMPLE", Value: true, Comment: "file conforms to FITS standard"},
		{Key: "BITPIX", Value: 8},
		{Key: "NAXIS", Value: 0},
		{Key: "EXTEND", Value: true, Comment: "extensions may be present"},
	}
	if _, err := w.bw.Write(primary.Bytes()); err != nil {
		return nil, fmt.Errorf("write primary header: %w", err)
	}

	hdr := TableHeader(extname, schema, 0, keys)
	w.naxis2At = int64(len(primary.Bytes())) + int64(naxis2Card*CardSize)
	if _, err := w.bw.Write(hdr.Bytes()); err != nil {
		return nil, fmt.Errorf("write %s header: %w", extname, err)
	}

	return w, nil
}

// naxis2Card is the position of NAXIS2 in a table header.
const naxis2Card = 4

// TableHeader returns the BINTABLE header for schema with rows rows,
// followed by keys.
func TableHeader(extname string, schema *Schema, rows int64, keys []Card) Header {
	h := Header{
		{Key: "XTENSION", Value: "BINTABLE", Comment: "binary table extension"},
		{Key: "BITPIX", Value: 8},
		{Key: "NAXIS", Value: 2},
		{Key: "NAXIS1", Value: schema.RowSize(), Comment: "width of table in bytes"},
		{Key: "NAXIS2", Value: rows, Comment: "number of rows in table"},
		{Key: "PCOUNT", Value: 0},
		{Key: "GCOUNT", Value: 1},
		{Key: "TFIELDS", Value: len(schema.Columns()), Comment: "number of fields in each row"},
	}
	for i, c := range schema.Columns() {
		n := i + 1
		h = append(h, Card{Key: fmt.Sprintf("TTYPE%d", n), Value: c.Name, Comment: c.Comment})
		h = append(h, Card{Key: fmt.Sprintf("TFORM%d", n), Value: schema.Formats()[i].String()})
		if c.Unit != "" {
			h = append(h, Card{Key: fmt.Sprintf("TUNIT%d", n), Value: c.Unit})
		}
	}
	h = append(h, Card{Key: "EXTNAME", Value: extname})
	return append(h, keys...)
}

// Schema returns the table schema.
func (w *Writer) Schema() *Schema {
	return w.schema
}

// Rows returns the number of rows written.
func (w *Writer) Rows() int64 {
	return w.rows
}

// Append finalizes the builder's row, converts it to FITS byte order and
// writes it. The builder is reset on success.
func (w *Writer) Append(b *RowBuilder) error {
	row, err := b.Bytes()
	if err != nil {
		return w.mismatch(err)
	}
	if NeedsSwap() {
		if err := SwapRow(w.schema, row); err != nil {
			return w.mismatch(err)
		}
	}
	if err := w.WriteRow(row); err != nil {
		return err
	}
	b.Reset()
	return nil
}

// WriteRow writes a row that is already in FITS byte order.
func (w *Writer) WriteRow(row []byte) error {
	if w.closed {
		return errors.New("write to closed table")
	}
	if len(row) != w.schema.RowSize() {
		return w.mismatch(&SizeMismatchError{Got: len(row), Want: w.schema.RowSize()})
	}
	if _, err := w.bw.Write(row); err != nil {
		return fmt.Errorf("write %s row %d: %w", w.name, w.rows+1, err)
	}
	w.rows++
	return nil
}

func (w *Writer) mismatch(err error) error {
	var se *SizeMismatchError
	if errors.As(err, &se) {
		se.Table = w.name
	}
	return err
}

// Close pads the data unit, records the row count and closes the file if
// the writer created it. Calling Close again is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.finish()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close table file: %w", cerr)
		}
	}
	return err
}

func (w *Writer) finish() error {
	data := w.rows * int64(w.schema.RowSize())
	if r := data % BlockSize; r != 0 {
		if _, err := w.bw.Write(make([]byte, BlockSize-r)); err != nil {
			return fmt.Errorf("pad %s data: %w", w.name, err)
		}
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", w.name, err)
	}

	card := Card{Key: "NAXIS2", Value: w.rows, Comment: "number of rows in table"}
	if _, err := w.ws.Seek(w.naxis2At, io.SeekStart); err != nil {
		return fmt.Errorf("seek to NAXIS2: %w", err)
	}
	if _, err := io.WriteString(w.ws, card.String()); err != nil {
		return fmt.Errorf("patch NAXIS2: %w", err)
	}
	if _, err := w.ws.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}
	return nil
}
