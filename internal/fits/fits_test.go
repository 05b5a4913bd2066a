package fits

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema([]Column{
		{Name: "TIME", Format: "1D", Unit: "DAYS"},
		{Name: "TIME_INTERVAL", Format: "1E", Unit: "DAYS"},
		{Name: "ANTENNA_NO", Format: "1J"},
		{Name: "FLAG", Format: "1I"},
		{Name: "POLY", Format: Repeated(3, Float64), Unit: "SECONDS"},
		{Name: "VAR", Format: Repeated(2, Float32), Unit: "HZ"},
	})
	require.NoError(t, err)
	return s
}

func fillRow(t *testing.T, b *RowBuilder) {
	t.Helper()
	b.Float64(58000.25)
	b.Float32(1.0 / 720)
	b.Int32(-7)
	b.Int16(3)
	b.Float64s(-1e-4, 2.5e-9, math.Pi)
	b.Float32s(0.5, -2)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		size int
	}{
		{"1D", Format{1, Float64}, 8},
		{"E", Format{1, Float32}, 4},
		{"24D", Format{24, Float64}, 192},
		{"4E", Format{4, Float32}, 16},
		{"1J", Format{1, Int32}, 4},
		{"2I", Format{2, Int16}, 4},
		{"8A", Format{8, Char}, 8},
		{"0D", Format{0, Float64}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.size, f.Size())
		})
	}

	for _, bad := range []string{"", "1X", "xD", "-1D"} {
		_, err := ParseFormat(bad)
		assert.Error(t, err, bad)
	}
}

func TestRepeated(t *testing.T) {
	assert.Equal(t, "24D", Repeated(24, Float64))
	assert.Equal(t, "4E", Repeated(4, Float32))
}

func TestSchema(t *testing.T) {
	s := testSchema(t)
	assert.Equal(t, 8+4+4+2+24+8, s.RowSize())
	assert.Equal(t, 3, s.Index("FLAG"))
	assert.Equal(t, -1, s.Index("NOPE"))
	assert.Equal(t, 18, s.Offset(4))

	_, err := NewSchema([]Column{{Name: "X", Format: "1Q"}})
	assert.ErrorContains(t, err, "column 1 (X)")
}

func TestRowBuilder_SizeMismatch(t *testing.T) {
	s := testSchema(t)
	b, err := s.NewRow()
	require.NoError(t, err)

	b.Float64(1)
	_, err = b.Bytes()
	require.Error(t, err)
	assert.True(t, IsSizeMismatch(err))

	var se *SizeMismatchError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 8, se.Got)
	assert.Equal(t, s.RowSize(), se.Want)

	b.Reset()
	fillRow(t, b)
	b.Float32(1) // one field too many
	_, err = b.Bytes()
	assert.True(t, IsSizeMismatch(err))
}

func TestNewRow_Allocation(t *testing.T) {
	empty, err := NewSchema(nil)
	require.NoError(t, err)
	_, err = empty.NewRow()
	assert.ErrorIs(t, err, ErrAllocation)

	huge, err := NewSchema([]Column{{Name: "X", Format: Repeated(MaxRowBytes, Float64)}})
	require.NoError(t, err)
	_, err = huge.NewRow()
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestSwapRow_Twice(t *testing.T) {
	s := testSchema(t)
	b, err := s.NewRow()
	require.NoError(t, err)
	fillRow(t, b)

	row, err := b.Bytes()
	require.NoError(t, err)
	orig := append([]byte(nil), row...)

	require.NoError(t, SwapRow(s, row))
	assert.NotEqual(t, orig, row)
	require.NoError(t, SwapRow(s, row))
	assert.Equal(t, orig, row)
}

func TestSwapRow_PerField(t *testing.T) {
	s, err := NewSchema([]Column{
		{Name: "A", Format: "1J"},
		{Name: "B", Format: "1D"},
		{Name: "C", Format: "2I"},
	})
	require.NoError(t, err)

	row := []byte{
		1, 2, 3, 4,
		1, 2, 3, 4, 5, 6, 7, 8,
		1, 2, 3, 4,
	}
	require.NoError(t, SwapRow(s, row))
	assert.Equal(t, []byte{
		4, 3, 2, 1,
		8, 7, 6, 5, 4, 3, 2, 1,
		2, 1, 4, 3,
	}, row)

	assert.True(t, IsSizeMismatch(SwapRow(s, row[:3])))
}

func TestSwapRow_MatchesBigEndian(t *testing.T) {
	s := testSchema(t)
	b, err := s.NewRow()
	require.NoError(t, err)
	fillRow(t, b)
	row, err := b.Bytes()
	require.NoError(t, err)

	if NeedsSwap() {
		require.NoError(t, SwapRow(s, row))
	}
	assert.Equal(t, 58000.25, math.Float64frombits(binary.BigEndian.Uint64(row[0:8])))
	assert.Equal(t, int32(-7), int32(binary.BigEndian.Uint32(row[12:16])))
	assert.Equal(t, math.Pi, math.Float64frombits(binary.BigEndian.Uint64(row[34:42])))
}

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{Card{Key: "NAXIS1", Value: 120}, "NAXIS1  =                  120"},
		{Card{Key: "SIMPLE", Value: true}, "SIMPLE  =                    T"},
		{Card{Key: "EXTNAME", Value: "MODEL"}, "EXTNAME = 'MODEL   '"},
		{Card{Key: "TUNIT1", Value: "SEC/SEC"}, "TUNIT1  = 'SEC/SEC '"},
		{Card{Key: "OBSERVER", Value: "O'Neil"}, "OBSERVER= 'O''Neil '"},
		{Card{Key: "GSTIA0", Value: 0.0}, "GSTIA0  =   0.000000000000E+00"},
		{Card{Key: "NAXIS2", Value: int64(3), Comment: "rows"}, "NAXIS2  =                    3 / rows"},
		{Card{Key: "END"}, "END"},
	}
	for _, tt := range tests {
		t.Run(tt.card.Key, func(t *testing.T) {
			s := tt.card.String()
			assert.Len(t, s, CardSize)
			assert.Equal(t, tt.want, strings.TrimRight(s, " "))
		})
	}
}

func TestParseCard(t *testing.T) {
	c := ParseCard(Card{Key: "TTYPE1", Value: "I.FAR.ROT", Comment: "ionospheric faraday rotation"}.String())
	assert.Equal(t, "TTYPE1", c.Key)
	assert.Equal(t, "I.FAR.ROT", c.Value)
	assert.Equal(t, "ionospheric faraday rotation", c.Comment)

	c = ParseCard(Card{Key: "OBSERVER", Value: "O'Neil"}.String())
	assert.Equal(t, "O'Neil", c.Value)

	assert.Equal(t, int64(42), ParseCard(Card{Key: "N", Value: 42}.String()).Value)
	assert.Equal(t, 1.5, ParseCard(Card{Key: "F", Value: 1.5}.String()).Value)
	assert.Equal(t, false, ParseCard(Card{Key: "B", Value: false}.String()).Value)
	assert.Equal(t, 2.0e10, ParseCard("X       =              2.0D+10").Value)
	assert.Nil(t, ParseCard("END").Value)
}

func TestHeaderBytes(t *testing.T) {
	h := Header{{Key: "A", Value: 1}, {Key: "B", Value: "x"}}
	b := h.Bytes()
	assert.Len(t, b, BlockSize)
	assert.Equal(t, "END", strings.TrimRight(string(b[2*CardSize:3*CardSize]), " "))

	n, err := h.Int("A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = h.Text("A")
	assert.Error(t, err)
	_, err = h.Int("C")
	assert.Error(t, err)
}

func TestWriterReader_RoundTrip(t *testing.T) {
	s := testSchema(t)
	path := filepath.Join(t.TempDir(), "table.fits")

	w, err := Create(path, "TEST_TABLE", s, []Card{{Key: "TABREV", Value: 2}, {Key: "RDATE", Value: "2017-09-04"}})
	require.NoError(t, err)

	b, err := s.NewRow()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		fillRow(t, b)
		require.NoError(t, w.Append(b))
	}
	assert.Equal(t, 0, b.Len(), "Append resets the builder")
	assert.Equal(t, int64(3), w.Rows())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second Close is a no-op")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size()%BlockSize)

	tbl, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "TEST_TABLE", tbl.Name)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, s.RowSize(), tbl.Schema.RowSize())

	rows, err := tbl.Header.Int("NAXIS2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)
	rev, err := tbl.Header.Int("TABREV")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)
	rdate, err := tbl.Header.Text("RDATE")
	require.NoError(t, err)
	assert.Equal(t, "2017-09-04", rdate)
	unit, err := tbl.Header.Text("TUNIT5")
	require.NoError(t, err)
	assert.Equal(t, "SECONDS", unit)

	v, err := tbl.Values(2, "POLY")
	require.NoError(t, err)
	assert.Equal(t, []float64{-1e-4, 2.5e-9, math.Pi}, v)

	v, err = tbl.Values(0, "TIME_INTERVAL")
	require.NoError(t, err)
	assert.Equal(t, []float64{float64(float32(1.0 / 720))}, v)

	v, err = tbl.Values(1, "ANTENNA_NO")
	require.NoError(t, err)
	assert.Equal(t, []float64{-7}, v)

	_, err = tbl.Values(3, "TIME")
	assert.Error(t, err)
	_, err = tbl.Values(0, "NOPE")
	assert.Error(t, err)
}

func TestWriter_RejectsMisalignedRow(t *testing.T) {
	s := testSchema(t)
	path := filepath.Join(t.TempDir(), "bad.fits")
	w, err := Create(path, "BAD", s, nil)
	require.NoError(t, err)
	defer w.Close()

	b, err := s.NewRow()
	require.NoError(t, err)
	b.Float64(1)

	err = w.Append(b)
	var se *SizeMismatchError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "BAD", se.Table)
	assert.Zero(t, w.Rows())

	err = w.WriteRow(make([]byte, s.RowSize()+1))
	assert.True(t, IsSizeMismatch(err))
}

func TestWriter_EmptyTable(t *testing.T) {
	s := testSchema(t)
	path := filepath.Join(t.TempDir(), "empty.fits")
	w, err := Create(path, "EMPTY", s, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Error(t, w.WriteRow(make([]byte, s.RowSize())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 2*BlockSize)

	tbl, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
}
