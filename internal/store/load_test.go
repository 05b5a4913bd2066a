package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/delaymodel/internal/model"
	"github.com/roach88/delaymodel/internal/testutil"
)

func TestImportLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	for name, in := range map[string]*model.Input{
		"poly":  testutil.PolyInput(3),
		"tab":   testutil.TabInput(2),
		"mixed": mixedInput(),
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Import(ctx, in))
			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, in, got)
		})
	}
}

func TestImport_ReplacesPreviousJob(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.Import(ctx, testutil.PolyInput(4)))
	require.NoError(t, s.Import(ctx, testutil.TabInput(1)))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Scans, 1)
	assert.True(t, got.Scans[0].HasTab())

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM poly_models").Scan(&n))
	assert.Zero(t, n, "poly models of the replaced job should cascade away")
}

func TestImport_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.Import(ctx, testutil.PolyInput(1)))

	bad := testutil.PolyInput(1)
	bad.Antennas[1].Name = bad.Antennas[0].Name // violates UNIQUE(name)
	err := s.Import(ctx, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import antenna 1")

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.PolyInput(1), got)
}

func TestImport_CanonicalizesAntennaNames(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	in := testutil.PolyInput(1)
	in.Antennas[0].Name = " ef "
	require.NoError(t, s.Import(ctx, in))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EF", got.Antennas[0].Name)
}

func TestLoad_Empty(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoJob)
}

func TestLoad_FloatsBitExact(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	in := testutil.PolyInput(1)
	in.Scans[0].Poly[0][0][0].Delay = []float64{1.0 / 3, -2.5e-300, 123456789.123456789, 0, 0, 0}
	require.NoError(t, s.Import(ctx, in))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in.Scans[0].Poly[0][0][0].Delay, got.Scans[0].Poly[0][0][0].Delay)
}

func TestDump_RoundTrip(t *testing.T) {
	in := mixedInput()

	var buf bytes.Buffer
	require.NoError(t, WriteDump(&buf, in))

	got, err := ReadDump(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestDump_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	var buf bytes.Buffer
	require.NoError(t, WriteDump(&buf, testutil.TabInput(2)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := ReadDumpFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.TabInput(2), got)

	_, err = ReadDumpFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReadDump_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty model dump"},
		{"unknown key", "mjd_start: 1\nbogus: 2\n", "bogus"},
		{"bad source ref", `
mjd_start: 60000
n_pol: 1
antennas: [{name: EF}]
sources: [{name: X}]
configs: [{freq_id: 0, bands: [{freq_mhz: 100}], antennas: [0]}]
scans: [{source: 3, config: 0}]
`, "source 3 out of range"},
		{"duplicate antenna", `
mjd_start: 60000
n_pol: 1
antennas: [{name: ef}, {name: "EF "}]
`, "already used"},
		{"missing pol count", `
mjd_start: 60000
antennas: [{name: EF}]
`, "n_pol 0: must be 1 or 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDump(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadDump_Minimal(t *testing.T) {
	in, err := ReadDump(strings.NewReader(`
mjd_start: 60000.5
n_pol: 2
antennas:
  - name: mc
    clock: {delay: 1.5, rate: 0.001}
sources:
  - {name: 3C84, fits_id: 0}
configs:
  - freq_id: 0
    bands: [{freq_mhz: 4974.49}]
    antennas: [0]
scans:
  - source: 0
    config: 0
    mjd_start: 60000.5
    poly_interval: 120
    n_poly: 1
    poly:
      - - - {mjd: 60000, sec: 43200, order: 1, delay: [12.5, 0.01]}
`))
	require.NoError(t, err)
	assert.Equal(t, "MC", in.Antennas[0].Name)
	require.True(t, in.Scans[0].HasPoly())
	m := in.Scans[0].Model(0, 0)
	require.NotNil(t, m.Poly)
	assert.Equal(t, model.Epoch{MJD: 60000, Sec: 43200}, m.Poly.Epoch)
	assert.Equal(t, []float64{12.5, 0.01}, m.Poly.Delay)
}
