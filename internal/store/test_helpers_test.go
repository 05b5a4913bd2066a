package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/delaymodel/internal/model"
	"github.com/roach88/delaymodel/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mixedInput joins the polynomial and tabulated fixtures into one job with
// a configless scan and a missing antenna.
func mixedInput() *model.Input {
	in := testutil.PolyInput(2)
	in.Scans[0].Poly[1] = nil

	tab := testutil.TabInput(3).Scans[0]
	tab.Tab[0] = nil

	idle := model.Scan{SourceID: 1, ConfigID: -1, MJDStart: in.MJDStart + 0.01}

	in.Scans = append(in.Scans, tab, idle)
	in.Configs[0].Antennas = []int{0, -1, 1}
	return in
}
