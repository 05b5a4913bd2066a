package tweak

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/delaymodel/internal/model"
)

// DefaultFile is the correction file looked up in the job directory.
const DefaultFile = "calcif2.delay"

// Tolerance is the epoch match window in days: half a second.
const Tolerance = 0.5 / model.SecondsPerDay

// Correction is one line of a correction file. A, B and C are added to the
// constant, linear and quadratic delay coefficients (microseconds, µs/s, µs/s²).
type Correction struct {
	MJD     float64
	A, B, C float64
}

// LoadFile reads corrections from path. A missing file returns no
// corrections and no error.
func LoadFile(path string) ([]Correction, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open correction file: %w", err)
	}
	defer f.Close()

	corr, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return corr, nil
}

// Load parses corrections, one "mjd A B C" per line. Lines that do not hold
// exactly four numbers are skipped.
func Load(r io.Reader) ([]Correction, error) {
	var out []Correction

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		c, ok := parseLine(sc.Text())
		if !ok {
			continue
		}
		out = append(out, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan corrections: %w", err)
	}

	return out, nil
}

func parseLine(line string) (Correction, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Correction{}, false
	}

	var v [4]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Correction{}, false
		}
		v[i] = x
	}

	return Correction{MJD: v[0], A: v[1], B: v[2], C: v[3]}, true
}

// Matches reports whether the epoch lies strictly within Tolerance of the
// correction.
func (c Correction) Matches(e model.Epoch) bool {
	return math.Abs(e.Days()-c.MJD) < Tolerance
}

// Apply adds it to m, gated by the model order.
func (c Correction) Apply(m *model.PolyModel) {
	m.Delay[0] += c.A
	if m.Order > 0 && len(m.Delay) > 1 {
		m.Delay[1] += c.B
	}
	if m.Order > 1 && len(m.Delay) > 2 {
		m.Delay[2] += c.C
	}
}
