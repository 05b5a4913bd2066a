package model

// SecondsPerDay converts day fractions to seconds.
const SecondsPerDay = 86400.0

// Epoch is an absolute time reference: integer MJD plus seconds into that day.
type Epoch struct {
	MJD int     `yaml:"mjd" json:"mjd"`
	Sec float64 `yaml:"sec" json:"sec"`
}

// Days returns the epoch as a fractional MJD.
func (e Epoch) Days() float64 {
	return float64(e.MJD) + e.Sec/SecondsPerDay
}

// PolyModel is one polynomial geometric delay model.
// Delay holds Order+1 coefficients; Delay[k] is in microseconds per second^k.
type PolyModel struct {
	Epoch `yaml:",inline"`
	Order int       `yaml:"order"`
	Delay []float64 `yaml:"delay"`
}

// TabulatedModel holds delay samples (microseconds) spaced ModelInc apart.
// Step p of a scan uses samples p-1 .. p+2, so T carries one leading and two
// trailing guard samples.
type TabulatedModel struct {
	T []float64 `yaml:"t"`
}

// Samples returns the four samples bracketing step p, or false if the table
// is too short.
func (m *TabulatedModel) Samples(p int) ([4]float64, bool) {
	var s [4]float64
	if m == nil || p < 0 || p+3 > len(m.T) {
		return s, false
	}
	// T[0] is the guard sample before step 0.
	copy(s[:], m.T[p:p+4])
	return s, true
}

// GeometricModel is the delay model for one antenna at one step. Exactly one
// of Poly or Samples is set; neither being set is a missing model.
type GeometricModel struct {
	Poly     *PolyModel
	Samples  *[4]float64
	Interval float64 // sample spacing in seconds, tabulated form only
}

// IsZero reports whether no model form is present.
func (g GeometricModel) IsZero() bool {
	return g.Poly == nil && g.Samples == nil
}

// AntennaClock is the per-antenna clock correction, constant for the run.
type AntennaClock struct {
	Delay float64 `yaml:"delay"` // microseconds
	Rate  float64 `yaml:"rate"`  // microseconds per second
}

// Antenna is a station taking part in the job.
type Antenna struct {
	Name  string       `yaml:"name"`
	Clock AntennaClock `yaml:"clock"`
}

// Source is a sky source; FitsID indexes the SOURCE table (0-based).
type Source struct {
	Name   string `yaml:"name"`
	FitsID int    `yaml:"fits_id"`
}

// Band is one observing sub-band.
type Band struct {
	FreqMHz float64 `yaml:"freq_mhz"`
}

// FreqHz returns the sky frequency in Hz.
func (b Band) FreqHz() float64 {
	return b.FreqMHz * 1.0e6
}

// Config is a correlator configuration. Antennas maps a configuration slot to
// an index into Input.Antennas; -1 marks an unused slot.
type Config struct {
	FreqID   int    `yaml:"freq_id"`
	Bands    []Band `yaml:"bands"`
	Antennas []int  `yaml:"antennas"`
}

// Scan is one scan with its delay models.
//
// Poly is indexed [antenna][phaseCentre][step]; a nil antenna entry means the
// delay server produced nothing for that station. Tab is indexed [antenna].
// A scan with any Poly entries uses the polynomial form for every antenna.
type Scan struct {
	SourceID      int               `yaml:"source"`
	ConfigID      int               `yaml:"config"`
	MJDStart      float64           `yaml:"mjd_start"`
	PolyInterval  float64           `yaml:"poly_interval"` // seconds
	ModelInc      float64           `yaml:"model_inc"`     // seconds
	NPoly         int               `yaml:"n_poly"`
	NPoint        int               `yaml:"n_point"`
	NPhaseCentres int               `yaml:"n_phase_centres"`
	Poly          [][][]PolyModel   `yaml:"poly,omitempty"`
	Tab           []*TabulatedModel `yaml:"tab,omitempty"`
}

// HasPoly reports whether the scan carries polynomial models.
func (s *Scan) HasPoly() bool {
	return s.Poly != nil
}

// HasTab reports whether the scan carries tabulated models.
func (s *Scan) HasTab() bool {
	return s.Tab != nil
}

// Steps returns the number of model steps in the scan.
func (s *Scan) Steps() int {
	if s.HasPoly() {
		return s.NPoly
	}
	return s.NPoint
}

// Model returns the geometric model of antenna a at step p, using phase
// centre 0. The returned model is zero when nothing is available.
func (s *Scan) Model(a, p int) GeometricModel {
	switch {
	case s.HasPoly():
		if a < 0 || a >= len(s.Poly) || len(s.Poly[a]) == 0 {
			return GeometricModel{}
		}
		steps := s.Poly[a][0]
		if p < 0 || p >= len(steps) {
			return GeometricModel{}
		}
		return GeometricModel{Poly: &steps[p]}
	case s.HasTab():
		if a < 0 || a >= len(s.Tab) {
			return GeometricModel{}
		}
		samples, ok := s.Tab[a].Samples(p)
		if !ok {
			return GeometricModel{}
		}
		return GeometricModel{Samples: &samples, Interval: s.ModelInc}
	}
	return GeometricModel{}
}

// Input is the complete model for one run.
type Input struct {
	MJDStart float64   `yaml:"mjd_start"`
	NPol     int       `yaml:"n_pol"`
	Antennas []Antenna `yaml:"antennas"`
	Sources  []Source  `yaml:"sources"`
	Configs  []Config  `yaml:"configs"`
	Scans    []Scan    `yaml:"scans"`
}

// RefMJD returns the integer MJD that table times are referenced to.
func (in *Input) RefMJD() int {
	return int(in.MJDStart)
}

// MaxBands returns the largest band count across configurations.
func (in *Input) MaxBands() int {
	n := 0
	for _, c := range in.Configs {
		if len(c.Bands) > n {
			n = len(c.Bands)
		}
	}
	return n
}
