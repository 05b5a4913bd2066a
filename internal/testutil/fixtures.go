package testutil

import "github.com/roach88/delaymodel/internal/model"

// Fixture geometry shared by the builders.
const (
	FixtureMJD      = 60000
	FixtureStartSec = 21600.0 // 06:00 UTC
	FixtureInterval = 120.0   // polynomial validity, seconds
	FixtureModelInc = 1.0     // tabulated spacing, seconds
)

// fixtureDelay is the base delay polynomial, microseconds per second^k.
var fixtureDelay = []float64{10, 0.5, 0.25, 0.125, 0.0625, 0.03125}

func fixtureJob() *model.Input {
	return &model.Input{
		MJDStart: FixtureMJD + FixtureStartSec/model.SecondsPerDay,
		NPol:     1,
		Antennas: []model.Antenna{
			{Name: "EF"},
			{Name: "WB", Clock: model.AntennaClock{Delay: 2, Rate: 0.5}},
		},
		Sources: []model.Source{
			{Name: "3C273", FitsID: 0},
			{Name: "J1234+5678", FitsID: 1},
		},
		Configs: []model.Config{{
			FreqID:   0,
			Bands:    []model.Band{{FreqMHz: 1000}, {FreqMHz: 2000}},
			Antennas: []int{0, 1},
		}},
	}
}

// PolyInput returns a two-antenna job with one scan of nPoly polynomial
// steps. Antenna a at step p has delay fixtureDelay scaled by (a+1) with
// p added to the constant term.
func PolyInput(nPoly int) *model.Input {
	in := fixtureJob()
	scan := model.Scan{
		SourceID:      0,
		ConfigID:      0,
		MJDStart:      in.MJDStart,
		PolyInterval:  FixtureInterval,
		NPoly:         nPoly,
		NPhaseCentres: 0,
		Poly:          make([][][]model.PolyModel, len(in.Antennas)),
	}
	for a := range in.Antennas {
		steps := make([]model.PolyModel, nPoly)
		for p := range steps {
			steps[p] = PolyStep(a, p)
		}
		scan.Poly[a] = [][]model.PolyModel{steps}
	}
	in.Scans = []model.Scan{scan}
	return in
}

// PolyStep returns the fixture model PolyInput uses for antenna a at step p.
func PolyStep(a, p int) model.PolyModel {
	delay := make([]float64, len(fixtureDelay))
	for k, d := range fixtureDelay {
		delay[k] = d * float64(a+1)
	}
	delay[0] += float64(p)
	return model.PolyModel{
		Epoch: model.Epoch{MJD: FixtureMJD, Sec: FixtureStartSec + float64(p)*FixtureInterval},
		Order: len(delay) - 1,
		Delay: delay,
	}
}

// TabInput returns a two-antenna job with one tabulated scan of nPoint
// steps. Antenna a holds samples T[i] = (a+1)*10 + i.
func TabInput(nPoint int) *model.Input {
	in := fixtureJob()
	scan := model.Scan{
		SourceID: 1,
		ConfigID: 0,
		MJDStart: in.MJDStart,
		ModelInc: FixtureModelInc,
		NPoint:   nPoint,
		Tab:      make([]*model.TabulatedModel, len(in.Antennas)),
	}
	for a := range in.Antennas {
		t := make([]float64, nPoint+3)
		for i := range t {
			t[i] = float64(a+1)*10 + float64(i)
		}
		scan.Tab[a] = &model.TabulatedModel{T: t}
	}
	in.Scans = []model.Scan{scan}
	return in
}
