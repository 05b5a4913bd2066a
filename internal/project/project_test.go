package project

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/delaymodel/internal/model"
)

func TestProject_PolynomialSingleBand(t *testing.T) {
	m := model.GeometricModel{Poly: &model.PolyModel{
		Order: 5,
		Delay: []float64{100.0, 2.0, 0, 0, 0, 0},
	}}

	r, err := Project(m, model.AntennaClock{}, 0, []float64{1.0e6})
	require.NoError(t, err)

	assert.InDelta(t, -1.0e-4, r.GPoly[0], 1e-18)
	assert.InDelta(t, -2.0e-6, r.GPoly[1], 1e-20)
	for k := 2; k < NPoly; k++ {
		assert.Zero(t, r.GPoly[k])
	}

	require.Len(t, r.PPoly, 1)
	assert.InDelta(t, -100.0, r.PPoly[0][0], 1e-9)
	assert.InDelta(t, -2.0, r.PPoly[0][1], 1e-12)

	// rate polynomial is the exact derivative
	assert.Equal(t, r.GPoly[1], r.GRate[0])
	assert.Zero(t, r.GRate[NPoly-1])
	assert.Equal(t, r.GRate[0]*1.0e6, r.PRate[0][0])
}

func TestProject_PolynomialClockRate(t *testing.T) {
	delay := []float64{12.5, -0.75, 1e-4}
	clk := model.AntennaClock{Delay: 3.0, Rate: 0.02}
	m := model.GeometricModel{Poly: &model.PolyModel{Order: 2, Delay: delay}}

	r, err := Project(m, clk, 600, nil)
	require.NoError(t, err)

	// rate term is the clock-corrected first-order coefficient, bit for bit
	assert.Equal(t, -delay[1]*Microsecond-clk.Rate*Microsecond, r.GPoly[1])

	rate := clk.Rate * Microsecond
	assert.Equal(t, -delay[0]*Microsecond-(clk.Delay*Microsecond+rate*600), r.GPoly[0])
	assert.Equal(t, -delay[2]*Microsecond, r.GPoly[2])
	assert.Empty(t, r.PPoly)
}

func TestProject_OrderLimitsTerms(t *testing.T) {
	m := model.GeometricModel{Poly: &model.PolyModel{
		Order: 1,
		Delay: []float64{1, 2, 3, 4},
	}}

	r, err := Project(m, model.AntennaClock{}, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, r.GPoly[2], "terms past the model order stay zero")
	assert.Zero(t, r.GPoly[3])
}

func TestProject_Tabulated(t *testing.T) {
	samples := [4]float64{3.0, 5.0, 7.0, 9.0}
	m := model.GeometricModel{Samples: &samples, Interval: 120}

	r, err := Project(m, model.AntennaClock{}, 0, []float64{2.0e9})
	require.NoError(t, err)

	// stored delays are sign-inverted like the polynomial form
	assert.InDelta(t, -5.0e-6, r.GPoly[0], 1e-20)
	assert.InDelta(t, -2.0e-6/120, r.GPoly[1], 1e-22)
	for k := 2; k < NPoly; k++ {
		assert.Zero(t, r.GPoly[k])
	}
	assert.InDelta(t, -5.0e-6*2.0e9, r.PPoly[0][0], 1e-6)
}

func TestProject_Missing(t *testing.T) {
	_, err := Project(model.GeometricModel{}, model.AntennaClock{}, 0, nil)
	assert.True(t, errors.Is(err, model.ErrModelMissing))
}

func TestLinear_ReproducesSamples(t *testing.T) {
	tests := []struct {
		name     string
		b, c     float64
		interval float64
	}{
		{"rising", 5.0, 7.0, 120},
		{"falling", -3.25, -9.5, 60},
		{"flat", 1234.5, 1234.5, 1},
		{"large", 21345.123456, 21349.987654, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Linear(0, tt.b, tt.c, 0, tt.interval)
			assert.InEpsilon(t, tt.b*Microsecond, Eval(g, 0), 1e-15)
			assert.InEpsilon(t, tt.c*Microsecond, Eval(g, tt.interval), 1e-12)
		})
	}
}

func TestLinear_IgnoresOuterSamples(t *testing.T) {
	assert.Equal(t, Linear(0, 5, 7, 0, 120), Linear(-100, 5, 7, 100, 120))
}

func TestDerivative(t *testing.T) {
	g := Poly{1, 2, 3, 4, 5, 6}
	assert.Equal(t, Poly{2, 6, 12, 20, 30, 0}, Derivative(g))
}

func TestRemoveClock(t *testing.T) {
	g := RemoveClock(Poly{}, model.AntennaClock{Delay: 1, Rate: 0.5}, 10)
	assert.InDelta(t, -(1e-6 + 0.5e-6*10), g[0], 1e-20)
	assert.InDelta(t, -0.5e-6, g[1], 1e-20)
}

func TestBandsAndFlatten(t *testing.T) {
	gpoly := Poly{1, 2, 0, 0, 0, 0}
	grate := Derivative(gpoly)
	pp, pr := Bands(gpoly, grate, []float64{10, 100})

	require.Len(t, pp, 2)
	assert.Equal(t, Poly{10, 20, 0, 0, 0, 0}, pp[0])
	assert.Equal(t, Poly{100, 200, 0, 0, 0, 0}, pp[1])
	assert.Equal(t, Poly{200, 0, 0, 0, 0, 0}, pr[1])

	flat := Flatten(pp)
	require.Len(t, flat, 2*NPoly)
	assert.Equal(t, 10.0, flat[0])
	assert.Equal(t, 100.0, flat[NPoly])
}

func TestEval(t *testing.T) {
	assert.Equal(t, 1.0+2*3+3*9, Eval(Poly{1, 2, 3}, 3))
}
