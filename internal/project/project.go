package project

import (
	"github.com/roach88/delaymodel/internal/model"
)

// NPoly is the number of polynomial terms written per delay column.
const NPoly = 6

// Microsecond converts model units (µs, µs/s, ...) to seconds.
const Microsecond = 1.0e-6

// Poly is a fixed-degree polynomial in time, lowest order first.
type Poly [NPoly]float64

// Result is the projected model for one antenna at one step.
type Result struct {
	GPoly Poly   // group delay, seconds
	GRate Poly   // group delay rate, sec/sec
	PPoly []Poly // phase delay per band, turns
	PRate []Poly // phase rate per band, Hz
}

// Project converts a geometric model to table polynomials. deltaT is the
// time of the step, in seconds, relative to the epoch the clock offset is
// referenced to. freqs are sky frequencies in Hz.
//
// A model with neither form set returns model.ErrModelMissing.
func Project(m model.GeometricModel, clk model.AntennaClock, deltaT float64, freqs []float64) (*Result, error) {
	var g Poly

	switch {
	case m.Poly != nil:
		g = FromDelay(m.Poly.Delay, m.Poly.Order)
	case m.Samples != nil:
		s := m.Samples
		g = Linear(-s[0], -s[1], -s[2], -s[3], m.Interval)
	default:
		return nil, model.ErrModelMissing
	}

	g = RemoveClock(g, clk, deltaT)

	r := &Result{GPoly: g, GRate: Derivative(g)}
	r.PPoly, r.PRate = Bands(r.GPoly, r.GRate, freqs)

	return r, nil
}

// FromDelay sign-inverts delay coefficients and converts them to seconds.
// Terms beyond order (or beyond NPoly) are zero.
func FromDelay(delay []float64, order int) Poly {
	var g Poly
	for k := 0; k < NPoly && k <= order && k < len(delay); k++ {
		g[k] = -delay[k] * Microsecond
	}
	return g
}

// Linear derives a polynomial referenced to the second of four samples taken
// interval seconds apart. Only the constant and linear terms are filled; a and
// d do not contribute.
//
// TODO: fit a and d once a cubic through all four samples is validated
// against the polynomial path.
func Linear(a, b, c, d, interval float64) Poly {
	var g Poly
	g[0] = b * Microsecond
	g[1] = (c - b) * Microsecond / interval
	return g
}

// RemoveClock subtracts the antenna clock offset and rate.
func RemoveClock(g Poly, clk model.AntennaClock, deltaT float64) Poly {
	rate := clk.Rate * Microsecond
	g[0] -= clk.Delay*Microsecond + rate*deltaT
	g[1] -= rate
	return g
}

// Derivative returns the exact time derivative of g. The highest term is zero.
func Derivative(g Poly) Poly {
	var r Poly
	for k := 1; k < NPoly; k++ {
		r[k-1] = float64(k) * g[k]
	}
	return r
}

// Bands scales the group polynomials by each sky frequency.
func Bands(gpoly, grate Poly, freqs []float64) (ppoly, prate []Poly) {
	ppoly = make([]Poly, len(freqs))
	prate = make([]Poly, len(freqs))
	for j, f := range freqs {
		for k := 0; k < NPoly; k++ {
			ppoly[j][k] = gpoly[k] * f
			prate[j][k] = grate[k] * f
		}
	}
	return ppoly, prate
}

// Eval evaluates g at t seconds from its reference.
func Eval(g Poly, t float64) float64 {
	v := 0.0
	for k := NPoly - 1; k >= 0; k-- {
		v = v*t + g[k]
	}
	return v
}

// Flatten concatenates per-band polynomials band-major, the layout of the
// PDELAY and PRATE columns.
func Flatten(ps []Poly) []float64 {
	out := make([]float64, 0, len(ps)*NPoly)
	for _, p := range ps {
		out = append(out, p[:]...)
	}
	return out
}
