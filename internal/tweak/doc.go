// Package tweak applies manual delay corrections to polynomial models.
//
// A correction file lists epochs (fractional MJD) with additive deltas for the
// first three polynomial coefficients. Every stored polynomial whose epoch lies
// strictly within Tolerance of a correction epoch receives the deltas, in
// place, on the in-memory model. Nothing records that a model was corrected:
// applying the same corrections twice adds them twice.
//
// The file is optional. Its absence is the normal case and yields no
// corrections.
package tweak
