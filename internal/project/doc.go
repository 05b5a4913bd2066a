// Package project turns a per-antenna geometric delay model into the
// polynomials written to the interferometer model table.
//
// The output convention is the negative of the delay server's: a positive
// geometric delay becomes a negative group delay. After sign inversion and
// clock removal the group delay polynomial gpoly (seconds) and its exact
// derivative grate (sec/sec) are frequency independent; phase delay and rate
// per band are the same polynomials scaled by the band's sky frequency (turns
// and Hz).
package project
