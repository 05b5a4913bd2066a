// Package model defines the in-memory delay model handed from the model store
// to the table writer.
//
// An Input is everything one run needs: the job reference epoch, the antennas
// with their clock offsets, the sources, the correlator configurations (bands
// and antenna slots) and, per scan, the geometric delay models produced by the
// delay server. Each (antenna, step) carries its model in one of two forms:
//
//   - Polynomial: a Taylor expansion in time referenced to an epoch, in
//     microseconds, microseconds per second, and so on.
//   - Tabulated: delay samples at a fixed interval; a step uses the four
//     samples that bracket it.
//
// Units follow the store: delays in microseconds, rates in microseconds per
// second, sky frequencies in MHz. Conversion to seconds and Hz happens in the
// projector.
package model
