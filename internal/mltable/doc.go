// Package mltable writes the INTERFEROMETER_MODEL binary table.
//
// One row is written per (scan, model step, antenna). The row carries the
// group delay polynomial and its rate, frequency independent, and the same
// polynomials scaled to phase (turns, Hz) for every band. When two
// polarizations are correlated the whole per-polarization block is repeated;
// the schema variant is fixed when the table is opened.
//
// Antenna steps without a model are skipped and reported once per antenna.
// A row whose length disagrees with the schema aborts the table.
package mltable
