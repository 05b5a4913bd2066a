// Package fits writes and reads FITS binary tables with fixed-width rows.
//
// A table is declared once as an ordered list of columns, each with a TFORM
// code such as "1D" or "24E". The schema computes the row width from the
// codes; every row is then assembled field by field in host byte order with a
// RowBuilder, checked against that width, converted to the big-endian order
// FITS requires and appended.
//
// Byte order conversion is per field element: a row holds fields of
// different widths (8-byte doubles next to 4-byte ints), so the whole row is
// never reversed as one unit.
//
// A row of the wrong length is fatal to the table. Every later row would be
// misaligned, so the writer refuses it and callers are expected to abort.
//
// # File Layout
//
//	primary HDU    SIMPLE, BITPIX=8, NAXIS=0, EXTEND   (one 2880-byte block)
//	BINTABLE HDU   XTENSION .. TFIELDS, TTYPEn/TFORMn/TUNITn, EXTNAME, keys
//	data           NAXIS2 rows of NAXIS1 bytes, zero padded to 2880
//
// NAXIS2 is written as 0 and patched with the real row count on Close.
package fits
