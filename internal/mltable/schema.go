package mltable

import (
	"fmt"
	"time"

	"github.com/roach88/delaymodel/internal/fits"
	"github.com/roach88/delaymodel/internal/project"
)

// TableName is the EXTNAME of the model table.
const TableName = "INTERFEROMETER_MODEL"

// Header keyword values that do not depend on the job.
const (
	TableRevision  = 2
	FormatRevision = 1.00
)

// Fields written as zero until ionosphere and dispersion modelling exist.
const (
	FaradayRotation     float32 = 0.0
	FreqVariation       float32 = 0.0
	DispersiveDelay     float32 = 0.0
	DispersiveDelayRate float32 = 0.0
)

// ArrayID is the 1-based array number of every row.
const ArrayID = 1

// MaxPol is the largest supported polarization count.
const MaxPol = 2

// Columns returns the column list for nBand bands and nPol polarizations.
// The second polarization block is present only when nPol is 2.
func Columns(nBand, nPol int) []fits.Column {
	bandFloat := fits.Repeated(nBand, fits.Float32)
	bandDouble := fits.Repeated(project.NPoly*nBand, fits.Float64)
	poly := fits.Repeated(project.NPoly, fits.Float64)

	cols := []fits.Column{
		{Name: "TIME", Format: "1D", Comment: "time of model start", Unit: "DAYS"},
		{Name: "TIME_INTERVAL", Format: "1E", Comment: "model interval", Unit: "DAYS"},
		{Name: "SOURCE_ID", Format: "1J", Comment: "source id from sources tbl"},
		{Name: "ANTENNA_NO", Format: "1J", Comment: "antenna number from antennas tbl"},
		{Name: "ARRAY", Format: "1J", Comment: "array id number"},
		{Name: "FREQID", Format: "1J", Comment: "frequency id number from frequency tbl"},
		{Name: "I.FAR.ROT", Format: "1E", Comment: "ionospheric faraday rotation", Unit: "RAD/METER**2"},
		{Name: "FREQ.VAR", Format: bandFloat, Comment: "time variable freq. offset", Unit: "HZ"},
	}
	for p := 1; p <= nPol; p++ {
		cols = append(cols,
			fits.Column{Name: fmt.Sprintf("PDELAY_%d", p), Format: bandDouble, Comment: "total phase delay at ref time", Unit: "TURNS"},
			fits.Column{Name: fmt.Sprintf("GDELAY_%d", p), Format: poly, Comment: "total group delay at ref time", Unit: "SECONDS"},
			fits.Column{Name: fmt.Sprintf("PRATE_%d", p), Format: bandDouble, Comment: "phase delay rate", Unit: "HZ"},
			fits.Column{Name: fmt.Sprintf("GRATE_%d", p), Format: poly, Comment: "group delay rate", Unit: "SEC/SEC"},
			fits.Column{Name: fmt.Sprintf("DISP_%d", p), Format: "1E", Comment: fmt.Sprintf("dispersive delay for polar.%d", p), Unit: "SECONDS"},
			fits.Column{Name: fmt.Sprintf("DDISP_%d", p), Format: "1E", Comment: fmt.Sprintf("dispersive delay rate for polar. %d", p), Unit: "SEC/SEC"},
		)
	}
	return cols
}

// Layout is the table variant chosen when the table is opened.
type Layout struct {
	NBand  int
	NPol   int
	Schema *fits.Schema
}

// NewLayout validates the band and polarization counts and builds the schema.
func NewLayout(nBand, nPol int) (*Layout, error) {
	if nBand < 1 {
		return nil, fmt.Errorf("band count %d: need at least one band", nBand)
	}
	if nPol < 1 || nPol > MaxPol {
		return nil, fmt.Errorf("polarization count %d: must be 1 or 2", nPol)
	}
	s, err := fits.NewSchema(Columns(nBand, nPol))
	if err != nil {
		return nil, err
	}
	return &Layout{NBand: nBand, NPol: nPol, Schema: s}, nil
}

// Keys returns the table keywords written after the column declarations.
// refMJD is the job reference day; now stamps the creation date.
func (l *Layout) Keys(refMJD int, now time.Time) []fits.Card {
	return []fits.Card{
		{Key: "NO_BAND", Value: l.NBand},
		{Key: "TABREV", Value: TableRevision},
		{Key: "NO_POL", Value: l.NPol},
		{Key: "GSTIA0", Value: 0.0},
		{Key: "DEGPDY", Value: 0.0},
		{Key: "RDATE", Value: MJDToDate(refMJD)},
		{Key: "CDATE", Value: MJDToDate(int(TimeToMJD(now)))},
		{Key: "NPOLY", Value: project.NPoly},
		{Key: "REVISION", Value: FormatRevision},
	}
}
