package mltable

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/delaymodel/internal/fits"
	"github.com/roach88/delaymodel/internal/metrics"
	"github.com/roach88/delaymodel/internal/model"
	"github.com/roach88/delaymodel/internal/project"
)

// Stats summarizes one table write.
type Stats struct {
	Rows            int64
	Skipped         int      // antenna steps without a model
	SkippedAntennas []string // distinct antennas reported, in first-seen order
	Scans           int      // scans visited before completion or cancellation
}

// Writer drives the scan model through the projector into a table.
type Writer struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	// Antennas restricts output to the named stations. Empty means all.
	Antennas []string
	// NPol overrides the input's polarization count when non-zero.
	NPol int
	// Now stamps CDATE. Defaults to time.Now.
	Now func() time.Time
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Layout returns the table variant for in.
func (w *Writer) Layout(in *model.Input) (*Layout, error) {
	nPol := in.NPol
	if w.NPol != 0 {
		nPol = w.NPol
	}
	return NewLayout(in.MaxBands(), nPol)
}

// WriteFile creates the table at path, writes every row of in and closes
// the table. The table is closed on error and cancellation too, leaving a
// valid table holding the rows written so far.
func (w *Writer) WriteFile(ctx context.Context, path string, in *model.Input) (stats Stats, err error) {
	layout, err := w.Layout(in)
	if err != nil {
		return Stats{}, err
	}

	tw, err := fits.Create(path, TableName, layout.Schema, layout.Keys(in.RefMJD(), w.now()))
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		if cerr := tw.Close(); cerr != nil && err == nil {
			err = cerr
		}
		w.Metrics.TableClosed(tw.Rows())
	}()

	return w.Write(ctx, in, tw, layout)
}

// Write appends the rows of in to an open table. The table must have been
// opened with layout's schema.
func (w *Writer) Write(ctx context.Context, in *model.Input, tw *fits.Writer, layout *Layout) (Stats, error) {
	var stats Stats
	log := w.logger()

	row, err := layout.Schema.NewRow()
	if err != nil {
		return stats, err
	}

	keep, err := w.filter(in)
	if err != nil {
		return stats, err
	}

	refDay := float64(in.RefMJD())
	reported := make(map[int]bool)
	freqVar := make([]float32, layout.NBand)
	for i := range freqVar {
		freqVar[i] = FreqVariation
	}

	for s := range in.Scans {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Scans++

		scan := &in.Scans[s]
		if scan.ConfigID < 0 {
			continue
		}
		if scan.ConfigID >= len(in.Configs) {
			return stats, fmt.Errorf("scan %d: config %d out of range", s, scan.ConfigID)
		}
		if scan.SourceID < 0 || scan.SourceID >= len(in.Sources) {
			return stats, fmt.Errorf("scan %d: source %d out of range", s, scan.SourceID)
		}
		cfg := &in.Configs[scan.ConfigID]
		sourceID := int32(in.Sources[scan.SourceID].FitsID + 1)
		freqID := int32(cfg.FreqID + 1)
		freqs := bandFreqs(cfg, layout.NBand)

		var interval float32
		if scan.HasPoly() {
			interval = float32(scan.PolyInterval / model.SecondsPerDay)
		} else {
			interval = float32(scan.ModelInc / model.SecondsPerDay)
		}

		for p := 0; p < scan.Steps(); p++ {
			for _, a := range cfg.Antennas {
				if a < 0 || a >= len(in.Antennas) || !keep[a] {
					continue
				}

				m := scan.Model(a, p)
				if m.IsZero() {
					stats.Skipped++
					name := in.Antennas[a].Name
					w.Metrics.ModelSkipped(name)
					if !reported[a] {
						reported[a] = true
						stats.SkippedAntennas = append(stats.SkippedAntennas, name)
						miss := &model.MissingModelError{Scan: s, Antenna: a, Step: p, Form: modelForm(scan)}
						log.WarnContext(ctx, "skipping antenna", "antenna", name, "err", miss)
					}
					continue
				}

				var t, deltaT float64
				if m.Poly != nil {
					t = float64(m.Poly.MJD) - refDay + m.Poly.Sec/model.SecondsPerDay
					deltaT = (float64(m.Poly.MJD)-in.MJDStart)*model.SecondsPerDay + m.Poly.Sec
				} else {
					t = scan.MJDStart - refDay + float64(p)*scan.ModelInc/model.SecondsPerDay
					deltaT = scan.ModelInc * float64(p)
				}

				res, err := project.Project(m, in.Antennas[a].Clock, deltaT, freqs)
				if err != nil {
					return stats, fmt.Errorf("scan %d antenna %d step %d: %w", s, a, p, err)
				}

				row.Float64(t)
				row.Float32(interval)
				row.Int32(sourceID)
				row.Int32(int32(a + 1))
				row.Int32(ArrayID)
				row.Int32(freqID)
				row.Float32(FaradayRotation)
				row.Float32s(freqVar...)
				ppoly := project.Flatten(res.PPoly)
				prate := project.Flatten(res.PRate)
				for i := 0; i < layout.NPol; i++ {
					row.Float64s(ppoly...)
					row.Float64s(res.GPoly[:]...)
					row.Float64s(prate...)
					row.Float64s(res.GRate[:]...)
					row.Float32(DispersiveDelay)
					row.Float32(DispersiveDelayRate)
				}

				if err := tw.Append(row); err != nil {
					return stats, err
				}
				stats.Rows++
				w.Metrics.RowWritten()
			}
		}
	}

	log.DebugContext(ctx, "model table written", "rows", stats.Rows, "skipped", stats.Skipped)
	return stats, nil
}

// filter resolves the antenna name filter to a set of input indices.
func (w *Writer) filter(in *model.Input) ([]bool, error) {
	keep := make([]bool, len(in.Antennas))
	if len(w.Antennas) == 0 {
		for i := range keep {
			keep[i] = true
		}
		return keep, nil
	}
	for _, name := range w.Antennas {
		i := in.AntennaIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("antenna filter: unknown antenna %q", name)
		}
		keep[i] = true
	}
	return keep, nil
}

// bandFreqs returns the sky frequencies of cfg padded with zeros to nBand.
func bandFreqs(cfg *model.Config, nBand int) []float64 {
	freqs := make([]float64, nBand)
	for i, b := range cfg.Bands {
		if i == nBand {
			break
		}
		freqs[i] = b.FreqHz()
	}
	return freqs
}

func modelForm(scan *model.Scan) string {
	switch {
	case scan.HasPoly():
		return "polynomial"
	case scan.HasTab():
		return "tabulated"
	}
	return ""
}
