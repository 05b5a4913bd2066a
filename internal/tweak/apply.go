package tweak

import (
	"context"
	"log/slog"

	"github.com/roach88/delaymodel/internal/model"
)

// Match describes one corrected model, for verbose logging.
type Match struct {
	Scan        int
	Antenna     int
	PhaseCentre int
	Step        int
	Epoch       model.Epoch
	Correction  Correction
}

// Report summarizes an Apply call.
type Report struct {
	Corrections int // corrections considered
	Modified    int // (correction, model) matches applied
	Candidates  int // polynomial models seen while scanning for the first correction
	Matches     []Match
}

// Complete reports whether every candidate model was modified exactly once
// overall. A mismatch is worth a warning, never a failure.
func (r Report) Complete() bool {
	return r.Modified == r.Candidates
}

// Apply adds corrections to every matching polynomial model in in, in place.
// Tabulated scans are not touched.
func Apply(in *model.Input, corrections []Correction) Report {
	rep := Report{Corrections: len(corrections)}

	for n, c := range corrections {
		for s := range in.Scans {
			scan := &in.Scans[s]
			for a, centres := range scan.Poly {
				for i := 0; i <= scan.NPhaseCentres && i < len(centres); i++ {
					steps := centres[i]
					for j := range steps {
						m := &steps[j]
						if c.Matches(m.Epoch) {
							c.Apply(m)
							rep.Modified++
							rep.Matches = append(rep.Matches, Match{
								Scan:        s,
								Antenna:     a,
								PhaseCentre: i,
								Step:        j,
								Epoch:       m.Epoch,
								Correction:  c,
							})
						}
						if n == 0 {
							rep.Candidates++
						}
					}
				}
			}
		}
	}

	return rep
}

// Log writes the outcome of an Apply call. Nothing is logged when there were
// no corrections.
func (r Report) Log(ctx context.Context, logger *slog.Logger, file string) {
	if r.Corrections == 0 {
		return
	}
	logger.InfoContext(ctx, "delay tweaking file found", "file", file, "corrections", r.Corrections)
	for _, m := range r.Matches {
		logger.DebugContext(ctx, "match found",
			"ant", m.Antenna, "mjd", m.Epoch.MJD, "sec", m.Epoch.Sec, "epoch", m.Correction.MJD)
	}
	if !r.Complete() {
		logger.WarnContext(ctx, "correction count mismatch",
			"modified", r.Modified, "models", r.Candidates)
		return
	}
	logger.InfoContext(ctx, "all models modified", "models", r.Candidates)
}
