package model

import (
	"errors"
	"fmt"
)

// ValidationError lists every problem found in an Input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid model: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid model: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks cross references and model shapes, and canonicalizes
// antenna names in place. It returns a *ValidationError or nil.
func (in *Input) Validate() error {
	var probs []string
	addf := func(format string, args ...any) {
		probs = append(probs, fmt.Sprintf(format, args...))
	}

	if in.NPol < 1 || in.NPol > 2 {
		addf("n_pol %d: must be 1 or 2", in.NPol)
	}

	seen := make(map[string]int, len(in.Antennas))
	for i := range in.Antennas {
		name := CanonicalName(in.Antennas[i].Name)
		if name == "" {
			addf("antenna %d: empty name", i)
			continue
		}
		if j, dup := seen[name]; dup {
			addf("antenna %d: name %s already used by antenna %d", i, name, j)
		}
		seen[name] = i
		in.Antennas[i].Name = name
	}

	for i, c := range in.Configs {
		for slot, a := range c.Antennas {
			if a < -1 || a >= len(in.Antennas) {
				addf("config %d slot %d: antenna %d out of range", i, slot, a)
			}
		}
		for b, band := range c.Bands {
			if band.FreqMHz <= 0 {
				addf("config %d band %d: frequency %g MHz", i, b, band.FreqMHz)
			}
		}
	}

	for s := range in.Scans {
		sc := &in.Scans[s]
		if sc.ConfigID >= len(in.Configs) || sc.ConfigID < -1 {
			addf("scan %d: config %d out of range", s, sc.ConfigID)
		}
		if sc.SourceID < 0 || sc.SourceID >= len(in.Sources) {
			addf("scan %d: source %d out of range", s, sc.SourceID)
		}
		if sc.HasPoly() && sc.HasTab() {
			addf("scan %d: both polynomial and tabulated models present", s)
		}
		if len(sc.Poly) > len(in.Antennas) || len(sc.Tab) > len(in.Antennas) {
			addf("scan %d: models for more antennas than the job has", s)
		}
		if sc.HasTab() && sc.ModelInc <= 0 {
			addf("scan %d: tabulated models need a positive model_inc", s)
		}
		for a, centres := range sc.Poly {
			for pc, steps := range centres {
				for p, m := range steps {
					if m.Order < 0 || len(m.Delay) < m.Order+1 {
						addf("scan %d antenna %d centre %d step %d: order %d with %d coefficients",
							s, a, pc, p, m.Order, len(m.Delay))
					}
				}
			}
		}
	}

	if len(probs) > 0 {
		return &ValidationError{Problems: probs}
	}
	return nil
}
