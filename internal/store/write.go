package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/delaymodel/internal/model"
)

// Form values recorded in scans.form.
const (
	formPoly = "poly"
	formTab  = "tab"
	formNone = "none"
)

// Import replaces the stored job with in. The whole job is written in one
// transaction; on error the previous contents are untouched.
func (s *Store) Import(ctx context.Context, in *model.Input) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := clearJob(ctx, tx); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO job (id, mjd_start, n_pol) VALUES (1, ?, ?)`,
		in.MJDStart, in.NPol,
	); err != nil {
		return fmt.Errorf("import job: %w", err)
	}

	for i, a := range in.Antennas {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO antennas (idx, name, clock_delay, clock_rate) VALUES (?, ?, ?, ?)`,
			i, model.CanonicalName(a.Name), a.Clock.Delay, a.Clock.Rate,
		); err != nil {
			return fmt.Errorf("import antenna %d (%s): %w", i, a.Name, err)
		}
	}

	for i, src := range in.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sources (idx, name, fits_id) VALUES (?, ?, ?)`,
			i, src.Name, src.FitsID,
		); err != nil {
			return fmt.Errorf("import source %d: %w", i, err)
		}
	}

	for i, c := range in.Configs {
		if err := insertConfig(ctx, tx, i, c); err != nil {
			return fmt.Errorf("import config %d: %w", i, err)
		}
	}

	for i := range in.Scans {
		if err := insertScan(ctx, tx, i, &in.Scans[i]); err != nil {
			return fmt.Errorf("import scan %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}
	return nil
}

// clearJob deletes the stored job. Child tables cascade from configs and scans.
func clearJob(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"scans", "configs", "sources", "antennas", "job"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func insertConfig(ctx context.Context, tx *sql.Tx, idx int, c model.Config) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO configs (idx, freq_id) VALUES (?, ?)`, idx, c.FreqID,
	); err != nil {
		return err
	}
	for b, band := range c.Bands {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO config_bands (config_idx, band, freq_mhz) VALUES (?, ?, ?)`,
			idx, b, band.FreqMHz,
		); err != nil {
			return fmt.Errorf("band %d: %w", b, err)
		}
	}
	for slot, ant := range c.Antennas {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO config_antennas (config_idx, slot, antenna) VALUES (?, ?, ?)`,
			idx, slot, ant,
		); err != nil {
			return fmt.Errorf("slot %d: %w", slot, err)
		}
	}
	return nil
}

func insertScan(ctx context.Context, tx *sql.Tx, idx int, sc *model.Scan) error {
	form, nAnt := formNone, 0
	switch {
	case sc.HasPoly():
		form, nAnt = formPoly, len(sc.Poly)
	case sc.HasTab():
		form, nAnt = formTab, len(sc.Tab)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scans
		(idx, source, config, mjd_start, poly_interval, model_inc, n_poly, n_point, n_phase_centres, form, n_model_ant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		idx, sc.SourceID, sc.ConfigID, sc.MJDStart, sc.PolyInterval, sc.ModelInc,
		sc.NPoly, sc.NPoint, sc.NPhaseCentres, form, nAnt,
	); err != nil {
		return err
	}

	for a, centres := range sc.Poly {
		for pc, steps := range centres {
			for p, m := range steps {
				delay, err := marshalFloats(m.Delay)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO poly_models
					(scan_idx, antenna, phase_centre, step, mjd, sec, poly_order, delay)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				`, idx, a, pc, p, m.MJD, m.Sec, m.Order, delay); err != nil {
					return fmt.Errorf("poly model antenna %d centre %d step %d: %w", a, pc, p, err)
				}
			}
		}
	}

	for a, tab := range sc.Tab {
		if tab == nil {
			continue
		}
		samples, err := marshalFloats(tab.T)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tab_models (scan_idx, antenna, samples) VALUES (?, ?, ?)`,
			idx, a, samples,
		); err != nil {
			return fmt.Errorf("tabulated model antenna %d: %w", a, err)
		}
	}
	return nil
}
