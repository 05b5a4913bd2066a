package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/delaymodel/internal/model"
)

// ErrNoJob is returned by Load when nothing has been imported.
var ErrNoJob = errors.New("store holds no job")

// Load reads the stored job. Every collection is returned in index order.
func (s *Store) Load(ctx context.Context) (*model.Input, error) {
	in := &model.Input{}

	err := s.db.QueryRowContext(ctx,
		`SELECT mjd_start, n_pol FROM job WHERE id = 1`,
	).Scan(&in.MJDStart, &in.NPol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoJob
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	if in.Antennas, err = s.loadAntennas(ctx); err != nil {
		return nil, err
	}
	if in.Sources, err = s.loadSources(ctx); err != nil {
		return nil, err
	}
	if in.Configs, err = s.loadConfigs(ctx); err != nil {
		return nil, err
	}
	if in.Scans, err = s.loadScans(ctx); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Store) loadAntennas(ctx context.Context) ([]model.Antenna, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, clock_delay, clock_rate FROM antennas ORDER BY idx ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query antennas: %w", err)
	}
	defer rows.Close()

	var out []model.Antenna
	for rows.Next() {
		var a model.Antenna
		if err := rows.Scan(&a.Name, &a.Clock.Delay, &a.Clock.Rate); err != nil {
			return nil, fmt.Errorf("scan antenna: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate antennas: %w", err)
	}
	return out, nil
}

func (s *Store) loadSources(ctx context.Context) ([]model.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, fits_id FROM sources ORDER BY idx ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []model.Source
	for rows.Next() {
		var src model.Source
		if err := rows.Scan(&src.Name, &src.FitsID); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}

func (s *Store) loadConfigs(ctx context.Context) ([]model.Config, error) {
	var out []model.Config
	// The pool holds one connection, so child tables are read after the
	// parent rows are closed.
	if err := s.each(ctx, `
		SELECT freq_id FROM configs ORDER BY idx ASC
	`, func(rows *sql.Rows) error {
		var c model.Config
		if err := rows.Scan(&c.FreqID); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load configs: %w", err)
	}

	if err := s.each(ctx, `
		SELECT config_idx, freq_mhz FROM config_bands ORDER BY config_idx ASC, band ASC
	`, func(rows *sql.Rows) error {
		var idx int
		var b model.Band
		if err := rows.Scan(&idx, &b.FreqMHz); err != nil {
			return err
		}
		if idx < 0 || idx >= len(out) {
			return fmt.Errorf("band for unknown config %d", idx)
		}
		out[idx].Bands = append(out[idx].Bands, b)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load config bands: %w", err)
	}

	if err := s.each(ctx, `
		SELECT config_idx, antenna FROM config_antennas ORDER BY config_idx ASC, slot ASC
	`, func(rows *sql.Rows) error {
		var idx, ant int
		if err := rows.Scan(&idx, &ant); err != nil {
			return err
		}
		if idx < 0 || idx >= len(out) {
			return fmt.Errorf("antenna slot for unknown config %d", idx)
		}
		out[idx].Antennas = append(out[idx].Antennas, ant)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load config antennas: %w", err)
	}

	return out, nil
}

func (s *Store) loadScans(ctx context.Context) ([]model.Scan, error) {
	var out []model.Scan
	if err := s.each(ctx, `
		SELECT source, config, mjd_start, poly_interval, model_inc,
		       n_poly, n_point, n_phase_centres, form, n_model_ant
		FROM scans ORDER BY idx ASC
	`, func(rows *sql.Rows) error {
		var sc model.Scan
		var form string
		var nAnt int
		if err := rows.Scan(&sc.SourceID, &sc.ConfigID, &sc.MJDStart, &sc.PolyInterval, &sc.ModelInc,
			&sc.NPoly, &sc.NPoint, &sc.NPhaseCentres, &form, &nAnt); err != nil {
			return err
		}
		switch form {
		case formPoly:
			sc.Poly = make([][][]model.PolyModel, nAnt)
		case formTab:
			sc.Tab = make([]*model.TabulatedModel, nAnt)
		}
		out = append(out, sc)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load scans: %w", err)
	}

	if err := s.each(ctx, `
		SELECT scan_idx, antenna, phase_centre, step, mjd, sec, poly_order, delay
		FROM poly_models
		ORDER BY scan_idx ASC, antenna ASC, phase_centre ASC, step ASC
	`, func(rows *sql.Rows) error {
		var idx, a, pc, p int
		var m model.PolyModel
		var delay string
		if err := rows.Scan(&idx, &a, &pc, &p, &m.MJD, &m.Sec, &m.Order, &delay); err != nil {
			return err
		}
		if idx < 0 || idx >= len(out) || a < 0 || a >= len(out[idx].Poly) {
			return fmt.Errorf("poly model for unknown scan %d antenna %d", idx, a)
		}
		d, err := unmarshalFloats(delay)
		if err != nil {
			return err
		}
		m.Delay = d

		ant := out[idx].Poly[a]
		for len(ant) <= pc {
			ant = append(ant, nil)
		}
		for len(ant[pc]) < p {
			ant[pc] = append(ant[pc], model.PolyModel{})
		}
		ant[pc] = append(ant[pc], m)
		out[idx].Poly[a] = ant
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load poly models: %w", err)
	}

	if err := s.each(ctx, `
		SELECT scan_idx, antenna, samples FROM tab_models ORDER BY scan_idx ASC, antenna ASC
	`, func(rows *sql.Rows) error {
		var idx, a int
		var samples string
		if err := rows.Scan(&idx, &a, &samples); err != nil {
			return err
		}
		if idx < 0 || idx >= len(out) || a < 0 || a >= len(out[idx].Tab) {
			return fmt.Errorf("tabulated model for unknown scan %d antenna %d", idx, a)
		}
		t, err := unmarshalFloats(samples)
		if err != nil {
			return err
		}
		out[idx].Tab[a] = &model.TabulatedModel{T: t}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load tabulated models: %w", err)
	}

	return out, nil
}

// each runs query and calls fn for every row.
func (s *Store) each(ctx context.Context, query string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
