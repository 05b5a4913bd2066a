// Package store provides SQLite-backed storage for a job's delay model.
//
// A database holds exactly one job: its antennas, sources, correlator
// configurations and scans, with every polynomial and tabulated model. The
// import command fills it from a YAML model dump; the write command loads it
// back and feeds the table writer.
//
// # Layout
//
//   - job: reference MJD and polarization count (single row)
//   - antennas, sources: indexed by their position in the job
//   - configs, config_bands, config_antennas: correlator setups
//   - scans: scan geometry and the model form present
//   - poly_models: one row per (scan, antenna, phase centre, step)
//   - tab_models: one row per (scan, antenna)
//
// Coefficient and sample arrays are stored as JSON TEXT.
//
// # Determinism
//
// Load orders every query by its index columns, so a job read back is equal
// to the job imported.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
