package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/delaymodel/internal/config"
	"github.com/roach88/delaymodel/internal/metrics"
	"github.com/roach88/delaymodel/internal/mltable"
	"github.com/roach88/delaymodel/internal/store"
	"github.com/roach88/delaymodel/internal/tweak"
)

// WriteOptions holds flags for the write command.
type WriteOptions struct {
	*RootOptions
	ConfigFile string
	Run        config.RunConfig // flag values, applied over the config file when set

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs RunIDGenerator
	// Now stamps the table creation date (for testing). Defaults to time.Now.
	Now func() time.Time
}

// WriteResult summarizes a write run.
type WriteResult struct {
	Output          string   `json:"output"`
	Rows            int64    `json:"rows"`
	Skipped         int      `json:"skipped"`
	SkippedAntennas []string `json:"skipped_antennas,omitempty"`
	Corrections     int      `json:"corrections"`
	Modified        int      `json:"modified"`
	Candidates      int      `json:"candidates"`
}

// NewWriteCommand creates the write command.
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	return newWriteCommand(&WriteOptions{RootOptions: rootOpts})
}

func newWriteCommand(opts *WriteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write the INTERFEROMETER_MODEL table",
		Long: `Write the INTERFEROMETER_MODEL table for the job in the model store.

Settings come from the run config (--config) with flags taking precedence.
Corrections in the delay correction file are applied to matching polynomial
models before projection; a missing correction file is not an error.

An interrupt closes the table after the current scan, leaving a valid,
shorter table.

Example:
  delaymodel write --db job.db --output job.fits
  delaymodel write --config run.yaml --antenna EF --antenna WB`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigFile, "config", "c", "", "run config file (YAML)")
	f.StringVar(&opts.Run.DB, "db", config.DefaultDB, "path to SQLite model store")
	f.StringVarP(&opts.Run.Output, "output", "o", config.DefaultOutput, "output table path")
	f.StringVar(&opts.Run.TweakFile, "tweak-file", tweak.DefaultFile, "delay correction file")
	f.IntVar(&opts.Run.Pols, "pols", 0, "polarization count, 1 or 2 (0 = from model)")
	f.StringArrayVar(&opts.Run.Antennas, "antenna", nil, "write only this antenna (repeatable)")
	f.StringVar(&opts.Run.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

// resolveConfig merges the config file, if any, with explicitly set flags.
func resolveConfig(opts *WriteOptions, cmd *cobra.Command) (*config.RunConfig, error) {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadFile(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("db") {
		cfg.DB = opts.Run.DB
	}
	if f.Changed("output") {
		cfg.Output = opts.Run.Output
	}
	if f.Changed("tweak-file") {
		cfg.TweakFile = opts.Run.TweakFile
	}
	if f.Changed("pols") {
		cfg.Pols = opts.Run.Pols
	}
	if f.Changed("antenna") {
		cfg.Antennas = opts.Run.Antennas
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = opts.Run.MetricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runWrite(opts *WriteOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid run config", err)
	}

	gen := opts.RunIDs
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	formatter.RunID = gen.Generate()
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr()).With("run", formatter.RunID)

	ctx, stop := interruptible(cmd.Context(), logger)
	defer stop()

	st, err := openExisting(cfg.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "open model store", err)
	}
	defer st.Close()

	logger.Debug("loading model", "db", cfg.DB)
	in, err := st.Load(ctx)
	if errors.Is(err, store.ErrNoJob) {
		return formatter.Fail(ExitCommandError, ErrCodeNoJob, "model store is empty", err)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "load model", err)
	}
	logger.Info("model loaded", "antennas", len(in.Antennas), "scans", len(in.Scans))

	rec := metrics.New()

	corrections, err := tweak.LoadFile(cfg.TweakFile)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeTweak, "read correction file", err)
	}
	rep := tweak.Apply(in, corrections)
	rep.Log(ctx, logger, cfg.TweakFile)
	if rep.Corrections > 0 {
		rec.Corrections(rep.Modified, rep.Candidates)
	}

	w := &mltable.Writer{
		Logger:   logger,
		Metrics:  rec,
		Antennas: cfg.Antennas,
		NPol:     cfg.Pols,
		Now:      opts.Now,
	}
	stats, err := w.WriteFile(ctx, cfg.Output, in)
	if errors.Is(err, context.Canceled) {
		return formatter.Fail(ExitFailure, ErrCodeInterrupted,
			fmt.Sprintf("interrupted after %d rows, table closed", stats.Rows), err)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeTable, "write model table", err)
	}

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeWriteFailed, "write metrics", err)
		}
	}

	result := WriteResult{
		Output:          cfg.Output,
		Rows:            stats.Rows,
		Skipped:         stats.Skipped,
		SkippedAntennas: stats.SkippedAntennas,
		Corrections:     rep.Corrections,
		Modified:        rep.Modified,
		Candidates:      rep.Candidates,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Wrote %d rows to %s\n", result.Rows, result.Output)
	if result.Skipped > 0 {
		fmt.Fprintf(formatter.Writer, "  skipped %d antenna steps without a model (%v)\n",
			result.Skipped, result.SkippedAntennas)
	}
	if result.Corrections > 0 {
		fmt.Fprintf(formatter.Writer, "  %s\n", correctionSummary(rep))
	}
	return nil
}

func correctionSummary(rep tweak.Report) string {
	if rep.Complete() {
		return fmt.Sprintf("All %d models modified", rep.Candidates)
	}
	return fmt.Sprintf("Only %d of %d models modified", rep.Modified, rep.Candidates)
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
