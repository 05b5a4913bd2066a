package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/delaymodel/internal/config"
	"github.com/roach88/delaymodel/internal/store"
	"github.com/roach88/delaymodel/internal/tweak"
)

// TweakOptions holds flags for the tweak command.
type TweakOptions struct {
	*RootOptions
	Database  string
	TweakFile string
}

// TweakMatch is one corrected model in a tweak report.
type TweakMatch struct {
	Scan        int     `json:"scan"`
	Antenna     string  `json:"antenna"`
	PhaseCentre int     `json:"phase_centre"`
	Step        int     `json:"step"`
	MJD         int     `json:"mjd"`
	Sec         float64 `json:"sec"`
}

// TweakResult is the dry-run outcome of a correction file.
type TweakResult struct {
	File        string       `json:"file"`
	Found       bool         `json:"found"`
	Corrections int          `json:"corrections"`
	Modified    int          `json:"modified"`
	Candidates  int          `json:"candidates"`
	Complete    bool         `json:"complete"`
	Matches     []TweakMatch `json:"matches,omitempty"`
}

// NewTweakCommand creates the tweak command.
func NewTweakCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TweakOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tweak",
		Short: "Report which models a delay correction file would modify",
		Long: `Match a delay correction file against the stored polynomial models
without writing anything.

Each line of the file is "mjd A B C": models whose epoch lies within half a
second of mjd get A, B and C added to their first three delay coefficients.

Example:
  delaymodel tweak --db job.db --tweak-file calcif2.delay -v`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTweak(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", config.DefaultDB, "path to SQLite model store")
	cmd.Flags().StringVar(&opts.TweakFile, "tweak-file", tweak.DefaultFile, "delay correction file")

	return cmd
}

func runTweak(opts *TweakOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "open model store", err)
	}
	defer st.Close()

	in, err := st.Load(cmd.Context())
	if errors.Is(err, store.ErrNoJob) {
		return formatter.Fail(ExitCommandError, ErrCodeNoJob, "model store is empty", err)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "load model", err)
	}

	corrections, err := tweak.LoadFile(opts.TweakFile)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeTweak, "read correction file", err)
	}
	rep := tweak.Apply(in, corrections)

	result := TweakResult{
		File:        opts.TweakFile,
		Found:       fileExists(opts.TweakFile),
		Corrections: rep.Corrections,
		Modified:    rep.Modified,
		Candidates:  rep.Candidates,
		Complete:    rep.Complete(),
	}
	for _, m := range rep.Matches {
		result.Matches = append(result.Matches, TweakMatch{
			Scan:        m.Scan,
			Antenna:     in.Antennas[m.Antenna].Name,
			PhaseCentre: m.PhaseCentre,
			Step:        m.Step,
			MJD:         m.Epoch.MJD,
			Sec:         m.Epoch.Sec,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if !result.Found {
		fmt.Fprintf(formatter.Writer, "No correction file %s\n", result.File)
		return nil
	}
	for _, m := range result.Matches {
		formatter.VerboseLog("match: scan %d antenna %s centre %d step %d at %d/%.3f",
			m.Scan, m.Antenna, m.PhaseCentre, m.Step, m.MJD, m.Sec)
	}
	fmt.Fprintf(formatter.Writer, "%d corrections in %s\n", result.Corrections, result.File)
	if result.Corrections > 0 {
		fmt.Fprintln(formatter.Writer, correctionSummary(rep))
	}
	return nil
}
