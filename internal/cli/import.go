package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/delaymodel/internal/config"
	"github.com/roach88/delaymodel/internal/model"
	"github.com/roach88/delaymodel/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult summarizes an imported job.
type ImportResult struct {
	Database   string `json:"database"`
	Antennas   int    `json:"antennas"`
	Sources    int    `json:"sources"`
	Configs    int    `json:"configs"`
	Scans      int    `json:"scans"`
	PolyModels int    `json:"poly_models"`
	TabModels  int    `json:"tab_models"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <model.yaml>",
		Short: "Load a YAML model dump into the model store",
		Long: `Load a YAML model dump into the SQLite model store.

The dump is decoded strictly and checked for consistent cross references
before anything is written. Any job already in the store is replaced.

Example:
  delaymodel import --db job.db job_models.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", config.DefaultDB, "path to SQLite model store")

	return cmd
}

func runImport(opts *ImportOptions, dumpPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	in, err := store.ReadDumpFile(dumpPath)
	var ve *model.ValidationError
	switch {
	case errors.Is(err, os.ErrNotExist):
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "model dump not found", err)
	case errors.As(err, &ve):
		for _, p := range ve.Problems {
			formatter.VerboseLog("  %s", p)
		}
		return formatter.Fail(ExitCommandError, ErrCodeModelInvalid, "invalid model dump", err)
	case err != nil:
		return formatter.Fail(ExitCommandError, ErrCodeModelInvalid, "read model dump", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "open model store", err)
	}
	defer st.Close()

	if err := st.Import(cmd.Context(), in); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "import model", err)
	}

	result := summarize(opts.Database, in)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d scans (%d polynomial, %d tabulated models) for %d antennas into %s\n",
		result.Scans, result.PolyModels, result.TabModels, result.Antennas, result.Database)
	return nil
}

func summarize(db string, in *model.Input) ImportResult {
	r := ImportResult{
		Database: db,
		Antennas: len(in.Antennas),
		Sources:  len(in.Sources),
		Configs:  len(in.Configs),
		Scans:    len(in.Scans),
	}
	for _, sc := range in.Scans {
		for _, centres := range sc.Poly {
			for _, steps := range centres {
				r.PolyModels += len(steps)
			}
		}
		for _, t := range sc.Tab {
			if t != nil {
				r.TabModels++
			}
		}
	}
	return r
}
