package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/delaymodel/internal/config"
	"github.com/roach88/delaymodel/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Output   string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored job as a YAML model dump",
		Long: `Write the job held in the model store as a YAML model dump, the
format the import command reads.

Example:
  delaymodel export --db job.db -o job_models.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", config.DefaultDB, "path to SQLite model store")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
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
		return formatter.Fail(ExitCommandError, ErrCodeNoJob, "nothing to export", err)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "load model", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "create dump file", err)
		}
		defer f.Close()
		w = f
	}

	if err := store.WriteDump(w, in); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeWriteFailed, "write dump", err)
	}
	formatter.VerboseLog("Exported %d scans", len(in.Scans))
	return nil
}

// openExisting opens a model store that must already exist, so a mistyped
// path is not silently created empty.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}
