package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the delaymodel CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "delaymodel",
		Short: "Write VLBI interferometer model tables",
		Long: `delaymodel turns per-antenna geometric delay models into the
INTERFEROMETER_MODEL binary table: group delay and rate polynomials with the
antenna clock removed, and their phase equivalents for every band.

A job's models are imported once into a SQLite store, optionally corrected
from a delay correction file, and written as a FITS binary table.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewWriteCommand(opts))
	cmd.AddCommand(NewTweakCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
