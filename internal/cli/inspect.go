package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/delaymodel/internal/fits"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Rows int
}

// InspectColumn describes one table column.
type InspectColumn struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Unit   string `json:"unit,omitempty"`
}

// InspectKey is one table keyword.
type InspectKey struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// InspectRow is the leading fields of one row.
type InspectRow struct {
	Time      float64 `json:"time"`
	SourceID  int     `json:"source_id"`
	AntennaNo int     `json:"antenna_no"`
	FreqID    int     `json:"freq_id"`
	GDelay0   float64 `json:"gdelay0"`
	GRate0    float64 `json:"grate0"`
}

// InspectResult summarizes a model table.
type InspectResult struct {
	Extension string          `json:"extension"`
	Rows      int             `json:"rows"`
	RowBytes  int             `json:"row_bytes"`
	Columns   []InspectColumn `json:"columns"`
	Keys      []InspectKey    `json:"keys"`
	Sample    []InspectRow    `json:"sample,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <table.fits>",
		Short: "Describe a written model table",
		Long: `Read a model table back and print its layout, keywords and the
leading fields of its first rows.

Example:
  delaymodel inspect job.fits --rows 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 5, "number of rows to show")

	return cmd
}

// structuralKey reports whether key describes the table layout rather than
// the job.
func structuralKey(key string) bool {
	switch key {
	case "XTENSION", "BITPIX", "NAXIS", "NAXIS1", "NAXIS2", "PCOUNT", "GCOUNT", "TFIELDS", "EXTNAME":
		return true
	}
	for _, p := range []string{"TTYPE", "TFORM", "TUNIT"} {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	tbl, err := fits.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "table not found", err)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeTableRead, "read table", err)
	}

	result := InspectResult{
		Extension: tbl.Name,
		Rows:      tbl.Len(),
		RowBytes:  tbl.Schema.RowSize(),
	}
	for i, c := range tbl.Schema.Columns() {
		result.Columns = append(result.Columns, InspectColumn{
			Name:   c.Name,
			Format: tbl.Schema.Formats()[i].String(),
			Unit:   c.Unit,
		})
	}
	for _, c := range tbl.Header {
		if !structuralKey(c.Key) {
			result.Keys = append(result.Keys, InspectKey{Key: c.Key, Value: c.Value})
		}
	}
	for i := 0; i < tbl.Len() && i < opts.Rows; i++ {
		row, err := sampleRow(tbl, i)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeTableRead, "decode row", err)
		}
		result.Sample = append(result.Sample, row)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s: %d rows of %d bytes\n", result.Extension, result.Rows, result.RowBytes)
	for _, k := range result.Keys {
		fmt.Fprintf(w, "  %-8s = %v\n", k.Key, k.Value)
	}
	if opts.Verbose {
		for _, c := range result.Columns {
			fmt.Fprintf(w, "  column %-14s %-5s %s\n", c.Name, c.Format, c.Unit)
		}
	}
	if len(result.Sample) > 0 {
		fmt.Fprintf(w, "%14s %6s %6s %6s %22s %22s\n", "TIME", "SOURCE", "ANT", "FREQID", "GDELAY[0]", "GRATE[0]")
		for _, r := range result.Sample {
			fmt.Fprintf(w, "%14.8f %6d %6d %6d %22.14e %22.14e\n",
				r.Time, r.SourceID, r.AntennaNo, r.FreqID, r.GDelay0, r.GRate0)
		}
	}
	return nil
}

func sampleRow(tbl *fits.Table, i int) (InspectRow, error) {
	first := func(col string) (float64, error) {
		v, err := tbl.Values(i, col)
		if err != nil {
			return 0, err
		}
		return v[0], nil
	}

	var r InspectRow
	var err error
	var n float64
	if r.Time, err = first("TIME"); err != nil {
		return r, err
	}
	if n, err = first("SOURCE_ID"); err != nil {
		return r, err
	}
	r.SourceID = int(n)
	if n, err = first("ANTENNA_NO"); err != nil {
		return r, err
	}
	r.AntennaNo = int(n)
	if n, err = first("FREQID"); err != nil {
		return r, err
	}
	r.FreqID = int(n)
	if r.GDelay0, err = first("GDELAY_1"); err != nil {
		return r, err
	}
	if r.GRate0, err = first("GRATE_1"); err != nil {
		return r, err
	}
	return r, nil
}
