// Package config loads and validates the run configuration.
//
// A run configuration is a YAML document decoded strictly (unknown keys are
// errors) and then checked against the CUE definition #RunConfig embedded in
// this package.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/delaymodel/internal/tweak"
)

//go:embed runconfig.cue
var schemaCUE string

// Default paths.
const (
	DefaultDB     = "model.db"
	DefaultOutput = "model.fits"
)

// RunConfig drives one write run.
type RunConfig struct {
	DB          string   `yaml:"db" json:"db"`
	Output      string   `yaml:"output" json:"output"`
	TweakFile   string   `yaml:"tweak_file" json:"tweak_file"`
	Pols        int      `yaml:"pols" json:"pols"`
	Antennas    []string `yaml:"antennas,omitempty" json:"antennas,omitempty"`
	MetricsFile string   `yaml:"metrics_file,omitempty" json:"metrics_file,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *RunConfig {
	return &RunConfig{
		DB:        DefaultDB,
		Output:    DefaultOutput,
		TweakFile: tweak.DefaultFile,
	}
}

// Error is a configuration problem, with the schema position that rejected
// it when CUE reports one.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads a run configuration from path, filling unset fields from
// Default, and validates it.
func LoadFile(path string) (*RunConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run config: %w", err)
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load decodes a run configuration, fills unset fields from Default and
// validates the result.
func Load(r io.Reader) (*RunConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	cfg := Default()
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Field: "yaml", Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg against #RunConfig.
func (c *RunConfig) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("runconfig.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile run config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#RunConfig"))
	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError returns the first CUE error with its path and position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "config"
	if p := first.Path(); len(p) > 0 {
		field = p[len(p)-1]
	}
	format, args := first.Msg()
	e := &Error{Field: field, Message: fmt.Sprintf(format, args...)}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
