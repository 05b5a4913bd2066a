package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/delaymodel/internal/model"
)

// ReadDumpFile reads a YAML model dump from path.
func ReadDumpFile(path string) (*model.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model dump: %w", err)
	}
	defer f.Close()

	in, err := ReadDump(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// ReadDump decodes and validates a YAML model dump. Unknown keys are errors.
func ReadDump(r io.Reader) (*model.Input, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var in model.Input
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty model dump")
		}
		return nil, fmt.Errorf("decode model dump: %w", err)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	normalize(&in)
	return &in, nil
}

// normalize maps an empty antenna entry, which the encoder writes for a nil
// one, back to nil.
func normalize(in *model.Input) {
	for s := range in.Scans {
		for a, centres := range in.Scans[s].Poly {
			if len(centres) == 0 {
				in.Scans[s].Poly[a] = nil
			}
		}
	}
}

// WriteDump encodes in as YAML.
func WriteDump(w io.Writer, in *model.Input) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("encode model dump: %w", err)
	}
	return enc.Close()
}
