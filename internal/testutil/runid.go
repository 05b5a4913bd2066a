package testutil

// FixedRunID generates the same run id every time.
//
// This keeps command output byte-identical across test runs.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator for id. An empty id becomes
// "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed id.
func (g *FixedRunID) Generate() string {
	return g.id
}
