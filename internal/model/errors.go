package model

import (
	"errors"
	"fmt"
)

// ErrModelMissing reports that no geometric model exists for an antenna at a
// step. Callers recover by skipping the row.
var ErrModelMissing = errors.New("model missing")

// MissingModelError identifies the antenna and step without a model.
type MissingModelError struct {
	Scan    int
	Antenna int
	Step    int
	Form    string // "polynomial", "tabulated" or "" when the scan has neither
}

func (e *MissingModelError) Error() string {
	form := e.Form
	if form == "" {
		form = "any"
	}
	return fmt.Sprintf("no %s model for antenna %d at scan %d step %d", form, e.Antenna, e.Scan, e.Step)
}

// Unwrap lets errors.Is match ErrModelMissing.
func (e *MissingModelError) Unwrap() error {
	return ErrModelMissing
}
