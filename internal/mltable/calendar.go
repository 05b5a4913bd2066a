package mltable

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// jdMJD is the Julian date of MJD 0.
const jdMJD = 2400000.5

// MJDToDate formats an MJD as a FITS date string, YYYY-MM-DD.
func MJDToDate(mjd int) string {
	y, m, d := julian.JDToCalendar(float64(mjd) + jdMJD)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, int(d))
}

// TimeToMJD converts a wall-clock time to a fractional MJD.
func TimeToMJD(t time.Time) float64 {
	return julian.TimeToJD(t) - jdMJD
}
