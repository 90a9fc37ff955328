// radnav/fom.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package radnav provides the accuracy model used to choose radio
// navigation sources: figures of merit (2-sigma position error bounds,
// in nautical miles) from RTCA DO-236C appendix C, and quality scores
// for individual stations and DME/DME pairs.
package radnav

import (
	gomath "math"

	"github.com/libnav/navdb/math"
)

// DMEFigureOfMerit returns the FOM for a DME at the given distance in nm.
func DMEFigureOfMerit(distNM float64) float64 {
	variance := math.Sqr(0.05) + math.Max(math.Sqr(0.085), math.Sqr(0.00125*distNM))
	return gomath.Sqrt(variance) * 2
}

// VORFigureOfMerit returns the FOM for a VOR at the given distance in nm.
func VORFigureOfMerit(distNM float64) float64 {
	variance := math.Sqr(0.0122*distNM) + math.Sqr(0.0175*distNM)
	return gomath.Sqrt(variance) * 2
}

// VORDMEFigureOfMerit returns the FOM for a VOR/DME; the worse of the two
// components dominates.
func VORDMEFigureOfMerit(distNM float64) float64 {
	return math.Max(VORFigureOfMerit(distNM), DMEFigureOfMerit(distNM))
}

// DMEDMEFigureOfMerit returns the FOM for a fix from two DMEs at the given
// distances whose lines of position cross at cutRad radians. It returns 0
// when the geometry is degenerate; 0 means the fix is unusable, not that
// it is perfect.
func DMEDMEFigureOfMerit(dist1NM, dist2NM, cutRad float64) float64 {
	s := gomath.Sin(cutRad)
	if s == 0 {
		return 0
	}
	return math.Max(DMEFigureOfMerit(dist1NM), DMEFigureOfMerit(dist2NM)) / s
}
