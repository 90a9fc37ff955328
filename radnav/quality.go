// radnav/quality.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package radnav

import (
	"cmp"
	gomath "math"
	"slices"

	"github.com/libnav/navdb/math"
	"github.com/libnav/navdb/navdb"
)

// Unusable is the quality of a station or pair that must not be used
// for navigation.
const Unusable = -1

// Limits bounds the geometry that is acceptable for radio navigation.
type Limits struct {
	// DME/DME cut angles must be strictly between these, in degrees.
	DMEDMEMinCutDeg float64 `json:"dme_dme_min_cut_deg"`
	DMEDMEMaxCutDeg float64 `json:"dme_dme_max_cut_deg"`
	// Stations seen at or above this elevation angle are unusable.
	MaxSlantAngleDeg float64 `json:"max_slant_angle_deg"`
}

var DefaultLimits = Limits{
	DMEDMEMinCutDeg:  30,
	DMEDMEMaxCutDeg:  150,
	MaxSlantAngleDeg: 40,
}

// NavaidResolver provides the radio attributes of cache entries;
// *navdb.NavaidCache implements it.
type NavaidResolver interface {
	Navaid(navdb.WaypointEntry) (navdb.NavaidRecord, bool)
}

// Station is a radio navaid that is a candidate navigation source.
type Station struct {
	Id      string
	Entry   navdb.WaypointEntry
	Navaid  *navdb.NavaidRecord // nil if the entry isn't a radio station
	Quality float64
}

// NewStation returns a Station for the given entry, resolving its radio
// attributes with r. Its quality is Unusable until it is ranked.
func NewStation(r NavaidResolver, id string, e navdb.WaypointEntry) Station {
	s := Station{Id: id, Entry: e, Quality: Unusable}
	if rec, ok := r.Navaid(e); ok {
		s.Navaid = &rec
	}
	return s
}

// StationPair is a pair of DME stations considered for a DME/DME fix.
type StationPair struct {
	S1, S2  *Station
	Quality float64
}

// DMEDMEQuality returns the quality in [0,1] of a DME/DME fix with the
// given cut angle from stations of quality q1 and q2, or Unusable if the
// cut angle is outside the acceptable window.
func (l Limits) DMEDMEQuality(cutDeg, q1, q2 float64) float64 {
	if cutDeg <= l.DMEDMEMinCutDeg || cutDeg >= l.DMEDMEMaxCutDeg {
		return Unusable
	}
	return (math.Min(q1, q2) + 1 - math.Abs(90-cutDeg)/90) / 2
}

// StationQuality returns the quality in [0,1] of s as a navigation source
// for an aircraft at pos, or Unusable. Quality falls off linearly with
// slant range out to the station's maximum reception range.
func (l Limits) StationQuality(s Station, pos math.Point3LL) float64 {
	if s.Navaid == nil {
		return Unusable
	}

	lateral := math.NMDistance2LL(pos.Point2LL, s.Entry.Location)
	if lateral == 0 {
		return Unusable
	}

	vertical := math.Abs(pos.Altitude-s.Navaid.Elevation) * math.FeetToNauticalMiles
	slant := math.Degrees(gomath.Atan(vertical / lateral))
	if slant <= 0 || slant >= l.MaxSlantAngleDeg {
		return Unusable
	}

	q := 1 - gomath.Hypot(lateral, vertical)/s.Navaid.MaxReception
	if q < 0 || gomath.IsNaN(q) {
		return Unusable
	}
	return q
}

// CutAngle returns the angle in [0,180] degrees between the bearings
// from pos to the two stations.
func CutAngle(p StationPair, pos math.Point2LL) float64 {
	b1 := math.Bearing2LL(pos, p.S1.Entry.Location)
	b2 := math.Bearing2LL(pos, p.S2.Entry.Location)
	return math.HeadingDifference(b1, b2)
}

// PairQuality returns the quality of a DME/DME fix from the pair for an
// aircraft at pos, using the stations' current qualities.
func (l Limits) PairQuality(p StationPair, pos math.Point2LL) float64 {
	if p.S1 == nil || p.S2 == nil {
		return Unusable
	}
	return l.DMEDMEQuality(CutAngle(p, pos), p.S1.Quality, p.S2.Quality)
}

// RankStations sets the quality of each station for an aircraft at pos
// and returns the usable ones, best first. The stations slice is not
// reordered.
func (l Limits) RankStations(stations []Station, pos math.Point3LL) []*Station {
	var usable []*Station
	for i := range stations {
		s := &stations[i]
		s.Quality = l.StationQuality(*s, pos)
		if s.Quality != Unusable {
			usable = append(usable, s)
		}
	}
	slices.SortStableFunc(usable, func(a, b *Station) int {
		return cmp.Compare(b.Quality, a.Quality)
	})
	return usable
}

// CandidatePairs returns all pairs of usable stations that both have DME.
func CandidatePairs(stations []*Station) []StationPair {
	var dme []*Station
	for _, s := range stations {
		if s.Quality != Unusable && s.Entry.Type&navdb.NavaidAnyDME != 0 {
			dme = append(dme, s)
		}
	}

	var pairs []StationPair
	for i := range dme {
		for j := i + 1; j < len(dme); j++ {
			pairs = append(pairs, StationPair{S1: dme[i], S2: dme[j], Quality: Unusable})
		}
	}
	return pairs
}

// RankPairs sets the quality of each pair for an aircraft at pos and
// returns the usable ones, best first.
func (l Limits) RankPairs(pairs []StationPair, pos math.Point2LL) []StationPair {
	var usable []StationPair
	for i := range pairs {
		pairs[i].Quality = l.PairQuality(pairs[i], pos)
		if pairs[i].Quality != Unusable {
			usable = append(usable, pairs[i])
		}
	}
	slices.SortStableFunc(usable, func(a, b StationPair) int {
		return cmp.Compare(b.Quality, a.Quality)
	})
	return usable
}

// Package-level helpers using DefaultLimits.

func DMEDMEQuality(cutDeg, q1, q2 float64) float64 {
	return DefaultLimits.DMEDMEQuality(cutDeg, q1, q2)
}

func StationQuality(s Station, pos math.Point3LL) float64 {
	return DefaultLimits.StationQuality(s, pos)
}

func PairQuality(p StationPair, pos math.Point2LL) float64 {
	return DefaultLimits.PairQuality(p, pos)
}
