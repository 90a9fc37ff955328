// math/latlong.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const NMPerLatitude = 60

const MetersPerNauticalMile = 1852

const NauticalMilesToFeet = 6076.12
const FeetToNauticalMiles = 1 / NauticalMilesToFeet

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

func (p Point2LL) toOrb() orb.Point {
	// orb uses the same (longitude, latitude) ordering.
	return orb.Point(p)
}

// NMDistance2LL returns the great-circle distance in nautical miles
// between two provided lat-long coordinates.
func NMDistance2LL(a Point2LL, b Point2LL) float64 {
	return geo.DistanceHaversine(a.toOrb(), b.toOrb()) / MetersPerNauticalMile
}

// Bearing2LL returns the initial great-circle bearing in degrees, in
// [0,360), to travel from the point |from| to the point |to|.
func Bearing2LL(from Point2LL, to Point2LL) float64 {
	return NormalizeHeading(geo.Bearing(from.toOrb(), to.toOrb()))
}

// AngularDeviation2LL returns the sum of the absolute latitude and
// longitude differences between two points, in degrees. It's a cheap
// proximity measure for points that are expected to be nearly
// coincident.
func AngularDeviation2LL(a Point2LL, b Point2LL) float64 {
	return gomath.Abs(a[0]-b[0]) + gomath.Abs(a[1]-b[1])
}

///////////////////////////////////////////////////////////////////////////
// Point3LL

// Point3LL is a lat-long point with an altitude, expressed in feet MSL.
type Point3LL struct {
	Point2LL
	Altitude float64
}
