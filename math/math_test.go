// math/math_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"testing"
)

func TestNMDistance2LL(t *testing.T) {
	tests := []struct {
		name string
		a, b Point2LL
		want float64
		tol  float64
	}{
		{name: "same point", a: Point2LL{-122.6, 45.6}, b: Point2LL{-122.6, 45.6}, want: 0, tol: 1e-9},
		{name: "one degree latitude", a: Point2LL{0, 0}, b: Point2LL{0, 1}, want: 60, tol: 0.2},
		{name: "one degree longitude at equator", a: Point2LL{0, 0}, b: Point2LL{1, 0}, want: 60, tol: 0.2},
		{name: "one degree longitude at 60N", a: Point2LL{0, 60}, b: Point2LL{1, 60}, want: 30, tol: 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NMDistance2LL(tt.a, tt.b)
			if gomath.Abs(d-tt.want) > tt.tol {
				t.Errorf("NMDistance2LL(%v, %v) = %f, want %f", tt.a, tt.b, d, tt.want)
			}
			if r := NMDistance2LL(tt.b, tt.a); gomath.Abs(r-d) > 1e-9 {
				t.Errorf("distance not symmetric: %f vs %f", d, r)
			}
		})
	}
}

func TestBearing2LL(t *testing.T) {
	tests := []struct {
		name     string
		from, to Point2LL
		want     float64
	}{
		{name: "north", from: Point2LL{0, 0}, to: Point2LL{0, 1}, want: 0},
		{name: "east", from: Point2LL{0, 0}, to: Point2LL{1, 0}, want: 90},
		{name: "south", from: Point2LL{0, 0}, to: Point2LL{0, -1}, want: 180},
		{name: "west", from: Point2LL{0, 0}, to: Point2LL{-1, 0}, want: 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bearing2LL(tt.from, tt.to)
			if HeadingDifference(b, tt.want) > 0.01 {
				t.Errorf("Bearing2LL = %f, want %f", b, tt.want)
			}
			if b < 0 || b >= 360 {
				t.Errorf("Bearing2LL = %f not in [0,360)", b)
			}
		})
	}
}

func TestAngularDeviation2LL(t *testing.T) {
	d := AngularDeviation2LL(Point2LL{10.0002, 20.0003}, Point2LL{10, 20})
	if gomath.Abs(d-0.0005) > 1e-9 {
		t.Errorf("AngularDeviation2LL = %g, want 0.0005", d)
	}
}

func TestNormalizeHeading(t *testing.T) {
	for _, tc := range [][2]float64{
		{0, 0}, {360, 0}, {-360, 0}, {-90, 270}, {450, 90}, {-450, 270}, {359.5, 359.5},
	} {
		if got := NormalizeHeading(tc[0]); gomath.Abs(got-tc[1]) > 1e-9 {
			t.Errorf("NormalizeHeading(%f) = %f, want %f", tc[0], got, tc[1])
		}
	}
}

func TestHeadingDifference(t *testing.T) {
	for _, tc := range [][3]float64{
		{10, 350, 20}, {350, 10, 20}, {0, 180, 180}, {90, 270, 180}, {45, 45, 0}, {-10, 10, 20},
	} {
		if got := HeadingDifference(tc[0], tc[1]); gomath.Abs(got-tc[2]) > 1e-9 {
			t.Errorf("HeadingDifference(%f, %f) = %f, want %f", tc[0], tc[1], got, tc[2])
		}
	}
	if got := OppositeHeading(270); got != 90 {
		t.Errorf("OppositeHeading(270) = %f, want 90", got)
	}
}

func TestGenericHelpers(t *testing.T) {
	if Abs(-3) != 3 || Abs(2.5) != 2.5 {
		t.Errorf("Abs broken")
	}
	if Sqr(0.5) != 0.25 {
		t.Errorf("Sqr(0.5) = %f", Sqr(0.5))
	}
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Errorf("Clamp broken")
	}
	if Min(2, 3) != 2 || Max(2, 3) != 3 {
		t.Errorf("Min/Max broken")
	}
	if gomath.Abs(Degrees(Radians(123))-123) > 1e-9 {
		t.Errorf("Degrees/Radians do not round-trip")
	}
}
