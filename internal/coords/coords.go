// Package coords converts GPS coordinates between the sexagesimal form stored
// in EXIF (degrees, minutes, seconds plus a hemisphere letter) and signed
// decimal degrees.
package coords

import (
	"fmt"
	"math"
)

// Axis selects which pair of hemisphere letters applies to a coordinate.
type Axis int

const (
	Latitude Axis = iota
	Longitude
)

// Angle is one component of a sexagesimal triple. It is either a Rational or
// a Scalar.
type Angle interface {
	float() (float64, error)
}

// Rational is a numerator/denominator pair as stored in EXIF RATIONAL tags.
type Rational struct {
	Num int64
	Den int64
}

// Scalar is a plain number.
type Scalar float64

func (r Rational) float() (float64, error) {
	if r.Den == 0 {
		return 0, fmt.Errorf("rational %d/0 has a zero denominator", r.Num)
	}
	return float64(r.Num) / float64(r.Den), nil
}

func (s Scalar) float() (float64, error) {
	return float64(s), nil
}

// FromRationals builds a triple out of codec rationals.
func FromRationals(rats []Rational) ([3]Angle, error) {
	var triple [3]Angle
	if len(rats) != 3 {
		return triple, fmt.Errorf("expected 3 components, got %d", len(rats))
	}
	for i, r := range rats {
		triple[i] = r
	}
	return triple, nil
}

// ToDecimal converts a degrees/minutes/seconds triple to decimal degrees.
// The result is negative for the S and W hemispheres.
func ToDecimal(triple [3]Angle, ref string) (float64, error) {
	var parts [3]float64
	for i, a := range triple {
		if a == nil {
			return 0, fmt.Errorf("component %d is missing", i)
		}
		v, err := a.float()
		if err != nil {
			return 0, fmt.Errorf("component %d: %w", i, err)
		}
		parts[i] = v
	}

	result := parts[0] + parts[1]/60.0 + parts[2]/3600.0
	if ref == "S" || ref == "W" {
		result = -result
	}
	return result, nil
}

// ToSexagesimal converts decimal degrees to whole degrees, whole minutes and
// seconds with millisecond precision. The sign is dropped; use RefFor for the
// hemisphere.
func ToSexagesimal(decimal float64) [3]Rational {
	abs := math.Abs(decimal)
	degrees := math.Floor(abs)
	minutesFloat := (abs - degrees) * 60
	minutes := math.Floor(minutesFloat)
	seconds := (minutesFloat - minutes) * 60

	return [3]Rational{
		{Num: int64(degrees), Den: 1},
		{Num: int64(minutes), Den: 1},
		{Num: int64(seconds * 1000), Den: 1000},
	}
}

// RefFor returns the hemisphere letter for a signed decimal coordinate.
func RefFor(decimal float64, axis Axis) string {
	if axis == Latitude {
		if decimal >= 0 {
			return "N"
		}
		return "S"
	}
	if decimal >= 0 {
		return "E"
	}
	return "W"
}
