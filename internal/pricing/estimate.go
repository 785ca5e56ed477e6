// Package pricing estimates a purchase range for vehicles outside the fixed
// offer program.
package pricing

import (
	"math"
	"strconv"
	"strings"
)

// Range is a dollar estimate.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Inputs describes the vehicle and pickup location.
type Inputs struct {
	Drivable bool
	Year     string
	// Location is the normalized pickup city.
	Location string
	// DistanceKm is the driving distance from the yard, nil when unknown.
	DistanceKm *float64
}

// closeInCities get a small discount because the yard already runs routes there.
var closeInCities = []string{
	"vancouver",
	"richmond",
	"north vancouver",
	"coquitlam",
	"burnaby",
	"new westminster",
	"delta",
}

const (
	floorMin    = 50
	minimumSpan = 50
)

// Estimate returns the price range for in.
func Estimate(in Inputs) Range {
	lo, hi := 120.0, 350.0
	if in.Drivable {
		lo, hi = 300, 700
	}

	if year, err := strconv.Atoi(strings.TrimSpace(in.Year)); err == nil {
		switch {
		case year >= 2015:
			lo += 100
			hi += 100
		case year >= 2008 && year <= 2014:
			lo += 50
			hi += 50
		}
	}

	if d := in.DistanceKm; d != nil && !math.IsNaN(*d) {
		switch {
		case *d <= 15:
			lo += 25
			hi += 25
		case *d <= 40:
		case *d <= 80:
			lo -= 50
			hi -= 50
		default:
			lo -= 100
			hi -= 150
		}
	}

	if isCloseIn(in.Location) {
		lo -= 10
		hi -= 10
	}

	lo = math.Max(lo, floorMin)
	hi = math.Max(hi, lo+minimumSpan)
	return Range{Min: int(math.Round(lo)), Max: int(math.Round(hi))}
}

func isCloseIn(location string) bool {
	loc := strings.ToLower(location)
	for _, city := range closeInCities {
		if strings.Contains(loc, city) {
			return true
		}
	}
	return false
}

// String renders the range the way it is read to callers: "$120 to $350".
func (r Range) String() string {
	return "$" + strconv.Itoa(r.Min) + " to $" + strconv.Itoa(r.Max)
}
