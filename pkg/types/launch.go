package types

import "math"

// AllSites is the site selector value meaning "do not restrict by site".
const AllSites = "ALL"

// Outcome classes.
const (
	OutcomeFailure = 0
	OutcomeSuccess = 1
)

// LaunchRecord is one row of the launch dataset. Records are read-only once
// the dataset has been loaded.
type LaunchRecord struct {
	Site                   string  `json:"site"`
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	OutcomeClass           int     `json:"class"`
	BoosterVersionCategory string  `json:"booster_version_category"`
}

// PayloadRange is an inclusive payload mass interval in kilograms.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Valid reports whether the range has ordered, non-NaN bounds.
func (r PayloadRange) Valid() bool {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) {
		return false
	}
	return r.Low <= r.High
}

// Contains reports whether kg lies within the range, both ends included.
func (r PayloadRange) Contains(kg float64) bool {
	return r.Low <= kg && kg <= r.High
}
