package domain

import (
	"fmt"
	"math"
)

// TravelMode selects the routing costing model and the emission factor for
// the carbon estimate.
type TravelMode string

const (
	ModeCar     TravelMode = "car"
	ModeBicycle TravelMode = "bicycle"
	ModeFoot    TravelMode = "foot"
)

// Costing returns the routing-engine costing name for the mode.
func (m TravelMode) Costing() string {
	switch m {
	case ModeBicycle:
		return "bicycle"
	case ModeFoot:
		return "pedestrian"
	default:
		return "auto"
	}
}

// Validate returns an error for modes outside the supported set. The empty
// mode is allowed and treated as car.
func (m TravelMode) Validate() error {
	switch m {
	case "", ModeCar, ModeBicycle, ModeFoot:
		return nil
	}
	return fmt.Errorf("unsupported travel mode %q", m)
}

// Per-kilometer emission factors in kg CO2e. The car figure is the average
// EU passenger car; the bicycle figure is the lifecycle estimate including
// food energy. averageTripFactor is the mixed-fleet reference a trip of the
// same distance is compared against.
const (
	carFactorKgPerKm     = 0.192
	bicycleFactorKgPerKm = 0.021
	footFactorKgPerKm    = 0.0
	averageTripFactor    = 0.235
)

func (m TravelMode) emissionFactor() float64 {
	switch m {
	case ModeBicycle:
		return bicycleFactorKgPerKm
	case ModeFoot:
		return footFactorKgPerKm
	default:
		return carFactorKgPerKm
	}
}

// CarbonSummary compares a trip's estimated emissions with an average trip
// over the same distance.
type CarbonSummary struct {
	DistanceKm       float64 `json:"distance_km"`
	EstimatedKg      float64 `json:"estimated_kg"`
	AverageKg        float64 `json:"average_kg"`
	ReductionPercent float64 `json:"reduction_percent"`
}

// EstimateCarbon computes the footprint of a route for the given mode. The
// reduction percentage is clamped at 0 when the trip emits more than the
// average reference.
func EstimateCarbon(route []Coordinate, mode TravelMode) CarbonSummary {
	km := RouteLengthMeters(route) / 1000

	est := km * mode.emissionFactor()
	avg := km * averageTripFactor

	reduction := 0.0
	if avg > 0 {
		reduction = (1 - est/avg) * 100
		if reduction < 0 {
			reduction = 0
		}
	}

	return CarbonSummary{
		DistanceKm:       round1(km),
		EstimatedKg:      round1(est),
		AverageKg:        round1(avg),
		ReductionPercent: round1(reduction),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
