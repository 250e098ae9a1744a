package service

import "math"

// FareCalculator prices bookings from distance and configured rate
// parameters. Fares are per seat; every seat on a booking costs the same.
type FareCalculator struct {
	baseFare  float64
	ratePerKm float64
}

// NewFareCalculator creates a FareCalculator with the given rate parameters.
func NewFareCalculator(baseFare, ratePerKm float64) *FareCalculator {
	return &FareCalculator{
		baseFare:  baseFare,
		ratePerKm: ratePerKm,
	}
}

// PerSeat computes the per-seat fare for the given distance. The 1.00 floor
// keeps bad distance data from producing zero or negative fares.
func (f *FareCalculator) PerSeat(distanceKm float64) float64 {
	fare := f.baseFare + f.ratePerKm*distanceKm
	return math.Max(1.0, round2(fare))
}

// Total computes the booking fare for the given per-seat fare and seat count.
func (f *FareCalculator) Total(perSeat float64, seats int) float64 {
	return round2(perSeat * float64(seats))
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
