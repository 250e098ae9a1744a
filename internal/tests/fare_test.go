package tests

import (
	"testing"

	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 1. FARE CALCULATION
// ──────────────────────────────────────────────

func TestFare_PerSeatFromDistance(t *testing.T) {
	t.Parallel()

	calc := service.NewFareCalculator(50, 8)

	tests := []struct {
		name       string
		distanceKm float64
		want       float64
	}{
		{"ten kilometers", 10, 130.00},
		{"zero distance charges base fare", 0, 50.00},
		{"fractional distance rounds to cents", 2.345, 68.76},
		{"long ride", 120.5, 1014.00},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := calc.PerSeat(tt.distanceKm)
			if got != tt.want {
				t.Errorf("PerSeat(%v) = %v, want %v", tt.distanceKm, got, tt.want)
			}
		})
	}
}

func TestFare_FloorAtOne(t *testing.T) {
	t.Parallel()

	// Bad distance data must never produce a zero or negative fare.
	calc := service.NewFareCalculator(0, 0)

	if got := calc.PerSeat(0); got != 1.00 {
		t.Errorf("PerSeat(0) with zero rates = %v, want 1.00", got)
	}

	calc = service.NewFareCalculator(5, -8)
	if got := calc.PerSeat(100); got != 1.00 {
		t.Errorf("PerSeat with negative rate = %v, want floor 1.00", got)
	}
}

func TestFare_TotalScalesWithSeats(t *testing.T) {
	t.Parallel()

	calc := service.NewFareCalculator(50, 8)

	perSeat := calc.PerSeat(10)
	if perSeat != 130.00 {
		t.Fatalf("PerSeat(10) = %v, want 130.00", perSeat)
	}

	tests := []struct {
		seats int
		want  float64
	}{
		{1, 130.00},
		{2, 260.00},
		{4, 520.00},
	}

	for _, tt := range tests {
		if got := calc.Total(perSeat, tt.seats); got != tt.want {
			t.Errorf("Total(%v, %d) = %v, want %v", perSeat, tt.seats, got, tt.want)
		}
	}
}
