// Package pricing computes rental quotes from a daily rate, a day count and
// the selected extras.
package pricing

import (
	"fmt"
	"math"
	"time"

	"carrental/internal/domain"
	"carrental/internal/models"
)

// TaxRate is the flat tax applied to base plus extras.
const TaxRate = 0.10

type Quote struct {
	Days          int     `json:"days"`
	DailyRate     float64 `json:"daily_rate"`
	BasePrice     float64 `json:"base_price"`
	ServicesPrice float64 `json:"services_price"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
}

// Surcharge returns the per-day price of a service; unknown ids cost nothing.
func Surcharge(id models.ServiceID) float64 {
	if s, ok := models.LookupService(id); ok {
		return s.PricePerDay
	}
	return 0
}

// Compute prices a rental. Duplicated service ids are charged once.
// Base, extras and tax are each rounded half away from zero to cents and the
// total is the sum of those rounded parts, so it can drift from the unrounded
// rate x days x 1.1 by under a cent per part.
func Compute(dailyRate float64, days int, services []models.ServiceID) (Quote, error) {
	if dailyRate < 0 || math.IsNaN(dailyRate) || math.IsInf(dailyRate, 0) {
		return Quote{}, fmt.Errorf("daily rate %v: %w", dailyRate, domain.ErrInvalidInput)
	}
	if days < 0 {
		return Quote{}, fmt.Errorf("days %d: %w", days, domain.ErrInvalidInput)
	}

	var perDay float64
	seen := make(map[models.ServiceID]bool, len(services))
	for _, id := range services {
		if seen[id] {
			continue
		}
		seen[id] = true
		perDay += Surcharge(id)
	}

	base := roundCents(dailyRate * float64(days))
	extras := roundCents(perDay * float64(days))
	tax := roundCents((base + extras) * TaxRate)

	return Quote{
		Days:          days,
		DailyRate:     dailyRate,
		BasePrice:     base,
		ServicesPrice: extras,
		Tax:           tax,
		Total:         roundCents(base + extras + tax),
	}, nil
}

// TotalDays counts whole rental days between two dates, never less than one.
func TotalDays(pickup, dropoff time.Time) int {
	hours := dropoff.Sub(pickup).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
