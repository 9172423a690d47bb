// Package catalog filters, sorts and paginates car lists. Every function is
// pure: inputs are never mutated.
package catalog

import (
	"sort"
	"strings"

	"carrental/internal/models"
)

const (
	SortName      = "name"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
)

// FilterSpec narrows a car list. Zero values mean "no constraint"; all set
// criteria must match.
type FilterSpec struct {
	Brand         string   `form:"brand" json:"brand,omitempty"`
	Type          string   `form:"type" json:"type,omitempty"`
	Transmission  string   `form:"transmission" json:"transmission,omitempty"`
	Fuel          string   `form:"fuel" json:"fuel,omitempty"`
	Location      string   `form:"location" json:"location,omitempty"`
	MinPrice      *float64 `form:"min_price" json:"min_price,omitempty"`
	MaxPrice      *float64 `form:"max_price" json:"max_price,omitempty"`
	MinSeats      int      `form:"min_seats" json:"min_seats,omitempty"`
	AvailableOnly bool     `form:"available" json:"available,omitempty"`
	SearchTerm    string   `form:"q" json:"q,omitempty"`
	Sort          string   `form:"sort" json:"sort,omitempty"`
}

// Matches reports whether car satisfies every set criterion.
func (f FilterSpec) Matches(car *models.Car) bool {
	if !equalFold(f.Brand, car.Brand) ||
		!equalFold(f.Type, car.Type) ||
		!equalFold(f.Transmission, car.Transmission) ||
		!equalFold(f.Fuel, car.Fuel) ||
		!equalFold(f.Location, car.Location) {
		return false
	}
	if f.MinPrice != nil && car.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && car.Price > *f.MaxPrice {
		return false
	}
	if f.MinSeats > 0 && car.Seats < f.MinSeats {
		return false
	}
	if f.AvailableOnly && !car.Available {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" {
		if !strings.Contains(strings.ToLower(car.Name()), term) &&
			!strings.Contains(strings.ToLower(car.Brand), term) &&
			!strings.Contains(strings.ToLower(car.Model), term) {
			return false
		}
	}
	return true
}

func equalFold(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, got)
}

// Apply returns the cars matching spec, sorted by spec.Sort.
func Apply(cars []*models.Car, spec FilterSpec) []*models.Car {
	out := make([]*models.Car, 0, len(cars))
	for _, car := range cars {
		if car != nil && spec.Matches(car) {
			out = append(out, car)
		}
	}
	Sort(out, spec.Sort)
	return out
}

// Sort orders cars in place by key; unknown keys sort by name.
func Sort(cars []*models.Car, key string) {
	var less func(a, b *models.Car) bool
	switch key {
	case SortPriceLow:
		less = func(a, b *models.Car) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b *models.Car) bool { return a.Price > b.Price }
	case SortRating:
		less = func(a, b *models.Car) bool { return a.Rating > b.Rating }
	default:
		less = func(a, b *models.Car) bool { return a.Name() < b.Name() }
	}
	sort.SliceStable(cars, func(i, j int) bool { return less(cars[i], cars[j]) })
}
