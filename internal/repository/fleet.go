package repository

import (
	"fmt"
	"os"

	"carrental/internal/catalog"
	"carrental/internal/models"

	"gopkg.in/yaml.v2"
)

type fleetFile struct {
	Cars []*models.Car `yaml:"cars"`
}

// LoadFleet reads a YAML fleet definition. Missing slugs are derived from
// brand, model and year.
func LoadFleet(path string) ([]*models.Car, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fleet file: %w", err)
	}

	var f fleetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fleet file: %w", err)
	}
	if len(f.Cars) == 0 {
		return nil, fmt.Errorf("fleet file %s has no cars", path)
	}

	seen := make(map[int64]bool, len(f.Cars))
	for i, c := range f.Cars {
		if c.ID <= 0 {
			return nil, fmt.Errorf("car %d: id must be positive", i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("car %d: duplicate id", c.ID)
		}
		seen[c.ID] = true
		if c.Slug == "" {
			c.Slug = catalog.Slug(c)
		}
	}
	return f.Cars, nil
}

// WithFleet replaces the seeded cars. Bookings for cars outside the new
// fleet are dropped.
func (d SeedData) WithFleet(cars []*models.Car) SeedData {
	ids := make(map[int64]bool, len(cars))
	for _, c := range cars {
		ids[c.ID] = true
	}
	bookings := make([]*models.Booking, 0, len(d.Bookings))
	for _, b := range d.Bookings {
		if ids[b.CarID] {
			bookings = append(bookings, b)
		}
	}
	return SeedData{Cars: cars, Customers: d.Customers, Bookings: bookings}
}
