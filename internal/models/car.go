package models

import "time"

const (
	TransmissionAutomatic = "Automatic"
	TransmissionManual    = "Manual"
)

const (
	FuelGasoline = "Gasoline"
	FuelHybrid   = "Hybrid"
	FuelElectric = "Electric"
)

type Car struct {
	ID           int64     `yaml:"id" json:"id"`
	Slug         string    `yaml:"slug" json:"slug"`
	Brand        string    `yaml:"brand" json:"brand"`
	Model        string    `yaml:"model" json:"model"`
	Year         int       `yaml:"year" json:"year"`
	Type         string    `yaml:"type" json:"type"`
	Transmission string    `yaml:"transmission" json:"transmission"`
	Fuel         string    `yaml:"fuel" json:"fuel"`
	Seats        int       `yaml:"seats" json:"seats"`
	Price        float64   `yaml:"price" json:"price"` // per day
	Location     string    `yaml:"location" json:"location"`
	Rating       float64   `yaml:"rating" json:"rating"`
	Available    bool      `yaml:"available" json:"available"`
	Description  string    `yaml:"description" json:"description,omitempty"`
	Features     []string  `yaml:"features" json:"features,omitempty"`
	CreatedAt    time.Time `yaml:"-" json:"created_at"`
	UpdatedAt    time.Time `yaml:"-" json:"updated_at"`
}

// Name is the display name used by search and name sorting.
func (c *Car) Name() string {
	return c.Brand + " " + c.Model
}
