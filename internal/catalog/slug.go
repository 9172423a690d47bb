package catalog

import (
	"fmt"

	"carrental/internal/models"

	"github.com/gosimple/slug"
)

// Slug builds the URL handle of a car, e.g. "toyota-camry-2023".
func Slug(car *models.Car) string {
	if car.Year > 0 {
		return slug.Make(fmt.Sprintf("%s %s %d", car.Brand, car.Model, car.Year))
	}
	return slug.Make(car.Brand + " " + car.Model)
}
