package catalog

import (
	"sort"

	"carrental/internal/models"
)

type Page struct {
	Items      []*models.Car `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// Paginate returns the 1-based page of cars. A page past the end is empty.
func Paginate(cars []*models.Car, page, size int) Page {
	if size <= 0 {
		size = models.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(cars)
	p := Page{
		Items:      []*models.Car{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}

	start := (page - 1) * size
	if start >= total {
		return p
	}
	end := start + size
	if end > total {
		end = total
	}
	p.Items = cars[start:end]
	return p
}

// Options lists the distinct values offered by the filter drop-downs.
type Options struct {
	Brands    []string `json:"brands"`
	Types     []string `json:"types"`
	Locations []string `json:"locations"`
	MinPrice  float64  `json:"min_price"`
	MaxPrice  float64  `json:"max_price"`
}

func BuildOptions(cars []*models.Car) Options {
	opts := Options{Brands: []string{}, Types: []string{}, Locations: []string{}}
	seen := map[string]bool{}
	add := func(list *[]string, kind, v string) {
		if v == "" || seen[kind+v] {
			return
		}
		seen[kind+v] = true
		*list = append(*list, v)
	}

	first := true
	for _, car := range cars {
		if car == nil {
			continue
		}
		add(&opts.Brands, "b", car.Brand)
		add(&opts.Types, "t", car.Type)
		add(&opts.Locations, "l", car.Location)
		if first || car.Price < opts.MinPrice {
			first = false
			opts.MinPrice = car.Price
		}
		if car.Price > opts.MaxPrice {
			opts.MaxPrice = car.Price
		}
	}
	sort.Strings(opts.Brands)
	sort.Strings(opts.Types)
	sort.Strings(opts.Locations)
	return opts
}
