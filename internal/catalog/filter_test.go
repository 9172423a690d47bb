package catalog

import (
	"fmt"
	"testing"

	"carrental/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func fleet() []*models.Car {
	return []*models.Car{
		{ID: 1, Brand: "Toyota", Model: "RAV4", Type: "SUV", Transmission: "Automatic", Fuel: "Hybrid", Seats: 5, Price: 75, Location: "Downtown", Rating: 4.5, Available: true},
		{ID: 2, Brand: "BMW", Model: "X5", Type: "SUV", Transmission: "Automatic", Fuel: "Gasoline", Seats: 5, Price: 90, Location: "Airport", Rating: 4.8, Available: true},
		{ID: 3, Brand: "Honda", Model: "Civic", Type: "Sedan", Transmission: "Manual", Fuel: "Gasoline", Seats: 5, Price: 45, Location: "Downtown", Rating: 4.2, Available: false},
		{ID: 4, Brand: "Tesla", Model: "Model 3", Type: "Sedan", Transmission: "Automatic", Fuel: "Electric", Seats: 5, Price: 110, Location: "Airport", Rating: 4.9, Available: true},
		{ID: 5, Brand: "Ford", Model: "Transit", Type: "Van", Transmission: "Manual", Fuel: "Gasoline", Seats: 9, Price: 95, Location: "Harbor", Rating: 4.0, Available: true},
	}
}

func ids(cars []*models.Car) []int64 {
	out := make([]int64, 0, len(cars))
	for _, c := range cars {
		out = append(out, c.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	cars := fleet()

	tests := []struct {
		name string
		spec FilterSpec
		want []int64
	}{
		{"NoFilterSortsByName", FilterSpec{}, []int64{2, 5, 3, 4, 1}},
		{"TypeAndMinPrice", FilterSpec{Type: "SUV", MinPrice: price(80)}, []int64{2}},
		{"TypeCaseInsensitive", FilterSpec{Type: "suv", Sort: SortPriceLow}, []int64{1, 2}},
		{"PriceBoundsInclusive", FilterSpec{MinPrice: price(75), MaxPrice: price(95), Sort: SortPriceLow}, []int64{1, 2, 5}},
		{"Transmission", FilterSpec{Transmission: "manual"}, []int64{5, 3}},
		{"FuelAndLocation", FilterSpec{Fuel: "gasoline", Location: "AIRPORT"}, []int64{2}},
		{"SearchMatchesModel", FilterSpec{SearchTerm: "civ"}, []int64{3}},
		{"SearchMatchesFullName", FilterSpec{SearchTerm: "tesla model"}, []int64{4}},
		{"SearchAndedWithType", FilterSpec{SearchTerm: "o", Type: "Van"}, []int64{5}},
		{"AvailableOnly", FilterSpec{AvailableOnly: true, Location: "Downtown"}, []int64{1}},
		{"MinSeats", FilterSpec{MinSeats: 7}, []int64{5}},
		{"PriceHigh", FilterSpec{Sort: SortPriceHigh}, []int64{4, 5, 2, 1, 3}},
		{"Rating", FilterSpec{Sort: SortRating}, []int64{4, 2, 1, 3, 5}},
		{"NoMatch", FilterSpec{Brand: "Lada"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(cars, tt.spec)))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	cars := fleet()
	before := ids(cars)
	_ = Apply(cars, FilterSpec{Sort: SortPriceHigh})
	assert.Equal(t, before, ids(cars))
}

func TestApply_Deterministic(t *testing.T) {
	cars := fleet()
	spec := FilterSpec{Type: "Sedan", Sort: SortRating}
	assert.Equal(t, ids(Apply(cars, spec)), ids(Apply(cars, spec)))
}

func TestPaginate(t *testing.T) {
	cars := make([]*models.Car, 14)
	for i := range cars {
		cars[i] = &models.Car{ID: int64(i + 1), Brand: fmt.Sprintf("B%02d", i)}
	}

	p1 := Paginate(cars, 1, 12)
	require.Len(t, p1.Items, 12)
	assert.Equal(t, 2, p1.TotalPages)
	assert.Equal(t, 14, p1.Total)
	assert.Equal(t, int64(1), p1.Items[0].ID)

	p2 := Paginate(cars, 2, 12)
	require.Len(t, p2.Items, 2)
	assert.Equal(t, int64(13), p2.Items[0].ID)

	p3 := Paginate(cars, 3, 12)
	assert.Empty(t, p3.Items)

	p0 := Paginate(cars, 0, 0)
	assert.Equal(t, 1, p0.Page)
	assert.Equal(t, models.DefaultPageSize, p0.PageSize)
	assert.Len(t, p0.Items, 12)

	empty := Paginate(nil, 1, 12)
	assert.Equal(t, 0, empty.TotalPages)
	assert.NotNil(t, empty.Items)
}

func TestBuildOptions(t *testing.T) {
	t.Run("Fleet", func(t *testing.T) {
		opts := BuildOptions(fleet())
		assert.Equal(t, []string{"BMW", "Ford", "Honda", "Tesla", "Toyota"}, opts.Brands)
		assert.Equal(t, []string{"SUV", "Sedan", "Van"}, opts.Types)
		assert.Equal(t, []string{"Airport", "Downtown", "Harbor"}, opts.Locations)
		assert.Equal(t, 45.0, opts.MinPrice)
		assert.Equal(t, 110.0, opts.MaxPrice)
	})

	t.Run("SkipsNilCars", func(t *testing.T) {
		cars := append([]*models.Car{nil}, fleet()...)
		cars = append(cars, nil)
		var opts Options
		require.NotPanics(t, func() { opts = BuildOptions(cars) })
		assert.Equal(t, []string{"BMW", "Ford", "Honda", "Tesla", "Toyota"}, opts.Brands)
		assert.Equal(t, 45.0, opts.MinPrice)
		assert.Equal(t, 110.0, opts.MaxPrice)
	})

	t.Run("Empty", func(t *testing.T) {
		opts := BuildOptions([]*models.Car{nil})
		assert.Empty(t, opts.Brands)
		assert.Zero(t, opts.MinPrice)
	})
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "tesla-model-3-2024", Slug(&models.Car{Brand: "Tesla", Model: "Model 3", Year: 2024}))
	assert.Equal(t, "mercedes-benz-c-class", Slug(&models.Car{Brand: "Mercedes-Benz", Model: "C-Class"}))
}
