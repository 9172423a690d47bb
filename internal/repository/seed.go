package repository

import (
	"fmt"
	"strings"
	"time"

	"carrental/internal/catalog"
	"carrental/internal/models"
	"carrental/internal/pricing"
)

// DefaultFleet is the built-in car list used when no fleet file is configured.
func DefaultFleet() []*models.Car {
	cars := []*models.Car{
		{ID: 1, Brand: "Toyota", Model: "Camry", Year: 2023, Type: "Sedan", Transmission: models.TransmissionAutomatic, Fuel: models.FuelHybrid, Seats: 5, Price: 45, Location: "New York", Rating: 4.5, Available: true, Features: []string{"Bluetooth", "Backup Camera", "Cruise Control"}},
		{ID: 2, Brand: "Honda", Model: "CR-V", Year: 2023, Type: "SUV", Transmission: models.TransmissionAutomatic, Fuel: models.FuelGasoline, Seats: 5, Price: 55, Location: "Los Angeles", Rating: 4.6, Available: true, Features: []string{"AWD", "Apple CarPlay", "Lane Assist"}},
		{ID: 3, Brand: "Tesla", Model: "Model 3", Year: 2024, Type: "Sedan", Transmission: models.TransmissionAutomatic, Fuel: models.FuelElectric, Seats: 5, Price: 89, Location: "San Francisco", Rating: 4.9, Available: true, Features: []string{"Autopilot", "Glass Roof", "Supercharging"}},
		{ID: 4, Brand: "BMW", Model: "X5", Year: 2023, Type: "SUV", Transmission: models.TransmissionAutomatic, Fuel: models.FuelGasoline, Seats: 7, Price: 120, Location: "Miami", Rating: 4.8, Available: true, Features: []string{"Leather Seats", "Panoramic Roof", "Heated Seats"}},
		{ID: 5, Brand: "Ford", Model: "Mustang", Year: 2022, Type: "Convertible", Transmission: models.TransmissionManual, Fuel: models.FuelGasoline, Seats: 4, Price: 95, Location: "Los Angeles", Rating: 4.7, Available: true, Features: []string{"Soft Top", "Sport Mode"}},
		{ID: 6, Brand: "Chevrolet", Model: "Tahoe", Year: 2023, Type: "SUV", Transmission: models.TransmissionAutomatic, Fuel: models.FuelGasoline, Seats: 8, Price: 110, Location: "Chicago", Rating: 4.4, Available: true, Features: []string{"Third Row", "Towing Package"}},
		{ID: 7, Brand: "Nissan", Model: "Altima", Year: 2022, Type: "Sedan", Transmission: models.TransmissionAutomatic, Fuel: models.FuelGasoline, Seats: 5, Price: 40, Location: "Chicago", Rating: 4.2, Available: true, Features: []string{"Bluetooth", "Keyless Entry"}},
		{ID: 8, Brand: "Mercedes-Benz", Model: "C-Class", Year: 2024, Type: "Luxury", Transmission: models.TransmissionAutomatic, Fuel: models.FuelGasoline, Seats: 5, Price: 135, Location: "New York", Rating: 4.8, Available: true, Features: []string{"Ambient Lighting", "Burmester Audio"}},
		{ID: 9, Brand: "Volkswagen", Model: "Golf", Year: 2022, Type: "Hatchback", Transmission: models.TransmissionManual, Fuel: models.FuelGasoline, Seats: 5, Price: 38, Location: "Boston", Rating: 4.3, Available: true, Features: []string{"Compact", "Fuel Efficient"}},
		{ID: 10, Brand: "Hyundai", Model: "Ioniq 5", Year: 2024, Type: "SUV", Transmission: models.TransmissionAutomatic, Fuel: models.FuelElectric, Seats: 5, Price: 79, Location: "Seattle", Rating: 4.7, Available: true, Features: []string{"Fast Charging", "Vehicle-to-Load"}},
		{ID: 11, Brand: "Jeep", Model: "Wrangler", Year: 2023, Type: "SUV", Transmission: models.TransmissionManual, Fuel: models.FuelGasoline, Seats: 5, Price: 85, Location: "Denver", Rating: 4.5, Available: false, Features: []string{"4x4", "Removable Roof"}},
		{ID: 12, Brand: "Audi", Model: "A4", Year: 2023, Type: "Luxury", Transmission: models.TransmissionAutomatic, Fuel: models.FuelGasoline, Seats: 5, Price: 105, Location: "Miami", Rating: 4.6, Available: true, Features: []string{"Quattro", "Virtual Cockpit"}},
		{ID: 13, Brand: "Kia", Model: "Sportage", Year: 2023, Type: "SUV", Transmission: models.TransmissionAutomatic, Fuel: models.FuelHybrid, Seats: 5, Price: 52, Location: "Boston", Rating: 4.4, Available: true, Features: []string{"Hybrid", "Wireless Charging"}},
		{ID: 14, Brand: "Porsche", Model: "911", Year: 2024, Type: "Sports", Transmission: models.TransmissionAutomatic, Fuel: models.FuelGasoline, Seats: 2, Price: 250, Location: "San Francisco", Rating: 5.0, Available: true, Features: []string{"Sport Chrono", "Launch Control"}},
	}
	for _, c := range cars {
		c.Slug = catalog.Slug(c)
		c.Description = fmt.Sprintf("%d %s, %d seats, %s.", c.Year, c.Name(), c.Seats, strings.ToLower(c.Transmission))
	}
	return cars
}

// DefaultSeed returns the fleet plus demo customers and bookings. Customer 1
// belongs to the built-in user account.
func DefaultSeed(now time.Time) SeedData {
	cars := DefaultFleet()
	return SeedData{
		Cars:      cars,
		Customers: defaultCustomers(now),
		Bookings:  defaultBookings(now, cars),
	}
}

func defaultCustomers(now time.Time) []*models.Customer {
	return []*models.Customer{
		{ID: 1, Name: "John Doe", Email: "user@email.com", Phone: "+1 555 010 2030", JoinDate: now.AddDate(0, -8, 0), TotalBookings: 2, Status: models.CustomerActive},
		{ID: 2, Name: "Jane Smith", Email: "jane.smith@email.com", Phone: "+1 555 010 4050", JoinDate: now.AddDate(0, -5, 0), TotalBookings: 1, Status: models.CustomerActive},
		{ID: 3, Name: "Mike Johnson", Email: "mike.j@email.com", Phone: "+1 555 010 6070", JoinDate: now.AddDate(0, -3, 0), TotalBookings: 1, Status: models.CustomerActive},
		{ID: 4, Name: "Sarah Williams", Email: "sarah.w@email.com", Phone: "+1 555 010 8090", JoinDate: now.AddDate(-1, 0, 0), TotalBookings: 0, Status: models.CustomerInactive},
	}
}

func defaultBookings(now time.Time, cars []*models.Car) []*models.Booking {
	day := func(offset int) time.Time {
		d := now.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, time.UTC)
	}
	type row struct {
		id, customer, car int64
		name              string
		start, end        int
		status            string
		services          []models.ServiceID
	}
	rows := []row{
		{1, 1, 3, "John Doe", -40, -35, models.StatusCompleted, []models.ServiceID{models.ServiceGPS}},
		{2, 1, 4, "John Doe", 10, 14, models.StatusConfirmed, []models.ServiceID{models.ServiceInsurance, models.ServiceChildSeat}},
		{3, 2, 1, "Jane Smith", -2, 3, models.StatusActive, nil},
		{4, 3, 5, "Mike Johnson", 20, 22, models.StatusPending, []models.ServiceID{models.ServiceAdditionalDriver}},
		{5, 2, 8, "Jane Smith", -20, -18, models.StatusCancelled, nil},
	}

	byID := make(map[int64]*models.Car, len(cars))
	for _, c := range cars {
		byID[c.ID] = c
	}

	out := make([]*models.Booking, 0, len(rows))
	for _, r := range rows {
		car, ok := byID[r.car]
		if !ok {
			continue
		}
		start, end := day(r.start), day(r.end)
		days := pricing.TotalDays(start, end)
		q, err := pricing.Compute(car.Price, days, r.services)
		if err != nil {
			continue
		}
		out = append(out, &models.Booking{
			ID:                 r.id,
			CustomerID:         r.customer,
			CustomerName:       r.name,
			CarID:              car.ID,
			CarName:            car.Name(),
			StartDate:          start,
			EndDate:            end,
			PickupTime:         "10:00",
			DropoffTime:        "10:00",
			PickupLocation:     car.Location,
			DropoffLocation:    car.Location,
			TotalDays:          days,
			PricePerDay:        car.Price,
			BasePrice:          q.BasePrice,
			ServicesPrice:      q.ServicesPrice,
			Tax:                q.Tax,
			TotalPrice:         q.Total,
			Status:             r.status,
			AdditionalServices: r.services,
			CreatedAt:          start.AddDate(0, 0, -7),
			UpdatedAt:          start.AddDate(0, 0, -7),
		})
	}
	return out
}
