package models

import "time"

type Booking struct {
	ID                 int64       `json:"id"`
	CustomerID         int64       `json:"customer_id"`
	CustomerName       string      `json:"customer_name"`
	CarID              int64       `json:"car_id"`
	CarName            string      `json:"car_name"`
	StartDate          time.Time   `json:"start_date"`
	EndDate            time.Time   `json:"end_date"`
	PickupTime         string      `json:"pickup_time,omitempty"`
	DropoffTime        string      `json:"dropoff_time,omitempty"`
	PickupLocation     string      `json:"pickup_location"`
	DropoffLocation    string      `json:"dropoff_location"`
	TotalDays          int         `json:"total_days"`
	PricePerDay        float64     `json:"price_per_day"`
	BasePrice          float64     `json:"base_price"`
	ServicesPrice      float64     `json:"services_price"`
	Tax                float64     `json:"tax"`
	TotalPrice         float64     `json:"total_price"`
	Status             string      `json:"status"` // pending, confirmed, active, completed, cancelled
	AdditionalServices []ServiceID `json:"additional_services"`
	CardLast4          string      `json:"card_last4,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}
