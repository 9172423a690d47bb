package wizard

import "carrental/internal/models"

// Event is an input the wizard reacts to. The set is closed.
type Event interface {
	eventName() string
}

// SubmitDates completes the first step. A nil Services keeps the current
// selection; a non-nil one replaces it.
type SubmitDates struct {
	PickupDate      string             `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	DropoffDate     string             `json:"dropoff_date" validate:"required,datetime=2006-01-02"`
	PickupTime      string             `json:"pickup_time" validate:"omitempty,datetime=15:04"`
	DropoffTime     string             `json:"dropoff_time" validate:"omitempty,datetime=15:04"`
	PickupLocation  string             `json:"pickup_location" validate:"required"`
	DropoffLocation string             `json:"dropoff_location" validate:"required"`
	Services        []models.ServiceID `json:"additional_services"`
}

// ToggleService flips one extra while still on the first step.
type ToggleService struct {
	Service models.ServiceID `json:"service" validate:"required"`
}

type SubmitCustomer struct {
	Customer models.DraftCustomer
}

// SubmitPayment carries card data. It is used once and never stored.
type SubmitPayment struct {
	CardNumber     string `json:"card_number" validate:"required,card_number"`
	Expiry         string `json:"expiry" validate:"required,card_expiry"`
	CVV            string `json:"cvv" validate:"required,cvv"`
	CardholderName string `json:"cardholder_name" validate:"required"`
}

type Back struct{}

func (SubmitDates) eventName() string    { return "submit_dates" }
func (ToggleService) eventName() string  { return "toggle_service" }
func (SubmitCustomer) eventName() string { return "submit_customer" }
func (SubmitPayment) eventName() string  { return "submit_payment" }
func (Back) eventName() string           { return "back" }
