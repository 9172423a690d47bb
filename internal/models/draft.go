package models

import "time"

const (
	StepDatesAndLocation = 1
	StepCustomerInfo     = 2
	StepPayment          = 3
	StepConfirmation     = 4
)

type DraftDates struct {
	PickupDate  string `json:"pickup_date"` // YYYY-MM-DD
	DropoffDate string `json:"dropoff_date"`
	PickupTime  string `json:"pickup_time"` // HH:MM
	DropoffTime string `json:"dropoff_time"`
}

type DraftLocations struct {
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
}

type DraftCustomer struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email_shape"`
	Phone           string `json:"phone" validate:"required,phone"`
	Address         string `json:"address" validate:"required"`
	City            string `json:"city" validate:"required"`
	ZipCode         string `json:"zip_code" validate:"required"`
	Country         string `json:"country,omitempty"`
	LicenseNumber   string `json:"license_number" validate:"required"`
	SpecialRequests string `json:"special_requests,omitempty"`
	AcceptTerms     bool   `json:"accept_terms" validate:"eq=true"`
}

func (c DraftCustomer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// DraftPayment keeps only what may be shown back to the customer.
type DraftPayment struct {
	CardholderName string `json:"cardholder_name"`
	CardLast4      string `json:"card_last4"`
}

// WizardDraft is the booking-in-progress accumulated by the wizard.
type WizardDraft struct {
	ID                 string         `json:"id"`
	Step               int            `json:"step"`
	CarID              int64          `json:"car_id"`
	CustomerID         int64          `json:"customer_id,omitempty"`
	Dates              DraftDates     `json:"dates"`
	Locations          DraftLocations `json:"locations"`
	Customer           DraftCustomer  `json:"customer"`
	Payment            DraftPayment   `json:"payment"`
	AdditionalServices []ServiceID    `json:"additional_services"`
	BookingID          int64          `json:"booking_id,omitempty"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// HasService reports whether id is selected.
func (d *WizardDraft) HasService(id ServiceID) bool {
	for _, s := range d.AdditionalServices {
		if s == id {
			return true
		}
	}
	return false
}

// ToggleService adds id when absent and removes it otherwise.
func (d *WizardDraft) ToggleService(id ServiceID) {
	for i, s := range d.AdditionalServices {
		if s == id {
			d.AdditionalServices = append(d.AdditionalServices[:i:i], d.AdditionalServices[i+1:]...)
			return
		}
	}
	d.AdditionalServices = append(d.AdditionalServices, id)
}
