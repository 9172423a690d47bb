package wizard

import (
	"context"
	"fmt"
	"time"

	"carrental/internal/domain"
	"carrental/internal/models"
	"carrental/internal/pricing"
	"carrental/internal/validation"
)

const defaultClock = "10:00"

// State is one step of the booking wizard. Each variant owns exactly one
// transition function; the draft is only modified when it returns no error.
type State interface {
	Step() int
	Name() string
	Handle(ctx context.Context, m *Machine, d *models.WizardDraft, ev Event) (State, error)
}

type (
	DatesAndLocation struct{}
	CustomerInfo     struct{}
	Payment          struct{}
	Confirmation     struct{}
)

func (DatesAndLocation) Step() int { return models.StepDatesAndLocation }
func (CustomerInfo) Step() int     { return models.StepCustomerInfo }
func (Payment) Step() int          { return models.StepPayment }
func (Confirmation) Step() int     { return models.StepConfirmation }

func (DatesAndLocation) Name() string { return "dates_and_location" }
func (CustomerInfo) Name() string     { return "customer_info" }
func (Payment) Name() string          { return "payment" }
func (Confirmation) Name() string     { return "confirmation" }

// StateFor maps a stored step number back to its state.
func StateFor(step int) (State, error) {
	switch step {
	case models.StepDatesAndLocation:
		return DatesAndLocation{}, nil
	case models.StepCustomerInfo:
		return CustomerInfo{}, nil
	case models.StepPayment:
		return Payment{}, nil
	case models.StepConfirmation:
		return Confirmation{}, nil
	default:
		return nil, fmt.Errorf("wizard step %d: %w", step, domain.ErrInvalidInput)
	}
}

func rejected(s State, ev Event) error {
	return fmt.Errorf("%s does not accept %s: %w", s.Name(), ev.eventName(), domain.ErrInvalidTransition)
}

func (s DatesAndLocation) Handle(ctx context.Context, m *Machine, d *models.WizardDraft, ev Event) (State, error) {
	switch e := ev.(type) {
	case ToggleService:
		if _, ok := models.LookupService(e.Service); !ok {
			verr := domain.NewValidationError()
			verr.Add("service", "is not offered")
			return nil, verr
		}
		d.ToggleService(e.Service)
		return s, nil

	case SubmitDates:
		if err := m.validator.Struct(e); err != nil {
			return nil, err
		}
		if err := checkServices(e.Services); err != nil {
			return nil, err
		}
		pickup, dropoff, err := parseDates(e.PickupDate, e.DropoffDate)
		if err != nil {
			return nil, err
		}
		if !dropoff.After(pickup) {
			return nil, &domain.DateRangeError{Reason: "dropoff date must be after pickup date"}
		}
		if pickup.Before(m.today()) {
			return nil, &domain.DateRangeError{Reason: "pickup date is in the past"}
		}

		d.Dates = models.DraftDates{
			PickupDate:  e.PickupDate,
			DropoffDate: e.DropoffDate,
			PickupTime:  orDefault(e.PickupTime, defaultClock),
			DropoffTime: orDefault(e.DropoffTime, defaultClock),
		}
		d.Locations = models.DraftLocations{
			PickupLocation:  e.PickupLocation,
			DropoffLocation: e.DropoffLocation,
		}
		if e.Services != nil {
			d.AdditionalServices = dedupe(e.Services)
		}
		return CustomerInfo{}, nil

	default:
		return nil, rejected(s, ev)
	}
}

func (s CustomerInfo) Handle(ctx context.Context, m *Machine, d *models.WizardDraft, ev Event) (State, error) {
	switch e := ev.(type) {
	case SubmitCustomer:
		if err := m.validator.Struct(e.Customer); err != nil {
			return nil, err
		}
		d.Customer = e.Customer
		return Payment{}, nil
	case Back:
		return DatesAndLocation{}, nil
	default:
		return nil, rejected(s, ev)
	}
}

func (s Payment) Handle(ctx context.Context, m *Machine, d *models.WizardDraft, ev Event) (State, error) {
	switch e := ev.(type) {
	case SubmitPayment:
		if err := m.validator.Struct(e); err != nil {
			return nil, err
		}

		car, err := m.cars.GetCarByID(ctx, d.CarID)
		if err != nil {
			return nil, err
		}
		quote, err := QuoteDraft(d, car.Price)
		if err != nil {
			return nil, err
		}

		err = m.payments.Process(ctx, domain.PaymentRequest{
			CardNumber:     validation.NormalizeCardNumber(e.CardNumber),
			Expiry:         e.Expiry,
			CVV:            e.CVV,
			CardholderName: e.CardholderName,
			Amount:         quote.Total,
		})
		if err != nil {
			return nil, fmt.Errorf("payment: %w", err)
		}

		booking := m.buildBooking(d, car, quote)
		booking.CardLast4 = validation.Last4(e.CardNumber)
		if err := m.bookings.CreateBooking(ctx, booking, d.Customer); err != nil {
			return nil, fmt.Errorf("create booking: %w", err)
		}

		d.Payment = models.DraftPayment{
			CardholderName: e.CardholderName,
			CardLast4:      booking.CardLast4,
		}
		d.BookingID = booking.ID
		d.CustomerID = booking.CustomerID
		return Confirmation{}, nil
	case Back:
		return CustomerInfo{}, nil
	default:
		return nil, rejected(s, ev)
	}
}

// Handle rejects everything: a confirmed booking is final.
func (s Confirmation) Handle(ctx context.Context, m *Machine, d *models.WizardDraft, ev Event) (State, error) {
	return nil, rejected(s, ev)
}

// QuoteDraft prices the draft's dates and extras at dailyRate. Without dates
// the quote covers a single day.
func QuoteDraft(d *models.WizardDraft, dailyRate float64) (pricing.Quote, error) {
	days := 1
	if d.Dates.PickupDate != "" && d.Dates.DropoffDate != "" {
		pickup, dropoff, err := parseDates(d.Dates.PickupDate, d.Dates.DropoffDate)
		if err != nil {
			return pricing.Quote{}, err
		}
		days = pricing.TotalDays(pickup, dropoff)
	}
	return pricing.Compute(dailyRate, days, d.AdditionalServices)
}

func parseDates(pickup, dropoff string) (time.Time, time.Time, error) {
	verr := domain.NewValidationError()
	p, err := time.Parse(time.DateOnly, pickup)
	if err != nil {
		verr.Add("pickup_date", "must match "+time.DateOnly)
	}
	q, err := time.Parse(time.DateOnly, dropoff)
	if err != nil {
		verr.Add("dropoff_date", "must match "+time.DateOnly)
	}
	if !verr.Empty() {
		return time.Time{}, time.Time{}, verr
	}
	return p, q, nil
}

func checkServices(ids []models.ServiceID) error {
	for _, id := range ids {
		if _, ok := models.LookupService(id); !ok {
			verr := domain.NewValidationError()
			verr.Add("additional_services", fmt.Sprintf("%q is not offered", id))
			return verr
		}
	}
	return nil
}

func dedupe(ids []models.ServiceID) []models.ServiceID {
	out := make([]models.ServiceID, 0, len(ids))
	seen := make(map[models.ServiceID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
