// Package wizard drives the four-step booking flow: dates and location,
// customer details, payment and confirmation.
package wizard

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"carrental/internal/domain"
	"carrental/internal/metrics"
	"carrental/internal/models"
	"carrental/internal/pricing"
	"carrental/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Machine owns the collaborators the states call into and persists drafts
// between events.
type Machine struct {
	drafts    domain.DraftRepository
	cars      domain.CarService
	bookings  domain.BookingCreator
	payments  domain.PaymentProcessor
	validator *validation.Validator
	logger    *zerolog.Logger
	now       func() time.Time

	locks [lockStripes]sync.Mutex
}

// lockStripes bounds the number of mutexes serializing events per draft.
const lockStripes = 64

func NewMachine(
	drafts domain.DraftRepository,
	cars domain.CarService,
	bookings domain.BookingCreator,
	payments domain.PaymentProcessor,
	logger *zerolog.Logger,
) *Machine {
	return &Machine{
		drafts:    drafts,
		cars:      cars,
		bookings:  bookings,
		payments:  payments,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Snapshot is the client-facing view of a draft.
type Snapshot struct {
	Draft *models.WizardDraft `json:"draft"`
	State string              `json:"state"`
	Car   *models.Car         `json:"car"`
	Quote pricing.Quote       `json:"quote"`
}

// Start opens a draft for carID. Logged-in callers pass their customer id and
// a prefilled customer block.
func (m *Machine) Start(ctx context.Context, carID, customerID int64, prefill models.DraftCustomer) (*Snapshot, error) {
	car, err := m.cars.GetCarByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	draft := &models.WizardDraft{
		ID:                 uuid.NewString(),
		Step:               models.StepDatesAndLocation,
		CarID:              car.ID,
		CustomerID:         customerID,
		Customer:           prefill,
		AdditionalServices: []models.ServiceID{},
		UpdatedAt:          m.now(),
	}
	if err := m.drafts.SetDraft(ctx, draft); err != nil {
		return nil, err
	}

	m.logger.Debug().Str("draft_id", draft.ID).Int64("car_id", car.ID).Msg("Wizard started")
	return m.snapshot(draft, car)
}

// Get returns the current view of a draft.
func (m *Machine) Get(ctx context.Context, id string) (*Snapshot, error) {
	draft, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	car, err := m.cars.GetCarByID(ctx, draft.CarID)
	if err != nil {
		return nil, err
	}
	return m.snapshot(draft, car)
}

// Fire applies ev to the draft. On error the stored draft is left as it was.
func (m *Machine) Fire(ctx context.Context, id string, ev Event) (*Snapshot, error) {
	unlock := m.lock(id)
	defer unlock()

	draft, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from, err := StateFor(draft.Step)
	if err != nil {
		return nil, err
	}

	next, err := from.Handle(ctx, m, draft, ev)
	if err != nil {
		metrics.IncWizardTransition(from.Name(), from.Name(), errorClass(err))
		m.logger.Debug().Err(err).Str("draft_id", id).Str("state", from.Name()).Str("event", ev.eventName()).Msg("Wizard event rejected")
		return nil, err
	}

	draft.Step = next.Step()
	draft.UpdatedAt = m.now()
	if err := m.drafts.SetDraft(ctx, draft); err != nil {
		if _, done := next.(Confirmation); done {
			m.logger.Error().Err(err).
				Str("draft_id", id).
				Int64("booking_id", draft.BookingID).
				Msg("Booking created but draft not saved")
		}
		return nil, err
	}
	metrics.IncWizardTransition(from.Name(), next.Name(), "ok")

	if _, done := next.(Confirmation); done {
		m.logger.Info().Str("draft_id", id).Int64("booking_id", draft.BookingID).Msg("Wizard completed")
	}

	car, err := m.cars.GetCarByID(ctx, draft.CarID)
	if err != nil {
		return nil, err
	}
	return m.snapshot(draft, car)
}

// Abandon discards the draft. Nothing is persisted for an unfinished wizard.
func (m *Machine) Abandon(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()

	return m.drafts.ClearDraft(ctx, id)
}

func (m *Machine) load(ctx context.Context, id string) (*models.WizardDraft, error) {
	draft, err := m.drafts.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, domain.NotFound("wizard", id)
	}
	return draft, nil
}

func (m *Machine) lock(id string) func() {
	mu := m.lockFor(id)
	mu.Lock()
	return mu.Unlock
}

func (m *Machine) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &m.locks[h.Sum32()%lockStripes]
}

func (m *Machine) snapshot(d *models.WizardDraft, car *models.Car) (*Snapshot, error) {
	state, err := StateFor(d.Step)
	if err != nil {
		return nil, err
	}
	quote, err := QuoteDraft(d, car.Price)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Draft: d, State: state.Name(), Car: car, Quote: quote}, nil
}

// today is the current UTC date at midnight.
func (m *Machine) today() time.Time {
	now := m.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (m *Machine) buildBooking(d *models.WizardDraft, car *models.Car, q pricing.Quote) *models.Booking {
	start, end, _ := parseDates(d.Dates.PickupDate, d.Dates.DropoffDate)
	return &models.Booking{
		CustomerID:         d.CustomerID,
		CustomerName:       d.Customer.FullName(),
		CarID:              car.ID,
		CarName:            car.Name(),
		StartDate:          start,
		EndDate:            end,
		PickupTime:         d.Dates.PickupTime,
		DropoffTime:        d.Dates.DropoffTime,
		PickupLocation:     d.Locations.PickupLocation,
		DropoffLocation:    d.Locations.DropoffLocation,
		TotalDays:          q.Days,
		PricePerDay:        car.Price,
		BasePrice:          q.BasePrice,
		ServicesPrice:      q.ServicesPrice,
		Tax:                q.Tax,
		TotalPrice:         q.Total,
		Status:             models.StatusConfirmed,
		AdditionalServices: append([]models.ServiceID(nil), d.AdditionalServices...),
	}
}

func errorClass(err error) string {
	switch {
	case domain.IsValidation(err):
		return "validation"
	case domain.IsDateRange(err):
		return "date_range"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
