package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"carrental/internal/domain"
	"carrental/internal/events"
	"carrental/internal/metrics"
	"carrental/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

var _ domain.BookingCreator = (*BookingService)(nil)

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Stats summarises bookings for the admin dashboard.
type Stats struct {
	TotalBookings   int            `json:"total_bookings"`
	ByStatus        map[string]int `json:"by_status"`
	Revenue         float64        `json:"revenue"`
	TotalCars       int            `json:"total_cars"`
	AvailableCars   int            `json:"available_cars"`
	TotalCustomers  int            `json:"total_customers"`
	ActiveCustomers int            `json:"active_customers"`
}

// CreateBooking stores a booking for the customer behind it. The customer
// is the one already set on the booking, else the one with the draft's email,
// else a new record built from the draft.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking, customer models.DraftCustomer) error {
	if booking.Status != "" && !models.IsValidBookingStatus(booking.Status) {
		return fmt.Errorf("status %q: %w", booking.Status, domain.ErrInvalidInput)
	}

	// The car must exist.
	car, err := s.repo.GetCar(ctx, booking.CarID)
	if err != nil {
		return err
	}
	booking.CarName = car.Name()
	if booking.PricePerDay == 0 {
		booking.PricePerDay = car.Price
	}

	c, err := s.resolveCustomer(ctx, booking.CustomerID, customer)
	if err != nil {
		return err
	}
	booking.CustomerID = c.ID
	if booking.CustomerName == "" {
		booking.CustomerName = c.Name
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return err
	}

	metrics.IncBookingCreated(booking.Status)
	s.publishEvent(events.EventBookingCreated, booking, "", "customer")
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("customer_id", booking.CustomerID).
		Int64("car_id", booking.CarID).
		Float64("total", booking.TotalPrice).
		Str("status", booking.Status).
		Msg("Booking created")
	return nil
}

func (s *BookingService) resolveCustomer(ctx context.Context, customerID int64, draft models.DraftCustomer) (*models.Customer, error) {
	if customerID != 0 {
		return s.repo.GetCustomer(ctx, customerID)
	}

	email := strings.ToLower(strings.TrimSpace(draft.Email))
	if email == "" {
		return nil, fmt.Errorf("booking without customer: %w", domain.ErrInvalidInput)
	}

	existing, err := s.repo.GetCustomerByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	created := &models.Customer{
		Name:   draft.FullName(),
		Email:  email,
		Phone:  draft.Phone,
		Status: models.CustomerActive,
	}
	if err := s.repo.CreateCustomer(ctx, created); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("customer_id", created.ID).Msg("Customer created from booking")
	return created, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// GetAllBookings returns every booking, newest first.
func (s *BookingService) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	list, err := s.repo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *BookingService) GetBookingsByCustomerID(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	return s.repo.GetBookingsByCustomerID(ctx, customerID)
}

// UpdateBookingStatus moves a booking to any of the known statuses.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id int64, status, changedBy string) (*models.Booking, error) {
	if !models.IsValidBookingStatus(status) {
		verr := domain.NewValidationError()
		verr.Add("status", "must be one of "+strings.Join(models.BookingStatuses, " "))
		return nil, verr
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := booking.Status
	if previous == status {
		return booking, nil
	}

	if err := s.repo.UpdateBookingStatus(ctx, id, status); err != nil {
		return nil, err
	}
	booking.Status = status

	s.publishEvent(events.EventBookingStatusChanged, booking, previous, changedBy)
	s.logger.Info().Int64("booking_id", id).Str("from", previous).Str("to", status).Str("by", changedBy).Msg("Booking status changed")
	return booking, nil
}

func (s *BookingService) Stats(ctx context.Context) (*Stats, error) {
	bookings, err := s.repo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		TotalBookings:  len(bookings),
		ByStatus:       make(map[string]int, len(models.BookingStatuses)),
		TotalCars:      len(cars),
		TotalCustomers: len(customers),
	}
	for _, status := range models.BookingStatuses {
		st.ByStatus[status] = 0
	}
	var revenue float64
	for _, b := range bookings {
		st.ByStatus[b.Status]++
		if b.Status != models.StatusCancelled {
			revenue += b.TotalPrice
		}
	}
	st.Revenue = roundCents(revenue)
	for _, c := range cars {
		if c.Available {
			st.AvailableCars++
		}
	}
	for _, c := range customers {
		if c.Status == models.CustomerActive {
			st.ActiveCustomers++
		}
	}
	return st, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, previous, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:      booking.ID,
		CustomerID:     booking.CustomerID,
		CustomerName:   booking.CustomerName,
		CarID:          booking.CarID,
		CarName:        booking.CarName,
		Status:         booking.Status,
		PreviousStatus: previous,
		StartDate:      booking.StartDate,
		EndDate:        booking.EndDate,
		TotalPrice:     booking.TotalPrice,
		ChangedBy:      changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
