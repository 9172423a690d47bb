package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"carrental/internal/domain"
	"carrental/internal/models"
	"carrental/internal/pricing"
)

// SeedData is the initial content of a MemoryStore.
type SeedData struct {
	Cars      []*models.Car
	Customers []*models.Customer
	Bookings  []*models.Booking
}

// MemoryStore is the in-memory data store. Every call waits for the
// configured latency first, so callers see the same timing as a remote backend.
type MemoryStore struct {
	mu        sync.RWMutex
	latency   time.Duration
	now       func() time.Time
	cars      []*models.Car
	customers []*models.Customer
	bookings  []*models.Booking
	users     []*models.User

	nextCarID      int64
	nextCustomerID int64
	nextBookingID  int64
	nextUserID     int64
}

var _ domain.Repository = (*MemoryStore)(nil)

func NewMemoryStore(latency time.Duration) *MemoryStore {
	return &MemoryStore{
		latency:        latency,
		now:            time.Now,
		nextCarID:      1,
		nextCustomerID: 1,
		nextBookingID:  1,
		nextUserID:     1,
	}
}

// Seed replaces the store content. Ids are kept as given and counters continue after the highest one.
func (s *MemoryStore) Seed(data SeedData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cars = make([]*models.Car, 0, len(data.Cars))
	for _, c := range data.Cars {
		cp := copyCar(c)
		s.cars = append(s.cars, cp)
		if cp.ID >= s.nextCarID {
			s.nextCarID = cp.ID + 1
		}
	}
	s.customers = make([]*models.Customer, 0, len(data.Customers))
	for _, c := range data.Customers {
		cp := *c
		s.customers = append(s.customers, &cp)
		if cp.ID >= s.nextCustomerID {
			s.nextCustomerID = cp.ID + 1
		}
	}
	s.bookings = make([]*models.Booking, 0, len(data.Bookings))
	for _, b := range data.Bookings {
		cp := copyBooking(b)
		s.bookings = append(s.bookings, cp)
		if cp.ID >= s.nextBookingID {
			s.nextBookingID = cp.ID + 1
		}
	}
}

func (s *MemoryStore) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func copyCar(c *models.Car) *models.Car {
	cp := *c
	cp.Features = append([]string(nil), c.Features...)
	return &cp
}

func copyBooking(b *models.Booking) *models.Booking {
	cp := *b
	cp.AdditionalServices = append([]models.ServiceID(nil), b.AdditionalServices...)
	return &cp
}

// Cars

func (s *MemoryStore) ListCars(ctx context.Context) ([]*models.Car, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Car, 0, len(s.cars))
	for _, c := range s.cars {
		out = append(out, copyCar(c))
	}
	return out, nil
}

func (s *MemoryStore) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cars {
		if c.ID == id {
			return copyCar(c), nil
		}
	}
	return nil, domain.NotFound("car", id)
}

func (s *MemoryStore) CreateCar(ctx context.Context, car *models.Car) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	car.ID = s.nextCarID
	s.nextCarID++
	car.CreatedAt = now
	car.UpdatedAt = now
	s.cars = append(s.cars, copyCar(car))
	return nil
}

func (s *MemoryStore) UpdateCar(ctx context.Context, car *models.Car) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cars {
		if c.ID == car.ID {
			car.CreatedAt = c.CreatedAt
			car.UpdatedAt = s.now()
			s.cars[i] = copyCar(car)
			return nil
		}
	}
	return domain.NotFound("car", car.ID)
}

func (s *MemoryStore) DeleteCar(ctx context.Context, id int64) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cars {
		if c.ID == id {
			s.cars = append(s.cars[:i], s.cars[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("car", id)
}

// Customers

func (s *MemoryStore) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.NotFound("customer", id)
}

func (s *MemoryStore) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.NotFound("customer", email)
}

func (s *MemoryStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	customer.ID = s.nextCustomerID
	s.nextCustomerID++
	if customer.JoinDate.IsZero() {
		customer.JoinDate = s.now()
	}
	if customer.Status == "" {
		customer.Status = models.CustomerActive
	}
	cp := *customer
	s.customers = append(s.customers, &cp)
	return nil
}

func (s *MemoryStore) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.customers {
		if c.ID == customer.ID {
			cp := *customer
			s.customers[i] = &cp
			return nil
		}
	}
	return domain.NotFound("customer", customer.ID)
}

func (s *MemoryStore) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.customers {
		if c.ID == id {
			s.customers = append(s.customers[:i], s.customers[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("customer", id)
}

// Bookings

func (s *MemoryStore) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, copyBooking(b))
	}
	return out, nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.ID == id {
			return copyBooking(b), nil
		}
	}
	return nil, domain.NotFound("booking", id)
}

// GetBookingsByCustomerID returns the customer's bookings, newest first.
func (s *MemoryStore) GetBookingsByCustomerID(ctx context.Context, customerID int64) ([]*models.Booking, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Booking, 0)
	for _, b := range s.bookings {
		if b.CustomerID == customerID {
			out = append(out, copyBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateBooking assigns id and timestamps. The caller's status is kept and
// only an empty one defaults to pending.
func (s *MemoryStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	booking.ID = s.nextBookingID
	s.nextBookingID++
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	if booking.TotalDays < 1 {
		booking.TotalDays = pricing.TotalDays(booking.StartDate, booking.EndDate)
	}
	s.bookings = append(s.bookings, copyBooking(booking))
	return nil
}

func (s *MemoryStore) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id {
			b.Status = status
			b.UpdatedAt = s.now()
			return nil
		}
	}
	return domain.NotFound("booking", id)
}

func (s *MemoryStore) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bookings {
		if b.ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("booking", id)
}

// Users

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NotFound("user", email)
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NotFound("user", id)
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			verr := domain.NewValidationError()
			verr.Add("email", "is already registered")
			return verr
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	cp := *user
	s.users = append(s.users, &cp)
	return nil
}
