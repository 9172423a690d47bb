package domain

import (
	"context"
	"time"

	"carrental/internal/models"
)

type CarRepository interface {
	ListCars(ctx context.Context) ([]*models.Car, error)
	GetCar(ctx context.Context, id int64) (*models.Car, error)
	CreateCar(ctx context.Context, car *models.Car) error
	UpdateCar(ctx context.Context, car *models.Car) error
	DeleteCar(ctx context.Context, id int64) error
}

type CustomerRepository interface {
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
}

type BookingRepository interface {
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingsByCustomerID(ctx context.Context, customerID int64) ([]*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	DeleteBooking(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// Repository is the full capability set of the data store.
type Repository interface {
	CarRepository
	CustomerRepository
	BookingRepository
	UserRepository
}

type DraftRepository interface {
	GetDraft(ctx context.Context, id string) (*models.WizardDraft, error)
	SetDraft(ctx context.Context, draft *models.WizardDraft) error
	ClearDraft(ctx context.Context, id string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SessionStore is a key-value store with per-entry expiry.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type PaymentRequest struct {
	CardNumber     string
	Expiry         string
	CVV            string
	CardholderName string
	Amount         float64
}

type PaymentProcessor interface {
	Process(ctx context.Context, req PaymentRequest) error
}

// BookingCreator is what the wizard hands a finished draft to.
type BookingCreator interface {
	CreateBooking(ctx context.Context, booking *models.Booking, customer models.DraftCustomer) error
}

type CarService interface {
	GetCarByID(ctx context.Context, id int64) (*models.Car, error)
}
