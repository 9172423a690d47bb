package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// BookingStatuses lists statuses in their nominal progression order.
var BookingStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusActive,
	StatusCompleted,
	StatusCancelled,
}

func IsValidBookingStatus(status string) bool {
	for _, s := range BookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const (
	CustomerActive   = "active"
	CustomerInactive = "inactive"
)

const (
	// DefaultPageSize is the catalog page size.
	DefaultPageSize = 12

	// FeaturedMinRating is the lowest rating a featured car may have.
	FeaturedMinRating = 4.6

	// FeaturedLimit caps the featured list.
	FeaturedLimit = 6

	// RelatedLimit caps the related cars list.
	RelatedLimit = 4

	// SessionTTL is how long auth-token and user-data entries live.
	SessionTTL = 7 * 24 * 60 * 60 // 7 days in seconds

	// DraftTTL is how long an untouched wizard draft lives.
	DraftTTL = 2 * 60 * 60 // 2 hours in seconds

	// DefaultStoreLatency is the artificial delay of the mock store in milliseconds.
	DefaultStoreLatency = 300

	// DefaultPaymentDelay is the simulated payment processing time in milliseconds.
	DefaultPaymentDelay = 2000

	// LoginRateLimit is the number of login attempts allowed per email in a window.
	LoginRateLimit = 10

	// LoginRateWindow is the login rate limit window in seconds.
	LoginRateWindow = 60
)
