package pricing

import (
	"errors"
	"testing"
	"time"

	"carrental/internal/domain"
	"carrental/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	t.Run("GPSAndInsurance", func(t *testing.T) {
		q, err := Compute(100, 3, []models.ServiceID{models.ServiceGPS, models.ServiceInsurance})
		require.NoError(t, err)
		assert.Equal(t, 300.0, q.BasePrice)
		assert.Equal(t, 75.0, q.ServicesPrice)
		assert.Equal(t, 37.5, q.Tax)
		assert.Equal(t, 412.5, q.Total)
	})

	t.Run("UnknownServiceIsFree", func(t *testing.T) {
		with, err := Compute(50, 2, []models.ServiceID{"jetpack"})
		require.NoError(t, err)
		without, err := Compute(50, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, with.ServicesPrice)
		assert.Equal(t, without, with)
	})

	t.Run("DuplicateServiceChargedOnce", func(t *testing.T) {
		q, err := Compute(10, 1, []models.ServiceID{models.ServiceGPS, models.ServiceGPS})
		require.NoError(t, err)
		assert.Equal(t, 5.0, q.ServicesPrice)
	})

	t.Run("ZeroDays", func(t *testing.T) {
		q, err := Compute(80, 0, []models.ServiceID{models.ServiceChildSeat})
		require.NoError(t, err)
		assert.Equal(t, 0.0, q.Total)
	})

	t.Run("NegativeInput", func(t *testing.T) {
		_, err := Compute(-1, 3, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))

		_, err = Compute(10, -3, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("TotalFormula", func(t *testing.T) {
		all := []models.ServiceID{
			models.ServiceGPS, models.ServiceChildSeat, models.ServiceWifiHotspot,
			models.ServiceInsurance, models.ServiceAdditionalDriver,
		}
		for _, rate := range []float64{0, 25, 49.5, 120} {
			for days := 1; days <= 10; days++ {
				q, err := Compute(rate, days, all)
				require.NoError(t, err)
				base := rate * float64(days)
				extras := 58.0 * float64(days)
				assert.InDelta(t, base+extras+0.1*(base+extras), q.Total, 0.01)
				assert.GreaterOrEqual(t, q.Total, base)
			}
		}
	})

	t.Run("TotalIsSumOfRoundedParts", func(t *testing.T) {
		q, err := Compute(10.004, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 10.00, q.BasePrice)
		assert.Equal(t, 1.00, q.Tax)
		assert.Equal(t, 11.00, q.Total)
		assert.InDelta(t, q.BasePrice+q.ServicesPrice+q.Tax, q.Total, 1e-9)
		assert.InDelta(t, 10.004*1.1, q.Total, 0.015)
	})
}

func TestTotalDays(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dropoff time.Time
		want    int
	}{
		{"SameDay", day, 1},
		{"NextDay", day.AddDate(0, 0, 1), 1},
		{"ThreeDays", day.AddDate(0, 0, 3), 3},
		{"PartialDayRoundsUp", day.Add(49 * time.Hour), 3},
		{"Reversed", day.AddDate(0, 0, -2), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalDays(day, tt.dropoff))
		})
	}
}
