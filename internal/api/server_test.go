package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carrental/internal/auth"
	"carrental/internal/config"
	"carrental/internal/events"
	"carrental/internal/repository"
	"carrental/internal/service"
	"carrental/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	server *HTTPServer
	store  *repository.MemoryStore
}

func newTestEnv(t *testing.T, apiCfg config.APIConfig) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.New(io.Discard)
	store := repository.NewMemoryStore(0)
	store.Seed(repository.DefaultSeed(time.Now().AddDate(0, -1, 0)))

	drafts := repository.NewMemoryDraftRepository(time.Hour)
	sessions := repository.NewMemorySessionStore()
	bus := events.NewEventBus(&logger)

	authCfg := config.AuthConfig{JWTSecret: "test-secret"}
	authSvc := auth.NewService(store, store, sessions, drafts, bus, auth.Options{
		Secret:     []byte(authCfg.JWTSecret),
		BcryptCost: bcrypt.MinCost,
	}, &logger)
	require.NoError(t, authSvc.Bootstrap(context.Background(), config.DefaultAccounts()))

	cars := service.NewCarService(store, config.CatalogConfig{}, &logger)
	bookings := service.NewBookingService(store, bus, &logger)
	machine := wizard.NewMachine(drafts, cars, bookings, wizard.NewSimulatedPaymentProcessor(0), &logger)

	srv := NewHTTPServer(apiCfg, authCfg, Services{
		Cars:      cars,
		Bookings:  bookings,
		Customers: service.NewCustomerService(store, &logger),
		Auth:      authSvc,
		Wizard:    machine,
	}, &logger)
	return &testEnv{server: srv, store: store}
}

type reqOpt func(*http.Request)

func withBearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(c *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(c) }
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return gjson.Get(rec.Body.String(), "token").String()
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(time.DateOnly)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	t.Run("filter by brand", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/cars?brand=tesla", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Equal(t, int64(1), gjson.Get(body, "total").Int())
		assert.Equal(t, "Tesla", gjson.Get(body, "items.0.brand").String())
	})

	t.Run("price range and sort", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/cars?min_price=100&sort=price-high", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		prices := gjson.Get(rec.Body.String(), "items.#.price").Array()
		require.NotEmpty(t, prices)
		assert.Equal(t, 250.0, prices[0].Float())
		for _, p := range prices {
			assert.GreaterOrEqual(t, p.Float(), 100.0)
		}
	})

	t.Run("bad page", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/cars?page=abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("by id and slug", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/cars/3", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		slug := gjson.Get(rec.Body.String(), "data.slug").String()
		require.NotEmpty(t, slug)

		rec = env.do(t, http.MethodGet, "/api/v1/cars/"+slug, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(3), gjson.Get(rec.Body.String(), "data.id").Int())
	})

	t.Run("unknown car", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/cars/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("featured options related services", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/cars/featured", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		for _, r := range gjson.Get(rec.Body.String(), "data.#.rating").Array() {
			assert.GreaterOrEqual(t, r.Float(), 4.6)
		}

		rec = env.do(t, http.MethodGet, "/api/v1/cars/options", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 38.0, gjson.Get(rec.Body.String(), "min_price").Float())
		assert.Equal(t, 250.0, gjson.Get(rec.Body.String(), "max_price").Float())

		rec = env.do(t, http.MethodGet, "/api/v1/cars/4/related", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		for _, id := range gjson.Get(rec.Body.String(), "data.#.id").Array() {
			assert.NotEqual(t, int64(4), id.Int())
		}

		rec = env.do(t, http.MethodGet, "/api/v1/services", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(5), gjson.Get(rec.Body.String(), "count").Int())
	})
}

func TestQuote(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/quote", map[string]any{
		"car_id":              3,
		"pickup_date":         "2030-05-01",
		"dropoff_date":        "2030-05-03",
		"additional_services": []string{"gps"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "quote.days").Int())
	assert.InDelta(t, 178.0, gjson.Get(body, "quote.base_price").Float(), 0.001)
	assert.InDelta(t, 10.0, gjson.Get(body, "quote.services_price").Float(), 0.001)
	assert.InDelta(t, 206.8, gjson.Get(body, "quote.total").Float(), 0.001)

	rec = env.do(t, http.MethodPost, "/api/v1/quote", map[string]any{
		"car_id": 3, "pickup_date": "2030-05-01", "dropoff_date": "2030-05-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/quote", map[string]any{
		"car_id": 3, "pickup_date": "2030-05-01", "dropoff_date": "2030-05-02",
		"additional_services": []string{"jetpack"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "fields.additional_services").Exists())
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "user@email.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("anonymous me", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cookie session and logout", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "user@email.com", "password": "user123"})
		require.Equal(t, http.StatusOK, rec.Code)

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == sessionCookie {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.InDelta(t, 7*24*3600, cookie.MaxAge, 5)

		rec = env.do(t, http.MethodGet, "/api/v1/auth/me", nil, withCookie(cookie))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user@email.com", gjson.Get(rec.Body.String(), "user.email").String())
		assert.Equal(t, "user", gjson.Get(rec.Body.String(), "user.role").String())

		rec = env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, withCookie(cookie))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/auth/me", nil, withCookie(cookie))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer token revoked on logout", func(t *testing.T) {
		token := env.login(t, "admin@carrental.com", "admin123")

		rec := env.do(t, http.MethodGet, "/api/v1/auth/me", nil, withBearer(token))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", gjson.Get(rec.Body.String(), "user.role").String())

		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, withBearer(token)).Code)
		assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, withBearer(token)).Code)
	})

	t.Run("register", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"name": "Ada Lovelace", "email": "ada@example.com", "password": "secret1",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.NotZero(t, gjson.Get(rec.Body.String(), "user.customer_id").Int())

		rec = env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"name": "Ada Again", "email": "ada@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.True(t, gjson.Get(rec.Body.String(), "fields.email").Exists())
	})
}

func validCustomer() map[string]any {
	return map[string]any{
		"first_name":     "Grace",
		"last_name":      "Hopper",
		"email":          "grace@example.com",
		"phone":          "+1 555 123 4567",
		"address":        "1 Navy Way",
		"city":           "Arlington",
		"zip_code":       "22201",
		"license_number": "D1234567",
		"accept_terms":   true,
	}
}

func TestWizardFlow(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/wizard", map[string]any{"car_id": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := gjson.Get(rec.Body.String(), "draft.id").String()
	require.NotEmpty(t, id)
	assert.Equal(t, "dates_and_location", gjson.Get(rec.Body.String(), "state").String())

	base := "/api/v1/wizard/" + id

	rec = env.do(t, http.MethodPost, base+"/customer", validCustomer())
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/dates", map[string]any{
		"pickup_date": futureDate(5), "dropoff_date": futureDate(5),
		"pickup_location": "San Francisco", "dropoff_location": "San Francisco",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/services", map[string]any{"service": "insurance"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "insurance", gjson.Get(rec.Body.String(), "draft.additional_services.0").String())

	rec = env.do(t, http.MethodPost, base+"/dates", map[string]any{
		"pickup_date": futureDate(5), "dropoff_date": futureDate(8),
		"pickup_location": "San Francisco", "dropoff_location": "Los Angeles",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "customer_info", gjson.Get(rec.Body.String(), "state").String())
	assert.Equal(t, int64(3), gjson.Get(rec.Body.String(), "quote.days").Int())

	rec = env.do(t, http.MethodPost, base+"/customer", map[string]any{"first_name": "Grace"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "fields").Exists())

	rec = env.do(t, http.MethodPost, base+"/customer", validCustomer())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "payment", gjson.Get(rec.Body.String(), "state").String())

	rec = env.do(t, http.MethodPost, base+"/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customer_info", gjson.Get(rec.Body.String(), "state").String())
	assert.Equal(t, "Grace", gjson.Get(rec.Body.String(), "draft.customer.first_name").String())

	rec = env.do(t, http.MethodPost, base+"/customer", validCustomer())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/payment", map[string]any{
		"card_number": "4111 1111 1111 1111", "expiry": "12/35", "cvv": "123", "cardholder_name": "Grace Hopper",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Equal(t, "confirmation", gjson.Get(body, "state").String())
	assert.Equal(t, "1111", gjson.Get(body, "draft.payment.card_last4").String())
	assert.NotContains(t, body, "4111 1111")
	bookingID := gjson.Get(body, "draft.booking_id").Int()
	require.NotZero(t, bookingID)

	booking, err := env.store.GetBooking(context.Background(), bookingID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", booking.Status)
	assert.Equal(t, "Grace Hopper", booking.CustomerName)

	rec = env.do(t, http.MethodPost, base+"/back", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, nil).Code)
}

func TestWizardPrefillAndMyBookings(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	token := env.login(t, "user@email.com", "user123")

	rec := env.do(t, http.MethodPost, "/api/v1/wizard", map[string]any{"car_id": 9}, withBearer(token))
	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "John", gjson.Get(body, "draft.customer.first_name").String())
	assert.Equal(t, "Doe", gjson.Get(body, "draft.customer.last_name").String())
	assert.Equal(t, int64(1), gjson.Get(body, "draft.customer_id").Int())

	rec = env.do(t, http.MethodGet, "/api/v1/me/bookings", nil, withBearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "count").Int())
	for _, cid := range gjson.Get(rec.Body.String(), "data.#.customer_id").Array() {
		assert.Equal(t, int64(1), cid.Int())
	}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/me/bookings", nil).Code)
}

func TestWizardStartValidation(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})

	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, "/api/v1/wizard", map[string]any{}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/v1/wizard", map[string]any{"car_id": 404}).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminGuard(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	userToken := env.login(t, "user@email.com", "user123")

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/admin/stats", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/v1/admin/stats", nil, withBearer(userToken)).Code)
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	token := env.login(t, "admin@carrental.com", "admin123")
	as := withBearer(token)

	t.Run("stats", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/admin/stats", nil, as)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(5), gjson.Get(rec.Body.String(), "total_bookings").Int())
		assert.Equal(t, int64(14), gjson.Get(rec.Body.String(), "total_cars").Int())
	})

	t.Run("bookings and status change", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/admin/bookings?status=pending", nil, as)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "count").Int())
		id := gjson.Get(rec.Body.String(), "data.0.id").String()

		rec = env.do(t, http.MethodPatch, "/api/v1/admin/bookings/"+id+"/status", map[string]string{"status": "confirmed"}, as)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "confirmed", gjson.Get(rec.Body.String(), "data.status").String())

		rec = env.do(t, http.MethodPatch, "/api/v1/admin/bookings/"+id+"/status", map[string]string{"status": "lost"}, as)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = env.do(t, http.MethodPatch, "/api/v1/admin/bookings/abc/status", map[string]string{"status": "confirmed"}, as)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("customers", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/admin/customers", nil, as)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(4), gjson.Get(rec.Body.String(), "count").Int())

		rec = env.do(t, http.MethodPatch, "/api/v1/admin/customers/2/status", map[string]string{"status": "inactive"}, as)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "inactive", gjson.Get(rec.Body.String(), "data.status").String())
	})

	t.Run("car lifecycle", func(t *testing.T) {
		car := map[string]any{
			"brand": "Mazda", "model": "MX-5", "year": 2024, "type": "Convertible",
			"transmission": "Manual", "fuel": "Gasoline", "seats": 2, "price": 70,
			"location": "Seattle", "rating": 4.5, "available": true,
		}
		rec := env.do(t, http.MethodPost, "/api/v1/admin/cars", car, as)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		id := gjson.Get(rec.Body.String(), "data.id").String()

		car["price"] = 75
		rec = env.do(t, http.MethodPut, "/api/v1/admin/cars/"+id, car, as)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 75.0, gjson.Get(rec.Body.String(), "data.price").Float())

		car["transmission"] = "Telepathic"
		assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPut, "/api/v1/admin/cars/"+id, car, as).Code)

		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/admin/cars/"+id, nil, as).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/cars/"+id, nil).Code)
	})

	t.Run("export", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/admin/export", nil, as)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Bookings")
		require.NoError(t, err)
		assert.Len(t, rows, 6)
	})
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 2}})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodGet, "/healthz", nil).Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, config.APIConfig{})
	rec := env.do(t, http.MethodGet, "/api/v1/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
