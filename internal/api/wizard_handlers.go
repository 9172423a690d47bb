package api

import (
	"errors"
	"net/http"
	"strings"

	"carrental/internal/auth"
	"carrental/internal/domain"
	"carrental/internal/models"
	"carrental/internal/wizard"

	"github.com/gin-gonic/gin"
)

type startWizardRequest struct {
	CarID int64 `json:"car_id" validate:"gt=0"`
}

func (s *HTTPServer) startWizard(c *gin.Context) {
	var req startWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	sess := session(c)
	prefill, err := s.prefill(c, sess)
	if err != nil {
		s.fail(c, err)
		return
	}
	snap, err := s.svc.Wizard.Start(ctx, req.CarID, sess.CustomerID(), prefill)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// prefill copies the logged-in customer's contact details into a new draft.
func (s *HTTPServer) prefill(c *gin.Context, sess *auth.Session) (models.DraftCustomer, error) {
	var out models.DraftCustomer
	if sess.CustomerID() == 0 {
		return out, nil
	}
	cust, err := s.svc.Customers.GetCustomer(c.Request.Context(), sess.CustomerID())
	if errors.Is(err, domain.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	first, last, _ := strings.Cut(strings.TrimSpace(cust.Name), " ")
	out.FirstName = first
	out.LastName = strings.TrimSpace(last)
	out.Email = cust.Email
	out.Phone = cust.Phone
	return out, nil
}

func (s *HTTPServer) getWizard(c *gin.Context) {
	snap, err := s.svc.Wizard.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *HTTPServer) submitDates(c *gin.Context) {
	var ev wizard.SubmitDates
	if err := c.ShouldBindJSON(&ev); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	s.fire(c, ev)
}

func (s *HTTPServer) toggleService(c *gin.Context) {
	var ev wizard.ToggleService
	if err := c.ShouldBindJSON(&ev); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	s.fire(c, ev)
}

func (s *HTTPServer) submitCustomer(c *gin.Context) {
	var customer models.DraftCustomer
	if err := c.ShouldBindJSON(&customer); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	s.fire(c, wizard.SubmitCustomer{Customer: customer})
}

func (s *HTTPServer) submitPayment(c *gin.Context) {
	var ev wizard.SubmitPayment
	if err := c.ShouldBindJSON(&ev); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	s.fire(c, ev)
}

func (s *HTTPServer) wizardBack(c *gin.Context) {
	s.fire(c, wizard.Back{})
}

func (s *HTTPServer) fire(c *gin.Context, ev wizard.Event) {
	snap, err := s.svc.Wizard.Fire(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *HTTPServer) abandonWizard(c *gin.Context) {
	if err := s.svc.Wizard.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) myBookings(c *gin.Context) {
	sess := session(c)
	bookings := []*models.Booking{}
	if id := sess.CustomerID(); id != 0 {
		var err error
		bookings, err = s.svc.Bookings.GetBookingsByCustomerID(c.Request.Context(), id)
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
}
