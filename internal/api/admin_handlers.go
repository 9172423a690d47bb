package api

import (
	"bytes"
	"net/http"
	"strings"

	"carrental/internal/export"
	"carrental/internal/models"
	"carrental/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type statusRequest struct {
	Status string `json:"status"`
}

func (s *HTTPServer) adminBookings(c *gin.Context) {
	bookings, err := s.svc.Bookings.GetAllBookings(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filtered := make([]*models.Booking, 0, len(bookings))
		for _, b := range bookings {
			if b.Status == status {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
}

func (s *HTTPServer) adminBookingStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	booking, err := s.svc.Bookings.UpdateBookingStatus(c.Request.Context(), id, req.Status, session(c).User.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": booking})
}

func (s *HTTPServer) adminCustomers(c *gin.Context) {
	customers, err := s.svc.Customers.ListCustomers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers, "count": len(customers)})
}

func (s *HTTPServer) adminCustomerStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	customer, err := s.svc.Customers.UpdateCustomerStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *HTTPServer) adminCreateCar(c *gin.Context) {
	var in service.CarInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	car, err := s.svc.Cars.CreateCar(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": car})
}

func (s *HTTPServer) adminUpdateCar(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var in service.CarInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	car, err := s.svc.Cars.UpdateCar(c.Request.Context(), id, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": car})
}

func (s *HTTPServer) adminDeleteCar(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.svc.Cars.DeleteCar(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) adminStats(c *gin.Context) {
	stats, err := s.svc.Bookings.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// adminExport streams every booking as an xlsx workbook.
func (s *HTTPServer) adminExport(c *gin.Context) {
	bookings, err := s.svc.Bookings.GetAllBookings(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, bookings); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(s.now())+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
