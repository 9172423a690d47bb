package api

import (
	"net/http"
	"strconv"
	"time"

	"carrental/internal/catalog"
	"carrental/internal/domain"
	"carrental/internal/models"
	"carrental/internal/pricing"

	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) listCars(c *gin.Context) {
	var spec catalog.FilterSpec
	if err := c.ShouldBindQuery(&spec); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.fail(c, badRequest(err))
			return
		}
		page = n
	}

	result, err := s.svc.Cars.ListPage(c.Request.Context(), spec, page)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *HTTPServer) featuredCars(c *gin.Context) {
	cars, err := s.svc.Cars.GetFeaturedCars(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cars, "count": len(cars)})
}

func (s *HTTPServer) carOptions(c *gin.Context) {
	opts, err := s.svc.Cars.Options(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (s *HTTPServer) getCar(c *gin.Context) {
	car, err := s.svc.Cars.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": car})
}

func (s *HTTPServer) relatedCars(c *gin.Context) {
	ctx := c.Request.Context()
	car, err := s.svc.Cars.Lookup(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	cars, err := s.svc.Cars.GetRelatedCars(ctx, car.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cars, "count": len(cars)})
}

func (s *HTTPServer) listServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": models.AdditionalServices, "count": len(models.AdditionalServices)})
}

type quoteRequest struct {
	CarID       int64              `json:"car_id" validate:"gt=0"`
	PickupDate  string             `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	DropoffDate string             `json:"dropoff_date" validate:"required,datetime=2006-01-02"`
	Services    []models.ServiceID `json:"additional_services"`
}

// quote prices a rental without opening a wizard.
func (s *HTTPServer) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.fail(c, err)
		return
	}
	for _, id := range req.Services {
		if _, ok := models.LookupService(id); !ok {
			verr := domain.NewValidationError()
			verr.Add("additional_services", "contains an unknown service")
			s.fail(c, verr)
			return
		}
	}

	pickup, _ := time.Parse(time.DateOnly, req.PickupDate)
	dropoff, _ := time.Parse(time.DateOnly, req.DropoffDate)
	if !dropoff.After(pickup) {
		s.fail(c, &domain.DateRangeError{Reason: "dropoff date must be after pickup date"})
		return
	}

	car, err := s.svc.Cars.GetCarByID(c.Request.Context(), req.CarID)
	if err != nil {
		s.fail(c, err)
		return
	}
	q, err := pricing.Compute(car.Price, pricing.TotalDays(pickup, dropoff), req.Services)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"car_id": car.ID, "quote": q})
}
