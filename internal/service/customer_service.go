package service

import (
	"context"
	"sort"

	"carrental/internal/domain"
	"carrental/internal/models"

	"github.com/rs/zerolog"
)

type CustomerService struct {
	repo   domain.CustomerRepository
	logger *zerolog.Logger
}

func NewCustomerService(repo domain.CustomerRepository, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, logger: logger}
}

// ListCustomers returns customers ordered by join date, newest first.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	list, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].JoinDate.After(list[j].JoinDate)
	})
	return list, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *CustomerService) UpdateCustomerStatus(ctx context.Context, id int64, status string) (*models.Customer, error) {
	if status != models.CustomerActive && status != models.CustomerInactive {
		verr := domain.NewValidationError()
		verr.Add("status", "must be one of active inactive")
		return nil, verr
	}
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = status
	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("customer_id", id).Str("status", status).Msg("Customer status changed")
	return c, nil
}
