package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"carrental/internal/catalog"
	"carrental/internal/config"
	"carrental/internal/domain"
	"carrental/internal/models"
	"carrental/internal/validation"

	"github.com/rs/zerolog"
)

// CarInput is the admin form for creating or editing a car.
type CarInput struct {
	Brand        string   `json:"brand" validate:"required"`
	Model        string   `json:"model" validate:"required"`
	Year         int      `json:"year" validate:"gte=1990"`
	Type         string   `json:"type" validate:"required"`
	Transmission string   `json:"transmission" validate:"required,oneof=Automatic Manual"`
	Fuel         string   `json:"fuel" validate:"required,oneof=Gasoline Hybrid Electric"`
	Seats        int      `json:"seats" validate:"gte=1"`
	Price        float64  `json:"price" validate:"gte=0"`
	Location     string   `json:"location" validate:"required"`
	Rating       float64  `json:"rating" validate:"gte=0,lte=5"`
	Available    bool     `json:"available"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
}

func (in CarInput) apply(car *models.Car) {
	car.Brand = in.Brand
	car.Model = in.Model
	car.Year = in.Year
	car.Type = in.Type
	car.Transmission = in.Transmission
	car.Fuel = in.Fuel
	car.Seats = in.Seats
	car.Price = in.Price
	car.Location = in.Location
	car.Rating = in.Rating
	car.Available = in.Available
	car.Description = in.Description
	car.Features = append([]string(nil), in.Features...)
}

type CarService struct {
	repo      domain.CarRepository
	cfg       config.CatalogConfig
	validator *validation.Validator
	logger    *zerolog.Logger
}

var _ domain.CarService = (*CarService)(nil)

func NewCarService(repo domain.CarRepository, cfg config.CatalogConfig, logger *zerolog.Logger) *CarService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = models.DefaultPageSize
	}
	if cfg.FeaturedLimit <= 0 {
		cfg.FeaturedLimit = models.FeaturedLimit
	}
	if cfg.FeaturedMinRating <= 0 {
		cfg.FeaturedMinRating = models.FeaturedMinRating
	}
	if cfg.RelatedLimit <= 0 {
		cfg.RelatedLimit = models.RelatedLimit
	}
	return &CarService{
		repo:      repo,
		cfg:       cfg,
		validator: validation.New(),
		logger:    logger,
	}
}

// GetCars returns the cars matching spec, sorted by spec.Sort.
func (s *CarService) GetCars(ctx context.Context, spec catalog.FilterSpec) ([]*models.Car, error) {
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Apply(cars, spec), nil
}

// ListPage filters, sorts and returns one page of the catalog.
func (s *CarService) ListPage(ctx context.Context, spec catalog.FilterSpec, page int) (catalog.Page, error) {
	cars, err := s.GetCars(ctx, spec)
	if err != nil {
		return catalog.Page{}, err
	}
	return catalog.Paginate(cars, page, s.cfg.PageSize), nil
}

func (s *CarService) GetCarByID(ctx context.Context, id int64) (*models.Car, error) {
	return s.repo.GetCar(ctx, id)
}

func (s *CarService) GetCarBySlug(ctx context.Context, slug string) (*models.Car, error) {
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cars {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, domain.NotFound("car", slug)
}

// Lookup resolves a numeric id or a slug.
func (s *CarService) Lookup(ctx context.Context, idOrSlug string) (*models.Car, error) {
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		return s.GetCarByID(ctx, id)
	}
	return s.GetCarBySlug(ctx, idOrSlug)
}

// GetFeaturedCars returns the first highly rated cars in catalog order.
func (s *CarService) GetFeaturedCars(ctx context.Context) ([]*models.Car, error) {
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Car, 0, s.cfg.FeaturedLimit)
	for _, c := range cars {
		if c.Rating >= s.cfg.FeaturedMinRating {
			out = append(out, c)
			if len(out) == s.cfg.FeaturedLimit {
				break
			}
		}
	}
	return out, nil
}

// GetRelatedCars returns other cars of the same type.
func (s *CarService) GetRelatedCars(ctx context.Context, id int64) ([]*models.Car, error) {
	car, err := s.repo.GetCar(ctx, id)
	if err != nil {
		return nil, err
	}
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Car, 0, s.cfg.RelatedLimit)
	for _, c := range cars {
		if c.ID == car.ID || c.Type != car.Type {
			continue
		}
		out = append(out, c)
		if len(out) == s.cfg.RelatedLimit {
			break
		}
	}
	return out, nil
}

func (s *CarService) Options(ctx context.Context) (catalog.Options, error) {
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return catalog.Options{}, err
	}
	return catalog.BuildOptions(cars), nil
}

func (s *CarService) CreateCar(ctx context.Context, in CarInput) (*models.Car, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	car := &models.Car{}
	in.apply(car)

	slug, err := s.uniqueSlug(ctx, car, 0)
	if err != nil {
		return nil, err
	}
	car.Slug = slug

	if err := s.repo.CreateCar(ctx, car); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("car_id", car.ID).Str("slug", car.Slug).Msg("Car created")
	return car, nil
}

func (s *CarService) UpdateCar(ctx context.Context, id int64, in CarInput) (*models.Car, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	car, err := s.repo.GetCar(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(car)

	slug, err := s.uniqueSlug(ctx, car, car.ID)
	if err != nil {
		return nil, err
	}
	car.Slug = slug

	if err := s.repo.UpdateCar(ctx, car); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("car_id", car.ID).Msg("Car updated")
	return car, nil
}

func (s *CarService) DeleteCar(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCar(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("car_id", id).Msg("Car deleted")
	return nil
}

// uniqueSlug derives the slug of car and suffixes it when another car owns it.
func (s *CarService) uniqueSlug(ctx context.Context, car *models.Car, selfID int64) (string, error) {
	base := catalog.Slug(car)
	if base == "" {
		return "", errors.New("car slug is empty")
	}
	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(cars))
	for _, c := range cars {
		if c.ID != selfID {
			taken[c.Slug] = true
		}
	}
	slug := base
	for n := 2; taken[slug]; n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	return slug, nil
}
