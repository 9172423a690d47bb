package repository

import (
	"context"
	"sync/atomic"
	"time"

	"carrental/internal/domain"
	"carrental/internal/models"

	"github.com/rs/zerolog"
)

const failoverRecheck = time.Minute

// FailoverDraftRepository routes draft calls to the primary (redis) backend
// and switches to the in-memory fallback when the primary errors out.
type FailoverDraftRepository struct {
	primary   domain.DraftRepository
	fallback  domain.DraftRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverDraftRepository(primary, fallback domain.DraftRepository, logger *zerolog.Logger) *FailoverDraftRepository {
	return &FailoverDraftRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverDraftRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary draft repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

// shouldRecheck reports whether the primary is down long enough to be retried.
func (r *FailoverDraftRepository) shouldRecheck() bool {
	return r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > failoverRecheck
}

func (r *FailoverDraftRepository) GetDraft(ctx context.Context, id string) (*models.WizardDraft, error) {
	if !r.isDown.Load() {
		draft, err := r.primary.GetDraft(ctx, id)
		if err == nil {
			return draft, nil
		}
		r.markDown(err)
	}

	if r.shouldRecheck() {
		draft, err := r.primary.GetDraft(ctx, id)
		if err == nil {
			r.isDown.Store(false)
			r.logger.Info().Msg("Primary draft repository recovered")
			return draft, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetDraft(ctx, id)
}

func (r *FailoverDraftRepository) SetDraft(ctx context.Context, draft *models.WizardDraft) error {
	if !r.isDown.Load() {
		err := r.primary.SetDraft(ctx, draft)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetDraft(ctx, draft)
}

func (r *FailoverDraftRepository) ClearDraft(ctx context.Context, id string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearDraft(ctx, id)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ClearDraft(ctx, id)
}

func (r *FailoverDraftRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
