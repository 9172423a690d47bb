package repository

import (
	"context"
	"sync"
	"time"

	"carrental/internal/models"
)

type draftEntry struct {
	draft     *models.WizardDraft
	expiresAt time.Time
}

// MemoryDraftRepository keeps wizard drafts in process memory.
type MemoryDraftRepository struct {
	drafts sync.Map
	ttl    time.Duration

	rlMu       sync.Mutex
	rateLimits map[string]*rateLimitEntry
}

func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{
		ttl:        ttl,
		rateLimits: make(map[string]*rateLimitEntry),
	}
}

func (r *MemoryDraftRepository) GetDraft(ctx context.Context, id string) (*models.WizardDraft, error) {
	val, ok := r.drafts.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(*draftEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.drafts.Delete(id)
		return nil, nil
	}
	cp := *entry.draft
	cp.AdditionalServices = append([]models.ServiceID(nil), entry.draft.AdditionalServices...)
	return &cp, nil
}

func (r *MemoryDraftRepository) SetDraft(ctx context.Context, draft *models.WizardDraft) error {
	cp := *draft
	cp.AdditionalServices = append([]models.ServiceID(nil), draft.AdditionalServices...)
	r.drafts.Store(draft.ID, &draftEntry{draft: &cp, expiresAt: time.Now().Add(r.ttl)})
	return nil
}

func (r *MemoryDraftRepository) ClearDraft(ctx context.Context, id string) error {
	r.drafts.Delete(id)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryDraftRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.rlMu.Lock()
	defer r.rlMu.Unlock()

	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		r.rateLimits[key] = entry
	} else {
		entry.count++
	}
	return entry.count <= limit, nil
}

// Sweep drops expired drafts and rate limit windows and returns how many
// drafts were removed.
func (r *MemoryDraftRepository) Sweep(now time.Time) int {
	removed := 0
	if r.ttl > 0 {
		r.drafts.Range(func(key, val any) bool {
			if now.After(val.(*draftEntry).expiresAt) {
				r.drafts.Delete(key)
				removed++
			}
			return true
		})
	}
	r.rlMu.Lock()
	for key, entry := range r.rateLimits {
		if now.After(entry.expiresAt) {
			delete(r.rateLimits, key)
		}
	}
	r.rlMu.Unlock()
	return removed
}
