package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	facilityDomain "github.com/residenza/service-facility/internal/domain/facility"
	"github.com/residenza/service-facility/internal/domain/slot"
	"github.com/residenza/service-facility/internal/platform/cache"
)

const facilityCachePrefix = "facility:active:"

// facilitySnapshot is the cached JSON form of an active facility.
type facilitySnapshot struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Location         string         `json:"location"`
	Capacity         int            `json:"capacity"`
	RequiresApproval bool           `json:"requires_approval"`
	OpensAt          slot.TimeOfDay `json:"opens_at"`
	ClosesAt         slot.TimeOfDay `json:"closes_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// CachedFacilityRepository is a read-through cache in front of a facility registry.
// Cache failures degrade to the underlying registry. A non-positive ttl disables
// caching, for deployments where nothing invalidates entries.
type CachedFacilityRepository struct {
	next   facilityDomain.Registry
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFacilityRepository wraps next with store.
func NewCachedFacilityRepository(next facilityDomain.Registry, store cache.Store, ttl time.Duration, logger *zap.Logger) *CachedFacilityRepository {
	return &CachedFacilityRepository{next: next, store: store, ttl: ttl, logger: logger}
}

// GetActive returns the cached facility or loads and caches it.
func (r *CachedFacilityRepository) GetActive(ctx context.Context, id uuid.UUID) (*facilityDomain.Facility, error) {
	if r.ttl <= 0 {
		return r.next.GetActive(ctx, id)
	}
	key := facilityCachePrefix + id.String()

	raw, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		var snap facilitySnapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return snap.toDomain(), nil
		}
		r.logger.Warn("dropping undecodable facility cache entry", zap.String("key", key))
	case !errors.Is(err, cache.ErrMiss):
		r.logger.Warn("facility cache read failed", zap.String("key", key), zap.Error(err))
	}

	f, err := r.next.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(snapshotOf(f)); err == nil {
		if err := r.store.Set(ctx, key, payload, r.ttl); err != nil {
			r.logger.Warn("facility cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return f, nil
}

// ListActive is not cached.
func (r *CachedFacilityRepository) ListActive(ctx context.Context) ([]*facilityDomain.Facility, error) {
	return r.next.ListActive(ctx)
}

// Invalidate drops the cached entry for id.
func (r *CachedFacilityRepository) Invalidate(ctx context.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, facilityCachePrefix+id.String())
}

func snapshotOf(f *facilityDomain.Facility) facilitySnapshot {
	hours := f.OperatingHours()
	return facilitySnapshot{
		ID:               f.ID(),
		Name:             f.Name(),
		Description:      f.Description(),
		Location:         f.Location(),
		Capacity:         f.Capacity(),
		RequiresApproval: f.RequiresApproval(),
		OpensAt:          hours.Start,
		ClosesAt:         hours.End,
		CreatedAt:        f.CreatedAt(),
		UpdatedAt:        f.UpdatedAt(),
	}
}

func (s facilitySnapshot) toDomain() *facilityDomain.Facility {
	return facilityDomain.ReconstructFacility(
		s.ID, s.Name, s.Description, s.Location, s.Capacity, s.RequiresApproval,
		s.OpensAt, s.ClosesAt, true, s.CreatedAt, s.UpdatedAt,
	)
}
