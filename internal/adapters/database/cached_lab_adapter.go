package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
)

// CachedLabAdapter wraps a LabRepository with read-through caching of
// single labs. Filtered lists are not cached because their location
// filters rarely repeat.
type CachedLabAdapter struct {
	adapter repositories.LabRepository
	cache   providers.CacheProvider
	ttl     int
	metrics *observability.Metrics
}

// NewCachedLabAdapter creates a new cached lab adapter
func NewCachedLabAdapter(adapter repositories.LabRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedLabAdapter {
	seconds := int(ttl / time.Second)
	if seconds <= 0 {
		seconds = defaultLabTTL
	}
	return &CachedLabAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     seconds,
		metrics: metrics,
	}
}

// 5 minutes
const defaultLabTTL = 300

func labCacheKey(id string) string {
	return fmt.Sprintf("lab:v1:%s", id)
}

// GetByID retrieves a lab by ID with caching
func (a *CachedLabAdapter) GetByID(ctx context.Context, id string) (*entities.Lab, error) {
	cacheKey := labCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var lab entities.Lab
		if err := json.Unmarshal(cached, &lab); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "lab")
			return &lab, nil
		}
		log.Ctx(ctx).Warn().Str("lab_id", id).Msg("failed to unmarshal cached lab")
	}
	observability.RecordCacheMiss(ctx, a.metrics, "lab")

	lab, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.fill(ctx, []*entities.Lab{lab})
	return lab, nil
}

// GetByIDs retrieves multiple labs, fetching only cache misses
func (a *CachedLabAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Lab, error) {
	if len(ids) == 0 {
		return []*entities.Lab{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = labCacheKey(id)
	}
	cached, _ := a.cache.GetMulti(ctx, keys)

	labs := make([]*entities.Lab, 0, len(ids))
	var missing []string
	for i, id := range ids {
		if data, ok := cached[keys[i]]; ok {
			var lab entities.Lab
			if err := json.Unmarshal(data, &lab); err == nil {
				labs = append(labs, &lab)
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		observability.RecordCacheHit(ctx, a.metrics, "lab")
		return labs, nil
	}
	observability.RecordCacheMiss(ctx, a.metrics, "lab")

	fetched, err := a.adapter.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	a.fill(ctx, fetched)

	return append(labs, fetched...), nil
}

// List is not cached
func (a *CachedLabAdapter) List(ctx context.Context, filter repositories.LabFilter) ([]*entities.Lab, error) {
	return a.adapter.List(ctx, filter)
}

// Create creates a lab
func (a *CachedLabAdapter) Create(ctx context.Context, lab *entities.Lab) error {
	return a.adapter.Create(ctx, lab)
}

// Update updates a lab and writes the new version through to the cache
// before returning, so a deactivated lab is not served from cache.
func (a *CachedLabAdapter) Update(ctx context.Context, lab *entities.Lab) error {
	if err := a.adapter.Update(ctx, lab); err != nil {
		return err
	}

	data, err := json.Marshal(lab)
	if err == nil {
		err = a.cache.Set(ctx, labCacheKey(lab.ID), data, a.ttl)
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("lab_id", lab.ID).Msg("failed to refresh lab cache, invalidating")
		if err := a.cache.Delete(ctx, labCacheKey(lab.ID)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("lab_id", lab.ID).Msg("failed to invalidate lab cache")
		}
	}
	return nil
}

// fill caches labs read from the database. A cached entry with a newer
// updated_at wins, so a read that raced an Update cannot put the old lab
// back.
func (a *CachedLabAdapter) fill(ctx context.Context, labs []*entities.Lab) {
	if len(labs) == 0 {
		return
	}

	keys := make([]string, len(labs))
	for i, lab := range labs {
		keys[i] = labCacheKey(lab.ID)
	}
	current, _ := a.cache.GetMulti(ctx, keys)

	items := make(map[string][]byte, len(labs))
	for i, lab := range labs {
		if raw, ok := current[keys[i]]; ok {
			var cached entities.Lab
			if err := json.Unmarshal(raw, &cached); err == nil && cached.UpdatedAt.After(lab.UpdatedAt) {
				continue
			}
		}
		if data, err := json.Marshal(lab); err == nil {
			items[keys[i]] = data
		}
	}
	if len(items) == 0 {
		return
	}

	if err := a.cache.SetMulti(ctx, items, a.ttl); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int("count", len(items)).Msg("failed to cache labs")
	}
}
