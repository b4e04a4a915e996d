package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

// LocationCache remembers the detected position of each client session so
// the client is not asked for it on every search. When a shared cache is
// configured it is the source of truth and the local expiring LRU only
// answers while the shared cache is unreachable.
type LocationCache struct {
	local    *expirable.LRU[string, entities.SessionLocation]
	shared   providers.CacheProvider
	geocoder providers.GeolocationProvider
	ttl      time.Duration
}

// NewLocationCache creates a session location cache. shared and geocoder
// may be nil.
func NewLocationCache(shared providers.CacheProvider, geocoder providers.GeolocationProvider, size int, ttl time.Duration) *LocationCache {
	if size <= 0 {
		size = 10000
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &LocationCache{
		local:    expirable.NewLRU[string, entities.SessionLocation](size, nil, ttl),
		shared:   shared,
		geocoder: geocoder,
		ttl:      ttl,
	}
}

func locationKey(sessionID string) string {
	return "session:location:v1:" + sessionID
}

// Get returns the cached location of a session
func (c *LocationCache) Get(ctx context.Context, sessionID string) (*entities.SessionLocation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.NewMissingFieldsError("session id is required", "session_id")
	}

	if c.shared != nil {
		raw, err := c.shared.Get(ctx, locationKey(sessionID))
		switch {
		case err == nil:
			var loc entities.SessionLocation
			if err := json.Unmarshal(raw, &loc); err == nil {
				c.local.Add(sessionID, loc)
				return &loc, nil
			}
			log.Ctx(ctx).Warn().Str("session_id", sessionID).Msg("discarding undecodable session location")
		case errors.Is(err, providers.ErrCacheMiss):
			// Another instance may have invalidated the session
			c.local.Remove(sessionID)
			return nil, apperrors.NewNotFoundError("no location cached for session")
		default:
			log.Ctx(ctx).Warn().Err(err).Msg("session location lookup failed, using local copy")
		}
	}

	if loc, ok := c.local.Get(sessionID); ok {
		return &loc, nil
	}
	return nil, apperrors.NewNotFoundError("no location cached for session")
}

// Put stores the location of a session. A missing city or pincode is
// filled from the geocoder when one is configured.
func (c *LocationCache) Put(ctx context.Context, sessionID string, loc entities.SessionLocation) (*entities.SessionLocation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.NewMissingFieldsError("session id is required", "session_id")
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return nil, apperrors.NewValidationError("coordinates out of range")
	}

	c.resolveAddress(ctx, &loc)

	c.local.Add(sessionID, loc)
	if c.shared == nil {
		return &loc, nil
	}
	payload, err := json.Marshal(loc)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode location", err)
	}
	if err := c.shared.Set(ctx, locationKey(sessionID), payload, int(c.ttl.Seconds())); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to share session location")
	}
	return &loc, nil
}

func (c *LocationCache) resolveAddress(ctx context.Context, loc *entities.SessionLocation) {
	if c.geocoder == nil || (loc.City != "" && loc.Pincode != "") {
		return
	}

	addr, err := c.geocoder.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Float64("latitude", loc.Latitude).
			Float64("longitude", loc.Longitude).
			Msg("reverse geocoding failed, storing coordinates only")
		return
	}
	if loc.City == "" {
		loc.City = addr.City
	}
	if loc.Pincode == "" {
		loc.Pincode = addr.ZipCode
	}
}

// Invalidate forgets the location of a session
func (c *LocationCache) Invalidate(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return apperrors.NewMissingFieldsError("session id is required", "session_id")
	}
	c.local.Remove(sessionID)
	if c.shared != nil {
		if err := c.shared.Delete(ctx, locationKey(sessionID)); err != nil {
			return apperrors.NewInternalError("failed to invalidate session location", err)
		}
	}
	return nil
}
