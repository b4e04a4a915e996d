package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
)

const (
	responseCachePrefix = "http:cache:"
	sessionCachePrefix  = responseCachePrefix + "session:"
)

// CacheConfig holds cache configuration for specific routes
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// CacheMiddleware caches the responses of public discovery routes and
// purges them when the catalog or a lab is changed through the portals.
// Responses of a session are dropped when that session's location changes.
type CacheMiddleware struct {
	cache                providers.CacheProvider
	metrics              *observability.Metrics
	routeConfigs         map[string]CacheConfig
	purgePrefixes        []string
	sessionPurgePrefixes []string
}

// NewCacheMiddleware creates a new cache middleware
func NewCacheMiddleware(cache providers.CacheProvider, metrics *observability.Metrics) *CacheMiddleware {
	return &CacheMiddleware{
		cache:   cache,
		metrics: metrics,
		routeConfigs: map[string]CacheConfig{
			"/api/tests":         {TTLSeconds: 60, Enabled: true},
			"/api/tests/suggest": {TTLSeconds: 60, Enabled: true},
			"/api/labs":          {TTLSeconds: 60, Enabled: true},
		},
		purgePrefixes:        []string{"/api/lab/", "/api/labs/", "/api/admin/"},
		sessionPurgePrefixes: []string{"/api/session/"},
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method != http.MethodGet {
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.statusCode >= 300 {
				return
			}
			switch {
			case hasAnyPrefix(r.URL.Path, m.purgePrefixes):
				m.Purge(r)
			case hasAnyPrefix(r.URL.Path, m.sessionPurgePrefixes):
				m.PurgeSession(r)
			}
			return
		}

		config, ok := m.routeConfigs[r.URL.Path]
		if !ok || !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		cacheKey := m.generateCacheKey(r)

		if cached, err := m.cache.Get(r.Context(), cacheKey); err == nil {
			observability.RecordCacheHit(r.Context(), m.metrics, "http")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		observability.RecordCacheMiss(r.Context(), m.metrics, "http")
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		// Only cache successful responses
		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(r.Context(), cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("failed to cache response")
			}
		}
	})
}

// Purge drops every cached response
func (m *CacheMiddleware) Purge(r *http.Request) {
	if err := m.cache.DeletePattern(r.Context(), responseCachePrefix+"*"); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("failed to purge response cache")
	}
}

// PurgeSession drops the cached responses of the request's session
func (m *CacheMiddleware) PurgeSession(r *http.Request) {
	session := sessionOf(r)
	if session == "" {
		return
	}
	if err := m.cache.DeletePattern(r.Context(), sessionKeyPrefix(session)+"*"); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("failed to purge session response cache")
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// generateCacheKey generates a cache key from the request. Requests that
// carry a session are keyed under that session's prefix because located
// test searches may read the session's cached position.
func (m *CacheMiddleware) generateCacheKey(r *http.Request) string {
	key := fmt.Sprintf("%s:%s", r.Method, r.URL.Path)
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.Query().Encode()
	}

	hash := sha256.Sum256([]byte(key))
	if session := sessionOf(r); session != "" {
		return sessionKeyPrefix(session) + hex.EncodeToString(hash[:])
	}
	return responseCachePrefix + hex.EncodeToString(hash[:])
}

func sessionKeyPrefix(session string) string {
	hash := sha256.Sum256([]byte(session))
	return sessionCachePrefix + hex.EncodeToString(hash[:16]) + ":"
}

func sessionOf(r *http.Request) string {
	if session := SessionFrom(r.Context()); session != "" {
		return session
	}
	return strings.TrimSpace(r.Header.Get(SessionIDHeader))
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
