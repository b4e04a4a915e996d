package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/middleware"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

// TestCatalog defines the catalog operations the handler serves
type TestCatalog interface {
	SearchTests(ctx context.Context, filter services.TestSearchFilter) ([]entities.TestSummary, error)
	GetTest(ctx context.Context, id string) (*entities.TestSummary, error)
	Suggest(ctx context.Context, query string, limit int) ([]entities.TestSuggestion, error)
}

// SessionLocations reads the position cached for a client session
type SessionLocations interface {
	Get(ctx context.Context, sessionID string) (*entities.SessionLocation, error)
}

// TestHandler handles test catalog requests
type TestHandler struct {
	catalog   TestCatalog
	locations SessionLocations
}

// NewTestHandler creates a new test handler. locations may be nil.
func NewTestHandler(catalog TestCatalog, locations SessionLocations) *TestHandler {
	return &TestHandler{catalog: catalog, locations: locations}
}

// SearchTests handles GET /api/tests
func (h *TestHandler) SearchTests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := services.TestSearchFilter{
		Category:   query.Get("category"),
		SearchText: query.Get("search"),
	}

	var err error
	if filter.Latitude, err = parseFloatParam(r, "latitude"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.Longitude, err = parseFloatParam(r, "longitude"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	radius, err := parseFloatParam(r, "radius")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if radius != nil {
		filter.RadiusKm = *radius
	}

	if filter.Latitude == nil && filter.Longitude == nil && query.Get("useSessionLocation") == "true" {
		h.applySessionLocation(r, &filter)
	}

	tests, err := h.catalog.SearchTests(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, tests)
}

func (h *TestHandler) applySessionLocation(r *http.Request, filter *services.TestSearchFilter) {
	sessionID := middleware.SessionFrom(r.Context())
	if h.locations == nil || sessionID == "" {
		return
	}

	loc, err := h.locations.Get(r.Context(), sessionID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			log.Ctx(r.Context()).Warn().Err(err).Msg("failed to read session location")
		}
		return
	}
	filter.Latitude = &loc.Latitude
	filter.Longitude = &loc.Longitude
}

// SuggestTests handles GET /api/tests/suggest
func (h *TestHandler) SuggestTests(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	suggestions, err := h.catalog.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// GetTest handles GET /api/tests/{id}
func (h *TestHandler) GetTest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "test ID is required")
		return
	}

	test, err := h.catalog.GetTest(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, test)
}
