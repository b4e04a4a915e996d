package handlers

import (
	"context"
	"net/http"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/middleware"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// SessionLocationStore caches detected positions per client session
type SessionLocationStore interface {
	SessionLocations
	Put(ctx context.Context, sessionID string, loc entities.SessionLocation) (*entities.SessionLocation, error)
	Invalidate(ctx context.Context, sessionID string) error
}

// SessionHandler handles /api/session/location
type SessionHandler struct {
	locations SessionLocationStore
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(locations SessionLocationStore) *SessionHandler {
	return &SessionHandler{locations: locations}
}

// PutLocation handles PUT /api/session/location. The stored location is
// returned with any city or pincode resolved from the coordinates.
func (h *SessionHandler) PutLocation(w http.ResponseWriter, r *http.Request) {
	var loc entities.SessionLocation
	if err := decodeJSON(r, &loc); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	stored, err := h.locations.Put(r.Context(), middleware.SessionFrom(r.Context()), loc)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stored)
}

// GetLocation handles GET /api/session/location
func (h *SessionHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.locations.Get(r.Context(), middleware.SessionFrom(r.Context()))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, loc)
}

// DeleteLocation handles DELETE /api/session/location
func (h *SessionHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.locations.Invalidate(r.Context(), middleware.SessionFrom(r.Context())); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
