package handlers

import (
	"context"
	"net/http"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/middleware"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// LabPortal defines the operations a lab account performs on its own data
type LabPortal interface {
	RegisterLab(ctx context.Context, principal *entities.Principal, req services.RegisterLabRequest) (*services.LabRegistration, error)
	ListTests(ctx context.Context, principal *entities.Principal) ([]*entities.Test, error)
	CreateTest(ctx context.Context, principal *entities.Principal, req services.CreateTestRequest) (*entities.Test, error)
	DeleteTest(ctx context.Context, principal *entities.Principal, testID string) error
	SetAvailability(ctx context.Context, principal *entities.Principal, testID string, req services.AvailabilityRequest) (*entities.LabTest, error)
	RemoveAvailability(ctx context.Context, principal *entities.Principal, testID string) error
	GetProfile(ctx context.Context, principal *entities.Principal) (*entities.Lab, error)
	UpdateProfile(ctx context.Context, principal *entities.Principal, req services.UpdateLabProfileRequest) (*entities.Lab, error)
}

// LabPortalHandler handles the lab portal under /api/lab
type LabPortalHandler struct {
	portal LabPortal
}

// NewLabPortalHandler creates a new lab portal handler
func NewLabPortalHandler(portal LabPortal) *LabPortalHandler {
	return &LabPortalHandler{portal: portal}
}

// RegisterLab handles POST /api/labs/register
func (h *LabPortalHandler) RegisterLab(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterLabRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	registration, err := h.portal.RegisterLab(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, registration)
}

// ListTests handles GET /api/lab/tests
func (h *LabPortalHandler) ListTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.portal.ListTests(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tests)
}

// CreateTest handles POST /api/lab/tests
func (h *LabPortalHandler) CreateTest(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	test, err := h.portal.CreateTest(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, test)
}

// DeleteTest handles DELETE /api/lab/tests/{id}
func (h *LabPortalHandler) DeleteTest(w http.ResponseWriter, r *http.Request) {
	if err := h.portal.DeleteTest(r.Context(), middleware.PrincipalFrom(r.Context()), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "test deleted"})
}

// SetAvailability handles PUT /api/lab/availability/{testId}
func (h *LabPortalHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req services.AvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	link, err := h.portal.SetAvailability(r.Context(), middleware.PrincipalFrom(r.Context()), r.PathValue("testId"), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, link)
}

// RemoveAvailability handles DELETE /api/lab/availability/{testId}
func (h *LabPortalHandler) RemoveAvailability(w http.ResponseWriter, r *http.Request) {
	if err := h.portal.RemoveAvailability(r.Context(), middleware.PrincipalFrom(r.Context()), r.PathValue("testId")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/lab/profile
func (h *LabPortalHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	lab, err := h.portal.GetProfile(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lab)
}

// UpdateProfile handles PATCH /api/lab/profile
func (h *LabPortalHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateLabProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	lab, err := h.portal.UpdateProfile(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lab)
}
