package handlers

import (
	"context"
	"net/http"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/middleware"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// LabAdministration defines the admin operations on labs
type LabAdministration interface {
	ListLabs(ctx context.Context, principal *entities.Principal, filter services.AdminLabFilter) ([]*entities.Lab, error)
	GetLab(ctx context.Context, principal *entities.Principal, id string) (*entities.Lab, error)
	UpdateLab(ctx context.Context, principal *entities.Principal, id string, update services.AdminLabUpdate) (*entities.Lab, error)
}

// AdminHandler handles /api/admin requests
type AdminHandler struct {
	admin LabAdministration
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin LabAdministration) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListLabs handles GET /api/admin/labs
func (h *AdminHandler) ListLabs(w http.ResponseWriter, r *http.Request) {
	var (
		filter services.AdminLabFilter
		err    error
	)
	if filter.IsVerified, err = parseBoolParam(r, "verified"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.IsActive, err = parseBoolParam(r, "active"); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	labs, err := h.admin.ListLabs(r.Context(), middleware.PrincipalFrom(r.Context()), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, labs)
}

// GetLab handles GET /api/admin/labs/{id}
func (h *AdminHandler) GetLab(w http.ResponseWriter, r *http.Request) {
	lab, err := h.admin.GetLab(r.Context(), middleware.PrincipalFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lab)
}

// UpdateLab handles PATCH /api/admin/labs/{id}
func (h *AdminHandler) UpdateLab(w http.ResponseWriter, r *http.Request) {
	var update services.AdminLabUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	lab, err := h.admin.UpdateLab(r.Context(), middleware.PrincipalFrom(r.Context()), r.PathValue("id"), update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lab)
}
