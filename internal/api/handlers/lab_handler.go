package handlers

import (
	"context"
	"net/http"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// LabDirectory defines the lab discovery operations
type LabDirectory interface {
	FindLabs(ctx context.Context, filter services.LabSearchFilter) ([]entities.LabResult, error)
	GetLab(ctx context.Context, id string) (*entities.Lab, error)
}

// LabHandler handles lab discovery requests
type LabHandler struct {
	directory LabDirectory
}

// NewLabHandler creates a new lab handler
func NewLabHandler(directory LabDirectory) *LabHandler {
	return &LabHandler{directory: directory}
}

// FindLabs handles GET /api/labs
func (h *LabHandler) FindLabs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := services.LabSearchFilter{
		City:    query.Get("city"),
		Pincode: query.Get("pincode"),
		TestID:  query.Get("testId"),
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

	labs, err := h.directory.FindLabs(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, labs)
}

// GetLab handles GET /api/labs/{id}
func (h *LabHandler) GetLab(w http.ResponseWriter, r *http.Request) {
	lab, err := h.directory.GetLab(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, lab)
}
