package handlers

import (
	"context"
	"net/http"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/middleware"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// BookingManager defines the booking lifecycle operations
type BookingManager interface {
	CreateBooking(ctx context.Context, principal *entities.Principal, req services.CreateBookingRequest) (*entities.Booking, error)
	ListBookings(ctx context.Context, principal *entities.Principal, filter services.BookingListFilter) ([]*entities.Booking, error)
	GetBooking(ctx context.Context, principal *entities.Principal, id string) (*entities.Booking, error)
	UpdateStatus(ctx context.Context, principal *entities.Principal, id, status string) (*entities.Booking, error)
}

// BookingHandler handles booking requests
type BookingHandler struct {
	bookings BookingManager
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings BookingManager) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, booking)
}

// ListBookings handles GET /api/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	filter := services.BookingListFilter{
		LabID:  r.URL.Query().Get("labId"),
		Status: r.URL.Query().Get("status"),
	}

	var err error
	if filter.Limit, err = parseIntParam(r, "limit", 0); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.Offset, err = parseIntParam(r, "offset", 0); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	bookings, err := h.bookings.ListBookings(r.Context(), middleware.PrincipalFrom(r.Context()), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, bookings)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.GetBooking(r.Context(), middleware.PrincipalFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, booking)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/bookings/{id}
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	booking, err := h.bookings.UpdateStatus(r.Context(), middleware.PrincipalFrom(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, booking)
}
