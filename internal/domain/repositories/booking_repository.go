package repositories

import (
	"context"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	// Create persists a booking and its items atomically
	Create(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking with its items
	GetByID(ctx context.Context, id string) (*entities.Booking, error)

	// UpdateStatus sets the status of a booking
	UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) error

	// List retrieves bookings with their items, newest first
	List(ctx context.Context, filter BookingFilter) ([]*entities.Booking, error)
}

// BookingFilter defines filters for listing bookings
type BookingFilter struct {
	UserID string
	LabID  string
	Status entities.BookingStatus
	Limit  int
	Offset int
}
