package services

import (
	"context"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// SlotPolicy decides whether a new booking may be placed. It is consulted
// after validation and before the booking is persisted; a non-nil error
// rejects the booking.
type SlotPolicy interface {
	Allow(ctx context.Context, booking *entities.Booking) error
}

// UnlimitedSlots accepts every booking
type UnlimitedSlots struct{}

// Allow implements SlotPolicy
func (UnlimitedSlots) Allow(context.Context, *entities.Booking) error {
	return nil
}
