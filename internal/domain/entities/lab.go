package entities

import (
	"time"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/geo"
)

// Lab represents a diagnostic lab listed on the marketplace
type Lab struct {
	ID         string    `json:"id" db:"id"`
	UserID     *string   `json:"user_id,omitempty" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Address    string    `json:"address" db:"address"`
	City       string    `json:"city" db:"city"`
	State      string    `json:"state" db:"state"`
	Pincode    string    `json:"pincode" db:"pincode"`
	Phone      string    `json:"phone" db:"phone"`
	Email      *string   `json:"email,omitempty" db:"email"`
	Latitude   *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude  *float64  `json:"longitude,omitempty" db:"longitude"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Location returns the lab's coordinates when both are recorded.
func (l *Lab) Location() (geo.Point, bool) {
	return geo.NewPoint(l.Latitude, l.Longitude)
}

// IsDiscoverable reports whether the lab may appear in patient-facing
// results. Verification is only enforced when requireVerified is set.
func (l *Lab) IsDiscoverable(requireVerified bool) bool {
	if !l.IsActive {
		return false
	}
	return !requireVerified || l.IsVerified
}

// LabResult is a lab as returned by discovery, optionally annotated with the
// distance from the caller.
type LabResult struct {
	Lab
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
