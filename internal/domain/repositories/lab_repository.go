package repositories

import (
	"context"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// LabRepository defines the interface for lab data operations
type LabRepository interface {
	// Create creates a new lab
	Create(ctx context.Context, lab *entities.Lab) error

	// GetByID retrieves a lab by ID regardless of its status
	GetByID(ctx context.Context, id string) (*entities.Lab, error)

	// GetByIDs retrieves multiple labs by their IDs; unknown IDs are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Lab, error)

	// Update updates a lab
	Update(ctx context.Context, lab *entities.Lab) error

	// List retrieves labs matching the filter, ordered by name
	List(ctx context.Context, filter LabFilter) ([]*entities.Lab, error)
}

// LabFilter defines filters for listing labs
type LabFilter struct {
	IsActive       *bool
	IsVerified     *bool
	City           string // case-insensitive substring
	Pincode        string // exact
	HasCoordinates bool
	Limit          int
	Offset         int
}
