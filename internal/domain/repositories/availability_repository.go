package repositories

import (
	"context"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// LabTestRepository defines the interface for lab/test availability links
type LabTestRepository interface {
	// Upsert creates the link or updates price and availability of an
	// existing (lab, test) pair
	Upsert(ctx context.Context, link *entities.LabTest) error

	// Delete removes the link between a lab and a test
	Delete(ctx context.Context, labID, testID string) error

	// List retrieves links matching the filter
	List(ctx context.Context, filter LabTestFilter) ([]*entities.LabTest, error)
}

// LabTestFilter defines filters for listing availability links. Empty ID
// slices mean no restriction.
type LabTestFilter struct {
	LabIDs      []string
	TestIDs     []string
	IsAvailable *bool
}
