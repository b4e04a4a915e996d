package repositories

import (
	"context"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

// TestRepository defines the interface for test catalog data operations
type TestRepository interface {
	// Create creates a new test
	Create(ctx context.Context, test *entities.Test) error

	// GetByID retrieves a test by ID
	GetByID(ctx context.Context, id string) (*entities.Test, error)

	// GetByIDs retrieves multiple tests by their IDs; unknown IDs are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Test, error)

	// Update updates a test
	Update(ctx context.Context, test *entities.Test) error

	// Delete deletes a test
	Delete(ctx context.Context, id string) error

	// List retrieves tests matching the filter
	List(ctx context.Context, filter TestFilter) ([]*entities.Test, error)
}

// TestOrder selects the ordering of TestRepository.List
type TestOrder int

const (
	TestOrderByName TestOrder = iota
	TestOrderByNewest
)

// TestFilter defines filters for listing tests
type TestFilter struct {
	IsActive   *bool
	Category   string
	SearchText string // matched against name or description, case-insensitive
	LabID      string
	OrderBy    TestOrder
	Limit      int
	Offset     int
}

// TestSearchIndex defines the interface for the full-text test index
// (e.g. Typesense)
type TestSearchIndex interface {
	// Index adds or replaces a test document
	Index(ctx context.Context, test *entities.Test, labName *string) error

	// Delete removes a test from the index
	Delete(ctx context.Context, id string) error

	// Suggest returns active tests whose name starts with or contains query
	Suggest(ctx context.Context, query string, limit int) ([]entities.TestSuggestion, error)
}
