package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TestType describes where a test's sample is collected
type TestType string

const (
	TestTypeHome   TestType = "HOME_TEST"
	TestTypeClinic TestType = "CLINIC_TEST"
)

// IsValid reports whether t is a known test type
func (t TestType) IsValid() bool {
	return t == TestTypeHome || t == TestTypeClinic
}

// CategoryAll is the category filter value that disables category matching.
const CategoryAll = "all"

// Test represents a diagnostic test in the catalog. A test with no LabID is
// generic and offered by labs through LabTest links.
type Test struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Category    string          `json:"category" db:"category"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Duration    *int            `json:"duration,omitempty" db:"duration"`
	TestType    TestType        `json:"test_type" db:"test_type"`
	LabID       *string         `json:"lab_id,omitempty" db:"lab_id"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// IsGeneric reports whether the test is not owned by a single lab
func (t *Test) IsGeneric() bool {
	return t.LabID == nil
}

// IsOwnedBy reports whether labID owns the test
func (t *Test) IsOwnedBy(labID string) bool {
	return t.LabID != nil && *t.LabID == labID
}

// TestSummary is the flattened test projection returned by catalog search.
// Only the owning lab's name is exposed.
type TestSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Duration    *int            `json:"duration,omitempty"`
	TestType    TestType        `json:"test_type"`
	LabID       *string         `json:"lab_id"`
	LabName     *string         `json:"lab_name"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewTestSummary flattens a test and its owning lab's name
func NewTestSummary(t *Test, labName *string) TestSummary {
	return TestSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Price:       t.Price,
		Duration:    t.Duration,
		TestType:    t.TestType,
		LabID:       t.LabID,
		LabName:     labName,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TestSuggestion is a lightweight search-as-you-type hit
type TestSuggestion struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	TestType TestType `json:"test_type"`
	LabName  *string  `json:"lab_name,omitempty"`
}
