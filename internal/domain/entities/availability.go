package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// LabTest links a generic test to a lab that offers it. A link with
// IsAvailable=false hides the offering without deleting it.
type LabTest struct {
	ID          string              `json:"id" db:"id"`
	LabID       string              `json:"lab_id" db:"lab_id"`
	TestID      string              `json:"test_id" db:"test_id"`
	Price       decimal.NullDecimal `json:"price" db:"price"`
	IsAvailable bool                `json:"is_available" db:"is_available"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" db:"updated_at"`
}
