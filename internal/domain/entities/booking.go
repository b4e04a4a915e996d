package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookingType is the kind of appointment a booking represents
type BookingType string

const (
	BookingTypeHomeCollection BookingType = "HOME_COLLECTION"
	BookingTypeClinicVisit    BookingType = "CLINIC_VISIT"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "PENDING"
	BookingStatusConfirmed       BookingStatus = "CONFIRMED"
	BookingStatusSampleCollected BookingStatus = "SAMPLE_COLLECTED"
	BookingStatusProcessing      BookingStatus = "PROCESSING"
	BookingStatusCompleted       BookingStatus = "COMPLETED"
	BookingStatusCancelled       BookingStatus = "CANCELLED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:         {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:       {BookingStatusSampleCollected, BookingStatusCancelled},
	BookingStatusSampleCollected: {BookingStatusProcessing},
	BookingStatusProcessing:      {BookingStatusCompleted},
}

// ParseBookingStatus validates s against the closed status enumeration
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusSampleCollected,
		BookingStatusProcessing, BookingStatusCompleted, BookingStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// IsTerminal reports whether no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// CanTransitionTo reports whether next directly follows s in the lifecycle
// PENDING → CONFIRMED → SAMPLE_COLLECTED → PROCESSING → COMPLETED, with
// CANCELLED reachable from PENDING and CONFIRMED.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ClinicTimeSlots are the appointment times offered for clinic visits
var ClinicTimeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
}

// ParseTimeSlot normalises s ("9:00 am", "09:00 AM") to its enumerated form
func ParseTimeSlot(s string) (string, error) {
	t, err := time.Parse("3:04 PM", strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("invalid time slot %q", s)
	}
	slot := t.Format("03:04 PM")
	for _, allowed := range ClinicTimeSlots {
		if slot == allowed {
			return slot, nil
		}
	}
	return "", fmt.Errorf("time slot %q is not offered", s)
}

// BookingDateLayout is the wire format of clinic visit dates
const BookingDateLayout = "2006-01-02"

// BookingDetails holds the fields specific to a booking type. It is
// implemented by *HomeCollection and *ClinicVisit only.
type BookingDetails interface {
	BookingType() BookingType
	bookingDetails()
}

// HomeCollection is a booking where the sample is collected at the
// patient's address
type HomeCollection struct {
	Address         string
	Pincode         string
	State           string
	PrescriptionURL string
}

// BookingType implements BookingDetails
func (*HomeCollection) BookingType() BookingType { return BookingTypeHomeCollection }
func (*HomeCollection) bookingDetails()          {}

// ClinicVisit is a booking where the patient visits the lab
type ClinicVisit struct {
	Date            time.Time
	TimeSlot        string
	PrescriptionURL *string
}

// BookingType implements BookingDetails
func (*ClinicVisit) BookingType() BookingType { return BookingTypeClinicVisit }
func (*ClinicVisit) bookingDetails()          {}

// BookingItem is the price snapshot of a test at booking time
type BookingItem struct {
	ID        string          `json:"id" db:"id"`
	BookingID string          `json:"booking_id" db:"booking_id"`
	TestID    string          `json:"test_id" db:"test_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	Test      *Test           `json:"test,omitempty" db:"-"`
}

// Booking represents a patient's appointment with a lab
type Booking struct {
	ID          string
	UserID      string
	LabID       string
	PatientName string
	PatientAge  int
	City        string
	Phone       string
	Notes       *string
	TotalAmount decimal.Decimal
	Status      BookingStatus
	Details     BookingDetails
	Items       []BookingItem
	Lab         *Lab
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Type returns the booking's type as determined by its details
func (b *Booking) Type() BookingType {
	if b.Details == nil {
		return ""
	}
	return b.Details.BookingType()
}

// HomeCollection returns the home collection details, if any
func (b *Booking) HomeCollection() (*HomeCollection, bool) {
	d, ok := b.Details.(*HomeCollection)
	return d, ok
}

// ClinicVisit returns the clinic visit details, if any
func (b *Booking) ClinicVisit() (*ClinicVisit, bool) {
	d, ok := b.Details.(*ClinicVisit)
	return d, ok
}

// IsOwnedBy reports whether userID placed the booking
func (b *Booking) IsOwnedBy(userID string) bool {
	return b.UserID == userID
}

type bookingJSON struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	LabID           string          `json:"lab_id"`
	BookingType     BookingType     `json:"booking_type"`
	PatientName     string          `json:"patient_name"`
	PatientAge      int             `json:"patient_age"`
	BookingDate     *string         `json:"booking_date"`
	BookingTime     *string         `json:"booking_time"`
	Address         *string         `json:"address"`
	City            string          `json:"city"`
	State           *string         `json:"state"`
	Pincode         *string         `json:"pincode"`
	Phone           string          `json:"phone"`
	Status          BookingStatus   `json:"status"`
	PrescriptionURL *string         `json:"prescription_url"`
	Notes           *string         `json:"notes"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Items           []BookingItem   `json:"items"`
	Lab             *Lab            `json:"lab,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MarshalJSON flattens the type-specific details into the booking object
// with absent fields rendered as null.
func (b *Booking) MarshalJSON() ([]byte, error) {
	out := bookingJSON{
		ID:          b.ID,
		UserID:      b.UserID,
		LabID:       b.LabID,
		BookingType: b.Type(),
		PatientName: b.PatientName,
		PatientAge:  b.PatientAge,
		City:        b.City,
		Phone:       b.Phone,
		Status:      b.Status,
		Notes:       b.Notes,
		TotalAmount: b.TotalAmount,
		Items:       b.Items,
		Lab:         b.Lab,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if out.Items == nil {
		out.Items = []BookingItem{}
	}

	switch d := b.Details.(type) {
	case *HomeCollection:
		out.Address = &d.Address
		out.Pincode = &d.Pincode
		out.State = &d.State
		out.PrescriptionURL = &d.PrescriptionURL
	case *ClinicVisit:
		date := d.Date.Format(BookingDateLayout)
		out.BookingDate = &date
		out.BookingTime = &d.TimeSlot
		out.PrescriptionURL = d.PrescriptionURL
	}

	return json.Marshal(out)
}
