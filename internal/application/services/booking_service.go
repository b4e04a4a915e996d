package services

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/loaders"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

// CreateBookingRequest is the patient's booking payload. BookingType is a
// hint; a HOME_TEST always books a home collection.
type CreateBookingRequest struct {
	LabID           string           `json:"lab_id" validate:"required"`
	TestID          string           `json:"test_id" validate:"required"`
	BookingType     string           `json:"booking_type"`
	PatientName     string           `json:"patient_name" validate:"required"`
	PatientAge      int              `json:"patient_age" validate:"required,gt=0"`
	Phone           string           `json:"phone" validate:"required"`
	City            string           `json:"city" validate:"required"`
	Address         string           `json:"address"`
	Pincode         string           `json:"pincode"`
	State           string           `json:"state"`
	PrescriptionURL string           `json:"prescription_url"`
	BookingDate     string           `json:"booking_date"`
	BookingTime     string           `json:"booking_time"`
	Notes           *string          `json:"notes"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
}

// BookingListFilter holds the optional filters of a booking listing
type BookingListFilter struct {
	LabID  string
	Status string
	Limit  int
	Offset int
}

// BookingService manages the booking lifecycle
type BookingService struct {
	repo              repositories.BookingRepository
	testRepo          repositories.TestRepository
	labRepo           repositories.LabRepository
	slots             SlotPolicy
	strictTransitions bool
	validate          *validator.Validate
	metrics           *observability.Metrics
	now               func() time.Time
}

// NewBookingService creates a new booking service. A nil slot policy
// allows every booking.
func NewBookingService(
	repo repositories.BookingRepository,
	testRepo repositories.TestRepository,
	labRepo repositories.LabRepository,
	slots SlotPolicy,
	strictTransitions bool,
	metrics *observability.Metrics,
) *BookingService {
	if slots == nil {
		slots = UnlimitedSlots{}
	}
	return &BookingService{
		repo:              repo,
		testRepo:          testRepo,
		labRepo:           labRepo,
		slots:             slots,
		strictTransitions: strictTransitions,
		validate:          newValidator(),
		metrics:           metrics,
		now:               time.Now,
	}
}

// CreateBooking validates the request against the test's collection type
// and persists a PENDING booking with a single price-snapshot item.
func (s *BookingService) CreateBooking(ctx context.Context, principal *entities.Principal, req CreateBookingRequest) (*entities.Booking, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticatedError("sign in to book a test")
	}
	if strings.TrimSpace(req.TestID) == "" {
		return nil, apperrors.NewMissingFieldsError("missing required fields", "test_id")
	}

	test, err := s.testRepo.GetByID(ctx, req.TestID)
	if err != nil {
		return nil, err
	}

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	details, err := bookingDetails(req, test)
	if err != nil {
		return nil, err
	}

	lab, err := s.labRepo.GetByID(ctx, req.LabID)
	if err != nil {
		return nil, err
	}

	amount := test.Price
	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return nil, apperrors.NewValidationError("total_amount must not be negative")
		}
		amount = *req.TotalAmount
	}

	now := s.now().UTC()
	booking := &entities.Booking{
		ID:          uuid.New().String(),
		UserID:      principal.ID,
		LabID:       lab.ID,
		PatientName: strings.TrimSpace(req.PatientName),
		PatientAge:  req.PatientAge,
		City:        strings.TrimSpace(req.City),
		Phone:       strings.TrimSpace(req.Phone),
		Notes:       nonEmpty(req.Notes),
		TotalAmount: amount,
		Status:      entities.BookingStatusPending,
		Details:     details,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	booking.Items = []entities.BookingItem{{
		ID:        uuid.New().String(),
		BookingID: booking.ID,
		TestID:    test.ID,
		Price:     amount,
		CreatedAt: now,
	}}

	if err := s.slots.Allow(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	booking.Items[0].Test = test
	booking.Lab = lab

	observability.RecordBookingCreated(ctx, s.metrics, string(booking.Type()))
	log.Ctx(ctx).Info().
		Str("booking_id", booking.ID).
		Str("lab_id", booking.LabID).
		Str("booking_type", string(booking.Type())).
		Msg("booking created")
	return booking, nil
}

// bookingDetails builds the type-specific variant of a booking
func bookingDetails(req CreateBookingRequest, test *entities.Test) (entities.BookingDetails, error) {
	home := strings.EqualFold(strings.TrimSpace(req.BookingType), string(entities.BookingTypeHomeCollection)) ||
		test.TestType == entities.TestTypeHome

	if home {
		hc := &entities.HomeCollection{
			Address:         strings.TrimSpace(req.Address),
			Pincode:         strings.TrimSpace(req.Pincode),
			State:           strings.TrimSpace(req.State),
			PrescriptionURL: strings.TrimSpace(req.PrescriptionURL),
		}
		if missing := missingFields("address", hc.Address, "pincode", hc.Pincode, "state", hc.State); len(missing) > 0 {
			return nil, apperrors.NewMissingFieldsError("missing home collection fields", missing...)
		}
		if hc.PrescriptionURL == "" {
			return nil, apperrors.NewMissingFieldsError("prescription is required for home collection tests", "prescription_url")
		}
		return hc, nil
	}

	if missing := missingFields("booking_date", req.BookingDate, "booking_time", req.BookingTime); len(missing) > 0 {
		return nil, apperrors.NewMissingFieldsError("missing clinic visit fields", missing...)
	}
	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		return nil, err
	}
	slot, err := entities.ParseTimeSlot(req.BookingTime)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return &entities.ClinicVisit{
		Date:            date,
		TimeSlot:        slot,
		PrescriptionURL: nonEmpty(&req.PrescriptionURL),
	}, nil
}

func parseBookingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(entities.BookingDateLayout, s); err == nil {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperrors.NewValidationError("booking_date must be a date in YYYY-MM-DD format")
}

// ListBookings returns the bookings visible to principal, newest first. A
// USER sees only their own bookings; a LAB sees its lab's bookings, falling
// back to the requested lab when the account has none; an ADMIN sees all.
func (s *BookingService) ListBookings(ctx context.Context, principal *entities.Principal, filter BookingListFilter) ([]*entities.Booking, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticatedError("unauthorized")
	}

	f := repositories.BookingFilter{Limit: filter.Limit, Offset: filter.Offset}
	if filter.Status != "" {
		status, err := entities.ParseBookingStatus(filter.Status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		f.Status = status
	}

	switch principal.Role {
	case entities.RoleAdmin:
		f.LabID = filter.LabID
	case entities.RoleLab:
		if principal.LabID != nil && *principal.LabID != "" {
			f.LabID = *principal.LabID
		} else {
			f.LabID = filter.LabID
		}
		if f.LabID == "" {
			return []*entities.Booking{}, nil
		}
	default:
		f.UserID = principal.ID
	}

	bookings, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.expand(ctx, bookings...); err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBooking returns a booking to its owner, its lab or an admin
func (s *BookingService) GetBooking(ctx context.Context, principal *entities.Principal, id string) (*entities.Booking, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticatedError("unauthorized")
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.IsOwnedBy(principal.ID) && !principal.ManagesLab(booking.LabID) && !principal.IsAdmin() {
		return nil, apperrors.NewForbiddenError("forbidden")
	}

	if err := s.expand(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateStatus sets a booking's status. Only an admin or the booking's lab
// may do so. Transitions outside the lifecycle are rejected only when
// strict transitions are enabled.
func (s *BookingService) UpdateStatus(ctx context.Context, principal *entities.Principal, id, status string) (*entities.Booking, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticatedError("unauthorized")
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() && !principal.ManagesLab(booking.LabID) {
		return nil, apperrors.NewForbiddenError("forbidden")
	}

	if strings.TrimSpace(status) == "" {
		return nil, apperrors.NewMissingFieldsError("status is required", "status")
	}
	next, err := entities.ParseBookingStatus(status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if s.strictTransitions && next != booking.Status && !booking.Status.CanTransitionTo(next) {
		return nil, apperrors.NewConflictError("cannot move booking from " + string(booking.Status) + " to " + string(next))
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, next); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("booking_id", booking.ID).
		Str("from", string(booking.Status)).
		Str("to", string(next)).
		Str("actor_role", string(principal.Role)).
		Msg("booking status updated")
	observability.RecordStatusChange(ctx, s.metrics, string(next))

	booking.Status = next
	booking.UpdatedAt = s.now().UTC()
	if err := s.expand(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// expand attaches each booking's lab and item tests through the request's
// batched loaders.
func (s *BookingService) expand(ctx context.Context, bookings ...*entities.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(s.labRepo, s.testRepo)
	}

	labThunks := make([]func() (*entities.Lab, error), len(bookings))
	testThunks := make([][]func() (*entities.Test, error), len(bookings))
	for i, b := range bookings {
		labThunks[i] = l.LabLoader.Load(ctx, b.LabID)
		testThunks[i] = make([]func() (*entities.Test, error), len(b.Items))
		for j, item := range b.Items {
			testThunks[i][j] = l.TestLoader.Load(ctx, item.TestID)
		}
	}

	for i, b := range bookings {
		lab, err := labThunks[i]()
		if err != nil && !apperrors.IsNotFound(err) {
			return err
		}
		b.Lab = lab
		for j := range b.Items {
			test, err := testThunks[i][j]()
			if err != nil && !apperrors.IsNotFound(err) {
				return err
			}
			b.Items[j].Test = test
		}
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// missingFields takes name, value pairs and returns the names of blank values
func missingFields(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct converts validator failures into a validation AppError
// naming the missing fields.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(err.Error())
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFieldsError("missing required fields", missing...)
	}
	appErr := apperrors.NewValidationError("invalid value for " + strings.Join(invalid, ", "))
	appErr.Fields = invalid
	return appErr
}
