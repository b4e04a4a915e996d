package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

// CreateTestRequest is a lab's new catalog entry
type CreateTestRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description *string           `json:"description"`
	Category    string            `json:"category" validate:"required"`
	Price       *decimal.Decimal  `json:"price" validate:"required"`
	Duration    *int              `json:"duration" validate:"omitempty,gte=0"`
	TestType    entities.TestType `json:"test_type" validate:"required,oneof=HOME_TEST CLINIC_TEST"`
}

// AvailabilityRequest offers a generic test at the caller's lab
type AvailabilityRequest struct {
	IsAvailable *bool            `json:"is_available"`
	Price       *decimal.Decimal `json:"price"`
}

// UpdateLabProfileRequest carries the profile fields to change; nil fields
// are left as they are.
type UpdateLabProfileRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	State     *string  `json:"state"`
	Pincode   *string  `json:"pincode"`
	Phone     *string  `json:"phone"`
	Email     *string  `json:"email" validate:"omitempty,email"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	// ClearCoordinates removes the lab's position, taking it out of
	// radius searches until new coordinates are set
	ClearCoordinates bool `json:"clear_coordinates"`
}

// RegisterLabRequest is a new lab signing up to the marketplace
type RegisterLabRequest struct {
	Name      string   `json:"name" validate:"required"`
	Address   string   `json:"address" validate:"required"`
	City      string   `json:"city" validate:"required"`
	State     string   `json:"state" validate:"required"`
	Pincode   string   `json:"pincode" validate:"required"`
	Phone     string   `json:"phone" validate:"required"`
	Email     *string  `json:"email" validate:"omitempty,email"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// LabRegistration is the created lab and a token for its account
type LabRegistration struct {
	Lab   *entities.Lab `json:"lab"`
	Token string        `json:"token,omitempty"`
}

// TokenIssuer mints bearer tokens for principals
type TokenIssuer interface {
	Issue(p entities.Principal) (string, error)
}

// LabManagementService serves the lab portal: the lab's own tests, its
// availability links to generic tests and its profile.
type LabManagementService struct {
	labRepo     repositories.LabRepository
	testRepo    repositories.TestRepository
	labTestRepo repositories.LabTestRepository
	searchIndex repositories.TestSearchIndex
	geocoder    providers.GeolocationProvider
	tokens      TokenIssuer
	validate    *validator.Validate
	now         func() time.Time
}

// NewLabManagementService creates a new lab management service. searchIndex,
// geocoder and tokens are optional.
func NewLabManagementService(
	labRepo repositories.LabRepository,
	testRepo repositories.TestRepository,
	labTestRepo repositories.LabTestRepository,
	searchIndex repositories.TestSearchIndex,
	geocoder providers.GeolocationProvider,
	tokens TokenIssuer,
) *LabManagementService {
	return &LabManagementService{
		labRepo:     labRepo,
		testRepo:    testRepo,
		labTestRepo: labTestRepo,
		searchIndex: searchIndex,
		geocoder:    geocoder,
		tokens:      tokens,
		validate:    newValidator(),
		now:         time.Now,
	}
}

// requireLab returns the lab managed by principal
func requireLab(principal *entities.Principal) (string, error) {
	if principal == nil {
		return "", apperrors.NewUnauthenticatedError("unauthorized")
	}
	if principal.Role != entities.RoleLab || principal.LabID == nil || *principal.LabID == "" {
		return "", apperrors.NewForbiddenError("forbidden")
	}
	return *principal.LabID, nil
}

// RegisterLab creates a lab together with its lab account. An anonymous
// caller gets a new account; a lab account without a lab gets the lab
// attached. The lab starts active and unverified. Missing coordinates are
// geocoded from the address when possible.
func (s *LabManagementService) RegisterLab(ctx context.Context, principal *entities.Principal, req RegisterLabRequest) (*LabRegistration, error) {
	accountID := uuid.New().String()
	if principal != nil {
		switch {
		case principal.Role != entities.RoleLab:
			return nil, apperrors.NewForbiddenError("only lab accounts can register a lab")
		case principal.LabID != nil && *principal.LabID != "":
			return nil, apperrors.NewConflictError("account already has a lab")
		}
		accountID = principal.ID
	}

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, apperrors.NewValidationError("latitude and longitude must be sent together")
	}

	now := s.now().UTC()
	lab := &entities.Lab{
		ID:        uuid.New().String(),
		UserID:    &accountID,
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		Pincode:   strings.TrimSpace(req.Pincode),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     nonEmpty(req.Email),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if lab.Latitude == nil && s.geocoder != nil {
		s.geocode(ctx, lab)
	}

	if err := s.labRepo.Create(ctx, lab); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("lab_id", lab.ID).Str("user_id", accountID).Msg("lab registered")

	registration := &LabRegistration{Lab: lab}
	if s.tokens == nil {
		return registration, nil
	}
	token, err := s.tokens.Issue(entities.Principal{ID: accountID, Role: entities.RoleLab, LabID: &lab.ID})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}
	registration.Token = token
	return registration, nil
}

// ListTests returns the tests owned by the caller's lab, newest first
func (s *LabManagementService) ListTests(ctx context.Context, principal *entities.Principal) ([]*entities.Test, error) {
	labID, err := requireLab(principal)
	if err != nil {
		return nil, err
	}
	return s.testRepo.List(ctx, repositories.TestFilter{LabID: labID, OrderBy: repositories.TestOrderByNewest})
}

// CreateTest adds an active test owned by the caller's lab
func (s *LabManagementService) CreateTest(ctx context.Context, principal *entities.Principal, req CreateTestRequest) (*entities.Test, error) {
	labID, err := requireLab(principal)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, apperrors.NewValidationError("price must not be negative")
	}

	now := s.now().UTC()
	test := &entities.Test{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: nonEmpty(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Price:       *req.Price,
		Duration:    req.Duration,
		TestType:    req.TestType,
		LabID:       &labID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.testRepo.Create(ctx, test); err != nil {
		return nil, err
	}

	s.index(ctx, test)
	return test, nil
}

// DeleteTest removes a test owned by the caller's lab
func (s *LabManagementService) DeleteTest(ctx context.Context, principal *entities.Principal, testID string) error {
	labID, err := requireLab(principal)
	if err != nil {
		return err
	}

	test, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		return err
	}
	if !test.IsOwnedBy(labID) {
		return apperrors.NewForbiddenError("forbidden")
	}

	if err := s.testRepo.Delete(ctx, testID); err != nil {
		return err
	}

	if s.searchIndex != nil {
		if err := s.searchIndex.Delete(ctx, testID); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("test_id", testID).Msg("failed to remove test from index")
		}
	}
	return nil
}

// SetAvailability links a generic test to the caller's lab, or updates the
// existing link. New links default to available.
func (s *LabManagementService) SetAvailability(ctx context.Context, principal *entities.Principal, testID string, req AvailabilityRequest) (*entities.LabTest, error) {
	labID, err := requireLab(principal)
	if err != nil {
		return nil, err
	}

	test, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !test.IsGeneric() {
		return nil, apperrors.NewValidationError("only generic tests can be offered through availability")
	}

	link := &entities.LabTest{
		ID:          uuid.New().String(),
		LabID:       labID,
		TestID:      test.ID,
		IsAvailable: true,
		UpdatedAt:   s.now().UTC(),
	}
	if req.IsAvailable != nil {
		link.IsAvailable = *req.IsAvailable
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperrors.NewValidationError("price must not be negative")
		}
		link.Price = decimal.NewNullDecimal(*req.Price)
	}

	if err := s.labTestRepo.Upsert(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// RemoveAvailability deletes the caller's lab link to a generic test
func (s *LabManagementService) RemoveAvailability(ctx context.Context, principal *entities.Principal, testID string) error {
	labID, err := requireLab(principal)
	if err != nil {
		return err
	}
	return s.labTestRepo.Delete(ctx, labID, testID)
}

// GetProfile returns the caller's lab
func (s *LabManagementService) GetProfile(ctx context.Context, principal *entities.Principal) (*entities.Lab, error) {
	labID, err := requireLab(principal)
	if err != nil {
		return nil, err
	}
	return s.labRepo.GetByID(ctx, labID)
}

// UpdateProfile applies the given fields to the caller's lab. When the
// address changes without new coordinates the geocoder is asked for them;
// a geocoding failure keeps the previous coordinates. ClearCoordinates
// removes them instead.
func (s *LabManagementService) UpdateProfile(ctx context.Context, principal *entities.Principal, req UpdateLabProfileRequest) (*entities.Lab, error) {
	labID, err := requireLab(principal)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.ClearCoordinates && (req.Latitude != nil || req.Longitude != nil) {
		return nil, apperrors.NewValidationError("clear_coordinates cannot be combined with latitude or longitude")
	}

	lab, err := s.labRepo.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	addressChanged := false
	assign := func(dst *string, src *string, address bool) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if address && v != *dst {
			addressChanged = true
		}
		*dst = v
	}
	assign(&lab.Name, req.Name, false)
	assign(&lab.Phone, req.Phone, false)
	assign(&lab.Address, req.Address, true)
	assign(&lab.City, req.City, true)
	assign(&lab.State, req.State, true)
	assign(&lab.Pincode, req.Pincode, true)
	if req.Email != nil {
		lab.Email = nonEmpty(req.Email)
	}

	switch {
	case req.ClearCoordinates:
		lab.Latitude, lab.Longitude = nil, nil
	case req.Latitude != nil && req.Longitude != nil:
		lab.Latitude, lab.Longitude = req.Latitude, req.Longitude
	case addressChanged && s.geocoder != nil:
		s.geocode(ctx, lab)
	}

	lab.UpdatedAt = s.now().UTC()
	if err := s.labRepo.Update(ctx, lab); err != nil {
		return nil, err
	}
	return lab, nil
}

func (s *LabManagementService) geocode(ctx context.Context, lab *entities.Lab) {
	query := strings.Join(nonBlank(lab.Address, lab.City, lab.State, lab.Pincode, "India"), ", ")
	addr, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("lab_id", lab.ID).Msg("geocoding lab address failed, keeping coordinates")
		return
	}
	lat, lon := addr.Coordinates.Latitude, addr.Coordinates.Longitude
	lab.Latitude, lab.Longitude = &lat, &lon
}

func (s *LabManagementService) index(ctx context.Context, test *entities.Test) {
	if s.searchIndex == nil {
		return
	}
	var name *string
	if test.LabID != nil {
		if lab, err := s.labRepo.GetByID(ctx, *test.LabID); err == nil {
			name = &lab.Name
		}
	}
	if err := s.searchIndex.Index(ctx, test, name); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("test_id", test.ID).Msg("failed to index test")
	}
}

func nonBlank(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
