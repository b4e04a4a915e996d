package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

// AdminLabFilter filters the admin lab listing
type AdminLabFilter struct {
	IsVerified *bool
	IsActive   *bool
}

// AdminLabUpdate toggles a lab's admin-controlled flags
type AdminLabUpdate struct {
	IsVerified *bool `json:"is_verified"`
	IsActive   *bool `json:"is_active"`
}

// LabAdminService lets administrators verify and deactivate labs
type LabAdminService struct {
	labRepo repositories.LabRepository
	now     func() time.Time
}

// NewLabAdminService creates a new lab admin service
func NewLabAdminService(labRepo repositories.LabRepository) *LabAdminService {
	return &LabAdminService{labRepo: labRepo, now: time.Now}
}

func requireAdmin(principal *entities.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthenticatedError("unauthorized")
	}
	if !principal.IsAdmin() {
		return apperrors.NewForbiddenError("forbidden")
	}
	return nil
}

// ListLabs returns every lab, verified or not
func (s *LabAdminService) ListLabs(ctx context.Context, principal *entities.Principal, filter AdminLabFilter) ([]*entities.Lab, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.labRepo.List(ctx, repositories.LabFilter{IsVerified: filter.IsVerified, IsActive: filter.IsActive})
}

// GetLab returns a lab by id
func (s *LabAdminService) GetLab(ctx context.Context, principal *entities.Principal, id string) (*entities.Lab, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.labRepo.GetByID(ctx, id)
}

// UpdateLab applies the given flags
func (s *LabAdminService) UpdateLab(ctx context.Context, principal *entities.Principal, id string, update AdminLabUpdate) (*entities.Lab, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	lab, err := s.labRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.IsVerified != nil {
		lab.IsVerified = *update.IsVerified
	}
	if update.IsActive != nil {
		lab.IsActive = *update.IsActive
	}
	lab.UpdatedAt = s.now().UTC()

	if err := s.labRepo.Update(ctx, lab); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("lab_id", lab.ID).
		Bool("is_verified", lab.IsVerified).
		Bool("is_active", lab.IsActive).
		Str("admin_id", principal.ID).
		Msg("lab flags updated")
	return lab, nil
}
