package services

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

// DefaultMaxPrescriptionBytes caps prescription uploads at 5 MB
const DefaultMaxPrescriptionBytes = 5 * 1024 * 1024

var allowedPrescriptionTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// PrescriptionService validates and stores prescription uploads
type PrescriptionService struct {
	storage  providers.FileStorage
	folder   string
	maxBytes int64
}

// NewPrescriptionService creates a new prescription service
func NewPrescriptionService(storage providers.FileStorage, folder string, maxBytes int64) *PrescriptionService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPrescriptionBytes
	}
	return &PrescriptionService{storage: storage, folder: folder, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload
func (s *PrescriptionService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores a JPG, PNG or PDF prescription. The content type is sniffed
// from the data, not taken from the client.
func (s *PrescriptionService) Upload(ctx context.Context, name string, data []byte) (*providers.StoredFile, error) {
	if len(data) == 0 {
		return nil, apperrors.NewMissingFieldsError("no file provided", "file")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperrors.NewValidationError(fmt.Sprintf("file size exceeds %dMB limit", s.maxBytes/(1024*1024)))
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedPrescriptionTypes...) {
		return nil, apperrors.NewValidationError("invalid file type, only JPG, PNG, and PDF are allowed")
	}

	stored, err := s.storage.Upload(ctx, providers.UploadFile{
		Name:        name,
		ContentType: mtype.String(),
		Folder:      s.folder,
		Data:        data,
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("file", name).Msg("prescription upload failed")
		return nil, apperrors.NewExternalError("failed to upload file", err)
	}
	return stored, nil
}
