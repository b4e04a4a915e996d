package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
)

// CloudinaryStorage uploads files through the Cloudinary SDK
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
	err error
}

var _ providers.FileStorage = (*CloudinaryStorage)(nil)

// NewCloudinaryStorage creates a Cloudinary backed file storage
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) *CloudinaryStorage {
	return NewCloudinaryStorageWithOptions(cloudName, apiKey, apiSecret, "")
}

// NewCloudinaryStorageWithOptions allows overriding the upload host (used for tests).
func NewCloudinaryStorageWithOptions(cloudName, apiKey, apiSecret, uploadPrefix string) *CloudinaryStorage {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return &CloudinaryStorage{err: fmt.Errorf("cloudinary is not configured")}
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return &CloudinaryStorage{err: fmt.Errorf("failed to configure cloudinary: %w", err)}
	}
	if prefix := strings.TrimRight(strings.TrimSpace(uploadPrefix), "/"); prefix != "" {
		cld.Upload.Config.API.UploadPrefix = prefix
	}
	return &CloudinaryStorage{cld: cld}
}

// Upload stores the file with resource type auto so images and PDFs share
// one endpoint
func (c *CloudinaryStorage) Upload(ctx context.Context, file providers.UploadFile) (*providers.StoredFile, error) {
	if c.err != nil {
		return nil, c.err
	}

	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(file.Data), uploader.UploadParams{
		Folder:       file.Folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("upload failed: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return nil, fmt.Errorf("upload returned no url")
	}

	return &providers.StoredFile{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}
