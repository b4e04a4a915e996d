package providers

import (
	"context"
)

// FileStorage stores uploaded binary files such as prescriptions
type FileStorage interface {
	// Upload stores the file and returns where it can be fetched from
	Upload(ctx context.Context, file UploadFile) (*StoredFile, error)
}

// UploadFile is a file to be stored
type UploadFile struct {
	Name        string
	ContentType string
	Folder      string
	Data        []byte
}

// StoredFile identifies a stored file
type StoredFile struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}
