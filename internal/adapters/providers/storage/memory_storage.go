package storage

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/google/uuid"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
)

// StoredObject is a file held by MemoryStorage
type StoredObject struct {
	Name        string
	ContentType string
	Data        []byte
}

// MemoryStorage keeps uploads in process memory and serves them back under
// baseURL/uploads/{id}. Intended for development.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	files   map[string]StoredObject
}

var _ providers.FileStorage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an in-memory file storage
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: baseURL,
		files:   make(map[string]StoredObject),
	}
}

// Upload stores a copy of the file
func (m *MemoryStorage) Upload(ctx context.Context, file providers.UploadFile) (*providers.StoredFile, error) {
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	id := uuid.New().String()
	publicID := id
	if file.Folder != "" {
		publicID = path.Join(file.Folder, id)
	}

	data := make([]byte, len(file.Data))
	copy(data, file.Data)

	m.mu.Lock()
	m.files[id] = StoredObject{Name: file.Name, ContentType: file.ContentType, Data: data}
	m.mu.Unlock()

	return &providers.StoredFile{
		URL:      fmt.Sprintf("%s/uploads/%s", m.baseURL, id),
		PublicID: publicID,
	}, nil
}

// Get returns a stored file by id
func (m *MemoryStorage) Get(id string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.files[id]
	return obj, ok
}
