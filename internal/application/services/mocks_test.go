package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
)

// Mocks

type MockLabRepository struct {
	mock.Mock
}

func (m *MockLabRepository) Create(ctx context.Context, lab *entities.Lab) error {
	return m.Called(ctx, lab).Error(0)
}

func (m *MockLabRepository) GetByID(ctx context.Context, id string) (*entities.Lab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lab), args.Error(1)
}

func (m *MockLabRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Lab, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lab), args.Error(1)
}

func (m *MockLabRepository) Update(ctx context.Context, lab *entities.Lab) error {
	return m.Called(ctx, lab).Error(0)
}

func (m *MockLabRepository) List(ctx context.Context, filter repositories.LabFilter) ([]*entities.Lab, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lab), args.Error(1)
}

type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *entities.Test) error {
	return m.Called(ctx, test).Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id string) (*entities.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Test), args.Error(1)
}

func (m *MockTestRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Test, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Test), args.Error(1)
}

func (m *MockTestRepository) Update(ctx context.Context, test *entities.Test) error {
	return m.Called(ctx, test).Error(0)
}

func (m *MockTestRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTestRepository) List(ctx context.Context, filter repositories.TestFilter) ([]*entities.Test, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Test), args.Error(1)
}

type MockLabTestRepository struct {
	mock.Mock
}

func (m *MockLabTestRepository) Upsert(ctx context.Context, link *entities.LabTest) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockLabTestRepository) Delete(ctx context.Context, labID, testID string) error {
	return m.Called(ctx, labID, testID).Error(0)
}

func (m *MockLabTestRepository) List(ctx context.Context, filter repositories.LabTestFilter) ([]*entities.LabTest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LabTest), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *entities.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

type MockTestSearchIndex struct {
	mock.Mock
}

func (m *MockTestSearchIndex) Index(ctx context.Context, test *entities.Test, labName *string) error {
	return m.Called(ctx, test, labName).Error(0)
}

func (m *MockTestSearchIndex) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTestSearchIndex) Suggest(ctx context.Context, query string, limit int) ([]entities.TestSuggestion, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TestSuggestion), args.Error(1)
}

type MockGeolocationProvider struct {
	mock.Mock
}

func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.GeocodedAddress), args.Error(1)
}

func (m *MockGeolocationProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedAddress, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.GeocodedAddress), args.Error(1)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Upload(ctx context.Context, file providers.UploadFile) (*providers.StoredFile, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.StoredFile), args.Error(1)
}

// Fixtures

func ptr[T any](v T) *T {
	return &v
}

func lab(id, name string, lat, lon *float64) *entities.Lab {
	return &entities.Lab{ID: id, Name: name, City: "Mumbai", IsActive: true, Latitude: lat, Longitude: lon}
}

var (
	mumbaiLat, mumbaiLon = 19.0760, 72.8777
	delhiLat, delhiLon   = 28.6139, 77.2090
	puneLat, puneLon     = 18.5204, 73.8567
)

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(p entities.Principal) (string, error) {
	args := m.Called(p)
	return args.String(0), args.Error(1)
}
