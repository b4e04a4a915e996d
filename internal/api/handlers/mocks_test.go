package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
)

type MockTestCatalog struct {
	mock.Mock
}

func (m *MockTestCatalog) SearchTests(ctx context.Context, filter services.TestSearchFilter) ([]entities.TestSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TestSummary), args.Error(1)
}

func (m *MockTestCatalog) GetTest(ctx context.Context, id string) (*entities.TestSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TestSummary), args.Error(1)
}

func (m *MockTestCatalog) Suggest(ctx context.Context, query string, limit int) ([]entities.TestSuggestion, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TestSuggestion), args.Error(1)
}

type MockLocations struct {
	mock.Mock
}

func (m *MockLocations) Get(ctx context.Context, sessionID string) (*entities.SessionLocation, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SessionLocation), args.Error(1)
}

func (m *MockLocations) Put(ctx context.Context, sessionID string, loc entities.SessionLocation) (*entities.SessionLocation, error) {
	args := m.Called(ctx, sessionID, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SessionLocation), args.Error(1)
}

func (m *MockLocations) Invalidate(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockLabDirectory struct {
	mock.Mock
}

func (m *MockLabDirectory) FindLabs(ctx context.Context, filter services.LabSearchFilter) ([]entities.LabResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.LabResult), args.Error(1)
}

func (m *MockLabDirectory) GetLab(ctx context.Context, id string) (*entities.Lab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lab), args.Error(1)
}

type MockBookingManager struct {
	mock.Mock
}

func (m *MockBookingManager) CreateBooking(ctx context.Context, principal *entities.Principal, req services.CreateBookingRequest) (*entities.Booking, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingManager) ListBookings(ctx context.Context, principal *entities.Principal, filter services.BookingListFilter) ([]*entities.Booking, error) {
	args := m.Called(ctx, principal, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

func (m *MockBookingManager) GetBooking(ctx context.Context, principal *entities.Principal, id string) (*entities.Booking, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingManager) UpdateStatus(ctx context.Context, principal *entities.Principal, id, status string) (*entities.Booking, error) {
	args := m.Called(ctx, principal, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

type MockLabPortal struct {
	mock.Mock
}

func (m *MockLabPortal) RegisterLab(ctx context.Context, principal *entities.Principal, req services.RegisterLabRequest) (*services.LabRegistration, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LabRegistration), args.Error(1)
}

func (m *MockLabPortal) ListTests(ctx context.Context, principal *entities.Principal) ([]*entities.Test, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Test), args.Error(1)
}

func (m *MockLabPortal) CreateTest(ctx context.Context, principal *entities.Principal, req services.CreateTestRequest) (*entities.Test, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Test), args.Error(1)
}

func (m *MockLabPortal) DeleteTest(ctx context.Context, principal *entities.Principal, testID string) error {
	return m.Called(ctx, principal, testID).Error(0)
}

func (m *MockLabPortal) SetAvailability(ctx context.Context, principal *entities.Principal, testID string, req services.AvailabilityRequest) (*entities.LabTest, error) {
	args := m.Called(ctx, principal, testID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LabTest), args.Error(1)
}

func (m *MockLabPortal) RemoveAvailability(ctx context.Context, principal *entities.Principal, testID string) error {
	return m.Called(ctx, principal, testID).Error(0)
}

func (m *MockLabPortal) GetProfile(ctx context.Context, principal *entities.Principal) (*entities.Lab, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lab), args.Error(1)
}

func (m *MockLabPortal) UpdateProfile(ctx context.Context, principal *entities.Principal, req services.UpdateLabProfileRequest) (*entities.Lab, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lab), args.Error(1)
}

type MockLabAdministration struct {
	mock.Mock
}

func (m *MockLabAdministration) ListLabs(ctx context.Context, principal *entities.Principal, filter services.AdminLabFilter) ([]*entities.Lab, error) {
	args := m.Called(ctx, principal, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lab), args.Error(1)
}

func (m *MockLabAdministration) GetLab(ctx context.Context, principal *entities.Principal, id string) (*entities.Lab, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lab), args.Error(1)
}

func (m *MockLabAdministration) UpdateLab(ctx context.Context, principal *entities.Principal, id string, update services.AdminLabUpdate) (*entities.Lab, error) {
	args := m.Called(ctx, principal, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lab), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, name string, data []byte) (*providers.StoredFile, error) {
	args := m.Called(ctx, name, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.StoredFile), args.Error(1)
}

func (m *MockUploader) MaxBytes() int64 {
	return int64(m.Called().Int(0))
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func ptr[T any](v T) *T {
	return &v
}
