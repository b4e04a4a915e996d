package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/cache"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/database"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
)

// MockLabRepository is a mock implementation of LabRepository
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

func TestCachedLabAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		// Arrange
		store, err := cache.NewMemoryAdapter(100)
		require.NoError(t, err)
		repo := new(MockLabRepository)
		adapter := database.NewCachedLabAdapter(repo, store, time.Minute, nil)

		repo.On("GetByID", ctx, "lab-1").Return(&entities.Lab{ID: "lab-1", Name: "City Lab", IsActive: true}, nil).Once()

		// Act
		first, err := adapter.GetByID(ctx, "lab-1")
		require.NoError(t, err)
		ok, _ := store.Exists(ctx, "lab:v1:lab-1")
		assert.True(t, ok)
		second, err := adapter.GetByID(ctx, "lab-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, first.Name, second.Name)
		repo.AssertExpectations(t)
	})

	t.Run("batch read fetches only misses", func(t *testing.T) {
		store, err := cache.NewMemoryAdapter(100)
		require.NoError(t, err)
		repo := new(MockLabRepository)
		adapter := database.NewCachedLabAdapter(repo, store, time.Minute, nil)

		require.NoError(t, store.Set(ctx, "lab:v1:lab-1", []byte(`{"id":"lab-1","name":"Cached"}`), 60))
		repo.On("GetByIDs", ctx, []string{"lab-2"}).Return([]*entities.Lab{{ID: "lab-2", Name: "Fresh"}}, nil).Once()

		labs, err := adapter.GetByIDs(ctx, []string{"lab-1", "lab-2"})

		require.NoError(t, err)
		require.Len(t, labs, 2)
		assert.Equal(t, "Cached", labs[0].Name)
		assert.Equal(t, "Fresh", labs[1].Name)
		repo.AssertExpectations(t)
	})

	t.Run("update writes the new version through", func(t *testing.T) {
		store, err := cache.NewMemoryAdapter(100)
		require.NoError(t, err)
		repo := new(MockLabRepository)
		adapter := database.NewCachedLabAdapter(repo, store, time.Minute, nil)

		require.NoError(t, store.Set(ctx, "lab:v1:lab-1", []byte(`{"id":"lab-1","is_active":true}`), 60))
		lab := &entities.Lab{ID: "lab-1", IsActive: false}
		repo.On("Update", ctx, lab).Return(nil)

		require.NoError(t, adapter.Update(ctx, lab))

		got, err := adapter.GetByID(ctx, "lab-1")
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		repo.AssertNotCalled(t, "GetByID", ctx, "lab-1")
	})

	t.Run("a read that raced an update keeps the newer lab", func(t *testing.T) {
		store, err := cache.NewMemoryAdapter(100)
		require.NoError(t, err)
		repo := new(MockLabRepository)
		adapter := database.NewCachedLabAdapter(repo, store, time.Minute, nil)

		before := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
		stale := &entities.Lab{ID: "lab-1", IsActive: true, UpdatedAt: before}
		fresh := &entities.Lab{ID: "lab-1", IsActive: false, UpdatedAt: before.Add(time.Minute)}

		// the read hits the database before the update, but reaches the
		// cache after it
		repo.On("GetByID", ctx, "lab-1").Return(stale, nil).Once().Run(func(mock.Arguments) {
			repo.On("Update", ctx, fresh).Return(nil)
			require.NoError(t, adapter.Update(ctx, fresh))
		})

		got, err := adapter.GetByID(ctx, "lab-1")
		require.NoError(t, err)
		assert.True(t, got.IsActive)

		got, err = adapter.GetByID(ctx, "lab-1")
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		repo.AssertExpectations(t)
	})
}
