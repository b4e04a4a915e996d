package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
)

func newCatalog(index *MockTestSearchIndex) (*services.TestCatalogService, *MockTestRepository, *MockLabRepository, *MockLabTestRepository) {
	tests := new(MockTestRepository)
	labs := new(MockLabRepository)
	links := new(MockLabTestRepository)
	var idx repositories.TestSearchIndex
	if index != nil {
		idx = index
	}
	return services.NewTestCatalogService(tests, labs, links, idx, 0, false, nil), tests, labs, links
}

func summaryIDs(summaries []entities.TestSummary) []string {
	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestTestCatalogService_SearchTests(t *testing.T) {
	ctx := context.Background()

	t.Run("base filters without location", func(t *testing.T) {
		svc, tests, labs, links := newCatalog(nil)
		tests.On("List", mock.Anything, mock.MatchedBy(func(f repositories.TestFilter) bool {
			return *f.IsActive && f.Category == "" && f.SearchText == "sugar" && f.OrderBy == repositories.TestOrderByName
		})).Return([]*entities.Test{
			{ID: "t1", Name: "Blood Sugar", LabID: ptr("a"), Price: decimal.NewFromInt(150)},
			{ID: "t2", Name: "HbA1c"},
		}, nil)
		labs.On("GetByIDs", mock.Anything, []string{"a"}).Return([]*entities.Lab{lab("a", "Alpha Diagnostics", nil, nil)}, nil)

		got, err := svc.SearchTests(ctx, services.TestSearchFilter{Category: "all", SearchText: " sugar "})

		require.NoError(t, err)
		assert.Equal(t, []string{"t1", "t2"}, summaryIDs(got))
		require.NotNil(t, got[0].LabName)
		assert.Equal(t, "Alpha Diagnostics", *got[0].LabName)
		assert.Nil(t, got[1].LabName)
		links.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("keeps generic test offered by a lab in radius", func(t *testing.T) {
		svc, tests, labs, links := newCatalog(nil)
		tests.On("List", mock.Anything, mock.Anything).Return([]*entities.Test{{ID: "x", Name: "Test X"}}, nil)
		labs.On("List", mock.Anything, mock.MatchedBy(func(f repositories.LabFilter) bool {
			return f.HasCoordinates && *f.IsActive
		})).Return([]*entities.Lab{lab("a", "Lab A", &mumbaiLat, &mumbaiLon)}, nil)
		links.On("List", mock.Anything, repositories.LabTestFilter{
			LabIDs: []string{"a"}, TestIDs: []string{"x"}, IsAvailable: ptr(true),
		}).Return([]*entities.LabTest{{LabID: "a", TestID: "x", IsAvailable: true}}, nil)

		got, err := svc.SearchTests(ctx, services.TestSearchFilter{Latitude: &mumbaiLat, Longitude: &mumbaiLon, RadiusKm: 30})

		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, summaryIDs(got))
	})

	t.Run("drops generic tests when no lab is in radius", func(t *testing.T) {
		svc, tests, labs, links := newCatalog(nil)
		tests.On("List", mock.Anything, mock.Anything).Return([]*entities.Test{{ID: "x", Name: "Test X"}}, nil)
		labs.On("List", mock.Anything, mock.Anything).Return([]*entities.Lab{lab("a", "Lab A", &mumbaiLat, &mumbaiLon)}, nil)

		got, err := svc.SearchTests(ctx, services.TestSearchFilter{Latitude: &delhiLat, Longitude: &delhiLon})

		require.NoError(t, err)
		assert.Empty(t, got)
		links.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("filters lab owned tests by their lab", func(t *testing.T) {
		svc, tests, labs, _ := newCatalog(nil)
		inactive := lab("off", "Closed", &mumbaiLat, &mumbaiLon)
		inactive.IsActive = false
		tests.On("List", mock.Anything, mock.Anything).Return([]*entities.Test{
			{ID: "near", Name: "A", LabID: ptr("mumbai")},
			{ID: "far", Name: "B", LabID: ptr("delhi")},
			{ID: "unlocated", Name: "C", LabID: ptr("nowhere")},
			{ID: "closed", Name: "D", LabID: ptr("off")},
			{ID: "orphan", Name: "E", LabID: ptr("missing")},
		}, nil)
		labs.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.Lab{
			lab("mumbai", "Mumbai Lab", &mumbaiLat, &mumbaiLon),
			lab("delhi", "Delhi Lab", &delhiLat, &delhiLon),
			lab("nowhere", "Nowhere Lab", nil, nil),
			inactive,
		}, nil)

		got, err := svc.SearchTests(ctx, services.TestSearchFilter{Latitude: &mumbaiLat, Longitude: &mumbaiLon})

		require.NoError(t, err)
		assert.Equal(t, []string{"near"}, summaryIDs(got))
		assert.Equal(t, "Mumbai Lab", *got[0].LabName)
	})

	t.Run("default radius is thirty kilometres", func(t *testing.T) {
		svc, tests, labs, _ := newCatalog(nil)
		tests.On("List", mock.Anything, mock.Anything).Return([]*entities.Test{{ID: "pune", Name: "A", LabID: ptr("pune")}}, nil)
		labs.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.Lab{lab("pune", "Pune Lab", &puneLat, &puneLon)}, nil)

		got, err := svc.SearchTests(ctx, services.TestSearchFilter{Latitude: &mumbaiLat, Longitude: &mumbaiLon})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = svc.SearchTests(ctx, services.TestSearchFilter{Latitude: &mumbaiLat, Longitude: &mumbaiLon, RadiusKm: 200})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		svc, tests, _, _ := newCatalog(nil)
		tests.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		_, err := svc.SearchTests(ctx, services.TestSearchFilter{})
		assert.Error(t, err)
	})
}

func TestTestCatalogService_GetTest(t *testing.T) {
	svc, tests, labs, _ := newCatalog(nil)
	tests.On("GetByID", mock.Anything, "t1").Return(&entities.Test{ID: "t1", LabID: ptr("a")}, nil)
	labs.On("GetByID", mock.Anything, "a").Return(lab("a", "Alpha", nil, nil), nil)

	got, err := svc.GetTest(context.Background(), "t1")

	require.NoError(t, err)
	assert.Equal(t, "Alpha", *got.LabName)
}

func TestTestCatalogService_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the search index", func(t *testing.T) {
		index := new(MockTestSearchIndex)
		svc, tests, _, _ := newCatalog(index)
		index.On("Suggest", mock.Anything, "cbc", 8).Return([]entities.TestSuggestion{{ID: "t1", Name: "CBC"}}, nil)

		got, err := svc.Suggest(ctx, "cbc", 0)

		require.NoError(t, err)
		assert.Len(t, got, 1)
		tests.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("falls back to the database", func(t *testing.T) {
		index := new(MockTestSearchIndex)
		svc, tests, _, _ := newCatalog(index)
		index.On("Suggest", mock.Anything, "cbc", 5).Return(nil, errors.New("unavailable"))
		tests.On("List", mock.Anything, mock.MatchedBy(func(f repositories.TestFilter) bool {
			return f.SearchText == "cbc" && f.Limit == 5
		})).Return([]*entities.Test{{ID: "t1", Name: "CBC", TestType: entities.TestTypeHome}}, nil)

		got, err := svc.Suggest(ctx, "cbc", 5)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, entities.TestTypeHome, got[0].TestType)
	})

	t.Run("blank query", func(t *testing.T) {
		svc, _, _, _ := newCatalog(nil)
		got, err := svc.Suggest(ctx, "  ", 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
