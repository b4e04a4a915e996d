package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/geo"
)

// DefaultSearchRadiusKm is used when a located search gives no radius
const DefaultSearchRadiusKm = 30.0

// TestSearchFilter narrows the public test catalog
type TestSearchFilter struct {
	Category   string
	SearchText string
	Latitude   *float64
	Longitude  *float64
	RadiusKm   float64
}

// TestCatalogService resolves the publicly visible test list
type TestCatalogService struct {
	testRepo        repositories.TestRepository
	labRepo         repositories.LabRepository
	labTestRepo     repositories.LabTestRepository
	searchIndex     repositories.TestSearchIndex
	defaultRadiusKm float64
	requireVerified bool
	metrics         *observability.Metrics
}

// NewTestCatalogService creates a new test catalog service. searchIndex may
// be nil, in which case suggestions come from the database.
func NewTestCatalogService(
	testRepo repositories.TestRepository,
	labRepo repositories.LabRepository,
	labTestRepo repositories.LabTestRepository,
	searchIndex repositories.TestSearchIndex,
	defaultRadiusKm float64,
	requireVerified bool,
	metrics *observability.Metrics,
) *TestCatalogService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultSearchRadiusKm
	}
	return &TestCatalogService{
		testRepo:        testRepo,
		labRepo:         labRepo,
		labTestRepo:     labTestRepo,
		searchIndex:     searchIndex,
		defaultRadiusKm: defaultRadiusKm,
		requireVerified: requireVerified,
		metrics:         metrics,
	}
}

// SearchTests returns active tests matching category and text, ordered by
// name. When coordinates are supplied, a lab-owned test is kept only if its
// lab is discoverable, located and within the radius; a generic test is kept
// only if an available link ties it to such a lab.
func (s *TestCatalogService) SearchTests(ctx context.Context, filter TestSearchFilter) ([]entities.TestSummary, error) {
	tests, err := s.testRepo.List(ctx, repositories.TestFilter{
		IsActive:   boolPtr(true),
		Category:   normalizeCategory(filter.Category),
		SearchText: strings.TrimSpace(filter.SearchText),
		OrderBy:    repositories.TestOrderByName,
	})
	if err != nil {
		return nil, err
	}

	owners, err := s.ownerLabs(ctx, tests)
	if err != nil {
		return nil, err
	}

	if origin, ok := geo.NewPoint(filter.Latitude, filter.Longitude); ok {
		radius := filter.RadiusKm
		if radius <= 0 {
			radius = s.defaultRadiusKm
		}
		tests, err = s.withinRadius(ctx, tests, owners, origin, radius)
		if err != nil {
			return nil, err
		}
	}

	summaries := make([]entities.TestSummary, 0, len(tests))
	for _, t := range tests {
		summaries = append(summaries, entities.NewTestSummary(t, labName(owners, t.LabID)))
	}

	observability.RecordSearchResults(ctx, s.metrics, "tests", len(summaries))
	return summaries, nil
}

func (s *TestCatalogService) withinRadius(
	ctx context.Context,
	tests []*entities.Test,
	owners map[string]*entities.Lab,
	origin geo.Point,
	radiusKm float64,
) ([]*entities.Test, error) {
	var genericIDs []string
	for _, t := range tests {
		if t.IsGeneric() {
			genericIDs = append(genericIDs, t.ID)
		}
	}

	offered, err := s.offeredNearby(ctx, genericIDs, origin, radiusKm)
	if err != nil {
		return nil, err
	}

	kept := make([]*entities.Test, 0, len(tests))
	for _, t := range tests {
		if t.IsGeneric() {
			if offered[t.ID] {
				kept = append(kept, t)
			}
			continue
		}
		lab, ok := owners[*t.LabID]
		if !ok || !lab.IsDiscoverable(s.requireVerified) {
			continue
		}
		if loc, ok := lab.Location(); ok && geo.Within(origin, loc, radiusKm) {
			kept = append(kept, t)
		}
	}

	log.Ctx(ctx).Debug().
		Float64("radius_km", radiusKm).
		Int("before", len(tests)).
		Int("after", len(kept)).
		Msg("filtered tests by location")
	return kept, nil
}

// offeredNearby returns the generic test ids offered by at least one
// discoverable lab within radiusKm of origin.
func (s *TestCatalogService) offeredNearby(ctx context.Context, testIDs []string, origin geo.Point, radiusKm float64) (map[string]bool, error) {
	offered := make(map[string]bool)
	if len(testIDs) == 0 {
		return offered, nil
	}

	f := repositories.LabFilter{IsActive: boolPtr(true), HasCoordinates: true}
	if s.requireVerified {
		f.IsVerified = boolPtr(true)
	}
	labs, err := s.labRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	var nearby []string
	for _, lab := range labs {
		if loc, ok := lab.Location(); ok && geo.Within(origin, loc, radiusKm) {
			nearby = append(nearby, lab.ID)
		}
	}
	if len(nearby) == 0 {
		return offered, nil
	}

	links, err := s.labTestRepo.List(ctx, repositories.LabTestFilter{
		LabIDs:      nearby,
		TestIDs:     testIDs,
		IsAvailable: boolPtr(true),
	})
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		offered[link.TestID] = true
	}
	return offered, nil
}

func (s *TestCatalogService) ownerLabs(ctx context.Context, tests []*entities.Test) (map[string]*entities.Lab, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range tests {
		if t.LabID != nil && !seen[*t.LabID] {
			seen[*t.LabID] = true
			ids = append(ids, *t.LabID)
		}
	}

	owners := make(map[string]*entities.Lab, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}
	labs, err := s.labRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range labs {
		owners[l.ID] = l
	}
	return owners, nil
}

// GetTest returns a test with its owning lab's name
func (s *TestCatalogService) GetTest(ctx context.Context, id string) (*entities.TestSummary, error) {
	test, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var name *string
	if test.LabID != nil {
		if lab, err := s.labRepo.GetByID(ctx, *test.LabID); err == nil {
			name = &lab.Name
		}
	}

	summary := entities.NewTestSummary(test, name)
	return &summary, nil
}

// Suggest returns quick matches for search-as-you-type. The search index is
// preferred; the database is used when it is absent or failing.
func (s *TestCatalogService) Suggest(ctx context.Context, query string, limit int) ([]entities.TestSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entities.TestSuggestion{}, nil
	}
	if limit <= 0 || limit > 20 {
		limit = 8
	}

	if s.searchIndex != nil {
		suggestions, err := s.searchIndex.Suggest(ctx, query, limit)
		if err == nil {
			return suggestions, nil
		}
		log.Ctx(ctx).Warn().Err(err).Msg("test index unavailable, falling back to database")
	}

	tests, err := s.testRepo.List(ctx, repositories.TestFilter{
		IsActive:   boolPtr(true),
		SearchText: query,
		OrderBy:    repositories.TestOrderByName,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	owners, err := s.ownerLabs(ctx, tests)
	if err != nil {
		return nil, err
	}

	suggestions := make([]entities.TestSuggestion, 0, len(tests))
	for _, t := range tests {
		suggestions = append(suggestions, entities.TestSuggestion{
			ID:       t.ID,
			Name:     t.Name,
			Category: t.Category,
			TestType: t.TestType,
			LabName:  labName(owners, t.LabID),
		})
	}
	return suggestions, nil
}

func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if strings.EqualFold(c, entities.CategoryAll) {
		return ""
	}
	return c
}

func labName(owners map[string]*entities.Lab, labID *string) *string {
	if labID == nil {
		return nil
	}
	if lab, ok := owners[*labID]; ok {
		name := lab.Name
		return &name
	}
	return nil
}
