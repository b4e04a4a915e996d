package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/geo"
)

// LabSearchFilter narrows lab discovery. Coordinates only order the result;
// they never exclude a lab.
type LabSearchFilter struct {
	City      string
	Pincode   string
	TestID    string
	Latitude  *float64
	Longitude *float64
}

func (f LabSearchFilter) hasLocation() bool {
	return f.City != "" || f.Pincode != ""
}

// LabDirectoryService resolves which labs match a discovery query
type LabDirectoryService struct {
	labRepo         repositories.LabRepository
	testRepo        repositories.TestRepository
	labTestRepo     repositories.LabTestRepository
	requireVerified bool
	metrics         *observability.Metrics
}

// NewLabDirectoryService creates a new lab directory service
func NewLabDirectoryService(
	labRepo repositories.LabRepository,
	testRepo repositories.TestRepository,
	labTestRepo repositories.LabTestRepository,
	requireVerified bool,
	metrics *observability.Metrics,
) *LabDirectoryService {
	return &LabDirectoryService{
		labRepo:         labRepo,
		testRepo:        testRepo,
		labTestRepo:     labTestRepo,
		requireVerified: requireVerified,
		metrics:         metrics,
	}
}

// FindLabs returns the active labs passing the city/pincode filter. When a
// test is given, only labs owning it or offering it through an available
// link are kept. With coordinates, results are annotated with distance and
// sorted nearest first, labs without coordinates last.
func (s *LabDirectoryService) FindLabs(ctx context.Context, filter LabSearchFilter) ([]entities.LabResult, error) {
	filter.City = strings.TrimSpace(filter.City)
	filter.Pincode = strings.TrimSpace(filter.Pincode)

	labs, err := s.labRepo.List(ctx, s.discoverableFilter(repositories.LabFilter{
		City:    filter.City,
		Pincode: filter.Pincode,
	}))
	if err != nil {
		return nil, err
	}
	if filter.hasLocation() && len(labs) == 0 {
		return []entities.LabResult{}, nil
	}

	if filter.TestID != "" {
		labs, err = s.offering(ctx, labs, filter)
		if err != nil {
			return nil, err
		}
	}

	results := make([]entities.LabResult, 0, len(labs))
	for _, lab := range labs {
		results = append(results, entities.LabResult{Lab: *lab})
	}

	if origin, ok := geo.NewPoint(filter.Latitude, filter.Longitude); ok {
		sortByDistance(results, origin)
	}

	observability.RecordSearchResults(ctx, s.metrics, "labs", len(results))
	return results, nil
}

// offering keeps the labs of candidates that own or offer the filter's test
func (s *LabDirectoryService) offering(ctx context.Context, candidates []*entities.Lab, filter LabSearchFilter) ([]*entities.Lab, error) {
	test, err := s.testRepo.GetByID(ctx, filter.TestID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !test.IsActive {
		return nil, nil
	}

	matched := make(map[string]bool)
	if test.LabID != nil {
		matched[*test.LabID] = true
	}

	linkFilter := repositories.LabTestFilter{
		TestIDs:     []string{test.ID},
		IsAvailable: boolPtr(true),
	}
	if filter.hasLocation() {
		linkFilter.LabIDs = labIDs(candidates)
	}
	links, err := s.labTestRepo.List(ctx, linkFilter)
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		matched[link.LabID] = true
	}

	offering := make([]*entities.Lab, 0, len(matched))
	for _, lab := range candidates {
		if matched[lab.ID] {
			offering = append(offering, lab)
		}
	}

	log.Ctx(ctx).Debug().
		Str("test_id", test.ID).
		Int("candidates", len(candidates)).
		Int("offering", len(offering)).
		Msg("resolved labs offering test")
	return offering, nil
}

func (s *LabDirectoryService) discoverableFilter(f repositories.LabFilter) repositories.LabFilter {
	f.IsActive = boolPtr(true)
	if s.requireVerified {
		f.IsVerified = boolPtr(true)
	}
	return f
}

// sortByDistance annotates results with their distance from origin and
// orders them ascending; labs without coordinates sort last.
func sortByDistance(results []entities.LabResult, origin geo.Point) {
	for i := range results {
		if loc, ok := results[i].Location(); ok {
			d := geo.Distance(origin, loc)
			results[i].DistanceKm = &d
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].DistanceKm, results[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

func labIDs(labs []*entities.Lab) []string {
	ids := make([]string, 0, len(labs))
	for _, l := range labs {
		ids = append(ids, l.ID)
	}
	return ids
}

func boolPtr(b bool) *bool {
	return &b
}

// GetLab returns a lab by id
func (s *LabDirectoryService) GetLab(ctx context.Context, id string) (*entities.Lab, error) {
	return s.labRepo.GetByID(ctx, id)
}
