package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	tsclient "github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/typesense"
)

const defaultSuggestLimit = 8

// TypesenseAdapter implements the test search index using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements TestSearchIndex
var _ repositories.TestSearchIndex = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index indexes a test
func (a *TypesenseAdapter) Index(ctx context.Context, test *entities.Test, labName *string) error {
	_, err := a.client.Client().Collection(tsclient.TestsCollection).Documents().Upsert(ctx, testDocument(test, labName))
	if err != nil {
		return fmt.Errorf("failed to index test: %w", err)
	}
	return nil
}

// Delete removes a test from index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.TestsCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete test from index: %w", err)
	}
	return nil
}

// Suggest runs a prefix search over test names, descriptions and categories
func (a *TypesenseAdapter) Suggest(ctx context.Context, query string, limit int) ([]entities.TestSuggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return []entities.TestSuggestion{}, nil
	}

	params := &api.SearchCollectionParams{
		Q:        pointer.String(q),
		QueryBy:  pointer.String("name,category,description"),
		FilterBy: pointer.String("is_active:=true"),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.TestsCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search tests: %w", err)
	}

	suggestions := []entities.TestSuggestion{}
	if result.Hits == nil {
		return suggestions, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if s, ok := suggestionFromDocument(*hit.Document); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions, nil
}

func testDocument(test *entities.Test, labName *string) map[string]interface{} {
	doc := map[string]interface{}{
		"id":         test.ID,
		"name":       test.Name,
		"category":   test.Category,
		"test_type":  string(test.TestType),
		"price":      test.Price.InexactFloat64(),
		"is_active":  test.IsActive,
		"created_at": test.CreatedAt.Unix(),
	}
	if test.Description != nil {
		doc["description"] = *test.Description
	}
	if labName != nil {
		doc["lab_name"] = *labName
	}
	return doc
}

// Typesense returns documents as loosely typed maps
func suggestionFromDocument(doc map[string]interface{}) (entities.TestSuggestion, bool) {
	id, _ := doc["id"].(string)
	name, _ := doc["name"].(string)
	if id == "" || name == "" {
		return entities.TestSuggestion{}, false
	}
	s := entities.TestSuggestion{ID: id, Name: name}
	s.Category, _ = doc["category"].(string)
	if tt, ok := doc["test_type"].(string); ok {
		s.TestType = entities.TestType(tt)
	}
	if ln, ok := doc["lab_name"].(string); ok && ln != "" {
		s.LabName = &ln
	}
	return s, true
}
