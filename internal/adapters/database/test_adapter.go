package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

var testColumns = []interface{}{
	"id", "name", "description", "category", "price", "duration",
	"test_type", "lab_id", "is_active", "created_at", "updated_at",
}

// TestAdapter implements the TestRepository interface
type TestAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTestAdapter creates a new test catalog adapter
func NewTestAdapter(client *postgres.Client) repositories.TestRepository {
	return &TestAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create creates a new test
func (a *TestAdapter) Create(ctx context.Context, test *entities.Test) error {
	now := time.Now()
	if test.CreatedAt.IsZero() {
		test.CreatedAt = now
	}
	test.UpdatedAt = now

	record := testRecord(test)
	record["id"] = test.ID
	record["lab_id"] = test.LabID
	record["created_at"] = test.CreatedAt

	query, args, err := a.db.Insert("tests").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create test", err)
	}
	return nil
}

// GetByID retrieves a test by ID
func (a *TestAdapter) GetByID(ctx context.Context, id string) (*entities.Test, error) {
	query, args, err := a.db.Select(testColumns...).
		From("tests").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	test := &entities.Test{}
	err = a.client.DBX().GetContext(ctx, test, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("test with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get test", err)
	}
	return test, nil
}

// GetByIDs retrieves multiple tests by their IDs
func (a *TestAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Test, error) {
	if len(ids) == 0 {
		return []*entities.Test{}, nil
	}

	query, args, err := a.db.Select(testColumns...).
		From("tests").
		Where(anyOf("id", ids)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	tests := []*entities.Test{}
	if err := a.client.DBX().SelectContext(ctx, &tests, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to get tests", err)
	}
	return tests, nil
}

// Update updates a test
func (a *TestAdapter) Update(ctx context.Context, test *entities.Test) error {
	test.UpdatedAt = time.Now()

	query, args, err := a.db.Update("tests").
		Set(testRecord(test)).
		Where(goqu.Ex{"id": test.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update test", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("test with id %s not found", test.ID))
	}
	return nil
}

// Delete deletes a test
func (a *TestAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("tests").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete test", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("test with id %s not found", id))
	}
	return nil
}

// List retrieves tests matching the filter
func (a *TestAdapter) List(ctx context.Context, filter repositories.TestFilter) ([]*entities.Test, error) {
	ds := a.db.Select(testColumns...).
		From("tests").
		Where(testFilterExpressions(filter)...)

	switch filter.OrderBy {
	case repositories.TestOrderByNewest:
		ds = ds.Order(goqu.C("created_at").Desc(), goqu.C("id").Asc())
	default:
		ds = ds.Order(goqu.C("name").Asc(), goqu.C("id").Asc())
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	tests := []*entities.Test{}
	if err := a.client.DBX().SelectContext(ctx, &tests, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list tests", err)
	}
	return tests, nil
}

func testFilterExpressions(filter repositories.TestFilter) []exp.Expression {
	var where []exp.Expression
	if filter.IsActive != nil {
		where = append(where, goqu.Ex{"is_active": *filter.IsActive})
	}
	if filter.Category != "" {
		where = append(where, goqu.Ex{"category": filter.Category})
	}
	if filter.LabID != "" {
		where = append(where, goqu.Ex{"lab_id": filter.LabID})
	}
	if filter.SearchText != "" {
		pattern := containsPattern(filter.SearchText)
		where = append(where, goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("description").ILike(pattern),
		))
	}
	return where
}

func testRecord(test *entities.Test) goqu.Record {
	return goqu.Record{
		"name":        test.Name,
		"description": test.Description,
		"category":    test.Category,
		"price":       test.Price,
		"duration":    test.Duration,
		"test_type":   test.TestType,
		"is_active":   test.IsActive,
		"updated_at":  test.UpdatedAt,
	}
}
