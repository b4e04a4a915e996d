package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

// LabTestAdapter implements the LabTestRepository interface
type LabTestAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLabTestAdapter creates a new availability link adapter
func NewLabTestAdapter(client *postgres.Client) repositories.LabTestRepository {
	return &LabTestAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Upsert creates or updates the (lab, test) link. The stored id and
// creation time are written back into link.
func (a *LabTestAdapter) Upsert(ctx context.Context, link *entities.LabTest) error {
	now := time.Now()
	link.UpdatedAt = now
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}

	query, args, err := a.db.Insert("lab_tests").
		Rows(goqu.Record{
			"id":           link.ID,
			"lab_id":       link.LabID,
			"test_id":      link.TestID,
			"price":        link.Price,
			"is_available": link.IsAvailable,
			"created_at":   link.CreatedAt,
			"updated_at":   link.UpdatedAt,
		}).
		OnConflict(goqu.DoUpdate("lab_id, test_id", goqu.Record{
			"price":        goqu.L("EXCLUDED.price"),
			"is_available": goqu.L("EXCLUDED.is_available"),
			"updated_at":   goqu.L("EXCLUDED.updated_at"),
		})).
		Returning("id", "created_at").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if err := a.client.DBX().QueryRowxContext(ctx, query, args...).Scan(&link.ID, &link.CreatedAt); err != nil {
		return apperrors.NewInternalError("failed to save lab test", err)
	}
	return nil
}

// Delete removes the link between a lab and a test
func (a *LabTestAdapter) Delete(ctx context.Context, labID, testID string) error {
	query, args, err := a.db.Delete("lab_tests").
		Where(goqu.Ex{"lab_id": labID, "test_id": testID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete lab test", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("lab %s does not offer test %s", labID, testID))
	}
	return nil
}

// List retrieves links matching the filter
func (a *LabTestAdapter) List(ctx context.Context, filter repositories.LabTestFilter) ([]*entities.LabTest, error) {
	var where []exp.Expression
	if len(filter.LabIDs) > 0 {
		where = append(where, anyOf("lab_id", filter.LabIDs))
	}
	if len(filter.TestIDs) > 0 {
		where = append(where, anyOf("test_id", filter.TestIDs))
	}
	if filter.IsAvailable != nil {
		where = append(where, goqu.Ex{"is_available": *filter.IsAvailable})
	}

	query, args, err := a.db.Select("id", "lab_id", "test_id", "price", "is_available", "created_at", "updated_at").
		From("lab_tests").
		Where(where...).
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	links := []*entities.LabTest{}
	if err := a.client.DBX().SelectContext(ctx, &links, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list lab tests", err)
	}
	return links, nil
}
