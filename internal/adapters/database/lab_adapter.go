package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

var labColumns = []interface{}{
	"id", "user_id", "name", "address", "city", "state", "pincode", "phone",
	"email", "latitude", "longitude", "is_active", "is_verified",
	"created_at", "updated_at",
}

// LabAdapter implements the LabRepository interface
type LabAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLabAdapter creates a new lab adapter
func NewLabAdapter(client *postgres.Client) repositories.LabRepository {
	return &LabAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create creates a new lab
func (a *LabAdapter) Create(ctx context.Context, lab *entities.Lab) error {
	now := time.Now()
	if lab.CreatedAt.IsZero() {
		lab.CreatedAt = now
	}
	lab.UpdatedAt = now

	record := labRecord(lab)
	record["id"] = lab.ID
	record["user_id"] = lab.UserID
	record["created_at"] = lab.CreatedAt

	query, args, err := a.db.Insert("labs").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("account already has a lab")
		}
		return apperrors.NewInternalError("failed to create lab", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// GetByID retrieves a lab by ID
func (a *LabAdapter) GetByID(ctx context.Context, id string) (*entities.Lab, error) {
	query, args, err := a.db.Select(labColumns...).
		From("labs").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	lab := &entities.Lab{}
	err = a.client.DBX().GetContext(ctx, lab, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("lab with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get lab", err)
	}
	return lab, nil
}

// GetByIDs retrieves multiple labs by their IDs
func (a *LabAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Lab, error) {
	if len(ids) == 0 {
		return []*entities.Lab{}, nil
	}

	query, args, err := a.db.Select(labColumns...).
		From("labs").
		Where(anyOf("id", ids)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	labs := []*entities.Lab{}
	if err := a.client.DBX().SelectContext(ctx, &labs, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to get labs", err)
	}
	return labs, nil
}

// Update updates a lab
func (a *LabAdapter) Update(ctx context.Context, lab *entities.Lab) error {
	lab.UpdatedAt = time.Now()

	query, args, err := a.db.Update("labs").
		Set(labRecord(lab)).
		Where(goqu.Ex{"id": lab.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update lab", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("lab with id %s not found", lab.ID))
	}
	return nil
}

// List retrieves labs matching the filter, ordered by name
func (a *LabAdapter) List(ctx context.Context, filter repositories.LabFilter) ([]*entities.Lab, error) {
	ds := a.db.Select(labColumns...).
		From("labs").
		Where(labFilterExpressions(filter)...).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc())

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

	labs := []*entities.Lab{}
	if err := a.client.DBX().SelectContext(ctx, &labs, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list labs", err)
	}
	return labs, nil
}

func labFilterExpressions(filter repositories.LabFilter) []exp.Expression {
	var where []exp.Expression
	if filter.IsActive != nil {
		where = append(where, goqu.Ex{"is_active": *filter.IsActive})
	}
	if filter.IsVerified != nil {
		where = append(where, goqu.Ex{"is_verified": *filter.IsVerified})
	}
	if filter.City != "" {
		where = append(where, goqu.C("city").ILike(containsPattern(filter.City)))
	}
	if filter.Pincode != "" {
		where = append(where, goqu.Ex{"pincode": filter.Pincode})
	}
	if filter.HasCoordinates {
		where = append(where, goqu.C("latitude").IsNotNull(), goqu.C("longitude").IsNotNull())
	}
	return where
}

func labRecord(lab *entities.Lab) goqu.Record {
	return goqu.Record{
		"name":        lab.Name,
		"address":     lab.Address,
		"city":        lab.City,
		"state":       lab.State,
		"pincode":     lab.Pincode,
		"phone":       lab.Phone,
		"email":       lab.Email,
		"latitude":    lab.Latitude,
		"longitude":   lab.Longitude,
		"is_active":   lab.IsActive,
		"is_verified": lab.IsVerified,
		"updated_at":  lab.UpdatedAt,
	}
}
