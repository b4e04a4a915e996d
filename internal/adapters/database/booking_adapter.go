package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

var bookingColumns = []interface{}{
	"id", "user_id", "lab_id", "booking_type", "patient_name", "patient_age",
	"booking_date", "booking_time", "address", "city", "state", "pincode",
	"phone", "notes", "prescription_url", "total_amount", "status",
	"created_at", "updated_at",
}

var bookingItemColumns = []interface{}{"id", "booking_id", "test_id", "price", "created_at"}

type bookingRow struct {
	ID              string                 `db:"id"`
	UserID          string                 `db:"user_id"`
	LabID           string                 `db:"lab_id"`
	BookingType     entities.BookingType   `db:"booking_type"`
	PatientName     string                 `db:"patient_name"`
	PatientAge      int                    `db:"patient_age"`
	BookingDate     sql.NullTime           `db:"booking_date"`
	BookingTime     sql.NullString         `db:"booking_time"`
	Address         sql.NullString         `db:"address"`
	City            string                 `db:"city"`
	State           sql.NullString         `db:"state"`
	Pincode         sql.NullString         `db:"pincode"`
	Phone           string                 `db:"phone"`
	Notes           sql.NullString         `db:"notes"`
	PrescriptionURL sql.NullString         `db:"prescription_url"`
	TotalAmount     decimal.Decimal        `db:"total_amount"`
	Status          entities.BookingStatus `db:"status"`
	CreatedAt       time.Time              `db:"created_at"`
	UpdatedAt       time.Time              `db:"updated_at"`
}

func (r *bookingRow) toEntity() *entities.Booking {
	b := &entities.Booking{
		ID:          r.ID,
		UserID:      r.UserID,
		LabID:       r.LabID,
		PatientName: r.PatientName,
		PatientAge:  r.PatientAge,
		City:        r.City,
		Phone:       r.Phone,
		TotalAmount: r.TotalAmount,
		Status:      r.Status,
		Items:       []entities.BookingItem{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Notes.Valid {
		b.Notes = &r.Notes.String
	}

	switch r.BookingType {
	case entities.BookingTypeHomeCollection:
		b.Details = &entities.HomeCollection{
			Address:         r.Address.String,
			Pincode:         r.Pincode.String,
			State:           r.State.String,
			PrescriptionURL: r.PrescriptionURL.String,
		}
	default:
		visit := &entities.ClinicVisit{
			Date:     r.BookingDate.Time,
			TimeSlot: r.BookingTime.String,
		}
		if r.PrescriptionURL.Valid {
			visit.PrescriptionURL = &r.PrescriptionURL.String
		}
		b.Details = visit
	}
	return b
}

func bookingRecord(b *entities.Booking) goqu.Record {
	record := goqu.Record{
		"id":               b.ID,
		"user_id":          b.UserID,
		"lab_id":           b.LabID,
		"booking_type":     b.Type(),
		"patient_name":     b.PatientName,
		"patient_age":      b.PatientAge,
		"booking_date":     nil,
		"booking_time":     nil,
		"address":          nil,
		"city":             b.City,
		"state":            nil,
		"pincode":          nil,
		"phone":            b.Phone,
		"notes":            b.Notes,
		"prescription_url": nil,
		"total_amount":     b.TotalAmount,
		"status":           b.Status,
		"created_at":       b.CreatedAt,
		"updated_at":       b.UpdatedAt,
	}

	switch d := b.Details.(type) {
	case *entities.HomeCollection:
		record["address"] = d.Address
		record["pincode"] = d.Pincode
		record["state"] = d.State
		record["prescription_url"] = d.PrescriptionURL
	case *entities.ClinicVisit:
		record["booking_date"] = d.Date.Format(entities.BookingDateLayout)
		record["booking_time"] = d.TimeSlot
		record["prescription_url"] = d.PrescriptionURL
	}
	return record
}

// BookingAdapter implements the BookingRepository interface
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create inserts the booking and its items in one transaction
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	if booking.Details == nil {
		return apperrors.NewValidationError("booking type details are required")
	}

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	bookingQuery, _, err := a.db.Insert("bookings").Rows(bookingRecord(booking)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	items := make([]interface{}, 0, len(booking.Items))
	for i := range booking.Items {
		item := &booking.Items[i]
		item.BookingID = booking.ID
		item.CreatedAt = now
		items = append(items, goqu.Record{
			"id":         item.ID,
			"booking_id": item.BookingID,
			"test_id":    item.TestID,
			"price":      item.Price,
			"created_at": item.CreatedAt,
		})
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Ctx(ctx).Warn().Err(err).Str("booking_id", booking.ID).Msg("failed to roll back booking transaction")
		}
	}()

	if _, err := tx.ExecContext(ctx, bookingQuery); err != nil {
		return apperrors.NewInternalError("failed to create booking", err)
	}

	if len(items) > 0 {
		itemsQuery, _, err := a.db.Insert("booking_items").Rows(items...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, itemsQuery); err != nil {
			return apperrors.NewInternalError("failed to create booking items", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit booking", err)
	}
	return nil
}

// GetByID retrieves a booking with its items
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row bookingRow
	err = a.client.DBX().GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}

	bookings := []*entities.Booking{row.toEntity()}
	if err := a.attachItems(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings[0], nil
}

// UpdateStatus sets the status of a booking
func (a *BookingAdapter) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) error {
	query, args, err := a.db.Update("bookings").
		Set(goqu.Record{"status": status, "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update booking status", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	return nil
}

// List retrieves bookings with their items, newest first
func (a *BookingAdapter) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	var where []exp.Expression
	if filter.UserID != "" {
		where = append(where, goqu.Ex{"user_id": filter.UserID})
	}
	if filter.LabID != "" {
		where = append(where, goqu.Ex{"lab_id": filter.LabID})
	}
	if filter.Status != "" {
		where = append(where, goqu.Ex{"status": filter.Status})
	}

	ds := a.db.Select(bookingColumns...).
		From("bookings").
		Where(where...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc())
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

	var rows []bookingRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}

	bookings := make([]*entities.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, rows[i].toEntity())
	}
	if err := a.attachItems(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (a *BookingAdapter) attachItems(ctx context.Context, bookings []*entities.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]string, len(bookings))
	byID := make(map[string]*entities.Booking, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		byID[b.ID] = b
	}

	query, args, err := a.db.Select(bookingItemColumns...).
		From("booking_items").
		Where(anyOf("booking_id", ids)).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	var items []entities.BookingItem
	if err := a.client.DBX().SelectContext(ctx, &items, query, args...); err != nil {
		return apperrors.NewInternalError("failed to load booking items", err)
	}
	for _, item := range items {
		if b, ok := byID[item.BookingID]; ok {
			b.Items = append(b.Items, item)
		}
	}
	return nil
}
