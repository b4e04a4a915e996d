package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/loaders"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

type bookingFixture struct {
	svc      *services.BookingService
	bookings *MockBookingRepository
	tests    *MockTestRepository
	labs     *MockLabRepository
}

func newBookingFixture(strict bool, slots services.SlotPolicy) *bookingFixture {
	f := &bookingFixture{
		bookings: new(MockBookingRepository),
		tests:    new(MockTestRepository),
		labs:     new(MockLabRepository),
	}
	f.svc = services.NewBookingService(f.bookings, f.tests, f.labs, slots, strict, nil)
	return f
}

var (
	patient  = &entities.Principal{ID: "user-1", Role: entities.RoleUser}
	stranger = &entities.Principal{ID: "user-2", Role: entities.RoleUser}
	labOwner = &entities.Principal{ID: "lab-user", Role: entities.RoleLab, LabID: ptr("lab-1")}
	otherLab = &entities.Principal{ID: "lab-user-2", Role: entities.RoleLab, LabID: ptr("lab-2")}
	admin    = &entities.Principal{ID: "admin", Role: entities.RoleAdmin}
)

func clinicRequest() services.CreateBookingRequest {
	return services.CreateBookingRequest{
		LabID:       "lab-1",
		TestID:      "clinic-test",
		PatientName: "Asha",
		PatientAge:  34,
		Phone:       "9999999999",
		City:        "Mumbai",
		BookingDate: "2025-01-10",
		BookingTime: "10:00 AM",
	}
}

func homeRequest() services.CreateBookingRequest {
	req := clinicRequest()
	req.TestID = "home-test"
	req.BookingDate, req.BookingTime = "", ""
	req.Address = "12 Marine Drive"
	req.Pincode = "400002"
	req.State = "Maharashtra"
	req.PrescriptionURL = "https://files.example/rx.pdf"
	return req
}

func (f *bookingFixture) withTests() {
	f.tests.On("GetByID", mock.Anything, "clinic-test").Return(&entities.Test{
		ID: "clinic-test", TestType: entities.TestTypeClinic, Price: decimal.NewFromInt(500), IsActive: true,
	}, nil)
	f.tests.On("GetByID", mock.Anything, "home-test").Return(&entities.Test{
		ID: "home-test", TestType: entities.TestTypeHome, Price: decimal.NewFromInt(800), IsActive: true,
	}, nil)
	f.labs.On("GetByID", mock.Anything, "lab-1").Return(lab("lab-1", "Alpha", nil, nil), nil)
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	return appErr.Fields
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("clinic visit", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			cv, ok := b.ClinicVisit()
			return ok && cv.TimeSlot == "10:00 AM" && cv.Date.Format("2006-01-02") == "2025-01-10" &&
				b.Status == entities.BookingStatusPending && b.UserID == "user-1" &&
				len(b.Items) == 1 && b.Items[0].Price.Equal(decimal.NewFromInt(500))
		})).Return(nil)

		booking, err := f.svc.CreateBooking(ctx, patient, clinicRequest())

		require.NoError(t, err)
		assert.Equal(t, entities.BookingTypeClinicVisit, booking.Type())
		_, isHome := booking.HomeCollection()
		assert.False(t, isHome)
		assert.NotNil(t, booking.Lab)
		assert.NotNil(t, booking.Items[0].Test)
		f.bookings.AssertExpectations(t)
	})

	t.Run("home test always books home collection", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

		req := homeRequest()
		req.BookingType = string(entities.BookingTypeClinicVisit)
		req.TotalAmount = ptr(decimal.NewFromInt(750))

		booking, err := f.svc.CreateBooking(ctx, patient, req)

		require.NoError(t, err)
		hc, ok := booking.HomeCollection()
		require.True(t, ok)
		assert.Equal(t, "400002", hc.Pincode)
		assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(750)))
		assert.True(t, booking.Items[0].Price.Equal(decimal.NewFromInt(750)))
	})

	t.Run("home collection hint on clinic test", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

		req := homeRequest()
		req.TestID = "clinic-test"
		req.BookingType = "home_collection"

		booking, err := f.svc.CreateBooking(ctx, patient, req)

		require.NoError(t, err)
		assert.Equal(t, entities.BookingTypeHomeCollection, booking.Type())
	})

	t.Run("home collection without prescription", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		req := homeRequest()
		req.PrescriptionURL = ""

		_, err := f.svc.CreateBooking(ctx, patient, req)

		assert.Equal(t, []string{"prescription_url"}, validationFields(t, err))
		assert.Contains(t, err.Error(), "prescription")
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("home collection without address fields", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		req := homeRequest()
		req.Pincode, req.State = "", " "

		_, err := f.svc.CreateBooking(ctx, patient, req)

		assert.Equal(t, []string{"pincode", "state"}, validationFields(t, err))
	})

	t.Run("clinic visit without date or time", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		req := clinicRequest()
		req.BookingTime = ""

		_, err := f.svc.CreateBooking(ctx, patient, req)

		assert.Equal(t, []string{"booking_time"}, validationFields(t, err))
	})

	t.Run("clinic visit with unknown slot", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		req := clinicRequest()
		req.BookingTime = "07:30 PM"

		_, err := f.svc.CreateBooking(ctx, patient, req)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("missing common fields", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		req := clinicRequest()
		req.PatientName = ""
		req.City = ""

		_, err := f.svc.CreateBooking(ctx, patient, req)

		assert.ElementsMatch(t, []string{"patient_name", "city"}, validationFields(t, err))
	})

	t.Run("patient age must be positive", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		req := clinicRequest()
		req.PatientAge = -3

		_, err := f.svc.CreateBooking(ctx, patient, req)

		assert.Equal(t, []string{"patient_age"}, validationFields(t, err))
	})

	t.Run("patient age has no upper bound", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.withTests()
		f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.PatientAge == 151
		})).Return(nil)
		req := clinicRequest()
		req.PatientAge = 151

		_, err := f.svc.CreateBooking(ctx, patient, req)

		require.NoError(t, err)
		f.bookings.AssertExpectations(t)
	})

	t.Run("unknown test", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.tests.On("GetByID", mock.Anything, "nope").Return(nil, apperrors.NewNotFoundError("test not found"))
		req := clinicRequest()
		req.TestID = "nope"

		_, err := f.svc.CreateBooking(ctx, patient, req)

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("requires a principal", func(t *testing.T) {
		f := newBookingFixture(false, nil)

		_, err := f.svc.CreateBooking(ctx, nil, clinicRequest())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthenticated))
	})

	t.Run("slot policy can reject", func(t *testing.T) {
		f := newBookingFixture(false, rejectAll{})
		f.withTests()

		_, err := f.svc.CreateBooking(ctx, patient, clinicRequest())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

type rejectAll struct{}

func (rejectAll) Allow(context.Context, *entities.Booking) error {
	return apperrors.NewConflictError("slot full")
}

func storedBooking(status entities.BookingStatus) *entities.Booking {
	return &entities.Booking{
		ID:      "b1",
		UserID:  "user-1",
		LabID:   "lab-1",
		Status:  status,
		Details: &entities.HomeCollection{Address: "a", Pincode: "p", State: "s", PrescriptionURL: "u"},
		Items:   []entities.BookingItem{{ID: "i1", BookingID: "b1", TestID: "home-test"}},
	}
}

func (f *bookingFixture) withExpansion() {
	f.labs.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.Lab{lab("lab-1", "Alpha", nil, nil)}, nil)
	f.tests.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.Test{{ID: "home-test"}}, nil)
}

func TestBookingService_GetBooking(t *testing.T) {
	ctx := context.Background()

	for name, principal := range map[string]*entities.Principal{
		"owner": patient, "lab": labOwner, "admin": admin,
	} {
		t.Run(name+" may view", func(t *testing.T) {
			f := newBookingFixture(false, nil)
			f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)
			f.withExpansion()

			booking, err := f.svc.GetBooking(ctx, principal, "b1")

			require.NoError(t, err)
			require.NotNil(t, booking.Lab)
			assert.Equal(t, "Alpha", booking.Lab.Name)
			assert.NotNil(t, booking.Items[0].Test)
		})
	}

	for name, principal := range map[string]*entities.Principal{
		"unrelated user": stranger, "other lab": otherLab,
	} {
		t.Run(name+" is forbidden", func(t *testing.T) {
			f := newBookingFixture(false, nil)
			f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)

			_, err := f.svc.GetBooking(ctx, principal, "b1")

			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
		})
	}

	t.Run("not found", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("booking not found"))

		_, err := f.svc.GetBooking(ctx, admin, "missing")

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("uses request loaders", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)
		f.withExpansion()
		reqCtx := loaders.WithLoaders(ctx, loaders.NewLoaders(f.labs, f.tests))

		_, err := f.svc.GetBooking(reqCtx, patient, "b1")
		require.NoError(t, err)
		_, err = f.svc.GetBooking(reqCtx, patient, "b1")
		require.NoError(t, err)

		f.labs.AssertNumberOfCalls(t, "GetByIDs", 1)
	})
}

func TestBookingService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("lab of the booking may update", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)
		f.bookings.On("UpdateStatus", mock.Anything, "b1", entities.BookingStatusConfirmed).Return(nil)
		f.withExpansion()

		booking, err := f.svc.UpdateStatus(ctx, labOwner, "b1", "confirmed")

		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
		assert.NotNil(t, booking.Lab)
	})

	t.Run("permissive mode allows skipping steps", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)
		f.bookings.On("UpdateStatus", mock.Anything, "b1", entities.BookingStatusCompleted).Return(nil)
		f.withExpansion()

		_, err := f.svc.UpdateStatus(ctx, admin, "b1", "COMPLETED")

		require.NoError(t, err)
	})

	t.Run("strict mode rejects skipped steps", func(t *testing.T) {
		f := newBookingFixture(true, nil)
		f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)

		_, err := f.svc.UpdateStatus(ctx, admin, "b1", "COMPLETED")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other lab is forbidden", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)

		_, err := f.svc.UpdateStatus(ctx, otherLab, "b1", "CONFIRMED")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	})

	t.Run("booking owner cannot update", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)

		_, err := f.svc.UpdateStatus(ctx, patient, "b1", "CANCELLED")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("GetByID", mock.Anything, "b1").Return(storedBooking(entities.BookingStatusPending), nil)

		_, err := f.svc.UpdateStatus(ctx, admin, "b1", "SHIPPED")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("not found before authorisation", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("booking not found"))

		_, err := f.svc.UpdateStatus(ctx, stranger, "missing", "CONFIRMED")

		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestBookingService_ListBookings(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		principal *entities.Principal
		filter    services.BookingListFilter
		want      repositories.BookingFilter
	}{
		{"user sees own bookings", patient, services.BookingListFilter{LabID: "lab-9"}, repositories.BookingFilter{UserID: "user-1"}},
		{"lab sees its lab", labOwner, services.BookingListFilter{LabID: "lab-9"}, repositories.BookingFilter{LabID: "lab-1"}},
		{"lab without lab uses requested lab", &entities.Principal{ID: "x", Role: entities.RoleLab}, services.BookingListFilter{LabID: "lab-9"}, repositories.BookingFilter{LabID: "lab-9"}},
		{"admin applies filters", admin, services.BookingListFilter{LabID: "lab-9", Status: "pending"}, repositories.BookingFilter{LabID: "lab-9", Status: entities.BookingStatusPending}},
		{"admin sees all", admin, services.BookingListFilter{}, repositories.BookingFilter{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture(false, nil)
			f.bookings.On("List", mock.Anything, tc.want).Return([]*entities.Booking{}, nil).Once()

			got, err := f.svc.ListBookings(ctx, tc.principal, tc.filter)

			require.NoError(t, err)
			assert.NotNil(t, got)
			f.bookings.AssertExpectations(t)
		})
	}

	t.Run("lab without any lab gets nothing", func(t *testing.T) {
		f := newBookingFixture(false, nil)

		got, err := f.svc.ListBookings(ctx, &entities.Principal{ID: "x", Role: entities.RoleLab}, services.BookingListFilter{})

		require.NoError(t, err)
		assert.Empty(t, got)
		f.bookings.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		f := newBookingFixture(false, nil)

		_, err := f.svc.ListBookings(ctx, patient, services.BookingListFilter{Status: "LOST"})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("expands labs and tests", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("List", mock.Anything, mock.Anything).Return([]*entities.Booking{
			storedBooking(entities.BookingStatusPending), storedBooking(entities.BookingStatusConfirmed),
		}, nil)
		f.withExpansion()

		got, err := f.svc.ListBookings(ctx, admin, services.BookingListFilter{})

		require.NoError(t, err)
		for _, b := range got {
			assert.NotNil(t, b.Lab)
		}
		f.labs.AssertNumberOfCalls(t, "GetByIDs", 1)
	})

	t.Run("expansion failure", func(t *testing.T) {
		f := newBookingFixture(false, nil)
		f.bookings.On("List", mock.Anything, mock.Anything).Return([]*entities.Booking{storedBooking(entities.BookingStatusPending)}, nil)
		f.labs.On("GetByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
		f.tests.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.Test{}, nil)

		_, err := f.svc.ListBookings(ctx, admin, services.BookingListFilter{})

		assert.Error(t, err)
	})
}
