package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
)

func TestBookingRecord(t *testing.T) {
	t.Run("clinic visit leaves home fields null", func(t *testing.T) {
		record := bookingRecord(&entities.Booking{
			ID:      "b1",
			Details: &entities.ClinicVisit{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), TimeSlot: "10:00 AM"},
		})

		assert.Equal(t, entities.BookingTypeClinicVisit, record["booking_type"])
		assert.Equal(t, "2025-01-15", record["booking_date"])
		assert.Equal(t, "10:00 AM", record["booking_time"])
		assert.Nil(t, record["address"])
		assert.Nil(t, record["pincode"])
		assert.Nil(t, record["state"])
	})

	t.Run("home collection leaves clinic fields null", func(t *testing.T) {
		record := bookingRecord(&entities.Booking{
			ID: "b2",
			Details: &entities.HomeCollection{
				Address: "12 MG Road", Pincode: "110001", State: "Delhi", PrescriptionURL: "https://files.test/rx.pdf",
			},
		})

		assert.Equal(t, entities.BookingTypeHomeCollection, record["booking_type"])
		assert.Equal(t, "12 MG Road", record["address"])
		assert.Equal(t, "https://files.test/rx.pdf", record["prescription_url"])
		assert.Nil(t, record["booking_date"])
		assert.Nil(t, record["booking_time"])
	})
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%delhi%", containsPattern("delhi"))
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
}
