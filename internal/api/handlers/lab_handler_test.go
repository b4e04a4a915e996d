package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/handlers"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/services"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

func TestLabHandler_FindLabs(t *testing.T) {
	directory := new(MockLabDirectory)
	handler := handlers.NewLabHandler(directory)

	directory.On("FindLabs", mock.Anything, services.LabSearchFilter{
		City:      "Mumbai",
		TestID:    "t1",
		Latitude:  ptr(19.07),
		Longitude: ptr(72.87),
	}).Return([]entities.LabResult{
		{Lab: entities.Lab{ID: "lab-1", Name: "City Lab"}, DistanceKm: ptr(1.5)},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/labs?city=Mumbai&testId=t1&latitude=19.07&longitude=72.87", nil)
	w := httptest.NewRecorder()

	handler.FindLabs(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "City Lab", body[0]["name"])
	assert.Equal(t, 1.5, body[0]["distance_km"])
}

func TestLabHandler_FindLabsEmpty(t *testing.T) {
	directory := new(MockLabDirectory)
	handler := handlers.NewLabHandler(directory)

	directory.On("FindLabs", mock.Anything, services.LabSearchFilter{Pincode: "000000"}).Return([]entities.LabResult{}, nil)

	w := httptest.NewRecorder()
	handler.FindLabs(w, httptest.NewRequest(http.MethodGet, "/api/labs?pincode=000000", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestLabHandler_GetLab(t *testing.T) {
	directory := new(MockLabDirectory)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/labs/{id}", handlers.NewLabHandler(directory).GetLab)

	directory.On("GetLab", mock.Anything, "nope").Return(nil, apperrors.NewNotFoundError("lab not found"))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/labs/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
