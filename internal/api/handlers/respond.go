package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps err to its HTTP status. Upstream and internal
// failures are logged and answered with a generic message.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	appErr, ok := apperrors.As(err)

	switch {
	case !ok || appErr.Type == apperrors.ErrorTypeInternal:
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		respondWithError(w, status, "internal server error")
	case appErr.Type == apperrors.ErrorTypeExternal:
		log.Ctx(r.Context()).Error().Err(err).Msg("upstream service failed")
		respondWithError(w, status, "upstream service unavailable")
	case len(appErr.Fields) > 0:
		respondWithJSON(w, status, map[string]interface{}{
			"error":  appErr.Message,
			"fields": appErr.Fields,
		})
	default:
		respondWithError(w, status, appErr.Message)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewValidationError("invalid request payload")
	}
	return nil
}

// parseFloatParam returns nil for an absent parameter
func parseFloatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid " + name)
	}
	return &v, nil
}

func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError("invalid " + name)
	}
	return v, nil
}

func parseBoolParam(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid " + name)
	}
	return &v, nil
}
