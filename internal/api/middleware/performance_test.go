package middleware_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/middleware"
)

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func TestCompression(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tests", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	w := httptest.NewRecorder()

	middleware.Compression(jsonHandler(`{"ok":true}`)).ServeHTTP(w, req)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestCompression_SkipsUploads(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/uploads/abc", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	middleware.Compression(jsonHandler("raw")).ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "raw", w.Body.String())
}

func TestETag(t *testing.T) {
	handler := middleware.ETag(jsonHandler(`[{"id":"lab-1"}]`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/labs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/labs", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestETag_PassesErrorsThrough(t *testing.T) {
	handler := middleware.ETag(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"lab not found"}`))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/labs/x", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
	assert.JSONEq(t, `{"error":"lab not found"}`, w.Body.String())
}

func TestCacheControl(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/tests", "public, max-age=60, must-revalidate"},
		{http.MethodGet, "/api/labs/lab-1", "public, max-age=300, must-revalidate"},
		{http.MethodGet, "/api/bookings", "private, no-cache, must-revalidate"},
		{http.MethodPost, "/api/bookings", "no-store"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		middleware.CacheControl(jsonHandler("{}")).ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, w.Header().Get("Cache-Control"), tc.method+" "+tc.path)
	}
}
