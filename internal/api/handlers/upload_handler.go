package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/providers/storage"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
	apperrors "github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/errors"
)

// multipartOverhead is allowed on top of the file size for form framing
const multipartOverhead = 1 << 20

// PrescriptionUploader stores prescription files
type PrescriptionUploader interface {
	Upload(ctx context.Context, name string, data []byte) (*providers.StoredFile, error)
	MaxBytes() int64
}

// StoredFiles serves files kept by the development storage backend
type StoredFiles interface {
	Get(id string) (storage.StoredObject, bool)
}

// UploadHandler handles prescription uploads
type UploadHandler struct {
	uploader PrescriptionUploader
	files    StoredFiles
}

// NewUploadHandler creates a new upload handler. files is nil unless uploads
// are kept in memory.
func NewUploadHandler(uploader PrescriptionUploader, files StoredFiles) *UploadHandler {
	return &UploadHandler{uploader: uploader, files: files}
}

// UploadPrescription handles POST /api/uploads/prescriptions
func (h *UploadHandler) UploadPrescription(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.uploader.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithAppError(w, r, apperrors.NewMissingFieldsError("no file provided", "file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	stored, err := h.uploader.Upload(r.Context(), header.Filename, data)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stored)
}

// GetUpload handles GET /uploads/{id}
func (h *UploadHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		respondWithError(w, http.StatusNotFound, "file not found")
		return
	}

	obj, ok := h.files.Get(r.PathValue("id"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
