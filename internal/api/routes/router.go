package routes

import (
	"net/http"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/handlers"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/api/middleware"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
)

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Health    *handlers.HealthHandler
	Tests     *handlers.TestHandler
	Labs      *handlers.LabHandler
	Bookings  *handlers.BookingHandler
	LabPortal *handlers.LabPortalHandler
	Admin     *handlers.AdminHandler
	Uploads   *handlers.UploadHandler
	Session   *handlers.SessionHandler
}

// Options configures the middleware chain
type Options struct {
	AllowedOrigins []string
	Tokens         middleware.TokenParser
	LabRepo        repositories.LabRepository
	TestRepo       repositories.TestRepository
	Cache          *middleware.CacheMiddleware
	Metrics        *observability.Metrics
}

// Router holds all route handlers
type Router struct {
	mux      *http.ServeMux
	handlers Handlers
	opts     Options
}

// NewRouter creates a new router
func NewRouter(h Handlers, opts Options) *Router {
	return &Router{
		mux:      http.NewServeMux(),
		handlers: h,
		opts:     opts,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	h := r.handlers

	r.mux.HandleFunc("GET /health", h.Health.Health)

	// Discovery
	r.mux.HandleFunc("GET /api/tests", h.Tests.SearchTests)
	r.mux.HandleFunc("GET /api/tests/suggest", h.Tests.SuggestTests)
	r.mux.HandleFunc("GET /api/tests/{id}", h.Tests.GetTest)
	r.mux.HandleFunc("GET /api/labs", h.Labs.FindLabs)
	r.mux.HandleFunc("GET /api/labs/{id}", h.Labs.GetLab)
	r.mux.HandleFunc("POST /api/labs/register", h.LabPortal.RegisterLab)

	// Bookings
	r.mux.HandleFunc("POST /api/bookings", h.Bookings.CreateBooking)
	r.mux.HandleFunc("GET /api/bookings", h.Bookings.ListBookings)
	r.mux.HandleFunc("GET /api/bookings/{id}", h.Bookings.GetBooking)
	r.mux.HandleFunc("PATCH /api/bookings/{id}", h.Bookings.UpdateStatus)

	// Lab portal
	r.mux.HandleFunc("GET /api/lab/tests", h.LabPortal.ListTests)
	r.mux.HandleFunc("POST /api/lab/tests", h.LabPortal.CreateTest)
	r.mux.HandleFunc("DELETE /api/lab/tests/{id}", h.LabPortal.DeleteTest)
	r.mux.HandleFunc("PUT /api/lab/availability/{testId}", h.LabPortal.SetAvailability)
	r.mux.HandleFunc("DELETE /api/lab/availability/{testId}", h.LabPortal.RemoveAvailability)
	r.mux.HandleFunc("GET /api/lab/profile", h.LabPortal.GetProfile)
	r.mux.HandleFunc("PATCH /api/lab/profile", h.LabPortal.UpdateProfile)

	// Admin
	r.mux.HandleFunc("GET /api/admin/labs", h.Admin.ListLabs)
	r.mux.HandleFunc("GET /api/admin/labs/{id}", h.Admin.GetLab)
	r.mux.HandleFunc("PATCH /api/admin/labs/{id}", h.Admin.UpdateLab)

	// Uploads
	r.mux.HandleFunc("POST /api/uploads/prescriptions", h.Uploads.UploadPrescription)
	r.mux.HandleFunc("GET /uploads/{id}", h.Uploads.GetUpload)

	// Session location
	r.mux.HandleFunc("PUT /api/session/location", h.Session.PutLocation)
	r.mux.HandleFunc("GET /api/session/location", h.Session.GetLocation)
	r.mux.HandleFunc("DELETE /api/session/location", h.Session.DeleteLocation)

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability sits directly on the mux so it sees the matched pattern.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.opts.Metrics)(handler)

	if r.opts.Cache != nil {
		handler = r.opts.Cache.Middleware(handler)
	}
	if r.opts.LabRepo != nil && r.opts.TestRepo != nil {
		handler = middleware.Loaders(r.opts.LabRepo, r.opts.TestRepo)(handler)
	}
	handler = middleware.Authenticate(r.opts.Tokens)(handler)
	handler = middleware.Session(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.LoggingMiddleware(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORS(r.opts.AllowedOrigins)(handler)

	return handler
}
