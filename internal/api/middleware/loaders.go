package middleware

import (
	"net/http"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/application/loaders"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
)

// Loaders attaches a fresh set of batched lab and test loaders to every
// request
func Loaders(labRepo repositories.LabRepository, testRepo repositories.TestRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(labRepo, testRepo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
