package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
)

// BreakerStorage guards a FileStorage with a circuit breaker
type BreakerStorage struct {
	next    providers.FileStorage
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStorage wraps next with a breaker that opens after three
// consecutive failures.
func NewBreakerStorage(next providers.FileStorage, timeout time.Duration) *BreakerStorage {
	settings := gobreaker.Settings{
		Name:    "file-storage",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
	return &BreakerStorage{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Upload implements FileStorage
func (b *BreakerStorage) Upload(ctx context.Context, file providers.UploadFile) (*providers.StoredFile, error) {
	res, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.Upload(ctx, file)
	})
	if err != nil {
		return nil, err
	}
	return res.(*providers.StoredFile), nil
}
