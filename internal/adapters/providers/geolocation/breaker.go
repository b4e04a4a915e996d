package geolocation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
)

// BreakerProvider guards a GeolocationProvider with a circuit breaker.
type BreakerProvider struct {
	next    providers.GeolocationProvider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next with a breaker that opens after five
// consecutive failures and tries again after timeout.
func NewBreakerProvider(next providers.GeolocationProvider, timeout time.Duration) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:    "geocoding",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
	return &BreakerProvider{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Geocode implements GeolocationProvider
func (b *BreakerProvider) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	res, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.Geocode(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return res.(*providers.GeocodedAddress), nil
}

// ReverseGeocode implements GeolocationProvider
func (b *BreakerProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedAddress, error) {
	res, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.ReverseGeocode(ctx, lat, lon)
	})
	if err != nil {
		return nil, err
	}
	return res.(*providers.GeocodedAddress), nil
}
