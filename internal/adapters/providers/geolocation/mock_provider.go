package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/providers"
)

// MockGeolocationProvider resolves a fixed set of Indian cities. It is
// used in development and tests.
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() *MockGeolocationProvider {
	return &MockGeolocationProvider{}
}

var mockCities = []struct {
	name  string
	state string
	point providers.Coordinates
}{
	{"New Delhi", "Delhi", providers.Coordinates{Latitude: 28.6139, Longitude: 77.2090}},
	{"Mumbai", "Maharashtra", providers.Coordinates{Latitude: 19.0760, Longitude: 72.8777}},
	{"Bengaluru", "Karnataka", providers.Coordinates{Latitude: 12.9716, Longitude: 77.5946}},
	{"Chennai", "Tamil Nadu", providers.Coordinates{Latitude: 13.0827, Longitude: 80.2707}},
	{"Kolkata", "West Bengal", providers.Coordinates{Latitude: 22.5726, Longitude: 88.3639}},
	{"Hyderabad", "Telangana", providers.Coordinates{Latitude: 17.3850, Longitude: 78.4867}},
	{"Pune", "Maharashtra", providers.Coordinates{Latitude: 18.5204, Longitude: 73.8567}},
}

// Geocode matches the address against known city names
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	lower := strings.ToLower(address)
	for _, city := range mockCities {
		if strings.Contains(lower, strings.ToLower(city.name)) {
			return &providers.GeocodedAddress{
				FormattedAddress: address,
				City:             city.name,
				State:            city.state,
				Country:          "India",
				Coordinates:      city.point,
			}, nil
		}
	}
	return nil, fmt.Errorf("no results for address")
}

// ReverseGeocode returns the nearest known city
func (m *MockGeolocationProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedAddress, error) {
	best := mockCities[0]
	bestDist := -1.0
	for _, city := range mockCities {
		d := (city.point.Latitude-lat)*(city.point.Latitude-lat) + (city.point.Longitude-lon)*(city.point.Longitude-lon)
		if bestDist < 0 || d < bestDist {
			best, bestDist = city, d
		}
	}
	return &providers.GeocodedAddress{
		FormattedAddress: fmt.Sprintf("%s, %s, India", best.name, best.state),
		City:             best.name,
		State:            best.state,
		Country:          "India",
		Coordinates:      providers.Coordinates{Latitude: lat, Longitude: lon},
	}, nil
}
