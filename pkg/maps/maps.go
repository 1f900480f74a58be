package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gmaps "googlemaps.github.io/maps"
)

var ErrNoResults = errors.New("address not found")

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

type geocodeAPI interface {
	Geocode(ctx context.Context, r *gmaps.GeocodingRequest) ([]gmaps.GeocodingResult, error)
}

// GoogleMapsProvider resolves free-form addresses. Region biases results
// towards a country code such as "ph".
type GoogleMapsProvider struct {
	client geocodeAPI
	region string
}

func NewGoogleMapsProvider(apiKey, region string) (*GoogleMapsProvider, error) {
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}
	return &GoogleMapsProvider{client: client, region: region}, nil
}

func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResults
	}

	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	})
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	best := results[0]
	return &Location{
		Latitude:  best.Geometry.Location.Lat,
		Longitude: best.Geometry.Location.Lng,
		Address:   best.FormattedAddress,
	}, nil
}
