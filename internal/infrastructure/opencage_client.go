package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"notdienst_bot/internal/entities"

	"github.com/rs/zerolog"
)

const defaultOpenCageURL = "https://api.opencagedata.com/geocode/v1/json"

// OpenCageClient resolves postal codes through the OpenCage geocoder
type OpenCageClient struct {
	APIKey  string
	Country string
	BaseURL string
	Client  *http.Client
	Retry   RetryPolicy
	logger  zerolog.Logger
}

type openCageResponse struct {
	Results []struct {
		Geometry *struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

var errMalformedGeometry = errors.New("result without geometry")

// NewOpenCageClient creates a geocoder restricted to one country code
func NewOpenCageClient(apiKey, country string, client *http.Client, retry RetryPolicy, logger zerolog.Logger) *OpenCageClient {
	return &OpenCageClient{
		APIKey:  apiKey,
		Country: country,
		BaseURL: defaultOpenCageURL,
		Client:  client,
		Retry:   retry,
		logger:  logger.With().Str("component", "opencage").Logger(),
	}
}

// Coordinates returns the first match for postalCode. Empty result sets,
// malformed payloads and transport failures all yield ok == false.
func (c *OpenCageClient) Coordinates(ctx context.Context, postalCode string) (entities.Coordinates, bool) {
	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("q", postalCode)
	q.Set("countrycode", c.Country)
	u := c.BaseURL + "?" + q.Encode()

	data, err := Retry(ctx, c.Retry, func(ctx context.Context) (openCageResponse, error) {
		var r openCageResponse
		err := getJSON(ctx, c.Client, u, &r)
		return r, err
	})
	if err != nil {
		c.logger.Error().Err(err).Str("postal_code", postalCode).Msg("failed to get coordinates")
		return entities.Coordinates{}, false
	}

	if len(data.Results) == 0 {
		c.logger.Info().Str("postal_code", postalCode).Msg("no geocoding results")
		return entities.Coordinates{}, false
	}

	g := data.Results[0].Geometry
	if g == nil || g.Lat == nil || g.Lng == nil {
		c.logger.Error().Err(errMalformedGeometry).Str("postal_code", postalCode).Msg("failed to parse coordinates")
		return entities.Coordinates{}, false
	}

	return entities.Coordinates{Latitude: *g.Lat, Longitude: *g.Lng}, true
}
