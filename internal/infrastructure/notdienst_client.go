package infrastructure

import (
	"context"
	"net/http"
	"net/url"
	"notdienst_bot/internal/entities"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const defaultNotdienstURL = "https://apotheken-notdienst-api.netlify.app/.netlify/functions/server"

// NotdienstClient queries the on-duty pharmacy directory
type NotdienstClient struct {
	BaseURL string
	Client  *http.Client
	Retry   RetryPolicy
	logger  zerolog.Logger
}

func NewNotdienstClient(client *http.Client, retry RetryPolicy, logger zerolog.Logger) *NotdienstClient {
	return &NotdienstClient{
		BaseURL: defaultNotdienstURL,
		Client:  client,
		Retry:   retry,
		logger:  logger.With().Str("component", "notdienst").Logger(),
	}
}

// OnDuty lists the pharmacies on duty around coords at the given instant.
// A successful call may return an empty list; ok is false only when the
// directory could not be queried or its answer could not be parsed.
func (c *NotdienstClient) OnDuty(ctx context.Context, coords entities.Coordinates, at time.Time) ([]entities.Pharmacy, bool) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	q.Set("date", strconv.FormatInt(at.UnixMilli(), 10))
	u := c.BaseURL + "?" + q.Encode()

	pharmacies, err := Retry(ctx, c.Retry, func(ctx context.Context) ([]entities.Pharmacy, error) {
		var list []entities.Pharmacy
		err := getJSON(ctx, c.Client, u, &list)
		return list, err
	})
	if err != nil {
		c.logger.Error().
			Err(err).
			Float64("lat", coords.Latitude).
			Float64("lon", coords.Longitude).
			Msg("failed to get pharmacies")
		return nil, false
	}

	if pharmacies == nil {
		pharmacies = []entities.Pharmacy{}
	}
	c.logger.Debug().Int("count", len(pharmacies)).Msg("pharmacies fetched")
	return pharmacies, true
}
