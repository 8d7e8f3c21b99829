package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"

	"github.com/go-resty/resty/v2"
)

// Window selects which feed snapshot to fetch.
type Window string

const (
	WindowPastHour Window = "hour"
	WindowPastDay  Window = "day"
	WindowPastWeek Window = "week"
)

// ParseWindow maps a query value to a Window, defaulting to the past day.
func ParseWindow(s string) Window {
	switch s {
	case "hour":
		return WindowPastHour
	case "week":
		return WindowPastWeek
	default:
		return WindowPastDay
	}
}

// ValidWindow is the strict variant used at the API edge, where an unknown
// value is a caller error rather than something to default away.
func ValidWindow(s string) (Window, bool) {
	switch s {
	case "hour":
		return WindowPastHour, true
	case "day":
		return WindowPastDay, true
	case "week":
		return WindowPastWeek, true
	default:
		return "", false
	}
}

func (w Window) path() string {
	switch w {
	case WindowPastHour:
		return "/summary/all_hour.geojson"
	case WindowPastWeek:
		return "/summary/all_week.geojson"
	default:
		return "/summary/all_day.geojson"
	}
}

// featureCollection mirrors the USGS GeoJSON summary format.
type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string `json:"id"`
	Properties struct {
		Mag   *float64 `json:"mag"`
		Place string   `json:"place"`
		Time  int64    `json:"time"`
	} `json:"properties"`
	Geometry struct {
		// [longitude, latitude, depth]
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

type Client struct {
	httpClient *resty.Client
	log        *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		log:        log,
	}
}

// FetchSnapshot retrieves the full event snapshot for the given window,
// normalized and sorted by origin time descending so the head is the latest
// event. A network or parse failure is returned to the caller, which is
// expected to retain its last-good snapshot.
func (c *Client) FetchSnapshot(ctx context.Context, window Window) ([]models.SeismicEvent, error) {
	var collection featureCollection

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&collection).
		Get(window.path())

	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode())
	}

	events := make([]models.SeismicEvent, 0, len(collection.Features))
	for _, f := range collection.Features {
		if f.ID == "" || len(f.Geometry.Coordinates) < 3 {
			c.log.Debug("Skipping malformed feed feature: %q", f.ID)
			continue
		}

		magnitude := 0.0
		if f.Properties.Mag != nil {
			magnitude = *f.Properties.Mag
		}

		events = append(events, models.SeismicEvent{
			ID:         f.ID,
			Magnitude:  magnitude,
			Place:      f.Properties.Place,
			OccurredAt: f.Properties.Time,
			Longitude:  f.Geometry.Coordinates[0],
			Latitude:   f.Geometry.Coordinates[1],
			DepthKm:    f.Geometry.Coordinates[2],
		})
	}

	// The feed is normally already ordered, but the dispatcher's "latest
	// event" rule depends on it, so enforce the order here.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt > events[j].OccurredAt
	})

	c.log.Debug("Fetched %d events for window %s", len(events), window)
	return events, nil
}
