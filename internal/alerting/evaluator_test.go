package alerting

import (
	"testing"
	"time"

	"QuakeWatchAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testNowMs = int64(1700000000000)
	dayWindow = int64(86400000)
)

func dhakaZone() models.AlertZone {
	return models.AlertZone{
		ID:        "zone-dhaka",
		Name:      "Dhaka Metro",
		Latitude:  23.81,
		Longitude: 90.41,
		RadiusKm:  50,
		IsVisible: true,
	}
}

func nearbyEvent(magnitude float64, occurredAt int64) models.SeismicEvent {
	return models.SeismicEvent{
		ID:         "us1000abcd",
		Magnitude:  magnitude,
		Place:      "10km NE of Dhaka, Bangladesh",
		OccurredAt: occurredAt,
		Latitude:   23.79,
		Longitude:  90.40,
		DepthKm:    12.5,
	}
}

func noIDs() map[string]struct{} { return map[string]struct{}{} }

func TestEvaluateQualifyingPair(t *testing.T) {
	events := []models.SeismicEvent{nearbyEvent(4.0, testNowMs-1000)}
	zones := []models.AlertZone{dhakaZone()}

	fresh := Evaluate(events, zones, 3.0, noIDs(), testNowMs, dayWindow)

	require.Len(t, fresh, 1)
	alert := fresh[0]
	assert.Equal(t, "us1000abcd-zone-dhaka", alert.ID)
	assert.Equal(t, "us1000abcd", alert.EventID)
	assert.Equal(t, "zone-dhaka", alert.ZoneID)
	assert.Equal(t, "Dhaka Metro", alert.ZoneName)
	assert.Equal(t, "10km NE of Dhaka, Bangladesh", alert.EventPlace)
	assert.Equal(t, 4.0, alert.Magnitude)
	assert.Equal(t, testNowMs-1000, alert.OccurredAt)
	assert.InDelta(t, 2.3, alert.DistanceKm, 0.2)
	assert.Equal(t, time.UnixMilli(testNowMs).UTC(), alert.RaisedAt)
}

func TestEvaluateMagnitudeThreshold(t *testing.T) {
	zones := []models.AlertZone{dhakaZone()}

	t.Run("below threshold is excluded", func(t *testing.T) {
		events := []models.SeismicEvent{nearbyEvent(2.9, testNowMs-1000)}
		fresh := Evaluate(events, zones, 3.0, noIDs(), testNowMs, dayWindow)
		assert.Empty(t, fresh)
	})

	t.Run("exactly at threshold qualifies", func(t *testing.T) {
		events := []models.SeismicEvent{nearbyEvent(3.0, testNowMs-1000)}
		fresh := Evaluate(events, zones, 3.0, noIDs(), testNowMs, dayWindow)
		assert.Len(t, fresh, 1)
	})
}

func TestEvaluateRecencyWindow(t *testing.T) {
	zones := []models.AlertZone{dhakaZone()}

	t.Run("stale event is excluded", func(t *testing.T) {
		events := []models.SeismicEvent{nearbyEvent(4.0, testNowMs-90000000)}
		fresh := Evaluate(events, zones, 3.0, noIDs(), testNowMs, dayWindow)
		assert.Empty(t, fresh)
	})

	t.Run("event exactly at the boundary is excluded", func(t *testing.T) {
		events := []models.SeismicEvent{nearbyEvent(4.0, testNowMs-dayWindow)}
		fresh := Evaluate(events, zones, 3.0, noIDs(), testNowMs, dayWindow)
		assert.Empty(t, fresh)
	})

	t.Run("event just inside the boundary qualifies", func(t *testing.T) {
		events := []models.SeismicEvent{nearbyEvent(4.0, testNowMs-dayWindow+1)}
		fresh := Evaluate(events, zones, 3.0, noIDs(), testNowMs, dayWindow)
		assert.Len(t, fresh, 1)
	})
}

func TestEvaluateDistanceBoundary(t *testing.T) {
	// Event due north of the zone center; shrink the radius around the
	// computed distance to probe the inclusive boundary.
	zone := dhakaZone()
	event := models.SeismicEvent{
		ID:         "ev-north",
		Magnitude:  5.0,
		OccurredAt: testNowMs - 1000,
		Latitude:   24.4,
		Longitude:  90.41,
	}

	base := Evaluate([]models.SeismicEvent{event}, []models.AlertZone{zone}, 3.0, noIDs(), testNowMs, dayWindow)
	require.Empty(t, base, "sanity: event starts outside the 50km radius")

	t.Run("exactly at the radius qualifies", func(t *testing.T) {
		withDistance := Evaluate([]models.SeismicEvent{event},
			[]models.AlertZone{{ID: "z", Name: "z", Latitude: zone.Latitude, Longitude: zone.Longitude, RadiusKm: 100}},
			3.0, noIDs(), testNowMs, dayWindow)
		require.Len(t, withDistance, 1)
		exact := withDistance[0].DistanceKm

		onBoundary := Evaluate([]models.SeismicEvent{event},
			[]models.AlertZone{{ID: "z", Name: "z", Latitude: zone.Latitude, Longitude: zone.Longitude, RadiusKm: exact}},
			3.0, noIDs(), testNowMs, dayWindow)
		assert.Len(t, onBoundary, 1)

		shrunk := Evaluate([]models.SeismicEvent{event},
			[]models.AlertZone{{ID: "z", Name: "z", Latitude: zone.Latitude, Longitude: zone.Longitude, RadiusKm: exact * 0.999}},
			3.0, noIDs(), testNowMs, dayWindow)
		assert.Empty(t, shrunk)
	})
}

func TestEvaluateDedup(t *testing.T) {
	events := []models.SeismicEvent{nearbyEvent(4.0, testNowMs-1000)}
	zones := []models.AlertZone{dhakaZone()}

	existing := map[string]struct{}{"us1000abcd-zone-dhaka": {}}
	fresh := Evaluate(events, zones, 3.0, existing, testNowMs, dayWindow)
	assert.Empty(t, fresh, "a pair already raised must never re-emit")
}

func TestEvaluateIdempotence(t *testing.T) {
	events := []models.SeismicEvent{nearbyEvent(4.0, testNowMs-1000)}
	zones := []models.AlertZone{dhakaZone()}

	existing := noIDs()
	first := Evaluate(events, zones, 3.0, existing, testNowMs, dayWindow)
	require.Len(t, first, 1)

	for _, alert := range first {
		existing[alert.ID] = struct{}{}
	}

	second := Evaluate(events, zones, 3.0, existing, testNowMs, dayWindow)
	assert.Empty(t, second, "re-evaluating merged output must yield nothing")
}

func TestEvaluateDeterminism(t *testing.T) {
	events := []models.SeismicEvent{
		nearbyEvent(4.0, testNowMs-1000),
		{ID: "ev-2", Magnitude: 6.1, Place: "near the zone too", OccurredAt: testNowMs - 2000, Latitude: 23.82, Longitude: 90.42},
	}
	zones := []models.AlertZone{
		dhakaZone(),
		{ID: "zone-wide", Name: "Wide Net", Latitude: 23.5, Longitude: 90.5, RadiusKm: 200, IsVisible: true},
	}

	first := Evaluate(events, zones, 3.0, noIDs(), testNowMs, dayWindow)
	second := Evaluate(events, zones, 3.0, noIDs(), testNowMs, dayWindow)

	assert.Equal(t, first, second)

	// Order is events-outer, zones-inner.
	require.Len(t, first, 4)
	assert.Equal(t, "us1000abcd-zone-dhaka", first[0].ID)
	assert.Equal(t, "us1000abcd-zone-wide", first[1].ID)
	assert.Equal(t, "ev-2-zone-dhaka", first[2].ID)
	assert.Equal(t, "ev-2-zone-wide", first[3].ID)
}

func TestEvaluateVisibilityIndependence(t *testing.T) {
	events := []models.SeismicEvent{nearbyEvent(4.0, testNowMs-1000)}

	visible := dhakaZone()
	hidden := dhakaZone()
	hidden.IsVisible = false

	fromVisible := Evaluate(events, []models.AlertZone{visible}, 3.0, noIDs(), testNowMs, dayWindow)
	fromHidden := Evaluate(events, []models.AlertZone{hidden}, 3.0, noIDs(), testNowMs, dayWindow)

	assert.Equal(t, fromVisible, fromHidden, "invisible zones alert identically")
}

func TestEvaluateNoSideEffects(t *testing.T) {
	events := []models.SeismicEvent{nearbyEvent(4.0, testNowMs-1000)}
	zones := []models.AlertZone{dhakaZone()}
	existing := noIDs()

	Evaluate(events, zones, 3.0, existing, testNowMs, dayWindow)

	assert.Empty(t, existing, "evaluator must not mutate the caller's id set")
}
