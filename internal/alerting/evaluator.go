package alerting

import (
	"fmt"
	"time"

	"QuakeWatchAPI/internal/geo"
	"QuakeWatchAPI/internal/models"
)

// DefaultRecencyWindowMs is the maximum age of an event still eligible to
// raise a new alert. Prevents re-alerting on old events that reappear in a
// back-filled snapshot.
const DefaultRecencyWindowMs = int64(24 * time.Hour / time.Millisecond)

// NotificationID builds the deterministic dedup key for an (event, zone) pair.
func NotificationID(eventID, zoneID string) string {
	return fmt.Sprintf("%s-%s", eventID, zoneID)
}

// Evaluate computes the newly qualifying alert notifications for a snapshot.
//
// An (event, zone) pair qualifies when all of the following hold:
//   - event.Magnitude >= minMagnitude (inclusive)
//   - nowMs - event.OccurredAt < recencyWindowMs (an event exactly at the
//     window boundary is excluded)
//   - great-circle distance from the zone center <= zone.RadiusKm (inclusive)
//   - the pair's deterministic id is not already in existingIDs
//
// Zone visibility is deliberately ignored: an invisible zone still raises
// alerts, visibility is a display concern only.
//
// The function is pure: it never mutates its inputs and produces identical
// output for identical arguments. Output order is events-outer, zones-inner,
// so results are reproducible. Callers merge the result into the active
// collection themselves, prepending so the head is the most recently raised.
func Evaluate(
	events []models.SeismicEvent,
	zones []models.AlertZone,
	minMagnitude float64,
	existingIDs map[string]struct{},
	nowMs int64,
	recencyWindowMs int64,
) []models.AlertNotification {
	var fresh []models.AlertNotification

	for _, event := range events {
		if event.Magnitude < minMagnitude {
			continue
		}
		if nowMs-event.OccurredAt >= recencyWindowMs {
			continue
		}

		for _, zone := range zones {
			d := geo.DistanceKm(zone.Latitude, zone.Longitude, event.Latitude, event.Longitude)
			if d > zone.RadiusKm {
				continue
			}

			id := NotificationID(event.ID, zone.ID)
			if _, alreadyRaised := existingIDs[id]; alreadyRaised {
				continue
			}

			fresh = append(fresh, models.AlertNotification{
				ID:         id,
				EventID:    event.ID,
				ZoneID:     zone.ID,
				ZoneName:   zone.Name,
				EventPlace: event.Place,
				Magnitude:  event.Magnitude,
				OccurredAt: event.OccurredAt,
				DistanceKm: d,
				RaisedAt:   time.UnixMilli(nowMs).UTC(),
			})
		}
	}

	return fresh
}
