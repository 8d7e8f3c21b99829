package alerting

import (
	"sync"

	"QuakeWatchAPI/internal/models"
)

// ActiveAlerts holds the in-memory collection of raised, undismissed
// notifications. Every mutation produces a fresh slice (copy-on-write) so a
// snapshot handed to a reader stays valid while the next cycle runs.
//
// Alerts are additive-only through Merge; the only removal path is an
// explicit Dismiss.
type ActiveAlerts struct {
	mu     sync.RWMutex
	alerts []models.AlertNotification
}

func NewActiveAlerts() *ActiveAlerts {
	return &ActiveAlerts{}
}

// Merge prepends the newly raised alerts so the head of the collection is
// always the most recently raised one. Alerts whose id is already present are
// skipped, keeping ids unique even if a caller re-merges the same batch.
func (a *ActiveAlerts) Merge(fresh []models.AlertNotification) []models.AlertNotification {
	if len(fresh) == 0 {
		return a.Snapshot()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	present := make(map[string]struct{}, len(a.alerts))
	for _, alert := range a.alerts {
		present[alert.ID] = struct{}{}
	}

	merged := make([]models.AlertNotification, 0, len(fresh)+len(a.alerts))
	for _, alert := range fresh {
		if _, ok := present[alert.ID]; ok {
			continue
		}
		present[alert.ID] = struct{}{}
		merged = append(merged, alert)
	}
	merged = append(merged, a.alerts...)

	a.alerts = merged
	return merged
}

// Dismiss removes one alert by id. Returns false when the id was not active.
func (a *ActiveAlerts) Dismiss(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, alert := range a.alerts {
		if alert.ID == id {
			remaining := make([]models.AlertNotification, 0, len(a.alerts)-1)
			remaining = append(remaining, a.alerts[:i]...)
			remaining = append(remaining, a.alerts[i+1:]...)
			a.alerts = remaining
			return true
		}
	}
	return false
}

// DismissAll clears the collection.
func (a *ActiveAlerts) DismissAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = nil
}

// Snapshot returns the current collection. The slice is never mutated after
// publication, so it is safe to hand out directly.
func (a *ActiveAlerts) Snapshot() []models.AlertNotification {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.alerts
}

// Count returns the number of active alerts.
func (a *ActiveAlerts) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.alerts)
}

// IDs returns the set of active alert ids for dedup during evaluation.
func (a *ActiveAlerts) IDs() map[string]struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make(map[string]struct{}, len(a.alerts))
	for _, alert := range a.alerts {
		ids[alert.ID] = struct{}{}
	}
	return ids
}
