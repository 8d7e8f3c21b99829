package service

import (
	"context"
	"sync"
	"time"

	"QuakeWatchAPI/internal/alerting"
	"QuakeWatchAPI/internal/feed"
	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
	"QuakeWatchAPI/internal/notify"
	"QuakeWatchAPI/internal/repository"
)

// SnapshotFetcher is the feed-client surface the monitor depends on.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, window feed.Window) ([]models.SeismicEvent, error)
}

// Broadcaster is the visual notification channel: the websocket hub pushing
// state to browser clients. It is the guaranteed-delivery channel; the audio
// channels may silently degrade but this one always gets the update.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// Websocket message types pushed by the monitor.
const (
	WSTypeEvents       = "EVENTS"
	WSTypeAlertsRaised = "ALERTS_RAISED"
	WSTypeActiveAlerts = "ACTIVE_ALERTS"
	WSTypeSettings     = "SETTINGS"
)

// Monitor is the top-level coordinator running the explicit pipeline
// fetch -> evaluate -> merge -> dispatch -> broadcast. It owns the last-good
// event snapshot and the active-alert collection; all mutations go through
// its mutex, so each cycle runs to completion before the next begins.
type Monitor struct {
	feedClient      SnapshotFetcher
	zoneService     IZoneService
	settingsService ISettingsService
	alertRepo       repository.IAlertRepository
	raisedStore     *alerting.RaisedStore
	dispatcher      *notify.Dispatcher
	hub             Broadcaster
	log             *logger.Logger

	refreshInterval time.Duration
	recencyWindowMs int64

	mu            sync.Mutex
	window        feed.Window
	events        []models.SeismicEvent
	active        *alerting.ActiveAlerts
	lastFetchAt   time.Time
	lastFetchErr  error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type MonitorConfig struct {
	FeedClient      SnapshotFetcher
	ZoneService     IZoneService
	SettingsService ISettingsService
	AlertRepo       repository.IAlertRepository
	RaisedStore     *alerting.RaisedStore
	Dispatcher      *notify.Dispatcher
	Hub             Broadcaster
	Logger          *logger.Logger
	RefreshInterval time.Duration
	RecencyWindowMs int64
	Window          feed.Window
}

func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Minute
	}
	if cfg.RecencyWindowMs <= 0 {
		cfg.RecencyWindowMs = alerting.DefaultRecencyWindowMs
	}
	if cfg.Window == "" {
		cfg.Window = feed.WindowPastDay
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		feedClient:      cfg.FeedClient,
		zoneService:     cfg.ZoneService,
		settingsService: cfg.SettingsService,
		alertRepo:       cfg.AlertRepo,
		raisedStore:     cfg.RaisedStore,
		dispatcher:      cfg.Dispatcher,
		hub:             cfg.Hub,
		log:             cfg.Logger,
		refreshInterval: cfg.RefreshInterval,
		recencyWindowMs: cfg.RecencyWindowMs,
		window:          cfg.Window,
		active:          alerting.NewActiveAlerts(),
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start performs an initial fetch and launches the periodic refresh worker.
func (m *Monitor) Start() {
	m.log.Info("Starting quake monitor (refresh every %s)", m.refreshInterval)

	if err := m.Refresh(m.ctx); err != nil {
		m.log.Warn("Initial feed fetch failed, will retry on next tick: %v", err)
	}

	m.wg.Add(1)
	go m.refreshLoop()
}

// Shutdown stops the refresh worker and waits for it to finish.
func (m *Monitor) Shutdown() {
	m.log.Info("Shutting down quake monitor...")
	m.cancel()
	m.wg.Wait()
	m.log.Info("Quake monitor stopped")
}

func (m *Monitor) refreshLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.log.Info("Refresh worker stopping")
			return
		case <-ticker.C:
			// The periodic refresh only runs in latest-data mode; a user
			// browsing the weekly window keeps their snapshot until they
			// refresh explicitly.
			if m.Window() == feed.WindowPastWeek {
				continue
			}
			if err := m.Refresh(m.ctx); err != nil {
				m.log.Error("Periodic refresh failed: %v", err)
			}
			m.raisedStore.Cleanup(m.ctx)
		}
	}
}

// Window returns the currently selected feed window.
func (m *Monitor) Window() feed.Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.window
}

// SetWindow switches the feed window and refreshes immediately.
func (m *Monitor) SetWindow(ctx context.Context, window feed.Window) error {
	m.mu.Lock()
	m.window = window
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// Refresh runs a full pipeline cycle: fetch a new snapshot, then evaluate.
// On fetch failure the last-good snapshot is retained and no evaluation
// happens for this cycle.
func (m *Monitor) Refresh(ctx context.Context) error {
	window := m.Window()

	events, err := m.feedClient.FetchSnapshot(ctx, window)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastFetchAt = time.Now()
	m.lastFetchErr = err
	if err != nil {
		return err
	}

	m.events = events
	m.hub.Broadcast(WSTypeEvents, events)
	m.evaluateLocked(ctx)
	return nil
}

// Reevaluate re-runs evaluation against the last fetched snapshot. Called
// after zone or settings mutations; safe to call repeatedly because the
// evaluator dedups against everything already raised.
func (m *Monitor) Reevaluate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluateLocked(ctx)
}

// evaluateLocked is the evaluate -> merge -> dispatch -> broadcast tail of
// the pipeline. Caller holds m.mu.
func (m *Monitor) evaluateLocked(ctx context.Context) {
	settings := m.settingsService.Get()

	zones, err := m.zoneService.ListZones(ctx)
	if err != nil {
		m.log.Error("Skipping evaluation, failed to load zones: %v", err)
		return
	}

	existing := m.active.IDs()
	if persisted, err := m.raisedStore.Load(ctx); err != nil {
		// Degrade to in-memory dedup only; worst case a restart re-alerts.
		m.log.Warn("Raised-id store unavailable, using in-memory dedup: %v", err)
	} else {
		for id := range persisted {
			existing[id] = struct{}{}
		}
	}

	fresh := alerting.Evaluate(
		m.events,
		zones,
		settings.MinMagnitude,
		existing,
		time.Now().UnixMilli(),
		m.recencyWindowMs,
	)

	merged := m.active.Merge(fresh)

	if len(fresh) > 0 {
		ids := make([]string, len(fresh))
		for i, alert := range fresh {
			ids[i] = alert.ID
		}
		if err := m.raisedStore.Mark(ctx, ids); err != nil {
			m.log.Warn("Failed to persist raised ids: %v", err)
		}
		if err := m.alertRepo.InsertBatch(ctx, fresh); err != nil {
			m.log.Warn("Failed to record alert history: %v", err)
		}

		m.log.Info("Raised %d new alert(s), %d active", len(fresh), len(merged))
		m.hub.Broadcast(WSTypeAlertsRaised, fresh)
		m.hub.Broadcast(WSTypeActiveAlerts, merged)
	}

	cycle := notify.Cycle{
		ActiveAlertCount: len(merged),
	}
	if len(merged) > 0 {
		headAlert := merged[0]
		cycle.HeadAlert = &headAlert
	}
	if len(m.events) > 0 {
		cycle.LatestEventID = m.events[0].ID
		cycle.LatestEventMagnitude = m.events[0].Magnitude
	}

	m.dispatcher.Dispatch(cycle, settings)
}

// Events returns the last-good snapshot.
func (m *Monitor) Events() []models.SeismicEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

// ActiveAlerts returns the current active-alert collection, newest first.
func (m *Monitor) ActiveAlerts() []models.AlertNotification {
	return m.active.Snapshot()
}

// DismissAlert removes one alert from the active collection and broadcasts
// the new state. Dismissal is the only removal path for active alerts.
func (m *Monitor) DismissAlert(id string) bool {
	dismissed := m.active.Dismiss(id)
	if dismissed {
		m.dispatcher.ObserveDismissal(m.active.Count())
		m.hub.Broadcast(WSTypeActiveAlerts, m.active.Snapshot())
	}
	return dismissed
}

// DismissAllAlerts clears the active collection.
func (m *Monitor) DismissAllAlerts() {
	m.active.DismissAll()
	m.dispatcher.ObserveDismissal(0)
	m.hub.Broadcast(WSTypeActiveAlerts, m.active.Snapshot())
}

// FeedHealthy reports whether the most recent fetch succeeded.
func (m *Monitor) FeedHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.lastFetchAt.IsZero() && m.lastFetchErr == nil
}
