package handler

import (
	"context"
	"net/http"
	"time"

	"QuakeWatchAPI/internal/alerting"
	"QuakeWatchAPI/internal/database"
	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
	"QuakeWatchAPI/internal/mqtt"
	"QuakeWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type HealthHandler struct {
	db          *database.Database
	raisedStore *alerting.RaisedStore
	mqttClient  *mqtt.Client
	monitor     *service.Monitor
	log         *logger.Logger
}

func NewHealthHandler(db *database.Database, raisedStore *alerting.RaisedStore, mqttClient *mqtt.Client, monitor *service.Monitor, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		raisedStore: raisedStore,
		mqttClient:  mqttClient,
		monitor:     monitor,
		log:         log,
	}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", h.Readiness).Methods("GET")
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	dbErr := h.db.Health(ctx)
	response.Services.Database = (dbErr == nil)

	redisErr := h.raisedStore.Health(ctx)
	response.Services.Redis = (redisErr == nil)

	mqttHealth, mqttErr := h.mqttClient.Health(ctx)
	response.Services.MQTT = (mqttErr == nil && mqttHealth.Connected)

	response.Services.Feed = h.monitor.FeedHealthy()

	if !response.Services.Database || !response.Services.Redis || !response.Services.MQTT || !response.Services.Feed {
		response.Status = "degraded"
		h.log.Warn("Health check degraded - DB: %v, Redis: %v, MQTT: %v, Feed: %v",
			response.Services.Database, response.Services.Redis, response.Services.MQTT, response.Services.Feed)
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, statusCode, response)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

// Readiness only gates on the stores the API cannot serve without. A stale
// feed degrades /health but does not take the instance out of rotation.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.db.Health(ctx)
	redisErr := h.raisedStore.Health(ctx)

	if dbErr != nil || redisErr != nil {
		h.log.Warn("Readiness check failed - DB error: %v, Redis error: %v", dbErr, redisErr)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
