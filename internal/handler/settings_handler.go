package handler

import (
	"encoding/json"
	"net/http"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
	"QuakeWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type SettingsHandler struct {
	settingsService service.ISettingsService
	monitor         *service.Monitor
	hub             service.Broadcaster
	log             *logger.Logger
}

func NewSettingsHandler(settingsService service.ISettingsService, monitor *service.Monitor, hub service.Broadcaster, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		monitor:         monitor,
		hub:             hub,
		log:             log,
	}
}

func (h *SettingsHandler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/settings", h.GetSettings).Methods("GET")
	admin.HandleFunc("/settings", h.UpdateSettings).Methods("PUT", "PATCH")
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.settingsService.Get())
}

func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.settingsService.Update(r.Context(), &req)
	if err != nil {
		h.log.Warn("Rejected settings update: %v", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A lowered magnitude threshold can surface alerts from the cached
	// snapshot immediately.
	h.monitor.Reevaluate(r.Context())
	h.hub.Broadcast(service.WSTypeSettings, settings)

	respondJSON(w, http.StatusOK, settings)
}
