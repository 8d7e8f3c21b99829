package handler

import (
	"encoding/json"
	"net/http"

	"QuakeWatchAPI/internal/feed"
	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type EventHandler struct {
	monitor *service.Monitor
	log     *logger.Logger
}

func NewEventHandler(monitor *service.Monitor, log *logger.Logger) *EventHandler {
	return &EventHandler{
		monitor: monitor,
		log:     log,
	}
}

func (h *EventHandler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/events", h.ListEvents).Methods("GET")
	public.HandleFunc("/events/window", h.GetWindow).Methods("GET")

	admin.HandleFunc("/events/refresh", h.Refresh).Methods("POST")
	admin.HandleFunc("/events/window", h.SetWindow).Methods("PUT")
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.monitor.Events())
}

func (h *EventHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.Refresh(r.Context()); err != nil {
		// The last good snapshot is retained; report the fetch failure anyway.
		h.log.Warn("Manual refresh failed: %v", err)
		respondError(w, http.StatusBadGateway, "Feed fetch failed, showing last known data")
		return
	}

	respondJSON(w, http.StatusOK, h.monitor.Events())
}

func (h *EventHandler) GetWindow(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"window": string(h.monitor.Window())})
}

func (h *EventHandler) SetWindow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Window string `json:"window"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	window, ok := feed.ValidWindow(req.Window)
	if !ok {
		respondError(w, http.StatusBadRequest, "window must be one of: hour, day, week")
		return
	}

	if err := h.monitor.SetWindow(r.Context(), window); err != nil {
		h.log.Warn("Window change fetch failed: %v", err)
		respondError(w, http.StatusBadGateway, "Feed fetch failed, showing last known data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"window": string(window)})
}
