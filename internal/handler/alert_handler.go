package handler

import (
	"net/http"
	"strconv"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/repository"
	"QuakeWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type AlertHandler struct {
	monitor   *service.Monitor
	alertRepo repository.IAlertRepository
	log       *logger.Logger
}

func NewAlertHandler(monitor *service.Monitor, alertRepo repository.IAlertRepository, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		monitor:   monitor,
		alertRepo: alertRepo,
		log:       log,
	}
}

func (h *AlertHandler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/alerts/active", h.GetActiveAlerts).Methods("GET")
	public.HandleFunc("/alerts/history", h.GetHistory).Methods("GET")

	admin.HandleFunc("/alerts/dismiss-all", h.DismissAll).Methods("POST")
	admin.HandleFunc("/alerts/{id}/dismiss", h.Dismiss).Methods("POST")
}

func (h *AlertHandler) GetActiveAlerts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.monitor.ActiveAlerts())
}

func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	alertID := vars["id"]

	if !h.monitor.DismissAlert(alertID) {
		respondError(w, http.StatusNotFound, "Alert not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Alert dismissed"})
}

func (h *AlertHandler) DismissAll(w http.ResponseWriter, r *http.Request) {
	h.monitor.DismissAllAlerts()
	respondJSON(w, http.StatusOK, map[string]string{"message": "All alerts dismissed"})
}

func (h *AlertHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultHistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	history, err := h.alertRepo.GetHistory(r.Context(), limit, offset)
	if err != nil {
		h.log.Error("Failed to get alert history: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
