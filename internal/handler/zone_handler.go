package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
	"QuakeWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type ZoneHandler struct {
	zoneService service.IZoneService
	monitor     *service.Monitor
	log         *logger.Logger
}

func NewZoneHandler(zoneService service.IZoneService, monitor *service.Monitor, log *logger.Logger) *ZoneHandler {
	return &ZoneHandler{
		zoneService: zoneService,
		monitor:     monitor,
		log:         log,
	}
}

// RegisterRoutes splits reads from mutations: the map can list zones without
// a session, while changes require the admin bearer token.
func (h *ZoneHandler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/zones", h.ListZones).Methods("GET")
	public.HandleFunc("/zones/{id}", h.GetZone).Methods("GET")

	admin.HandleFunc("/zones", h.CreateZone).Methods("POST")
	admin.HandleFunc("/zones/{id}", h.UpdateZone).Methods("PUT", "PATCH")
	admin.HandleFunc("/zones/{id}", h.DeleteZone).Methods("DELETE")
	admin.HandleFunc("/zones/{id}/visibility", h.ToggleVisibility).Methods("POST")
}

func (h *ZoneHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req models.CreateZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	zone, err := h.zoneService.CreateZone(r.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create zone: %v", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// New zones take effect against the cached feed snapshot right away.
	h.monitor.Reevaluate(r.Context())

	respondJSON(w, http.StatusCreated, zone)
}

func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zoneService.ListZones(r.Context())
	if err != nil {
		h.log.Error("Failed to list zones: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, zones)
}

func (h *ZoneHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	zoneID := vars["id"]

	zone, err := h.zoneService.GetZone(r.Context(), zoneID)
	if err != nil {
		h.log.Error("Failed to get zone: %v", err)
		respondError(w, statusForZoneErr(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, zone)
}

func (h *ZoneHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	zoneID := vars["id"]

	var req models.UpdateZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	zone, err := h.zoneService.UpdateZone(r.Context(), zoneID, &req)
	if err != nil {
		h.log.Error("Failed to update zone: %v", err)
		respondError(w, statusForZoneErr(err), err.Error())
		return
	}

	h.monitor.Reevaluate(r.Context())

	respondJSON(w, http.StatusOK, zone)
}

func (h *ZoneHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	zoneID := vars["id"]

	zone, err := h.zoneService.ToggleVisibility(r.Context(), zoneID)
	if err != nil {
		h.log.Error("Failed to toggle zone visibility: %v", err)
		respondError(w, statusForZoneErr(err), err.Error())
		return
	}

	// Visibility only affects the map layer, not alerting, so no re-evaluation.
	respondJSON(w, http.StatusOK, zone)
}

func (h *ZoneHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	zoneID := vars["id"]

	if err := h.zoneService.DeleteZone(r.Context(), zoneID); err != nil {
		h.log.Error("Failed to delete zone: %v", err)
		respondError(w, statusForZoneErr(err), err.Error())
		return
	}

	// Already-raised notifications for this zone stay active until dismissed.
	h.monitor.Reevaluate(r.Context())

	respondJSON(w, http.StatusOK, map[string]string{"message": "Zone deleted successfully"})
}

func statusForZoneErr(err error) int {
	if strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
