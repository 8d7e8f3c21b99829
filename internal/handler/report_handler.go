package handler

import (
	"fmt"
	"net/http"
	"time"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	reportService service.IReportService
	monitor       *service.Monitor
	log           *logger.Logger
}

func NewReportHandler(reportService service.IReportService, monitor *service.Monitor, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		monitor:       monitor,
		log:           log,
	}
}

func (h *ReportHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/reports/activity", h.ActivityReport).Methods("GET")
}

func (h *ReportHandler) ActivityReport(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.reportService.ActivityReport(r.Context(), h.monitor.Events(), h.monitor.ActiveAlerts())
	if err != nil {
		h.log.Error("Failed to build activity report: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("quakewatch-activity-%s.pdf", time.Now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.log.Warn("Failed to stream report: %v", err)
	}
}
