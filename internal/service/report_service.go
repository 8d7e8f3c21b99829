package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
	"QuakeWatchAPI/internal/repository"

	"github.com/jung-kurt/gofpdf"
)

// IReportService renders the current seismic picture to a downloadable PDF.
type IReportService interface {
	ActivityReport(ctx context.Context, events []models.SeismicEvent, active []models.AlertNotification) ([]byte, error)
}

type ReportService struct {
	alertRepo repository.IAlertRepository
	log       *logger.Logger
}

func NewReportService(alertRepo repository.IAlertRepository, log *logger.Logger) *ReportService {
	return &ReportService{
		alertRepo: alertRepo,
		log:       log,
	}
}

const reportEventLimit = 30

// ActivityReport builds a one-shot PDF summary: recent events, the active
// alerts, and per-zone totals from the alert history.
func (s *ReportService) ActivityReport(ctx context.Context, events []models.SeismicEvent, active []models.AlertNotification) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("QuakeWatch Activity Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "QuakeWatch Activity Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 UTC")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Active Alerts (%d)", len(active)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	if len(active) == 0 {
		pdf.Cell(0, 6, "No active alerts.")
		pdf.Ln(8)
	}
	for _, alert := range active {
		line := fmt.Sprintf("M%.1f near %s  (zone: %s, %.1f km from center)",
			alert.Magnitude, alert.EventPlace, alert.ZoneName, alert.DistanceKm)
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Recent Events")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	shown := events
	if len(shown) > reportEventLimit {
		shown = shown[:reportEventLimit]
	}
	for _, event := range shown {
		occurred := time.UnixMilli(event.OccurredAt).UTC().Format("01-02 15:04")
		line := fmt.Sprintf("%s  M%.1f  %s  (depth %.1f km)", occurred, event.Magnitude, event.Place, event.DepthKm)
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	if len(events) > reportEventLimit {
		pdf.Cell(0, 6, fmt.Sprintf("... and %d more", len(events)-reportEventLimit))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	counts, err := s.alertRepo.CountByZone(ctx)
	if err != nil {
		// History totals are a nice-to-have; the report is still useful.
		s.log.Warn("Skipping per-zone totals in report: %v", err)
	} else if len(counts) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Alerts Raised Per Zone (all time)")
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "", 9)
		for zoneName, count := range counts {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %d", zoneName, count))
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	return buf.Bytes(), nil
}
