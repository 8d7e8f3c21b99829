package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
	"QuakeWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

// maxImageBytes caps location-photo uploads at 8 MiB.
const maxImageBytes = 8 << 20

// analyzeEventLimit caps how many events get summarized into the analysis prompt.
const analyzeEventLimit = 20

type AIHandler struct {
	aiService service.IAIService
	monitor   *service.Monitor
	log       *logger.Logger
}

func NewAIHandler(aiService service.IAIService, monitor *service.Monitor, log *logger.Logger) *AIHandler {
	return &AIHandler{
		aiService: aiService,
		monitor:   monitor,
		log:       log,
	}
}

// RegisterRoutes puts the collaborator endpoints behind auth; they call a
// paid external API.
func (h *AIHandler) RegisterRoutes(admin *mux.Router) {
	admin.HandleFunc("/ai/chat", h.Chat).Methods("POST")
	admin.HandleFunc("/ai/analyze", h.Analyze).Methods("POST")
	admin.HandleFunc("/ai/locate", h.Locate).Methods("POST")
}

func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	resp, err := h.aiService.GenerateText(r.Context(), req.Prompt)
	if err != nil {
		h.log.Error("Chat generation failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Analyze asks the text collaborator for a summary of the current snapshot.
// The prompt is built server-side from the cached events, so the client does
// not have to ship the snapshot back up.
func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	events := h.monitor.Events()
	if len(events) == 0 {
		respondJSON(w, http.StatusOK, models.ChatResponse{
			Text: "No seismic events in the current window to analyze.",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("Summarize the current seismic activity for a monitoring dashboard. Events (newest first):\n")
	for i, event := range events {
		if i >= analyzeEventLimit {
			fmt.Fprintf(&sb, "...and %d more.\n", len(events)-analyzeEventLimit)
			break
		}
		fmt.Fprintf(&sb, "- M%.1f %s at %s\n",
			event.Magnitude, event.Place, time.UnixMilli(event.OccurredAt).UTC().Format(time.RFC3339))
	}

	resp, err := h.aiService.GenerateText(r.Context(), sb.String())
	if err != nil {
		h.log.Error("Analysis generation failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Locate accepts a multipart photo upload and asks the image collaborator for
// a place to seed a new zone from. An unrecognized photo is a 404, not a 500:
// the client's fallback is to let the user drop a pin manually.
func (h *AIHandler) Locate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		h.log.Warn("Invalid multipart form: %v", err)
		respondError(w, http.StatusBadRequest, "Expected multipart form with an image field")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Image field is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		h.log.Error("Failed to read uploaded image: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to read image")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	place, err := h.aiService.LocateFromImage(r.Context(), image, mimeType)
	if err != nil {
		h.log.Error("Image location failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if place == nil {
		respondError(w, http.StatusNotFound, "Could not identify a location in the image")
		return
	}

	respondJSON(w, http.StatusOK, place)
}
