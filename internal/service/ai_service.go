package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"

	"github.com/go-resty/resty/v2"
)

// FallbackAnalysisText is returned whenever the text-generation collaborator
// is unreachable; the alert pipeline never sees an AI error.
const FallbackAnalysisText = "Seismic analysis is temporarily unavailable. Recent event data is still shown on the map and list."

// IAIService is the boundary to the AI collaborators: free-text generation
// for analysis/chat, and image understanding for zone pre-population.
type IAIService interface {
	GenerateText(ctx context.Context, prompt string) (*models.ChatResponse, error)
	LocateFromImage(ctx context.Context, image []byte, mimeType string) (*models.LocatedPlace, error)
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

type locateRequest struct {
	Model     string `json:"model"`
	ImageData string `json:"image_data"`
	MimeType  string `json:"mime_type"`
}

type locateResponse struct {
	Found     bool    `json:"found"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

type AIService struct {
	httpClient *resty.Client
	model      string
	log        *logger.Logger
}

func NewAIService(baseURL, apiKey, model string, timeout time.Duration, log *logger.Logger) *AIService {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &AIService{
		httpClient: httpClient,
		model:      model,
		log:        log,
	}
}

// GenerateText proxies a prompt to the text-generation endpoint. Collaborator
// failures degrade to a user-facing fallback message, never an error.
func (s *AIService) GenerateText(ctx context.Context, prompt string) (*models.ChatResponse, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	var result generateResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: s.model, Prompt: prompt}).
		SetResult(&result).
		Post("/v1/generate")

	if err != nil || resp.IsError() || result.Text == "" {
		s.log.Warn("Text generation failed (err=%v, status=%d), returning fallback", err, resp.StatusCode())
		return &models.ChatResponse{Text: FallbackAnalysisText, Fallback: true}, nil
	}

	return &models.ChatResponse{Text: result.Text}, nil
}

// LocateFromImage asks the image-understanding endpoint to identify a place.
// A nil result means no location was recognized; that is an ordinary outcome,
// not an error, and the caller falls back to manual zone entry.
func (s *AIService) LocateFromImage(ctx context.Context, image []byte, mimeType string) (*models.LocatedPlace, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image data is required")
	}

	var result locateResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(locateRequest{
			Model:     s.model,
			ImageData: base64.StdEncoding.EncodeToString(image),
			MimeType:  mimeType,
		}).
		SetResult(&result).
		Post("/v1/locate")

	if err != nil || resp.IsError() {
		s.log.Warn("Image location failed (err=%v, status=%d)", err, resp.StatusCode())
		return nil, nil
	}

	if !result.Found {
		return nil, nil
	}

	return &models.LocatedPlace{
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
		Name:      result.Name,
	}, nil
}
