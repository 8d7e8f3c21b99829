package service

import (
	"context"
	"fmt"
	"sync"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
	"QuakeWatchAPI/internal/repository"
)

// ISettingsService owns the settings document: loaded once at startup, cached
// in memory, rewritten on every mutation.
type ISettingsService interface {
	Get() models.Settings
	Update(ctx context.Context, req *models.UpdateSettingsRequest) (models.Settings, error)
}

type SettingsService struct {
	repo repository.ISettingsRepository
	log  *logger.Logger

	mu      sync.RWMutex
	current models.Settings
}

func NewSettingsService(ctx context.Context, repo repository.ISettingsRepository, log *logger.Logger) (*SettingsService, error) {
	current, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted settings: %w", err)
	}

	return &SettingsService{
		repo:    repo,
		log:     log,
		current: current,
	}, nil
}

// Get returns the current settings as a value; callers thread it into the
// evaluator and dispatcher rather than reading shared state mid-cycle.
func (s *SettingsService) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsService) Update(ctx context.Context, req *models.UpdateSettingsRequest) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if req.MinMagnitude != nil {
		if *req.MinMagnitude < 0 {
			return models.Settings{}, fmt.Errorf("min_magnitude cannot be negative")
		}
		next.MinMagnitude = *req.MinMagnitude
	}
	if req.SoundEnabled != nil {
		next.SoundEnabled = *req.SoundEnabled
	}
	if req.SirenEnabled != nil {
		next.SirenEnabled = *req.SirenEnabled
	}
	if req.QuakeSoundEnabled != nil {
		next.QuakeSoundEnabled = *req.QuakeSoundEnabled
	}
	if req.VoiceEnabled != nil {
		next.VoiceEnabled = *req.VoiceEnabled
	}
	if req.Volume != nil {
		if *req.Volume < 0 || *req.Volume > 1 {
			return models.Settings{}, fmt.Errorf("volume must be within [0, 1]")
		}
		next.Volume = *req.Volume
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return models.Settings{}, err
	}

	s.current = next
	s.log.Info("Settings updated: min_magnitude=%.1f volume=%.2f", next.MinMagnitude, next.Volume)
	return next, nil
}
