package service

import (
	"context"
	"fmt"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
	"QuakeWatchAPI/internal/repository"

	"github.com/google/uuid"
)

// IZoneService defines the business rules over the alert-zone collection.
type IZoneService interface {
	CreateZone(ctx context.Context, req *models.CreateZoneRequest) (*models.AlertZone, error)
	GetZone(ctx context.Context, id string) (*models.AlertZone, error)
	ListZones(ctx context.Context) ([]models.AlertZone, error)
	UpdateZone(ctx context.Context, id string, req *models.UpdateZoneRequest) (*models.AlertZone, error)
	ToggleVisibility(ctx context.Context, id string) (*models.AlertZone, error)
	DeleteZone(ctx context.Context, id string) error
}

type ZoneService struct {
	repo repository.IZoneRepository
	log  *logger.Logger
}

func NewZoneService(repo repository.IZoneRepository, log *logger.Logger) *ZoneService {
	return &ZoneService{
		repo: repo,
		log:  log,
	}
}

// validateGeometry enforces the zone preconditions at creation/update time, so
// the evaluator can assume well-formed zones downstream.
func validateGeometry(latitude, longitude, radiusKm float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude must be within [-90, 90], got %v", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude must be within [-180, 180], got %v", longitude)
	}
	if radiusKm <= 0 {
		return fmt.Errorf("radius_km must be positive, got %v", radiusKm)
	}
	return nil
}

func (s *ZoneService) CreateZone(ctx context.Context, req *models.CreateZoneRequest) (*models.AlertZone, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("zone name is required")
	}
	if err := validateGeometry(req.Latitude, req.Longitude, req.RadiusKm); err != nil {
		return nil, err
	}

	zone := &models.AlertZone{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusKm:  req.RadiusKm,
		IsVisible: true,
	}

	if err := s.repo.Create(ctx, zone); err != nil {
		return nil, err
	}

	s.log.Info("Created zone %s (%s, radius %.1fkm)", zone.ID, zone.Name, zone.RadiusKm)
	return zone, nil
}

func (s *ZoneService) GetZone(ctx context.Context, id string) (*models.AlertZone, error) {
	zone, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, fmt.Errorf("zone not found: %s", id)
	}
	return zone, nil
}

func (s *ZoneService) ListZones(ctx context.Context) ([]models.AlertZone, error) {
	return s.repo.GetAll(ctx)
}

// UpdateZone replaces the zone's fields. When the request omits is_visible
// the stored value is preserved; an update must not silently reset visibility.
func (s *ZoneService) UpdateZone(ctx context.Context, id string, req *models.UpdateZoneRequest) (*models.AlertZone, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("zone name is required")
	}
	if err := validateGeometry(req.Latitude, req.Longitude, req.RadiusKm); err != nil {
		return nil, err
	}

	zone, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, fmt.Errorf("zone not found: %s", id)
	}

	zone.Name = req.Name
	zone.Latitude = req.Latitude
	zone.Longitude = req.Longitude
	zone.RadiusKm = req.RadiusKm
	if req.IsVisible != nil {
		zone.IsVisible = *req.IsVisible
	}

	if err := s.repo.Update(ctx, zone); err != nil {
		return nil, err
	}

	return zone, nil
}

// ToggleVisibility flips the display flag. Visibility never affects alert
// evaluation, only rendering.
func (s *ZoneService) ToggleVisibility(ctx context.Context, id string) (*models.AlertZone, error) {
	zone, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, fmt.Errorf("zone not found: %s", id)
	}

	zone.IsVisible = !zone.IsVisible
	if err := s.repo.Update(ctx, zone); err != nil {
		return nil, err
	}

	return zone, nil
}

// DeleteZone removes the zone only. Notifications already raised for it are
// historical snapshots and stay active until dismissed.
func (s *ZoneService) DeleteZone(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("Deleted zone %s", id)
	return nil
}
