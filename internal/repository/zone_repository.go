package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"QuakeWatchAPI/internal/models"
)

// IZoneRepository defines the persistence operations for alert zones.
type IZoneRepository interface {
	Create(ctx context.Context, zone *models.AlertZone) error
	GetByID(ctx context.Context, id string) (*models.AlertZone, error)
	GetAll(ctx context.Context) ([]models.AlertZone, error)
	Update(ctx context.Context, zone *models.AlertZone) error
	Delete(ctx context.Context, id string) error
}

type ZoneRepository struct {
	db *sql.DB
}

func NewZoneRepository(db *sql.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

func (r *ZoneRepository) Create(ctx context.Context, zone *models.AlertZone) error {
	query := `
		INSERT INTO zones (id, name, latitude, longitude, radius_km, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	zone.CreatedAt = now
	zone.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		zone.ID,
		zone.Name,
		zone.Latitude,
		zone.Longitude,
		zone.RadiusKm,
		zone.IsVisible,
		zone.CreatedAt,
		zone.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create zone: %w", err)
	}

	return nil
}

func (r *ZoneRepository) GetByID(ctx context.Context, id string) (*models.AlertZone, error) {
	query := `
		SELECT id, name, latitude, longitude, radius_km, is_visible, created_at, updated_at
		FROM zones
		WHERE id = $1
	`

	zone := &models.AlertZone{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&zone.ID,
		&zone.Name,
		&zone.Latitude,
		&zone.Longitude,
		&zone.RadiusKm,
		&zone.IsVisible,
		&zone.CreatedAt,
		&zone.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get zone by id: %w", err)
	}

	return zone, nil
}

func (r *ZoneRepository) GetAll(ctx context.Context) ([]models.AlertZone, error) {
	query := `
		SELECT id, name, latitude, longitude, radius_km, is_visible, created_at, updated_at
		FROM zones
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	var zones []models.AlertZone
	for rows.Next() {
		var z models.AlertZone
		err := rows.Scan(
			&z.ID, &z.Name, &z.Latitude, &z.Longitude, &z.RadiusKm, &z.IsVisible,
			&z.CreatedAt, &z.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}

	return zones, nil
}

// Update replaces every stored field of the zone. Visibility handling (omitted
// vs. explicit) is the zone service's concern; by the time a zone reaches the
// repository its IsVisible is final.
func (r *ZoneRepository) Update(ctx context.Context, zone *models.AlertZone) error {
	query := `
		UPDATE zones
		SET name = $1, latitude = $2, longitude = $3, radius_km = $4, is_visible = $5, updated_at = $6
		WHERE id = $7
	`

	zone.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		zone.Name,
		zone.Latitude,
		zone.Longitude,
		zone.RadiusKm,
		zone.IsVisible,
		zone.UpdatedAt,
		zone.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update zone: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("zone not found: %s", zone.ID)
	}

	return nil
}

func (r *ZoneRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM zones WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("zone not found: %s", id)
	}

	return nil
}
