package repository

import (
	"context"
	"database/sql"
	"fmt"

	"QuakeWatchAPI/internal/models"
)

// IAlertRepository records every raised notification for audit. The live
// active-alert collection is in-memory; deleting a zone or dismissing an
// alert never touches this history.
type IAlertRepository interface {
	Insert(ctx context.Context, alert *models.AlertNotification) error
	InsertBatch(ctx context.Context, alerts []models.AlertNotification) error
	GetHistory(ctx context.Context, limit, offset int) ([]models.AlertNotification, error)
	CountByZone(ctx context.Context) (map[string]int, error)
}

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Insert(ctx context.Context, alert *models.AlertNotification) error {
	query := `
		INSERT INTO alert_history (
			id, event_id, zone_id, zone_name, event_place,
			magnitude, occurred_at, distance_km, raised_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.EventID,
		alert.ZoneID,
		alert.ZoneName,
		alert.EventPlace,
		alert.Magnitude,
		alert.OccurredAt,
		alert.DistanceKm,
		alert.RaisedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert alert history: %w", err)
	}

	return nil
}

func (r *AlertRepository) InsertBatch(ctx context.Context, alerts []models.AlertNotification) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin alert history tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO alert_history (
			id, event_id, zone_id, zone_name, event_place,
			magnitude, occurred_at, distance_km, raised_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	for _, a := range alerts {
		if _, err := tx.ExecContext(ctx, query,
			a.ID, a.EventID, a.ZoneID, a.ZoneName, a.EventPlace,
			a.Magnitude, a.OccurredAt, a.DistanceKm, a.RaisedAt,
		); err != nil {
			return fmt.Errorf("failed to insert alert %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (r *AlertRepository) GetHistory(ctx context.Context, limit, offset int) ([]models.AlertNotification, error) {
	query := `
		SELECT id, event_id, zone_id, zone_name, event_place,
		       magnitude, occurred_at, distance_km, raised_at
		FROM alert_history
		ORDER BY raised_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer rows.Close()

	var alerts []models.AlertNotification
	for rows.Next() {
		var a models.AlertNotification
		err := rows.Scan(
			&a.ID, &a.EventID, &a.ZoneID, &a.ZoneName, &a.EventPlace,
			&a.Magnitude, &a.OccurredAt, &a.DistanceKm, &a.RaisedAt,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	return alerts, nil
}

// CountByZone returns how many notifications each zone has raised, for the
// activity report.
func (r *AlertRepository) CountByZone(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT zone_name, COUNT(*)
		FROM alert_history
		GROUP BY zone_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var zoneName string
		var count int
		if err := rows.Scan(&zoneName, &count); err != nil {
			return nil, err
		}
		counts[zoneName] = count
	}
	return counts, nil
}
