package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"QuakeWatchAPI/internal/models"
)

// settingsKey is the fixed identifier the settings document is stored under.
const settingsKey = "alert_settings"

// ISettingsRepository persists the single settings document.
type ISettingsRepository interface {
	Load(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
}

// SettingsRepository keeps the settings as one JSON document in a key-value
// table, loaded once at startup and rewritten on every mutation.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load returns the persisted settings, or the defaults when nothing has been
// saved yet.
func (r *SettingsRepository) Load(ctx context.Context) (models.Settings, error) {
	query := `SELECT value FROM app_settings WHERE key = $1`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, settingsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := models.DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}

	return settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO app_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := r.db.ExecContext(ctx, query, settingsKey, raw); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
