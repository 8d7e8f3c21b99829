package service

import (
	"context"
	"fmt"
	"testing"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSettingsRepo struct {
	stored  models.Settings
	saveErr error
	saves   int
}

func (r *memSettingsRepo) Load(ctx context.Context) (models.Settings, error) {
	return r.stored, nil
}

func (r *memSettingsRepo) Save(ctx context.Context, settings models.Settings) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = settings
	r.saves++
	return nil
}

func newSettingsService(t *testing.T, repo *memSettingsRepo) *SettingsService {
	t.Helper()
	log, err := logger.New(logger.Config{Level: logger.ERROR, Mode: logger.MINIMAL})
	require.NoError(t, err)

	svc, err := NewSettingsService(context.Background(), repo, log)
	require.NoError(t, err)
	return svc
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestSettingsServiceUpdate(t *testing.T) {
	t.Run("loads persisted settings at startup", func(t *testing.T) {
		stored := models.DefaultSettings()
		stored.MinMagnitude = 4.5
		stored.VoiceEnabled = false

		svc := newSettingsService(t, &memSettingsRepo{stored: stored})

		got := svc.Get()
		assert.Equal(t, 4.5, got.MinMagnitude)
		assert.False(t, got.VoiceEnabled)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		repo := &memSettingsRepo{stored: models.DefaultSettings()}
		svc := newSettingsService(t, repo)

		updated, err := svc.Update(context.Background(), &models.UpdateSettingsRequest{
			MinMagnitude: floatPtr(5.0),
		})
		require.NoError(t, err)

		assert.Equal(t, 5.0, updated.MinMagnitude)
		assert.True(t, updated.SoundEnabled)
		assert.True(t, updated.VoiceEnabled)
		assert.Equal(t, 1.0, updated.Volume)
		assert.Equal(t, 1, repo.saves)
	})

	t.Run("rejects negative threshold", func(t *testing.T) {
		repo := &memSettingsRepo{stored: models.DefaultSettings()}
		svc := newSettingsService(t, repo)

		_, err := svc.Update(context.Background(), &models.UpdateSettingsRequest{
			MinMagnitude: floatPtr(-1),
		})
		assert.Error(t, err)
		assert.Zero(t, repo.saves)
	})

	t.Run("rejects out-of-range volume", func(t *testing.T) {
		repo := &memSettingsRepo{stored: models.DefaultSettings()}
		svc := newSettingsService(t, repo)

		_, err := svc.Update(context.Background(), &models.UpdateSettingsRequest{
			Volume: floatPtr(1.5),
		})
		assert.Error(t, err)
	})

	t.Run("failed save does not change the cache", func(t *testing.T) {
		repo := &memSettingsRepo{stored: models.DefaultSettings(), saveErr: fmt.Errorf("db down")}
		svc := newSettingsService(t, repo)

		_, err := svc.Update(context.Background(), &models.UpdateSettingsRequest{
			SoundEnabled: boolPtr(false),
		})
		assert.Error(t, err)
		assert.True(t, svc.Get().SoundEnabled)
	})

	t.Run("channel toggles apply independently", func(t *testing.T) {
		repo := &memSettingsRepo{stored: models.DefaultSettings()}
		svc := newSettingsService(t, repo)

		updated, err := svc.Update(context.Background(), &models.UpdateSettingsRequest{
			SirenEnabled: boolPtr(false),
			VoiceEnabled: boolPtr(false),
		})
		require.NoError(t, err)

		assert.False(t, updated.SirenEnabled)
		assert.False(t, updated.VoiceEnabled)
		assert.True(t, updated.SoundEnabled)
		assert.True(t, updated.QuakeSoundEnabled)
	})
}
