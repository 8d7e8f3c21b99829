package repository

import (
	"context"
	"testing"
	"time"

	"QuakeWatchAPI/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewZoneRepository(db)

	mock.ExpectExec("INSERT INTO zones").
		WithArgs("zone-1", "Dhaka Metro", 23.81, 90.41, 50.0, true,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	zone := &models.AlertZone{
		ID:        "zone-1",
		Name:      "Dhaka Metro",
		Latitude:  23.81,
		Longitude: 90.41,
		RadiusKm:  50,
		IsVisible: true,
	}

	require.NoError(t, repo.Create(context.Background(), zone))
	assert.False(t, zone.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestZoneRepositoryGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewZoneRepository(db)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "name", "latitude", "longitude", "radius_km", "is_visible", "created_at", "updated_at",
		}).AddRow("zone-1", "Dhaka Metro", 23.81, 90.41, 50.0, false, now, now)

		mock.ExpectQuery("SELECT id, name, latitude").
			WithArgs("zone-1").
			WillReturnRows(rows)

		zone, err := repo.GetByID(context.Background(), "zone-1")
		require.NoError(t, err)
		require.NotNil(t, zone)
		assert.Equal(t, "Dhaka Metro", zone.Name)
		assert.False(t, zone.IsVisible)
	})

	t.Run("missing returns nil, nil", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, latitude").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		zone, err := repo.GetByID(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, zone)
	})
}

func TestZoneRepositoryUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewZoneRepository(db)

	t.Run("updates all fields", func(t *testing.T) {
		mock.ExpectExec("UPDATE zones").
			WithArgs("Renamed", 23.0, 90.0, 25.0, false, sqlmock.AnyArg(), "zone-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		zone := &models.AlertZone{
			ID: "zone-1", Name: "Renamed",
			Latitude: 23.0, Longitude: 90.0, RadiusKm: 25, IsVisible: false,
		}
		assert.NoError(t, repo.Update(context.Background(), zone))
	})

	t.Run("missing zone errors", func(t *testing.T) {
		mock.ExpectExec("UPDATE zones").
			WillReturnResult(sqlmock.NewResult(0, 0))

		zone := &models.AlertZone{ID: "missing", Name: "x", RadiusKm: 1}
		assert.Error(t, repo.Update(context.Background(), zone))
	})
}

func TestZoneRepositoryDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewZoneRepository(db)

	mock.ExpectExec("DELETE FROM zones").
		WithArgs("zone-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "zone-1"))

	mock.ExpectExec("DELETE FROM zones").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Error(t, repo.Delete(context.Background(), "missing"))
}
