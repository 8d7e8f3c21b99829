// internal/models/models.go

package models

import (
	"time"
)

// SeismicEvent is one detected earthquake from the feed snapshot. Events are
// never mutated; each fetch supersedes the previous snapshot wholesale.
type SeismicEvent struct {
	ID         string  `json:"id"`
	Magnitude  float64 `json:"magnitude"`
	Place      string  `json:"place"`
	OccurredAt int64   `json:"occurred_at"` // milliseconds since epoch
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DepthKm    float64 `json:"depth_km"`
}

// AlertZone is a user-defined circular region of interest. Visibility affects
// rendering only; an invisible zone still raises alerts.
type AlertZone struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	RadiusKm  float64   `json:"radius_km" db:"radius_km"`
	IsVisible bool      `json:"is_visible" db:"is_visible"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AlertNotification is a raised, active correlation of one event with one
// zone. The ID is deterministic ("{eventID}-{zoneID}") and doubles as the
// dedup key. Event and zone fields are snapshotted at raise time so the
// notification stays meaningful after the zone is edited or the event drops
// out of the feed window.
type AlertNotification struct {
	ID         string    `json:"id" db:"id"`
	EventID    string    `json:"event_id" db:"event_id"`
	ZoneID     string    `json:"zone_id" db:"zone_id"`
	ZoneName   string    `json:"zone_name" db:"zone_name"`
	EventPlace string    `json:"event_place" db:"event_place"`
	Magnitude  float64   `json:"magnitude" db:"magnitude"`
	OccurredAt int64     `json:"occurred_at" db:"occurred_at"`
	DistanceKm float64   `json:"distance_km" db:"distance_km"`
	RaisedAt   time.Time `json:"raised_at" db:"raised_at"`
}

// Settings is the user-adjustable surface consumed by the evaluator and the
// dispatcher. It is threaded through as a value, never read from globals.
type Settings struct {
	MinMagnitude      float64 `json:"min_magnitude"`
	SoundEnabled      bool    `json:"sound_enabled"`
	SirenEnabled      bool    `json:"siren_enabled"`
	QuakeSoundEnabled bool    `json:"quake_sound_enabled"`
	VoiceEnabled      bool    `json:"voice_enabled"`
	Volume            float64 `json:"volume"`
}

// DefaultSettings returns the startup defaults used before anything is persisted.
func DefaultSettings() Settings {
	return Settings{
		MinMagnitude:      3.0,
		SoundEnabled:      true,
		SirenEnabled:      true,
		QuakeSoundEnabled: true,
		VoiceEnabled:      true,
		Volume:            1.0,
	}
}

type CreateZoneRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
}

// UpdateZoneRequest replaces all fields of a zone. IsVisible is a pointer so
// an omitted value preserves the stored visibility instead of resetting it.
type UpdateZoneRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	IsVisible *bool   `json:"is_visible"`
}

type UpdateSettingsRequest struct {
	MinMagnitude      *float64 `json:"min_magnitude"`
	SoundEnabled      *bool    `json:"sound_enabled"`
	SirenEnabled      *bool    `json:"siren_enabled"`
	QuakeSoundEnabled *bool    `json:"quake_sound_enabled"`
	VoiceEnabled      *bool    `json:"voice_enabled"`
	Volume            *float64 `json:"volume"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type ChatResponse struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// LocatedPlace is the optional result of the image-understanding collaborator
// used to pre-populate a new zone. A nil result means the model could not
// identify a location; that is not an error.
type LocatedPlace struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  struct {
		Database bool `json:"database"`
		Redis    bool `json:"redis"`
		MQTT     bool `json:"mqtt"`
		Feed     bool `json:"feed"`
	} `json:"services"`
}
