package notify

import (
	"errors"
	"testing"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSounder struct {
	tones []ToneSpec
	err   error
}

func (f *fakeSounder) PlayTone(spec ToneSpec) error {
	f.tones = append(f.tones, spec)
	return f.err
}

type fakeSpeaker struct {
	utterances []string
	err        error
}

func (f *fakeSpeaker) Speak(text string) error {
	f.utterances = append(f.utterances, text)
	return f.err
}

func newDispatcher(t *testing.T) (*Dispatcher, *fakeSounder, *fakeSpeaker) {
	t.Helper()
	log, err := logger.New(logger.Config{Level: logger.ERROR, Mode: logger.MINIMAL})
	require.NoError(t, err)

	sounder := &fakeSounder{}
	speaker := &fakeSpeaker{}
	return NewDispatcher(sounder, speaker, DefaultSeverityFloorMagnitude, log), sounder, speaker
}

func allOn() models.Settings {
	return models.DefaultSettings()
}

func head(id, zoneName string, magnitude float64) *models.AlertNotification {
	return &models.AlertNotification{ID: id, ZoneName: zoneName, Magnitude: magnitude}
}

func TestDispatchAlertCountIncrease(t *testing.T) {
	t.Run("siren and one utterance per cycle", func(t *testing.T) {
		d, sounder, speaker := newDispatcher(t)

		// Three alerts raised in one cycle: one siren, one utterance.
		d.Dispatch(Cycle{ActiveAlertCount: 3, HeadAlert: head("a", "Dhaka Metro", 4.0)}, allOn())

		require.Len(t, sounder.tones, 1)
		assert.Equal(t, "siren", sounder.tones[0].Name)
		require.Len(t, speaker.utterances, 1)
		assert.Contains(t, speaker.utterances[0], "Dhaka Metro")
		assert.Contains(t, speaker.utterances[0], "4.0")
	})

	t.Run("two consecutive adding cycles each fire once", func(t *testing.T) {
		d, sounder, speaker := newDispatcher(t)

		d.Dispatch(Cycle{ActiveAlertCount: 2, HeadAlert: head("a", "Zone A", 4.0)}, allOn())
		d.Dispatch(Cycle{ActiveAlertCount: 5, HeadAlert: head("b", "Zone B", 5.0)}, allOn())

		assert.Len(t, sounder.tones, 2)
		require.Len(t, speaker.utterances, 2)
		assert.Contains(t, speaker.utterances[1], "Zone B")
	})

	t.Run("unchanged count stays silent", func(t *testing.T) {
		d, sounder, speaker := newDispatcher(t)

		d.Dispatch(Cycle{ActiveAlertCount: 2, HeadAlert: head("a", "Zone A", 4.0)}, allOn())
		d.Dispatch(Cycle{ActiveAlertCount: 2, HeadAlert: head("a", "Zone A", 4.0)}, allOn())

		assert.Len(t, sounder.tones, 1)
		assert.Len(t, speaker.utterances, 1)
	})

	t.Run("alert raised after dismissal still fires", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		d.Dispatch(Cycle{ActiveAlertCount: 3, HeadAlert: head("a", "Zone A", 4.0)}, allOn())
		d.ObserveDismissal(1)
		d.Dispatch(Cycle{ActiveAlertCount: 2, HeadAlert: head("b", "Zone B", 4.5)}, allOn())

		assert.Len(t, sounder.tones, 2)
	})

	t.Run("dismissal then same count does not re-fire", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		d.Dispatch(Cycle{ActiveAlertCount: 3, HeadAlert: head("a", "Zone A", 4.0)}, allOn())
		// User dismissed two alerts, next cycle sees a lower count.
		d.Dispatch(Cycle{ActiveAlertCount: 1, HeadAlert: head("a", "Zone A", 4.0)}, allOn())

		assert.Len(t, sounder.tones, 1)
	})
}

func TestDispatchChannelGating(t *testing.T) {
	t.Run("master sound off silences the siren but not the voice", func(t *testing.T) {
		d, sounder, speaker := newDispatcher(t)

		settings := allOn()
		settings.SoundEnabled = false
		d.Dispatch(Cycle{ActiveAlertCount: 1, HeadAlert: head("a", "Zone A", 4.0)}, settings)

		assert.Empty(t, sounder.tones)
		assert.Len(t, speaker.utterances, 1)
	})

	t.Run("siren channel off", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		settings := allOn()
		settings.SirenEnabled = false
		d.Dispatch(Cycle{ActiveAlertCount: 1, HeadAlert: head("a", "Zone A", 4.0)}, settings)

		assert.Empty(t, sounder.tones)
	})

	t.Run("voice channel off", func(t *testing.T) {
		d, _, speaker := newDispatcher(t)

		settings := allOn()
		settings.VoiceEnabled = false
		d.Dispatch(Cycle{ActiveAlertCount: 1, HeadAlert: head("a", "Zone A", 4.0)}, settings)

		assert.Empty(t, speaker.utterances)
	})

	t.Run("volume is threaded into the tone spec", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		settings := allOn()
		settings.Volume = 0.4
		d.Dispatch(Cycle{ActiveAlertCount: 1, HeadAlert: head("a", "Zone A", 4.0)}, settings)

		require.Len(t, sounder.tones, 1)
		assert.Equal(t, 0.4, sounder.tones[0].Volume)
	})

	t.Run("state advances while channels are disabled", func(t *testing.T) {
		d, sounder, speaker := newDispatcher(t)

		muted := models.Settings{}
		d.Dispatch(Cycle{ActiveAlertCount: 2, HeadAlert: head("a", "Zone A", 4.0)}, muted)
		require.Empty(t, sounder.tones)
		require.Empty(t, speaker.utterances)

		// Re-enabling must not replay the increase already observed.
		d.Dispatch(Cycle{ActiveAlertCount: 2, HeadAlert: head("a", "Zone A", 4.0)}, allOn())
		assert.Empty(t, sounder.tones)
		assert.Empty(t, speaker.utterances)
	})
}

func TestDispatchLatestEvent(t *testing.T) {
	t.Run("never fires on first load", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		d.Dispatch(Cycle{LatestEventID: "ev1", LatestEventMagnitude: 7.2}, allOn())
		assert.Empty(t, sounder.tones)
	})

	t.Run("fires on a new severe latest event", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		d.Dispatch(Cycle{LatestEventID: "ev1", LatestEventMagnitude: 2.0}, allOn())
		d.Dispatch(Cycle{LatestEventID: "ev2", LatestEventMagnitude: 6.0}, allOn())

		require.Len(t, sounder.tones, 1)
		assert.Equal(t, "quake", sounder.tones[0].Name)
	})

	t.Run("silent below the severity floor", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		d.Dispatch(Cycle{LatestEventID: "ev1", LatestEventMagnitude: 2.0}, allOn())
		d.Dispatch(Cycle{LatestEventID: "ev2", LatestEventMagnitude: 5.4}, allOn())

		assert.Empty(t, sounder.tones)
	})

	t.Run("exactly at the floor fires", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		d.Dispatch(Cycle{LatestEventID: "ev1", LatestEventMagnitude: 2.0}, allOn())
		d.Dispatch(Cycle{LatestEventID: "ev2", LatestEventMagnitude: 5.5}, allOn())

		assert.Len(t, sounder.tones, 1)
	})

	t.Run("refetch with the same latest id stays silent", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		d.Dispatch(Cycle{LatestEventID: "ev1", LatestEventMagnitude: 7.0}, allOn())
		d.Dispatch(Cycle{LatestEventID: "ev1", LatestEventMagnitude: 7.0}, allOn())

		assert.Empty(t, sounder.tones)
	})

	t.Run("quake channel gated independently", func(t *testing.T) {
		d, sounder, _ := newDispatcher(t)

		settings := allOn()
		settings.QuakeSoundEnabled = false
		d.Dispatch(Cycle{LatestEventID: "ev1", LatestEventMagnitude: 2.0}, settings)
		d.Dispatch(Cycle{LatestEventID: "ev2", LatestEventMagnitude: 7.0}, settings)

		assert.Empty(t, sounder.tones)
	})
}

func TestDispatchDegradesSilently(t *testing.T) {
	log, err := logger.New(logger.Config{Level: logger.ERROR, Mode: logger.MINIMAL})
	require.NoError(t, err)

	sounder := &fakeSounder{err: errors.New("audio context blocked")}
	speaker := &fakeSpeaker{err: errors.New("synth unavailable")}
	d := NewDispatcher(sounder, speaker, 0, log)

	assert.NotPanics(t, func() {
		d.Dispatch(Cycle{ActiveAlertCount: 1, HeadAlert: head("a", "Zone A", 4.0)}, allOn())
	})
}

func TestDispatchBothTriggersInOneCycle(t *testing.T) {
	d, sounder, speaker := newDispatcher(t)

	d.Dispatch(Cycle{ActiveAlertCount: 0, LatestEventID: "ev1", LatestEventMagnitude: 1.0}, allOn())
	d.Dispatch(Cycle{
		ActiveAlertCount:     1,
		HeadAlert:            head("a", "Zone A", 6.1),
		LatestEventID:        "ev2",
		LatestEventMagnitude: 6.1,
	}, allOn())

	require.Len(t, sounder.tones, 2)
	assert.Equal(t, "siren", sounder.tones[0].Name)
	assert.Equal(t, "quake", sounder.tones[1].Name)
	assert.Len(t, speaker.utterances, 1)
}
