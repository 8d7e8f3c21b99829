package notify

import (
	"fmt"
	"sync"

	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"
)

// DefaultSeverityFloorMagnitude gates the quake-sound channel: the longer
// tone only plays for a new latest event at or above this magnitude.
const DefaultSeverityFloorMagnitude = 5.5

// ToneSpec describes one attention tone. The waveform and envelope are
// implementation-defined; the two built-in specs just have to be audibly
// distinct from each other.
type ToneSpec struct {
	Name        string  `json:"name"`
	Waveform    string  `json:"waveform"`
	FrequencyHz float64 `json:"frequency_hz"`
	DurationMs  int     `json:"duration_ms"`
	Volume      float64 `json:"volume"`
}

// SirenTone is the short attention tone for newly raised zone alerts.
func SirenTone(volume float64) ToneSpec {
	return ToneSpec{Name: "siren", Waveform: "square", FrequencyHz: 880, DurationMs: 1500, Volume: volume}
}

// QuakeTone is the longer, lower tone for a new severe latest event.
func QuakeTone(volume float64) ToneSpec {
	return ToneSpec{Name: "quake", Waveform: "sine", FrequencyHz: 220, DurationMs: 4000, Volume: volume}
}

// Sounder plays a tone on whatever audio surface is wired in.
type Sounder interface {
	PlayTone(spec ToneSpec) error
}

// Speaker synthesizes speech. Speak replaces any in-flight utterance
// (last-wins, non-queuing).
type Speaker interface {
	Speak(text string) error
}

// Cycle is the observation the coordinator hands to the dispatcher after each
// evaluation pass.
type Cycle struct {
	// ActiveAlertCount is the size of the active-alert collection after the
	// merge.
	ActiveAlertCount int
	// HeadAlert is the most recently raised alert (head of the collection
	// after the prepend-merge), nil when the collection is empty.
	HeadAlert *models.AlertNotification
	// LatestEventID is the id of the first element of the snapshot under the
	// feed's descending-time sort, empty when the snapshot is empty.
	LatestEventID string
	// LatestEventMagnitude is the magnitude of that event.
	LatestEventMagnitude float64
}

// Dispatcher drives the tone and voice channels off two triggers: the
// active-alert count increasing, and the latest feed event changing to a
// sufficiently severe one. The visual channel is the coordinator's websocket
// broadcast and is not gated here.
//
// Channel failures never propagate; audio is best-effort and the dispatcher
// degrades to silence with a log line.
type Dispatcher struct {
	sounder       Sounder
	speaker       Speaker
	severityFloor float64
	log           *logger.Logger

	mu              sync.Mutex
	prevAlertCount  int
	prevLatestID    string
	seenFirstLatest bool
}

func NewDispatcher(sounder Sounder, speaker Speaker, severityFloor float64, log *logger.Logger) *Dispatcher {
	if severityFloor <= 0 {
		severityFloor = DefaultSeverityFloorMagnitude
	}
	return &Dispatcher{
		sounder:       sounder,
		speaker:       speaker,
		severityFloor: severityFloor,
		log:           log,
	}
}

// Dispatch examines one cycle and fires the enabled channels. The carried
// state (previous alert count, previous latest event id) is updated
// unconditionally, independent of channel enablement, so toggling a channel
// off and back on never replays a stale backlog.
func (d *Dispatcher) Dispatch(cycle Cycle, settings models.Settings) {
	d.mu.Lock()
	countIncreased := cycle.ActiveAlertCount > d.prevAlertCount
	latestChanged := d.seenFirstLatest && cycle.LatestEventID != "" && cycle.LatestEventID != d.prevLatestID

	d.prevAlertCount = cycle.ActiveAlertCount
	if cycle.LatestEventID != "" {
		d.prevLatestID = cycle.LatestEventID
		d.seenFirstLatest = true
	}
	d.mu.Unlock()

	if countIncreased {
		if settings.SoundEnabled && settings.SirenEnabled {
			d.playTone(SirenTone(settings.Volume))
		}
		if settings.VoiceEnabled && cycle.HeadAlert != nil {
			d.speak(*cycle.HeadAlert)
		}
	}

	if latestChanged && cycle.LatestEventMagnitude >= d.severityFloor {
		if settings.SoundEnabled && settings.QuakeSoundEnabled {
			d.playTone(QuakeTone(settings.Volume))
		}
	}
}

// ObserveDismissal records a count decrease that happened outside an
// evaluation cycle (user dismissed alerts), so the next raised alert still
// registers as an increase.
func (d *Dispatcher) ObserveDismissal(count int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if count < d.prevAlertCount {
		d.prevAlertCount = count
	}
}

func (d *Dispatcher) playTone(spec ToneSpec) {
	if d.sounder == nil {
		return
	}
	if err := d.sounder.PlayTone(spec); err != nil {
		d.log.Warn("Tone channel unavailable (%s): %v", spec.Name, err)
	}
}

// speak announces only the single most recently raised alert per triggering
// increase, even when the cycle added several at once.
func (d *Dispatcher) speak(alert models.AlertNotification) {
	if d.speaker == nil {
		return
	}
	text := fmt.Sprintf("Earthquake alert. Magnitude %.1f near %s.", alert.Magnitude, alert.ZoneName)
	if err := d.speaker.Speak(text); err != nil {
		d.log.Warn("Voice channel unavailable: %v", err)
	}
}
