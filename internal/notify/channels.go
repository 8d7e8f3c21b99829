package notify

import (
	"QuakeWatchAPI/internal/mqtt"
)

// MQTT topics the player clients subscribe to.
const (
	ToneTopic  = "quakewatch/notify/tone"
	VoiceTopic = "quakewatch/notify/voice"
)

// MQTTSounder publishes tone commands for player clients (kiosk displays,
// speaker gateways) to render.
type MQTTSounder struct {
	client *mqtt.Client
}

func NewMQTTSounder(client *mqtt.Client) *MQTTSounder {
	return &MQTTSounder{client: client}
}

func (s *MQTTSounder) PlayTone(spec ToneSpec) error {
	return s.client.PublishJSON(ToneTopic, spec)
}

// Utterance is the voice channel payload. Replace tells players to cancel any
// in-flight utterance before speaking this one.
type Utterance struct {
	Text    string `json:"text"`
	Replace bool   `json:"replace"`
}

// MQTTSpeaker publishes speech commands. Each publish replaces the previous
// utterance, matching the dispatcher's last-wins rule.
type MQTTSpeaker struct {
	client *mqtt.Client
}

func NewMQTTSpeaker(client *mqtt.Client) *MQTTSpeaker {
	return &MQTTSpeaker{client: client}
}

func (s *MQTTSpeaker) Speak(text string) error {
	return s.client.PublishJSON(VoiceTopic, Utterance{Text: text, Replace: true})
}
