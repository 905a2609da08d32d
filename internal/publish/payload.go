package publish

import (
	"encoding/json"

	"github.com/muurk/ookbridge/internal/protocol"
)

// Payload is the JSON body of a reading message.
type Payload struct {
	Value  json.Number `json:"value"`
	ID     *int        `json:"id,omitempty"`
	Source string      `json:"source"`
}

// InfoPayload is the JSON body of the startup announcement.
type InfoPayload struct {
	IP     string `json:"ip"`
	Source string `json:"source"`
}

// NewPayload builds the payload for a reading.
func NewPayload(r protocol.Reading, source string) Payload {
	p := Payload{
		Value:  json.Number(r.FormatValue()),
		Source: source,
	}
	if r.Protocol == protocol.RainGauge {
		id := r.DeviceID
		p.ID = &id
	}
	return p
}

// Message is one (topic, payload) pair ready for a Publisher.
type Message struct {
	Topic   string
	Payload string
}
