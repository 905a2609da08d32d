package decoder

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/muurk/ookbridge/internal/protocol"
)

// Event is the JSON form of an Outcome sent to live feed clients.
type Event struct {
	Time      time.Time       `json:"time"`
	Protocol  string          `json:"protocol"`
	Readings  []EventReading  `json:"readings,omitempty"`
	Rejection *EventRejection `json:"rejection,omitempty"`
	ElapsedMS int64           `json:"elapsed_ms"`
	Stats     Snapshot        `json:"stats"`
}

// EventReading is one reading within an Event.
type EventReading struct {
	DeviceID int         `json:"device_id"`
	Metric   string      `json:"metric"`
	Value    json.Number `json:"value"`
	Unit     string      `json:"unit,omitempty"`
}

// EventRejection describes why a cycle produced no reading.
type EventRejection struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

// NewEvent builds the feed representation of an outcome.
func NewEvent(o Outcome, stats Snapshot) Event {
	ev := Event{
		Time:      o.Started.Add(o.Elapsed),
		Protocol:  o.Protocol.String(),
		ElapsedMS: o.Elapsed.Milliseconds(),
		Stats:     stats,
	}

	for _, r := range o.Readings {
		ev.Readings = append(ev.Readings, EventReading{
			DeviceID: r.DeviceID,
			Metric:   r.Metric.String(),
			Value:    json.Number(r.FormatValue()),
			Unit:     r.Unit,
		})
	}

	if o.Rejection != nil {
		rej := &EventRejection{Kind: o.RejectionKind(), Message: o.Rejection.Error(), Index: -1}
		var de *protocol.DecodeError
		if errors.As(o.Rejection, &de) {
			rej.Message = de.Message
			rej.Index = de.Index
		}
		ev.Rejection = rej
	}

	return ev
}

// Key returns a stable key for a reading, used by the terminal monitor to
// keep the latest value per sensor.
func (r EventReading) Key(proto string) string {
	return proto + "/" + strconv.Itoa(r.DeviceID) + "/" + r.Metric
}
