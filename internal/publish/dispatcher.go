package publish

import (
	"encoding/json"
	"fmt"

	"github.com/muurk/ookbridge/internal/logging"
	"github.com/muurk/ookbridge/internal/protocol"
	"go.uber.org/zap"
)

// Dispatcher formats readings and publishes them.
type Dispatcher struct {
	Topics    Topics
	SourceID  string
	Publisher Publisher
}

// NewDispatcher creates a dispatcher for the given publisher.
func NewDispatcher(pub Publisher, topics Topics, sourceID string) *Dispatcher {
	return &Dispatcher{Topics: topics, SourceID: sourceID, Publisher: pub}
}

// Messages formats readings without publishing them. Readings for a protocol
// without a topic are skipped.
func (d *Dispatcher) Messages(readings []protocol.Reading) ([]Message, error) {
	msgs := make([]Message, 0, len(readings))
	for _, r := range readings {
		topic := d.Topics.For(r)
		if topic == "" {
			continue
		}
		body, err := json.Marshal(NewPayload(r, d.SourceID))
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", r.Metric, err)
		}
		msgs = append(msgs, Message{Topic: topic, Payload: string(body)})
	}
	return msgs, nil
}

// Dispatch publishes readings in order and returns how many messages were
// delivered out of how many were attempted. Failures are logged and do not
// stop the remaining messages.
func (d *Dispatcher) Dispatch(readings []protocol.Reading) (sent, total int) {
	msgs, err := d.Messages(readings)
	if err != nil {
		logging.Error("Failed to format readings", zap.Error(err))
		return 0, len(readings)
	}

	sink := nameOf(d.Publisher)
	for _, m := range msgs {
		err := d.Publisher.Publish(m.Topic, m.Payload)
		logging.LogPublish(sink, m.Topic, m.Payload, err)
		if err == nil {
			sent++
		}
	}
	return sent, len(msgs)
}

// Announce publishes the startup message carrying the bridge's address.
func (d *Dispatcher) Announce(ip string) error {
	body, err := json.Marshal(InfoPayload{IP: ip, Source: d.SourceID})
	if err != nil {
		return fmt.Errorf("encode info payload: %w", err)
	}
	topic := d.Topics.Info()
	err = d.Publisher.Publish(topic, string(body))
	logging.LogPublish(nameOf(d.Publisher), topic, string(body), err)
	return err
}
