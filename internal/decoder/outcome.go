package decoder

import (
	"time"

	"github.com/muurk/ookbridge/internal/protocol"
)

// Outcome is the result of one decode cycle.
type Outcome struct {
	Protocol  protocol.ID // None when no sync was found
	Readings  []protocol.Reading
	RainGauge *protocol.RainGaugeReading // set for accepted rain gauge frames
	F007TP    *protocol.F007TPReading    // set for accepted F007TP frames
	Rejection error                      // *protocol.DecodeError, nil when accepted
	Started   time.Time
	Elapsed   time.Duration
}

// Accepted reports whether the cycle produced readings.
func (o Outcome) Accepted() bool {
	return o.Rejection == nil && o.Protocol != protocol.None
}

// RejectionKind returns "timeout", "structural" or "integrity", or "" for
// an accepted outcome.
func (o Outcome) RejectionKind() string {
	if o.Rejection == nil {
		return ""
	}
	t, ok := protocol.ErrorTypeOf(o.Rejection)
	if !ok {
		return "unknown"
	}
	return t.Kind()
}

// Observer receives every cycle outcome.
type Observer interface {
	Observe(Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Outcome)

// Observe calls f(o).
func (f ObserverFunc) Observe(o Outcome) {
	f(o)
}
