package pulse

import (
	"io"
	"time"
)

// Source measures pulses on the receiver line.
//
// Measure blocks until one pulse completes or timeout elapses. On timeout it
// returns NoPulse and a nil error. A non-nil error means the source failed or
// has no more data (io.EOF); callers stop reading when they see one.
type Source interface {
	Measure(timeout time.Duration) (Duration, error)
}

// ReplaySource plays back a recorded pulse sequence.
type ReplaySource struct {
	pulses []Duration
	pos    int
}

// NewReplaySource creates a source over a copy of pulses.
func NewReplaySource(pulses []Duration) *ReplaySource {
	cp := make([]Duration, len(pulses))
	copy(cp, pulses)
	return &ReplaySource{pulses: cp}
}

// Measure returns the next recorded pulse, or io.EOF when exhausted.
// The timeout is ignored; recorded timeouts are stored as NoPulse.
func (s *ReplaySource) Measure(timeout time.Duration) (Duration, error) {
	if s.pos >= len(s.pulses) {
		return NoPulse, io.EOF
	}
	d := s.pulses[s.pos]
	s.pos++
	return d, nil
}

// Position returns how many pulses have been consumed.
func (s *ReplaySource) Position() int {
	return s.pos
}

// Remaining returns how many pulses are left.
func (s *ReplaySource) Remaining() int {
	return len(s.pulses) - s.pos
}

// Rewind restarts playback from the first pulse.
func (s *ReplaySource) Rewind() {
	s.pos = 0
}
