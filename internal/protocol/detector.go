package protocol

import (
	"fmt"
	"time"

	"github.com/muurk/ookbridge/internal/pulse"
)

// DefaultSearchAttempts bounds one synchronisation search.
const DefaultSearchAttempts = 10000

// f007tpMinPreamble is the number of consecutive short pulses that must be
// exceeded before a long pulse counts as the F007TP sync. The sensor sends
// eight, but four or five is what usually survives reception.
const f007tpMinPreamble = 3

// State is the detector's synchronisation state.
type State int

const (
	Searching State = iota
	SyncFoundF007TP
	SyncFoundRainGauge
	TimedOut
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case SyncFoundF007TP:
		return "sync-f007tp"
	case SyncFoundRainGauge:
		return "sync-raingauge"
	case TimedOut:
		return "timed-out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Protocol returns the protocol a sync state selects, or None.
func (s State) Protocol() ID {
	switch s {
	case SyncFoundF007TP:
		return F007TP
	case SyncFoundRainGauge:
		return RainGauge
	default:
		return None
	}
}

// Detector recognises the preamble of either protocol in a pulse stream.
// A Detector is used for one search at a time; call Reset before reusing it.
type Detector struct {
	// MaxAttempts is the number of pulses examined before giving up.
	MaxAttempts int

	state    State
	attempts int
	shortRun int
}

// NewDetector creates a detector with the given attempt bound.
// A bound of zero or less uses DefaultSearchAttempts.
func NewDetector(maxAttempts int) *Detector {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSearchAttempts
	}
	return &Detector{MaxAttempts: maxAttempts}
}

// Reset returns the detector to Searching.
func (d *Detector) Reset() {
	d.state = Searching
	d.attempts = 0
	d.shortRun = 0
}

// State returns the current state.
func (d *Detector) State() State {
	return d.state
}

// Attempts returns the number of pulses fed since the last Reset.
func (d *Detector) Attempts() int {
	return d.attempts
}

// Feed advances the state machine by one pulse. Once the detector has left
// Searching, further pulses are ignored.
func (d *Detector) Feed(p pulse.Duration) State {
	if d.state != Searching {
		return d.state
	}
	d.attempts++

	switch pulse.Classify(p, F007TPThresholds) {
	case pulse.Short:
		d.shortRun++
	case pulse.Long:
		if d.shortRun > f007tpMinPreamble {
			d.state = SyncFoundF007TP
			return d.state
		}
		d.shortRun = 0
	default:
		if pulse.Classify(p, RainGaugeThresholds) == pulse.Sync {
			d.state = SyncFoundRainGauge
			return d.state
		}
		d.shortRun = 0
	}

	if d.attempts >= d.limit() {
		d.state = TimedOut
	}
	return d.state
}

func (d *Detector) limit() int {
	if d.MaxAttempts <= 0 {
		return DefaultSearchAttempts
	}
	return d.MaxAttempts
}

// Detect resets the detector and reads pulses from src until a sync pattern
// is recognised or the attempt bound is reached. Each pulse is measured with
// the given timeout; a timed-out measurement counts as an attempt.
//
// It returns the detected protocol, a *DecodeError of type ErrTypeTimeout
// when nothing was recognised, or the source's error.
func (d *Detector) Detect(src pulse.Source, timeout time.Duration) (ID, error) {
	d.Reset()
	for d.state == Searching {
		p, err := src.Measure(timeout)
		if err != nil {
			return None, err
		}
		d.Feed(p)
	}

	if d.state == TimedOut {
		return None, newTimeout(d.attempts)
	}
	return d.state.Protocol(), nil
}
