package pulse

import (
	"fmt"
	"time"
)

// Duration is the length of one high level on the receiver line, in microseconds.
type Duration uint32

// NoPulse is returned by a Source when no pulse completed within the timeout.
const NoPulse Duration = 0

// Std converts the duration to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d) * time.Microsecond
}

// FromStd converts a time.Duration to a pulse Duration, truncating to microseconds.
func FromStd(d time.Duration) Duration {
	if d <= 0 {
		return NoPulse
	}
	return Duration(d / time.Microsecond)
}

// Class is the symbolic meaning of a pulse under a given set of thresholds.
type Class int

const (
	Invalid Class = iota
	Short
	Long
	Sync
)

// String returns a human-readable class name
func (c Class) String() string {
	switch c {
	case Invalid:
		return "invalid"
	case Short:
		return "short"
	case Long:
		return "long"
	case Sync:
		return "sync"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Window is an open interval (Min, Max) of pulse durations.
// The zero Window matches nothing.
type Window struct {
	Min Duration
	Max Duration
}

// Contains reports whether Min < d < Max.
func (w Window) Contains(d Duration) bool {
	return d > w.Min && d < w.Max
}

// Thresholds is the set of windows used to classify one protocol's pulses.
type Thresholds struct {
	Short Window
	Long  Window
	Sync  Window // zero when the protocol has no sync pulse
}

// Classify maps a duration to its class. Short is tested first, then Long,
// then Sync.
func Classify(d Duration, t Thresholds) Class {
	switch {
	case t.Short.Contains(d):
		return Short
	case t.Long.Contains(d):
		return Long
	case t.Sync.Contains(d):
		return Sync
	default:
		return Invalid
	}
}
