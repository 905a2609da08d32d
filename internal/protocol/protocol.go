package protocol

import (
	"fmt"

	"github.com/muurk/ookbridge/internal/pulse"
)

// ID identifies one of the supported wireless protocols.
type ID int

const (
	None ID = iota
	RainGauge
	F007TP
)

// String returns the protocol's short name
func (id ID) String() string {
	switch id {
	case None:
		return "none"
	case RainGauge:
		return "raingauge"
	case F007TP:
		return "f007tp"
	default:
		return fmt.Sprintf("ID(%d)", int(id))
	}
}

// ParseID parses a protocol short name as returned by ID.String.
func ParseID(s string) (ID, error) {
	switch s {
	case "raingauge", "rain":
		return RainGauge, nil
	case "f007tp":
		return F007TP, nil
	default:
		return None, fmt.Errorf("unknown protocol %q", s)
	}
}

// Pulse windows in microseconds (exclusive bounds)
const (
	RainSyncPulseMin  = 7300
	RainSyncPulseMax  = 7700
	RainShortPulseMin = 900
	RainShortPulseMax = 1100
	RainLongPulseMin  = 2500
	RainLongPulseMax  = 2900

	F007TPShortPulseMin = 350
	F007TPShortPulseMax = 600
	F007TPLongPulseMin  = 1350
	F007TPLongPulseMax  = 1600
)

// Frame geometry
const (
	RainGaugePulses = 64 // pulses captured after the sync pulse
	RainGaugeBytes  = 8

	F007TPPulses = 39 // pulses captured after the sync long pulse
	F007TPBits   = 40 // bit 0 is the sync long pulse itself
)

// RainGaugeThresholds classify rain gauge pulses. Short is a 1, long is a 0.
var RainGaugeThresholds = pulse.Thresholds{
	Short: pulse.Window{Min: RainShortPulseMin, Max: RainShortPulseMax},
	Long:  pulse.Window{Min: RainLongPulseMin, Max: RainLongPulseMax},
	Sync:  pulse.Window{Min: RainSyncPulseMin, Max: RainSyncPulseMax},
}

// F007TPThresholds classify F007TP pulses. Short is a 1, long is a 0.
var F007TPThresholds = pulse.Thresholds{
	Short: pulse.Window{Min: F007TPShortPulseMin, Max: F007TPShortPulseMax},
	Long:  pulse.Window{Min: F007TPLongPulseMin, Max: F007TPLongPulseMax},
}

// bitFor maps a data pulse to its bit value. ok is false for any pulse that
// is neither short nor long.
func bitFor(d pulse.Duration, t pulse.Thresholds) (bit uint8, ok bool) {
	switch pulse.Classify(d, t) {
	case pulse.Short:
		return 1, true
	case pulse.Long:
		return 0, true
	default:
		return 0, false
	}
}
