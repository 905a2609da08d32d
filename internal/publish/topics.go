package publish

import (
	"strconv"

	"github.com/muurk/ookbridge/internal/protocol"
)

// Default topic bases
const (
	DefaultRainGaugeBase = "exp/NX6331"
	DefaultF007TPBase    = "exp/F007TP-"
)

// Topics holds the per-protocol topic bases.
type Topics struct {
	RainGauge string
	F007TP    string // the channel number is appended directly
}

// DefaultTopics returns the standard topic bases.
func DefaultTopics() Topics {
	return Topics{RainGauge: DefaultRainGaugeBase, F007TP: DefaultF007TPBase}
}

// For returns the topic a reading is published on, or "" for a protocol
// without a topic base.
func (t Topics) For(r protocol.Reading) string {
	switch r.Protocol {
	case protocol.RainGauge:
		return t.RainGauge + "/data/" + r.Metric.String()
	case protocol.F007TP:
		return t.F007TP + strconv.Itoa(r.DeviceID) + "/data/" + r.Metric.String()
	default:
		return ""
	}
}

// Info returns the topic for the startup announcement.
func (t Topics) Info() string {
	return t.RainGauge + "/data/info"
}
