package protocol

import (
	"fmt"
	"strconv"
)

// Metric is the kind of value a reading carries.
type Metric int

const (
	Temperature Metric = iota
	Rainfall
	Humidity
	LowBattery
	ResetFlag
)

// String returns the metric's topic name
func (m Metric) String() string {
	switch m {
	case Temperature:
		return "temperature"
	case Rainfall:
		return "rain"
	case Humidity:
		return "humidity"
	case LowBattery:
		return "low_battery"
	case ResetFlag:
		return "reset"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// Units attached to readings
const (
	UnitCelsius   = "C"
	UnitRainCount = "count"
	UnitPercent   = "%"
)

// Reading is one published sensor value. Readings are only built from
// frames that passed validation.
type Reading struct {
	Protocol  ID
	DeviceID  int
	Metric    Metric
	Value     float64
	Precision int    // decimals rendered on the wire
	Unit      string // empty for flags
	Text      string // wire value set by the extractor; overrides Precision
}

// FormatValue renders the wire value: Text when the extractor set one,
// otherwise Value with the reading's precision, e.g. "21.4".
func (r Reading) FormatValue() string {
	if r.Text != "" {
		return r.Text
	}
	return strconv.FormatFloat(r.Value, 'f', r.Precision, 64)
}

// String returns a debug representation of the reading
func (r Reading) String() string {
	return fmt.Sprintf("%s[%d] %s=%s%s", r.Protocol, r.DeviceID, r.Metric, r.FormatValue(), r.Unit)
}
