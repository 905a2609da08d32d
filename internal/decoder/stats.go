package decoder

import (
	"sync/atomic"
	"time"

	"github.com/muurk/ookbridge/internal/protocol"
)

// Stats counts cycle outcomes. It is safe for concurrent use; the decode
// loop records and HTTP handlers read.
type Stats struct {
	cycles          atomic.Uint64
	timeouts        atomic.Uint64
	structural      atomic.Uint64
	integrity       atomic.Uint64
	rainGaugeFrames atomic.Uint64
	f007tpFrames    atomic.Uint64
	readings        atomic.Uint64
	lastReading     atomic.Int64 // unix nanoseconds, 0 = never
	started         time.Time
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Cycles          uint64    `json:"cycles"`
	Timeouts        uint64    `json:"timeouts"`
	Structural      uint64    `json:"structural_rejections"`
	Integrity       uint64    `json:"integrity_failures"`
	RainGaugeFrames uint64    `json:"raingauge_frames"`
	F007TPFrames    uint64    `json:"f007tp_frames"`
	Readings        uint64    `json:"readings"`
	LastReading     time.Time `json:"last_reading"`
	Uptime          string    `json:"uptime"`
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// Record counts one outcome.
func (s *Stats) Record(o Outcome) {
	s.cycles.Add(1)

	if o.Rejection != nil {
		switch o.RejectionKind() {
		case "timeout":
			s.timeouts.Add(1)
		case "structural":
			s.structural.Add(1)
		case "integrity":
			s.integrity.Add(1)
		}
		return
	}

	switch o.Protocol {
	case protocol.RainGauge:
		s.rainGaugeFrames.Add(1)
	case protocol.F007TP:
		s.f007tpFrames.Add(1)
	default:
		return
	}
	s.readings.Add(uint64(len(o.Readings)))
	s.lastReading.Store(o.Started.Add(o.Elapsed).UnixNano())
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Cycles:          s.cycles.Load(),
		Timeouts:        s.timeouts.Load(),
		Structural:      s.structural.Load(),
		Integrity:       s.integrity.Load(),
		RainGaugeFrames: s.rainGaugeFrames.Load(),
		F007TPFrames:    s.f007tpFrames.Load(),
		Readings:        s.readings.Load(),
		Uptime:          time.Since(s.started).Truncate(time.Second).String(),
	}
	if ns := s.lastReading.Load(); ns != 0 {
		snap.LastReading = time.Unix(0, ns)
	}
	return snap
}

// Rejections returns the total number of cycles without a reading.
func (s Snapshot) Rejections() uint64 {
	return s.Timeouts + s.Structural + s.Integrity
}
