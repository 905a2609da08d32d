package decoder

import (
	"fmt"
	"time"

	"github.com/muurk/ookbridge/internal/protocol"
)

// Config controls the timing of the receive loop.
type Config struct {
	// SearchTimeout bounds each pulse measurement while looking for sync.
	SearchTimeout time.Duration
	// FrameTimeout bounds each pulse measurement while capturing a frame.
	FrameTimeout time.Duration
	// SearchAttempts is the number of pulses one sync search examines.
	SearchAttempts int
	// RainGaugeHoldoff is how long pulses are discarded after an accepted
	// rain gauge frame. The gauge repeats each transmission, and the holdoff
	// skips the repeats. Sources without real timing (ReplaySource) should
	// use zero, since they would be drained.
	RainGaugeHoldoff time.Duration
}

// DefaultConfig returns the timings the sensors were tuned for.
func DefaultConfig() Config {
	return Config{
		SearchTimeout:    10 * time.Millisecond,
		FrameTimeout:     time.Second,
		SearchAttempts:   protocol.DefaultSearchAttempts,
		RainGaugeHoldoff: time.Second,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("search timeout must be positive, got %s", c.SearchTimeout)
	}
	if c.FrameTimeout <= 0 {
		return fmt.Errorf("frame timeout must be positive, got %s", c.FrameTimeout)
	}
	if c.SearchAttempts <= 0 {
		return fmt.Errorf("search attempts must be positive, got %d", c.SearchAttempts)
	}
	if c.RainGaugeHoldoff < 0 {
		return fmt.Errorf("rain gauge holdoff must not be negative, got %s", c.RainGaugeHoldoff)
	}
	return nil
}
