package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/muurk/ookbridge/internal/logging"
	"github.com/muurk/ookbridge/internal/protocol"
	"github.com/muurk/ookbridge/internal/pulse"
	"go.uber.org/zap"
)

// Decoder turns a pulse stream into sensor readings.
type Decoder struct {
	src       pulse.Source
	cfg       Config
	detector  *protocol.Detector
	observers []Observer
	stats     *Stats
}

// New creates a decoder reading from src. Observers are notified of every
// outcome in the order given.
func New(src pulse.Source, cfg Config, observers ...Observer) *Decoder {
	return &Decoder{
		src:       src,
		cfg:       cfg,
		detector:  protocol.NewDetector(cfg.SearchAttempts),
		observers: observers,
		stats:     NewStats(),
	}
}

// AddObserver registers another observer. It must not be called while Run
// is active.
func (d *Decoder) AddObserver(o Observer) {
	d.observers = append(d.observers, o)
}

// Stats returns the decoder's counters.
func (d *Decoder) Stats() *Stats {
	return d.stats
}

// Cycle runs one sync search and, if a protocol was detected, captures and
// decodes one frame. The returned error is non-nil only when the source
// failed; every other result is described by the Outcome.
//
// Cycle does not notify observers or update Stats; Run does both.
func (d *Decoder) Cycle() (Outcome, error) {
	return d.cycle(context.Background())
}

func (d *Decoder) cycle(ctx context.Context) (Outcome, error) {
	out := Outcome{Started: time.Now()}

	src := contextSource{ctx: ctx, src: d.src}

	id, err := d.detector.Detect(src, d.cfg.SearchTimeout)
	if err != nil {
		if protocol.IsTimeout(err) {
			out.Rejection = err
			out.Elapsed = time.Since(out.Started)
			return out, nil
		}
		return out, fmt.Errorf("sync search: %w", err)
	}
	out.Protocol = id

	switch id {
	case protocol.RainGauge:
		pulses, err := capture(src, protocol.RainGaugePulses, d.cfg.FrameTimeout)
		if err != nil {
			return out, fmt.Errorf("capture %s frame: %w", id, err)
		}
		r, err := decodeRainGauge(pulses)
		if err != nil {
			out.Rejection = err
			break
		}
		out.RainGauge = r
		out.Readings = r.Readings()

	case protocol.F007TP:
		pulses, err := capture(src, protocol.F007TPPulses, d.cfg.FrameTimeout)
		if err != nil {
			return out, fmt.Errorf("capture %s frame: %w", id, err)
		}
		r, err := decodeF007TP(pulses)
		if err != nil {
			out.Rejection = err
			break
		}
		out.F007TP = r
		out.Readings = r.Readings()
	}

	out.Elapsed = time.Since(out.Started)
	return out, nil
}

// decodeRainGauge is protocol.DecodeRainGauge with the assembled frame
// logged before validation.
func decodeRainGauge(pulses []pulse.Duration) (*protocol.RainGaugeReading, error) {
	frame, err := protocol.AssembleRainGauge(pulses)
	if err != nil {
		return nil, err
	}
	logging.LogFrame(protocol.RainGauge.String(), frame[:])
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	r := frame.Extract()
	return &r, nil
}

func decodeF007TP(pulses []pulse.Duration) (*protocol.F007TPReading, error) {
	frame, err := protocol.AssembleF007TP(pulses)
	if err != nil {
		return nil, err
	}
	logging.LogBits(protocol.F007TP.String(), frame[:])
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	r := frame.Extract()
	return &r, nil
}

// capture reads exactly n pulses into a fresh buffer. Timed-out
// measurements are kept as NoPulse so the frame decoder rejects them.
func capture(src pulse.Source, n int, timeout time.Duration) ([]pulse.Duration, error) {
	pulses := make([]pulse.Duration, n)
	for i := range pulses {
		p, err := src.Measure(timeout)
		if err != nil {
			return nil, err
		}
		pulses[i] = p
	}
	return pulses, nil
}

// Run decodes until ctx is cancelled or the source is exhausted, notifying
// observers after every cycle. It returns nil on cancellation and on io.EOF.
func (d *Decoder) Run(ctx context.Context) error {
	logging.Info("Decoder started",
		zap.Duration("search_timeout", d.cfg.SearchTimeout),
		zap.Duration("frame_timeout", d.cfg.FrameTimeout),
		zap.Int("search_attempts", d.cfg.SearchAttempts),
		zap.Duration("rain_gauge_holdoff", d.cfg.RainGaugeHoldoff),
	)

	for {
		if ctx.Err() != nil {
			logging.Info("Decoder stopped", zap.Uint64("cycles", d.stats.cycles.Load()))
			return nil
		}

		out, err := d.cycle(ctx)
		if err != nil {
			return d.stopped(err)
		}

		d.stats.Record(out)
		logOutcome(out)
		for _, o := range d.observers {
			o.Observe(out)
		}

		if out.Accepted() && out.Protocol == protocol.RainGauge && d.cfg.RainGaugeHoldoff > 0 {
			if err := d.holdoff(ctx, d.cfg.RainGaugeHoldoff); err != nil {
				return d.stopped(err)
			}
		}
	}
}

// stopped maps the error that ended Run: cancellation and io.EOF are a
// normal stop, anything else is a source failure.
func (d *Decoder) stopped(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Info("Decoder stopped", zap.Uint64("cycles", d.stats.cycles.Load()))
		return nil
	case errors.Is(err, io.EOF):
		logging.Info("Pulse source exhausted", zap.Uint64("cycles", d.stats.cycles.Load()))
		return nil
	default:
		return err
	}
}

func logOutcome(out Outcome) {
	if out.Rejection != nil {
		logging.LogRejection(out.Protocol.String(), out.RejectionKind(), out.Rejection)
		return
	}
	for _, r := range out.Readings {
		logging.LogReading(r.Protocol.String(), r.DeviceID, r.Metric.String(), r.FormatValue())
	}
}

// holdoff discards every pulse the source delivers until wait has elapsed,
// including pulses a buffered source queued during the accepted frame.
func (d *Decoder) holdoff(ctx context.Context, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	src := contextSource{ctx: ctx, src: d.src}

	discarded := 0
	for {
		left := time.Until(deadline)
		if left <= 0 {
			break
		}
		p, err := src.Measure(left)
		if err != nil {
			return err
		}
		if p != pulse.NoPulse {
			discarded++
		}
	}

	logging.Debug("Holdoff finished",
		zap.Duration("holdoff", wait),
		zap.Int("discarded", discarded),
	)
	return nil
}

// contextSource stops measuring once ctx is done, so a long sync search can
// be interrupted between pulses.
type contextSource struct {
	ctx context.Context
	src pulse.Source
}

func (s contextSource) Measure(timeout time.Duration) (pulse.Duration, error) {
	if err := s.ctx.Err(); err != nil {
		return pulse.NoPulse, err
	}
	return s.src.Measure(timeout)
}
