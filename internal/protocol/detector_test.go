package protocol

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/muurk/ookbridge/internal/pulse"
)

func repeat(d pulse.Duration, n int) []pulse.Duration {
	out := make([]pulse.Duration, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func concat(parts ...[]pulse.Duration) []pulse.Duration {
	var out []pulse.Duration
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestDetector_Feed(t *testing.T) {
	short := F007TPShortPulse
	long := F007TPLongPulse

	tests := []struct {
		name         string
		pulses       []pulse.Duration
		maxAttempts  int
		want         State
		wantAttempts int
	}{
		{
			name:         "four shorts then long is F007TP sync",
			pulses:       concat(repeat(short, 4), []pulse.Duration{long}),
			maxAttempts:  100,
			want:         SyncFoundF007TP,
			wantAttempts: 5,
		},
		{
			name:         "three shorts then long is not enough",
			pulses:       concat(repeat(short, 3), []pulse.Duration{long}),
			maxAttempts:  100,
			want:         Searching,
			wantAttempts: 4,
		},
		{
			name:         "long resets the preamble count",
			pulses:       concat(repeat(short, 3), []pulse.Duration{long}, repeat(short, 3), []pulse.Duration{long}),
			maxAttempts:  100,
			want:         Searching,
			wantAttempts: 8,
		},
		{
			name:         "noise resets the preamble count",
			pulses:       concat(repeat(short, 3), []pulse.Duration{5000, short, long}),
			maxAttempts:  100,
			want:         Searching,
			wantAttempts: 6,
		},
		{
			name:         "rain sync on its own",
			pulses:       []pulse.Duration{RainSyncPulse},
			maxAttempts:  100,
			want:         SyncFoundRainGauge,
			wantAttempts: 1,
		},
		{
			name:         "rain sync after an F007TP preamble",
			pulses:       concat(repeat(short, 6), []pulse.Duration{RainSyncPulse}),
			maxAttempts:  100,
			want:         SyncFoundRainGauge,
			wantAttempts: 7,
		},
		{
			name:         "attempt bound reached",
			pulses:       repeat(long, 5),
			maxAttempts:  5,
			want:         TimedOut,
			wantAttempts: 5,
		},
		{
			name:         "no pulses count as attempts",
			pulses:       repeat(pulse.NoPulse, 3),
			maxAttempts:  3,
			want:         TimedOut,
			wantAttempts: 3,
		},
		{
			name:         "sync on the last permitted attempt",
			pulses:       concat(repeat(short, 4), []pulse.Duration{long}),
			maxAttempts:  5,
			want:         SyncFoundF007TP,
			wantAttempts: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.maxAttempts)
			var got State
			for _, p := range tt.pulses {
				got = d.Feed(p)
			}
			if got != tt.want {
				t.Errorf("state = %s, want %s", got, tt.want)
			}
			if d.Attempts() != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", d.Attempts(), tt.wantAttempts)
			}
		})
	}
}

func TestDetector_IgnoresPulsesAfterSync(t *testing.T) {
	d := NewDetector(10)
	d.Feed(RainSyncPulse)
	if got := d.Feed(F007TPShortPulse); got != SyncFoundRainGauge {
		t.Errorf("state after sync = %s, want %s", got, SyncFoundRainGauge)
	}
	if d.Attempts() != 1 {
		t.Errorf("attempts = %d, want 1", d.Attempts())
	}

	d.Reset()
	if d.State() != Searching || d.Attempts() != 0 {
		t.Errorf("after Reset: state = %s, attempts = %d", d.State(), d.Attempts())
	}
}

func TestNewDetector_Default(t *testing.T) {
	if d := NewDetector(0); d.MaxAttempts != DefaultSearchAttempts {
		t.Errorf("MaxAttempts = %d, want %d", d.MaxAttempts, DefaultSearchAttempts)
	}
}

func TestDetector_Detect(t *testing.T) {
	f007, err := NewF007TPFrame(2, false, 215, 50)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		pulses    []pulse.Duration
		want      ID
		remaining int
	}{
		{
			name:      "rain gauge transmission",
			pulses:    EncodeRainGauge(NewRainGaugeFrame(0x0102, 0, 10, 1620)),
			want:      RainGauge,
			remaining: RainGaugePulses,
		},
		{
			name:      "F007TP transmission",
			pulses:    EncodeF007TP(f007),
			want:      F007TP,
			remaining: F007TPPulses,
		},
		{
			name:      "noise before a transmission",
			pulses:    concat([]pulse.Duration{pulse.NoPulse, 200, 12000}, EncodeF007TP(f007)),
			want:      F007TP,
			remaining: F007TPPulses,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := pulse.NewReplaySource(tt.pulses)
			got, err := NewDetector(100).Detect(src, 10*time.Millisecond)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
			if src.Remaining() != tt.remaining {
				t.Errorf("remaining pulses = %d, want %d", src.Remaining(), tt.remaining)
			}
		})
	}
}

func TestDetector_DetectTimeout(t *testing.T) {
	src := pulse.NewReplaySource(repeat(F007TPLongPulse, 10))

	got, err := NewDetector(5).Detect(src, time.Millisecond)
	if got != None {
		t.Errorf("Detect() = %s, want none", got)
	}
	if !IsTimeout(err) {
		t.Fatalf("Detect() error = %v, want timeout", err)
	}
	if src.Remaining() != 5 {
		t.Errorf("remaining pulses = %d, want 5", src.Remaining())
	}
}

func TestDetector_DetectSourceError(t *testing.T) {
	src := pulse.NewReplaySource(repeat(F007TPShortPulse, 2))

	_, err := NewDetector(100).Detect(src, time.Millisecond)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Detect() error = %v, want io.EOF", err)
	}
	if IsTimeout(err) {
		t.Error("source error reported as a timeout")
	}
}
