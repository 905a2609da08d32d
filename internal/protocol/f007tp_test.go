package protocol

import (
	"testing"

	"github.com/muurk/ookbridge/internal/pulse"
)

// f007tpPulses returns the 39 data pulses that follow the sync pulse.
func f007tpPulses(f F007TPFrame) []pulse.Duration {
	return EncodeF007TP(f)[F007TPPreamble+1:]
}

func mustF007TPFrame(t *testing.T, id int, negative bool, magnitude uint16, humidity uint8) F007TPFrame {
	t.Helper()
	f, err := NewF007TPFrame(id, negative, magnitude, humidity)
	if err != nil {
		t.Fatalf("NewF007TPFrame() error = %v", err)
	}
	return f
}

func TestF007TPFrame_ReferenceBits(t *testing.T) {
	f := mustF007TPFrame(t, 1, false, 250, 45)

	want := "0100000000000000111110100010110111011100"
	if got := f.String(); got != want {
		t.Errorf("frame = %s, want %s", got, want)
	}

	wantBytes := []byte{0x40, 0x00, 0xFA, 0x2D, 0xDC}
	got := f.Bytes()
	for i := range wantBytes {
		if got[i] != wantBytes[i] {
			t.Errorf("Bytes()[%d] = 0x%02x, want 0x%02x", i, got[i], wantBytes[i])
		}
	}
}

func TestDecodeF007TP(t *testing.T) {
	tests := []struct {
		name     string
		id       int
		negative bool
		mag      uint16
		humidity uint8
		wantText string
	}{
		{"25.0 on channel 1", 1, false, 250, 45, "25.0"},
		{"negative on channel 3", 3, true, 45, 60, "-4.5"},
		{"zero", 8, false, 0, 0, "0.0"},
		{"largest magnitude", 2, false, 2047, 99, "204.7"},
		{"negative zero keeps sign", 4, true, 0, 10, "-0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := mustF007TPFrame(t, tt.id, tt.negative, tt.mag, tt.humidity)

			r, err := DecodeF007TP(f007tpPulses(frame))
			if err != nil {
				t.Fatalf("DecodeF007TP() error = %v", err)
			}
			if r.ID != tt.id {
				t.Errorf("ID = %d, want %d", r.ID, tt.id)
			}
			if r.Negative != tt.negative {
				t.Errorf("Negative = %v, want %v", r.Negative, tt.negative)
			}
			if r.Magnitude != tt.mag {
				t.Errorf("Magnitude = %d, want %d", r.Magnitude, tt.mag)
			}
			if r.Humidity != tt.humidity {
				t.Errorf("Humidity = %d, want %d", r.Humidity, tt.humidity)
			}
			if got := r.TemperatureText(); got != tt.wantText {
				t.Errorf("TemperatureText() = %s, want %s", got, tt.wantText)
			}

			readings := r.Readings()
			if len(readings) != 1 {
				t.Fatalf("len(Readings()) = %d, want 1", len(readings))
			}
			if got := readings[0].FormatValue(); got != tt.wantText {
				t.Errorf("published value = %s, want %s", got, tt.wantText)
			}
			if readings[0].Text != r.TemperatureText() {
				t.Errorf("reading Text = %q, want TemperatureText() %q", readings[0].Text, r.TemperatureText())
			}
			if readings[0].Metric != Temperature || readings[0].DeviceID != tt.id {
				t.Errorf("reading = %v", readings[0])
			}
		})
	}
}

func TestF007TPFrame_Validate(t *testing.T) {
	good := mustF007TPFrame(t, 1, false, 250, 45)

	tests := []struct {
		name    string
		mutate  func(*F007TPFrame)
		wantErr func(error) bool
	}{
		{
			name:    "valid",
			mutate:  func(f *F007TPFrame) {},
			wantErr: func(err error) bool { return err == nil },
		},
		{
			name:    "header bit 1 cleared",
			mutate:  func(f *F007TPFrame) { f[1] = 0 },
			wantErr: IsStructural,
		},
		{
			name:    "header bit 3 set",
			mutate:  func(f *F007TPFrame) { f[3] = 1 },
			wantErr: IsStructural,
		},
		{
			name:    "temperature bit flipped",
			mutate:  func(f *F007TPFrame) { f[20] ^= 1 },
			wantErr: IsIntegrity,
		},
		{
			name:    "crc bit flipped",
			mutate:  func(f *F007TPFrame) { f[39] ^= 1 },
			wantErr: IsIntegrity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := good
			tt.mutate(&f)
			if err := f.Validate(); !tt.wantErr(err) {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestF007TPFrame_SingleBitErrorsRejected(t *testing.T) {
	good := mustF007TPFrame(t, 5, true, 123, 77)

	for i := 0; i < F007TPBits; i++ {
		f := good
		f[i] ^= 1
		err := f.Validate()
		if err == nil {
			t.Errorf("flip bit %d: Validate() accepted a corrupted frame", i)
			continue
		}
		if i < 4 && !IsStructural(err) {
			t.Errorf("flip header bit %d: error = %v, want structural", i, err)
		}
		if i >= 4 && !IsIntegrity(err) {
			t.Errorf("flip bit %d: error = %v, want integrity", i, err)
		}
	}
}

func TestAssembleF007TP_Rejects(t *testing.T) {
	good := f007tpPulses(mustF007TPFrame(t, 1, false, 250, 45))

	tests := []struct {
		name   string
		pulses []pulse.Duration
	}{
		{"too many pulses", append(append([]pulse.Duration(nil), good...), F007TPShortPulse)},
		{"too few pulses", good[:38]},
		{"rain gauge short pulse", replaceAt(good, 7, RainShortPulse)},
		{"short window lower bound", replaceAt(good, 0, F007TPShortPulseMin)},
		{"no pulse", replaceAt(good, 38, pulse.NoPulse)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := AssembleF007TP(tt.pulses)
			if !IsStructural(err) {
				t.Fatalf("AssembleF007TP() error = %v, want structural rejection", err)
			}
			if frame != (F007TPFrame{}) {
				t.Errorf("AssembleF007TP() returned partial frame %s", frame)
			}
		})
	}
}

func TestNewF007TPFrame_InvalidFields(t *testing.T) {
	if _, err := NewF007TPFrame(0, false, 10, 0); err == nil {
		t.Error("NewF007TPFrame(id=0) should fail")
	}
	if _, err := NewF007TPFrame(9, false, 10, 0); err == nil {
		t.Error("NewF007TPFrame(id=9) should fail")
	}
	if _, err := NewF007TPFrame(1, false, 2048, 0); err == nil {
		t.Error("NewF007TPFrame(magnitude=2048) should fail")
	}
}

func replaceAt(p []pulse.Duration, i int, d pulse.Duration) []pulse.Duration {
	out := append([]pulse.Duration(nil), p...)
	out[i] = d
	return out
}
