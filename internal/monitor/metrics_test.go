package monitor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/muurk/ookbridge/internal/decoder"
	"github.com/muurk/ookbridge/internal/protocol"
	"github.com/muurk/ookbridge/internal/pulse"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func outcomeFor(t *testing.T, pulses []pulse.Duration) decoder.Outcome {
	t.Helper()
	cfg := decoder.DefaultConfig()
	cfg.SearchAttempts = 20
	out, err := decoder.New(pulse.NewReplaySource(pulses), cfg).Cycle()
	if err != nil {
		t.Fatalf("Cycle() error = %v", err)
	}
	return out
}

func TestMetrics_Observe(t *testing.T) {
	m := New()

	rain := protocol.EncodeRainGauge(protocol.NewRainGaugeFrame(7, 0x80, 100, 1620))
	m.Observe(outcomeFor(t, rain))

	f, err := protocol.NewF007TPFrame(2, false, 215, 40)
	if err != nil {
		t.Fatal(err)
	}
	m.Observe(outcomeFor(t, protocol.EncodeF007TP(f)))

	f[25] ^= 1
	m.Observe(outcomeFor(t, protocol.EncodeF007TP(f)))

	m.Observe(outcomeFor(t, make([]pulse.Duration, 20)))

	if got := testutil.ToFloat64(m.Cycles); got != 4 {
		t.Errorf("cycles = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.Frames.WithLabelValues("raingauge")); got != 1 {
		t.Errorf("raingauge frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Frames.WithLabelValues("f007tp")); got != 1 {
		t.Errorf("f007tp frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Rejections.WithLabelValues("f007tp", "integrity")); got != 1 {
		t.Errorf("f007tp integrity rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Rejections.WithLabelValues("none", "timeout")); got != 1 {
		t.Errorf("timeouts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Readings.WithLabelValues("raingauge", "rain")); got != 1 {
		t.Errorf("rain readings = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastReading.WithLabelValues("f007tp", "2", "temperature")); got != 21.5 {
		t.Errorf("last f007tp temperature = %v, want 21.5", got)
	}
	if got := testutil.ToFloat64(m.LastReading.WithLabelValues("raingauge", "7", "low_battery")); got != 1 {
		t.Errorf("low battery = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.CycleDuration); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}
}

func TestMetrics_RecordPublish(t *testing.T) {
	m := New()
	m.RecordPublish(2, 3)

	if got := testutil.ToFloat64(m.Published.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Published.WithLabelValues("error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Observe(decoder.Outcome{Started: time.Now(), Elapsed: 3 * time.Millisecond})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"ookbridge_cycles_total 1", "ookbridge_cycle_duration_seconds_bucket", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}
