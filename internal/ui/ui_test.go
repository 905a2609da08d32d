package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ookbridge/internal/decoder"
	"github.com/muurk/ookbridge/internal/discovery"
)

var eventTime = time.Date(2026, 10, 19, 12, 30, 5, 0, time.UTC)

func temperatureEvent(device int, value string) decoder.Event {
	return decoder.Event{
		Time:     eventTime,
		Protocol: "f007tp",
		Readings: []decoder.EventReading{
			{DeviceID: device, Metric: "temperature", Value: json.Number(value), Unit: "C"},
		},
		Stats: decoder.Snapshot{Cycles: 3, F007TPFrames: 1},
	}
}

func rejectionEvent(kind, message string) decoder.Event {
	return decoder.Event{
		Time:      eventTime,
		Protocol:  "raingauge",
		Rejection: &decoder.EventRejection{Kind: kind, Message: message, Index: -1},
		Stats:     decoder.Snapshot{Cycles: 4, Integrity: 1},
	}
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("Capture Replay", "ookbridge replay",
		Param{Key: "Capture", Value: "garden.cap"},
		Param{Key: "Publish", Value: "no"},
	).SetWidth(80).Render()

	for _, want := range []string{"CAPTURE REPLAY", "ookbridge replay", "garden.cap", "Publish:"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Capture:") > strings.Index(out, "Publish:") {
		t.Error("params rendered out of order")
	}
}

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Replay complete", Param{Key: "Frames", Value: "2"}),
			want:   []string{SuccessMarker, "SUCCESS", "Replay complete", "Frames:", "2"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Cannot open source", errors.New("no such device"), "Check the adapter is plugged in"),
			want:   []string{FailureMarker, "FAILED", "no such device", "Troubleshooting:", "adapter is plugged in"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No bridges found").AddDetail("Timeout", "5s"),
			want:   []string{WarningMarker, "WARNING", "Timeout:", "5s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("result missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   decoder.Event
		want []string
	}{
		{
			name: "reading",
			ev:   temperatureEvent(1, "25.0"),
			want: []string{"12:30:05", "f007tp", "#1", "temperature=", "25.0 C"},
		},
		{
			name: "integrity rejection",
			ev:   rejectionEvent("integrity", "checksum mismatch"),
			want: []string{FailureMarker, "raingauge integrity: checksum mismatch"},
		},
		{
			name: "structural rejection",
			ev:   rejectionEvent("structural", "pulse out of window"),
			want: []string{WarningMarker, "structural"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatEvent(tt.ev)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("FormatEvent() = %q, missing %q", out, want)
				}
			}
		})
	}
}

func TestPrinter_PrintBridges(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(80)

	p.PrintBridges(nil)
	if !strings.Contains(buf.String(), "No bridges found") {
		t.Errorf("empty scan output = %q", buf.String())
	}

	buf.Reset()
	p.PrintBridges([]*discovery.Bridge{{Instance: "shed", IP: "192.168.1.20", Port: 9433, SourceID: "a1b2c3"}})
	out := buf.String()
	for _, want := range []string{"shed", "192.168.1.20:9433", "a1b2c3", "ws://192.168.1.20:9433/ws", "version -"} {
		if !strings.Contains(out, want) {
			t.Errorf("bridge output missing %q:\n%s", want, out)
		}
	}
}

func TestPrinter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPrinter(&buf).SetWidth(80)
			got := p.Confirm(strings.NewReader(tt.input), "Overwrite config", []string{"existing file"}, "Overwrite?")
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(buf.String(), "Overwrite? [y/N]") {
				t.Errorf("prompt missing from output: %q", buf.String())
			}
		})
	}
}

func TestMonitor_Events(t *testing.T) {
	m := NewMonitor("ws://bridge/ws", nil)
	m.Width = 100

	var model tea.Model = m
	model, cmd := model.Update(eventMsg(temperatureEvent(1, "25.0")))
	if cmd == nil {
		t.Error("expected a command waiting for the next event")
	}
	model, _ = model.Update(eventMsg(temperatureEvent(1, "26.5")))
	model, _ = model.Update(eventMsg(temperatureEvent(2, "-3.3")))
	model, _ = model.Update(eventMsg(rejectionEvent("integrity", "checksum mismatch")))
	model, _ = model.Update(eventMsg(rejectionEvent("timeout", "no sync")))

	mon := model.(Monitor)
	if len(mon.latest) != 2 {
		t.Errorf("latest has %d sensors, want 2", len(mon.latest))
	}
	if got := mon.latest["f007tp/1/temperature"].Reading.Value; got != "26.5" {
		t.Errorf("latest device 1 = %s, want 26.5", got)
	}
	if len(mon.rejections) != 1 {
		t.Errorf("rejections = %d, want 1 (timeouts are not listed)", len(mon.rejections))
	}

	view := mon.View()
	for _, want := range []string{"OOKBRIDGE MONITOR", "ws://bridge/ws", "26.5 C", "-3.3 C", "checksum mismatch", "cycles"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "25.0 C") {
		t.Error("view still shows the superseded value")
	}
}

func TestMonitor_RejectionsAreBounded(t *testing.T) {
	var model tea.Model = NewMonitor("feed", nil)
	for i := 0; i < maxRejections+3; i++ {
		model, _ = model.Update(eventMsg(rejectionEvent("structural", "bad pulse")))
	}
	if got := len(model.(Monitor).rejections); got != maxRejections {
		t.Errorf("rejections = %d, want %d", got, maxRejections)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if got := len(model.(Monitor).rejections); got != 0 {
		t.Errorf("rejections after clear = %d, want 0", got)
	}
}

func TestMonitor_Quit(t *testing.T) {
	m := NewMonitor("feed", nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestMonitor_FeedClosed(t *testing.T) {
	events := make(chan decoder.Event, 1)
	events <- temperatureEvent(7, "12.0")
	close(events)

	m := NewMonitor("feed", events)
	msg := waitForEvent(events)()
	if _, ok := msg.(eventMsg); !ok {
		t.Fatalf("first message = %T, want eventMsg", msg)
	}
	msg = waitForEvent(events)()
	if _, ok := msg.(feedClosedMsg); !ok {
		t.Fatalf("second message = %T, want feedClosedMsg", msg)
	}

	model, _ := m.Update(msg)
	if !model.(Monitor).closed {
		t.Error("monitor not marked closed")
	}
	if !strings.Contains(model.View(), "feed closed") {
		t.Error("view does not report the closed feed")
	}
}
