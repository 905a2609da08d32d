package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zap.ErrorLevel) {
		t.Error("logger should be silent when no level is configured")
	}
}

func TestInitialize_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	core := GetLogger().Core()
	if core.Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !core.Enabled(zap.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestBitString(t *testing.T) {
	tests := []struct {
		bits []uint8
		want string
	}{
		{nil, ""},
		{[]uint8{0, 1, 0, 0}, "0100"},
		{[]uint8{0, 1, 0, 0, 1, 1}, "0100 11"},
		{[]uint8{1, 1, 1, 1, 0, 0, 0, 0, 1}, "1111 0000 1"},
	}
	for _, tt := range tests {
		if got := bitString(tt.bits); got != tt.want {
			t.Errorf("bitString(%v) = %q, want %q", tt.bits, got, tt.want)
		}
	}
}

func TestLogPublish(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogPublish("mqtt", "exp/NX6331/data/rain", `{"value": 12}`, nil)
	LogPublish("mqtt", "exp/NX6331/data/rain", "", errors.New("not connected"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != zap.DebugLevel || entries[0].Message != "Published" {
		t.Errorf("first entry = %v %q", entries[0].Level, entries[0].Message)
	}
	if entries[1].Level != zap.WarnLevel || entries[1].Message != "Publish failed" {
		t.Errorf("second entry = %v %q", entries[1].Level, entries[1].Message)
	}
}

func TestLogRejection(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogRejection("none", "timeout", errors.New("no sync"))
	LogRejection("f007tp", "integrity", errors.New("crc mismatch"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != zap.DebugLevel {
		t.Errorf("timeout logged at %v, want debug", entries[0].Level)
	}
	if entries[1].Level != zap.InfoLevel || entries[1].Message != "Frame rejected" {
		t.Errorf("rejection entry = %v %q", entries[1].Level, entries[1].Message)
	}
	if got := entries[1].ContextMap()["kind"]; got != "integrity" {
		t.Errorf("kind field = %v, want integrity", got)
	}
}
