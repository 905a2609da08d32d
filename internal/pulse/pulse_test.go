package pulse

import (
	"testing"
	"time"
)

var testThresholds = Thresholds{
	Short: Window{Min: 900, Max: 1100},
	Long:  Window{Min: 2500, Max: 2900},
	Sync:  Window{Min: 7300, Max: 7700},
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		duration Duration
		want     Class
	}{
		{"short centre", 1000, Short},
		{"short just above min", 901, Short},
		{"short just below max", 1099, Short},
		{"short min is exclusive", 900, Invalid},
		{"short max is exclusive", 1100, Invalid},
		{"long centre", 2700, Long},
		{"long min is exclusive", 2500, Invalid},
		{"long max is exclusive", 2900, Invalid},
		{"sync centre", 7500, Sync},
		{"sync max is exclusive", 7700, Invalid},
		{"between windows", 2000, Invalid},
		{"no pulse", NoPulse, Invalid},
		{"very long", 60000, Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.duration, testThresholds); got != tt.want {
				t.Errorf("Classify(%d) = %v, want %v", tt.duration, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for d := Duration(0); d < 8000; d += 7 {
		first := Classify(d, testThresholds)
		for i := 0; i < 3; i++ {
			if got := Classify(d, testThresholds); got != first {
				t.Fatalf("Classify(%d) changed from %v to %v", d, first, got)
			}
		}
	}
}

func TestClassify_NoSyncWindow(t *testing.T) {
	th := Thresholds{
		Short: Window{Min: 350, Max: 600},
		Long:  Window{Min: 1350, Max: 1600},
	}
	if got := Classify(7500, th); got != Invalid {
		t.Errorf("Classify(7500) without sync window = %v, want invalid", got)
	}
}

func TestClass_String(t *testing.T) {
	tests := []struct {
		class Class
		want  string
	}{
		{Invalid, "invalid"},
		{Short, "short"},
		{Long, "long"},
		{Sync, "sync"},
		{Class(42), "Class(42)"},
	}
	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("Class(%d).String() = %q, want %q", int(tt.class), got, tt.want)
		}
	}
}

func TestDuration_Std(t *testing.T) {
	if got := Duration(1500).Std(); got != 1500*time.Microsecond {
		t.Errorf("Std() = %v, want 1.5ms", got)
	}
	if got := FromStd(2500 * time.Microsecond); got != 2500 {
		t.Errorf("FromStd() = %d, want 2500", got)
	}
	if got := FromStd(-time.Second); got != NoPulse {
		t.Errorf("FromStd(negative) = %d, want NoPulse", got)
	}
}
