package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestDecodeError_Classification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantKind string
	}{
		{"timeout", newTimeout(10000), ErrTypeTimeout, "timeout"},
		{"structural", newStructural(RainGauge, 12, "bad pulse"), ErrTypeStructural, "structural"},
		{"integrity", newIntegrity(F007TP, 33, "crc mismatch"), ErrTypeIntegrity, "integrity"},
		{"wrapped", fmt.Errorf("cycle: %w", newIntegrity(RainGauge, 7, "checksum")), ErrTypeIntegrity, "integrity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ErrorTypeOf(tt.err)
			if !ok {
				t.Fatalf("ErrorTypeOf(%v) found no DecodeError", tt.err)
			}
			if got != tt.wantType {
				t.Errorf("type = %s, want %s", got, tt.wantType)
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("Kind() = %s, want %s", got.Kind(), tt.wantKind)
			}
		})
	}
}

func TestErrorTypeOf_ForeignError(t *testing.T) {
	err := errors.New("serial port closed")
	if _, ok := ErrorTypeOf(err); ok {
		t.Error("ErrorTypeOf() matched a foreign error")
	}
	if IsTimeout(err) || IsStructural(err) || IsIntegrity(err) {
		t.Error("foreign error classified as a decode error")
	}
}

func TestDecodeError_Error(t *testing.T) {
	err := newStructural(F007TP, 3, "header %s", "0110")
	want := "f007tp: Structural Rejection: header 0110 (at 3)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	want = "none: Timeout: no sync pattern in 5 pulses"
	if got := newTimeout(5).Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
