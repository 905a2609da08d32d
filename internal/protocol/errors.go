package protocol

import (
	"errors"
	"fmt"
)

// ErrorType represents the reason a decode attempt produced no reading.
// None of them is fatal: RF noise and foreign transmissions make all three
// routine.
type ErrorType int

const (
	// ErrTypeTimeout indicates no sync pattern was found within the search window
	ErrTypeTimeout ErrorType = iota
	// ErrTypeStructural indicates an out-of-window pulse or a wrong fixed pattern
	ErrTypeStructural
	// ErrTypeIntegrity indicates a checksum or CRC mismatch
	ErrTypeIntegrity
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeStructural:
		return "Structural Rejection"
	case ErrTypeIntegrity:
		return "Integrity Failure"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Kind returns a short label suitable for metrics and JSON.
func (et ErrorType) Kind() string {
	switch et {
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeStructural:
		return "structural"
	case ErrTypeIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// DecodeError describes why a cycle or frame produced no reading
type DecodeError struct {
	Type     ErrorType // Category of error
	Protocol ID        // Protocol being decoded (None for timeouts)
	Message  string    // Human-readable error message
	Index    int       // Offending pulse or bit index, -1 when not applicable
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s: %s (at %d)", e.Protocol, e.Type, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s: %s", e.Protocol, e.Type, e.Message)
}

func newTimeout(attempts int) *DecodeError {
	return &DecodeError{
		Type:     ErrTypeTimeout,
		Protocol: None,
		Message:  fmt.Sprintf("no sync pattern in %d pulses", attempts),
		Index:    -1,
	}
}

func newStructural(id ID, index int, format string, args ...any) *DecodeError {
	return &DecodeError{
		Type:     ErrTypeStructural,
		Protocol: id,
		Message:  fmt.Sprintf(format, args...),
		Index:    index,
	}
}

func newIntegrity(id ID, index int, format string, args ...any) *DecodeError {
	return &DecodeError{
		Type:     ErrTypeIntegrity,
		Protocol: id,
		Message:  fmt.Sprintf(format, args...),
		Index:    index,
	}
}

// ErrorTypeOf returns the DecodeError type in err's chain.
func ErrorTypeOf(err error) (ErrorType, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Type, true
	}
	return 0, false
}

// IsTimeout reports whether err is a sync search timeout
func IsTimeout(err error) bool {
	t, ok := ErrorTypeOf(err)
	return ok && t == ErrTypeTimeout
}

// IsStructural reports whether err is a structural rejection
func IsStructural(err error) bool {
	t, ok := ErrorTypeOf(err)
	return ok && t == ErrTypeStructural
}

// IsIntegrity reports whether err is a checksum/CRC failure
func IsIntegrity(err error) bool {
	t, ok := ErrorTypeOf(err)
	return ok && t == ErrTypeIntegrity
}
