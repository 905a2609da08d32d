package pulse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ookbridge/internal/logging"
)

// ReaderSource reads pulse durations from a line-oriented text stream, one
// decimal microsecond count per line. Blank lines and lines starting with
// '#' are skipped. This is the format a microcontroller front-end prints when
// it forwards pulseIn() measurements over a serial link.
type ReaderSource struct {
	r      io.Reader
	pulses chan Duration
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// NewReaderSource starts reading lines from r in the background.
func NewReaderSource(r io.Reader) *ReaderSource {
	s := &ReaderSource{
		r:      r,
		pulses: make(chan Duration, 256),
		done:   make(chan struct{}),
	}
	go s.scan()
	return s
}

func (s *ReaderSource) scan() {
	defer close(s.pulses)

	scanner := bufio.NewScanner(s.r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		v, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			logging.Debug("Ignoring malformed pulse line",
				zap.Int("line", lineNum),
				zap.String("content", line),
			)
			if !s.send(NoPulse) {
				return
			}
			continue
		}
		if !s.send(Duration(v)) {
			return
		}
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	s.setErr(err)
}

// send queues d, giving up once the source is closed.
func (s *ReaderSource) send(d Duration) bool {
	select {
	case s.pulses <- d:
		return true
	case <-s.done:
		s.setErr(io.EOF)
		return false
	}
}

func (s *ReaderSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Measure waits for the next line. A timeout of zero or less waits forever.
func (s *ReaderSource) Measure(timeout time.Duration) (Duration, error) {
	if timeout <= 0 {
		d, ok := <-s.pulses
		if !ok {
			return NoPulse, s.Err()
		}
		return d, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case d, ok := <-s.pulses:
		if !ok {
			return NoPulse, s.Err()
		}
		return d, nil
	case <-timer.C:
		return NoPulse, nil
	}
}

// Err returns the error that ended the stream, if any.
func (s *ReaderSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the background reader and closes the underlying reader when
// it supports it. Pulses already queued can still be measured.
func (s *ReaderSource) Close() error {
	s.once.Do(func() { close(s.done) })
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
