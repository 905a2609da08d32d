package publish

import (
	"errors"
	"fmt"
)

// Publisher delivers one message. Implementations are best effort and
// must not block for long.
type Publisher interface {
	Publish(topic, payload string) error
}

// Named is implemented by publishers that report a short name for logs.
type Named interface {
	Name() string
}

func nameOf(p Publisher) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// Multi publishes every message to each of its publishers. A failure in one
// does not stop the others; all failures are joined.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(topic, payload string) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(topic, payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", nameOf(p), err))
		}
	}
	return errors.Join(errs...)
}

// Name implements Named.
func (m Multi) Name() string {
	return "multi"
}
