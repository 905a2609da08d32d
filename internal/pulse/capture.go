package pulse

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CaptureUnit is the only unit captures are stored in.
const CaptureUnit = "us"

// Capture is a recorded pulse sequence stored as YAML:
//
//	description: rain gauge id 0x1234
//	unit: us
//	pulses: [7500, 1000, 2700, ...]
type Capture struct {
	Description string     `yaml:"description,omitempty"`
	Unit        string     `yaml:"unit"`
	Pulses      []Duration `yaml:"pulses,flow"`
}

// NewCapture creates a capture over pulses.
func NewCapture(description string, pulses []Duration) *Capture {
	return &Capture{
		Description: description,
		Unit:        CaptureUnit,
		Pulses:      pulses,
	}
}

// LoadCapture reads a capture file.
func LoadCapture(path string) (*Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file: %w", err)
	}
	return ParseCapture(data)
}

// ParseCapture decodes a YAML capture.
func ParseCapture(data []byte) (*Capture, error) {
	var c Capture
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse capture: %w", err)
	}
	if c.Unit == "" {
		c.Unit = CaptureUnit
	}
	if c.Unit != CaptureUnit {
		return nil, fmt.Errorf("unsupported capture unit %q (want %q)", c.Unit, CaptureUnit)
	}
	return &c, nil
}

// Marshal encodes the capture as YAML.
func (c *Capture) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal capture: %w", err)
	}
	return data, nil
}

// Save writes the capture to path.
func (c *Capture) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write capture file: %w", err)
	}
	return nil
}

// Source returns a replay source over the captured pulses.
func (c *Capture) Source() *ReplaySource {
	return NewReplaySource(c.Pulses)
}
