package pulse

import (
	"fmt"

	serial "github.com/tarm/goserial"

	"github.com/muurk/ookbridge/internal/logging"
	"go.uber.org/zap"
)

// DefaultBaud is the serial speed used by the receiver front-end firmware.
const DefaultBaud = 115200

// OpenSerial opens the serial device a front-end microcontroller is attached
// to and returns a source reading its pulse lines. Close the source to
// release the port.
func OpenSerial(device string, baud int) (*ReaderSource, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}

	logging.Debug("Opening serial port",
		zap.String("device", device),
		zap.Int("baud", baud),
	)

	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	return NewReaderSource(port), nil
}
