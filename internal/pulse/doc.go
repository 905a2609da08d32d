// Package pulse is the boundary between the radio receiver and the decoders.
//
// A 433 MHz OOK receiver drives a single data line high while it detects a
// carrier. The front-end measures how long each high level lasts and hands
// those durations to the decoders; this package defines that contract and a
// few concrete sources.
//
// # Durations
//
// Durations are counted in microseconds. The value NoPulse (zero) means no
// complete pulse was observed before the measurement timeout expired.
//
// # Classification
//
// Classify maps a duration to a symbolic Class using a protocol's threshold
// windows. Windows are exclusive on both ends:
//
//	t := pulse.Thresholds{
//	    Short: pulse.Window{Min: 900, Max: 1100},
//	    Long:  pulse.Window{Min: 2500, Max: 2900},
//	    Sync:  pulse.Window{Min: 7300, Max: 7700},
//	}
//	pulse.Classify(1000, t) // pulse.Short
//	pulse.Classify(1100, t) // pulse.Invalid
//
// # Sources
//
//   - ReplaySource: in-memory recording, returns io.EOF once exhausted
//   - ReaderSource: one decimal duration per line from any io.Reader
//   - OpenSerial: ReaderSource over a serial port (microcontroller front-end)
//
// Captures can be stored as YAML files and loaded with LoadCapture.
package pulse
