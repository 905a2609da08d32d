// Package protocol decodes the two supported 433 MHz sensor protocols.
//
// # Protocols
//
// RainGauge: a 7.5 ms sync pulse followed by 64 data pulses (8 bytes, most
// significant bit first). The last byte is the sum of the first seven.
//
// F007TP: a preamble of short pulses, a long sync pulse that doubles as bit
// 0, and 39 further bits. The first four bits are a fixed 0100 header and
// the last eight a CRC-8 (polynomial 0x31) over the first 32.
//
// In both protocols a short pulse encodes 1 and a long pulse encodes 0.
//
// # Decoding
//
// A Detector watches the pulse stream until it recognises one of the two
// sync patterns. The caller then captures the fixed number of data pulses
// (RainGaugePulses or F007TPPulses) and hands them to DecodeRainGauge or
// DecodeF007TP, which assemble, validate and extract the frame:
//
//	d := protocol.NewDetector(0)
//	id, err := d.Detect(src, 10*time.Millisecond)
//	if err != nil {
//	    // protocol.IsTimeout(err) when nothing was found
//	}
//
// Rejections are reported as *DecodeError values so callers can count them
// by kind without string matching. Only validated frames produce Readings.
//
// The synthesis helpers (NewRainGaugeFrame, EncodeF007TP, ...) build pulse
// trains for replay and tests.
package protocol
