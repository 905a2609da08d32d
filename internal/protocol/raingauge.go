package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/muurk/ookbridge/internal/pulse"
)

// Rain gauge field encoding
const (
	rainCountOffset   = 10  // added to the raw tip counter before scaling
	rainScaleNum      = 108 // rain = (raw + 10) * 1.08, truncated
	rainScaleDen      = 100 // see rainScaleNum
	rainTempOffset    = 900 // temperature is sent as tenths of °F + 900
	rainChecksumIndex = 7   // checksum byte
)

// Rain gauge flag bits, frame byte 2
const (
	RainFlagLowBattery byte = 0x80
	RainFlagReset      byte = 0x40
)

// RainGaugeFrame is an assembled rain gauge transmission:
//
//	[0-1] device id (big-endian)
//	[2]   flags: bit 7 low battery, bit 6 reset
//	[3-4] rain tip counter (little-endian)
//	[5-6] temperature, tenths of °F + 900 (little-endian)
//	[7]   checksum, sum of bytes 0-6 mod 256
type RainGaugeFrame [RainGaugeBytes]byte

// RainGaugeReading holds the decoded fields of a validated frame.
type RainGaugeReading struct {
	ID           uint16
	Rain         int     // scaled accumulation, integer units
	RawRain      uint16  // tip counter as transmitted
	TemperatureC float64 // degrees Celsius
	RawTemp      int     // tenths of °F, offset removed
	LowBattery   bool
	Reset        bool
}

// AssembleRainGauge packs 64 data pulses into a frame, most significant bit
// first. A short pulse is a 1 and a long pulse a 0; any other pulse aborts
// the frame with a structural rejection.
func AssembleRainGauge(pulses []pulse.Duration) (RainGaugeFrame, error) {
	var frame RainGaugeFrame
	if len(pulses) != RainGaugePulses {
		return frame, newStructural(RainGauge, -1, "want %d pulses, got %d", RainGaugePulses, len(pulses))
	}

	for i := 0; i < RainGaugeBytes; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			idx := i*8 + j
			bit, ok := bitFor(pulses[idx], RainGaugeThresholds)
			if !ok {
				return RainGaugeFrame{}, newStructural(RainGauge, idx, "pulse %dus outside bit windows", pulses[idx])
			}
			b = b<<1 | bit
		}
		frame[i] = b
	}

	return frame, nil
}

// RainGaugeChecksum returns the sum of data mod 256.
func RainGaugeChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// Validate checks the frame checksum.
func (f RainGaugeFrame) Validate() error {
	want := RainGaugeChecksum(f[:rainChecksumIndex])
	if f[rainChecksumIndex] != want {
		return newIntegrity(RainGauge, rainChecksumIndex, "checksum 0x%02x, computed 0x%02x", f[rainChecksumIndex], want)
	}
	return nil
}

// Extract decodes the fields of a frame. Only call it on a frame whose
// Validate returned nil.
func (f RainGaugeFrame) Extract() RainGaugeReading {
	// the offset counter is 16 bits wide and wraps like the gauge's own
	rawRain := binary.LittleEndian.Uint16(f[3:5])
	rawTemp := int(binary.LittleEndian.Uint16(f[5:7])) - rainTempOffset

	return RainGaugeReading{
		ID:           binary.BigEndian.Uint16(f[0:2]),
		Rain:         int(rawRain+rainCountOffset) * rainScaleNum / rainScaleDen,
		RawRain:      rawRain,
		TemperatureC: float64(rawTemp-320) / 18.0,
		RawTemp:      rawTemp,
		LowBattery:   f[2]&RainFlagLowBattery != 0,
		Reset:        f[2]&RainFlagReset != 0,
	}
}

// String returns the frame as hex
func (f RainGaugeFrame) String() string {
	return fmt.Sprintf("% x", f[:])
}

// DecodeRainGauge assembles, validates and extracts a rain gauge frame.
func DecodeRainGauge(pulses []pulse.Duration) (*RainGaugeReading, error) {
	frame, err := AssembleRainGauge(pulses)
	if err != nil {
		return nil, err
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	r := frame.Extract()
	return &r, nil
}

// Readings returns the values published for this reading: temperature,
// rain and low battery. The reset flag is decoded but not published.
func (r *RainGaugeReading) Readings() []Reading {
	lowBatt := 0.0
	if r.LowBattery {
		lowBatt = 1
	}
	id := int(r.ID)
	return []Reading{
		{Protocol: RainGauge, DeviceID: id, Metric: Temperature, Value: r.TemperatureC, Precision: 1, Unit: UnitCelsius},
		{Protocol: RainGauge, DeviceID: id, Metric: Rainfall, Value: float64(r.Rain), Precision: 0, Unit: UnitRainCount},
		{Protocol: RainGauge, DeviceID: id, Metric: LowBattery, Value: lowBatt, Precision: 0},
	}
}
