package protocol

import (
	"strconv"

	"github.com/muurk/ookbridge/internal/pulse"
)

// F007TP bit layout
const (
	f007tpHeaderBits   = 4         // bits 0-3, fixed 0100
	f007tpIDStart      = 5         // bits 5-7, channel - 1
	f007tpIDEnd        = 8         // exclusive
	f007tpSignBit      = 12        // 1 = negative
	f007tpTempStart    = 13        // bits 13-23, magnitude in tenths
	f007tpTempEnd      = 24        // exclusive
	f007tpHumStart     = 24        // bits 24-31
	f007tpHumEnd       = 32        // exclusive
	f007tpPayloadBits  = 32        // CRC covers bits 0-31
	f007tpCRCStart     = 32        // bits 32-39
	f007tpMagnitudeMax = 1<<11 - 1 // 11-bit magnitude
)

// f007tpHeader is the fixed pattern every F007TP frame starts with.
var f007tpHeader = [f007tpHeaderBits]uint8{0, 1, 0, 0}

// F007TPFrame is an assembled F007TP transmission, one bit per element.
// Bit 0 is the long sync pulse and is always 0.
type F007TPFrame [F007TPBits]uint8

// F007TPReading holds the decoded fields of a validated frame.
type F007TPReading struct {
	ID        int    // channel, 1-8
	Negative  bool   // temperature sign
	Magnitude uint16 // temperature magnitude in tenths of a degree
	Humidity  uint8  // raw humidity byte, decoded but not published
}

// AssembleF007TP turns the 39 pulses that follow the sync pulse into a
// 40-bit frame. A short pulse is a 1 and a long pulse a 0; any other pulse
// aborts the frame with a structural rejection.
func AssembleF007TP(pulses []pulse.Duration) (F007TPFrame, error) {
	var frame F007TPFrame
	if len(pulses) != F007TPPulses {
		return frame, newStructural(F007TP, -1, "want %d pulses, got %d", F007TPPulses, len(pulses))
	}

	for i, p := range pulses {
		bit, ok := bitFor(p, F007TPThresholds)
		if !ok {
			return F007TPFrame{}, newStructural(F007TP, i, "pulse %dus outside bit windows", p)
		}
		frame[i+1] = bit
	}

	return frame, nil
}

// Validate checks the fixed header and then the CRC. The CRC is compared
// bit by bit and the first mismatching bit rejects the frame.
func (f F007TPFrame) Validate() error {
	for i, want := range f007tpHeader {
		if f[i] != want {
			return newStructural(F007TP, i, "header %s, want 0100", bitsString(f[:f007tpHeaderBits]))
		}
	}

	computed := CRC8Bits(f[:f007tpPayloadBits])
	crc := computed
	for i := 0; i < 8; i++ {
		if crc>>7 != f[f007tpCRCStart+i] {
			return newIntegrity(F007TP, f007tpCRCStart+i, "crc mismatch, computed 0x%02x", computed)
		}
		crc <<= 1
	}

	return nil
}

// Extract decodes the fields of a frame. Only call it on a frame whose
// Validate returned nil.
func (f F007TPFrame) Extract() F007TPReading {
	return F007TPReading{
		ID:        int(f.field(f007tpIDStart, f007tpIDEnd)) + 1,
		Negative:  f[f007tpSignBit] != 0,
		Magnitude: uint16(f.field(f007tpTempStart, f007tpTempEnd)),
		Humidity:  uint8(f.field(f007tpHumStart, f007tpHumEnd)),
	}
}

// field reads bits [from, to) as an unsigned big-endian integer.
func (f F007TPFrame) field(from, to int) uint32 {
	var v uint32
	for i := from; i < to; i++ {
		v = v<<1 | uint32(f[i]&1)
	}
	return v
}

// Bytes packs the 40 bits into five bytes.
func (f F007TPFrame) Bytes() []byte {
	out := make([]byte, F007TPBits/8)
	for i := range out {
		out[i] = byte(f.field(i*8, i*8+8))
	}
	return out
}

// String returns the frame as a bit string
func (f F007TPFrame) String() string {
	return bitsString(f[:])
}

func bitsString(bits []uint8) string {
	b := make([]byte, len(bits))
	for i, bit := range bits {
		b[i] = '0' + bit&1
	}
	return string(b)
}

// DecodeF007TP assembles, validates and extracts an F007TP frame.
func DecodeF007TP(pulses []pulse.Duration) (*F007TPReading, error) {
	frame, err := AssembleF007TP(pulses)
	if err != nil {
		return nil, err
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	r := frame.Extract()
	return &r, nil
}

// Temperature returns the signed temperature in degrees.
func (r *F007TPReading) Temperature() float64 {
	v := float64(r.Magnitude) / 10
	if r.Negative {
		v = -v
	}
	return v
}

// TemperatureText renders the temperature the way the sensor value is
// published: sign, whole tenths, a dot and the last digit ("-4.5", "25.0").
func (r *F007TPReading) TemperatureText() string {
	sign := ""
	if r.Negative {
		sign = "-"
	}
	return sign + strconv.Itoa(int(r.Magnitude/10)) + "." + strconv.Itoa(int(r.Magnitude%10))
}

// Readings returns the values published for this reading. Only the
// temperature is published, as TemperatureText; humidity stays on the struct.
func (r *F007TPReading) Readings() []Reading {
	return []Reading{{
		Protocol:  F007TP,
		DeviceID:  r.ID,
		Metric:    Temperature,
		Value:     r.Temperature(),
		Precision: 1,
		Unit:      UnitCelsius,
		Text:      r.TemperatureText(),
	}}
}
