package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/muurk/ookbridge/internal/pulse"
)

// Nominal pulse widths used when synthesising transmissions. Each sits in
// the middle of its classification window.
const (
	RainSyncPulse    pulse.Duration = 7500
	RainShortPulse   pulse.Duration = 1000
	RainLongPulse    pulse.Duration = 2700
	F007TPShortPulse pulse.Duration = 475
	F007TPLongPulse  pulse.Duration = 1475

	// F007TPPreamble is the number of short pulses the sensor sends before
	// the sync long pulse.
	F007TPPreamble = 8
)

// NewRainGaugeFrame builds a frame from transmitted field values and fills
// in the checksum. rawTemp is the value on the wire (tenths of °F + 900).
func NewRainGaugeFrame(id uint16, flags byte, rawRain uint16, rawTemp uint16) RainGaugeFrame {
	var f RainGaugeFrame
	binary.BigEndian.PutUint16(f[0:2], id)
	f[2] = flags
	binary.LittleEndian.PutUint16(f[3:5], rawRain)
	binary.LittleEndian.PutUint16(f[5:7], rawTemp)
	f[rainChecksumIndex] = RainGaugeChecksum(f[:rainChecksumIndex])
	return f
}

// NewF007TPFrame builds a frame with the fixed header and a valid CRC.
func NewF007TPFrame(id int, negative bool, magnitude uint16, humidity uint8) (F007TPFrame, error) {
	var f F007TPFrame
	if id < 1 || id > 8 {
		return f, fmt.Errorf("f007tp id must be 1-8, got %d", id)
	}
	if magnitude > f007tpMagnitudeMax {
		return f, fmt.Errorf("f007tp magnitude must be at most %d, got %d", f007tpMagnitudeMax, magnitude)
	}

	copy(f[:], f007tpHeader[:])
	f.put(f007tpIDStart, f007tpIDEnd, uint32(id-1))
	if negative {
		f[f007tpSignBit] = 1
	}
	f.put(f007tpTempStart, f007tpTempEnd, uint32(magnitude))
	f.put(f007tpHumStart, f007tpHumEnd, uint32(humidity))
	f.put(f007tpCRCStart, F007TPBits, uint32(CRC8Bits(f[:f007tpPayloadBits])))
	return f, nil
}

// put writes v into bits [from, to), most significant bit first.
func (f *F007TPFrame) put(from, to int, v uint32) {
	for i := to - 1; i >= from; i-- {
		f[i] = uint8(v & 1)
		v >>= 1
	}
}

// EncodeRainGauge returns the pulse train for a frame: the sync pulse
// followed by 64 data pulses.
func EncodeRainGauge(f RainGaugeFrame) []pulse.Duration {
	out := make([]pulse.Duration, 0, 1+RainGaugePulses)
	out = append(out, RainSyncPulse)
	for _, b := range f {
		for j := 7; j >= 0; j-- {
			if b>>uint(j)&1 == 1 {
				out = append(out, RainShortPulse)
			} else {
				out = append(out, RainLongPulse)
			}
		}
	}
	return out
}

// EncodeF007TP returns the pulse train for a frame: the short preamble, the
// long sync pulse (bit 0) and the 39 remaining bits.
func EncodeF007TP(f F007TPFrame) []pulse.Duration {
	out := make([]pulse.Duration, 0, F007TPPreamble+F007TPBits)
	for i := 0; i < F007TPPreamble; i++ {
		out = append(out, F007TPShortPulse)
	}
	for _, bit := range f {
		if bit != 0 {
			out = append(out, F007TPShortPulse)
		} else {
			out = append(out, F007TPLongPulse)
		}
	}
	return out
}
