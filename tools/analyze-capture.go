//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/muurk/ookbridge/internal/protocol"
	"github.com/muurk/ookbridge/internal/pulse"
)

// Usage: go run tools/analyze-capture.go <capture.yaml>
//
// Prints how every pulse classifies against both protocols' windows, then
// walks the capture like the decoder does and dumps each candidate frame
// with its integrity check.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: analyze-capture <capture.yaml>")
		fmt.Println("Example: go run tools/analyze-capture.go captures/garden-20260418.yaml")
		os.Exit(1)
	}

	filename := os.Args[1]
	capture, err := pulse.LoadCapture(filename)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Pulse Capture Analyzer ===\n")
	fmt.Printf("File: %s\n", filename)
	if capture.Description != "" {
		fmt.Printf("Description: %s\n", capture.Description)
	}
	fmt.Printf("Pulses: %d\n\n", len(capture.Pulses))

	histogram("RainGauge windows", capture.Pulses, protocol.RainGaugeThresholds)
	histogram("F007TP windows", capture.Pulses, protocol.F007TPThresholds)

	fmt.Println("Frames:")
	walk(capture.Pulses)
}

func histogram(title string, pulses []pulse.Duration, t pulse.Thresholds) {
	counts := make(map[pulse.Class]int)
	var minOut, maxOut pulse.Duration
	for _, p := range pulses {
		c := pulse.Classify(p, t)
		counts[c]++
		if c == pulse.Invalid {
			if minOut == 0 || p < minOut {
				minOut = p
			}
			if p > maxOut {
				maxOut = p
			}
		}
	}

	fmt.Printf("%s:\n", title)
	for _, c := range []pulse.Class{pulse.Short, pulse.Long, pulse.Sync, pulse.Invalid} {
		fmt.Printf("  %-8s %6d\n", c, counts[c])
	}
	if counts[pulse.Invalid] > 0 {
		fmt.Printf("  out of window: %dus - %dus\n", minOut, maxOut)
	}
	fmt.Println()
}

// walk feeds pulses to a detector and decodes after every sync.
func walk(pulses []pulse.Duration) {
	det := protocol.NewDetector(len(pulses))
	i := 0
	for i < len(pulses) {
		det.Reset()
		for i < len(pulses) && det.Feed(pulses[i]) == protocol.Searching {
			i++
		}
		if i >= len(pulses) || det.State() == protocol.TimedOut {
			return
		}
		i++ // the sync pulse

		switch det.State().Protocol() {
		case protocol.RainGauge:
			i = rainGauge(pulses, i)
		case protocol.F007TP:
			// The sync long pulse is the frame's first bit.
			i = f007tp(pulses, i-1)
		}
	}
}

func rainGauge(pulses []pulse.Duration, at int) int {
	end := at + protocol.RainGaugePulses
	fmt.Printf("  [%d] raingauge sync\n", at-1)
	if end > len(pulses) {
		fmt.Printf("       truncated: %d of %d pulses\n", len(pulses)-at, protocol.RainGaugePulses)
		return len(pulses)
	}

	frame, err := protocol.AssembleRainGauge(pulses[at:end])
	if err != nil {
		fmt.Printf("       ❌ %v\n", err)
		return end
	}
	fmt.Printf("       bytes: %s\n", frame)
	want := protocol.RainGaugeChecksum(frame[:protocol.RainGaugeBytes-1])
	if err := frame.Validate(); err != nil {
		fmt.Printf("       ❌ sum mod 256: 0x%02x (frame has 0x%02x)\n", want, frame[protocol.RainGaugeBytes-1])
		return end
	}
	r := frame.Extract()
	fmt.Printf("       ✅ id 0x%04x rain %d temperature %.1f low_battery %v reset %v\n",
		r.ID, r.Rain, r.TemperatureC, r.LowBattery, r.Reset)
	return end
}

func f007tp(pulses []pulse.Duration, at int) int {
	end := at + protocol.F007TPPulses + 1
	fmt.Printf("  [%d] f007tp sync\n", at)
	if end > len(pulses) {
		fmt.Printf("       truncated: %d of %d pulses\n", len(pulses)-at, protocol.F007TPPulses+1)
		return len(pulses)
	}

	frame, err := protocol.AssembleF007TP(pulses[at+1 : end])
	if err != nil {
		fmt.Printf("       ❌ %v\n", err)
		return end
	}
	fmt.Printf("       bits:  %s\n", frame)
	fmt.Printf("       bytes: % x\n", frame.Bytes())
	if err := frame.Validate(); err != nil {
		fmt.Printf("       ❌ %v\n", err)
		return end
	}
	r := frame.Extract()
	fmt.Printf("       ✅ channel %d temperature %s humidity %d\n", r.ID, r.TemperatureText(), r.Humidity)
	return end
}
