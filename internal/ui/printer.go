package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/muurk/ookbridge/internal/decoder"
	"github.com/muurk/ookbridge/internal/discovery"
)

// Printer provides methods for printing UI components to a writer.
// Commands that run once and exit print through a Printer.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected terminal width.
func (p *Printer) SetWidth(width int) *Printer {
	p.width = clampWidth(width)
	return p
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting ...string) {
	p.Println(NewFailureResult(title, err, troubleshooting...).SetWidth(p.width).Render())
}

// PrintEvent prints one decode cycle as a single line.
func (p *Printer) PrintEvent(ev decoder.Event) {
	p.Println(FormatEvent(ev))
}

// PrintBridges prints the bridges found by an mDNS scan.
func (p *Printer) PrintBridges(bridges []*discovery.Bridge) {
	if len(bridges) == 0 {
		p.Println(MutedStyle.Render("  No bridges found"))
		return
	}
	for _, b := range bridges {
		p.Println("  " + ProtocolStyle.Render(b.Instance) + "  " + b.Address())
		p.Println(MutedStyle.Render(fmt.Sprintf("      source %s  version %s  feed %s",
			orDash(b.SourceID), orDash(b.Version), b.FeedURL())))
	}
}

// FormatEvent renders an event as a single styled line: one entry per
// reading for accepted frames, or the rejection kind and message.
func FormatEvent(ev decoder.Event) string {
	stamp := MutedStyle.Render(ev.Time.Format(time.TimeOnly))

	if ev.Rejection != nil {
		style := MutedStyle
		marker := PendingMarker
		switch ev.Rejection.Kind {
		case "integrity":
			style, marker = ErrorMessageStyle, FailureMarker
		case "structural":
			style, marker = WarningMessageStyle, WarningMarker
		}
		return fmt.Sprintf("%s %s %s", stamp, style.Render(marker),
			style.Render(ev.Protocol+" "+ev.Rejection.Kind+": "+ev.Rejection.Message))
	}

	parts := make([]string, 0, len(ev.Readings))
	for _, r := range ev.Readings {
		parts = append(parts, fmt.Sprintf("#%d %s=%s", r.DeviceID, r.Metric, ValueStyle.Render(formatValue(r))))
	}
	return fmt.Sprintf("%s %s %s %s", stamp, SuccessTitleStyle.Render(SuccessMarker),
		ProtocolStyle.Render(ev.Protocol), strings.Join(parts, " "))
}

func formatValue(r decoder.EventReading) string {
	if r.Unit == "" {
		return r.Value.String()
	}
	return r.Value.String() + " " + r.Unit
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
