// Package ui provides terminal output for the ookbridge CLI.
//
// Two styles of output live here:
//
//   - Printer: "run once and exit" output for replay, synth, scan and
//     config commands. Headers, result boxes and one-line event renderings
//     built with Lipgloss.
//   - Monitor: an interactive Bubble Tea model used by "ookbridge watch"
//     that shows the latest value per sensor from a bridge feed together
//     with decoder counters and recent rejections.
//
// # Usage Pattern
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Capture Replay", "ookbridge replay",
//	    ui.Param{Key: "Capture", Value: path})
//	for ev := range events {
//	    p.PrintEvent(ev)
//	}
//	p.PrintSuccess("Replay complete", ui.Param{Key: "Frames", Value: "3"})
//
// The monitor consumes the channel returned by server.Subscribe:
//
//	events, err := server.Subscribe(ctx, bridge.FeedURL())
//	if err != nil {
//	    return err
//	}
//	return ui.RunMonitor(bridge.FeedURL(), events)
//
// # Logging Integration
//
// This package expects logging to be controlled via the OOKBRIDGE_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent so that
// the styled output is displayed cleanly.
package ui
