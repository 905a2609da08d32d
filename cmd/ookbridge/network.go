package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/ookbridge/internal/discovery"
	"github.com/muurk/ookbridge/internal/server"
	"github.com/muurk/ookbridge/internal/ui"
)

// Network command flags
var scanTimeout int

func init() {
	defaultTimeout := int(discovery.DefaultScanTimeout / time.Second)
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", defaultTimeout, "mDNS scan timeout in seconds")
	watchCmd.Flags().IntVar(&scanTimeout, "timeout", defaultTimeout, "mDNS scan timeout in seconds when no URL is given")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
}

func newScanner() *discovery.Scanner {
	s := discovery.NewScanner()
	s.Timeout = time.Duration(scanTimeout) * time.Second
	return s
}

// scanCmd discovers bridges on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for bridges on the network",
	Long: `Scan for running bridges using mDNS/DNS-SD discovery.

Bridges with the server enabled advertise the _ookbridge._tcp service. The
scan lists each one with its address, source id and feed URL.`,
	Example: `  # Scan for 5 seconds (default)
  ookbridge scan

  # Longer scan for slow networks
  ookbridge scan --timeout 15`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Bridge Discovery", "ookbridge scan",
		ui.Param{Key: "Service", Value: discovery.ServiceType},
		ui.Param{Key: "Timeout", Value: strconv.Itoa(scanTimeout) + "s"},
	)

	bridges, err := newScanner().Scan(cmd.Context())
	if err != nil {
		p.PrintError("Scan failed", err,
			"Check that multicast traffic is allowed on this network",
			"Try increasing --timeout",
		)
		return fmt.Errorf("scan failed: %w", err)
	}

	p.Newline()
	p.PrintBridges(bridges)
	p.Newline()

	if len(bridges) == 0 {
		p.PrintWarning("No bridges found",
			ui.Param{Key: "Hint", Value: "server.enabled and server.advertise must be true on the bridge"},
		)
		return nil
	}

	p.Println(ui.MutedStyle.Render("  Use 'ookbridge watch <feed url>' to monitor a bridge"))
	return nil
}

// watchCmd opens the live monitor on a bridge's feed
var watchCmd = &cobra.Command{
	Use:   "watch [URL]",
	Short: "Monitor a bridge's live feed",
	Long: `Open a live terminal monitor on a bridge's websocket feed.

The monitor shows the latest value of every sensor, decoder counters and
recent rejections. Without a URL the first bridge found via mDNS is used.`,
	Example: `  # Watch the first bridge on the network
  ookbridge watch

  # Watch a specific bridge
  ookbridge watch ws://192.168.1.20:9433/ws`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var url string
	if len(args) == 1 {
		url = args[0]
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Looking for a bridge (timeout: %ds)...\n", scanTimeout)
		bridge, err := newScanner().First(ctx)
		if err != nil {
			return fmt.Errorf("no bridge found: %w", err)
		}
		url = bridge.FeedURL()
	}

	events, err := server.Subscribe(ctx, url)
	if err != nil {
		return err
	}

	if err := ui.RunMonitor(url, events); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}
	return nil
}
