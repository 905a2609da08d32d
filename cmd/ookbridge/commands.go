package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ookbridge/internal/config"
	"github.com/muurk/ookbridge/internal/decoder"
	"github.com/muurk/ookbridge/internal/identity"
	"github.com/muurk/ookbridge/internal/logging"
	"github.com/muurk/ookbridge/internal/monitor"
	"github.com/muurk/ookbridge/internal/protocol"
	"github.com/muurk/ookbridge/internal/publish"
	"github.com/muurk/ookbridge/internal/pulse"
	"github.com/muurk/ookbridge/internal/server"
	"github.com/muurk/ookbridge/internal/ui"
)

// shutdownTimeout bounds the HTTP server shutdown on exit.
const shutdownTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(synthCmd)
}

// Run command flags
var (
	runInput    string
	runBaud     int
	runNoServer bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Decode pulses and publish readings",
	Long: `Read pulse durations from the receiver, decode RainGauge and F007TP
transmissions and publish every reading.

On startup the bridge publishes its IP address to <rain_gauge topic>/data/info.
When the server is enabled, a websocket feed, /healthz, /stats and /metrics
are served and the bridge is advertised over mDNS. Stop with Ctrl+C.`,
	Example: `  # Run with the configuration file
  ookbridge run

  # Read pulses from another serial adapter
  ookbridge run --input /dev/ttyACM0 --baud 57600

  # Feed a recorded stream through stdin
  cat pulses.txt | ookbridge run --input - --log-level debug`,
	RunE: runBridge,
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "Serial device, or - for stdin (overrides radio.input)")
	runCmd.Flags().IntVar(&runBaud, "baud", 0, "Serial line speed (overrides radio.baud)")
	runCmd.Flags().BoolVar(&runNoServer, "no-server", false, "Do not start the HTTP server")
}

func runBridge(cmd *cobra.Command, args []string) error {
	// A long-running bridge logs at info unless told otherwise.
	if logLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		if err := logging.Initialize("info"); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runInput != "" {
		cfg.Radio.Input = runInput
	}
	if runBaud > 0 {
		cfg.Radio.Baud = runBaud
	}
	if runNoServer {
		cfg.Server.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()

	sourceID := cfg.SourceID
	if sourceID == "" {
		sourceID = identity.SourceID()
	}

	src, err := openSource(cfg.Radio)
	if err != nil {
		return err
	}
	defer src.Close()

	pub, closePublishers, err := openPublishers(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePublishers()

	dispatcher := publish.NewDispatcher(pub, cfg.PublishTopics(), sourceID)
	if ip, err := identity.LocalIP(); err != nil {
		logging.Warn("Could not determine local IP address", zap.Error(err))
	} else if err := dispatcher.Announce(ip); err != nil {
		logging.Warn("Startup announcement failed", zap.Error(err))
	}

	metrics := monitor.New()
	dec := decoder.New(src, cfg.DecoderConfig(), metrics)
	dec.AddObserver(decoder.ObserverFunc(func(o decoder.Outcome) {
		if o.Accepted() {
			metrics.RecordPublish(dispatcher.Dispatch(o.Readings))
		}
	}))

	if cfg.Server.Enabled {
		hub := server.NewHub(dec.Stats().Snapshot)
		dec.AddObserver(hub)

		srv := server.New(&server.Config{
			Listen:    cfg.Server.Listen,
			Advertise: cfg.Server.Advertise,
			SourceID:  sourceID,
		}, hub, metrics.Handler(), dec.Stats().Snapshot)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Warn("Server shutdown failed", zap.Error(err))
			}
		}()
	}

	logging.Info("Bridge running",
		zap.String("source_id", sourceID),
		zap.String("input", cfg.Radio.Input),
		zap.String("publisher", publisherName(pub)),
	)

	if err := dec.Run(ctx); err != nil {
		return fmt.Errorf("decoder stopped: %w", err)
	}

	snap := dec.Stats().Snapshot()
	logging.Info("Bridge stopped",
		zap.Uint64("cycles", snap.Cycles),
		zap.Uint64("readings", snap.Readings),
		zap.Uint64("rejections", snap.Rejections()),
	)
	return nil
}

// openSource opens the configured pulse input.
func openSource(radio config.RadioConfig) (*pulse.ReaderSource, error) {
	if radio.Input == config.StdinInput {
		logging.Info("Reading pulses from stdin")
		return pulse.NewReaderSource(os.Stdin), nil
	}
	return pulse.OpenSerial(radio.Input, radio.Baud)
}

// openPublishers builds the enabled publishers. An unreachable MQTT broker is
// not fatal since the publisher reconnects on the next message; Redis is
// checked once at startup. With nothing enabled, readings are only logged.
func openPublishers(ctx context.Context, cfg *config.Config) (publish.Publisher, func(), error) {
	var (
		pubs    publish.Multi
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.MQTT.Enabled {
		mq := publish.NewMQTTPublisher(cfg.MQTTOptions())
		if err := mq.Connect(); err != nil {
			logging.Warn("MQTT broker unavailable, will retry on publish",
				zap.String("broker", cfg.MQTT.Broker),
				zap.Error(err),
			)
		}
		pubs = append(pubs, mq)
		closers = append(closers, mq.Close)
	}

	if cfg.Redis.Enabled {
		rp, err := publish.NewRedisPublisher(ctx, cfg.RedisOptions())
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		pubs = append(pubs, rp)
		closers = append(closers, func() { _ = rp.Close() })
	}

	switch len(pubs) {
	case 0:
		logging.Warn("No publisher enabled, readings are only logged")
		return publish.LogPublisher{}, closeAll, nil
	case 1:
		return pubs[0], closeAll, nil
	default:
		return pubs, closeAll, nil
	}
}

func publisherName(p publish.Publisher) string {
	if n, ok := p.(publish.Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// Replay command flags
var replayPublish bool

var replayCmd = &cobra.Command{
	Use:   "replay CAPTURE",
	Short: "Decode a recorded pulse capture",
	Long: `Run a YAML pulse capture through the decoder and print every accepted
frame and rejection. Captures can be recorded from a receiver or written
with 'ookbridge synth'.

With --publish, readings are also sent through the configured publishers.`,
	Example: `  # Decode a capture
  ookbridge replay garden.yaml

  # Decode and publish using the configuration file
  ookbridge replay garden.yaml --publish`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayPublish, "publish", false, "Publish readings through the configured publishers")
}

func runReplay(cmd *cobra.Command, args []string) error {
	capture, err := pulse.LoadCapture(args[0])
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Capture Replay", "ookbridge replay",
		ui.Param{Key: "Capture", Value: args[0]},
		ui.Param{Key: "Description", Value: orDash(capture.Description)},
		ui.Param{Key: "Pulses", Value: strconv.Itoa(len(capture.Pulses))},
		ui.Param{Key: "Publish", Value: strconv.FormatBool(replayPublish)},
	)

	var dispatcher *publish.Dispatcher
	if replayPublish {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pub, closePublishers, err := openPublishers(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closePublishers()

		sourceID := cfg.SourceID
		if sourceID == "" {
			sourceID = identity.SourceID()
		}
		dispatcher = publish.NewDispatcher(pub, cfg.PublishTopics(), sourceID)
	}

	snap, err := replay(cmd.Context(), capture, p, dispatcher)
	if err != nil {
		p.PrintError("Replay failed", err)
		return err
	}

	result := ui.NewSuccessResult("Replay complete",
		ui.Param{Key: "Cycles", Value: strconv.FormatUint(snap.Cycles, 10)},
		ui.Param{Key: "RainGauge frames", Value: strconv.FormatUint(snap.RainGaugeFrames, 10)},
		ui.Param{Key: "F007TP frames", Value: strconv.FormatUint(snap.F007TPFrames, 10)},
		ui.Param{Key: "Readings", Value: strconv.FormatUint(snap.Readings, 10)},
		ui.Param{Key: "Structural", Value: strconv.FormatUint(snap.Structural, 10)},
		ui.Param{Key: "Integrity", Value: strconv.FormatUint(snap.Integrity, 10)},
	)
	if snap.Readings == 0 {
		result.Type = ui.ResultWarning
		result.Title = "No readings decoded"
	}
	p.Println(result.SetWidth(p.Width()).Render())
	return nil
}

// replay decodes a capture to the end, printing each non-timeout cycle and
// dispatching accepted readings when dispatcher is set.
func replay(ctx context.Context, capture *pulse.Capture, p *ui.Printer, dispatcher *publish.Dispatcher) (decoder.Snapshot, error) {
	cfg := decoder.DefaultConfig()
	cfg.RainGaugeHoldoff = 0 // a capture has no real time to wait out

	dec := decoder.New(capture.Source(), cfg)
	dec.AddObserver(decoder.ObserverFunc(func(o decoder.Outcome) {
		if protocol.IsTimeout(o.Rejection) {
			return
		}
		p.PrintEvent(decoder.NewEvent(o, decoder.Snapshot{}))
		if dispatcher != nil && o.Accepted() {
			dispatcher.Dispatch(o.Readings)
		}
	}))

	err := dec.Run(ctx)
	return dec.Stats().Snapshot(), err
}

// Synth command flags
var (
	synthProtocol    string
	synthID          int
	synthTemperature float64
	synthRain        int
	synthHumidity    int
	synthLowBattery  bool
	synthReset       bool
	synthRepeat      int
	synthOutput      string
)

// synthGap separates repeated frames. It falls outside every pulse window.
const synthGap pulse.Duration = 20000

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Write a pulse capture for given sensor values",
	Long: `Encode a RainGauge or F007TP transmission for the given field values and
write it as a YAML pulse capture, ready for 'ookbridge replay' or for
feeding a bridge through stdin.

RainGauge temperatures are sent in tenths of a degree Fahrenheit, so the
value decoded back may differ from --temperature by a rounding step.`,
	Example: `  # One F007TP frame, channel 3, -4.5 °C
  ookbridge synth --protocol f007tp --id 3 --temperature -4.5 --output cold.yaml

  # Three repeated rain gauge frames with the low battery flag, to stdout
  ookbridge synth --protocol raingauge --id 0x2a61 --rain 120 --temperature 18.2 --low-battery --repeat 3`,
	RunE: runSynth,
}

func init() {
	synthCmd.Flags().StringVar(&synthProtocol, "protocol", "f007tp", "Protocol to encode (raingauge, f007tp)")
	synthCmd.Flags().IntVar(&synthID, "id", 1, "Device id (F007TP channel 1-8, RainGauge 16-bit id; 0x prefix accepted)")
	synthCmd.Flags().Float64Var(&synthTemperature, "temperature", 20, "Temperature in °C")
	synthCmd.Flags().IntVar(&synthRain, "rain", 0, "RainGauge raw tip counter")
	synthCmd.Flags().IntVar(&synthHumidity, "humidity", 50, "F007TP relative humidity")
	synthCmd.Flags().BoolVar(&synthLowBattery, "low-battery", false, "Set the RainGauge low battery flag")
	synthCmd.Flags().BoolVar(&synthReset, "reset", false, "Set the RainGauge reset flag")
	synthCmd.Flags().IntVar(&synthRepeat, "repeat", 1, "Number of times the frame is sent")
	synthCmd.Flags().StringVarP(&synthOutput, "output", "o", "-", "Capture file, or - for stdout")
}

// synthOptions holds the field values of a synthesised transmission.
type synthOptions struct {
	Protocol    protocol.ID
	ID          int
	Temperature float64
	Rain        int
	Humidity    int
	LowBattery  bool
	Reset       bool
	Repeat      int
}

func runSynth(cmd *cobra.Command, args []string) error {
	id, err := protocol.ParseID(synthProtocol)
	if err != nil {
		return err
	}

	capture, err := synthesize(synthOptions{
		Protocol:    id,
		ID:          synthID,
		Temperature: synthTemperature,
		Rain:        synthRain,
		Humidity:    synthHumidity,
		LowBattery:  synthLowBattery,
		Reset:       synthReset,
		Repeat:      synthRepeat,
	})
	if err != nil {
		return err
	}

	if synthOutput == "-" {
		return writeCapture(cmd.OutOrStdout(), capture)
	}
	if err := capture.Save(synthOutput); err != nil {
		return err
	}

	ui.NewPrinter(cmd.ErrOrStderr()).PrintSuccess("Capture written",
		ui.Param{Key: "File", Value: synthOutput},
		ui.Param{Key: "Description", Value: capture.Description},
		ui.Param{Key: "Pulses", Value: strconv.Itoa(len(capture.Pulses))},
	)
	return nil
}

// synthesize encodes opts.Repeat copies of a frame, separated by a gap pulse.
func synthesize(opts synthOptions) (*pulse.Capture, error) {
	if opts.Repeat < 1 {
		return nil, fmt.Errorf("repeat must be at least 1, got %d", opts.Repeat)
	}

	var (
		frame       []pulse.Duration
		description string
	)

	switch opts.Protocol {
	case protocol.RainGauge:
		if opts.ID < 0 || opts.ID > math.MaxUint16 {
			return nil, fmt.Errorf("raingauge id must fit in 16 bits, got %d", opts.ID)
		}
		if opts.Rain < 0 || opts.Rain > math.MaxUint16 {
			return nil, fmt.Errorf("rain counter must fit in 16 bits, got %d", opts.Rain)
		}
		// tenths of °F plus the 900 offset
		rawTemp := math.Round((opts.Temperature*9/5+32)*10) + 900
		if rawTemp < 0 || rawTemp > math.MaxUint16 {
			return nil, fmt.Errorf("temperature %.1f °C cannot be encoded", opts.Temperature)
		}

		var flags byte
		if opts.LowBattery {
			flags |= protocol.RainFlagLowBattery
		}
		if opts.Reset {
			flags |= protocol.RainFlagReset
		}

		f := protocol.NewRainGaugeFrame(uint16(opts.ID), flags, uint16(opts.Rain), uint16(rawTemp))
		frame = protocol.EncodeRainGauge(f)
		description = fmt.Sprintf("raingauge id 0x%04x rain %d temperature %.1f", opts.ID, opts.Rain, opts.Temperature)

	case protocol.F007TP:
		if opts.Humidity < 0 || opts.Humidity > math.MaxUint8 {
			return nil, fmt.Errorf("humidity must fit in 8 bits, got %d", opts.Humidity)
		}
		magnitude := math.Round(math.Abs(opts.Temperature) * 10)
		if magnitude > math.MaxUint16 {
			return nil, fmt.Errorf("temperature %.1f °C cannot be encoded", opts.Temperature)
		}
		f, err := protocol.NewF007TPFrame(opts.ID, opts.Temperature < 0, uint16(magnitude), uint8(opts.Humidity))
		if err != nil {
			return nil, err
		}
		frame = protocol.EncodeF007TP(f)
		description = fmt.Sprintf("f007tp channel %d temperature %.1f humidity %d", opts.ID, opts.Temperature, opts.Humidity)

	default:
		return nil, fmt.Errorf("cannot synthesise protocol %s", opts.Protocol)
	}

	pulses := make([]pulse.Duration, 0, opts.Repeat*(len(frame)+1))
	for i := 0; i < opts.Repeat; i++ {
		pulses = append(pulses, frame...)
		pulses = append(pulses, synthGap)
	}
	if opts.Repeat > 1 {
		description += fmt.Sprintf(" x%d", opts.Repeat)
	}

	return pulse.NewCapture(description, pulses), nil
}

func writeCapture(w io.Writer, c *pulse.Capture) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
