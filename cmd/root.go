package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/pcmcap/internal/capture"
	"github.com/smazurov/pcmcap/internal/config"
	"github.com/smazurov/pcmcap/internal/events"
	"github.com/smazurov/pcmcap/internal/led"
	"github.com/smazurov/pcmcap/internal/logging"
	"github.com/smazurov/pcmcap/internal/metrics"
	"github.com/smazurov/pcmcap/internal/metrics/exporters"
	"github.com/smazurov/pcmcap/internal/systemd"
	"github.com/smazurov/pcmcap/internal/version"
)

// Execute runs the pcmcap command line and returns the process exit status.
func Execute() int {
	return run(context.Background(), openDevice, os.Args[1:])
}

func run(ctx context.Context, open capture.OpenFunc, args []string) int {
	code := capture.ExitOK
	root := CreateRootCmd(open, &code)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return capture.ExitFailure
	}
	return code
}

// CreateRootCmd creates the capture command. The exit status of a capture
// run is stored in code.
func CreateRootCmd(open capture.OpenFunc, code *int) *cobra.Command {
	opts := config.Defaults()

	cmd := &cobra.Command{
		Use:   "pcmcap",
		Short: "Capture raw PCM audio from an ALSA device in mmap mode",
		Long: `Captures interleaved PCM frames from an ALSA hardware capture device using ` +
			`memory-mapped transfers and writes them, headerless, to a file. ` +
			`SIGINT, SIGTERM, SIGQUIT and SIGHUP stop the capture gracefully.`,
		Version:       version.Get().String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadConfig(&opts, cmd); err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			*code = runCapture(cmd.Context(), &opts, open)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Config, "config", "c", opts.Config, "Path to configuration file")
	flags.IntVar(&opts.Card, "card", opts.Card, "ALSA card index")
	flags.IntVar(&opts.Device, "device", opts.Device, "ALSA device index on the card")
	flags.IntVar(&opts.Channels, "channels", opts.Channels, "Channels per frame")
	flags.IntVar(&opts.Rate, "rate", opts.Rate, "Sample rate in Hz")
	flags.IntVar(&opts.PeriodSize, "period-size", opts.PeriodSize, "Period size in frames")
	flags.IntVar(&opts.PeriodCount, "period-count", opts.PeriodCount, "Periods in the ring buffer")
	flags.StringVarP(&opts.Format, "format", "f", opts.Format, "Sample format (e.g. S16_LE, S32_LE)")
	flags.StringVarP(&opts.Output, "output", "o", opts.Output, "Output file for raw PCM")
	flags.BoolVar(&opts.StrictExit, "strict-exit", opts.StrictExit, "Exit 2 when capture stops on an error")
	flags.BoolVar(&opts.FeaturesLed, "features-led", opts.FeaturesLed, "Light the board LED while capturing")
	flags.StringVar(&opts.MetricsAddr, "metrics-addr", opts.MetricsAddr, "Serve Prometheus metrics on this address")
	flags.StringVar(&opts.LoggingLevel, "logging-level", opts.LoggingLevel, "Global logging level (debug, info, warn, error)")
	flags.StringVar(&opts.LoggingFormat, "logging-format", opts.LoggingFormat, "Logging format (text, json)")
	flags.StringVar(&opts.LoggingFile, "logging-file", opts.LoggingFile, "Also log to this size-rotated file")
	flags.BoolVar(&opts.LoggingNoJournal, "logging-no-journal", opts.LoggingNoJournal, "Do not log to the systemd journal")
	flags.StringVar(&opts.LoggingCapture, "logging-capture", opts.LoggingCapture, "Capture logging level")
	flags.StringVar(&opts.LoggingAlsa, "logging-alsa", opts.LoggingAlsa, "ALSA backend logging level")
	flags.StringVar(&opts.LoggingMetrics, "logging-metrics", opts.LoggingMetrics, "Metrics logging level")
	flags.StringVar(&opts.LoggingSystemd, "logging-systemd", opts.LoggingSystemd, "systemd notify logging level")
	flags.StringVar(&opts.LoggingLed, "logging-led", opts.LoggingLed, "LED indicator logging level")

	cmd.AddCommand(CreateDevicesCmd())
	return cmd
}

func runCapture(ctx context.Context, opts *config.Options, open capture.OpenFunc) int {
	logging.Initialize(opts.LoggingConfig())
	defer logging.Close()
	logger := logging.GetLogger("main")

	bus := events.New()
	defer metrics.Subscribe(bus)()
	notifier := systemd.NewNotifier(logging.GetLogger("systemd"))
	defer notifier.Subscribe(bus)()
	settled := []<-chan struct{}{notifier.Done()}

	if opts.FeaturesLed {
		ledLogger := logging.GetLogger("led")
		controller, name := newLEDController(ledLogger)
		indicator := led.NewIndicator(controller, name, ledLogger)
		defer indicator.Subscribe(bus)()
		settled = append(settled, indicator.Done())
	}

	if opts.MetricsAddr != "" {
		srv, err := exporters.Listen(opts.MetricsAddr, logging.GetLogger("metrics"))
		if err != nil {
			logger.Error("Failed to start metrics server", "addr", opts.MetricsAddr, "error", err)
			return capture.ExitFailure
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown", "error", err)
			}
		}()
	}

	session := capture.NewSession(capture.Options{
		Config: opts.CaptureConfig(),
		Open:   open,
		Bus:    bus,
		Logger: logging.GetLogger("capture"),
	})
	stopSignals := capture.WatchSignals(session)
	defer stopSignals()
	defer watchDevice(ctx, bus, uint(opts.Card), uint(opts.Device), logging.GetLogger("alsa"))()

	logger.Info("Starting capture", "version", version.Get().Version, "session_id", session.ID())
	result, err := session.Run(ctx)
	awaitSettled(settled, settleTimeout, logger)
	return capture.ExitCode(result, err, opts.StrictExit)
}

// newLEDController detects the board's indicator LED.
var newLEDController = led.New

// settleTimeout bounds how long exit waits for subscribers to handle the
// session's final state.
const settleTimeout = time.Second

// awaitSettled waits until every channel is closed or timeout passes. Bus
// delivery is asynchronous; subscribers must see the final state before
// the process exits.
func awaitSettled(chans []<-chan struct{}, timeout time.Duration, logger *slog.Logger) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for _, ch := range chans {
		select {
		case <-ch:
		case <-timer.C:
			logger.Warn("Timed out waiting for subscribers to finish", "timeout", timeout)
			return
		}
	}
}
