package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/yairfalse/fenceline/alert"
	"github.com/yairfalse/fenceline/history"
	"github.com/yairfalse/fenceline/score"
	"github.com/yairfalse/fenceline/telemetry"
)

var (
	watchDays        int
	watchInterval    time.Duration
	watchMetricsAddr string
	watchOTLP        string
)

// coalesceWindow batches bursts of file events into one re-evaluation
const coalesceWindow = 2 * time.Second

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously evaluate enforcement health",
	Long: `Run unattended: re-score on a fixed interval and whenever the
event log changes, record each result to the score history, and
expose Prometheus metrics.

Set an OTLP endpoint to also ship traces and metrics to a collector.
Shuts down cleanly on SIGINT/SIGTERM.`,
	Example: `  fenceline watch                              # Defaults from config
  fenceline watch --interval 1m                # Evaluate every minute
  fenceline watch --metrics-addr :2112         # Custom metrics port
  fenceline watch --otlp-endpoint otel:4317    # Ship to a collector`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVar(&watchDays, "days", 7, "Window size in days per evaluation")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Evaluation interval (overrides config)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Prometheus listen address (overrides config)")
	watchCmd.Flags().StringVar(&watchOTLP, "otlp-endpoint", "", "OTLP gRPC endpoint (overrides config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval := cfg.Watch.Interval
	if watchInterval > 0 {
		interval = watchInterval
	}
	metricsAddr := cfg.Watch.MetricsAddr
	if watchMetricsAddr != "" {
		metricsAddr = watchMetricsAddr
	}
	otlpEndpoint := cfg.Watch.OTLPEndpoint
	if watchOTLP != "" {
		otlpEndpoint = watchOTLP
	}

	logger := telemetry.NewLogger("watch")

	ctx := cmd.Context()
	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "fenceline",
		ServiceVersion: version,
		OTLPEndpoint:   otlpEndpoint,
		Insecure:       true,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(stopCtx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	s, err := openStore()
	if err != nil {
		return err
	}

	hist, err := history.Open(cfg.Watch.HistoryDir)
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()

	engine := score.NewEngine(cfg.Thresholds)

	evaluate := func(ctx context.Context, reason string) {
		report, err := engine.Evaluate(ctx, s, watchDays)
		if err != nil {
			logger.Error().Err(err).Str("reason", reason).Msg("evaluation failed")
			return
		}

		prev, hadPrev, err := hist.Latest(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("read previous snapshot")
		}
		if hadPrev && prev.Rating != report.Rating {
			logger.Warn().
				Str("from", string(prev.Rating)).
				Str("to", string(report.Rating)).
				Msg("rating changed")
		}

		if err := hist.Record(ctx, history.FromReport(report)); err != nil {
			logger.Warn().Err(err).Msg("record snapshot")
		}

		result := alert.Check(report, cfg.Thresholds)
		event := logger.Info()
		if result.HasCritical {
			event = logger.Error()
		} else if result.HasWarnings {
			event = logger.Warn()
		}
		event.
			Str("reason", reason).
			Str("rating", string(report.Rating)).
			Float64("violation_rate", report.ViolationRate).
			Int("bypasses", report.Bypasses.Current).
			Int("alerts", len(result.Alerts)).
			Msg("evaluation complete")
	}

	changes := make(chan struct{}, 1)

	var g run.Group
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	addEvaluationLoop(&g, ctx, interval, changes, evaluate)
	if err := addFileWatcher(&g, s.Path(), changes, logger); err != nil {
		return err
	}
	if metricsAddr != "" {
		addMetricsServer(&g, metricsAddr, logger)
	}

	logger.Info().
		Dur("interval", interval).
		Str("metrics_addr", metricsAddr).
		Str("events_file", s.Path()).
		Msg("watch mode started")

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		logger.Info().Str("signal", sigErr.Signal.String()).Msg("shutting down")
		return nil
	}
	return err
}

// addEvaluationLoop evaluates immediately, then on every tick and on
// every coalesced change notification
func addEvaluationLoop(g *run.Group, ctx context.Context, interval time.Duration, changes <-chan struct{}, evaluate func(context.Context, string)) {
	loopCtx, cancel := context.WithCancel(ctx)
	g.Add(func() error {
		evaluate(loopCtx, "startup")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var pending *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ticker.C:
				evaluate(loopCtx, "interval")
			case <-changes:
				if pending == nil {
					pending = time.NewTimer(coalesceWindow)
					fire = pending.C
				} else {
					pending.Reset(coalesceWindow)
				}
			case <-fire:
				pending = nil
				fire = nil
				evaluate(loopCtx, "file_change")
			case <-loopCtx.Done():
				return loopCtx.Err()
			}
		}
	}, func(error) {
		cancel()
	})
}

// addFileWatcher notifies the evaluation loop when the events file or
// its directory changes
func addFileWatcher(g *run.Group, eventsPath string, changes chan<- struct{}, logger *telemetry.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}

	// Watch the directory: the log may not exist yet, and prune
	// replaces it via rename
	dir := filepath.Dir(eventsPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("create events directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	g.Add(func() error {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Name != eventsPath {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn().Err(err).Msg("file watcher error")
			}
		}
	}, func(error) {
		_ = watcher.Close()
	})
	return nil
}

// addMetricsServer serves the Prometheus registry on /metrics plus a
// trivial health endpoint
func addMetricsServer(g *run.Group, addr string, logger *telemetry.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Add(func() error {
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(stopCtx)
	})
}
