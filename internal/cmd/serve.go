package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/overseer/internal/catalog"
	"github.com/jmgilman/overseer/internal/config"
	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/events"
	"github.com/jmgilman/overseer/internal/exec"
	"github.com/jmgilman/overseer/internal/logging"
	"github.com/jmgilman/overseer/internal/logstate"
	"github.com/jmgilman/overseer/internal/metrics"
	"github.com/jmgilman/overseer/internal/multiplexer"
	"github.com/jmgilman/overseer/internal/slogger"
	"github.com/jmgilman/overseer/internal/supervisor"
	"github.com/jmgilman/overseer/internal/version"
	"github.com/jmgilman/overseer/internal/watchdog"
)

// shutdownTimeout bounds terminating sessions when the daemon exits.
const shutdownTimeout = 30 * time.Second

var errDaemonRunning = errors.New("another overseer daemon is running")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the supervision daemon",
	Long: `Run the supervision daemon in the foreground.

The daemon hosts agent sessions in tmux, tails each agent's structured log,
runs the watchdog sweep and serves the control protocol on server.listen:

  /ws       websocket control protocol
  /healthz  liveness probe
  /metrics  Prometheus metrics

Only one daemon may run per data directory. Sessions left behind by a daemon
that exited uncleanly are terminated on start. Interrupting the daemon
terminates every session it started.`,
	Example: `  # Run with the configured listen address
  overseer serve

  # Listen on another port with debug logging
  overseer serve --listen 127.0.0.1:9000 -vv`,
	Args: cobra.NoArgs,
	RunE: runServeCmd,
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig(cmd.Context())
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if err := checkDependencies("tmux"); err != nil {
		return err
	}

	lock, err := acquireDaemonLock(cfg.Storage.Lock)
	if err != nil {
		return err
	}
	defer lock.Unlock() //nolint:errcheck // best-effort cleanup

	paths := logging.NewPathManager(cfg.Storage.Logs)
	if err := os.MkdirAll(paths.BaseDir(), 0o750); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	tee, err := logging.NewTeeWriter(cmd.ErrOrStderr(), paths.DaemonLogPath())
	if err != nil {
		return err
	}
	defer tee.Close() //nolint:errcheck // best-effort cleanup

	verbosity, _ := cmd.Flags().GetCount("verbose")
	log := slogger.New(slogger.Config{
		Verbosity:  verbosity,
		Level:      cfg.Log.Level,
		Timestamps: true,
		Output:     tee,
	})
	ctx := slogger.WithLogger(cmd.Context(), log)

	return serve(ctx, cfg, multiplexer.NewTmux(exec.New()), log)
}

// acquireDaemonLock takes the single-daemon lock at path.
func acquireDaemonLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock held on %s)", errDaemonRunning, path)
	}
	return lock, nil
}

// serve wires the daemon components and runs them until ctx is done.
func serve(ctx context.Context, cfg *config.Config, host multiplexer.Multiplexer, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	broker := events.NewBroker(events.Options{
		Logger:          log,
		OnDeliveryError: m.DeliveryFailed,
	})
	broker.Subscribe(m, false)

	store := catalog.NewStore(cfg.Storage.Catalog)
	sup := supervisor.New(host, supervisorOptions(cfg, store, broker, log))

	if n, err := sup.Reap(ctx); err != nil {
		log.Warn("failed to reap orphaned sessions", "error", err)
	} else if n > 0 {
		log.Info("reaped orphaned sessions", "count", n)
	}

	wd := watchdog.New(sup, watchdogOptions(cfg, m, log))
	disp := control.NewDispatcher(sup, broker, control.DispatcherOptions{
		Logger:  log,
		Metrics: m,
	})
	srv := control.NewServer(disp, control.ServerOptions{
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:  log,
	})

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Listen, err)
	}
	log.Info("overseer daemon started",
		"listen", ln.Addr().String(),
		"agent", cfg.Agent.Command,
		"build", version.Get().String(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Run(gctx) })
	g.Go(func() error { return wd.Run(gctx) })
	g.Go(func() error { return srv.Serve(gctx, ln) })
	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := sup.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to terminate sessions", "error", err)
	}
	log.Info("overseer daemon stopped")

	return runErr
}

// supervisorOptions maps configuration onto supervisor options.
func supervisorOptions(cfg *config.Config, store catalog.Store, pub events.Publisher, log *slog.Logger) supervisor.Options {
	s := cfg.Supervisor
	return supervisor.Options{
		Agent: supervisor.AgentOptions{
			Command:            cfg.Agent.Command,
			Args:               cfg.Agent.Args,
			Env:                cfg.AgentEnv(),
			LogFileEnv:         cfg.Agent.LogFileEnv,
			LogLevelEnv:        cfg.Agent.LogLevelEnv,
			ThreadFlag:         cfg.Agent.ThreadFlag,
			ContinuationMarker: cfg.Agent.ContinuationMarker,
			InterruptKey:       cfg.Agent.InterruptKey,
		},
		Defaults: cfg.InstanceDefaults(),
		Tools:    cfg.Agent.Tools,
		LogsDir:  cfg.Storage.Logs,
		Catalog:  store,
		Events:   pub,
		Logger:   log,
		Monitor: logstate.Options{
			PollInterval:         cfg.Monitor.PollInterval,
			RecentActivityWindow: cfg.Monitor.RecentActivityWindow,
			RefreshLines:         cfg.Monitor.RefreshLines,
		},
		StartupDelay:       s.StartupDelay,
		SubmitDelay:        s.SubmitDelay,
		AuthSettleDelay:    s.AuthSettleDelay,
		OutputPollInterval: s.OutputPollInterval,
		OutputLines:        s.OutputLines,
		CaptureLines:       s.CaptureLines,
		OptimisticAuth:     s.OptimisticAuth,
		CreditPhrases:      phrases(s.CreditPhrases),
		AuthFailurePhrases: phrases(s.AuthFailurePhrases),
		ReadyPhrases:       phrases(s.ReadyPhrases),
	}
}

func watchdogOptions(cfg *config.Config, m *metrics.Metrics, log *slog.Logger) watchdog.Options {
	return watchdog.Options{
		Interval:    cfg.Watchdog.Interval,
		Throttle:    cfg.Watchdog.Throttle,
		Concurrency: cfg.Watchdog.Concurrency,
		Logger:      log,
		Metrics:     m,
	}
}

// phrases returns nil for an empty list so the built-in phrases apply.
func phrases(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "address to listen on (overrides server.listen)")
}
