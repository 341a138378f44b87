package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bft-labs/batchclock/internal/cliconfig"
	"github.com/bft-labs/batchclock/internal/configwatch"
	"github.com/bft-labs/batchclock/internal/metrics"
	"github.com/bft-labs/batchclock/internal/watch"
	"github.com/bft-labs/batchclock/pkg/batch"
	"github.com/bft-labs/batchclock/pkg/log"
	"github.com/bft-labs/batchclock/pkg/state"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Log every phase transition as it happens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return a.runWatch(ctx)
		},
	}

	cmd.Flags().StringVar(&a.cfg.StateDir, "state-dir", a.cfg.StateDir, "directory for the watcher state file")
	cmd.Flags().BoolVar(&a.cfg.NoState, "no-state", a.cfg.NoState, "do not persist watcher state")
	cmd.Flags().StringVar(&a.cfg.MetricsAddr, "metrics-addr", a.cfg.MetricsAddr, "address to serve prometheus metrics on (disabled if empty)")
	cmd.Flags().DurationVar(&a.cfg.ReloadDebounce, "reload-debounce", a.cfg.ReloadDebounce, "quiet period before reloading a changed config file")
	return cmd
}

func (a *app) runWatch(ctx context.Context) error {
	metrics.BuildInfo.WithLabelValues(getVersion()).Set(1)

	if a.cfg.MetricsAddr != "" {
		if err := a.serveMetrics(ctx); err != nil {
			return err
		}
	}

	if a.cfgPath != "" && cliconfig.FileExists(a.cfgPath) {
		cw := configwatch.New(a.cfgPath, a.cfg.ReloadDebounce, a.logger, a.applyReload)
		go func() {
			if err := cw.Run(ctx); err != nil {
				a.logger.Warn("config watcher stopped", log.Err(err))
			}
		}()
	}

	cfg := watch.Config{Logger: a.logger}
	if !a.cfg.NoState {
		cfg.Repository = state.NewFileRepository(a.cfg.StateDir)
	}
	w, err := watch.New(cfg)
	if err != nil {
		return err
	}

	err = w.Run(ctx)
	var clockErr *batch.ClockError
	if errors.As(err, &clockErr) {
		// The host clock reads before 1970; nothing this process does can help.
		a.logger.Error("system clock is earlier than the Unix epoch", log.Time("now", clockErr.Time))
	}
	return err
}

// applyReload applies the live-reloadable settings of a changed config file.
// Only the log level is reloaded; flags and environment still take precedence.
func (a *app) applyReload(fc cliconfig.FileConfig) {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	next := a.cfg
	if !a.changed["log-level"] {
		next.LogLevel = cliconfig.DefaultConfig().LogLevel
	}
	if err := cliconfig.ApplyFileConfig(&next, fc, a.changed); err != nil {
		a.logger.Warn("ignoring reloaded config", log.Err(err))
		return
	}
	if err := cliconfig.ApplyEnvConfig(&next, a.changed); err != nil {
		a.logger.Warn("ignoring reloaded config", log.Err(err))
		return
	}

	if next.LogLevel == a.logger.Level() {
		return
	}
	if err := a.logger.SetLevel(next.LogLevel); err != nil {
		a.logger.Warn("ignoring reloaded log level", log.String("log_level", next.LogLevel), log.Err(err))
		return
	}
	a.cfg.LogLevel = next.LogLevel
	a.logger.Info("log level changed", log.String("log_level", next.LogLevel))
}

func (a *app) serveMetrics(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.cfg.MetricsAddr)
	if err != nil {
		return err
	}
	a.logger.Info("prometheus metrics server listening", log.String("address", listener.Addr().String()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("prometheus metrics server failed", log.Err(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return nil
}
