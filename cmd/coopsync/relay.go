package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/coopsync-dev/coopsync/internal/config"
	"github.com/coopsync-dev/coopsync/internal/tracing"
	"github.com/coopsync-dev/coopsync/pkg/protocol"
	"github.com/coopsync-dev/coopsync/pkg/telemetry"
	"github.com/coopsync-dev/coopsync/pkg/transport"
)

const shutdownTimeout = 5 * time.Second

func relayCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the relay server",
		Long: `Run the websocket relay.

Every valid envelope a peer sends is forwarded to every other peer.
Traffic statistics are logged periodically and exported on the
metrics path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Relay.Addr = addr
			}
			return runRelay(cmd.Context(), c.cfg, c.logger)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides relay.addr)")

	return cmd
}

// relay bundles the relay's long-lived components.
type relay struct {
	hub      *transport.Hub
	monitor  *telemetry.Monitor
	registry *prometheus.Registry
	handler  http.Handler
}

func newRelay(cfg *config.Config, logger *slog.Logger, connOpts ...transport.Option) *relay {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exporter := telemetry.NewExporter(telemetry.WithRegistry(reg))
	monitor := telemetry.NewMonitor(
		telemetry.WithInterval(cfg.Telemetry.Interval),
		telemetry.WithExporter(exporter),
		telemetry.WithLogger(logger),
	)

	codec := protocol.NewCodec(protocol.WithCompression(cfg.Protocol.CompressThreshold))
	opts := []transport.Option{
		transport.WithCodec(codec),
		transport.WithMaxMalformed(cfg.Relay.MaxMalformed),
	}
	if cfg.Relay.InboundRate > 0 {
		opts = append(opts, transport.WithInboundRate(rate.Limit(cfg.Relay.InboundRate), cfg.Relay.InboundBurst))
	}
	opts = append(opts, connOpts...)

	hub := transport.NewHub(
		transport.WithHubLogger(logger),
		transport.WithHubMonitor(monitor),
		transport.WithKeepAlive(cfg.Relay.KeepAlive),
		transport.WithConnOptions(opts...),
	)

	r := &relay{hub: hub, monitor: monitor, registry: reg}
	r.handler = r.routes(cfg.Relay)
	return r
}

func (r *relay) routes(cfg config.RelayConfig) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "ok peers=%d\n", r.hub.Len())
	})
	mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	mux.Handle(cfg.Path, r.hub)
	return mux
}

func runRelay(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tp, shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown", "error", err)
		}
	}()

	r := newRelay(cfg, logger, transport.WithTracerProvider(tp))

	ln, err := net.Listen("tcp", cfg.Relay.Addr)
	if err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info("relay listening",
		"addr", ln.Addr().String(),
		"path", cfg.Relay.Path,
		"metrics", cfg.Relay.MetricsPath,
		"version", version,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("relay: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("relay shutting down", "peers", r.hub.Len())
	r.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay: shutdown: %w", err)
	}
	r.monitor.LogSnapshot()
	return nil
}
