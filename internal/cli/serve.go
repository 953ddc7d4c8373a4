package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/jseval/pkg/adapters/http"
	"github.com/aretw0/jseval/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configure the HTTP server.
type ServeOptions struct {
	Addr string
}

// NewServeHandler exposes the environment channel over HTTP with Prometheus
// metrics on /metrics.
func NewServeHandler(env *environment, timeout time.Duration) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	opts := []httpAdapter.ServerOption{
		httpAdapter.WithLogger(env.logger),
		httpAdapter.WithHooks(metrics.Hooks().Merge(env.hooks())),
	}
	if timeout > 0 {
		opts = append(opts, httpAdapter.WithTimeout(timeout))
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Mount("/", httpAdapter.NewHandler(env.channel, opts...))
	return r, nil
}

// RunServe serves the channel until ctx is cancelled, then shuts down gracefully.
func RunServe(ctx context.Context, opts Options, serve ServeOptions, out io.Writer) error {
	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	handler, err := NewServeHandler(env, opts.Timeout)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              serve.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(out, "Starting jseval server on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(out, "Start shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			env.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(out, "Server stopped gracefully")
		return nil
	}
}
