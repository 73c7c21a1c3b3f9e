package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/polyglotter"
	httpAdapter "github.com/aretw0/polyglotter/internal/adapters/http"
	"github.com/aretw0/polyglotter/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// RunServe loads the definition files and serves them over HTTP until ctx is
// cancelled, then shuts down gracefully.
func RunServe(ctx *SignalContext, opts Options, addr string, paths []string, w io.Writer) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}

	eng, ids, closeSource, err := createEngine(ctx, opts, logger, paths, polyglotter.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer closeSource()

	// Keep bound terms current for long-lived evaluations.
	changes, err := eng.Watch(ctx)
	switch {
	case err == nil:
		go func() {
			for n := range changes {
				logger.Debug("terms refreshed", "changed", n)
			}
		}()
	case !errors.Is(err, polyglotter.ErrNotWatchable):
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpAdapter.NewHandler(eng, httpAdapter.WithGatherer(reg), httpAdapter.WithLogger(logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "Serving %d transform(s) on %s", len(ids), addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(w, "Shutting down (%v)...", ctx.Signal())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			return srv.Close()
		}
		printSystemMessage(w, "Server stopped gracefully")
		return nil
	}
}
