package stats

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Exporter serves a PrometheusStats registry's metrics over HTTP, in the
// shape of ptp/sptp/stats's PrometheusExporter.
type Exporter struct {
	stats  *PrometheusStats
	server *http.Server
}

// NewExporter creates an Exporter listening on the given port.
func NewExporter(s *PrometheusStats, listenPort int) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.Registry(), promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	return &Exporter{
		stats: s,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", listenPort),
			Handler: mux,
		},
	}
}

// Start runs the exporter's HTTP server until ctx is cancelled. Unlike
// the teacher's analog, which calls log.Fatal on ListenAndServe, Start
// returns the error so the caller's errgroup can supervise it.
func (e *Exporter) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("stats: shutting down metrics exporter")
		return e.server.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("stats: metrics exporter: %w", err)
		}
		return nil
	}
}
