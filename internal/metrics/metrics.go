// Package metrics exposes the inspector's own Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ingestion metrics
	EventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comet_events_ingested_total",
			Help: "Total number of events pushed into the timeline by type",
		},
		[]string{"type"},
	)

	EventsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comet_events_evicted_total",
			Help: "Total number of events evicted from the timeline",
		},
	)

	TimelineEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "comet_timeline_events",
			Help: "Number of events currently held by the timeline",
		},
	)

	UpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "comet_update_duration_seconds",
			Help:    "Duration of reported update spans in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	// Transport metrics
	ConnectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comet_connections_total",
			Help: "Total number of accepted application connections",
		},
	)

	DecodeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comet_decode_errors_total",
			Help: "Total number of undecodable messages",
		},
	)
)

func init() {
	prometheus.MustRegister(EventsIngested)
	prometheus.MustRegister(EventsEvicted)
	prometheus.MustRegister(TimelineEvents)
	prometheus.MustRegister(UpdateDuration)
	prometheus.MustRegister(ConnectionsTotal)
	prometheus.MustRegister(DecodeErrors)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics and /healthz on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
