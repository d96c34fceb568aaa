package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/platotv/plato/core/metrics"
)

// PromSink records generation telemetry in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	warnings  *prometheus.CounterVec
	estimates prometheus.Counter
}

// NewPromSink registers the scheduling metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A
// nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_generation_runs_total",
		Help: "Total number of plan generation runs",
	}, []string{"mode", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plan_generation_duration_seconds",
		Help:    "Wall time of plan generation runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_generation_warnings_total",
		Help: "Warnings emitted by generation runs",
	}, []string{"mode"})
	estimates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_estimate_requests_total",
		Help: "ETA estimates served",
	})

	collectors := []prometheus.Collector{runs, duration, warnings, estimates}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}
	return &PromSink{
		runs:      collectors[0].(*prometheus.CounterVec),
		duration:  collectors[1].(*prometheus.HistogramVec),
		warnings:  collectors[2].(*prometheus.CounterVec),
		estimates: collectors[3].(prometheus.Counter),
	}, nil
}

// RecordGeneration counts the run and observes its duration.
func (s *PromSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	s.runs.WithLabelValues(string(ev.Mode), string(ev.Outcome)).Inc()
	s.duration.WithLabelValues(string(ev.Mode)).Observe(ev.Duration.Seconds())
	if ev.Warnings > 0 {
		s.warnings.WithLabelValues(string(ev.Mode)).Add(float64(ev.Warnings))
	}
	return nil
}

// RecordEstimate counts one ETA read.
func (s *PromSink) RecordEstimate(coremetrics.EstimateEvent) error {
	s.estimates.Inc()
	return nil
}

// StartPromServer serves the metrics endpoint until the context is done.
func StartPromServer(ctx context.Context, port string) error {
	if _, err := strconv.Atoi(port); err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
