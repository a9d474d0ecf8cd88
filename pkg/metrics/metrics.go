// Copyright © 2018 One Concern

// Package metrics collects prometheus metrics about dataset synchronization.
//
// All methods are safe to call on a nil *Sync, which collects nothing.
package metrics

import (
	"net/http"
	"time"

	units "github.com/docker/go-units"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datasets"

// Sync holds the metrics of publish and retrieve operations
type Sync struct {
	PublishedFiles *prometheus.CounterVec
	PublishErrors  *prometheus.CounterVec
	FetchAttempts  *prometheus.CounterVec
	FetchFailures  *prometheus.CounterVec
	FetchedBytes   *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
}

// NewSync builds and registers synchronization metrics
func NewSync(reg prometheus.Registerer) (*Sync, error) {
	m := &Sync{
		PublishedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_files_total",
			Help:      "Number of files added to the content-addressable store.",
		}, []string{"dataset"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Number of files which could not be added to the content-addressable store.",
		}, []string{"dataset"}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Number of attempts to fetch content, retries included.",
		}, []string{"transport"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Number of files which could not be fetched.",
		}, []string{"transport"}),
		FetchedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_bytes_total",
			Help:      "Number of bytes materialized in the repository.",
		}, []string{"transport"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of successful fetches.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 4, 8),
		}, []string{"transport"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.PublishedFiles, m.PublishErrors, m.FetchAttempts, m.FetchFailures, m.FetchedBytes, m.FetchDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Published counts a file added to the store
func (m *Sync) Published(dataset string) {
	if m == nil {
		return
	}
	m.PublishedFiles.WithLabelValues(dataset).Inc()
}

// PublishFailed counts a file which could not be added to the store
func (m *Sync) PublishFailed(dataset string) {
	if m == nil {
		return
	}
	m.PublishErrors.WithLabelValues(dataset).Inc()
}

// Attempt counts a fetch attempt
func (m *Sync) Attempt(transport string) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(transport).Inc()
}

// Fetched records a successful fetch
func (m *Sync) Fetched(transport string, size int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	if size > 0 {
		m.FetchedBytes.WithLabelValues(transport).Add(float64(size))
	}
	m.FetchDuration.WithLabelValues(transport).Observe(elapsed.Seconds())
}

// Failed counts a file which could not be fetched
func (m *Sync) Failed(transport string) {
	if m == nil {
		return
	}
	m.FetchFailures.WithLabelValues(transport).Inc()
}

// Handler exposes the metrics gathered by g over HTTP
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// HumanSize formats a number of bytes for reports, e.g. "1.5MB"
func HumanSize(size int64) string {
	return units.HumanSize(float64(size))
}
