// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hifitxt"

// Metrics holds the conversion counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Records  *prometheus.CounterVec
	Bytes    *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Runs     *prometheus.CounterVec
	Cache    *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records emitted by stream.",
			},
			[]string{"stream"},
		),
		Bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_total",
				Help:      "Bytes emitted by stream, before (text) and after (stored) compression.",
			},
			[]string{"stream", "stage"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Conversion failures by stream and error kind.",
			},
			[]string{"stream", "kind"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Wall time of one conversion.",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
			},
			[]string{"stream"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed runs by status.",
			},
			[]string{"status"},
		),
		Cache: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "block_cache",
				Help:      "Remote block cache state: hits, misses and bytes held.",
			},
			[]string{"value"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Records, m.Bytes, m.Errors, m.Duration, m.Runs, m.Cache)
	}
	return m
}

// ObserveConversion records a finished conversion.
func (m *Metrics) ObserveConversion(stream string, records, textBytes, storedBytes int64, d time.Duration) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues(stream).Add(float64(records))
	m.Bytes.WithLabelValues(stream, "text").Add(float64(textBytes))
	m.Bytes.WithLabelValues(stream, "stored").Add(float64(storedBytes))
	m.Duration.WithLabelValues(stream).Observe(d.Seconds())
}

// ObserveError counts a failed conversion.
func (m *Metrics) ObserveError(stream, kind string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(stream, kind).Inc()
}

// ObserveRun counts a finished run.
func (m *Metrics) ObserveRun(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.Runs.WithLabelValues(status).Inc()
}

// ObserveCache publishes the current block cache counters.
func (m *Metrics) ObserveCache(hits, misses uint64, size int) {
	if m == nil {
		return
	}
	m.Cache.WithLabelValues("hits").Set(float64(hits))
	m.Cache.WithLabelValues("misses").Set(float64(misses))
	m.Cache.WithLabelValues("bytes").Set(float64(size))
}
