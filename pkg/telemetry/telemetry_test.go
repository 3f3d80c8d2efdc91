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
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunClockInterval(t *testing.T) {
	base := time.Unix(1000, 0)
	current := base
	clock := newRunClock(func() time.Time { return current })

	current = base.Add(1500*time.Millisecond + 700*time.Microsecond)
	if got := clock.Interval(); got != 1500*time.Millisecond {
		t.Fatalf("first interval = %v", got)
	}
	current = current.Add(250 * time.Millisecond)
	if got := clock.Interval(); got != 250*time.Millisecond {
		t.Fatalf("second interval = %v", got)
	}
	if got := clock.Elapsed(); got != 1750*time.Millisecond+700*time.Microsecond {
		t.Fatalf("elapsed = %v", got)
	}
	if got := Seconds(1234567 * time.Microsecond); got != 1.234 {
		t.Fatalf("Seconds = %v", got)
	}
}

func TestReportString(t *testing.T) {
	r := Report{
		Version: "0.3.1",
		Args:    []string{"hifitxt", "-t", "4", "sample"},
		Real:    12*time.Second + 900*time.Millisecond,
		Usage:   Usage{CPU: 30 * time.Second, PeakRSSBytes: 3 << 29},
	}
	want := "Version: 0.3.1\nCMD: hifitxt -t 4 sample\nReal time: 12 sec; CPU: 30 sec; Peak RSS: 1.500 GB\n"
	if got := r.String(); got != want {
		t.Fatalf("want %q got %q", want, got)
	}
	r.Version = ""
	if strings.HasPrefix(r.String(), "Version") {
		t.Fatalf("empty version should be omitted")
	}
}

func TestReadUsage(t *testing.T) {
	usage, err := ReadUsage()
	if errors.Is(err, errUsageUnsupported) {
		t.Skip("rusage unsupported")
	}
	if err != nil {
		t.Fatalf("ReadUsage: %v", err)
	}
	if usage.PeakRSSBytes == 0 {
		t.Fatalf("expected non-zero peak RSS")
	}
}

func TestHumanFormatting(t *testing.T) {
	if got := HumanBytes(1536); got != "1.5 KiB" {
		t.Fatalf("HumanBytes = %q", got)
	}
	if got := HumanCount(1234567); got != "1,234,567" {
		t.Fatalf("HumanCount = %q", got)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveConversion("ec", 10, 400, 120, 2*time.Second)
	m.ObserveConversion("ec", 5, 100, 30, time.Second)
	m.ObserveError("source", "truncated")
	m.ObserveRun(nil)

	if got := testutil.ToFloat64(m.Records.WithLabelValues("ec")); got != 15 {
		t.Fatalf("records = %v", got)
	}
	if got := testutil.ToFloat64(m.Bytes.WithLabelValues("ec", "stored")); got != 150 {
		t.Fatalf("stored bytes = %v", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("source", "truncated")); got != 1 {
		t.Fatalf("errors = %v", got)
	}
	if got := testutil.CollectAndCount(m.Duration); got != 1 {
		t.Fatalf("duration series = %d", got)
	}
	m.ObserveCache(3, 2, 4096)
	m.ObserveCache(7, 2, 1024)
	if got := testutil.ToFloat64(m.Cache.WithLabelValues("hits")); got != 7 {
		t.Fatalf("cache hits = %v", got)
	}
	if got := testutil.ToFloat64(m.Cache.WithLabelValues("bytes")); got != 1024 {
		t.Fatalf("cache bytes = %v", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveConversion("ec", 1, 1, 1, time.Second)
	nilMetrics.ObserveError("ec", "io")
	nilMetrics.ObserveRun(errors.New("x"))
	nilMetrics.ObserveCache(1, 1, 1)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg).ObserveRun(nil)
	srv := httptest.NewServer(NewHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/livez")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("livez: %v %v", resp, err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(buf.String(), `hifitxt_runs_total{status="ok"} 1`) {
		t.Fatalf("runs counter missing from exposition")
	}
}
