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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/novatechflow/hifitxt/internal/app"
	"github.com/novatechflow/hifitxt/internal/config"
	"github.com/novatechflow/hifitxt/internal/manifest"
	"github.com/novatechflow/hifitxt/pkg/sink"
	"github.com/novatechflow/hifitxt/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Getenv, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	clock := telemetry.NewRunClock()
	cfg, err := config.FromArgs(args[1:], getenv, stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, config.ErrVersion):
		fmt.Fprintln(stdout, version)
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "hifitxt: %v\n", err)
		return 2
	}

	if cfg.ListRuns {
		if err := listRuns(ctx, cfg, stdout); err != nil {
			fmt.Fprintf(stderr, "hifitxt: %v\n", err)
			return 1
		}
		return 0
	}

	logger := newLogger(stderr, cfg.Log.Level)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)
	telemetry.StartServer(ctx, cfg.Metrics.Addr, reg, logger)

	err = convert(ctx, cfg, logger, metrics, clock)
	metrics.ObserveRun(err)
	if err != nil {
		logger.Error("run failed", "error", err)
	}
	fmt.Fprint(stderr, telemetry.NewReport(version, args, clock))
	if err != nil {
		return 1
	}
	return 0
}

func convert(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *telemetry.Metrics, clock *telemetry.RunClock) error {
	store, err := manifest.Open(cfg)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer store.Close()

	opts := app.Options{
		Logger:   logger,
		Metrics:  metrics,
		Manifest: store,
		Clock:    clock,
	}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := sink.NewKafkaClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if err != nil {
			return fmt.Errorf("kafka client: %w", err)
		}
		defer client.Close()
		if cfg.Kafka.CreateTopic {
			if err := sink.EnsureTopic(ctx, client, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
				return err
			}
		}
		opts.Producer = client
	}

	runner, err := app.NewRunner(cfg, opts)
	if err != nil {
		return err
	}
	logger.Info("run starting",
		"run_id", runner.RunID(),
		"input", cfg.Input,
		"output", cfg.Output,
		"threads", cfg.Threads,
		"codec", cfg.Sink.Codec)
	_, err = runner.Run(ctx)
	return err
}

// listRuns prints one tab-separated line per recorded conversion.
func listRuns(ctx context.Context, cfg config.Config, w io.Writer) error {
	store, err := manifest.Open(cfg)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer store.Close()
	entries, err := store.List(ctx, cfg.ListRunID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.CompletedAt.Format(time.RFC3339), e.RunID, e.Stream,
			e.Records, e.TextBytes, e.StoredBytes, e.Output); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With("component", "hifitxt")
}
