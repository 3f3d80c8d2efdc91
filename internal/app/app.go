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

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/novatechflow/hifitxt/internal/config"
	"github.com/novatechflow/hifitxt/internal/manifest"
	"github.com/novatechflow/hifitxt/pkg/cache"
	"github.com/novatechflow/hifitxt/pkg/container"
	"github.com/novatechflow/hifitxt/pkg/sink"
	"github.com/novatechflow/hifitxt/pkg/storage"
	"github.com/novatechflow/hifitxt/pkg/telemetry"
	"github.com/novatechflow/hifitxt/pkg/textout"
)

// S3Factory builds a client for one bucket.
type S3Factory func(ctx context.Context, cfg storage.S3Config) (storage.S3Client, error)

// Options carries the collaborators of a Runner. Zero values are replaced by
// working defaults.
type Options struct {
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics
	Manifest manifest.Store
	S3       S3Factory
	// Producer, when set, receives a copy of every output as Kafka records.
	Producer sink.Producer
	Clock    *telemetry.RunClock
	RunID    string
}

// Result describes one finished conversion.
type Result struct {
	Stream      string
	Input       string
	Output      string
	Records     int64
	TextBytes   int64
	StoredBytes int64
	// Chunks counts the text chunks handed to the compressor.
	Chunks int
	// KafkaRecords is zero unless a Producer was configured.
	KafkaRecords int64
	Duration     time.Duration
}

// Runner converts the containers of one hifiasm prefix.
type Runner struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	manifest manifest.Store
	newS3    S3Factory
	producer sink.Producer
	clock    *telemetry.RunClock
	runID    string
	codec    sink.Codec

	cache     *cache.BlockCache
	s3Clients map[string]storage.S3Client
	ensured   map[string]bool
}

// NewRunner validates cfg and prepares a run.
func NewRunner(cfg config.Config, opts Options) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := sink.ParseCodec(cfg.Sink.Codec)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:       cfg,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		manifest:  opts.Manifest,
		newS3:     opts.S3,
		producer:  opts.Producer,
		clock:     opts.Clock,
		runID:     opts.RunID,
		codec:     codec,
		cache:     cache.NewBlockCache(cfg.S3.CacheBytes),
		s3Clients: make(map[string]storage.S3Client),
		ensured:   make(map[string]bool),
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.newS3 == nil {
		r.newS3 = storage.NewS3Client
	}
	if r.clock == nil {
		r.clock = telemetry.NewRunClock()
	}
	if r.runID == "" {
		r.runID = manifest.NewRunID()
	}
	return r, nil
}

// RunID identifies this run in logs and the manifest.
func (r *Runner) RunID() string {
	return r.runID
}

// Run decodes the read metadata once, then performs every enabled
// conversion in order. The first failure aborts the run; outputs of the
// failed conversion are discarded, earlier outputs are kept.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	in, err := storage.ParseLocation(r.cfg.Input)
	if err != nil {
		return nil, err
	}
	out, err := storage.ParseLocation(r.cfg.Output)
	if err != nil {
		return nil, err
	}
	streams := enabledStreams(r.cfg.Convert)
	if len(streams) == 0 {
		r.logger.Warn("no conversion selected; only read metadata will be decoded", "input", in.String())
	}

	seqLoc := in.WithSuffix(sequenceSuffix)
	inputs := []storage.Location{seqLoc}
	for _, st := range streams {
		inputs = append(inputs, in.WithSuffix(st.inSuffix))
	}
	if err := r.checkInputs(ctx, in, inputs); err != nil {
		return nil, err
	}

	rs, err := r.readMetadata(ctx, seqLoc)
	if err != nil {
		return nil, err
	}
	r.logger.Info("read metadata decoded",
		"run_id", r.runID,
		"container", seqLoc.String(),
		"reads", rs.ReadsCount,
		"bases", rs.TotalBases(),
		"interval_sec", telemetry.Seconds(r.clock.Interval()))

	results := make([]Result, 0, len(streams))
	for _, st := range streams {
		res, err := r.convert(ctx, st, rs, in.WithSuffix(st.inSuffix), out.WithSuffix(st.outputSuffix(r.codec)))
		if err != nil {
			kind := errorKind(err)
			r.metrics.ObserveError(st.name, kind)
			r.logger.Error("conversion failed", "run_id", r.runID, "stream", st.name, "kind", kind, "error", err)
			return results, err
		}
		results = append(results, res)
		if st.kind == sequenceStream {
			r.cache.Drop(seqLoc.String())
		}
	}
	return results, nil
}

func (r *Runner) readMetadata(ctx context.Context, loc storage.Location) (*container.ReadSet, error) {
	obj, err := r.openInput(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	rs, err := container.ReadMetadata(obj)
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", loc, err)
	}
	return rs, nil
}

func (r *Runner) convert(ctx context.Context, st stream, rs *container.ReadSet, in, out storage.Location) (Result, error) {
	start := time.Now()
	obj, err := r.openInput(ctx, in)
	if err != nil {
		return Result{}, err
	}
	tgt, err := r.openTarget(ctx, out)
	if err != nil {
		_ = obj.Close()
		return Result{}, err
	}

	em, err := r.emit(ctx, st, rs, obj, tgt, out)
	if cerr := obj.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		tgt.Abort()
		return Result{}, fmt.Errorf("convert %s: %w", in, err)
	}
	if err := tgt.Commit(ctx); err != nil {
		return Result{}, err
	}

	res := Result{
		Stream:      st.name,
		Input:       in.String(),
		Output:      out.String(),
		Records:      em.text.Records,
		TextBytes:    em.text.Bytes,
		StoredBytes:  em.stored,
		Chunks:       em.chunks,
		KafkaRecords: em.kafkaRecords,
		Duration:     time.Since(start),
	}
	hits, misses, cached := r.cache.Stats()
	r.metrics.ObserveConversion(st.name, res.Records, res.TextBytes, res.StoredBytes, res.Duration)
	r.metrics.ObserveCache(hits, misses, cached)
	if r.manifest != nil {
		entry := manifest.Entry{
			RunID:          r.runID,
			Stream:         st.name,
			Input:          res.Input,
			Output:         res.Output,
			Codec:          string(r.codec),
			Records:        res.Records,
			TextBytes:      res.TextBytes,
			StoredBytes:    res.StoredBytes,
			DurationMillis: res.Duration.Milliseconds(),
			CompletedAt:    time.Now().UTC(),
		}
		if err := r.manifest.Record(ctx, entry); err != nil {
			return res, fmt.Errorf("record manifest for %s: %w", st.name, err)
		}
	}
	r.logger.Info("conversion complete",
		"run_id", r.runID,
		"stream", st.name,
		"output", res.Output,
		"records", telemetry.HumanCount(res.Records),
		"text", telemetry.HumanBytes(res.TextBytes),
		"stored", telemetry.HumanBytes(res.StoredBytes),
		"chunks", res.Chunks,
		"kafka_records", res.KafkaRecords,
		"cache_hits", hits,
		"cache_misses", misses,
		"interval_sec", telemetry.Seconds(r.clock.Interval()))
	return res, nil
}

type emitted struct {
	text         textout.Stats
	stored       int64
	chunks       int
	kafkaRecords int64
}

// emit streams the decoded text of obj through the compressor into tgt.
func (r *Runner) emit(ctx context.Context, st stream, rs *container.ReadSet, obj container.Object, tgt target, out storage.Location) (emitted, error) {
	pw, err := sink.NewParallelWriter(ctx, tgt, sink.Options{
		Codec:   r.codec,
		Level:   r.cfg.Sink.Level,
		Workers: r.cfg.Threads,
	})
	if err != nil {
		return emitted{}, err
	}
	var w io.Writer = pw
	var kw *sink.KafkaWriter
	if r.producer != nil {
		kw = sink.NewKafkaWriter(ctx, r.producer, r.cfg.Kafka.Topic, out.String(), r.cfg.Kafka.MaxRecordBytes)
		w = io.MultiWriter(pw, kw)
	}
	buf := textout.NewChunkBuffer(w, r.cfg.Sink.ChunkBytes)

	var stats textout.Stats
	switch st.kind {
	case sequenceStream:
		var dec *container.SequenceDecoder
		dec, err = container.NewSequenceDecoder(obj, rs)
		if err == nil {
			stats, err = textout.WriteSequences(ctx, dec, buf)
		}
	case overlapStream:
		var dec *container.OverlapDecoder
		dec, err = container.NewOverlapDecoder(obj)
		if err == nil {
			stats, err = textout.WriteOverlaps(ctx, dec, rs, buf)
		}
	}
	if cerr := pw.Close(); err == nil {
		err = cerr
	}
	em := emitted{text: stats, stored: pw.BytesOut(), chunks: buf.Chunks()}
	if kw != nil {
		em.kafkaRecords = kw.Records()
	}
	return em, err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, textout.ErrReadIndexOutOfRange):
		return "corrupt"
	default:
		return container.Kind(err)
	}
}
