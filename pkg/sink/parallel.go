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

package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ErrWriterClosed is returned by Write after Close.
var ErrWriterClosed = errors.New("sink: writer closed")

type chunkJob struct {
	seq  int
	data []byte
}

type chunkResult struct {
	seq  int
	data []byte
}

// ParallelWriter compresses each written chunk independently on a pool of
// workers and writes the results to dst in submission order.
type ParallelWriter struct {
	dst    io.Writer
	opts   Options
	ctx    context.Context
	cancel context.CancelCauseFunc

	group   *errgroup.Group
	jobs    chan chunkJob
	results chan chunkResult

	collectorDone chan struct{}
	collectorErr  error

	seq    int
	closed bool
	out    atomic.Int64
}

// NewParallelWriter starts opts.Workers compressors writing to dst. The
// caller must Close the writer to flush and release the workers.
func NewParallelWriter(ctx context.Context, dst io.Writer, opts Options) (*ParallelWriter, error) {
	opts = opts.normalize()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	// Compressors are built up front so configuration errors surface here.
	comps := make([]compressor, opts.Workers)
	for i := range comps {
		c, err := newCompressor(opts)
		if err != nil {
			for _, built := range comps[:i] {
				built.close()
			}
			return nil, err
		}
		comps[i] = c
	}

	ctx, cancel := context.WithCancelCause(ctx)
	g, gctx := errgroup.WithContext(ctx)
	w := &ParallelWriter{
		dst:           dst,
		opts:          opts,
		ctx:           gctx,
		cancel:        cancel,
		group:         g,
		jobs:          make(chan chunkJob, opts.Workers*2),
		results:       make(chan chunkResult, opts.Workers*2),
		collectorDone: make(chan struct{}),
	}
	for _, c := range comps {
		g.Go(func() error {
			defer c.close()
			return w.compressLoop(c)
		})
	}
	go func() {
		defer close(w.collectorDone)
		w.collectorErr = w.collect()
		if w.collectorErr != nil {
			cancel(w.collectorErr)
		}
	}()
	return w, nil
}

func (w *ParallelWriter) compressLoop(c compressor) error {
	for job := range w.jobs {
		data, err := c.compress(nil, job.data)
		if err != nil {
			return fmt.Errorf("compress chunk %d: %w", job.seq, err)
		}
		select {
		case w.results <- chunkResult{seq: job.seq, data: data}:
		case <-w.ctx.Done():
			return context.Cause(w.ctx)
		}
	}
	return nil
}

func (w *ParallelWriter) collect() error {
	pending := make(map[int][]byte)
	next := 0
	for res := range w.results {
		pending[res.seq] = res.data
		for {
			data, ok := pending[next]
			if !ok {
				break
			}
			n, err := w.dst.Write(data)
			w.out.Add(int64(n))
			if err != nil {
				return fmt.Errorf("write chunk %d: %w", next, err)
			}
			delete(pending, next)
			next++
		}
	}
	if len(pending) > 0 {
		return fmt.Errorf("sink: %d chunks not written after chunk %d", len(pending), next)
	}
	return nil
}

// Write submits a copy of p as one chunk. It blocks while every worker is
// busy and the queue is full.
func (w *ParallelWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	if err := w.submit(append([]byte(nil), p...)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *ParallelWriter) submit(data []byte) error {
	select {
	case w.jobs <- chunkJob{seq: w.seq, data: data}:
		w.seq++
		return nil
	case <-w.ctx.Done():
		return context.Cause(w.ctx)
	}
}

// Close drains the queue and waits for every chunk to reach dst. A writer
// that never received data still emits one empty member so the output is a
// valid compressed stream. Close does not close dst.
func (w *ParallelWriter) Close() error {
	if w.closed {
		return nil
	}
	var submitErr error
	if w.seq == 0 && w.opts.Codec != CodecNone {
		submitErr = w.submit([]byte{})
	}
	w.closed = true
	close(w.jobs)
	workerErr := w.group.Wait()
	close(w.results)
	<-w.collectorDone
	w.cancel(nil)

	switch {
	case w.collectorErr != nil:
		return w.collectorErr
	case workerErr != nil:
		return workerErr
	default:
		return submitErr
	}
}

// BytesOut returns the bytes written to dst so far.
func (w *ParallelWriter) BytesOut() int64 {
	return w.out.Load()
}
