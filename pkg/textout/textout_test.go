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

package textout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/novatechflow/hifitxt/pkg/container"
	"github.com/novatechflow/hifitxt/pkg/container/containertest"
)

type recordingWriter struct {
	chunks [][]byte
	err    error
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.chunks = append(w.chunks, append([]byte(nil), p...))
	return len(p), nil
}

func (w *recordingWriter) joined() string {
	return string(bytes.Join(w.chunks, nil))
}

func TestChunkBufferThreshold(t *testing.T) {
	w := &recordingWriter{}
	buf := NewChunkBuffer(w, 8)

	buf.AppendString("abcd")
	if err := buf.MaybeFlush(); err != nil {
		t.Fatalf("MaybeFlush: %v", err)
	}
	if len(w.chunks) != 0 {
		t.Fatalf("below threshold should not flush")
	}
	buf.AppendString("efghij")
	if err := buf.MaybeFlush(); err != nil {
		t.Fatalf("MaybeFlush: %v", err)
	}
	if len(w.chunks) != 1 || string(w.chunks[0]) != "abcdefghij" {
		t.Fatalf("expected one chunk, got %q", w.chunks)
	}
	buf.AppendUint(42)
	if err := buf.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Written() != 12 || buf.Chunks() != 2 || buf.Pending() != 0 {
		t.Fatalf("unexpected counters written=%d chunks=%d pending=%d", buf.Written(), buf.Chunks(), buf.Pending())
	}
	if err := buf.Flush(); err != nil || buf.Chunks() != 2 {
		t.Fatalf("empty flush must be a no-op")
	}
}

func TestChunkBufferWriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("disk full")}
	buf := NewChunkBuffer(w, 1)
	buf.AppendByte('x')
	if err := buf.MaybeFlush(); err == nil {
		t.Fatalf("expected write error")
	}
}

func readSetFor(t *testing.T, reads []containertest.Read) (*container.ReadSet, []byte) {
	t.Helper()
	data := containertest.SequenceContainer(reads)
	rs, err := container.ReadMetadata(containertest.NewObject("meta", data))
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	return rs, data
}

func TestWriteSequencesEndToEnd(t *testing.T) {
	rs, data := readSetFor(t, []containertest.Read{
		{Name: "r1", Bases: "ACGT"},
		{Name: "r2", Bases: "TTGGAC"},
	})
	dec, err := container.NewSequenceDecoder(containertest.NewObject("seq", data), rs)
	if err != nil {
		t.Fatalf("NewSequenceDecoder: %v", err)
	}
	w := &recordingWriter{}
	stats, err := WriteSequences(context.Background(), dec, NewChunkBuffer(w, DefaultChunkBytes))
	if err != nil {
		t.Fatalf("WriteSequences: %v", err)
	}
	want := ">r1\nACGT\n>r2\nTTGGAC\n"
	if got := w.joined(); got != want {
		t.Fatalf("want %q got %q", want, got)
	}
	if stats.Records != 2 || stats.Bytes != int64(len(want)) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestWriteSequencesChunksAtThreshold(t *testing.T) {
	reads := make([]containertest.Read, 50)
	for i := range reads {
		reads[i] = containertest.Read{Name: "read", Bases: strings.Repeat("ACGT", 10)}
	}
	rs, data := readSetFor(t, reads)
	dec, err := container.NewSequenceDecoder(containertest.NewObject("seq", data), rs)
	if err != nil {
		t.Fatalf("NewSequenceDecoder: %v", err)
	}
	w := &recordingWriter{}
	if _, err := WriteSequences(context.Background(), dec, NewChunkBuffer(w, 200)); err != nil {
		t.Fatalf("WriteSequences: %v", err)
	}
	if len(w.chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(w.chunks))
	}
	for i, c := range w.chunks[:len(w.chunks)-1] {
		if len(c) < 200 {
			t.Fatalf("chunk %d below threshold: %d", i, len(c))
		}
	}
	if got := strings.Count(w.joined(), ">read\n"); got != 50 {
		t.Fatalf("expected 50 records, got %d", got)
	}
}

func TestWriteSequencesHonoursCancellation(t *testing.T) {
	rs, data := readSetFor(t, []containertest.Read{{Name: "r", Bases: "A"}})
	dec, err := container.NewSequenceDecoder(containertest.NewObject("seq", data), rs)
	if err != nil {
		t.Fatalf("NewSequenceDecoder: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := WriteSequences(ctx, dec, NewChunkBuffer(&recordingWriter{}, 0)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

type sliceOverlaps struct {
	recs []container.OverlapRecord
	pos  int
	err  error
}

func (s *sliceOverlaps) Next() bool {
	if s.pos >= len(s.recs) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceOverlaps) Record() container.OverlapRecord { return s.recs[s.pos-1] }
func (s *sliceOverlaps) Err() error                      { return s.err }

func TestWriteOverlaps(t *testing.T) {
	rs, _ := readSetFor(t, []containertest.Read{
		{Name: "q0", Bases: "ACGTACGTACGT"},
		{Name: "t1", Bases: "ACGTACGTACGTAC"},
	})
	data := containertest.OverlapContainer([][]containertest.Overlap{{
		{QueryIndex: 0, QueryStart: 0, QueryEnd: 10, TargetIndex: 1, TargetStart: 5, TargetEnd: 12, StrandCode: 1},
		{QueryIndex: 1, QueryStart: 2, QueryEnd: 7, TargetIndex: 0, TargetStart: 0, TargetEnd: 9, StrandCode: 0},
	}})
	dec, err := container.NewOverlapDecoder(containertest.NewObject("ovlp", data))
	if err != nil {
		t.Fatalf("NewOverlapDecoder: %v", err)
	}
	w := &recordingWriter{}
	stats, err := WriteOverlaps(context.Background(), dec, rs, NewChunkBuffer(w, 0))
	if err != nil {
		t.Fatalf("WriteOverlaps: %v", err)
	}
	want := "q0\t12\t0\t10\t-\tt1\t14\t5\t12\t7\t10\n" +
		"t1\t14\t2\t7\t+\tq0\t12\t0\t9\t5\t9\n"
	if got := w.joined(); got != want {
		t.Fatalf("want %q got %q", want, got)
	}
	if stats.Records != 2 || stats.Bytes != int64(len(want)) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestWriteOverlapsRejectsUnknownRead(t *testing.T) {
	rs, _ := readSetFor(t, []containertest.Read{{Name: "only", Bases: "ACGT"}})
	src := &sliceOverlaps{recs: []container.OverlapRecord{{QueryIndex: 0, TargetIndex: 3}}}
	_, err := WriteOverlaps(context.Background(), src, rs, NewChunkBuffer(&recordingWriter{}, 0))
	if !errors.Is(err, ErrReadIndexOutOfRange) {
		t.Fatalf("expected ErrReadIndexOutOfRange, got %v", err)
	}
}

func TestWriteOverlapsPropagatesDecodeError(t *testing.T) {
	rs, _ := readSetFor(t, []containertest.Read{{Name: "only", Bases: "ACGT"}})
	src := &sliceOverlaps{err: container.ErrContainerTruncated}
	w := &recordingWriter{}
	_, err := WriteOverlaps(context.Background(), src, rs, NewChunkBuffer(w, 0))
	if !errors.Is(err, container.ErrContainerTruncated) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if len(w.chunks) != 0 {
		t.Fatalf("no output expected on failure")
	}
}
