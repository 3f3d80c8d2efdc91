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

package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/novatechflow/hifitxt/internal/config"
)

func sampleEntries(runID string) []Entry {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []Entry{
		{RunID: runID, Stream: "ec", Input: "/data/s.ec.bin", Output: "/out/s.ec.fasta.gz", Codec: "gzip", Records: 2, TextBytes: 20, StoredBytes: 40, DurationMillis: 5, CompletedAt: at},
		{RunID: runID, Stream: "source", Input: "/data/s.ovlp.source.bin", Output: "/out/s.source.paf.gz", Codec: "gzip", Records: 1, TextBytes: 30, StoredBytes: 50, DurationMillis: 3, CompletedAt: at.Add(time.Second)},
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Fatalf("run ids should differ")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("run id is not a uuid: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.jsonl")
	cfg := config.Default()
	cfg.Manifest = config.ManifestConfig{Backend: "file", Path: path}
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if got, err := store.List(ctx, ""); err != nil || len(got) != 0 {
		t.Fatalf("empty manifest: %v %v", got, err)
	}
	first := sampleEntries("run-1")
	other := sampleEntries("run-2")[:1]
	for _, e := range append(first, other...) {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	all, _ := store.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
}

func TestFileStoreCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.List(context.Background(), ""); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestOpenBackends(t *testing.T) {
	cfg := config.Default()
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open none: %v", err)
	}
	if err := store.Record(context.Background(), Entry{}); err != nil {
		t.Fatalf("nop Record: %v", err)
	}
	cfg.Manifest.Backend = "bogus"
	if _, err := Open(cfg); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	cfg.Manifest.Backend = "etcd"
	if _, err := Open(cfg); err == nil {
		t.Fatalf("expected missing endpoints error")
	}
}
