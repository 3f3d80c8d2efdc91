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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/novatechflow/hifitxt/internal/config"
)

// Entry records one completed conversion.
type Entry struct {
	RunID          string    `json:"run_id"`
	Stream         string    `json:"stream"`
	Input          string    `json:"input"`
	Output         string    `json:"output"`
	Codec          string    `json:"codec"`
	Records        int64     `json:"records"`
	TextBytes      int64     `json:"text_bytes"`
	StoredBytes    int64     `json:"stored_bytes"`
	DurationMillis int64     `json:"duration_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Store persists entries. List with an empty run id returns every entry.
type Store interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, runID string) ([]Entry, error)
	Close() error
}

// NewRunID returns a fresh identifier shared by the entries of one run.
func NewRunID() string {
	return uuid.NewString()
}

// Open returns the store selected by cfg.Manifest.Backend.
func Open(cfg config.Config) (Store, error) {
	switch cfg.Manifest.Backend {
	case "", "none":
		return nopStore{}, nil
	case "file":
		return NewFileStore(cfg.Manifest.Path)
	case "etcd":
		return NewEtcdStore(cfg)
	default:
		return nil, fmt.Errorf("unknown manifest backend %q", cfg.Manifest.Backend)
	}
}

type nopStore struct{}

func (nopStore) Record(context.Context, Entry) error { return nil }

func (nopStore) List(context.Context, string) ([]Entry, error) { return nil, nil }

func (nopStore) Close() error { return nil }
