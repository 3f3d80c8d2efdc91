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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/novatechflow/hifitxt/pkg/storage"
)

// target is an output that becomes visible only on Commit. Abort discards
// everything written so far.
type target interface {
	io.Writer
	Commit(ctx context.Context) error
	Abort()
}

// fileTarget writes to a temporary sibling of path and renames it into place.
type fileTarget struct {
	f    *os.File
	path string
}

func newFileTarget(path string) (*fileTarget, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}
	return &fileTarget{f: f, path: path}, nil
}

func (t *fileTarget) Write(p []byte) (int, error) {
	return t.f.Write(p)
}

func (t *fileTarget) Commit(ctx context.Context) error {
	if err := t.f.Sync(); err != nil {
		t.Abort()
		return fmt.Errorf("sync %s: %w", t.path, err)
	}
	if err := t.f.Close(); err != nil {
		_ = os.Remove(t.f.Name())
		return fmt.Errorf("close %s: %w", t.path, err)
	}
	if err := os.Chmod(t.f.Name(), 0o644); err != nil {
		_ = os.Remove(t.f.Name())
		return fmt.Errorf("chmod %s: %w", t.path, err)
	}
	if err := os.Rename(t.f.Name(), t.path); err != nil {
		_ = os.Remove(t.f.Name())
		return fmt.Errorf("rename %s: %w", t.path, err)
	}
	return nil
}

func (t *fileTarget) Abort() {
	_ = t.f.Close()
	_ = os.Remove(t.f.Name())
}

// objectTarget spools to a local temporary file and uploads it on Commit.
type objectTarget struct {
	spool  *os.File
	client storage.S3Client
	loc    storage.Location
}

func newObjectTarget(client storage.S3Client, loc storage.Location) (*objectTarget, error) {
	f, err := os.CreateTemp("", "hifitxt-spool-*")
	if err != nil {
		return nil, fmt.Errorf("create spool for %s: %w", loc, err)
	}
	return &objectTarget{spool: f, client: client, loc: loc}, nil
}

func (t *objectTarget) Write(p []byte) (int, error) {
	return t.spool.Write(p)
}

func (t *objectTarget) Commit(ctx context.Context) error {
	defer t.Abort()
	size, err := t.spool.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("spool size %s: %w", t.loc, err)
	}
	if _, err := t.spool.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind spool %s: %w", t.loc, err)
	}
	if err := t.client.PutObject(ctx, t.loc.Key, t.spool, size); err != nil {
		return fmt.Errorf("upload %s: %w", t.loc, err)
	}
	return nil
}

func (t *objectTarget) Abort() {
	_ = t.spool.Close()
	_ = os.Remove(t.spool.Name())
}

func (r *Runner) openTarget(ctx context.Context, loc storage.Location) (target, error) {
	if !loc.Remote() {
		return newFileTarget(loc.Path)
	}
	client, err := r.s3Client(ctx, loc.Bucket)
	if err != nil {
		return nil, err
	}
	if r.cfg.S3.EnsureBucket && !r.ensured[loc.Bucket] {
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		r.ensured[loc.Bucket] = true
	}
	return newObjectTarget(client, loc)
}
