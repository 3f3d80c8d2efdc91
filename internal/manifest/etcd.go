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
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/novatechflow/hifitxt/internal/config"
)

const defaultKeyPrefix = "hifitxt/runs"

type etcdStore struct {
	client *clientv3.Client
	prefix string
}

// NewEtcdStore stores entries under <prefix>/<run id>/<stream>.
func NewEtcdStore(cfg config.Config) (Store, error) {
	if len(cfg.Etcd.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd.endpoints is required for the etcd manifest")
	}
	keyPrefix := cfg.Manifest.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	dialTimeout := time.Duration(cfg.Etcd.DialTimeoutSeconds) * time.Second
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		Username:    cfg.Etcd.Username,
		Password:    cfg.Etcd.Password,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &etcdStore{client: client, prefix: keyPrefix}, nil
}

func (s *etcdStore) key(runID, stream string) string {
	return path.Join(s.prefix, runID, stream)
}

func (s *etcdStore) Record(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := s.client.Put(ctx, s.key(entry.RunID, entry.Stream), string(data)); err != nil {
		return fmt.Errorf("put manifest entry: %w", err)
	}
	return nil
}

func (s *etcdStore) List(ctx context.Context, runID string) ([]Entry, error) {
	prefix := s.prefix + "/"
	if runID != "" {
		prefix = path.Join(s.prefix, runID) + "/"
	}
	resp, err := s.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("list manifest: %w", err)
	}
	out := make([]Entry, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var entry Entry
		if err := json.Unmarshal(kv.Value, &entry); err != nil {
			return nil, fmt.Errorf("decode manifest %s: %w", kv.Key, err)
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out, nil
}

func (s *etcdStore) Close() error {
	return s.client.Close()
}
