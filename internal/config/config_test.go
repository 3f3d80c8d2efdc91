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

package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hifitxt.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestFromArgsDefaults(t *testing.T) {
	cfg, err := FromArgs([]string{"asm/sample"}, envMap(nil), io.Discard)
	if err != nil {
		t.Fatalf("FromArgs: %v", err)
	}
	want := Default()
	want.Input = "asm/sample"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Convert.Any() {
		t.Fatalf("no conversion should be enabled by default")
	}
}

func TestFromArgsFlagsAfterPositional(t *testing.T) {
	cfg, err := FromArgs([]string{"asm/sample", "out/run", "-e", "-t", "8", "--out_so_bin"}, envMap(nil), io.Discard)
	if err != nil {
		t.Fatalf("FromArgs: %v", err)
	}
	if cfg.Input != "asm/sample" || cfg.Output != "out/run" {
		t.Fatalf("unexpected positional args %q %q", cfg.Input, cfg.Output)
	}
	want := ConvertConfig{Sequences: true, Source: true}
	if cfg.Convert != want || cfg.Threads != 8 {
		t.Fatalf("unexpected flags %+v threads=%d", cfg.Convert, cfg.Threads)
	}
}

func TestFromArgsPrecedence(t *testing.T) {
	path := writeConfig(t, `
threads: 5
convert:
  reverse: true
sink:
  codec: zstd
  level: 7
kafka:
  brokers: [a:9092]
  topic: from-file
manifest:
  backend: file
  path: /tmp/runs.jsonl
`)
	env := envMap(map[string]string{
		"HIFITXT_CONFIG":      path,
		"HIFITXT_THREADS":     "6",
		"HIFITXT_CODEC":       "lz4",
		"HIFITXT_KAFKA_TOPIC": "from-env",
		"HIFITXT_LOG_LEVEL":   "debug",
	})
	cfg, err := FromArgs([]string{"-codec", "none", "-level", "0", "sample"}, env, io.Discard)
	if err != nil {
		t.Fatalf("FromArgs: %v", err)
	}
	if cfg.Threads != 6 {
		t.Fatalf("env should override file threads, got %d", cfg.Threads)
	}
	if cfg.Sink.Codec != "none" || cfg.Sink.Level != 0 {
		t.Fatalf("flags should override env and file, got %+v", cfg.Sink)
	}
	if cfg.Kafka.Topic != "from-env" || len(cfg.Kafka.Brokers) != 1 {
		t.Fatalf("unexpected kafka config %+v", cfg.Kafka)
	}
	if !cfg.Convert.Reverse || cfg.Manifest.Backend != "file" || cfg.Log.Level != "debug" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Output != DefaultOutput {
		t.Fatalf("default output lost: %q", cfg.Output)
	}
}

func TestFromArgsErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"missing input", nil, nil},
		{"too many positionals", []string{"a", "b", "c"}, nil},
		{"bad threads", []string{"-t", "0", "a"}, nil},
		{"bad codec", []string{"-codec", "brotli", "a"}, nil},
		{"kafka without topic", []string{"-kafka-brokers", "k:9092", "a"}, nil},
		{"file manifest without path", []string{"-manifest", "file", "a"}, nil},
		{"etcd manifest without endpoints", []string{"-manifest", "etcd", "a"}, nil},
		{"unknown manifest", []string{"-manifest", "s3", "a"}, nil},
		{"bad log level", []string{"a"}, map[string]string{"HIFITXT_LOG_LEVEL": "loud"}},
		{"missing config file", []string{"-config", "/nonexistent/hifitxt.yaml", "a"}, nil},
		{"unknown flag", []string{"-x", "a"}, nil},
		{"list runs without manifest", []string{"-list-runs"}, nil},
		{"list runs with two ids", []string{"-list-runs", "-manifest", "file", "a", "b"}, map[string]string{"HIFITXT_MANIFEST_PATH": "/tmp/runs.jsonl"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromArgs(tc.args, envMap(tc.env), io.Discard); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFromArgsListRuns(t *testing.T) {
	env := envMap(map[string]string{"HIFITXT_MANIFEST_PATH": "/tmp/runs.jsonl"})
	cfg, err := FromArgs([]string{"-list-runs", "-manifest", "file", "run-7"}, env, io.Discard)
	if err != nil {
		t.Fatalf("FromArgs: %v", err)
	}
	if !cfg.ListRuns || cfg.ListRunID != "run-7" || cfg.Input != "" {
		t.Fatalf("unexpected list config %+v", cfg)
	}
}

func TestFromArgsVersionAndHelp(t *testing.T) {
	if _, err := FromArgs([]string{"-version"}, envMap(nil), io.Discard); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
	if _, err := FromArgs([]string{"-h"}, envMap(nil), io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}

func TestApplyEnvIgnoresMalformedValues(t *testing.T) {
	cfg := Default()
	ApplyEnv(&cfg, envMap(map[string]string{
		"HIFITXT_THREADS":        "many",
		"HIFITXT_SEQUENCES":      "yes please",
		"HIFITXT_ETCD_ENDPOINTS": " e1:2379 , ,e2:2379",
		"HIFITXT_S3_BLOCK_BYTES": "4096",
	}))
	if cfg.Threads != DefaultThreads || cfg.Convert.Sequences {
		t.Fatalf("malformed values should be ignored: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"e1:2379", "e2:2379"}, cfg.Etcd.Endpoints); diff != "" {
		t.Fatalf("endpoints mismatch:\n%s", diff)
	}
	if cfg.S3.BlockBytes != 4096 {
		t.Fatalf("block bytes = %d", cfg.S3.BlockBytes)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "threads: [oops")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStorageConfig(t *testing.T) {
	s3 := S3Config{Region: "eu-west-1", Endpoint: "http://minio:9000", PathStyle: true, KMSKeyARN: "arn"}
	got := s3.StorageConfig("bucket")
	if got.Bucket != "bucket" || got.Region != "eu-west-1" || !got.ForcePathStyle || got.KMSKeyARN != "arn" {
		t.Fatalf("unexpected storage config %+v", got)
	}
}
