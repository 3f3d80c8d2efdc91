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
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/novatechflow/hifitxt/pkg/sink"
	"github.com/novatechflow/hifitxt/pkg/storage"
	"github.com/novatechflow/hifitxt/pkg/textout"
)

const (
	DefaultOutput  = "hifitxt"
	DefaultThreads = 3
)

// Config describes one conversion run.
type Config struct {
	Input    string         `yaml:"input"`
	Output   string         `yaml:"output"`
	Threads  int            `yaml:"threads"`
	Convert  ConvertConfig  `yaml:"convert"`
	Sink     SinkConfig     `yaml:"sink"`
	S3       S3Config       `yaml:"s3"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Manifest ManifestConfig `yaml:"manifest"`
	Etcd     EtcdConfig     `yaml:"etcd"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`

	// ListRuns prints the manifest instead of converting, limited to
	// ListRunID when set.
	ListRuns  bool   `yaml:"-"`
	ListRunID string `yaml:"-"`
}

// ConvertConfig selects which containers are converted.
type ConvertConfig struct {
	Sequences bool `yaml:"sequences"`
	Source    bool `yaml:"source"`
	Reverse   bool `yaml:"reverse"`
}

type SinkConfig struct {
	Codec      string `yaml:"codec"`
	Level      int    `yaml:"level"`
	ChunkBytes int    `yaml:"chunk_bytes"`
}

type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	KMSKeyARN       string `yaml:"kms_key_arn"`
	EnsureBucket    bool   `yaml:"ensure_bucket"`
	BlockBytes      int64  `yaml:"block_bytes"`
	CacheBytes      int    `yaml:"cache_bytes"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	Topic             string   `yaml:"topic"`
	ClientID          string   `yaml:"client_id"`
	CreateTopic       bool     `yaml:"create_topic"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
	MaxRecordBytes    int      `yaml:"max_record_bytes"`
}

type ManifestConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	KeyPrefix string `yaml:"key_prefix"`
}

type EtcdConfig struct {
	Endpoints          []string `yaml:"endpoints"`
	Username           string   `yaml:"username"`
	Password           string   `yaml:"password"`
	DialTimeoutSeconds int      `yaml:"dial_timeout_seconds"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Output:  DefaultOutput,
		Threads: DefaultThreads,
		Sink: SinkConfig{
			Codec:      string(sink.CodecGzip),
			ChunkBytes: textout.DefaultChunkBytes,
		},
		S3: s3Defaults(),
		Kafka: KafkaConfig{
			ClientID:          "hifitxt",
			Partitions:        1,
			ReplicationFactor: 1,
			MaxRecordBytes:    sink.DefaultMaxRecordBytes,
		},
		Manifest: ManifestConfig{
			Backend:   "none",
			KeyPrefix: "hifitxt/runs",
		},
		Etcd: EtcdConfig{
			DialTimeoutSeconds: 5,
		},
		Log: LogConfig{Level: "info"},
	}
}

// s3Defaults returns the S3 defaults.
func s3Defaults() S3Config {
	return S3Config{
		Region:     "us-east-1",
		BlockBytes: storage.DefaultBlockSize,
		CacheBytes: 64 << 20,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks required fields and normalises enumerations.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" && !c.ListRuns {
		return errors.New("input prefix is required")
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	codec, err := sink.ParseCodec(c.Sink.Codec)
	if err != nil {
		return err
	}
	c.Sink.Codec = string(codec)
	if c.Sink.ChunkBytes <= 0 {
		return fmt.Errorf("sink.chunk_bytes must be positive, got %d", c.Sink.ChunkBytes)
	}
	if c.S3.BlockBytes <= 0 {
		return fmt.Errorf("s3.block_bytes must be positive, got %d", c.S3.BlockBytes)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when kafka.brokers is set")
	}
	switch c.Manifest.Backend {
	case "", "none":
		c.Manifest.Backend = "none"
	case "file":
		if c.Manifest.Path == "" {
			return errors.New("manifest.path is required for manifest.backend=file")
		}
	case "etcd":
		if len(c.Etcd.Endpoints) == 0 {
			return errors.New("etcd.endpoints is required for manifest.backend=etcd")
		}
	default:
		return fmt.Errorf("manifest.backend must be none, file or etcd, got %q", c.Manifest.Backend)
	}
	if c.ListRuns && c.Manifest.Backend == "none" {
		return errors.New("listing runs needs a file or etcd manifest")
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Any reports whether at least one conversion is enabled.
func (c ConvertConfig) Any() bool {
	return c.Sequences || c.Source || c.Reverse
}

// ParseLogLevel maps debug|info|warn|error to a slog level.
func ParseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

// StorageConfig converts the S3 section for bucket.
func (c S3Config) StorageConfig(bucket string) storage.S3Config {
	return storage.S3Config{
		Bucket:          bucket,
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		ForcePathStyle:  c.PathStyle,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
		KMSKeyARN:       c.KMSKeyARN,
	}
}
