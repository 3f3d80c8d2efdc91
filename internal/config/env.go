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
	"strconv"
	"strings"
)

const envPrefix = "HIFITXT_"

// ApplyEnv overrides cfg with HIFITXT_* variables read through getenv.
// Unparseable numeric or boolean values are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	env := func(key string) string {
		return strings.TrimSpace(getenv(envPrefix + key))
	}
	setString := func(key string, dst *string) {
		if val := env(key); val != "" {
			*dst = val
		}
	}
	setBool := func(key string, dst *bool) {
		if val := env(key); val != "" {
			if parsed, err := strconv.ParseBool(val); err == nil {
				*dst = parsed
			}
		}
	}
	setInt := func(key string, dst *int) {
		if val := env(key); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil {
				*dst = parsed
			}
		}
	}
	setList := func(key string, dst *[]string) {
		if parts := splitCSV(env(key)); len(parts) > 0 {
			*dst = parts
		}
	}

	setString("INPUT", &cfg.Input)
	setString("OUTPUT", &cfg.Output)
	setInt("THREADS", &cfg.Threads)
	setBool("SEQUENCES", &cfg.Convert.Sequences)
	setBool("SOURCE", &cfg.Convert.Source)
	setBool("REVERSE", &cfg.Convert.Reverse)

	setString("CODEC", &cfg.Sink.Codec)
	setInt("COMPRESSION_LEVEL", &cfg.Sink.Level)
	setInt("CHUNK_BYTES", &cfg.Sink.ChunkBytes)

	setString("S3_REGION", &cfg.S3.Region)
	setString("S3_ENDPOINT", &cfg.S3.Endpoint)
	setBool("S3_PATH_STYLE", &cfg.S3.PathStyle)
	setString("S3_ACCESS_KEY", &cfg.S3.AccessKeyID)
	setString("S3_SECRET_KEY", &cfg.S3.SecretAccessKey)
	setString("S3_SESSION_TOKEN", &cfg.S3.SessionToken)
	setString("S3_KMS_ARN", &cfg.S3.KMSKeyARN)
	setBool("S3_ENSURE_BUCKET", &cfg.S3.EnsureBucket)
	setInt("S3_CACHE_BYTES", &cfg.S3.CacheBytes)
	if val := env("S3_BLOCK_BYTES"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.S3.BlockBytes = parsed
		}
	}

	setList("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	setString("KAFKA_TOPIC", &cfg.Kafka.Topic)
	setString("KAFKA_CLIENT_ID", &cfg.Kafka.ClientID)
	setBool("KAFKA_CREATE_TOPIC", &cfg.Kafka.CreateTopic)
	setInt("KAFKA_MAX_RECORD_BYTES", &cfg.Kafka.MaxRecordBytes)

	setString("MANIFEST_BACKEND", &cfg.Manifest.Backend)
	setString("MANIFEST_PATH", &cfg.Manifest.Path)
	setString("MANIFEST_PREFIX", &cfg.Manifest.KeyPrefix)
	setList("ETCD_ENDPOINTS", &cfg.Etcd.Endpoints)
	setString("ETCD_USERNAME", &cfg.Etcd.Username)
	setString("ETCD_PASSWORD", &cfg.Etcd.Password)

	setString("METRICS_ADDR", &cfg.Metrics.Addr)
	setString("LOG_LEVEL", &cfg.Log.Level)
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		val := strings.TrimSpace(part)
		if val != "" {
			out = append(out, val)
		}
	}
	return out
}
