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
	"fmt"
	"io"
	"strings"
)

// ErrVersion is returned by FromArgs when -version was requested.
var ErrVersion = errors.New("version requested")

type flagValues struct {
	config      string
	threads     int
	sequences   bool
	reverse     bool
	source      bool
	codec       string
	level       int
	chunkBytes  int
	metricsAddr string
	brokers     string
	topic       string
	manifest    string
	logLevel    string
	listRuns    bool
	version     bool
}

func newFlagSet(out io.Writer, v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet("hifitxt", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(out, "Convert hifiasm binary containers to FASTA and PAF text.\n\n")
		fmt.Fprintf(out, "Usage: hifitxt [options] PATH/PREFIX [OUT_PREFIX]\n")
		fmt.Fprintf(out, "       hifitxt -list-runs -manifest file|etcd [RUN_ID]\n\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&v.config, "config", "", "YAML config file")
	fs.IntVar(&v.threads, "t", DefaultThreads, "number of compression threads")
	fs.BoolVar(&v.sequences, "e", false, "convert PATH/PREFIX.ec.bin")
	fs.BoolVar(&v.sequences, "out_ec_bin", false, "alias for -e")
	fs.BoolVar(&v.reverse, "r", false, "convert PATH/PREFIX.ovlp.reverse.bin")
	fs.BoolVar(&v.reverse, "out_re_bin", false, "alias for -r")
	fs.BoolVar(&v.source, "s", false, "convert PATH/PREFIX.ovlp.source.bin")
	fs.BoolVar(&v.source, "out_so_bin", false, "alias for -s")
	fs.StringVar(&v.codec, "codec", "", "output compression: gzip, zstd, lz4 or none")
	fs.IntVar(&v.level, "level", 0, "compression level (0 selects the codec default)")
	fs.IntVar(&v.chunkBytes, "chunk-bytes", 0, "text bytes handed to the compressor at a time")
	fs.StringVar(&v.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&v.brokers, "kafka-brokers", "", "comma separated Kafka seed brokers to publish output text to")
	fs.StringVar(&v.topic, "kafka-topic", "", "Kafka topic for published output text")
	fs.StringVar(&v.manifest, "manifest", "", "run manifest backend: none, file or etcd")
	fs.StringVar(&v.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&v.listRuns, "list-runs", false, "print recorded conversions from the manifest and exit")
	fs.BoolVar(&v.version, "version", false, "print version and exit")
	return fs
}

// FromArgs builds the run configuration. Precedence, lowest first: defaults,
// the YAML file named by -config or HIFITXT_CONFIG, HIFITXT_* environment
// variables, command-line flags and positional arguments.
func FromArgs(args []string, getenv func(string) string, out io.Writer) (Config, error) {
	var v flagValues
	fs := newFlagSet(out, &v)
	// Flags may follow positional arguments.
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return Config{}, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}
	if v.version {
		return Config{}, ErrVersion
	}

	cfg := Default()
	path := v.config
	if path == "" {
		path = strings.TrimSpace(getenv(envPrefix + "CONFIG"))
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	ApplyEnv(&cfg, getenv)
	cfg.ListRuns = v.listRuns

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.Threads = v.threads
		case "e", "out_ec_bin":
			cfg.Convert.Sequences = v.sequences
		case "r", "out_re_bin":
			cfg.Convert.Reverse = v.reverse
		case "s", "out_so_bin":
			cfg.Convert.Source = v.source
		case "codec":
			cfg.Sink.Codec = v.codec
		case "level":
			cfg.Sink.Level = v.level
		case "chunk-bytes":
			cfg.Sink.ChunkBytes = v.chunkBytes
		case "metrics-addr":
			cfg.Metrics.Addr = v.metricsAddr
		case "kafka-brokers":
			cfg.Kafka.Brokers = splitCSV(v.brokers)
		case "kafka-topic":
			cfg.Kafka.Topic = v.topic
		case "manifest":
			cfg.Manifest.Backend = v.manifest
		case "log-level":
			cfg.Log.Level = v.logLevel
		}
	})

	switch {
	case cfg.ListRuns:
		if len(positional) > 1 {
			return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[1:], " "))
		}
		if len(positional) == 1 {
			cfg.ListRunID = positional[0]
		}
	case len(positional) == 0:
	case len(positional) == 1:
		cfg.Input = positional[0]
	case len(positional) == 2:
		cfg.Input, cfg.Output = positional[0], positional[1]
	default:
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[2:], " "))
	}
	if cfg.Input == "" && !cfg.ListRuns {
		fs.Usage()
		return Config{}, errors.New("missing PATH/PREFIX argument")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
