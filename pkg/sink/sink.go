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
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec names the compression applied to an output stream.
type Codec string

const (
	CodecGzip Codec = "gzip"
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
	CodecNone Codec = "none"
)

var ErrUnknownCodec = errors.New("unknown codec")

// ParseCodec accepts a codec name, case-insensitively. The empty string
// selects gzip.
func ParseCodec(name string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(name))); c {
	case "":
		return CodecGzip, nil
	case CodecGzip, CodecZstd, CodecLZ4, CodecNone:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// Extension returns the file suffix appended to outputs written with c.
func (c Codec) Extension() string {
	switch c {
	case CodecGzip:
		return ".gz"
	case CodecZstd:
		return ".zst"
	case CodecLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// Options configures a ParallelWriter.
type Options struct {
	Codec Codec
	// Level is codec specific; 0 selects the codec default.
	Level   int
	Workers int
}

func (o Options) normalize() Options {
	if o.Codec == "" {
		o.Codec = CodecGzip
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

func (o Options) validate() error {
	switch o.Codec {
	case CodecGzip:
		if o.Level != 0 && (o.Level < gzip.HuffmanOnly || o.Level > gzip.BestCompression) {
			return fmt.Errorf("gzip level %d out of range", o.Level)
		}
	case CodecZstd:
		if o.Level < 0 || o.Level > 22 {
			return fmt.Errorf("zstd level %d out of range", o.Level)
		}
	case CodecLZ4:
		if o.Level < 0 || o.Level >= len(lz4Levels) {
			return fmt.Errorf("lz4 level %d out of range", o.Level)
		}
	case CodecNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCodec, o.Codec)
	}
	return nil
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// compressor turns one chunk into a self-contained gzip member, zstd frame or
// lz4 frame. Concatenated outputs decode to the concatenated inputs.
// Compressors are not safe for concurrent use; each worker owns one.
type compressor interface {
	compress(dst, src []byte) ([]byte, error)
	close()
}

func newCompressor(opts Options) (compressor, error) {
	switch opts.Codec {
	case CodecGzip:
		level := opts.Level
		if level == 0 {
			level = gzip.DefaultCompression
		}
		zw, err := gzip.NewWriterLevel(nil, level)
		if err != nil {
			return nil, fmt.Errorf("create gzip writer: %w", err)
		}
		return &gzipCompressor{zw: zw}, nil
	case CodecZstd:
		level := zstd.SpeedDefault
		if opts.Level > 0 {
			level = zstd.EncoderLevelFromZstd(opts.Level)
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1), zstd.WithZeroFrames(true))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		return &zstdCompressor{enc: enc}, nil
	case CodecLZ4:
		zw := lz4.NewWriter(nil)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[opts.Level]), lz4.ConcurrencyOption(1)); err != nil {
			return nil, fmt.Errorf("configure lz4 writer: %w", err)
		}
		return &lz4Compressor{zw: zw, level: lz4Levels[opts.Level]}, nil
	case CodecNone:
		return identity{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, opts.Codec)
	}
}

type gzipCompressor struct {
	zw *gzip.Writer
}

func (c *gzipCompressor) compress(dst, src []byte) ([]byte, error) {
	buf := byteSink{b: dst[:0]}
	c.zw.Reset(&buf)
	if _, err := c.zw.Write(src); err != nil {
		return nil, err
	}
	if err := c.zw.Close(); err != nil {
		return nil, err
	}
	return buf.b, nil
}

func (c *gzipCompressor) close() {}

type zstdCompressor struct {
	enc *zstd.Encoder
}

func (c *zstdCompressor) compress(dst, src []byte) ([]byte, error) {
	return c.enc.EncodeAll(src, dst[:0]), nil
}

func (c *zstdCompressor) close() {
	_ = c.enc.Close()
}

type lz4Compressor struct {
	zw    *lz4.Writer
	level lz4.CompressionLevel
}

func (c *lz4Compressor) compress(dst, src []byte) ([]byte, error) {
	buf := byteSink{b: dst[:0]}
	c.zw.Reset(&buf)
	if err := c.zw.Apply(lz4.CompressionLevelOption(c.level), lz4.ConcurrencyOption(1)); err != nil {
		return nil, err
	}
	if _, err := c.zw.Write(src); err != nil {
		return nil, err
	}
	if err := c.zw.Close(); err != nil {
		return nil, err
	}
	return buf.b, nil
}

func (c *lz4Compressor) close() {}

type identity struct{}

func (identity) compress(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (identity) close() {}

type byteSink struct {
	b []byte
}

func (s *byteSink) Write(p []byte) (int, error) {
	s.b = append(s.b, p...)
	return len(p), nil
}
