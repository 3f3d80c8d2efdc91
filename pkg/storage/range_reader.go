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

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/novatechflow/hifitxt/pkg/cache"
)

// DefaultBlockSize is the span fetched by one ranged GET.
const DefaultBlockSize = 8 << 20

var errNegativeSeek = errors.New("storage: negative seek position")

// RangeReader presents a remote object as a seekable reader. Reads are served
// from fixed-size blocks fetched with ranged GETs and kept in a shared cache.
type RangeReader struct {
	ctx       context.Context
	client    S3Client
	key       string
	name      string
	size      int64
	blockSize int64
	cache     *cache.BlockCache
	pos       int64
	closed    bool
}

// NewRangeReader stats key and returns a reader positioned at offset zero.
// A nil cache disables caching beyond the current block.
func NewRangeReader(ctx context.Context, client S3Client, loc Location, blockSize int64, c *cache.BlockCache) (*RangeReader, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	obj, err := client.HeadObject(ctx, loc.Key)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.NewBlockCache(int(blockSize))
	}
	return &RangeReader{
		ctx:       ctx,
		client:    client,
		key:       loc.Key,
		name:      loc.String(),
		size:      obj.Size,
		blockSize: blockSize,
		cache:     c,
	}, nil
}

func (r *RangeReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, fmt.Errorf("read %s: %w", r.name, io.ErrClosedPipe)
	}
	if r.pos >= r.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	block := r.pos / r.blockSize
	data, err := r.block(block)
	if err != nil {
		return 0, err
	}
	off := r.pos - block*r.blockSize
	if off >= int64(len(data)) {
		return 0, fmt.Errorf("read %s at %d: %w", r.name, r.pos, io.ErrUnexpectedEOF)
	}
	n := copy(p, data[off:])
	r.pos += int64(n)
	return n, nil
}

func (r *RangeReader) block(idx int64) ([]byte, error) {
	if data, ok := r.cache.Get(r.name, idx); ok {
		return data, nil
	}
	start := idx * r.blockSize
	end := min(start+r.blockSize, r.size) - 1
	data, err := r.client.GetObject(r.ctx, r.key, &ByteRange{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	r.cache.Set(r.name, idx, data)
	return data, nil
}

func (r *RangeReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return r.pos, fmt.Errorf("seek %s: invalid whence %d", r.name, whence)
	}
	if abs < 0 {
		return r.pos, errNegativeSeek
	}
	r.pos = abs
	return abs, nil
}

// Close releases the reader. Cached blocks stay available to later readers
// of the same object.
func (r *RangeReader) Close() error {
	r.closed = true
	return nil
}

func (r *RangeReader) Size() int64 { return r.size }

func (r *RangeReader) Name() string { return r.name }
