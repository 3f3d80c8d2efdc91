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

package textout

import (
	"io"
	"strconv"
)

// DefaultChunkBytes is the hand-off threshold for emitted text.
const DefaultChunkBytes = 1 << 20

// ChunkBuffer accumulates emitted text and hands it to dst once it reaches
// the threshold. dst must not retain the slices it is given.
type ChunkBuffer struct {
	dst       io.Writer
	threshold int
	buf       []byte
	written   int64
	chunks    int
}

// NewChunkBuffer creates a buffer that flushes to dst every threshold bytes.
func NewChunkBuffer(dst io.Writer, threshold int) *ChunkBuffer {
	if threshold <= 0 {
		threshold = DefaultChunkBytes
	}
	return &ChunkBuffer{
		dst:       dst,
		threshold: threshold,
		buf:       make([]byte, 0, threshold+threshold/4),
	}
}

func (b *ChunkBuffer) AppendByte(c byte) {
	b.buf = append(b.buf, c)
}

func (b *ChunkBuffer) Append(p []byte) {
	b.buf = append(b.buf, p...)
}

func (b *ChunkBuffer) AppendString(s string) {
	b.buf = append(b.buf, s...)
}

func (b *ChunkBuffer) AppendUint(v uint64) {
	b.buf = strconv.AppendUint(b.buf, v, 10)
}

// ShouldFlush reports whether the pending text reached the threshold.
func (b *ChunkBuffer) ShouldFlush() bool {
	return len(b.buf) >= b.threshold
}

// MaybeFlush hands the pending text off when it reached the threshold.
func (b *ChunkBuffer) MaybeFlush() error {
	if !b.ShouldFlush() {
		return nil
	}
	return b.Flush()
}

// Flush hands off whatever is pending, even below the threshold.
func (b *ChunkBuffer) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	n, err := b.dst.Write(b.buf)
	b.written += int64(n)
	if err != nil {
		return err
	}
	if n < len(b.buf) {
		return io.ErrShortWrite
	}
	b.chunks++
	b.buf = b.buf[:0]
	return nil
}

// Pending returns the number of bytes not yet handed off.
func (b *ChunkBuffer) Pending() int {
	return len(b.buf)
}

// Written returns the number of bytes handed off so far.
func (b *ChunkBuffer) Written() int64 {
	return b.written
}

// Chunks returns the number of completed hand-offs.
func (b *ChunkBuffer) Chunks() int {
	return b.chunks
}
