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

package container

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const readBufferSize = 1 << 20

// cursor is a buffered, position-tracking reader over an Object. Every short
// read surfaces as ErrContainerTruncated with the offset it started at.
type cursor struct {
	obj     Object
	br      *bufio.Reader
	pos     int64
	size    int64
	scratch [8]byte
}

func newCursor(obj Object, start int64) (*cursor, error) {
	size := obj.Size()
	if start < 0 || start > size {
		return nil, &ContainerError{
			Op:     "seek",
			Path:   obj.Name(),
			Offset: start,
			Err:    fmt.Errorf("%w: size %d", ErrSeekOutOfRange, size),
		}
	}
	if _, err := obj.Seek(start, io.SeekStart); err != nil {
		return nil, &ContainerError{Op: "seek", Path: obj.Name(), Offset: start, Err: err}
	}
	return &cursor{
		obj:  obj,
		br:   bufio.NewReaderSize(obj, readBufferSize),
		pos:  start,
		size: size,
	}, nil
}

func (c *cursor) remaining() int64 {
	return c.size - c.pos
}

func (c *cursor) readFull(op string, p []byte) error {
	start := c.pos
	n, err := io.ReadFull(c.br, p)
	c.pos += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = fmt.Errorf("%w: want %d bytes, got %d", ErrContainerTruncated, len(p), n)
	}
	return &ContainerError{Op: op, Path: c.obj.Name(), Offset: start, Err: err}
}

func (c *cursor) uint64(op string) (uint64, error) {
	if err := c.readFull(op, c.scratch[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(c.scratch[:8]), nil
}

// skip advances n bytes, discarding from the buffer when possible and
// seeking the underlying object otherwise.
func (c *cursor) skip(op string, n int64) error {
	if n < 0 || n > c.remaining() {
		return &ContainerError{
			Op:     op,
			Path:   c.obj.Name(),
			Offset: c.pos,
			Err:    fmt.Errorf("%w: skip %d bytes with %d remaining", ErrSeekOutOfRange, n, c.remaining()),
		}
	}
	if n <= int64(c.br.Buffered()) {
		if _, err := c.br.Discard(int(n)); err != nil {
			return &ContainerError{Op: op, Path: c.obj.Name(), Offset: c.pos, Err: err}
		}
		c.pos += n
		return nil
	}
	target := c.pos + n
	if _, err := c.obj.Seek(target, io.SeekStart); err != nil {
		return &ContainerError{Op: op, Path: c.obj.Name(), Offset: c.pos, Err: err}
	}
	c.br.Reset(c.obj)
	c.pos = target
	return nil
}

// truncated reports that need bytes cannot be satisfied by what remains.
func (c *cursor) truncated(op string, need uint64) error {
	return &ContainerError{
		Op:     op,
		Path:   c.obj.Name(),
		Offset: c.pos,
		Err:    fmt.Errorf("%w: need %d bytes, %d remaining", ErrContainerTruncated, need, c.remaining()),
	}
}

func (c *cursor) corrupt(op string, format string, args ...any) error {
	return &ContainerError{
		Op:     op,
		Path:   c.obj.Name(),
		Offset: c.pos,
		Err:    fmt.Errorf("%w: %s", ErrCorruptContainer, fmt.Sprintf(format, args...)),
	}
}
