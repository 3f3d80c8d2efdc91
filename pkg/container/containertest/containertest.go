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

// Package containertest builds synthetic sequence and overlap containers for
// tests.
package containertest

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Read describes one read of a synthetic sequence container. Bases must use
// the ACGT alphabet; masked positions are written as given.
type Read struct {
	Name   string
	Bases  string
	Masked []uint64
}

var baseCodes = map[byte]byte{'A': 0, 'C': 1, 'G': 2, 'T': 3}

// PackBases encodes bases at two bits per base, high bits first, followed by
// the guard byte: len/4+1 bytes in total.
func PackBases(bases string) []byte {
	out := make([]byte, len(bases)/4+1)
	for i := 0; i < len(bases); i++ {
		shift := uint(6 - 2*(i%4))
		out[i/4] |= baseCodes[bases[i]] << shift
	}
	return out
}

// SequenceContainer serialises reads. The name-index-size header field is set
// to len(reads)+1.
func SequenceContainer(reads []Read) []byte {
	buf := &bytes.Buffer{}
	names := &bytes.Buffer{}
	for _, r := range reads {
		names.WriteString(r.Name)
	}

	header := make([]byte, 44)
	binary.LittleEndian.PutUint64(header[12:20], uint64(len(reads)+1))
	binary.LittleEndian.PutUint64(header[20:28], uint64(len(reads)))
	binary.LittleEndian.PutUint64(header[36:44], uint64(names.Len()))
	buf.Write(header)

	for _, r := range reads {
		putUint64(buf, uint64(len(r.Masked)))
		for _, site := range r.Masked {
			putUint64(buf, site)
		}
	}
	for _, r := range reads {
		putUint64(buf, uint64(len(r.Bases)))
	}
	for _, r := range reads {
		buf.Write(PackBases(r.Bases))
	}
	buf.Write(names.Bytes())
	offset := uint64(0)
	putUint64(buf, offset)
	for _, r := range reads {
		offset += uint64(len(r.Name))
		putUint64(buf, offset)
	}
	return buf.Bytes()
}

// PayloadOffset is where the packed payload of SequenceContainer(reads) starts.
func PayloadOffset(reads []Read) int64 {
	offset := int64(44)
	for _, r := range reads {
		offset += 8 + 8*int64(len(r.Masked))
	}
	return offset + 8*int64(len(reads))
}

// Overlap is one raw overlap record.
type Overlap struct {
	QueryIndex  uint32
	QueryStart  uint32
	QueryEnd    uint32
	TargetIndex uint32
	TargetStart uint32
	TargetEnd   uint32
	StrandCode  uint32
}

// OverlapContainer serialises one block per entry of blocks; empty entries
// become zero-length blocks.
func OverlapContainer(blocks [][]Overlap) []byte {
	buf := &bytes.Buffer{}
	putUint64(buf, uint64(len(blocks)))
	for _, block := range blocks {
		header := make([]byte, 6)
		binary.LittleEndian.PutUint32(header[2:6], uint32(len(block)))
		buf.Write(header)
		for _, o := range block {
			buf.Write(OverlapRecord(o))
		}
	}
	return buf.Bytes()
}

// EmptyOverlapContainer is the negative-count form written for no overlaps.
func EmptyOverlapContainer() []byte {
	buf := &bytes.Buffer{}
	var count int64 = -1
	binary.Write(buf, binary.LittleEndian, count)
	return buf.Bytes()
}

// OverlapRecord encodes a single 42-byte record. Unused fields are filled
// with non-zero bytes so decoders that read them by mistake are caught.
func OverlapRecord(o Overlap) []byte {
	rec := make([]byte, 42)
	binary.LittleEndian.PutUint64(rec[0:8], uint64(o.QueryIndex)<<32|uint64(o.QueryStart))
	binary.LittleEndian.PutUint32(rec[8:12], o.QueryEnd)
	binary.LittleEndian.PutUint32(rec[12:16], o.TargetIndex)
	binary.LittleEndian.PutUint32(rec[16:20], o.TargetStart)
	binary.LittleEndian.PutUint32(rec[20:24], o.TargetEnd)
	rec[24] = 0x7f
	rec[25] = 0x7f
	binary.LittleEndian.PutUint32(rec[26:30], 0xdeadbeef)
	binary.LittleEndian.PutUint32(rec[30:34], o.StrandCode)
	binary.LittleEndian.PutUint32(rec[34:38], 0xdeadbeef)
	binary.LittleEndian.PutUint32(rec[38:42], 0xdeadbeef)
	return rec
}

func putUint64(w io.Writer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

// Object is an in-memory container.Object.
type Object struct {
	*bytes.Reader
	name   string
	closed bool
}

// NewObject wraps data as a named, seekable object.
func NewObject(name string, data []byte) *Object {
	return &Object{Reader: bytes.NewReader(data), name: name}
}

func (o *Object) Name() string { return o.name }

func (o *Object) Close() error {
	o.closed = true
	return nil
}

// Closed reports whether Close was called.
func (o *Object) Closed() bool { return o.closed }
