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

import "bytes"

// UnknownBase replaces the decoded base at every masked site.
const UnknownBase = 'N'

var packedBases = buildPackedBases()

// buildPackedBases maps every packed byte to its four bases, high bits first.
func buildPackedBases() [256][4]byte {
	alphabet := [4]byte{'A', 'C', 'G', 'T'}
	var table [256][4]byte
	for i := range table {
		table[i] = [4]byte{
			alphabet[(i>>6)&3],
			alphabet[(i>>4)&3],
			alphabet[(i>>2)&3],
			alphabet[i&3],
		}
	}
	return table
}

// unpackBases expands packed into dst and truncates the result to length,
// dropping the bases decoded from the guard byte.
func unpackBases(dst, packed []byte, length int) []byte {
	need := len(packed) * 4
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]
	for i, b := range packed {
		copy(dst[i*4:i*4+4], packedBases[b][:])
	}
	return dst[:length]
}

// SequenceDecoder streams the decoded bases of every read in index order.
//
// Bases returns a buffer that is reused: it is valid only until the next call
// to Next. Use Sequence for a copy that may be retained.
type SequenceDecoder struct {
	cur    *cursor
	rs     *ReadSet
	next   int
	idx    int
	packed []byte
	bases  []byte
	err    error
}

// DecodeSequences opens a local sequence container positioned at rs.PayloadOffset.
func DecodeSequences(path string, rs *ReadSet) (*SequenceDecoder, error) {
	obj, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := NewSequenceDecoder(obj, rs)
	if err != nil {
		obj.Close()
		return nil, err
	}
	return dec, nil
}

// NewSequenceDecoder positions obj at rs.PayloadOffset. The decoder owns obj
// and closes it on Close. rs must carry one name and one masked-site list
// per read.
func NewSequenceDecoder(obj Object, rs *ReadSet) (*SequenceDecoder, error) {
	c, err := newCursor(obj, rs.PayloadOffset)
	if err != nil {
		return nil, err
	}
	if len(rs.Names) != len(rs.Lengths) || len(rs.MaskedSites) != len(rs.Lengths) {
		return nil, c.corrupt("open sequences", "read set has %d lengths, %d names, %d masked-site lists",
			len(rs.Lengths), len(rs.Names), len(rs.MaskedSites))
	}
	return &SequenceDecoder{cur: c, rs: rs, idx: -1}, nil
}

// Next decodes the following read. It returns false at the end of the read
// set or on the first error.
func (d *SequenceDecoder) Next() bool {
	if d.err != nil || d.next >= len(d.rs.Lengths) {
		return false
	}
	i := d.next
	length := d.rs.Lengths[i]
	n := int(packedLen(length))
	if cap(d.packed) < n {
		d.packed = make([]byte, n)
	}
	d.packed = d.packed[:n]
	if err := d.cur.readFull("read packed bases", d.packed); err != nil {
		d.err = err
		return false
	}
	d.bases = unpackBases(d.bases, d.packed, int(length))
	for _, site := range d.rs.MaskedSites[i] {
		if site >= uint64(length) {
			d.err = d.cur.corrupt("read packed bases", "read %d masked site %d outside length %d", i, site, length)
			return false
		}
		d.bases[site] = UnknownBase
	}
	d.idx = i
	d.next++
	return true
}

// Index is the read index of the current sequence.
func (d *SequenceDecoder) Index() int {
	return d.idx
}

// Name is the current read's name.
func (d *SequenceDecoder) Name() []byte {
	return d.rs.Names[d.idx]
}

// Bases is the current read's decoded bases, valid until the next Next call.
func (d *SequenceDecoder) Bases() []byte {
	return d.bases
}

// Sequence returns an owned copy of the current read's bases.
func (d *SequenceDecoder) Sequence() []byte {
	return bytes.Clone(d.bases)
}

func (d *SequenceDecoder) Err() error {
	return d.err
}

func (d *SequenceDecoder) Close() error {
	return d.cur.obj.Close()
}
