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

// Strand is the relative orientation of an overlap's target.
type Strand uint8

const (
	Forward Strand = iota
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// strandFromCode maps the raw encoding: 1 is reverse, anything else forward.
func strandFromCode(code uint32) Strand {
	if code == 1 {
		return Reverse
	}
	return Forward
}

// OverlapRecord is one decoded overlap. Coordinates are half-open spans.
type OverlapRecord struct {
	QueryIndex      uint32
	QueryStart      uint32
	QueryEnd        uint32
	TargetIndex     uint32
	TargetStart     uint32
	TargetEnd       uint32
	Strand          Strand
	MatchLength     uint32
	AlignmentLength uint32
}

func spanLengths(querySpan, targetSpan uint32) (match, alignment uint32) {
	if querySpan < targetSpan {
		return querySpan, targetSpan
	}
	return targetSpan, querySpan
}

// OverlapDecoder streams overlap records in file order.
//
// The container starts with a signed query count; a negative count marks an
// empty container. Each query contributes a block header carrying its record
// count followed by that many fixed-width records. Empty blocks are skipped.
type OverlapDecoder struct {
	cur              *cursor
	remainingQueries int64
	blockRemaining   int32
	header           [blockHeaderLen]byte
	raw              [overlapRecordLen]byte
	rec              OverlapRecord
	done             bool
	err              error
}

// DecodeOverlaps opens a local overlap container.
func DecodeOverlaps(path string) (*OverlapDecoder, error) {
	obj, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := NewOverlapDecoder(obj)
	if err != nil {
		obj.Close()
		return nil, err
	}
	return dec, nil
}

// NewOverlapDecoder reads the query count from obj. The decoder owns obj and
// closes it on Close.
func NewOverlapDecoder(obj Object) (*OverlapDecoder, error) {
	c, err := newCursor(obj, 0)
	if err != nil {
		return nil, err
	}
	count, err := c.uint64("read query count")
	if err != nil {
		return nil, err
	}
	d := &OverlapDecoder{cur: c, remainingQueries: int64(count)}
	if d.remainingQueries < 0 {
		d.done = true
	}
	return d, nil
}

// Next decodes the following record. It returns false once every query block
// is consumed or on the first error.
func (d *OverlapDecoder) Next() bool {
	if d.done || d.err != nil {
		return false
	}
	for d.blockRemaining == 0 {
		if d.remainingQueries == 0 {
			d.done = true
			return false
		}
		if err := d.cur.readFull("read block header", d.header[:]); err != nil {
			d.err = err
			return false
		}
		d.blockRemaining = blockHeaderView(d.header[:]).RecordCount()
		d.remainingQueries--
		if d.blockRemaining < 0 {
			d.err = d.cur.corrupt("read block header", "negative record count %d", d.blockRemaining)
			return false
		}
	}
	d.blockRemaining--
	if err := d.cur.readFull("read overlap record", d.raw[:]); err != nil {
		d.err = err
		return false
	}
	rec, err := d.decode(overlapView(d.raw[:]))
	if err != nil {
		d.err = err
		return false
	}
	d.rec = rec
	return true
}

// decode rejects inverted spans as corrupt instead of letting the unsigned
// span subtraction wrap.
func (d *OverlapDecoder) decode(v overlapView) (OverlapRecord, error) {
	rec := OverlapRecord{
		QueryIndex:  v.QueryIndex(),
		QueryStart:  v.QueryStart(),
		QueryEnd:    v.QueryEnd(),
		TargetIndex: v.TargetIndex(),
		TargetStart: v.TargetStart(),
		TargetEnd:   v.TargetEnd(),
		Strand:      strandFromCode(v.StrandCode()),
	}
	if rec.QueryEnd < rec.QueryStart || rec.TargetEnd < rec.TargetStart {
		return OverlapRecord{}, d.cur.corrupt("read overlap record", "inverted span query [%d,%d) target [%d,%d)",
			rec.QueryStart, rec.QueryEnd, rec.TargetStart, rec.TargetEnd)
	}
	rec.MatchLength, rec.AlignmentLength = spanLengths(rec.QueryEnd-rec.QueryStart, rec.TargetEnd-rec.TargetStart)
	return rec, nil
}

// Record is the current overlap.
func (d *OverlapDecoder) Record() OverlapRecord {
	return d.rec
}

func (d *OverlapDecoder) Err() error {
	return d.err
}

func (d *OverlapDecoder) Close() error {
	return d.cur.obj.Close()
}
