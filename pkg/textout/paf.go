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
	"context"
	"errors"
	"fmt"

	"github.com/novatechflow/hifitxt/pkg/container"
)

// ErrReadIndexOutOfRange is returned when an overlap names a read the read set
// does not contain.
var ErrReadIndexOutOfRange = errors.New("read index out of range")

// OverlapSource yields decoded overlaps; container.OverlapDecoder satisfies it.
type OverlapSource interface {
	Next() bool
	Record() container.OverlapRecord
	Err() error
}

// WriteOverlaps emits one tab-separated line per overlap: query name, query
// length, query start, query end, strand, target name, target length, target
// start, target end, match length, alignment length.
func WriteOverlaps(ctx context.Context, src OverlapSource, rs *container.ReadSet, out *ChunkBuffer) (Stats, error) {
	var stats Stats
	start := out.Written() + int64(out.Pending())
	for src.Next() {
		if stats.Records%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
		rec := src.Record()
		if int(rec.QueryIndex) >= rs.ReadsCount || int(rec.TargetIndex) >= rs.ReadsCount {
			return stats, fmt.Errorf("%w: overlap %d references query %d target %d with %d reads",
				ErrReadIndexOutOfRange, stats.Records, rec.QueryIndex, rec.TargetIndex, rs.ReadsCount)
		}
		appendOverlap(out, rec, rs)
		stats.Records++
		if err := out.MaybeFlush(); err != nil {
			return stats, err
		}
	}
	if err := src.Err(); err != nil {
		return stats, err
	}
	if err := out.Flush(); err != nil {
		return stats, err
	}
	stats.Bytes = out.Written() - start
	return stats, nil
}

func appendOverlap(out *ChunkBuffer, rec container.OverlapRecord, rs *container.ReadSet) {
	out.Append(rs.Names[rec.QueryIndex])
	out.AppendByte('\t')
	out.AppendUint(uint64(rs.Lengths[rec.QueryIndex]))
	out.AppendByte('\t')
	out.AppendUint(uint64(rec.QueryStart))
	out.AppendByte('\t')
	out.AppendUint(uint64(rec.QueryEnd))
	out.AppendByte('\t')
	out.AppendString(rec.Strand.String())
	out.AppendByte('\t')
	out.Append(rs.Names[rec.TargetIndex])
	out.AppendByte('\t')
	out.AppendUint(uint64(rs.Lengths[rec.TargetIndex]))
	out.AppendByte('\t')
	out.AppendUint(uint64(rec.TargetStart))
	out.AppendByte('\t')
	out.AppendUint(uint64(rec.TargetEnd))
	out.AppendByte('\t')
	out.AppendUint(uint64(rec.MatchLength))
	out.AppendByte('\t')
	out.AppendUint(uint64(rec.AlignmentLength))
	out.AppendByte('\n')
}
