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

import "context"

// cancelCheckInterval bounds how many records are emitted between context checks.
const cancelCheckInterval = 4096

// Stats summarises one emitted stream.
type Stats struct {
	Records int64
	Bytes   int64
}

// SequenceSource yields named base sequences; container.SequenceDecoder
// satisfies it.
type SequenceSource interface {
	Next() bool
	Name() []byte
	Bases() []byte
	Err() error
}

// WriteSequences emits ">name\nbases\n" for every sequence in src and flushes
// the final partial chunk.
func WriteSequences(ctx context.Context, src SequenceSource, out *ChunkBuffer) (Stats, error) {
	var stats Stats
	start := out.Written() + int64(out.Pending())
	for src.Next() {
		if stats.Records%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
		out.AppendByte('>')
		out.Append(src.Name())
		out.AppendByte('\n')
		out.Append(src.Bases())
		out.AppendByte('\n')
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
