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

package app

import (
	"github.com/novatechflow/hifitxt/internal/config"
	"github.com/novatechflow/hifitxt/pkg/sink"
)

type streamKind int

const (
	sequenceStream streamKind = iota
	overlapStream
)

// stream describes one container-to-text conversion.
type stream struct {
	name      string
	kind      streamKind
	inSuffix  string
	outSuffix string
}

const sequenceSuffix = ".ec.bin"

var (
	ecStream      = stream{name: "ec", kind: sequenceStream, inSuffix: sequenceSuffix, outSuffix: ".ec.fasta"}
	sourceStream  = stream{name: "source", kind: overlapStream, inSuffix: ".ovlp.source.bin", outSuffix: ".source.paf"}
	reverseStream = stream{name: "reverse", kind: overlapStream, inSuffix: ".ovlp.reverse.bin", outSuffix: ".reverse.paf"}
)

// enabledStreams returns the selected conversions in run order: sequences,
// then source overlaps, then reverse overlaps.
func enabledStreams(c config.ConvertConfig) []stream {
	var out []stream
	if c.Sequences {
		out = append(out, ecStream)
	}
	if c.Source {
		out = append(out, sourceStream)
	}
	if c.Reverse {
		out = append(out, reverseStream)
	}
	return out
}

func (s stream) outputSuffix(codec sink.Codec) string {
	return s.outSuffix + codec.Extension()
}
