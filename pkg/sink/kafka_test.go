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
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestKafkaWriterSplitsOnLines(t *testing.T) {
	prod := &fakeProducer{}
	w := NewKafkaWriter(context.Background(), prod, "hifitxt", "run.ec.fasta", 16)
	text := ">r1\nACGT\n>r2\nTTGGACTTGGAC\n>r3\nA\n"
	if n, err := w.Write([]byte(text)); err != nil || n != len(text) {
		t.Fatalf("Write = %d, %v", n, err)
	}
	var joined bytes.Buffer
	for i, r := range prod.records {
		if len(r.Value) > 16 {
			t.Fatalf("record %d exceeds limit: %d", i, len(r.Value))
		}
		if !bytes.HasSuffix(r.Value, []byte("\n")) {
			t.Fatalf("record %d does not end on a line: %q", i, r.Value)
		}
		if string(r.Key) != "run.ec.fasta" || r.Topic != "hifitxt" {
			t.Fatalf("unexpected key/topic %q %q", r.Key, r.Topic)
		}
		joined.Write(r.Value)
	}
	if joined.String() != text {
		t.Fatalf("records do not reassemble: %q", joined.String())
	}
	if w.Records() != int64(len(prod.records)) {
		t.Fatalf("Records = %d want %d", w.Records(), len(prod.records))
	}
}

func TestSplitLinesLongLine(t *testing.T) {
	long := strings.Repeat("A", 40) + "\n"
	parts := splitLines([]byte(long), 16)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	if string(bytes.Join(parts, nil)) != long {
		t.Fatalf("parts do not reassemble")
	}
}

func TestKafkaWriterProduceError(t *testing.T) {
	prod := &fakeProducer{err: kerr.NotLeaderForPartition}
	w := NewKafkaWriter(context.Background(), prod, "t", "s", 0)
	if _, err := w.Write([]byte("x\n")); !errors.Is(err, kerr.NotLeaderForPartition) {
		t.Fatalf("expected produce error, got %v", err)
	}
}

type fakeRequestor struct {
	code int16
	req  *kmsg.CreateTopicsRequest
}

func (f *fakeRequestor) Request(_ context.Context, req kmsg.Request) (kmsg.Response, error) {
	f.req = req.(*kmsg.CreateTopicsRequest)
	resp := kmsg.NewPtrCreateTopicsResponse()
	for _, t := range f.req.Topics {
		rt := kmsg.NewCreateTopicsResponseTopic()
		rt.Topic = t.Topic
		rt.ErrorCode = f.code
		resp.Topics = append(resp.Topics, rt)
	}
	return resp, nil
}

func TestEnsureTopic(t *testing.T) {
	cases := []struct {
		name string
		code int16
		ok   bool
	}{
		{"created", 0, true},
		{"exists", kerr.TopicAlreadyExists.Code, true},
		{"denied", kerr.TopicAuthorizationFailed.Code, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &fakeRequestor{code: tc.code}
			err := EnsureTopic(context.Background(), req, "hifitxt", 3, 1)
			if (err == nil) != tc.ok {
				t.Fatalf("unexpected err %v", err)
			}
			if got := req.req.Topics[0]; got.Topic != "hifitxt" || got.NumPartitions != 3 || got.ReplicationFactor != 1 {
				t.Fatalf("unexpected request %+v", got)
			}
		})
	}
}
