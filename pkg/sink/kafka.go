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
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// DefaultMaxRecordBytes stays under the broker default message.max.bytes.
const DefaultMaxRecordBytes = 512 << 10

// Producer is the subset of *kgo.Client used to publish records.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaWriter publishes written text as records on one topic. Every record
// value ends on a line boundary unless a single line exceeds the record
// limit. Records are keyed by stream so one partition carries one output in
// order.
type KafkaWriter struct {
	ctx      context.Context
	producer Producer
	topic    string
	stream   string
	maxBytes int
	seq      int64
	records  int64
}

// NewKafkaWriter returns a writer publishing to topic under the stream key.
func NewKafkaWriter(ctx context.Context, producer Producer, topic, stream string, maxRecordBytes int) *KafkaWriter {
	if maxRecordBytes <= 0 {
		maxRecordBytes = DefaultMaxRecordBytes
	}
	return &KafkaWriter{
		ctx:      ctx,
		producer: producer,
		topic:    topic,
		stream:   stream,
		maxBytes: maxRecordBytes,
	}
}

func (w *KafkaWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var batch []*kgo.Record
	for _, part := range splitLines(p, w.maxBytes) {
		batch = append(batch, &kgo.Record{
			Topic: w.topic,
			Key:   []byte(w.stream),
			Value: append([]byte(nil), part...),
			Headers: []kgo.RecordHeader{
				{Key: "stream", Value: []byte(w.stream)},
				{Key: "seq", Value: []byte(strconv.FormatInt(w.seq, 10))},
			},
		})
		w.seq++
	}
	if err := w.producer.ProduceSync(w.ctx, batch...).FirstErr(); err != nil {
		return 0, fmt.Errorf("produce %s to %s: %w", w.stream, w.topic, err)
	}
	w.records += int64(len(batch))
	return len(p), nil
}

// Records returns the number of records published.
func (w *KafkaWriter) Records() int64 {
	return w.records
}

// splitLines cuts p into pieces of at most limit bytes, preferring to cut
// after a newline.
func splitLines(p []byte, limit int) [][]byte {
	var parts [][]byte
	for len(p) > limit {
		cut := bytes.LastIndexByte(p[:limit], '\n') + 1
		if cut == 0 {
			cut = limit
		}
		parts = append(parts, p[:cut])
		p = p[cut:]
	}
	if len(p) > 0 {
		parts = append(parts, p)
	}
	return parts
}

// NewKafkaClient builds a producer-only client for the given seed brokers.
func NewKafkaClient(brokers []string, clientID string) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers required")
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(DefaultMaxRecordBytes * 2),
		kgo.RecordPartitioner(kgo.StickyKeyPartitioner(nil)),
	}
	if clientID != "" {
		opts = append(opts, kgo.ClientID(clientID))
	}
	return kgo.NewClient(opts...)
}

// EnsureTopic creates topic if it does not exist. A topic that already
// exists is not an error.
func EnsureTopic(ctx context.Context, client kmsg.Requestor, topic string, partitions int32, replication int16) error {
	req := kmsg.NewPtrCreateTopicsRequest()
	t := kmsg.NewCreateTopicsRequestTopic()
	t.Topic = topic
	t.NumPartitions = partitions
	t.ReplicationFactor = replication
	req.Topics = append(req.Topics, t)
	req.TimeoutMillis = 30000

	resp, err := req.RequestWith(ctx, client)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, rt := range resp.Topics {
		if err := kerr.ErrorForCode(rt.ErrorCode); err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", rt.Topic, err)
		}
	}
	return nil
}
