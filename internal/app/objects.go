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
	"context"
	"fmt"
	"os"

	"github.com/novatechflow/hifitxt/pkg/container"
	"github.com/novatechflow/hifitxt/pkg/storage"
)

// s3Client returns the client for bucket, creating it on first use.
func (r *Runner) s3Client(ctx context.Context, bucket string) (storage.S3Client, error) {
	if client, ok := r.s3Clients[bucket]; ok {
		return client, nil
	}
	client, err := r.newS3(ctx, r.cfg.S3.StorageConfig(bucket))
	if err != nil {
		return nil, fmt.Errorf("s3 client for %s: %w", bucket, err)
	}
	r.s3Clients[bucket] = client
	return client, nil
}

func (r *Runner) openInput(ctx context.Context, loc storage.Location) (container.Object, error) {
	if !loc.Remote() {
		return container.OpenFile(loc.Path)
	}
	client, err := r.s3Client(ctx, loc.Bucket)
	if err != nil {
		return nil, err
	}
	return storage.NewRangeReader(ctx, client, loc, r.cfg.S3.BlockBytes, r.cache)
}

// checkInputs reports a missing input before any decoding starts. Remote
// inputs share the prefix of in, so one listing covers all of them.
func (r *Runner) checkInputs(ctx context.Context, in storage.Location, inputs []storage.Location) error {
	if !in.Remote() {
		for _, loc := range inputs {
			if _, err := os.Stat(loc.Path); err != nil {
				return fmt.Errorf("input %s: %w", loc, err)
			}
		}
		return nil
	}
	client, err := r.s3Client(ctx, in.Bucket)
	if err != nil {
		return err
	}
	objs, err := client.ListObjects(ctx, in.Key)
	if err != nil {
		return fmt.Errorf("list inputs %s: %w", in, err)
	}
	present := make(map[string]bool, len(objs))
	for _, obj := range objs {
		present[obj.Key] = true
	}
	for _, loc := range inputs {
		if !present[loc.Key] {
			return fmt.Errorf("input %s: %w", loc, storage.ErrObjectNotFound)
		}
	}
	return nil
}
