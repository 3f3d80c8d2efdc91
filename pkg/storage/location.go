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

package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const s3Scheme = "s3://"

// Location addresses either a local path or an object in an S3 bucket.
type Location struct {
	Bucket string
	Key    string
	Path   string
}

// ParseLocation accepts "s3://bucket/key" or a filesystem path. Local paths
// are made absolute.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.New("empty location")
	}
	if !strings.HasPrefix(raw, s3Scheme) {
		abs, err := filepath.Abs(raw)
		if err != nil {
			return Location{}, fmt.Errorf("resolve %s: %w", raw, err)
		}
		return Location{Path: abs}, nil
	}
	rest := strings.TrimPrefix(raw, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return Location{}, fmt.Errorf("invalid s3 location %q: want s3://bucket/key", raw)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// Remote reports whether the location names an S3 object.
func (l Location) Remote() bool {
	return l.Bucket != ""
}

// WithSuffix returns the location with suffix appended to its key or path.
func (l Location) WithSuffix(suffix string) Location {
	if l.Remote() {
		l.Key += suffix
		return l
	}
	l.Path += suffix
	return l
}

func (l Location) String() string {
	if l.Remote() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Path
}
