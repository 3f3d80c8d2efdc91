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

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrContainerTruncated is returned when a read needs more bytes than remain.
	ErrContainerTruncated = errors.New("container truncated")
	// ErrSeekOutOfRange is returned when a computed skip lands outside the container.
	ErrSeekOutOfRange = errors.New("seek outside container")
	// ErrCorruptContainer is returned when decoded fields violate the layout invariants.
	ErrCorruptContainer = errors.New("corrupt container")
)

// ContainerError records the operation and byte offset where decoding failed.
type ContainerError struct {
	Op     string
	Path   string
	Offset int64
	Err    error
}

func (e *ContainerError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s %s at offset %d: %v", e.Op, e.Path, e.Offset, e.Err)
}

func (e *ContainerError) Unwrap() error {
	return e.Err
}

// Kind classifies err for log fields and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrContainerTruncated):
		return "truncated"
	case errors.Is(err, ErrSeekOutOfRange):
		return "seek"
	case errors.Is(err, ErrCorruptContainer):
		return "corrupt"
	case errors.Is(err, fs.ErrNotExist):
		return "not_found"
	case errors.Is(err, fs.ErrPermission):
		return "permission"
	default:
		return "io"
	}
}
