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
	"io"
	"os"
)

// Object is a seekable, sized container source. Local files and S3 range
// readers both satisfy it.
type Object interface {
	io.ReadSeeker
	io.Closer
	Size() int64
	Name() string
}

type fileObject struct {
	*os.File
	size int64
}

// OpenFile opens a local container file.
func OpenFile(path string) (Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ContainerError{Op: "open", Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &ContainerError{Op: "stat", Path: path, Err: err}
	}
	return &fileObject{File: f, size: info.Size()}, nil
}

func (f *fileObject) Size() int64 {
	return f.size
}
