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

import "fmt"

// sliceNames splits a packed name buffer at consecutive index boundaries.
// The returned names share buf's backing array.
func sliceNames(buf []byte, index []uint64) ([][]byte, error) {
	if len(index) == 0 {
		return nil, fmt.Errorf("empty name index")
	}
	if last := index[len(index)-1]; last != uint64(len(buf)) {
		return nil, fmt.Errorf("name index ends at %d, name buffer holds %d bytes", last, len(buf))
	}
	names := make([][]byte, len(index)-1)
	for i := range names {
		start, end := index[i], index[i+1]
		if start > end {
			return nil, fmt.Errorf("name index decreases at entry %d (%d > %d)", i, start, end)
		}
		names[i] = buf[start:end:end]
	}
	return names, nil
}
