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

package telemetry

import (
	"errors"
	"time"
)

var errUsageUnsupported = errors.New("resource usage not supported on this platform")

// Usage is the resource consumption of the current process.
type Usage struct {
	CPU          time.Duration
	PeakRSSBytes uint64
}

// ReadUsage reports CPU time (user plus system) and peak resident set size.
func ReadUsage() (Usage, error) {
	return readUsage()
}
