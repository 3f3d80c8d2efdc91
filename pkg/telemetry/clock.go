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
	"math"
	"time"
)

// RunClock measures wall time for one run. It is explicit state owned by the
// caller, not a process global.
type RunClock struct {
	now   func() time.Time
	start time.Time
	last  time.Time
}

// NewRunClock starts a clock at the current time.
func NewRunClock() *RunClock {
	return newRunClock(time.Now)
}

func newRunClock(now func() time.Time) *RunClock {
	t := now()
	return &RunClock{now: now, start: t, last: t}
}

// Elapsed returns the time since the clock started.
func (c *RunClock) Elapsed() time.Duration {
	return c.now().Sub(c.start)
}

// Interval returns the time since the previous Interval call (or since start)
// truncated to milliseconds, and resets the mark.
func (c *RunClock) Interval() time.Duration {
	t := c.now()
	d := t.Sub(c.last)
	c.last = t
	return d.Truncate(time.Millisecond)
}

// Seconds formats d as seconds with millisecond precision.
func Seconds(d time.Duration) float64 {
	return math.Floor(d.Seconds()*1000) / 1000
}
