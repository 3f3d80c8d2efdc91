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
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const bytesPerGB = 1 << 30

// Report is the end-of-run resource summary printed on stderr.
type Report struct {
	Version string
	Args    []string
	Real    time.Duration
	Usage   Usage
}

// NewReport captures the current usage against clock.
func NewReport(version string, args []string, clock *RunClock) Report {
	usage, _ := ReadUsage()
	return Report{
		Version: version,
		Args:    args,
		Real:    clock.Elapsed(),
		Usage:   usage,
	}
}

func (r Report) String() string {
	var b strings.Builder
	if r.Version != "" {
		fmt.Fprintf(&b, "Version: %s\n", r.Version)
	}
	b.WriteString("CMD:")
	for _, arg := range r.Args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	fmt.Fprintf(&b, "\nReal time: %d sec; CPU: %d sec; Peak RSS: %.3f GB\n",
		int64(r.Real.Seconds()),
		int64(r.Usage.CPU.Seconds()),
		float64(r.Usage.PeakRSSBytes)/bytesPerGB)
	return b.String()
}

// HumanBytes renders n in IEC units for log lines.
func HumanBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// HumanCount renders n with thousands separators.
func HumanCount(n int64) string {
	return humanize.Comma(n)
}
