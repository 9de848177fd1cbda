// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats measures the time taken, and memory allocated, by some piece of
// work.
type PerfStats struct {
	start time.Time
	mem   runtime.MemStats
}

// NewPerfStats starts measuring from now.
func NewPerfStats() *PerfStats {
	p := &PerfStats{start: time.Now()}
	runtime.ReadMemStats(&p.mem)
	//
	return p
}

// Log reports (at debug level) what was used since measuring started.
func (p *PerfStats) Log(prefix string) {
	var now runtime.MemStats
	//
	runtime.ReadMemStats(&now)
	//
	log.WithFields(log.Fields{
		"seconds": time.Since(p.start).Seconds(),
		"mb":      (now.TotalAlloc - p.mem.TotalAlloc) / (1024 * 1024),
		"gc":      now.NumGC - p.mem.NumGC,
	}).Debug(prefix)
}
