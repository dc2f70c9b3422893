//
// Copyright 2017 The Tschart Authors. All Rights Reserved.
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

// Package monitor provides the built-in data source adapters: a
// synthetic sinusoid generator, process runtime stats, a tailed text
// file, a graphite whisper archive and a graphite pickle protocol
// listener. Every monitor keeps per-chart bookkeeping so that a poll
// never replays samples already delivered for the same chart id.
package monitor

import (
	"sync"

	"github.com/tschart/tschart/series"
)

// feed buffers samples as they arrive from an asynchronous source
// (a tailed file, a network listener) and hands each chart the ones
// it has not consumed yet.
//
// TODO: drop samples already consumed by every chart registered with
// the owning daemon, the buffer currently grows for the process
// lifetime just like the series themselves.
type feed struct {
	mu      sync.Mutex
	samples []series.Sample
	pos     map[string]int
}

func (f *feed) add(s series.Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, s)
}

// take returns everything accumulated since the last take for this
// chart id, in arrival order.
func (f *feed) take(chartId string) []series.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pos == nil {
		f.pos = make(map[string]int)
	}
	i := f.pos[chartId]
	if i >= len(f.samples) {
		return nil
	}
	out := make([]series.Sample, len(f.samples)-i)
	copy(out, f.samples[i:])
	f.pos[chartId] = len(f.samples)
	return out
}
