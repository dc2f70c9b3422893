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

package monitor

import (
	"math"
	"sync"
	"time"

	"github.com/tschart/tschart/misc"
	"github.com/tschart/tschart/series"
	"golang.org/x/time/rate"
)

// Sine generates a sinusoid sampled at a fixed step, one period per
// span. Handy for exercising charts without any real data source. A
// rate limiter caps how many points a burst of catch-up polling may
// emit.
type Sine struct {
	mu      sync.Mutex
	step    time.Duration
	span    time.Duration
	amp     float64
	limiter *rate.Limiter
	last    map[string]time.Time // per chart: end of generated range
}

// NewSine returns a generator stepping every step with one full
// period per span, scaled by amp. Zero arguments get defaults of 1s,
// 10min and 100.
func NewSine(step, span time.Duration, amp float64, maxPerSec int) *Sine {
	if step <= 0 {
		step = time.Second
	}
	if span <= 0 {
		span = 600 * time.Second
	}
	if amp == 0 {
		amp = 100
	}
	if maxPerSec <= 0 {
		maxPerSec = 1000
	}
	return &Sine{
		step:    step,
		span:    span,
		amp:     amp,
		limiter: rate.NewLimiter(rate.Limit(maxPerSec), maxPerSec),
		last:    make(map[string]time.Time),
	}
}

func (m *Sine) GetData(chartId string) ([]series.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	last, ok := m.last[chartId]
	if !ok {
		last = now.Add(-m.step)
	}

	var out []series.Sample
	for t := last.Add(m.step); !t.After(now); t = t.Add(m.step) {
		if !m.limiter.Allow() {
			break
		}
		out = append(out, series.Sample{T: misc.TimeToMJD(t), Y: sinTime(t, m.span) * m.amp})
		last = t
	}
	m.last[chartId] = last
	return out, nil
}

// Given a time, return a Y value that will draw a sinusoid spanning span.
func sinTime(t time.Time, span time.Duration) float64 {
	seconds := span.Nanoseconds() / 1e9
	x := 2 * math.Pi / float64(seconds) * float64(t.Unix()%seconds)
	return math.Sin(x)
}
