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

package series

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// TimeSeries stores samples for one signal, strictly ascending by
// time with no duplicate timestamps and no deletion markers. A
// current window restricts queries but never affects storage. Min/max
// aggregates over the full series and over the window are cached;
// Add and SetWindow invalidate them as needed.
//
// A TimeSeries carries its own lock so that a poll loop and a
// renderer may run in separate goroutines. Series are independent,
// there is no cross-series locking.
type TimeSeries struct {
	mu      sync.RWMutex
	id      string
	samples []Sample
	win     Interval

	// Cached aggregates, nil when invalid.
	fullBounds *Bounds
	winBounds  *Bounds
}

// NewTimeSeries returns an empty series identified by id, with an
// unbounded window. The id is external bookkeeping only, it plays no
// role in merging.
func NewTimeSeries(id string) *TimeSeries {
	return &TimeSeries{id: id, win: Unbounded()}
}

func (ts *TimeSeries) Id() string { return ts.id }

// Add merges a batch of samples into the series. Later samples win
// over earlier ones at the same timestamp, across and within
// batches. A deletion marker (NaN value) removes the stored sample at
// its time. A NaN or ±Inf timestamp is a caller error and rejects the
// whole batch before anything is modified.
//
// Three paths, cheapest applicable wins: batches strictly newer than
// everything stored are appended and extend the full-bounds cache in
// place; a batch that starts exactly at the newest stored time
// replaces that point and appends the rest; anything interleaving
// with history is merged by timestamp with a full resort.
func (ts *TimeSeries) Add(samples ...Sample) error {
	for _, s := range samples {
		if math.IsNaN(s.T) || math.IsInf(s.T, 0) {
			return fmt.Errorf("series %q: invalid sample time: %v", ts.id, s.T)
		}
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	// The window composition may change on any add.
	ts.winBounds = nil

	if len(samples) == 0 {
		return nil
	}

	batch := make([]Sample, len(samples))
	copy(batch, samples)
	sort.SliceStable(batch, func(i, j int) bool { return batch[i].T < batch[j].T })
	batch = collapseDups(batch)

	n := len(ts.samples)
	switch {
	case n == 0 || batch[0].T > ts.samples[n-1].T:
		ts.appendTail(batch, true)
	case batch[0].T == ts.samples[n-1].T:
		// Overwrite of the most recent point. The replaced value may
		// have been an extreme, so the full cache cannot be extended,
		// only recomputed.
		ts.samples = ts.samples[:n-1]
		ts.fullBounds = nil
		ts.appendTail(batch, false)
	default:
		ts.mergeInterleaved(batch)
	}
	return nil
}

// collapseDups keeps the last of any run of equal timestamps. The
// input must be sorted (stably, so arrival order breaks ties).
func collapseDups(batch []Sample) []Sample {
	out := batch[:0]
	for i, s := range batch {
		if i+1 < len(batch) && batch[i+1].T == s.T {
			continue
		}
		out = append(out, s)
	}
	return out
}

// appendTail appends a batch known to be strictly newer than the
// stored data. Deletion markers have nothing to delete here and are
// dropped. With incremental set, an existing full-bounds cache is
// updated in place instead of being discarded.
func (ts *TimeSeries) appendTail(batch []Sample, incremental bool) {
	for _, s := range batch {
		if s.Deleted() {
			continue
		}
		ts.samples = append(ts.samples, s)
		if incremental && ts.fullBounds != nil {
			b := ts.fullBounds
			b.TMax = s.T
			if s.Y < b.YMin {
				b.YMin = s.Y
			}
			if s.Y > b.YMax {
				b.YMax = s.Y
			}
		}
	}
}

// mergeInterleaved folds a batch that overlaps or precedes stored
// data: union by timestamp, batch wins, deletions remove, then
// re-sort.
func (ts *TimeSeries) mergeInterleaved(batch []Sample) {
	m := make(map[float64]float64, len(ts.samples)+len(batch))
	for _, s := range ts.samples {
		m[s.T] = s.Y
	}
	for _, s := range batch {
		if s.Deleted() {
			delete(m, s.T)
		} else {
			m[s.T] = s.Y
		}
	}

	merged := make([]Sample, 0, len(m))
	for t, y := range m {
		merged = append(merged, Sample{T: t, Y: y})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].T < merged[j].T })
	ts.samples = merged
	ts.fullBounds = nil
}

// SetWindow replaces the current window. Stored samples and the
// full-range cache are untouched; only the windowed cache is
// invalidated.
func (ts *TimeSeries) SetWindow(win Interval) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.win = win
	ts.winBounds = nil
}

// Window returns the current window.
func (ts *TimeSeries) Window() Interval {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.win
}

// windowRange returns the index range [lo, hi) of samples inside the
// window. Binary search on both edges, so locating the window is
// O(log N) regardless of history size. Callers must hold the lock.
func (ts *TimeSeries) windowRange() (lo, hi int) {
	lo, hi = 0, len(ts.samples)
	if ts.win.BoundedBelow() {
		min := ts.win.min
		lo = sort.Search(len(ts.samples), func(i int) bool { return ts.samples[i].T >= min })
	}
	if ts.win.BoundedAbove() {
		max := ts.win.max
		hi = sort.Search(len(ts.samples), func(i int) bool { return ts.samples[i].T > max })
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Data returns the samples inside the current window in ascending
// time order. With outside set, the single nearest sample beyond each
// window edge is included as well, so that a line drawn through the
// window can anchor to its off-screen neighbors. At most one extra
// point per side.
func (ts *TimeSeries) Data(outside bool) []Sample {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	lo, hi := ts.windowRange()
	if outside {
		if lo > 0 {
			lo--
		}
		if hi < len(ts.samples) {
			hi++
		}
	}
	out := make([]Sample, hi-lo)
	copy(out, ts.samples[lo:hi])
	return out
}

// AllData returns every stored sample regardless of the window.
func (ts *TimeSeries) AllData() []Sample {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	out := make([]Sample, len(ts.samples))
	copy(out, ts.samples)
	return out
}

// Columns returns the windowed data as parallel time and value
// slices, same contents as Data.
func (ts *TimeSeries) Columns(outside bool) (t, y []float64) {
	data := ts.Data(outside)
	t = make([]float64, len(data))
	y = make([]float64, len(data))
	for i, s := range data {
		t[i] = s.T
		y[i] = s.Y
	}
	return t, y
}

// Bounds returns min/max of time and value over the window, or over
// the entire series with full set. Results are cached until the next
// Add or SetWindow. An empty scope returns ErrNoData.
func (ts *TimeSeries) Bounds(full bool) (Bounds, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if full {
		if ts.fullBounds == nil {
			b, ok := boundsOf(ts.samples)
			if !ok {
				return Bounds{}, ErrNoData
			}
			ts.fullBounds = &b
		}
		return *ts.fullBounds, nil
	}

	if ts.winBounds == nil {
		lo, hi := ts.windowRange()
		b, ok := boundsOf(ts.samples[lo:hi])
		if !ok {
			return Bounds{}, ErrNoData
		}
		ts.winBounds = &b
	}
	return *ts.winBounds, nil
}

// boundsOf computes Bounds over a sorted slice. ok is false when the
// slice is empty.
func boundsOf(samples []Sample) (Bounds, bool) {
	if len(samples) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		TMin: samples[0].T,
		TMax: samples[len(samples)-1].T,
		YMin: samples[0].Y,
		YMax: samples[0].Y,
	}
	for _, s := range samples[1:] {
		if s.Y < b.YMin {
			b.YMin = s.Y
		}
		if s.Y > b.YMax {
			b.YMax = s.Y
		}
	}
	return b, true
}

// NPts returns the number of samples Data (or AllData, with full set)
// would return under the same flags.
func (ts *TimeSeries) NPts(outside, full bool) int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if full {
		return len(ts.samples)
	}
	lo, hi := ts.windowRange()
	n := hi - lo
	if outside {
		if lo > 0 {
			n++
		}
		if hi < len(ts.samples) {
			n++
		}
	}
	return n
}

// PrevData returns the stored sample with the largest time strictly
// less than t. The current window is ignored, the whole history is
// searched. ok is false if no sample precedes t.
func (ts *TimeSeries) PrevData(t float64) (s Sample, ok bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	i := sort.Search(len(ts.samples), func(i int) bool { return ts.samples[i].T >= t })
	if i == 0 {
		return Sample{}, false
	}
	return ts.samples[i-1], true
}
