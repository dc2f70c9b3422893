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

// Package sink provides concrete chart.Sink implementations and the
// Tracker they share. A Tracker owns the per-sink registry of
// TimeSeries and applies the window policy (fixed span sliding with
// the data, or growing) on every batch of samples it accepts.
package sink

import (
	"math"

	"github.com/tschart/tschart/chart"
	"github.com/tschart/tschart/misc"
	"github.com/tschart/tschart/series"
)

// Tracker accumulates incoming samples into per-signal TimeSeries and
// keeps each series' window in line with its PlotSpec. Concrete sinks
// embed it and render/archive whatever Track returns.
type Tracker struct {
	tsc *series.Cache
}

func NewTracker() *Tracker {
	return &Tracker{tsc: series.NewCache()}
}

// SeriesKey is the registry key for a chart/monitor pair, a dotted
// name with both parts sanitized.
func SeriesKey(chartId, monitorId string) string {
	return misc.SanitizeName(chartId) + "." + misc.SanitizeName(monitorId)
}

// Track merges data into the series for the chart/monitor pair and
// re-applies the window policy: with Grow set the window is
// unbounded, otherwise it slides to cover the last WindowHours of
// data (open-ended above, so samples arriving before the next poll
// stay visible). Returns the series so the caller can query it.
func (tr *Tracker) Track(chartId, monitorId string, spec chart.PlotSpec, data []series.Sample) (*series.TimeSeries, error) {
	ts := tr.tsc.Get(SeriesKey(chartId, monitorId))
	if err := ts.Add(data...); err != nil {
		return nil, err
	}

	if spec.Grow || spec.WindowHours <= 0 {
		ts.SetWindow(series.Unbounded())
		return ts, nil
	}
	b, err := ts.Bounds(true)
	if err != nil {
		// Nothing stored (e.g. the batch was all deletions); leave
		// the window alone.
		if err == series.ErrNoData {
			return ts, nil
		}
		return nil, err
	}
	ts.SetWindow(series.NewInterval(b.TMax-spec.WindowHours/24, math.Inf(1)))
	return ts, nil
}

// Series exposes the underlying registry, for redraw-everything
// passes and tests.
func (tr *Tracker) Series() *series.Cache {
	return tr.tsc
}
