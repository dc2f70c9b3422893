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

// Package series is the time series storage and windowing engine. At
// its core is the TimeSeries, an ordered store of (time, value)
// samples for a single signal. Incoming batches are merged in time
// order, a current view window restricts queries to the visible time
// range, and min/max aggregates over both the full data and the
// window are cached so that repeated queries between updates are
// cheap.
//
// Throughout this package time is a Modified Julian Date (MJD), a
// continuous float64 day count. Nothing here depends on the unit
// beyond it being a totally ordered float; any consistent float time
// axis works.
//
// An incoming sample whose value is NaN is a deletion marker: it
// removes any previously stored sample at that time and is never
// stored itself. This mirrors the convention of value-less updates
// meaning "no data".
package series

import (
	"errors"
	"math"
)

// Sample is a single (time, value) measurement. T is the time in MJD.
type Sample struct {
	T float64
	Y float64
}

// Deleted is true if the sample is a deletion marker rather than a
// measurement.
func (s Sample) Deleted() bool {
	return math.IsNaN(s.Y)
}

// Delete returns a deletion marker for time t. Adding it to a
// TimeSeries removes the stored sample at t, if there is one.
func Delete(t float64) Sample {
	return Sample{T: t, Y: math.NaN()}
}

// Bounds are the min/max of time and value over some scope of a
// TimeSeries (the whole series or the current window).
type Bounds struct {
	TMin, TMax float64
	YMin, YMax float64
}

// ErrNoData is returned by queries whose scope (window or full
// series) contains no samples. It is the only "empty" signal; bounds
// are never fabricated from an empty scope.
var ErrNoData = errors.New("no data in requested range")
