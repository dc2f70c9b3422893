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

import "math"

// Interval is a closed interval over the time axis with either bound
// optionally open (±Inf). It is a value type: two intervals with the
// same bounds are interchangeable. The zero Interval is the
// degenerate [0, 0]; use Unbounded() for "everything".
type Interval struct {
	min, max float64
}

// NewInterval returns the interval [min, max]. A NaN bound is treated
// as open, i.e. −Inf for min and +Inf for max.
func NewInterval(min, max float64) Interval {
	if math.IsNaN(min) {
		min = math.Inf(-1)
	}
	if math.IsNaN(max) {
		max = math.Inf(1)
	}
	return Interval{min: min, max: max}
}

// Unbounded returns the interval (−Inf, +Inf).
func Unbounded() Interval {
	return Interval{min: math.Inf(-1), max: math.Inf(1)}
}

// Contains is true when t falls within the interval, bounds
// inclusive. Open bounds always pass their side of the test.
func (iv Interval) Contains(t float64) bool {
	return t >= iv.min && t <= iv.max
}

// MinMax returns the bounds; an open bound comes back as ±Inf.
func (iv Interval) MinMax() (min, max float64) {
	return iv.min, iv.max
}

// BoundedBelow is true if the lower bound is finite.
func (iv Interval) BoundedBelow() bool { return !math.IsInf(iv.min, -1) }

// BoundedAbove is true if the upper bound is finite.
func (iv Interval) BoundedAbove() bool { return !math.IsInf(iv.max, 1) }
