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

package sink

import (
	"math"
	"testing"

	"github.com/tschart/tschart/chart"
	"github.com/tschart/tschart/series"
)

func TestSeriesKey(t *testing.T) {
	if k := SeriesKey("ch 1", "disk/sda"); k != "ch_1.disk-sda" {
		t.Errorf("SeriesKey = %q", k)
	}
}

func TestTracker_FixedWindowSlides(t *testing.T) {
	tr := NewTracker()
	spec := chart.PlotSpec{WindowHours: 6} // a quarter day

	// Two days of hourly data.
	var batch []series.Sample
	for i := 0; i <= 48; i++ {
		batch = append(batch, series.Sample{T: 50000 + float64(i)/24, Y: float64(i)})
	}
	ts, err := tr.Track("ch", "mon", spec, batch)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}

	// Window covers the trailing 6 hours: 7 hourly points.
	if n := ts.NPts(false, false); n != 7 {
		t.Errorf("windowed NPts = %d, want 7", n)
	}
	min, max := ts.Window().MinMax()
	if !math.IsInf(max, 1) {
		t.Errorf("window max = %v, want +Inf", max)
	}
	if want := 50002 - 0.25; math.Abs(min-want) > 1e-9 {
		t.Errorf("window min = %v, want %v", min, want)
	}

	// Another poll slides the window forward.
	ts, err = tr.Track("ch", "mon", spec, []series.Sample{{T: 50002.5, Y: 1}})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if min, _ := ts.Window().MinMax(); math.Abs(min-(50002.5-0.25)) > 1e-9 {
		t.Errorf("window min = %v after new data", min)
	}

	// Full history is retained regardless of the window.
	if n := ts.NPts(false, true); n != 50 {
		t.Errorf("NPts(full) = %d, want 50", n)
	}
}

func TestTracker_GrowingWindow(t *testing.T) {
	tr := NewTracker()
	spec := chart.PlotSpec{WindowHours: 6, Grow: true}
	ts, err := tr.Track("ch", "mon", spec, []series.Sample{
		{T: 50000, Y: 1}, {T: 50010, Y: 2},
	})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if n := ts.NPts(false, false); n != 2 {
		t.Errorf("growing window hides data: NPts = %d, want 2", n)
	}
	if iv := ts.Window(); iv.BoundedBelow() || iv.BoundedAbove() {
		t.Errorf("growing window is bounded: %v", iv)
	}
}

func TestTracker_SeparateSignals(t *testing.T) {
	tr := NewTracker()
	tr.Track("ch", "a", chart.PlotSpec{}, []series.Sample{{T: 1, Y: 1}})
	tr.Track("ch", "b", chart.PlotSpec{}, []series.Sample{{T: 1, Y: 2}})
	all := tr.Series().All()
	if len(all) != 2 {
		t.Fatalf("registry has %d series, want 2", len(all))
	}
	if all["ch.a"] == nil || all["ch.b"] == nil {
		t.Errorf("registry keys = %v", all)
	}
}

func TestLogSink_PutData(t *testing.T) {
	s := NewLogSink()
	err := s.PutData("ch", "mon", chart.PlotSpec{}, []series.Sample{{T: 1, Y: 2}})
	if err != nil {
		t.Fatalf("PutData: %v", err)
	}
	// A batch that deletes everything leaves an empty window; that
	// must not be an error.
	err = s.PutData("ch", "mon", chart.PlotSpec{}, []series.Sample{series.Delete(1)})
	if err != nil {
		t.Fatalf("PutData after deletion: %v", err)
	}
	if err := s.PutData("ch", "mon", chart.PlotSpec{}, []series.Sample{{T: math.NaN(), Y: 0}}); err == nil {
		t.Errorf("PutData with invalid time did not fail")
	}
}
