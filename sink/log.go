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
	"log"

	"github.com/tschart/tschart/chart"
	"github.com/tschart/tschart/series"
)

// LogSink reports the windowed state of every signal it tracks
// through the standard log. Useful headless and as a wiring check.
type LogSink struct {
	*Tracker
}

func NewLogSink() *LogSink {
	return &LogSink{Tracker: NewTracker()}
}

func (s *LogSink) PutData(chartId, monitorId string, spec chart.PlotSpec, data []series.Sample) error {
	ts, err := s.Track(chartId, monitorId, spec, data)
	if err != nil {
		return err
	}

	b, err := ts.Bounds(false)
	if err == series.ErrNoData {
		log.Printf("%s: %d new, window empty", ts.Id(), len(data))
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("%s: %d new, window: %d pts t [%f %f] y [%g %g]",
		ts.Id(), len(data), ts.NPts(false, false), b.TMin, b.TMax, b.YMin, b.YMax)
	return nil
}
