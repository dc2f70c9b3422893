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

// Package chart binds data-source monitors to data sinks. On every
// Update a chart pulls whatever is new from each of its monitors and
// pushes it into every sink. A failing monitor or sink is logged and
// skipped for the tick, it never prevents the others from being
// serviced.
package chart

import (
	"log"

	"github.com/tschart/tschart/series"
)

// Monitor is a data source adapter. GetData returns samples that have
// not yet been returned for this chart id; the monitor owns the
// "what's new since last call" bookkeeping, keyed by chart id. An
// empty result means nothing new.
type Monitor interface {
	GetData(chartId string) ([]series.Sample, error)
}

// Sink consumes samples pulled by a chart, typically by feeding them
// into a series.TimeSeries it owns and then drawing or archiving the
// result.
type Sink interface {
	PutData(chartId, monitorId string, spec PlotSpec, data []series.Sample) error
}

// PlotSpec is the per-signal display configuration handed through to
// sinks. The recognized fields are enumerated here explicitly; there
// is no by-name option dispatch.
type PlotSpec struct {
	WindowHours float64 // visible time span; 0 with Grow unset means unbounded
	Grow        bool    // window grows from the first sample instead of sliding
	Autoscale   bool
	Color       string
	Style       string
}

type chartMonitor struct {
	id   string
	spec PlotSpec
	mon  Monitor
}

type chartSink struct {
	id   string
	sink Sink
}

// Chart is a set of monitors wired to a set of sinks under a chart
// id. It holds no sample data itself.
type Chart struct {
	id       string
	monitors []chartMonitor
	sinks    []chartSink
}

func New(id string) *Chart {
	return &Chart{id: id}
}

func (c *Chart) Id() string { return c.id }

// AddMonitor registers a monitor under monitorId with its display
// spec. Registration order is poll order.
func (c *Chart) AddMonitor(monitorId string, spec PlotSpec, m Monitor) {
	c.monitors = append(c.monitors, chartMonitor{id: monitorId, spec: spec, mon: m})
}

// AddSink registers a sink. Every sink sees every monitor's data.
func (c *Chart) AddSink(sinkId string, s Sink) {
	c.sinks = append(c.sinks, chartSink{id: sinkId, sink: s})
}

// Update runs one pull-and-push cycle: for each monitor, fetch new
// samples and hand non-empty results to every sink. Errors are
// isolated per monitor/sink pair.
func (c *Chart) Update() {
	for _, cm := range c.monitors {
		data, err := cm.mon.GetData(c.id)
		if err != nil {
			log.Printf("chart %s: monitor %s: %v", c.id, cm.id, err)
			continue
		}
		if len(data) == 0 {
			continue
		}
		for _, cs := range c.sinks {
			if err := cs.sink.PutData(c.id, cm.id, cm.spec, data); err != nil {
				log.Printf("chart %s: sink %s (monitor %s): %v", c.id, cs.id, cm.id, err)
			}
		}
	}
}
