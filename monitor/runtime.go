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
	"fmt"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/cpu"
	"github.com/tschart/tschart/misc"
	"github.com/tschart/tschart/series"
)

// Runtime samples a process/runtime statistic at poll time: "cpu" is
// the system CPU busy percentage, "heap" the Go heap in use.
type Runtime struct {
	mu     sync.Mutex
	metric string
	last   map[string]float64 // per chart: MJD of last emitted sample
}

func NewRuntime(metric string) (*Runtime, error) {
	switch metric {
	case "cpu", "heap":
	default:
		return nil, fmt.Errorf("unknown runtime metric %q (valid: cpu, heap)", metric)
	}
	return &Runtime{metric: metric, last: make(map[string]float64)}, nil
}

func (m *Runtime) GetData(chartId string) ([]series.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mjd := misc.MJDNow()
	if mjd <= m.last[chartId] {
		return nil, nil
	}

	var y float64
	switch m.metric {
	case "cpu":
		y = runtimeCpuPercent()
	case "heap":
		y = float64(runtimeMemory())
	}
	m.last[chartId] = mjd
	return []series.Sample{{T: mjd, Y: y}}, nil
}

func runtimeMemory() uint64 {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return mem.Alloc
}

func runtimeCpuPercent() float64 {
	ps, _ := cpu.Percent(0, false)
	if len(ps) > 0 {
		return ps[0]
	}
	return 0
}
