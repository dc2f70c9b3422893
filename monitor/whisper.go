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
	"os"
	"sort"
	"sync"
	"time"

	"github.com/kisielk/whisper-go/whisper"
	"github.com/tschart/tschart/misc"
	"github.com/tschart/tschart/series"
)

// Whisper reads a graphite whisper archive and delivers its points as
// samples, incrementally: each poll returns only points newer than
// what the chart has already seen. The highest-resolution archive is
// used.
type Whisper struct {
	mu   sync.Mutex
	path string
	fd   *os.File
	w    *whisper.Whisper
	last map[string]uint32 // per chart: newest delivered timestamp
}

func NewWhisper(path string) (*Whisper, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	w, err := whisper.OpenWhisper(fd)
	if err != nil {
		fd.Close()
		return nil, err
	}
	return &Whisper{path: path, fd: fd, w: w, last: make(map[string]uint32)}, nil
}

func (m *Whisper) GetData(chartId string) ([]series.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	points, err := m.w.DumpArchive(0)
	if err != nil {
		return nil, err
	}

	last := m.last[chartId]
	fresh := make([]whisper.Point, 0, len(points))
	for _, p := range points {
		// Unfilled whisper slots have a zero timestamp.
		if p.Timestamp != 0 && p.Timestamp > last {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	// Archives are ring-ordered, not time-ordered.
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Timestamp < fresh[j].Timestamp })

	out := make([]series.Sample, len(fresh))
	for i, p := range fresh {
		out[i] = series.Sample{
			T: misc.TimeToMJD(time.Unix(int64(p.Timestamp), 0)),
			Y: p.Value,
		}
	}
	m.last[chartId] = fresh[len(fresh)-1].Timestamp
	return out, nil
}

// Stop closes the underlying archive file.
func (m *Whisper) Stop() error {
	return m.fd.Close()
}
