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
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/nxadm/tail"
	"github.com/tschart/tschart/series"
)

// File tails a text file of "mjd value" lines, one sample per line. A
// value of "-" is the deletion marker. Blank lines and lines starting
// with # are ignored. The file may be rotated, tailing follows the
// name.
type File struct {
	feed
	path string
	t    *tail.Tail
}

func NewFile(path string) (*File, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow: true,
		ReOpen: true,
		Logger: tail.DiscardingLogger,
	})
	if err != nil {
		return nil, err
	}
	f := &File{path: path, t: t}
	go f.run()
	return f, nil
}

func (f *File) run() {
	for line := range f.t.Lines {
		if line.Err != nil {
			log.Printf("monitor: tailing %s: %v", f.path, line.Err)
			continue
		}
		s, ok, err := parseSampleLine(line.Text)
		if err != nil {
			log.Printf("monitor: %s: skipping line: %v", f.path, err)
			continue
		}
		if ok {
			f.add(s)
		}
	}
}

// parseSampleLine parses "mjd value". ok is false for blank and
// comment lines.
func parseSampleLine(text string) (s series.Sample, ok bool, err error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return series.Sample{}, false, nil
	}
	if len(fields) != 2 {
		return series.Sample{}, false, fmt.Errorf("want 2 fields, got %d: %q", len(fields), text)
	}
	t, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return series.Sample{}, false, fmt.Errorf("bad time %q: %v", fields[0], err)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return series.Sample{}, false, fmt.Errorf("bad time %q", fields[0])
	}
	if fields[1] == "-" {
		return series.Delete(t), true, nil
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return series.Sample{}, false, fmt.Errorf("bad value %q: %v", fields[1], err)
	}
	return series.Sample{T: t, Y: y}, true, nil
}

func (f *File) GetData(chartId string) ([]series.Sample, error) {
	return f.take(chartId), nil
}

// Stop ends the tailing goroutine.
func (f *File) Stop() error {
	return f.t.Stop()
}
