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
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tschart/tschart/misc"
)

// writeWhisperFile lays out a minimal single-archive whisper file. The
// format is fixed: a big-endian header followed by (timestamp, value)
// points; empty slots carry a zero timestamp.
func writeWhisperFile(t *testing.T, path string, points map[uint32]float64) {
	t.Helper()

	const (
		secondsPerPoint = 60
		archivePoints   = 10
	)
	fd, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()

	hdr := []interface{}{
		uint32(1),                               // aggregation method (average)
		uint32(secondsPerPoint * archivePoints), // max retention
		float32(0.5),                            // xFilesFactor
		uint32(1),                               // archive count
		uint32(16 + 12),                         // archive 0: offset
		uint32(secondsPerPoint),                 // archive 0: seconds per point
		uint32(archivePoints),                   // archive 0: points
	}
	for _, v := range hdr {
		if err := binary.Write(fd, binary.BigEndian, v); err != nil {
			t.Fatal(err)
		}
	}

	slots := make([]struct {
		Timestamp uint32
		Value     float64
	}, archivePoints)
	i := 0
	for ts, v := range points {
		slots[i].Timestamp = ts
		slots[i].Value = v
		i++
	}
	for _, p := range slots {
		if err := binary.Write(fd, binary.BigEndian, p.Timestamp); err != nil {
			t.Fatal(err)
		}
		if err := binary.Write(fd, binary.BigEndian, p.Value); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWhisper_GetData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metric.wsp")
	writeWhisperFile(t, path, map[uint32]float64{
		1480000120: 2.5,
		1480000060: 1.5,
	})

	m, err := NewWhisper(path)
	if err != nil {
		t.Fatalf("NewWhisper: %v", err)
	}
	defer m.Stop()

	got, err := m.GetData("ch")
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2 (zero slots skipped)", len(got))
	}
	// Time-ordered even if the archive ring was not.
	if got[0].T >= got[1].T {
		t.Errorf("samples not sorted: %v >= %v", got[0].T, got[1].T)
	}
	if want := misc.TimeToMJD(time.Unix(1480000060, 0)); got[0].T != want {
		t.Errorf("T = %v, want %v", got[0].T, want)
	}
	if got[0].Y != 1.5 || got[1].Y != 2.5 {
		t.Errorf("values = %v, %v; want 1.5, 2.5", got[0].Y, got[1].Y)
	}

	// Nothing new on a second poll.
	if again, _ := m.GetData("ch"); len(again) != 0 {
		t.Errorf("second poll replayed %d samples", len(again))
	}
	// But a fresh chart gets the full dump.
	if other, _ := m.GetData("other"); len(other) != 2 {
		t.Errorf("new chart got %d samples, want 2", len(other))
	}
}

func TestWhisper_MissingFile(t *testing.T) {
	if _, err := NewWhisper(filepath.Join(t.TempDir(), "nope.wsp")); err == nil {
		t.Errorf("missing file did not error")
	}
}
