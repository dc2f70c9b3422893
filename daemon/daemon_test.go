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

package daemon

import (
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

const testConfigText = `
pid-file = "tschart.pid"
log-file = "log/tschart.log"
log-cycle-interval = "1d"
poll-interval = "500ms"
monitor-cache-size = 8

[[chart]]
name = "demo"
window-hours = 6.0
autoscale = true

  [[chart.monitor]]
  name = "wave"
  type = "sine"
  step = "250ms"
  span = "2m"
  amplitude = 10.0
  color = "red"

  [[chart.monitor]]
  name = "cpu"
  type = "runtime"
  metric = "cpu"

  [[chart.sink]]
  type = "log"

[[chart]]
name = "archive"
grow = true

  [[chart.monitor]]
  name = "wsp"
  type = "whisper"
  path = "/var/lib/graphite/whisper/foo.wsp"

  [[chart.sink]]
  type = "postgres"
`

func TestConfig_Decode(t *testing.T) {
	cfg := &Config{}
	if _, err := toml.Decode(testConfigText, cfg); err != nil {
		t.Fatalf("decoding config: %v", err)
	}

	if cfg.PidPath != "tschart.pid" {
		t.Errorf("PidPath = %q", cfg.PidPath)
	}
	if cfg.LogCycle.Duration != 24*time.Hour {
		t.Errorf("LogCycle = %v, want 24h", cfg.LogCycle.Duration)
	}
	if cfg.PollInterval.Duration != 500*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval.Duration)
	}
	if len(cfg.Charts) != 2 {
		t.Fatalf("got %d charts, want 2", len(cfg.Charts))
	}

	demo := cfg.Charts[0]
	if demo.Name != "demo" || demo.WindowHours != 6.0 || !demo.Autoscale || demo.Grow {
		t.Errorf("demo chart = %+v", demo)
	}
	if len(demo.Monitors) != 2 {
		t.Fatalf("demo has %d monitors, want 2", len(demo.Monitors))
	}
	wave := demo.Monitors[0]
	if wave.Type != "sine" || wave.Step.Duration != 250*time.Millisecond ||
		wave.Span.Duration != 2*time.Minute || wave.Amplitude != 10.0 || wave.Color != "red" {
		t.Errorf("wave monitor = %+v", wave)
	}
	if demo.Monitors[1].Metric != "cpu" {
		t.Errorf("cpu monitor = %+v", demo.Monitors[1])
	}
	if len(demo.Sinks) != 1 || demo.Sinks[0].Type != "log" {
		t.Errorf("demo sinks = %+v", demo.Sinks)
	}

	if !cfg.Charts[1].Grow {
		t.Errorf("archive chart should grow")
	}
	if !cfg.usesPostgres() {
		t.Errorf("usesPostgres() = false with a postgres sink configured")
	}
}

func TestConfig_ProcessChartSpecs(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		if _, err := toml.Decode(testConfigText, cfg); err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	if err := valid().processChartSpecs(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		desc  string
		munge func(*Config)
	}{
		{"no charts", func(c *Config) { c.Charts = nil }},
		{"unnamed chart", func(c *Config) { c.Charts[0].Name = "" }},
		{"duplicate names", func(c *Config) { c.Charts[1].Name = c.Charts[0].Name }},
		{"negative window", func(c *Config) { c.Charts[0].WindowHours = -1 }},
		{"no monitors", func(c *Config) { c.Charts[0].Monitors = nil }},
		{"unnamed monitor", func(c *Config) { c.Charts[0].Monitors[0].Name = "" }},
		{"bad monitor type", func(c *Config) { c.Charts[0].Monitors[0].Type = "bogus" }},
		{"bad runtime metric", func(c *Config) { c.Charts[0].Monitors[1].Metric = "bogus" }},
		{"whisper without path", func(c *Config) { c.Charts[1].Monitors[0].Path = "" }},
		{"bad sink type", func(c *Config) { c.Charts[0].Sinks[0].Type = "bogus" }},
	}
	for _, tt := range tests {
		cfg := valid()
		tt.munge(cfg)
		if err := cfg.processChartSpecs(); err == nil {
			t.Errorf("%s: config accepted", tt.desc)
		}
	}
}

func TestConfig_ProcessDbConnectString(t *testing.T) {
	cfg := &Config{}
	if _, err := toml.Decode(testConfigText, cfg); err != nil {
		t.Fatal(err)
	}
	if err := cfg.processDbConnectString(); err == nil {
		t.Errorf("postgres sink with no db-connect-string accepted")
	}
	cfg.DbConnectString = "host=/tmp dbname=tschart"
	if err := cfg.processDbConnectString(); err != nil {
		t.Errorf("processDbConnectString: %v", err)
	}

	// Without postgres sinks the connect string is optional.
	cfg.Charts[1].Sinks = nil
	cfg.DbConnectString = ""
	if err := cfg.processDbConnectString(); err != nil {
		t.Errorf("processDbConnectString without postgres: %v", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.processPollInterval(); err != nil {
		t.Fatal(err)
	}
	if cfg.PollInterval.Duration != time.Second {
		t.Errorf("default poll interval = %v", cfg.PollInterval.Duration)
	}
	if err := cfg.processMonitorCacheSize(); err != nil {
		t.Fatal(err)
	}
	if cfg.MonitorCacheSize != 64 {
		t.Errorf("default monitor cache size = %d", cfg.MonitorCacheSize)
	}
}

func TestAssemble_SineAndLog(t *testing.T) {
	cfg := &Config{}
	text := strings.Replace(testConfigText, `type = "postgres"`, `type = "log"`, 1)
	// Drop the whisper monitor, there is no archive file in this test.
	text = strings.Replace(text, `type = "whisper"`, `type = "sine"`, 1)
	if _, err := toml.Decode(text, cfg); err != nil {
		t.Fatal(err)
	}
	cfg.MonitorCacheSize = 4

	a, err := assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	defer a.shutdown()

	if len(a.charts) != 2 {
		t.Fatalf("assembled %d charts, want 2", len(a.charts))
	}
	if a.pgSink != nil {
		t.Errorf("pg sink built without a postgres sink configured")
	}

	// A full update pass must not blow up.
	for _, ch := range a.charts {
		ch.Update()
	}
}
