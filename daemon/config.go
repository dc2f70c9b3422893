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
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tschart/tschart/misc"
)

type Config struct { // Needs to be exported for TOML to work
	PidPath          string            `toml:"pid-file"`
	LogPath          string            `toml:"log-file"`
	LogCycle         duration          `toml:"log-cycle-interval"`
	PollInterval     duration          `toml:"poll-interval"`
	DbConnectString  string            `toml:"db-connect-string"`
	DbTablePrefix    string            `toml:"db-table-prefix"`
	MonitorCacheSize int               `toml:"monitor-cache-size"`
	Charts           []ConfigChartSpec `toml:"chart"`
}

type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = misc.ParseDuration(string(text))
	return err
}

// Needs to be exported for TOML
type ConfigChartSpec struct {
	Name        string
	WindowHours float64 `toml:"window-hours"`
	Grow        bool
	Autoscale   bool
	Monitors    []ConfigMonitorSpec `toml:"monitor"`
	Sinks       []ConfigSinkSpec    `toml:"sink"`
}

type ConfigMonitorSpec struct {
	Name       string
	Type       string   // sine, runtime, file, whisper, pickle
	Path       string   // file, whisper
	ListenSpec string   `toml:"listen-spec"` // pickle
	Series     string   // pickle: only points with this name
	Metric     string   // runtime: cpu or heap
	Step       duration // sine
	Span       duration // sine
	Amplitude  float64  // sine
	MaxRate    int      `toml:"max-rate"` // sine
	Color      string
	Style      string
}

type ConfigSinkSpec struct {
	Type string // log, postgres
}

var readConfig = func(cfgPath string) (*Config, error) {
	cfg := &Config{}
	_, err := toml.DecodeFile(cfgPath, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) processConfigPidFile(wd string) error {
	if c.PidPath == "" {
		return fmt.Errorf("pid-file setting empty")
	}
	if !filepath.IsAbs(c.PidPath) {
		if wd == "" {
			return fmt.Errorf("pid-file must be absolute path if working directory cannot be determined")
		}
		c.PidPath = filepath.Join(wd, c.PidPath)
	}
	pidDir, _ := filepath.Split(c.PidPath)
	if err := os.MkdirAll(pidDir, 0755); err != nil {
		return fmt.Errorf("Unable to create directory: '%s' (%v).", pidDir, err)
	}
	return nil
}

func (c *Config) processConfigLogFile(wd string) error {
	if os.Getenv("TSCHART_LOG") != "" {
		c.LogPath = os.Getenv("TSCHART_LOG")
	}
	if c.LogPath == "" {
		return fmt.Errorf("log-file setting empty")
	}
	if !filepath.IsAbs(c.LogPath) {
		if wd == "" {
			return fmt.Errorf("log-file must be absolute path if working directory cannot be determined")
		}
		c.LogPath = filepath.Join(wd, c.LogPath)
	}
	logDir, _ := filepath.Split(c.LogPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("Unable to create directory: '%s' (%v).", logDir, err)
	}

	log.Printf("Logs will be written to '%s'.", c.LogPath)
	return nil
}

func (c *Config) processConfigLogCycleInterval() error {
	if c.LogCycle.Duration == 0 {
		return fmt.Errorf("log-cycle-interval setting empty")
	}
	log.Printf("Will cycle logs every %v (log-cycle-interval).", c.LogCycle.Duration)

	logDir, _ := filepath.Split(c.LogPath)
	log.Printf("All further status messages will be written to log file(s) in '%s'.", logDir)
	logFileCycler(c.LogPath, c.LogCycle.Duration)
	log.Print("Server starting.")

	return nil
}

func (c *Config) processPollInterval() error {
	if c.PollInterval.Duration == 0 {
		log.Printf("poll-interval unspecified, defaulting to 1s")
		c.PollInterval.Duration = time.Second
	}
	log.Printf("Charts will be updated every %v (poll-interval).", c.PollInterval.Duration)
	return nil
}

func (c *Config) processDbConnectString() error {
	if os.Getenv("TSCHART_DB_CONNECT") != "" {
		c.DbConnectString = os.Getenv("TSCHART_DB_CONNECT")
	}
	if c.usesPostgres() && c.DbConnectString == "" {
		return fmt.Errorf("db-connect-string empty but a postgres sink is configured")
	}
	return nil
}

func (c *Config) usesPostgres() bool {
	for _, chart := range c.Charts {
		for _, s := range chart.Sinks {
			if s.Type == "postgres" {
				return true
			}
		}
	}
	return false
}

func (c *Config) processMonitorCacheSize() error {
	if c.MonitorCacheSize == 0 {
		log.Printf("monitor-cache-size unspecified, defaulting to 64")
		c.MonitorCacheSize = 64
	}
	if c.MonitorCacheSize < 0 {
		return fmt.Errorf("monitor-cache-size must be positive (%d)", c.MonitorCacheSize)
	}
	return nil
}

func (c *Config) processChartSpecs() error {
	if len(c.Charts) == 0 {
		return fmt.Errorf("no charts configured, nothing to do")
	}
	seen := make(map[string]bool)
	for i, chart := range c.Charts {
		if chart.Name == "" {
			return fmt.Errorf("chart %d: name missing", i)
		}
		if seen[chart.Name] {
			return fmt.Errorf("chart %q: duplicate name", chart.Name)
		}
		seen[chart.Name] = true
		if chart.WindowHours < 0 {
			return fmt.Errorf("chart %q: negative window-hours (%v)", chart.Name, chart.WindowHours)
		}
		if len(chart.Monitors) == 0 {
			return fmt.Errorf("chart %q: no monitors", chart.Name)
		}
		for _, m := range chart.Monitors {
			if m.Name == "" {
				return fmt.Errorf("chart %q: monitor name missing", chart.Name)
			}
			switch m.Type {
			case "sine":
				// All sine settings have defaults.
			case "runtime":
				if m.Metric != "cpu" && m.Metric != "heap" {
					return fmt.Errorf("chart %q monitor %q: metric must be cpu or heap, got %q", chart.Name, m.Name, m.Metric)
				}
			case "file", "whisper":
				if m.Path == "" {
					return fmt.Errorf("chart %q monitor %q: path missing", chart.Name, m.Name)
				}
			case "pickle":
				if m.ListenSpec == "" {
					return fmt.Errorf("chart %q monitor %q: listen-spec missing", chart.Name, m.Name)
				}
			default:
				return fmt.Errorf("chart %q monitor %q: unknown type %q (valid: sine, runtime, file, whisper, pickle)", chart.Name, m.Name, m.Type)
			}
		}
		for _, s := range chart.Sinks {
			if s.Type != "log" && s.Type != "postgres" {
				return fmt.Errorf("chart %q: unknown sink type %q (valid: log, postgres)", chart.Name, s.Type)
			}
		}
	}
	return nil
}

type configer interface {
	processConfigPidFile(string) error
	processConfigLogFile(string) error
	processConfigLogCycleInterval() error
	processPollInterval() error
	processDbConnectString() error
	processMonitorCacheSize() error
	processChartSpecs() error
}

var processConfig = func(c configer, wd string) error {

	if err := c.processConfigPidFile(wd); err != nil {
		return err
	}
	if err := c.processConfigLogFile(wd); err != nil {
		return err
	}
	if err := c.processConfigLogCycleInterval(); err != nil {
		return err
	}
	if err := c.processPollInterval(); err != nil {
		return err
	}
	if err := c.processChartSpecs(); err != nil {
		return err
	}
	if err := c.processDbConnectString(); err != nil {
		return err
	}
	if err := c.processMonitorCacheSize(); err != nil {
		return err
	}
	return nil
}
