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

// Package daemon assembles a running tschart process from a TOML
// config: monitors feeding charts feeding sinks, updated on a fixed
// poll interval until SIGINT or SIGTERM.
package daemon

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tschart/tschart/chart"
	"github.com/tschart/tschart/monitor"
	"github.com/tschart/tschart/sink"
)

var (
	logFile    *os.File
	cycleLogCh = make(chan int)
	quitting   = false
)

func savePid(pidPath string) error {
	f, err := os.Create(pidPath)
	if err != nil {
		return fmt.Errorf("Unable to create pid file '%s': (%v)", pidPath, err)
	}
	defer f.Close()
	fmt.Fprintf(f, "%d\n", os.Getpid())
	log.Printf("Pid saved in %s.", pidPath)
	return nil
}

// assembly is everything built from a Config that needs tearing down
// on exit.
type assembly struct {
	charts   []*chart.Chart
	registry *monitor.Registry
	pickles  []*monitor.Pickle
	pgSink   *sink.PGSink
}

func (a *assembly) shutdown() {
	for _, p := range a.pickles {
		if err := p.Stop(); err != nil {
			log.Printf("Stopping pickle listener: %v", err)
		}
	}
	a.registry.Close()
	if a.pgSink != nil {
		if err := a.pgSink.Close(); err != nil {
			log.Printf("Closing database connection: %v", err)
		}
	}
}

func assemble(cfg *Config) (*assembly, error) {
	a := &assembly{registry: monitor.NewRegistry(cfg.MonitorCacheSize)}

	// Sinks are shared across charts, the series key carries the
	// chart name.
	var logSink *sink.LogSink
	for _, chartCfg := range cfg.Charts {
		ch := chart.New(chartCfg.Name)

		for _, mCfg := range chartCfg.Monitors {
			m, err := a.buildMonitor(mCfg)
			if err != nil {
				return nil, fmt.Errorf("chart %q monitor %q: %v", chartCfg.Name, mCfg.Name, err)
			}
			ch.AddMonitor(mCfg.Name, chart.PlotSpec{
				WindowHours: chartCfg.WindowHours,
				Grow:        chartCfg.Grow,
				Autoscale:   chartCfg.Autoscale,
				Color:       mCfg.Color,
				Style:       mCfg.Style,
			}, m)
		}

		for _, sCfg := range chartCfg.Sinks {
			switch sCfg.Type {
			case "log":
				if logSink == nil {
					logSink = sink.NewLogSink()
				}
				ch.AddSink("log", logSink)
			case "postgres":
				if a.pgSink == nil {
					pg, err := sink.InitPGSink(cfg.DbConnectString, cfg.DbTablePrefix)
					if err != nil {
						return nil, fmt.Errorf("connecting to the DB: %v", err)
					}
					log.Printf("Initialized DB connection.")
					a.pgSink = pg
				}
				ch.AddSink("postgres", a.pgSink)
			}
		}

		a.charts = append(a.charts, ch)
	}
	return a, nil
}

func (a *assembly) buildMonitor(mCfg ConfigMonitorSpec) (chart.Monitor, error) {
	switch mCfg.Type {
	case "sine":
		return monitor.NewSine(mCfg.Step.Duration, mCfg.Span.Duration, mCfg.Amplitude, mCfg.MaxRate), nil
	case "runtime":
		m, err := monitor.NewRuntime(mCfg.Metric)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "file":
		m, err := a.registry.File(mCfg.Path)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "whisper":
		m, err := a.registry.Whisper(mCfg.Path)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "pickle":
		p, err := monitor.NewPickle(mCfg.ListenSpec, mCfg.Series)
		if err != nil {
			return nil, err
		}
		a.pickles = append(a.pickles, p)
		return p, nil
	}
	return nil, fmt.Errorf("unknown monitor type %q", mCfg.Type)
}

// Run starts the daemon and blocks until SIGINT or SIGTERM.
func Run(cfgPath string) {

	runtime.GOMAXPROCS(runtime.NumCPU())
	log.Printf("Tschart starting.")

	cfg, err := readConfig(cfgPath)
	if err != nil {
		log.Fatalf("Error reading config file %s: %v", cfgPath, err)
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	if err := processConfig(configer(cfg), wd); err != nil { // This validates the config
		log.Fatalf("Error in config file %s: %v", cfgPath, err)
	}

	if err := savePid(cfg.PidPath); err != nil {
		log.Fatal(err)
	}

	a, err := assemble(cfg)
	if err != nil {
		log.Fatalf("Error assembling charts: %v", err)
	}

	log.Printf("Serving %d chart(s).", len(a.charts))

	ticker := time.NewTicker(cfg.PollInterval.Duration)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

loop:
	for {
		select {
		case <-ticker.C:
			for _, ch := range a.charts {
				ch.Update()
			}
		case s := <-sigCh:
			log.Printf("Got signal: %v", s)
			break loop
		}
	}

	ticker.Stop()
	a.shutdown()
	finish(cfg.PidPath)
}

func finish(pidPath string) {
	quitting = true
	log.Println("main: All goroutines finished, exiting.")

	// Close log
	log.SetOutput(os.Stderr)
	if logFile != nil {
		logFile.Close()
	}

	os.Remove(pidPath)
}
