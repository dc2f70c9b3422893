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

package series

import "sync"

// Cache is a registry of TimeSeries kept by signal id. A sink owns
// one Cache for its lifetime; entries are created lazily on first
// reference and never shared across sinks.
type Cache struct {
	sync.RWMutex
	byId map[string]*TimeSeries
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{byId: make(map[string]*TimeSeries)}
}

// Get returns the series for id, creating and registering an empty
// one named id if none exists yet.
func (c *Cache) Get(id string) *TimeSeries {
	c.Lock()
	defer c.Unlock()
	ts := c.byId[id]
	if ts == nil {
		ts = NewTimeSeries(id)
		c.byId[id] = ts
	}
	return ts
}

// Put registers ts under id, replacing any existing entry. Mainly for
// seeding and tests.
func (c *Cache) Put(id string, ts *TimeSeries) {
	c.Lock()
	defer c.Unlock()
	c.byId[id] = ts
}

// All returns a snapshot of the registry, for when every tracked
// signal must be walked (e.g. a full repaint).
func (c *Cache) All() map[string]*TimeSeries {
	c.RLock()
	defer c.RUnlock()
	out := make(map[string]*TimeSeries, len(c.byId))
	for id, ts := range c.byId {
		out[id] = ts
	}
	return out
}
