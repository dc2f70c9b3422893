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
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

type stopper interface {
	Stop() error
}

// Registry hands out file-backed monitors, at most one live instance
// per absolute path, so charts watching the same file share a tail.
// The registry is an explicit object passed by reference, not a
// module-level global. Capacity is LRU-bounded; an evicted monitor is
// stopped.
type Registry struct {
	*lru.Cache
	mu sync.Mutex
}

func NewRegistry(cap int) *Registry {
	r := &Registry{}
	r.Cache, _ = lru.NewWithEvict(cap, func(_, val interface{}) {
		if s, ok := val.(stopper); ok {
			s.Stop()
		}
	})
	return r
}

// File returns the shared tailing monitor for path, creating it on
// first reference.
func (r *Registry) File(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	key := "file:" + abs

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.Get(key); ok {
		return v.(*File), nil
	}
	m, err := NewFile(abs)
	if err != nil {
		return nil, err
	}
	r.Add(key, m)
	return m, nil
}

// Whisper returns the shared whisper-archive monitor for path,
// creating it on first reference.
func (r *Registry) Whisper(path string) (*Whisper, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	key := "whisper:" + abs

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.Get(key); ok {
		return v.(*Whisper), nil
	}
	m, err := NewWhisper(abs)
	if err != nil {
		return nil, err
	}
	r.Add(key, m)
	return m, nil
}

// Close stops and drops every registered monitor.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Purge()
}
