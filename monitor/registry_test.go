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
	"path/filepath"
	"testing"
)

func TestRegistry_SharesInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dat")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(10)
	defer r.Close()

	m1, err := r.File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	// A relative spelling of the same path resolves to the same monitor.
	wd, _ := os.Getwd()
	rel, err := filepath.Rel(wd, path)
	if err == nil {
		m2, err := r.File(rel)
		if err != nil {
			t.Fatalf("File(rel): %v", err)
		}
		if m1 != m2 {
			t.Errorf("same file produced distinct monitors")
		}
	}

	other := filepath.Join(dir, "b.dat")
	if err := os.WriteFile(other, nil, 0644); err != nil {
		t.Fatal(err)
	}
	m3, err := r.File(other)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if m1 == m3 {
		t.Errorf("distinct files share a monitor")
	}
}

func TestRegistry_EvictionStops(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i := range paths {
		paths[i] = filepath.Join(dir, "f"+string(rune('a'+i))+".dat")
		if err := os.WriteFile(paths[i], nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	r := NewRegistry(2)
	defer r.Close()

	first, err := r.File(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.File(paths[1]); err != nil {
		t.Fatal(err)
	}
	// Third insert evicts the first monitor, which gets stopped.
	if _, err := r.File(paths[2]); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 2 {
		t.Errorf("registry holds %d monitors, want 2", r.Len())
	}

	again, err := r.File(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if again == first {
		t.Errorf("evicted monitor was handed out again")
	}
}
