// Copyright 2025 Zintix Labs
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

package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunWritesProfile(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"cpu", "heap", "allocs"} {
		called := false
		if err := Run(dir, mode, func() error { called = true; return nil }); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !called {
			t.Fatalf("%s: exe not called", mode)
		}
		if st, err := os.Stat(filepath.Join(dir, mode+".pprof")); err != nil || st.Size() == 0 {
			t.Fatalf("%s: profile missing: %v", mode, err)
		}
	}
}

func TestRunPassesError(t *testing.T) {
	want := errors.New("boom")
	if err := Run(t.TempDir(), "", func() error { return want }); err != want {
		t.Fatalf("got %v", err)
	}
	if err := Run(t.TempDir(), "heap", func() error { return want }); err != want {
		t.Fatalf("got %v", err)
	}
}

func TestRunUnknownMode(t *testing.T) {
	if err := Run(t.TempDir(), "trace", func() error { return nil }); err == nil {
		t.Fatalf("expected error")
	}
}
