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

// Package perf 以 runtime/pprof 包裝一段執行，輸出 cpu / heap / allocs profile。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/litterlab/errs"
)

// DefaultDir profile 預設輸出目錄。
const DefaultDir = "build/profiling"

// Modes 支援的 profile 模式；空字串代表不剖析。
var Modes = []string{"", "cpu", "heap", "allocs"}

// Run 依 mode 執行 exe 並在 dir 寫出 <mode>.pprof；dir 為空時用 DefaultDir。
// exe 的錯誤優先回傳，profile 寫出失敗為 Fatal。
//
// Usage like:
//
//	go run ./cmd/run -plan normal_kr -p cpu
//	go tool pprof build/profiling/cpu.pprof
func Run(dir, mode string, exe func() error) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case "":
		return exe()
	case "cpu":
		return cpu(dir, exe)
	case "heap", "allocs":
		if err := exe(); err != nil {
			return err
		}
		return snapshot(dir, mode)
	}
	return errs.Warnf("unknown pprof mode %q (cpu|heap|allocs)", mode)
}

func create(dir, mode string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create profiling dir failed")
	}
	f, err := os.Create(filepath.Join(dir, mode+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "create "+mode+".pprof failed")
	}
	return f, nil
}

// cpu 的輸出也可作為 PGO 的 default.pgo。
func cpu(dir string, exe func() error) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile failed")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 寫出 heap（in-use，先 GC）或 allocs（累積配置）。
func snapshot(dir, mode string) error {
	f, err := create(dir, mode)
	if err != nil {
		return err
	}
	defer f.Close()
	if mode == "heap" {
		runtime.GC()
	}
	prof := pprof.Lookup(mode)
	if prof == nil {
		return errs.Fatalf("profile %s not found", mode)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+mode+" profile failed")
	}
	return nil
}
