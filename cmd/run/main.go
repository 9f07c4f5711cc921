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

// Command run 在本機執行一份抽樣計畫並輸出統計報告。
//
//	go run ./cmd/run -plan normal_kr
//	go run ./cmd/run -id 3 -count 5000000 -workers 8 -salt 42 -format yaml
//	go run ./cmd/run -file ./my_plan.yaml -p cpu
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/litterlab"
	"github.com/zintix-labs/litterlab/demo/plans"
	"github.com/zintix-labs/litterlab/plan"
	"github.com/zintix-labs/litterlab/sdk/perf"
	"github.com/zintix-labs/litterlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	name      string
	id        uint
	file      string
	dir       string
	count     int
	workers   int
	salt      uint
	format    string
	out       string
	list      bool
	quiet     bool
	pprofmode string
	pprofdir  string
}

func main() {
	cfg := bindVar()
	if err := perf.Run(cfg.pprofdir, cfg.pprofmode, cfg.execute); err != nil {
		log.Fatal(err)
	}
}

func bindVar() *config {
	cfg := new(config)
	flag.StringVar(&cfg.name, "plan", "", "plan name in catalog")
	flag.UintVar(&cfg.id, "id", 0, "plan id in catalog")
	flag.StringVar(&cfg.file, "file", "", "standalone plan file (.yaml/.yml/.json)")
	flag.StringVar(&cfg.dir, "dir", "", "plan directory (default: embedded demo plans)")
	flag.IntVar(&cfg.count, "count", 0, "override plan count")
	flag.IntVar(&cfg.workers, "workers", 0, "override plan workers")
	flag.UintVar(&cfg.salt, "salt", 0, "base salt (0: plan salt, or random)")
	flag.StringVar(&cfg.format, "format", "table", "report format: table|json|yaml")
	flag.StringVar(&cfg.out, "o", "", "write report to file instead of stdout")
	flag.BoolVar(&cfg.list, "list", false, "list catalog plans and exit")
	flag.BoolVar(&cfg.quiet, "q", false, "hide progress bar")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	flag.StringVar(&cfg.pprofdir, "pprof-dir", perf.DefaultDir, "pprof output dir")
	flag.Parse()
	return cfg
}

func (cfg *config) sources() fs.FS {
	if cfg.dir != "" {
		return os.DirFS(cfg.dir)
	}
	return plans.FS
}

func (cfg *config) execute() error {
	if cfg.salt > 0xffffffff {
		return fmt.Errorf("salt must fit in uint32")
	}
	render := stats.RenderByName(strings.ToLower(cfg.format))
	if render == nil {
		return fmt.Errorf("unknown format %q (table|json|yaml)", cfg.format)
	}

	lab, err := litterlab.NewAuto(cfg.sources())
	if err != nil {
		return err
	}
	if cfg.list {
		return listPlans(lab)
	}

	r, err := cfg.runner(lab)
	if err != nil {
		return err
	}
	if err := r.Resize(cfg.count, cfg.workers); err != nil {
		return err
	}

	p := r.Plan()
	green, reset := "\033[1;32m", "\033[0m"
	pr := message.NewPrinter(language.English)
	pr.Fprintf(os.Stderr, "%s[PLAN:%s] [DIST:%s] [GEN:%s] [SALT:%d] [WORKERS:%d] [COUNT:%d]%s\n",
		green, p.Name, p.Dist.Kind, p.Generator.Kind, r.Salt(), p.Workers, p.Count, reset)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rep, used, err := r.RunCtx(ctx, !cfg.quiet)
	if err != nil {
		return err
	}

	if cfg.out == "" {
		if strings.EqualFold(cfg.format, "table") {
			rep.StdOut(used)
			return nil
		}
		return rep.WriteWith(os.Stdout, render)
	}
	f, err := os.Create(cfg.out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := rep.WriteWith(f, render); err != nil {
		return err
	}
	pr.Fprintf(os.Stderr, "report written: %s (%v)\n", cfg.out, used)
	return nil
}

// runner 依 -file / -id / -plan 的優先序選計畫。
func (cfg *config) runner(lab *litterlab.Lab) (*litterlab.Runner, error) {
	salt := uint32(cfg.salt)
	switch {
	case cfg.file != "":
		raw, err := os.ReadFile(cfg.file)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(cfg.file)) {
		case ".json":
			return lab.NewRunnerByJSON(raw, salt)
		case ".yaml", ".yml":
			return lab.NewRunnerByYAML(raw, salt)
		}
		return nil, fmt.Errorf("unsupported plan file: %s", cfg.file)
	case cfg.id != 0:
		return cfg.byID(lab, plan.PID(cfg.id))
	case cfg.name != "":
		e, ok := lab.EntryByName(cfg.name)
		if !ok {
			return nil, fmt.Errorf("plan %q not found (use -list)", cfg.name)
		}
		return cfg.byID(lab, e.ID)
	}
	return nil, fmt.Errorf("one of -plan, -id or -file is required (use -list)")
}

func (cfg *config) byID(lab *litterlab.Lab, id plan.PID) (*litterlab.Runner, error) {
	if cfg.salt == 0 {
		return lab.NewRunner(id)
	}
	return lab.NewRunnerWithSalt(id, uint32(cfg.salt))
}

func listPlans(lab *litterlab.Lab) error {
	sum, err := lab.Summary()
	if err != nil {
		return err
	}
	pr := message.NewPrinter(language.English)
	for _, s := range sum {
		pr.Printf("%4d  %-20s %-12s %-10s %-8s count=%d workers=%d\n",
			s.ID, s.Name, s.Dist, s.Alg, s.Generator, s.Count, s.Workers)
	}
	return nil
}
