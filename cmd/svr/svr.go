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

// Command svr 啟動 lab HTTP 服務，預設載入內嵌 demo 計畫。
//
//	go run ./cmd/svr -addr :5808 -pool 4 -log-mode prod
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/zintix-labs/litterlab"
	"github.com/zintix-labs/litterlab/demo/plans"
	"github.com/zintix-labs/litterlab/server"
	"github.com/zintix-labs/litterlab/server/logger"
	"github.com/zintix-labs/litterlab/server/netsvr"
	"github.com/zintix-labs/litterlab/server/svrcfg"
)

func main() {
	sCfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = server.Run(sCfg)
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

type config struct {
	logMode  string
	addr     string
	dir      string
	poolSize int
	maxDraws int
	maxPow   int
	timeout  time.Duration
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.logMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.addr, "addr", netsvr.DefaultAddr, "listen address")
	flag.StringVar(&cfg.dir, "dir", "", "plan directory (default: embedded demo plans)")
	flag.IntVar(&cfg.poolSize, "pool", 3, "generators per kind in the pool (1~16)")
	flag.IntVar(&cfg.maxDraws, "max-draws", litterlab.DefaultMaxDraws, "max draws per request")
	flag.IntVar(&cfg.maxPow, "max-noise-pow", litterlab.DefaultMaxNoisePow, "max noise buffer pow per request")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	mode, err := logger.ParseMode(cfg.logMode)
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(4096, mode)

	var src fs.FS = plans.FS
	if cfg.dir != "" {
		src = os.DirFS(cfg.dir)
	}
	lab, err := litterlab.NewAuto(src)
	if err != nil {
		ah.Close()
		return nil, nil, err
	}
	return &svrcfg.SvrCfg{
		Log:         log,
		Lab:         lab,
		PoolSize:    cfg.poolSize,
		MaxDraws:    cfg.maxDraws,
		MaxNoisePow: cfg.maxPow,
		Timeout:     cfg.timeout,
		Addr:        cfg.addr,
	}, ah.Close, nil
}
