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

// Package svrcfg 定義 lab 服務的組裝設定。
package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/litterlab"
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/server/logger"
)

const (
	defaultTimeout = 5 * time.Second
	maxTimeout     = 2 * time.Minute
)

type SvrCfg struct {
	Log         *slog.Logger
	Lab         *litterlab.Lab
	PoolSize    int           // 每種產生器的池容量，1~16
	MaxDraws    int           // 單一請求抽樣上限，< 1 時用 litterlab.DefaultMaxDraws
	MaxNoisePow int           // 雜訊緩衝區 pow 上限，< 1 時用 litterlab.DefaultMaxNoisePow
	Timeout     time.Duration // 單一請求處理時限，預設 5s，上限 2m
	Addr        string        // 空字串時用預設位址
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	sc.PoolSize = min(16, max(1, sc.PoolSize))
	if sc.MaxDraws < 1 {
		sc.MaxDraws = litterlab.DefaultMaxDraws
	}
	if sc.MaxNoisePow < 1 {
		sc.MaxNoisePow = litterlab.DefaultMaxNoisePow
	}
	if sc.Timeout <= 0 {
		sc.Timeout = defaultTimeout
	}
	sc.Timeout = min(maxTimeout, sc.Timeout)
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}
