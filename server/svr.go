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

// Package server 組裝並啟動 lab HTTP 服務。
package server

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/server/api"
	"github.com/zintix-labs/litterlab/server/app"
	"github.com/zintix-labs/litterlab/server/netsvr"
	"github.com/zintix-labs/litterlab/server/svrcfg"
)

// Run 以預設 ChiAdapter 組裝並啟動服務，阻塞到收到終止信號或服務出錯。
//
// 所有依賴經由 SvrCfg 注入，不讀檔案路徑或環境變數。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Vaild(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(netsvr.Options{
		Addr:         sCfg.Addr,
		WriteTimeout: sCfg.Timeout + 5*time.Second,
	}))
}

// RunWithSvr 與 Run 相同，但由呼叫端提供 NetSvr（自訂位址、timeout 或其他 adapter）。
// svr 必須非 nil；若為 ChiAdapter 須 Ready。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Vaild(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	h, err := api.RegisterRoutes(svr, sCfg)
	if err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}
	defer h.Runtime().Close()

	sCfg.Log.Info("[litterlab] listening",
		slog.String("addr", svr.Address()),
		slog.Int("pool_size", sCfg.PoolSize),
		slog.Int("max_draws", sCfg.MaxDraws),
		slog.Duration("timeout", sCfg.Timeout),
	)
	if err := app.NewWith(svr).WithLogger(sCfg.Log).Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[litterlab] stopped")
	return nil
}
