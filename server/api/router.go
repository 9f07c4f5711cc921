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

// Package api 註冊 lab 服務的 middleware 與路由。
package api

import (
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/litterlab/server/api/v1"
	"github.com/zintix-labs/litterlab/server/netsvr"
	"github.com/zintix-labs/litterlab/server/netsvr/middleware"
	"github.com/zintix-labs/litterlab/server/svrcfg"
)

// routes 供首頁列出；與 registerV1API 保持一致。
var routes = []string{
	"GET  /v1/kinds",
	"GET  /v1/plans",
	"GET  /v1/pools",
	"GET  /v1/sample",
	"POST /v1/sample",
	"GET  /v1/expect",
	"POST /v1/expect",
	"POST /v1/noise",
	"POST /v1/urn",
	"POST /v1/chaos",
	"POST /v1/run",
}

// RegisterRoutes 依序註冊 middleware、首頁與 v1 api，回傳 v1 handler 供關閉 Runtime。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) (*v1.Handler, error) {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return nil, err
	}
	registerMiddleware(svr, sCfg.Log)
	svr.Get("/", index)
	registerV1API(svr, h)
	return h, nil
}

func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("litterlab\n\n"))
	for _, r := range routes {
		_, _ = w.Write([]byte(r + "\n"))
	}
}

func registerV1API(svr netsvr.NetRouter, h *v1.Handler) {
	svr.Group("/v1", func(r netsvr.NetRouter) {
		r.Get("/kinds", h.Kinds)
		r.Get("/plans", h.Plans)
		r.Get("/pools", h.Pools)

		r.Get("/sample", h.Sample)
		r.Post("/sample", h.Sample)
		r.Get("/expect", h.Expect)
		r.Post("/expect", h.Expect)

		r.Post("/noise", h.Noise)
		r.Post("/urn", h.Urn)
		r.Post("/chaos", h.Chaos)
		r.Post("/run", h.Run)
	})
}
