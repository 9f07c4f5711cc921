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

// Package v1 實作 /v1 下的抽樣 API。
package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/litterlab"
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/server/httperr"
	"github.com/zintix-labs/litterlab/server/svrcfg"
)

// Handler 持有一個 Runtime，所有 /v1 路由共用。
type Handler struct {
	rt      *litterlab.Runtime
	log     *slog.Logger
	timeout time.Duration
}

// NewHandler 依 sCfg 建立 Runtime；sCfg 須已通過 Vaild。
func NewHandler(sCfg *svrcfg.SvrCfg) (*Handler, error) {
	rt, err := sCfg.Lab.BuildRuntime(sCfg.PoolSize)
	if err != nil {
		return nil, errs.Wrap(err, "build v1 handler error")
	}
	rt.SetMaxDraws(sCfg.MaxDraws)
	rt.SetMaxNoisePow(sCfg.MaxNoisePow)
	return &Handler{rt: rt, log: sCfg.Log, timeout: sCfg.Timeout}, nil
}

// Runtime 供組裝端在關閉時呼叫 Close。
func (h *Handler) Runtime() *litterlab.Runtime {
	return h.rt
}

// serve 組合「解析 → 設定時限 → 執行 → 寫 JSON」。
func serve[Req, Res any](h *Handler, name string, decode func(*http.Request) (*Req, error), do func(context.Context, *Req) (Res, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decode(r)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		res, err := do(ctx, req)
		if err != nil {
			httperr.Log(h.log, name, err)
			httperr.Errs(w, err)
			return
		}
		h.writeJSON(w, res)
	}
}

// writeJSON 先編碼到記憶體，確保不會寫到一半才出錯。
func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(v); err != nil {
		err = errs.Wrap(err, "encode response failed")
		httperr.Log(h.log, "v1 encode", err)
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}
