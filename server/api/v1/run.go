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

package v1

import (
	"net/http"

	"github.com/zintix-labs/litterlab/dto"
	"github.com/zintix-labs/litterlab/server/httperr"
)

// Run POST /v1/run：執行目錄內計畫或臨時計畫，回傳報表。
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	serve(h, "v1 run", dto.DecodeRunRequest, h.rt.Run)(w, r)
}

// Kinds GET /v1/kinds
func (h *Handler) Kinds(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, h.rt.Kinds())
}

// Plans GET /v1/plans
func (h *Handler) Plans(w http.ResponseWriter, _ *http.Request) {
	res, err := h.rt.Plans()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h.writeJSON(w, res)
}

// Pools GET /v1/pools：各產生器池的觀測快照。
func (h *Handler) Pools(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, map[string]any{
		"closed":    h.rt.Closed(),
		"max_draws": h.rt.MaxDraws(),
		"pools":     h.rt.Metrics(),
	})
}
