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

package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/plan"
)

// 防止 body 過大（1MiB）
const maxBody = 1 << 20

// SampleRequest 抽樣請求。
//
// 產生器來源的優先順序：
//  1. start_state.start_b64u 有值：以該快照還原 generator 種類的產生器（回放 / 續抽）。
//  2. salt 非 0：以 salt 建立新的產生器（可重現）。
//  3. 兩者皆無：向服務端的產生器池借用（不可重現，但回應仍附上前後快照）。
type SampleRequest struct {
	Dist       string             `json:"dist"`
	Alg        string             `json:"alg,omitempty"`
	Params     map[string]float64 `json:"params,omitempty"`
	Generator  string             `json:"generator,omitempty"`
	Salt       uint32             `json:"salt,omitempty"`
	Count      int                `json:"count"`
	StartState *StartState        `json:"start_state,omitempty"`
}

// StartState 由呼叫端帶回的產生器快照。只接受 start，after 僅出現在回應。
type StartState struct {
	StartB64U string `json:"start_b64u,omitempty"`
}

// Start 回傳請求帶入的快照字串（未帶入為空字串）。
func (r *SampleRequest) Start() string {
	if r.StartState == nil {
		return ""
	}
	return r.StartState.StartB64U
}

// ExpectRequest 解析量查詢；moments 省略時回傳全部。
type ExpectRequest struct {
	Dist    string             `json:"dist"`
	Alg     string             `json:"alg,omitempty"`
	Params  map[string]float64 `json:"params,omitempty"`
	Moments []string           `json:"moments,omitempty"`
}

// NoiseRequest 雜訊請求。
//
// color: white / gauss / pink / brown / black / hurst；hurst 模式使用 Hurst 欄位。
// salt 為 0 時使用服務端共用產生器。
type NoiseRequest struct {
	Color     string   `json:"color"`
	Hurst     *float64 `json:"hurst,omitempty"`
	Pow       int      `json:"pow,omitempty"`
	NN        int      `json:"nn,omitempty"`
	Pitch     float64  `json:"pitch,omitempty"`
	Sigma     float64  `json:"sigma,omitempty"`
	Count     int      `json:"count"`
	Generator string   `json:"generator,omitempty"`
	Salt      uint32   `json:"salt,omitempty"`
}

// UrnRequest 甕取樣請求：依 counts 建甕連續抽 draws 次。
type UrnRequest struct {
	Counts     []int       `json:"counts"`
	Draws      int         `json:"draws"`
	Replace    bool        `json:"replace,omitempty"`    // 放回抽樣
	AutoReset  *bool       `json:"auto_reset,omitempty"` // 預設 true
	Generator  string      `json:"generator,omitempty"`
	Salt       uint32      `json:"salt,omitempty"`
	StartState *StartState `json:"start_state,omitempty"`
}

// Start 回傳請求帶入的快照字串。
func (r *UrnRequest) Start() string {
	if r.StartState == nil {
		return ""
	}
	return r.StartState.StartB64U
}

// ChaosRequest 混沌映射軌跡請求。
type ChaosRequest struct {
	Seed  float64 `json:"seed"`
	Count int     `json:"count"`
}

// RunRequest 執行計畫：依 id 或 name 指定目錄內計畫，或以 plan 帶入臨時計畫。
//
// count / workers 非 0 時覆蓋計畫設定；salt 非 0 時覆蓋計畫 salt。
type RunRequest struct {
	ID      plan.PID        `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Plan    json.RawMessage `json:"plan,omitempty"`
	Count   int             `json:"count,omitempty"`
	Workers int             `json:"workers,omitempty"`
	Salt    uint32          `json:"salt,omitempty"`
}

// DecodeSampleRequest 會把 HTTP 請求解碼成 SampleRequest。
//
// 支援：
//   - GET：從 query string 讀取 dist/alg/generator/salt/count/start_b64u，
//     分布參數以 p.<name>=<value> 帶入，例如 ?dist=gamma&p.alpha=2&p.beta=1。
//   - POST：從 JSON body 反序列化。
//
// 這裡只負責解碼與基本型別轉換，合法性由 Runtime 決定。
func DecodeSampleRequest(r *http.Request) (*SampleRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(SampleRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Dist = q.Get("dist")
		req.Alg = q.Get("alg")
		req.Generator = q.Get("generator")

		if s := q.Get("salt"); s != "" {
			u, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid salt: %v", err))
			}
			req.Salt = uint32(u)
		}
		if s := q.Get("count"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid count: %v", err))
			}
			req.Count = v
		}
		if s := q.Get("start_b64u"); s != "" {
			req.StartState = &StartState{StartB64U: s}
		}
		params, err := queryParams(q)
		if err != nil {
			return nil, err
		}
		req.Params = params
		return req, nil

	case http.MethodPost:
		if err := decodeJSON(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeExpectRequest GET 以 moments=mean,var 逗號分隔；參數同 DecodeSampleRequest。
func DecodeExpectRequest(r *http.Request) (*ExpectRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(ExpectRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Dist = q.Get("dist")
		req.Alg = q.Get("alg")
		if s := q.Get("moments"); s != "" {
			for _, m := range strings.Split(s, ",") {
				if m = strings.TrimSpace(m); m != "" {
					req.Moments = append(req.Moments, m)
				}
			}
		}
		params, err := queryParams(q)
		if err != nil {
			return nil, err
		}
		req.Params = params
		return req, nil

	case http.MethodPost:
		if err := decodeJSON(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeNoiseRequest 只接受 POST JSON。
func DecodeNoiseRequest(r *http.Request) (*NoiseRequest, error) {
	req := new(NoiseRequest)
	if err := decodePost(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeUrnRequest 只接受 POST JSON。
func DecodeUrnRequest(r *http.Request) (*UrnRequest, error) {
	req := new(UrnRequest)
	if err := decodePost(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeChaosRequest 只接受 POST JSON。
func DecodeChaosRequest(r *http.Request) (*ChaosRequest, error) {
	req := new(ChaosRequest)
	if err := decodePost(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeRunRequest 只接受 POST JSON。
func DecodeRunRequest(r *http.Request) (*RunRequest, error) {
	req := new(RunRequest)
	if err := decodePost(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodePost(r *http.Request, v any) error {
	if r == nil {
		return errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return errs.NewWarn("method not allowed")
	}
	return decodeJSON(r, v)
}

// decodeJSON 限制 body 大小並拒絕未知欄位，避免靜默丟資料。
func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.NewWarn(fmt.Sprintf("invalid json: %v", err))
	}
	return nil
}

func queryParams(q url.Values) (map[string]float64, error) {
	var out map[string]float64
	for k, vs := range q {
		name, ok := strings.CutPrefix(k, "p.")
		if !ok || name == "" || len(vs) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(vs[0], 64)
		if err != nil {
			return nil, errs.NewWarn(fmt.Sprintf("invalid param %s: %v", name, err))
		}
		if out == nil {
			out = map[string]float64{}
		}
		out[name] = v
	}
	return out, nil
}
