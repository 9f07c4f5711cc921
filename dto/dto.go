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

// Package dto 定義 HTTP 介面的請求與回應結構。
package dto

import (
	"github.com/zintix-labs/litterlab/catalog"
	"github.com/zintix-labs/litterlab/corefmt"
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/stats"
)

// KindsResult 列出服務支援的產生器、分布與解析量名稱。
type KindsResult struct {
	Generators []string            `json:"generators"`
	Dists      []string            `json:"dists"`
	Algs       map[string][]string `json:"algs,omitempty"` // 可選演算法的分布
	Moments    []string            `json:"moments"`
	Colors     []string            `json:"colors"`
}

// SampleResult 一次抽樣的結果。
type SampleResult struct {
	Dist      string             `json:"dist"`
	Alg       string             `json:"alg,omitempty"`
	Params    map[string]float64 `json:"params,omitempty"`
	Generator string             `json:"generator"`
	Salt      uint32             `json:"salt,omitempty"`
	Values    []stats.Num        `json:"values"`
	State     StreamState        `json:"stream_state"`
}

// ExpectResult 解析量查詢結果，順序與請求一致。
type ExpectResult struct {
	Dist   string             `json:"dist"`
	Alg    string             `json:"alg,omitempty"`
	Params map[string]float64 `json:"params,omitempty"`
	Values []stats.Expected   `json:"values"`
}

// NoiseResult 雜訊區塊。
type NoiseResult struct {
	Color  string    `json:"color"`
	Hurst  float64   `json:"hurst,omitempty"`
	Pow    int       `json:"pow,omitempty"`
	NN     int       `json:"nn,omitempty"`
	Salt   uint32    `json:"salt,omitempty"`
	Values []float32 `json:"values"`
}

// UrnResult 取球序列；-1 代表當下甕已空。
type UrnResult struct {
	Draws     []int       `json:"draws"`
	Remaining int         `json:"remaining"`
	State     []int       `json:"state"`
	Generator string      `json:"generator"`
	Salt      uint32      `json:"salt,omitempty"`
	Fit       *stats.Fit  `json:"fit,omitempty"` // 放回抽樣時對 counts 比例的卡方檢定
	Stream    StreamState `json:"stream_state"`
}

// ChaosResult 混沌映射軌跡。
type ChaosResult struct {
	Seed   float64   `json:"seed"`
	Values []float64 `json:"values"`
	Last   float64   `json:"last"` // 可作為下一段的 seed 續跑
}

// RunResult 計畫執行結果。
type RunResult struct {
	Report *stats.Report `json:"report"`
	UsedMs float64       `json:"used_ms"`
}

// PlansResult 目錄內計畫摘要。
type PlansResult struct {
	Plans []catalog.Summary `json:"plans"`
}

// StreamState 產生器快照（base64url）。
//
//   - start_b64u：本次抽樣前的產生器狀態，帶回請求即可重現同一段樣本。
//   - after_b64u：本次抽樣後的狀態，作為下一段請求的 start_b64u 即可延續同一條亂數流。
//
// 請求端只能帶 start；after 只會出現在回應。
type StreamState struct {
	StartB64U string `json:"start_b64u,omitempty"`
	AfterB64U string `json:"after_b64u,omitempty"`
}

// SnapshotB64U 取得產生器快照，連同種類編成 base64url。
func SnapshotB64U(kind core.Kind, g core.Restorable) (string, error) {
	b, err := g.Snapshot()
	if err != nil {
		return "", errs.Wrap(err, "snapshot generator failed")
	}
	return corefmt.EncodeSnapshotB64U(string(kind), b), nil
}

// RestoreB64U 以 base64url 快照還原 kind 種類的產生器；種類不符或失敗時狀態不變。
func RestoreB64U(kind core.Kind, g core.Restorable, s string) error {
	k, b, err := corefmt.DecodeSnapshotB64U(s)
	if err != nil {
		return errs.NewWarn("invalid start_b64u: " + err.Error())
	}
	if core.Kind(k) != kind {
		return errs.NewWarn("start_b64u generator mismatch: snapshot is " + k + ", want " + string(kind))
	}
	if err := g.Restore(b); err != nil {
		return errs.WrapWithExtra(errs.ErrInvalidParam, "restore generator failed", err.Error())
	}
	return nil
}

// SnapshotKind 回傳快照內記錄的產生器種類。
func SnapshotKind(s string) (core.Kind, error) {
	k, _, err := corefmt.DecodeSnapshotB64U(s)
	if err != nil {
		return "", errs.NewWarn("invalid start_b64u: " + err.Error())
	}
	return core.ParseKind(k)
}
