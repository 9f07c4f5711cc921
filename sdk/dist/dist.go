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

// Package dist 提供以 core.Core 為亂數來源的連續/離散分布抽樣器。
//
// 約定：
//   - 每個分布是一個可變的參數物件，參數變更時立即重算快取（倒數、門檻、演算法分支）。
//   - Sample 一律顯式接收 *core.Core，不使用任何全域產生器。
//   - 無效參數多半「夾到安全的退化值」繼續運作；只有結構性限制（如三角分布的順序）
//     會回傳 errs.ErrInvalidParam 並保持原狀態。
//   - Expect 是唯讀的解析量查詢，無定義時回傳 NaN，從不 panic。
package dist

import (
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
)

// Dist 是所有分布的共同介面。
type Dist interface {
	Kind() Kind
	Sample(c *core.Core) float64
	Expect(m Moment) float64
	// SetParam 以名稱設定單一參數並重算快取。
	SetParam(name string, v float64) error
	// Params 回傳目前的主參數（不含快取欄位）。
	Params() map[string]float64
}

// AlgSelector 由具有多種抽樣演算法的分布實作。
type AlgSelector interface {
	UseAlg(name string) error
	Alg() string
}

// Fill 以 d 連續抽樣填滿 dst。
func Fill(d Dist, c *core.Core, dst []float64) {
	for i := range dst {
		dst[i] = d.Sample(c)
	}
}

func unknownParam(k Kind, name string) error {
	return errs.Invalidf("%s: unknown parameter %q", k, name)
}

func unknownAlg(k Kind, name string) error {
	return errs.Invalidf("%s: unknown algorithm %q", k, name)
}

func boolParam(v float64) bool { return v != 0 }

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// CDFer 由具有解析 CDF 的分布實作（離散的 Zipf 除外）。
type CDFer interface {
	CDF(x float64) float64
}

// Prober 由有限支撐的離散分布實作；Probs()[k] 為 P(X = k)。
type Prober interface {
	Probs() []float64
}

// stepCDF 單點分布 x0 的 CDF。
func stepCDF(x, x0 float64) float64 {
	if x < x0 {
		return 0
	}
	return 1
}
