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

package dist

import (
	"math"
	"strconv"
	"strings"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/sampler"
)

// maxCategoricalWeight 單一權重上限，確保 total*N 不溢位。
const maxCategoricalWeight = 1 << 31

// Categorical 加權類別分布，回傳 0 起算的類別索引。
// 權重為非負整數，以 alias table 做 O(1) 抽樣；參數名稱為 w0, w1, ...
type Categorical struct {
	at  *sampler.AliasTable
	sum summary
}

// NewCategorical 以權重建立；權重不合法時回傳錯誤。
func NewCategorical(weights []int) (*Categorical, error) {
	c := &Categorical{}
	if err := c.SetWeights(weights); err != nil {
		return nil, err
	}
	return c, nil
}

func (d *Categorical) Kind() Kind { return KindCategorical }

// SetWeights 整組替換權重；失敗時狀態不變。
func (d *Categorical) SetWeights(weights []int) error {
	for i, w := range weights {
		if w > maxCategoricalWeight {
			return errs.Invalidf("categorical: weight w%d=%d exceeds %d", i, w, maxCategoricalWeight)
		}
	}
	at, err := sampler.NewAliasTable(weights)
	if err != nil {
		return err
	}
	d.at = at
	d.sum = categoricalSummary(at)
	return nil
}

// Weights 回傳目前權重的複本。
func (d *Categorical) Weights() []int {
	out := make([]int, d.at.Len())
	for i := range out {
		out[i] = d.at.Weight(i)
	}
	return out
}

func (d *Categorical) Sample(c *core.Core) float64 {
	return float64(d.at.Pick(c))
}

// SetParam 設定 wK；K 超過目前長度時以 0 補齊。
func (d *Categorical) SetParam(name string, v float64) error {
	i, err := categoricalIndex(name)
	if err != nil {
		return err
	}
	w, err := categoricalWeight(name, v)
	if err != nil {
		return err
	}
	ws := d.Weights()
	if i >= len(ws) {
		if i >= sampler.MaxCategories {
			return errs.OutOfMemoryf("categorical: index %d exceeds limit %d", i, sampler.MaxCategories)
		}
		ws = append(ws, make([]int, i+1-len(ws))...)
	}
	ws[i] = w
	return d.SetWeights(ws)
}

func (d *Categorical) Params() map[string]float64 {
	out := make(map[string]float64, d.at.Len())
	for i := 0; i < d.at.Len(); i++ {
		out["w"+strconv.Itoa(i)] = float64(d.at.Weight(i))
	}
	return out
}

func (d *Categorical) Expect(m Moment) float64 {
	return d.sum.get(m)
}

// Probs 各類別機率，實作 Prober。
func (d *Categorical) Probs() []float64 {
	out := make([]float64, d.at.Len())
	for i := range out {
		out[i] = d.at.P(i)
	}
	return out
}

func categoricalIndex(name string) (int, error) {
	s, ok := strings.CutPrefix(name, "w")
	if !ok || s == "" {
		return 0, unknownParam(KindCategorical, name)
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, unknownParam(KindCategorical, name)
	}
	return i, nil
}

func categoricalWeight(name string, v float64) (int, error) {
	if v < 0 || v != math.Trunc(v) || v > maxCategoricalWeight {
		return 0, errs.Invalidf("categorical: %s must be an integer in [0,%d], got %g", name, maxCategoricalWeight, v)
	}
	return int(v), nil
}

// applyCategorical 以 params 整組建立權重（未列出的索引為 0）。
func applyCategorical(d *Categorical, params map[string]float64) error {
	if len(params) == 0 {
		return nil
	}
	n := 0
	idx := make(map[int]int, len(params))
	for name, v := range params {
		i, err := categoricalIndex(name)
		if err != nil {
			return err
		}
		if i >= sampler.MaxCategories {
			return errs.OutOfMemoryf("categorical: index %d exceeds limit %d", i, sampler.MaxCategories)
		}
		w, err := categoricalWeight(name, v)
		if err != nil {
			return err
		}
		idx[i] = w
		n = max(n, i+1)
	}
	ws := make([]int, n)
	for i, w := range idx {
		ws[i] = w
	}
	return d.SetWeights(ws)
}

func categoricalSummary(at *sampler.AliasTable) summary {
	n := at.Len()
	s := summary{min: -1, mode: 0}
	best := -1
	cum := 0.0
	s.median = nan
	for i := 0; i < n; i++ {
		p := at.P(i)
		if p == 0 {
			continue
		}
		x := float64(i)
		if s.min < 0 {
			s.min = x
		}
		s.max = x
		if at.Weight(i) > best {
			best, s.mode = at.Weight(i), x
		}
		cum += p
		if math.IsNaN(s.median) && cum >= 0.5 {
			s.median = x
		}
		s.mean += p * x
		s.entropy -= p * math.Log(p)
	}
	var m2, m3, m4 float64
	for i := 0; i < n; i++ {
		p := at.P(i)
		dx := float64(i) - s.mean
		m2 += p * dx * dx
		m3 += p * dx * dx * dx
		m4 += p * dx * dx * dx * dx
	}
	s.variance = m2
	s.skew, s.kurt = nan, nan
	if m2 > 0 {
		s.skew = m3 / math.Pow(m2, 1.5)
		s.kurt = m4/(m2*m2) - 3
	}
	return s
}
