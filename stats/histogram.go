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

package stats

import (
	"math"
	"strconv"
)

// Histogram 等寬分箱的落點統計。
//
// 區間：(-inf,lo), [lo,lo+w), ..., [hi-w,hi), [hi,+inf)；NaN 計入最後一格。
// Index 為 O(1)，適合在抽樣迴圈內直接呼叫。
type Histogram struct {
	Labels []string  `json:"Labels"`
	Counts []int     `json:"Counts"`
	Dist   []float64 `json:"Dist"`
	lo, hi float64
	invW   float64
	bins   int
}

// NewHistogram 建立 [lo, hi) 上 bins 個等寬格（另加上下溢兩格）。
// bins < 1 或 hi <= lo 時退化為單格。
func NewHistogram(lo, hi float64, bins int) *Histogram {
	if bins < 1 || !(hi > lo) {
		bins = 1
		if !(hi > lo) {
			hi = lo + 1
		}
	}
	h := &Histogram{
		lo:     lo,
		hi:     hi,
		bins:   bins,
		invW:   float64(bins) / (hi - lo),
		Counts: make([]int, bins+2),
		Labels: make([]string, bins+2),
	}
	w := (hi - lo) / float64(bins)
	h.Labels[0] = "(-inf," + fmtEdge(lo) + ")"
	for i := 0; i < bins; i++ {
		a := lo + float64(i)*w
		h.Labels[i+1] = "[" + fmtEdge(a) + "," + fmtEdge(a+w) + ")"
	}
	h.Labels[bins+1] = "[" + fmtEdge(hi) + ",+inf)"
	return h
}

// Index 回傳 x 所在的格索引。
func (h *Histogram) Index(x float64) int {
	switch {
	case x < h.lo:
		return 0
	case x >= h.hi || math.IsNaN(x):
		return h.bins + 1
	}
	i := int((x - h.lo) * h.invW)
	if i >= h.bins { // 浮點誤差
		i = h.bins - 1
	}
	return i + 1
}

func (h *Histogram) Add(x float64) {
	h.Counts[h.Index(x)]++
}

// Merge 合併另一個相同分箱設定的直方圖。
func (h *Histogram) Merge(o *Histogram) {
	if o == nil || len(o.Counts) != len(h.Counts) {
		return
	}
	for i, c := range o.Counts {
		h.Counts[i] += c
	}
}

// Clone 回傳相同分箱、計數歸零的新直方圖。
func (h *Histogram) Clone() *Histogram {
	c := *h
	c.Counts = make([]int, len(h.Counts))
	c.Dist = nil
	return &c
}

// Done 依計數計算比例。
func (h *Histogram) Done() {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	h.Dist = make([]float64, len(h.Counts))
	if total == 0 {
		return
	}
	for i, c := range h.Counts {
		h.Dist[i] = float64(c) / float64(total)
	}
}

func fmtEdge(x float64) string {
	return strconv.FormatFloat(x, 'g', 4, 64)
}
