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

package noise

import (
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/dist"
)

// FillWhite 以 [-1,1) 均勻白雜訊填滿訊號向量。
// 只取高 24 位元，float32 可精確表示，不會被捨入成 1。
func FillWhite(c *core.Core, dst []float32) {
	for i := range dst {
		dst[i] = float32(int32(c.Uint32())>>8) * (1.0 / (1 << 23))
	}
}

// FillGauss 以 N(0, sigma^2) 填滿訊號向量。
func FillGauss(c *core.Core, sigma float64, dst []float32) {
	for i := range dst {
		dst[i] = float32(sigma * dist.KR(c))
	}
}

// FillColored 以 Voss 串流填滿訊號向量。
func FillColored(v *Voss, dst []float32) {
	v.Fill(dst)
}

// FillDist 以任意分布的樣本填滿訊號向量，mask 於轉成 float32 後套用。
func FillDist(d dist.Dist, c *core.Core, m Mask, dst []float32) {
	for i := range dst {
		dst[i] = m.Apply(float32(d.Sample(c)))
	}
}

// Matrix 以列優先存放的二維格子。
type Matrix struct {
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	Cells []float32 `json:"cells"`
}

func NewMatrix(rows, cols int) *Matrix {
	rows, cols = max(rows, 0), max(cols, 0)
	return &Matrix{Rows: rows, Cols: cols, Cells: make([]float32, rows*cols)}
}

func (m *Matrix) At(r, c int) float32 { return m.Cells[r*m.Cols+c] }

// FillMatrix 逐格呼叫 next(舊值) 並寫回。
func FillMatrix(m *Matrix, next func(old float32) float32) {
	for i, x := range m.Cells {
		m.Cells[i] = next(x)
	}
}
