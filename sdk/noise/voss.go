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

// Package noise 提供串流式有色雜訊（Voss-McCartney 中點位移）與訊號填充工具。
//
// 每個 Voss 實例獨佔自己的緩衝區與產生器，不可重入；
// 緩衝區重建是週期性的較大成本，其餘每個樣本 O(1)。
package noise

import (
	"math"
	"slices"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/dist"
)

// 常用色彩的 Hurst 指數。
const (
	Pink  = 0.0 // 1/f
	Brown = 0.5 // 1/f^2
	Black = 1.0 // 1/f^3
)

const (
	MinPow = 1
	// MaxPow 緩衝區 2^MaxPow 個樣本，超過視為配置失敗。
	MaxPow = 24
)

// State 串流狀態
type State uint8

const (
	NeedsRegen State = iota // 游標到達緩衝區尾端
	Streaming
)

func (s State) String() string {
	if s == Streaming {
		return "streaming"
	}
	return "needs-regen"
}

// Voss 以中點位移產生 1/f^n 雜訊的串流狀態機。
//
// 緩衝區長度為 N+1：buf[0] 承接上一輪的 buf[N]，避免在重建邊界產生跳點。
// pi > 0 時改走漸進模式：buf 保留，每輸出一格就朝新的 goal 推進 pi 比例。
type Voss struct {
	c      *core.Core
	hurst  float64
	hf     float64 // 0.5^hurst
	gain   float64
	pow    int
	n      int
	buf    []float64
	goal   []float64
	cursor int
	pi     float64
	mask   Mask
	primed bool
}

// NewVoss 建立 Hurst 指數 hurst、緩衝區 2^pow 的雜訊源。
// pow 小於 MinPow 時夾到 MinPow；超過 MaxPow 回傳 ErrOutOfMemory。
func NewVoss(hurst float64, pow int, c *core.Core) (*Voss, error) {
	v := &Voss{c: c}
	v.SetHurst(hurst)
	if err := v.SetPow(pow); err != nil {
		return nil, err
	}
	return v, nil
}

// ============================================================
// ** 參數 **
// ============================================================

// SetHurst 設定 Hurst 指數（夾到 [0,1]），立即重算衰減因子與增益。
func (v *Voss) SetHurst(h float64) {
	if math.IsNaN(h) {
		h = 0
	}
	v.hurst = min(max(h, 0), 1)
	v.hf = math.Pow(0.5, v.hurst)
	v.gain = hurstGain(v.hf, v.pow)
}

func (v *Voss) Hurst() float64 { return v.hurst }

// SetPow 重新配置 2^pow 大小的緩衝區；失敗時狀態不變。
// 舊緩衝區的值依索引保留，新增的格子從 0 開始，並強制下一個樣本重建。
func (v *Voss) SetPow(pow int) error {
	pow = max(pow, MinPow)
	if pow > MaxPow {
		return errs.OutOfMemoryf("noise: buffer 2^%d exceeds 2^%d", pow, MaxPow)
	}
	n := 1 << pow
	buf := make([]float64, n+1)
	copy(buf, v.buf)
	if len(v.buf) > 0 {
		// 重建時 buf[0] 取自 buf[N]，讓新的尾端延續舊的尾端
		buf[n] = v.buf[len(v.buf)-1]
	}
	v.buf = buf
	v.goal = nil
	if v.pi > 0 {
		v.goal = make([]float64, n+1)
		v.goal[n] = buf[n]
	}
	v.pow, v.n = pow, n
	v.cursor = n
	v.gain = hurstGain(v.hf, pow)
	return nil
}

func (v *Voss) Pow() int { return v.pow }

// Len 緩衝區樣本數 N。
func (v *Voss) Len() int { return v.n }

// SetPitch 設定漸進模式的推進比例 pi（夾到 [0,1]），0 表示每輪整批重建。
func (v *Voss) SetPitch(pi float64) {
	if math.IsNaN(pi) {
		pi = 0
	}
	pi = min(max(pi, 0), 1)
	if pi > 0 && v.goal == nil {
		v.goal = make([]float64, v.n+1)
		v.goal[v.n] = v.buf[v.n]
	}
	if pi == 0 {
		v.goal = nil
	}
	v.pi = pi
}

func (v *Voss) Pitch() float64 { return v.pi }

// SetNN 設定位元深度遮罩，見 NewMask。
func (v *Voss) SetNN(nn int) { v.mask = NewMask(nn) }

func (v *Voss) State() State {
	if v.cursor >= v.n {
		return NeedsRegen
	}
	return Streaming
}

// Buffer 回傳目前緩衝區（長度 N+1）的複本。
func (v *Voss) Buffer() []float64 { return slices.Clone(v.buf) }

// ============================================================
// ** 輸出 **
// ============================================================

// Next 回傳下一個樣本。
func (v *Voss) Next() float32 {
	if v.cursor >= v.n {
		v.regen()
	}
	x := v.buf[v.cursor] * v.gain
	v.cursor++
	// 漸進模式推進的是下一個要輸出的格；buf[N] 留給 regen
	if v.pi > 0 && v.cursor < v.n {
		i := v.cursor
		v.buf[i] += v.pi * (v.goal[i] - v.buf[i])
	}
	return v.mask.Apply(float32(x))
}

// Fill 以連續樣本填滿 dst。
func (v *Voss) Fill(dst []float32) {
	for i := range dst {
		dst[i] = v.Next()
	}
}

// Reset 清空緩衝區並回到 NeedsRegen。
func (v *Voss) Reset() {
	clear(v.buf)
	clear(v.goal)
	v.cursor = v.n
	v.primed = false
}

func (v *Voss) regen() {
	n := v.n
	if !v.primed {
		// 第一輪沒有前一段可承接，直接從 0 起點長出一段
		v.displace(v.buf)
		v.primed = true
	}
	if v.pi > 0 {
		v.buf[n] += v.pi * (v.goal[n] - v.buf[n])
		v.buf[0] = v.buf[n]
		v.goal[0] = v.buf[0]
		v.displace(v.goal)
		// 漸進模式下 buf[N] 只朝 goal 推進，輸出段仍由 buf 提供
		v.cursor = 0
		return
	}
	v.buf[0] = v.buf[n]
	v.displace(v.buf)
	v.cursor = 0
}

// displace 保留 b[0]，抽新的 b[N]，再由 N/2 一路對半到 1 做中點位移。
// 第 l 層的擾動標準差為 hf^l。
func (v *Voss) displace(b []float64) {
	n := v.n
	b[n] = dist.KR(v.c)
	scale := v.hf
	for stride := n / 2; stride >= 1; stride /= 2 {
		for i := stride; i < n; i += 2 * stride {
			b[i] = 0.5*(b[i-stride]+b[i+stride]) + scale*dist.KR(v.c)
		}
		scale *= v.hf
	}
}

// hurstGain 使不同顏色的輸出 RMS 大致相同：1/sqrt(1 + Σ hf^(2l))。
func hurstGain(hf float64, levels int) float64 {
	s := 1.0
	h2 := hf * hf
	p := 1.0
	for l := 1; l <= levels; l++ {
		p *= h2
		s += p
	}
	return 1 / math.Sqrt(s)
}
