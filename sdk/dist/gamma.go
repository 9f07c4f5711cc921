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

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// GammaAlg 為 Gamma 抽樣演算法的標籤。
type GammaAlg int

const (
	GammaErlangDirect    GammaAlg = iota // 整數 alpha：均勻數連乘後取 log
	GammaErlangRejection                 // 整數 alpha：單位圓內比值法
	GammaGS                              // Ahrens-Dieter GS，0 < alpha < 1
	GammaGD                              // Ahrens-Dieter GD，alpha >= 1
)

var gammaAlgNames = [...]string{
	GammaErlangDirect:    "direct",
	GammaErlangRejection: "rejection",
	GammaGS:              "gs",
	GammaGD:              "gd",
}

func (a GammaAlg) String() string {
	if a < 0 || int(a) >= len(gammaAlgNames) {
		return "unknown"
	}
	return gammaAlgNames[a]
}

const (
	// erlangDirectMax 以內的整數 alpha 使用連乘；2^-33 的 13 次方遠大於 float64 最小值。
	erlangDirectMax = 13
	// 超過 int64 範圍的整數 alpha 無法當作 Erlang 階數。
	erlangMaxOrder = float64(math.MaxInt64)
)

// RecommendGammaAlg 依形狀參數選擇演算法（純函數）。
//
//	整數 alpha <= 13       → ErlangDirect
//	整數 13 < alpha < 2^63 → ErlangRejection
//	非整數 alpha < 1        → GS
//	其餘                    → GD
func RecommendGammaAlg(alpha float64) GammaAlg {
	if alpha < 0 || math.IsNaN(alpha) {
		alpha = 0
	}
	if alpha == math.Floor(alpha) {
		if alpha <= erlangDirectMax {
			return GammaErlangDirect
		}
		if alpha < erlangMaxOrder {
			return GammaErlangRejection
		}
		return GammaGD
	}
	if alpha < 1 {
		return GammaGS
	}
	return GammaGD
}

// gammaParams 是演算法標籤與其快取參數的 tagged union：
// 每個實作只攜帶自己需要的欄位，不可能以錯誤的變體讀取。
type gammaParams interface {
	alg() GammaAlg
	// draw 回傳單位尺度 (beta = 1) 的變量。
	draw(c *core.Core) float64
}

type erlangDirectParams struct {
	k int64
}

type erlangRejParams struct {
	am float64 // k - 1
	s  float64 // sqrt(2am + 1)
}

type gsParams struct {
	a float64
	b float64 // 1 + a/e
}

type gdParams struct {
	a, s2, s, d float64
	q0, b, si   float64
	c           float64
}

func (erlangDirectParams) alg() GammaAlg { return GammaErlangDirect }
func (erlangRejParams) alg() GammaAlg    { return GammaErlangRejection }
func (gsParams) alg() GammaAlg           { return GammaGS }
func (gdParams) alg() GammaAlg           { return GammaGD }

func newErlangDirect(k int64) erlangDirectParams {
	return erlangDirectParams{k: k}
}

func (p erlangDirectParams) draw(c *core.Core) float64 {
	return ErlangDirect(c, p.k)
}

// ErlangDirect 回傳 Erlang(k) 單位尺度變量：-ln(U1·…·Uk)。
// k 超過 13 時分段連乘，每段各自取 log，避免下溢到 0。
func ErlangDirect(c *core.Core, k int64) float64 {
	if k <= 0 {
		return 0
	}
	sum := 0.0
	for k > 0 {
		n := min(k, erlangDirectMax)
		k -= n
		p := 1.0
		for ; n > 0; n-- {
			p *= c.OpenClosed()
		}
		sum -= math.Log(p)
	}
	return sum
}

func newErlangRej(k int64) erlangRejParams {
	am := float64(k - 1)
	return erlangRejParams{am: am, s: math.Sqrt(2*am + 1)}
}

func (p erlangRejParams) draw(c *core.Core) float64 {
	for {
		var x, y float64
		for {
			var v1, v2 float64
			for {
				v1 = c.Open()
				v2 = c.Signed()
				if v1*v1+v2*v2 <= 1 {
					break
				}
			}
			y = v2 / v1
			x = p.s*y + p.am
			if x > 0 {
				break
			}
		}
		e := (1 + y*y) * math.Exp(p.am*math.Log(x/p.am)-p.s*y)
		if c.Open() <= e {
			return x
		}
	}
}

// ErlangRejection 回傳 Erlang(k) 單位尺度變量（比值法）；k < 2 時退回連乘。
func ErlangRejection(c *core.Core, k int64) float64 {
	if k < 2 {
		return ErlangDirect(c, k)
	}
	return newErlangRej(k).draw(c)
}

func newGS(a float64) gsParams {
	return gsParams{a: a, b: 1 + a/math.E}
}

func (p gsParams) draw(c *core.Core) float64 {
	for {
		u := p.b * c.Open()
		if u >= 1 {
			x := -math.Log((p.b - u) / p.a)
			if c.Exponential() >= (1-p.a)*math.Log(x) {
				return x
			}
			continue
		}
		x := math.Exp(math.Log(u) / p.a)
		if c.Exponential() >= x {
			return x
		}
	}
}

// GD 的多項式係數與區間常數沿用 Ahrens-Dieter (1982) 原始數值。
const (
	gdQ1 = 0.04166669
	gdQ2 = 0.02083148
	gdQ3 = 0.00801191
	gdQ4 = 0.00144121
	gdQ5 = -7.388e-5
	gdQ6 = 2.4511e-4
	gdQ7 = 2.424e-4

	gdA1 = 0.3333333
	gdA2 = -0.250003
	gdA3 = 0.2000062
	gdA4 = -0.1662921
	gdA5 = 0.1423657
	gdA6 = -0.1367177
	gdA7 = 0.1233795

	gdE1 = 1.0
	gdE2 = 0.4999897
	gdE3 = 0.166829
	gdE4 = 0.0407753
	gdE5 = 0.010293

	gdSqrt32 = 5.656854
	gdTau1   = -0.7187449
)

func newGD(a float64) gdParams {
	p := gdParams{a: a}
	p.s2 = a - 0.5
	p.s = math.Sqrt(p.s2)
	p.d = gdSqrt32 - 12*p.s

	r := 1 / a
	p.q0 = ((((((gdQ7*r+gdQ6)*r+gdQ5)*r+gdQ4)*r+gdQ3)*r+gdQ2)*r + gdQ1) * r

	switch {
	case a <= 3.686:
		p.b = 0.463 + p.s + 0.178*p.s2
		p.si = 1.235
		p.c = 0.195/p.s - 0.079 + 0.16*p.s
	case a <= 13.022:
		p.b = 1.654 + 0.0076*p.s2
		p.si = 1.68/p.s + 0.275
		p.c = 0.062/p.s + 0.024
	default:
		p.b = 1.77
		p.si = 0.75
		p.c = 0.1515 / p.s
	}
	return p
}

func (p gdParams) quotient(t float64) float64 {
	v := t / (p.s + p.s)
	if math.Abs(v) <= 0.25 {
		return p.q0 + 0.5*t*t*((((((gdA7*v+gdA6)*v+gdA5)*v+gdA4)*v+gdA3)*v+gdA2)*v+gdA1)*v
	}
	return p.q0 - p.s*t + 0.25*t*t + (p.s2+p.s2)*math.Log(1+v)
}

func (p gdParams) draw(c *core.Core) float64 {
	// 立即接受
	t := KR(c)
	x := p.s + 0.5*t
	ret := x * x
	if t >= 0 {
		return ret
	}

	// 擠壓接受
	u := c.Open()
	if p.d*u <= t*t*t {
		return ret
	}

	// 商接受
	if x > 0 {
		if math.Log(1-u) <= p.quotient(t) {
			return ret
		}
	}

	// 雙指數包絡的拒絕迴圈
	for {
		e := c.Exponential()
		u = c.Signed()
		if u < 0 {
			t = p.b - p.si*e
		} else {
			t = p.b + p.si*e
		}
		if t < gdTau1 {
			continue
		}
		q := p.quotient(t)
		if q <= 0 {
			continue
		}
		var w float64
		if q <= 0.5 {
			w = ((((gdE5*q+gdE4)*q+gdE3)*q+gdE2)*q + gdE1) * q
		} else {
			w = math.Exp(q) - 1
		}
		if p.c*math.Abs(u) <= w*math.Exp(e-0.5*t*t) {
			break
		}
	}
	x = p.s + 0.5*t
	return x * x
}

// Gamma 分布，形狀 alpha、尺度 beta。
// alpha < 0 夾到 0；alpha == 0 或 beta <= 0 時輸出恆為 0。
type Gamma struct {
	alpha, beta float64
	auto        bool // 參數變更時重新挑選演算法
	p           gammaParams
}

// NewGamma 建立 Gamma 分布，演算法由 RecommendGammaAlg 自動選擇。
func NewGamma(alpha, beta float64) *Gamma {
	g := &Gamma{beta: beta, auto: true}
	g.SetAlpha(alpha)
	return g
}

func (g *Gamma) Kind() Kind { return KindGamma }

// SetAlpha 設定形狀並重建快取；若先前指定的演算法不再適用則回到自動選擇。
func (g *Gamma) SetAlpha(alpha float64) {
	if alpha < 0 || math.IsNaN(alpha) {
		alpha = 0
	}
	g.alpha = alpha
	if !g.auto && g.p != nil && gammaAlgApplies(g.p.alg(), alpha) {
		g.p = buildGammaParams(g.p.alg(), alpha)
		return
	}
	g.auto = true
	g.p = buildGammaParams(RecommendGammaAlg(alpha), alpha)
}

func (g *Gamma) SetBeta(beta float64) { g.beta = beta }

// SetAlg 強制使用指定演算法；不適用於目前 alpha 時回傳錯誤且狀態不變。
func (g *Gamma) SetAlg(a GammaAlg) error {
	if !gammaAlgApplies(a, g.alpha) {
		return errs.Invalidf("gamma: algorithm %s not applicable for alpha=%g", a, g.alpha)
	}
	g.auto = false
	g.p = buildGammaParams(a, g.alpha)
	return nil
}

// CurrentAlg 回傳目前使用的演算法。
func (g *Gamma) CurrentAlg() GammaAlg { return g.p.alg() }

func gammaAlgApplies(a GammaAlg, alpha float64) bool {
	integral := alpha == math.Floor(alpha) && alpha < erlangMaxOrder
	switch a {
	case GammaErlangDirect:
		return integral
	case GammaErlangRejection:
		return integral && alpha >= 2
	case GammaGS:
		return alpha > 0 && alpha <= 1
	case GammaGD:
		return alpha >= 1
	}
	return false
}

func buildGammaParams(a GammaAlg, alpha float64) gammaParams {
	switch a {
	case GammaErlangRejection:
		return newErlangRej(int64(alpha))
	case GammaGS:
		return newGS(alpha)
	case GammaGD:
		return newGD(alpha)
	default:
		return newErlangDirect(int64(alpha))
	}
}

func (g *Gamma) Sample(c *core.Core) float64 {
	if g.alpha == 0 || g.beta <= 0 {
		return 0
	}
	return g.beta * g.p.draw(c)
}

func (g *Gamma) SetParam(name string, v float64) error {
	switch name {
	case "alpha", "shape", "k":
		g.SetAlpha(v)
	case "beta", "scale", "theta":
		g.SetBeta(v)
	default:
		return unknownParam(KindGamma, name)
	}
	return nil
}

func (g *Gamma) Params() map[string]float64 {
	return map[string]float64{"alpha": g.alpha, "beta": g.beta}
}

func (g *Gamma) UseAlg(name string) error {
	switch name {
	case "", "auto":
		g.auto = true
		g.p = buildGammaParams(RecommendGammaAlg(g.alpha), g.alpha)
		return nil
	case "direct", "erlang":
		return g.SetAlg(GammaErlangDirect)
	case "rejection", "erlang-rejection":
		return g.SetAlg(GammaErlangRejection)
	case "gs":
		return g.SetAlg(GammaGS)
	case "gd":
		return g.SetAlg(GammaGD)
	}
	return unknownAlg(KindGamma, name)
}

func (g *Gamma) Alg() string {
	if g.auto {
		return "auto:" + g.p.alg().String()
	}
	return g.p.alg().String()
}

func (g *Gamma) Expect(m Moment) float64 {
	if g.alpha == 0 || g.beta <= 0 {
		return pointMass(0).get(m)
	}
	a, b := g.alpha, g.beta
	lg, _ := math.Lgamma(a)
	s := summary{
		mean:     a * b,
		mode:     0,
		variance: a * b * b,
		skew:     2 / math.Sqrt(a),
		kurt:     6 / a,
		min:      0,
		max:      posInf,
		entropy:  a + math.Log(b) + lg + (1-a)*mathext.Digamma(a),
	}
	if a >= 1 {
		s.mode = (a - 1) * b
	}
	if m == Median {
		s.median = distuv.Gamma{Alpha: a, Beta: 1 / b}.Quantile(0.5)
	}
	return s.get(m)
}

func (g *Gamma) CDF(x float64) float64 {
	if g.alpha == 0 || g.beta <= 0 {
		return stepCDF(x, 0)
	}
	return distuv.Gamma{Alpha: g.alpha, Beta: 1 / g.beta}.CDF(x)
}
