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

	"github.com/zintix-labs/litterlab/sdk/core"
	"gonum.org/v1/gonum/mathext"
)

// KumaRegime 為 Kumaraswamy 參數組合對應的抽樣分支，參數每次變更都重新判定。
type KumaRegime int

const (
	KumaGeneral       KumaRegime = iota
	KumaUniform                  // alpha == beta == 1
	KumaAlways0                  // alpha == 0, beta > 0
	KumaAlways1                  // alpha > 0, beta == 0
	KumaIndeterminate            // alpha == beta == 0，擲硬幣決定 0 或 1
)

var kumaRegimeNames = [...]string{"general", "uniform", "always0", "always1", "indeterminate"}

func (r KumaRegime) String() string {
	if r < 0 || int(r) >= len(kumaRegimeNames) {
		return "unknown"
	}
	return kumaRegimeNames[r]
}

// Kumaraswamy 分布（[0,1] 上），反 CDF：(1 - (1-U)^(1/beta))^(1/alpha)。
// 負參數夾到 0。
type Kumaraswamy struct {
	alpha, beta       float64
	invAlpha, invBeta float64
	regime            KumaRegime
	coin              SignBits
}

func NewKumaraswamy(alpha, beta float64) *Kumaraswamy {
	k := &Kumaraswamy{}
	k.Set(alpha, beta)
	return k
}

func (k *Kumaraswamy) Kind() Kind { return KindKumaraswamy }

// Set 設定兩個形狀參數並重新判定分支。
func (k *Kumaraswamy) Set(alpha, beta float64) {
	k.alpha = math.Max(alpha, 0)
	k.beta = math.Max(beta, 0)
	k.invAlpha, k.invBeta = 0, 0
	switch {
	case k.alpha == 0 && k.beta == 0:
		k.regime = KumaIndeterminate
	case k.alpha == 0:
		k.regime = KumaAlways0
	case k.beta == 0:
		k.regime = KumaAlways1
	case k.alpha == 1 && k.beta == 1:
		k.regime = KumaUniform
	default:
		k.regime = KumaGeneral
		k.invAlpha = 1 / k.alpha
		k.invBeta = 1 / k.beta
	}
}

func (k *Kumaraswamy) Regime() KumaRegime { return k.regime }

func (k *Kumaraswamy) Sample(c *core.Core) float64 {
	switch k.regime {
	case KumaUniform:
		return c.ClosedOpen()
	case KumaAlways0:
		return 0
	case KumaAlways1:
		return 1
	case KumaIndeterminate:
		return b2f(k.coin.Next(c))
	}
	return math.Pow(1-math.Pow(c.OpenClosed(), k.invBeta), k.invAlpha)
}

func (k *Kumaraswamy) SetParam(name string, v float64) error {
	switch name {
	case "alpha", "a":
		k.Set(v, k.beta)
	case "beta", "b":
		k.Set(k.alpha, v)
	default:
		return unknownParam(KindKumaraswamy, name)
	}
	return nil
}

func (k *Kumaraswamy) Params() map[string]float64 {
	return map[string]float64{"alpha": k.alpha, "beta": k.beta}
}

func (k *Kumaraswamy) Expect(m Moment) float64 {
	switch k.regime {
	case KumaAlways0:
		return pointMass(0).get(m)
	case KumaAlways1:
		return pointMass(1).get(m)
	case KumaUniform:
		return summary{
			mean: 0.5, median: 0.5, mode: nan,
			variance: 1.0 / 12,
			skew:     0, kurt: -1.2,
			min: 0, max: 1,
			entropy: 0,
		}.get(m)
	case KumaIndeterminate:
		return summary{
			mean: 0.5, median: 0.5, mode: nan,
			variance: 0.25,
			skew:     0, kurt: -2,
			min: 0, max: 1,
			entropy: math.Ln2,
		}.get(m)
	}

	a, b := k.alpha, k.beta
	raw := func(n float64) float64 { return b * mathext.Beta(1+n/a, b) }
	m1, m2, m3, m4 := raw(1), raw(2), raw(3), raw(4)
	v := m2 - m1*m1
	sd := math.Sqrt(v)
	s := summary{
		mean:     m1,
		median:   math.Pow(1-math.Pow(2, -1/b), 1/a),
		mode:     nan,
		variance: v,
		skew:     (m3 - 3*m1*m2 + 2*m1*m1*m1) / (v * sd),
		kurt:     (m4-4*m1*m3+6*m1*m1*m2-3*m1*m1*m1*m1)/(v*v) - 3,
		min:      0,
		max:      1,
		// H_b = digamma(b+1) + γ
		entropy: (1 - 1/b) + (1-1/a)*(mathext.Digamma(b+1)+eulerGamma) - math.Log(a*b),
	}
	if a >= 1 && b >= 1 && (a != 1 || b != 1) {
		s.mode = math.Pow((a-1)/(a*b-1), 1/a)
	}
	return s.get(m)
}

func (k *Kumaraswamy) CDF(x float64) float64 {
	switch k.regime {
	case KumaAlways0:
		return stepCDF(x, 0)
	case KumaAlways1:
		return stepCDF(x, 1)
	case KumaIndeterminate:
		switch {
		case x < 0:
			return 0
		case x < 1:
			return 0.5
		}
		return 1
	}
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	if k.regime == KumaUniform {
		return x
	}
	return 1 - math.Pow(1-math.Pow(x, k.alpha), k.beta)
}
