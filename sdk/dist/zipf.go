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

const (
	// 超過 2^53 的候選值無法以 float64 精確表示整數，直接拒絕。
	zipfMaxX = 1 << 53
	// 中位數/熵的數值加總上限。
	zipfSumLimit = 1 << 20
	zipfUniformN = 1 << 32
)

// Zipf 分布（Devroye 拒絕法），P(k) ∝ k^-(1+rho)。
// rho <= 0 時退化為 [1, 2^32] 的均勻正整數。
type Zipf struct {
	rho          float64
	a            float64 // 1 + rho
	b            float64 // 2^rho
	negInvRho    float64
	bMinus1Recip float64
}

func NewZipf(rho float64) *Zipf {
	z := &Zipf{}
	z.SetRho(rho)
	return z
}

func (z *Zipf) Kind() Kind { return KindZipf }

func (z *Zipf) SetRho(rho float64) {
	z.rho = rho
	if rho <= 0 {
		z.a, z.b, z.negInvRho, z.bMinus1Recip = 1, 1, 0, 0
		return
	}
	z.a = 1 + rho
	z.b = math.Exp2(rho)
	z.negInvRho = -1 / rho
	z.bMinus1Recip = 1 / (z.b - 1)
}

func (z *Zipf) Sample(c *core.Core) float64 {
	if z.rho <= 0 {
		return float64(c.Uint32()) + 1
	}
	for {
		u := c.Open()
		v := c.Open()
		x := math.Floor(math.Pow(u, z.negInvRho))
		if x > zipfMaxX || x < 1 {
			continue
		}
		t := math.Pow(1+1/x, z.rho)
		if v*x*(t-1)*z.bMinus1Recip <= t/z.b {
			return x
		}
	}
}

func (z *Zipf) SetParam(name string, v float64) error {
	switch name {
	case "rho", "s":
		z.SetRho(v)
	default:
		return unknownParam(KindZipf, name)
	}
	return nil
}

func (z *Zipf) Params() map[string]float64 {
	return map[string]float64{"rho": z.rho}
}

func (z *Zipf) Expect(m Moment) float64 {
	if z.rho <= 0 {
		n := float64(zipfUniformN)
		mid := (n + 1) / 2
		return summary{
			mean: mid, median: mid, mode: nan,
			variance: (n*n - 1) / 12,
			skew:     0, kurt: -6 * (n*n + 1) / (5 * (n*n - 1)),
			min: 1, max: n,
			entropy: math.Log(n),
		}.get(m)
	}

	a := z.a
	zeta := func(s float64) float64 { return mathext.Zeta(s, 1) }
	za := zeta(a)
	// 原點動差 E[X^n] = ζ(a-n)/ζ(a)，a-n > 1 時存在。
	raw := func(n float64) float64 {
		if a-n <= 1 {
			return posInf
		}
		return zeta(a-n) / za
	}
	s := summary{
		mean: raw(1), mode: 1,
		variance: posInf, skew: nan, kurt: nan,
		min: 1, max: posInf,
	}
	if a > 3 {
		m1, m2 := raw(1), raw(2)
		s.variance = m2 - m1*m1
		if a > 4 {
			m3 := raw(3)
			s.skew = (m3 - 3*m1*m2 + 2*m1*m1*m1) / math.Pow(s.variance, 1.5)
		}
		if a > 5 {
			m3, m4 := raw(3), raw(4)
			s.kurt = (m4-4*m1*m3+6*m1*m1*m2-3*m1*m1*m1*m1)/(s.variance*s.variance) - 3
		}
	}
	switch m {
	case Median:
		s.median = z.median(za)
	case Entropy:
		s.entropy = z.entropy(za)
	}
	return s.get(m)
}

// median 逐項累加 pmf；收斂太慢時回傳 NaN。
func (z *Zipf) median(za float64) float64 {
	cum := 0.0
	for k := 1; k <= zipfSumLimit; k++ {
		cum += math.Pow(float64(k), -z.a) / za
		if cum >= 0.5 {
			return float64(k)
		}
	}
	return nan
}

// entropy = ln ζ(a) + (a/ζ(a))·Σ ln(k)/k^a，截斷加總。
func (z *Zipf) entropy(za float64) float64 {
	sum := 0.0
	for k := 2; k <= zipfSumLimit; k++ {
		fk := float64(k)
		term := math.Log(fk) * math.Pow(fk, -z.a)
		sum += term
		if term < 1e-17*sum {
			break
		}
	}
	return math.Log(za) + z.a*sum/za
}
