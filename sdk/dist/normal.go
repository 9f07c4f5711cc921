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
	"gonum.org/v1/gonum/stat/distuv"
)

// Kinderman-Ramage 常數（修正版，與 R 的 norm_rand 相同）。
const (
	krA  = 2.216035867166471
	krC1 = 0.398942280401433
	krC2 = 0.180025191068563

	krBody  = 0.884070402298758
	krReg1  = 0.911312780288703
	krReg2  = 0.958720824790463
	krTail  = 0.973310954173898
	krTailS = 0.986655477086949
)

func krPhi(x float64) float64 {
	return krC1*math.Exp(-x*x/2) - krC2*(krA-x)
}

func signedBy(u2, u3, t float64) float64 {
	if u2 < u3 {
		return t
	}
	return -t
}

// KR 以 Kinderman-Ramage 演算法回傳一個標準常態變量。
// 每次呼叫一個變量；五個區域依第一個均勻數選擇，區域內以拒絕法迴圈。
func KR(c *core.Core) float64 {
	u1 := c.Open()
	if u1 < krBody {
		u2 := c.Open()
		return krA * (1.13113163544418*u1 + u2 - 1)
	}

	if u1 >= krTail {
		for {
			u2 := c.Open()
			u3 := c.Open()
			tt := krA*krA - 2*math.Log(u3)
			if u2*u2 < (krA*krA)/tt {
				if u1 < krTailS {
					return math.Sqrt(tt)
				}
				return -math.Sqrt(tt)
			}
		}
	}

	if u1 >= krReg2 {
		for {
			u2 := c.Open()
			u3 := c.Open()
			tt := krA - 0.630834801921960*math.Min(u2, u3)
			if math.Max(u2, u3) <= 0.755591531667601 {
				return signedBy(u2, u3, tt)
			}
			if 0.034240503750111*math.Abs(u2-u3) <= krPhi(tt) {
				return signedBy(u2, u3, tt)
			}
		}
	}

	if u1 >= krReg1 {
		for {
			u2 := c.Open()
			u3 := c.Open()
			tt := 0.479727404222441 + 1.10547366102207*math.Min(u2, u3)
			if math.Max(u2, u3) <= 0.872834976671790 {
				return signedBy(u2, u3, tt)
			}
			if 0.049264496342790*math.Abs(u2-u3) <= krPhi(tt) {
				return signedBy(u2, u3, tt)
			}
		}
	}

	for {
		u2 := c.Open()
		u3 := c.Open()
		tt := 0.479727404222441 - 0.595507138015940*math.Min(u2, u3)
		if tt < 0 {
			continue
		}
		if math.Max(u2, u3) <= 0.805577924423817 {
			return signedBy(u2, u3, tt)
		}
		if 0.053377549506886*math.Abs(u2-u3) <= krPhi(tt) {
			return signedBy(u2, u3, tt)
		}
	}
}

// BoxMuller 為極座標版 Box-Muller，一次產生兩個變量並快取第二個。
// 快取屬於實例本身，不同實例互不干擾。
type BoxMuller struct {
	spare    float64
	hasSpare bool
}

// Next 回傳一個標準常態變量。
func (b *BoxMuller) Next(c *core.Core) float64 {
	if b.hasSpare {
		b.hasSpare = false
		return b.spare
	}
	var x, y, r2 float64
	for {
		x = c.Signed()
		y = c.Signed()
		r2 = x*x + y*y
		if r2 > 0 && r2 < 1 {
			break
		}
	}
	f := math.Sqrt(-2 * math.Log(r2) / r2)
	b.spare = y * f
	b.hasSpare = true
	return x * f
}

// Reset 丟棄快取的第二個變量。
func (b *BoxMuller) Reset() { b.hasSpare = false }

// NormalAlg 常態抽樣演算法。
type NormalAlg int

const (
	NormalKR NormalAlg = iota
	NormalBoxMuller
)

func (a NormalAlg) String() string {
	if a == NormalBoxMuller {
		return "boxmuller"
	}
	return "kr"
}

// Normal 為 N(mu, sigma²)。sigma <= 0 時退化為常數 mu。
type Normal struct {
	mu, sigma float64
	alg       NormalAlg
	bm        BoxMuller
}

func NewNormal(mu, sigma float64) *Normal {
	return &Normal{mu: mu, sigma: sigma}
}

func (n *Normal) Kind() Kind { return KindNormal }

func (n *Normal) Sample(c *core.Core) float64 {
	if n.sigma <= 0 {
		return n.mu
	}
	var z float64
	if n.alg == NormalBoxMuller {
		z = n.bm.Next(c)
	} else {
		z = KR(c)
	}
	return n.sigma*z + n.mu
}

func (n *Normal) SetParam(name string, v float64) error {
	switch name {
	case "mu", "mean", "loc":
		n.mu = v
	case "sigma", "stddev", "scale":
		n.sigma = v
	default:
		return unknownParam(KindNormal, name)
	}
	return nil
}

func (n *Normal) Params() map[string]float64 {
	return map[string]float64{"mu": n.mu, "sigma": n.sigma}
}

func (n *Normal) UseAlg(name string) error {
	switch name {
	case "", "kr", "kinderman-ramage":
		n.alg = NormalKR
	case "boxmuller", "box-muller", "bm":
		n.alg = NormalBoxMuller
	default:
		return unknownAlg(KindNormal, name)
	}
	n.bm.Reset()
	return nil
}

func (n *Normal) Alg() string { return n.alg.String() }

func (n *Normal) Expect(m Moment) float64 {
	if n.sigma <= 0 {
		return pointMass(n.mu).get(m)
	}
	s := summary{
		mean: n.mu, median: n.mu, mode: n.mu,
		variance: n.sigma * n.sigma,
		skew:     0, kurt: 0,
		min: negInf, max: posInf,
		entropy: 0.5 * math.Log(2*math.Pi*math.E*n.sigma*n.sigma),
	}
	return s.get(m)
}

func (n *Normal) CDF(x float64) float64 {
	if n.sigma <= 0 {
		return stepCDF(x, n.mu)
	}
	return distuv.Normal{Mu: n.mu, Sigma: n.sigma}.CDF(x)
}
