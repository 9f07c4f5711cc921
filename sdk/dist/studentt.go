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
	"gonum.org/v1/gonum/stat/distuv"
)

// StudentT 分布，自由度為整數，dof <= 0 視為 1。依自由度分派：
//
//	1  → Cauchy (Ahrens-Dieter)
//	2  → 直接公式 (2u-1)/sqrt(2u(1-u))
//	3  → Bailey 極座標法
//	≥4 → 一般化 Bailey：徑向量改以 expm1 計算，另加有限性接受檢定
type StudentT struct {
	dof int64
	nu  float64
	// 快取
	negTwoOverNu float64 // Bailey: -2/ν
}

func NewStudentT(dof int64) *StudentT {
	t := &StudentT{}
	t.SetDoF(dof)
	return t
}

func (t *StudentT) Kind() Kind { return KindStudentT }

func (t *StudentT) SetDoF(dof int64) {
	if dof <= 0 {
		dof = 1
	}
	t.dof = dof
	nu := float64(dof)
	t.nu = nu
	t.negTwoOverNu = -2 / nu
}

func (t *StudentT) DoF() int64 { return t.dof }

func (t *StudentT) Sample(c *core.Core) float64 {
	switch t.dof {
	case 1:
		return CauchyAD(c)
	case 2:
		u := c.Open()
		return (2*u - 1) / math.Sqrt(2*u*(1-u))
	case 3:
		return t.bailey(c)
	}
	return t.baileyGeneral(c)
}

func (t *StudentT) bailey(c *core.Core) float64 {
	for {
		u := c.Signed()
		v := c.Signed()
		w := u*u + v*v
		if w > 0 && w <= 1 {
			return u * math.Sqrt(t.nu*(math.Pow(w, t.negTwoOverNu)-1)/w)
		}
	}
}

// baileyGeneral 同為單位圓內取點，但 ν 大時 w^(-2/ν) 貼近 1，
// 直接相減會損失有效位數，改用 expm1((-2/ν)·ln w)。
func (t *StudentT) baileyGeneral(c *core.Core) float64 {
	for {
		u := c.Signed()
		v := c.Signed()
		w := u*u + v*v
		if w <= 0 || w > 1 {
			continue
		}
		r2 := t.nu * math.Expm1(t.negTwoOverNu*math.Log(w)) / w
		if r2 >= 0 && r2 < posInf {
			return u * math.Sqrt(r2)
		}
	}
}

func (t *StudentT) SetParam(name string, v float64) error {
	switch name {
	case "dof", "nu", "freedom":
		t.SetDoF(int64(math.Floor(v)))
	default:
		return unknownParam(KindStudentT, name)
	}
	return nil
}

func (t *StudentT) Params() map[string]float64 {
	return map[string]float64{"dof": float64(t.dof)}
}

func (t *StudentT) Expect(m Moment) float64 {
	nu := t.nu
	s := summary{
		mean: nan, median: 0, mode: 0,
		variance: nan, skew: nan, kurt: nan,
		min: negInf, max: posInf,
		entropy: (nu+1)/2*(mathext.Digamma((nu+1)/2)-mathext.Digamma(nu/2)) +
			math.Log(math.Sqrt(nu)*mathext.Beta(nu/2, 0.5)),
	}
	if nu > 1 {
		s.mean = 0
	}
	switch {
	case nu > 2:
		s.variance = nu / (nu - 2)
	case nu > 1:
		s.variance = posInf
	}
	if nu > 3 {
		s.skew = 0
	}
	switch {
	case nu > 4:
		s.kurt = 6 / (nu - 4)
	case nu > 2:
		s.kurt = posInf
	}
	return s.get(m)
}

func (t *StudentT) CDF(x float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: t.nu}.CDF(x)
}
