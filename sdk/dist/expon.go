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

// Exponential 指數分布（sym 為 true 時為 Laplace），尺度 tau、位置 loc。
// tau <= 0 時輸出恆為 loc。
type Exponential struct {
	tau, loc float64
	sym      bool
}

func NewExponential(tau, loc float64) *Exponential {
	return &Exponential{tau: tau, loc: loc}
}

func NewLaplace(tau, loc float64) *Exponential {
	return &Exponential{tau: tau, loc: loc, sym: true}
}

func (x *Exponential) Kind() Kind { return KindExponential }

func (x *Exponential) Sample(c *core.Core) float64 {
	if x.tau <= 0 {
		return x.loc
	}
	if x.sym {
		return x.loc + x.tau*core.UnitToLaplace(c.Open())
	}
	return x.loc + x.tau*c.Exponential()
}

func (x *Exponential) SetParam(name string, v float64) error {
	switch name {
	case "tau", "scale":
		x.tau = v
	case "loc", "location":
		x.loc = v
	case "sym", "symmetry":
		x.sym = boolParam(v)
	default:
		return unknownParam(KindExponential, name)
	}
	return nil
}

func (x *Exponential) Params() map[string]float64 {
	return map[string]float64{"tau": x.tau, "loc": x.loc, "sym": b2f(x.sym)}
}

func (x *Exponential) Expect(m Moment) float64 {
	if x.tau <= 0 {
		return pointMass(x.loc).get(m)
	}
	t, l := x.tau, x.loc
	if x.sym {
		return summary{
			mean: l, median: l, mode: l,
			variance: 2 * t * t,
			skew:     0, kurt: 3,
			min: negInf, max: posInf,
			entropy: 1 + math.Log(2*t),
		}.get(m)
	}
	return summary{
		mean: l + t, median: l + t*math.Ln2, mode: l,
		variance: t * t,
		skew:     2, kurt: 6,
		min: l, max: posInf,
		entropy: 1 + math.Log(t),
	}.get(m)
}

func (x *Exponential) CDF(v float64) float64 {
	if x.tau <= 0 {
		return stepCDF(v, x.loc)
	}
	if x.sym {
		return distuv.Laplace{Mu: x.loc, Scale: x.tau}.CDF(v)
	}
	return distuv.Exponential{Rate: 1 / x.tau}.CDF(v - x.loc)
}
