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

// Pareto 分布：beta·U^(-1/alpha)。alpha <= 0 或 beta <= 0 時輸出恆為 beta。
type Pareto struct {
	alpha, beta float64
	negInvAlpha float64
}

func NewPareto(alpha, beta float64) *Pareto {
	p := &Pareto{beta: beta}
	p.SetAlpha(alpha)
	return p
}

func (p *Pareto) Kind() Kind { return KindPareto }

func (p *Pareto) SetAlpha(alpha float64) {
	p.alpha = alpha
	if alpha > 0 {
		p.negInvAlpha = -1 / alpha
	} else {
		p.negInvAlpha = 0
	}
}

func (p *Pareto) Sample(c *core.Core) float64 {
	if p.alpha <= 0 || p.beta <= 0 {
		return p.beta
	}
	return p.beta * math.Pow(c.OpenClosed(), p.negInvAlpha)
}

func (p *Pareto) SetParam(name string, v float64) error {
	switch name {
	case "alpha", "shape":
		p.SetAlpha(v)
	case "beta", "scale", "xm":
		p.beta = v
	default:
		return unknownParam(KindPareto, name)
	}
	return nil
}

func (p *Pareto) Params() map[string]float64 {
	return map[string]float64{"alpha": p.alpha, "beta": p.beta}
}

func (p *Pareto) Expect(m Moment) float64 {
	if p.alpha <= 0 || p.beta <= 0 {
		return pointMass(p.beta).get(m)
	}
	a, b := p.alpha, p.beta
	s := summary{
		mean: posInf, median: b * math.Pow(2, 1/a), mode: b,
		variance: posInf, skew: nan, kurt: nan,
		min: b, max: posInf,
		entropy: math.Log(b/a) + 1/a + 1,
	}
	if a > 1 {
		s.mean = a * b / (a - 1)
	}
	if a > 2 {
		s.variance = b * b * a / ((a - 1) * (a - 1) * (a - 2))
	}
	if a > 3 {
		s.skew = 2 * (1 + a) / (a - 3) * math.Sqrt((a-2)/a)
	}
	if a > 4 {
		s.kurt = 6 * (a*a*a + a*a - 6*a - 2) / (a * (a - 3) * (a - 4))
	}
	return s.get(m)
}

func (p *Pareto) CDF(x float64) float64 {
	if p.alpha <= 0 || p.beta <= 0 {
		return stepCDF(x, p.beta)
	}
	return distuv.Pareto{Xm: p.beta, Alpha: p.alpha}.CDF(x)
}
