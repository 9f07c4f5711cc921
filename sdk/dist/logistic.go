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
)

// Logistic 分布：alpha·(beta - ln(1/U - 1))，即位置 alpha·beta、尺度 alpha。
// alpha <= 0 為無效參數，輸出恆為 0（Valid 回報 false）。
type Logistic struct {
	alpha, beta float64
}

func NewLogistic(alpha, beta float64) *Logistic {
	return &Logistic{alpha: alpha, beta: beta}
}

func (x *Logistic) Kind() Kind { return KindLogistic }

// Valid 回報目前參數是否有效。
func (x *Logistic) Valid() bool { return x.alpha > 0 }

func (x *Logistic) Sample(c *core.Core) float64 {
	if x.alpha <= 0 {
		return 0
	}
	return x.alpha * (x.beta - math.Log(1/c.Open()-1))
}

func (x *Logistic) SetParam(name string, v float64) error {
	switch name {
	case "alpha", "scale":
		x.alpha = v
	case "beta":
		x.beta = v
	default:
		return unknownParam(KindLogistic, name)
	}
	return nil
}

func (x *Logistic) Params() map[string]float64 {
	return map[string]float64{"alpha": x.alpha, "beta": x.beta}
}

func (x *Logistic) Expect(m Moment) float64 {
	if x.alpha <= 0 {
		return pointMass(0).get(m)
	}
	mu, s := x.alpha*x.beta, x.alpha
	return summary{
		mean: mu, median: mu, mode: mu,
		variance: s * s * math.Pi * math.Pi / 3,
		skew:     0, kurt: 1.2,
		min: negInf, max: posInf,
		entropy: math.Log(s) + 2,
	}.get(m)
}

func (x *Logistic) CDF(v float64) float64 {
	if x.alpha <= 0 {
		return stepCDF(v, 0)
	}
	return 1 / (1 + math.Exp(-(v/x.alpha - x.beta)))
}
