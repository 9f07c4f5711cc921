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

// LogNormal 以「目標」平均與標準差參數化，內部換算成底層常態的 (mu0, sigma0)。
// mean <= 0 時輸出恆為 0 且底層參數歸零。
type LogNormal struct {
	mean, stddev float64
	mu0, sigma0  float64
}

func NewLogNormal(mean, stddev float64) *LogNormal {
	x := &LogNormal{}
	x.Set(mean, stddev)
	return x
}

func (x *LogNormal) Kind() Kind { return KindLogNormal }

// Set 設定目標平均/標準差並重算底層常態參數。
func (x *LogNormal) Set(mean, stddev float64) {
	x.mean = mean
	x.stddev = math.Abs(stddev)
	if mean <= 0 {
		x.mu0, x.sigma0 = 0, 0
		return
	}
	m2 := mean * mean
	s2 := x.stddev * x.stddev
	x.mu0 = math.Log(m2 / math.Sqrt(s2+m2))
	x.sigma0 = math.Sqrt(math.Log((s2 + m2) / m2))
}

// Base 回傳底層常態參數。
func (x *LogNormal) Base() (mu0, sigma0 float64) { return x.mu0, x.sigma0 }

func (x *LogNormal) Sample(c *core.Core) float64 {
	if x.mean <= 0 {
		return 0
	}
	return math.Exp(x.sigma0*KR(c) + x.mu0)
}

func (x *LogNormal) SetParam(name string, v float64) error {
	switch name {
	case "mean":
		x.Set(v, x.stddev)
	case "stddev", "sd":
		x.Set(x.mean, v)
	default:
		return unknownParam(KindLogNormal, name)
	}
	return nil
}

func (x *LogNormal) Params() map[string]float64 {
	return map[string]float64{"mean": x.mean, "stddev": x.stddev}
}

func (x *LogNormal) Expect(m Moment) float64 {
	if x.mean <= 0 {
		return pointMass(0).get(m)
	}
	if x.sigma0 == 0 {
		return pointMass(x.mean).get(m)
	}
	mu, s2 := x.mu0, x.sigma0*x.sigma0
	es2 := math.Exp(s2)
	return summary{
		mean:     math.Exp(mu + s2/2),
		median:   math.Exp(mu),
		mode:     math.Exp(mu - s2),
		variance: (es2 - 1) * math.Exp(2*mu+s2),
		skew:     (es2 + 2) * math.Sqrt(es2-1),
		kurt:     math.Exp(4*s2) + 2*math.Exp(3*s2) + 3*math.Exp(2*s2) - 6,
		min:      0,
		max:      posInf,
		entropy:  mu + 0.5*math.Log(2*math.Pi*math.E*s2),
	}.get(m)
}

func (x *LogNormal) CDF(v float64) float64 {
	switch {
	case x.mean <= 0:
		return stepCDF(v, 0)
	case x.sigma0 == 0:
		return stepCDF(v, x.mean)
	}
	return distuv.LogNormal{Mu: x.mu0, Sigma: x.sigma0}.CDF(v)
}
