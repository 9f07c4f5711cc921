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

// Weibull 分布：scale·(-ln U)^(1/shape)。shape <= 0 或 scale <= 0 時輸出恆為 0。
type Weibull struct {
	scale, shape float64
	invShape     float64
}

func NewWeibull(scale, shape float64) *Weibull {
	w := &Weibull{scale: scale}
	w.SetShape(shape)
	return w
}

func (w *Weibull) Kind() Kind { return KindWeibull }

func (w *Weibull) SetShape(shape float64) {
	w.shape = shape
	if shape > 0 {
		w.invShape = 1 / shape
	} else {
		w.invShape = 0
	}
}

func (w *Weibull) degenerate() bool { return w.shape <= 0 || w.scale <= 0 }

func (w *Weibull) Sample(c *core.Core) float64 {
	if w.degenerate() {
		return 0
	}
	e := c.Exponential()
	if w.invShape == 1 {
		return w.scale * e
	}
	return w.scale * math.Pow(e, w.invShape)
}

func (w *Weibull) SetParam(name string, v float64) error {
	switch name {
	case "scale", "lambda":
		w.scale = v
	case "shape", "k":
		w.SetShape(v)
	default:
		return unknownParam(KindWeibull, name)
	}
	return nil
}

func (w *Weibull) Params() map[string]float64 {
	return map[string]float64{"scale": w.scale, "shape": w.shape}
}

func (w *Weibull) Expect(m Moment) float64 {
	if w.degenerate() {
		return pointMass(0).get(m)
	}
	l, k := w.scale, w.shape
	g1 := math.Gamma(1 + 1/k)
	g2 := math.Gamma(1 + 2/k)
	g3 := math.Gamma(1 + 3/k)
	g4 := math.Gamma(1 + 4/k)
	mu := l * g1
	v := l * l * (g2 - g1*g1)
	sd := math.Sqrt(v)
	s := summary{
		mean:     mu,
		median:   l * math.Pow(math.Ln2, 1/k),
		mode:     0,
		variance: v,
		skew:     (g3*l*l*l - 3*mu*v - mu*mu*mu) / (v * sd),
		kurt:     (-6*g1*g1*g1*g1 + 12*g1*g1*g2 - 3*g2*g2 - 4*g1*g3 + g4) / ((g2 - g1*g1) * (g2 - g1*g1)),
		min:      0,
		max:      posInf,
		entropy:  eulerGamma*(1-1/k) + math.Log(l/k) + 1,
	}
	if k > 1 {
		s.mode = l * math.Pow((k-1)/k, 1/k)
	}
	return s.get(m)
}

func (w *Weibull) CDF(x float64) float64 {
	if w.degenerate() {
		return stepCDF(x, 0)
	}
	return distuv.Weibull{K: w.shape, Lambda: w.scale}.CDF(x)
}
