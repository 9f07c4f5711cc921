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
)

type triShape int

const (
	triPoint     triShape = iota // a == b
	triLeft                      // c == a：min(U1,U2)
	triRight                     // c == b：max(U1,U2)
	triSymmetric                 // c 為中點：(U1+U2)/2
	triGeneral                   // 反 CDF，於頂點分段
)

// Triangle 三角分布 (a, c, b)，必須滿足 a <= c <= b。
type Triangle struct {
	a, c, b float64
	shape   triShape
	width   float64 // b - a
	fc      float64 // 頂點處的 CDF 值
	left    float64 // (b-a)(c-a)
	right   float64 // (b-a)(b-c)
}

// NewTriangle 建立三角分布；順序不合法時回傳錯誤。
func NewTriangle(a, c, b float64) (*Triangle, error) {
	t := &Triangle{}
	if err := t.Set(a, c, b); err != nil {
		return nil, err
	}
	return t, nil
}

// Set 同時設定三個參數；違反 a <= c <= b 時回傳錯誤且狀態不變。
func (t *Triangle) Set(a, c, b float64) error {
	if !(a <= c && c <= b) {
		return errs.Invalidf("triangle: require a <= c <= b, got (%g, %g, %g)", a, c, b)
	}
	t.a, t.c, t.b = a, c, b
	t.width = b - a
	t.left = t.width * (c - a)
	t.right = t.width * (b - c)
	t.fc = 0
	if t.width > 0 {
		t.fc = (c - a) / t.width
	}
	switch {
	case a == b:
		t.shape = triPoint
	case c == a:
		t.shape = triLeft
	case c == b:
		t.shape = triRight
	case c-a == b-c:
		t.shape = triSymmetric
	default:
		t.shape = triGeneral
	}
	return nil
}

func (t *Triangle) Kind() Kind { return KindTriangle }

func (t *Triangle) Sample(x *core.Core) float64 {
	switch t.shape {
	case triPoint:
		return t.a
	case triLeft:
		return t.a + t.width*math.Min(x.ClosedOpen(), x.ClosedOpen())
	case triRight:
		return t.a + t.width*math.Max(x.ClosedOpen(), x.ClosedOpen())
	case triSymmetric:
		return t.a + t.width*0.5*(x.ClosedOpen()+x.ClosedOpen())
	}
	return t.Quantile(x.ClosedOpen())
}

// Quantile 反 CDF；u 夾在 [0,1]。
func (t *Triangle) Quantile(u float64) float64 {
	u = math.Min(math.Max(u, 0), 1)
	if t.shape == triPoint {
		return t.a
	}
	if u < t.fc {
		return t.a + math.Sqrt(u*t.left)
	}
	return t.b - math.Sqrt((1-u)*t.right)
}

func (t *Triangle) SetParam(name string, v float64) error {
	a, c, b := t.a, t.c, t.b
	switch name {
	case "a", "min", "lo":
		a = v
	case "c", "mode", "apex":
		c = v
	case "b", "max", "hi":
		b = v
	default:
		return unknownParam(KindTriangle, name)
	}
	return t.Set(a, c, b)
}

func (t *Triangle) Params() map[string]float64 {
	return map[string]float64{"a": t.a, "c": t.c, "b": t.b}
}

func (t *Triangle) Expect(m Moment) float64 {
	if t.shape == triPoint {
		return pointMass(t.a).get(m)
	}
	a, b, c := t.a, t.b, t.c
	q := a*a + b*b + c*c - a*b - a*c - b*c
	s := summary{
		mean:     (a + b + c) / 3,
		mode:     c,
		variance: q / 18,
		skew:     math.Sqrt2 * (a + b - 2*c) * (2*a - b - c) * (a - 2*b + c) / (5 * math.Pow(q, 1.5)),
		kurt:     -0.6,
		min:      a,
		max:      b,
		entropy:  0.5 + math.Log((b-a)/2),
	}
	if c >= (a+b)/2 {
		s.median = a + math.Sqrt((b-a)*(c-a)/2)
	} else {
		s.median = b - math.Sqrt((b-a)*(b-c)/2)
	}
	return s.get(m)
}

func (t *Triangle) CDF(x float64) float64 {
	switch {
	case t.shape == triPoint:
		return stepCDF(x, t.a)
	case x <= t.a:
		return 0
	case x >= t.b:
		return 1
	case x <= t.c && t.left > 0:
		d := x - t.a
		return d * d / t.left
	}
	d := t.b - x
	return 1 - d*d/t.right
}
