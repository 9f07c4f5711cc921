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
	"slices"
	"strings"

	"github.com/zintix-labs/litterlab/errs"
)

// Kind 分布種類名稱。
type Kind string

const (
	KindNormal      Kind = "normal"
	KindGamma       Kind = "gamma"
	KindChiSquare   Kind = "chisq"
	KindCauchy      Kind = "cauchy"
	KindExponential Kind = "expon"
	KindWeibull     Kind = "weibull"
	KindLogistic    Kind = "logistic"
	KindLogNormal   Kind = "lognormal"
	KindPareto      Kind = "pareto"
	KindKumaraswamy Kind = "kumaraswamy"
	KindZipf        Kind = "zipf"
	KindStudentT    Kind = "studentt"
	KindTriangle    Kind = "triangle"
	KindCategorical Kind = "categorical"
)

type builder func() Dist

// registry 每個種類的預設建構（標準參數）。
var registry = map[Kind]builder{
	KindNormal:      func() Dist { return NewNormal(0, 1) },
	KindGamma:       func() Dist { return NewGamma(1, 1) },
	KindChiSquare:   func() Dist { return NewChiSquare(1) },
	KindCauchy:      func() Dist { return NewCauchy(0, 1) },
	KindExponential: func() Dist { return NewExponential(1, 0) },
	KindWeibull:     func() Dist { return NewWeibull(1, 1) },
	KindLogistic:    func() Dist { return NewLogistic(1, 0) },
	KindLogNormal:   func() Dist { return NewLogNormal(1, 1) },
	KindPareto:      func() Dist { return NewPareto(1, 1) },
	KindKumaraswamy: func() Dist { return NewKumaraswamy(1, 1) },
	KindZipf:        func() Dist { return NewZipf(1) },
	KindStudentT:    func() Dist { return NewStudentT(1) },
	KindTriangle: func() Dist {
		t, _ := NewTriangle(0, 0.5, 1)
		return t
	},
	KindCategorical: func() Dist {
		d, _ := NewCategorical([]int{1})
		return d
	},
}

var aliases = map[string]Kind{
	"gauss":      KindNormal,
	"gaussian":   KindNormal,
	"erlang":     KindGamma,
	"chisquare":  KindChiSquare,
	"chi2":       KindChiSquare,
	"exp":        KindExponential,
	"laplace":    KindExponential,
	"t":          KindStudentT,
	"linnie":     KindTriangle,
	"kuma":       KindKumaraswamy,
	"halfcauchy": KindCauchy,
	"discrete":   KindCategorical,
}

// algs 可選演算法名稱（第一個為預設）。
var algs = map[Kind][]string{
	KindNormal:    {"kr", "boxmuller"},
	KindGamma:     {"auto", "direct", "rejection", "gs", "gd"},
	KindChiSquare: {"direct", "rejection"},
	KindCauchy:    {"ad", "ratio"},
}

// Algs 回傳各分布可選的演算法名稱；沒有列出的分布只有單一演算法。
func Algs() map[Kind][]string {
	out := make(map[Kind][]string, len(algs))
	for k, v := range algs {
		out[k] = slices.Clone(v)
	}
	return out
}

// Kinds 回傳所有分布種類（排序後）。
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ParseKind 解析分布名稱（含別名）。
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if _, ok := registry[Kind(name)]; ok {
		return Kind(name), nil
	}
	if k, ok := aliases[name]; ok {
		return k, nil
	}
	return "", errs.WrapWithExtra(errs.ErrUnknownKind, "distribution kind", s)
}

// New 依名稱建立分布，套用演算法與參數。
//
// 參數依名稱排序後逐一套用；三角分布的 a/c/b 與類別分布的權重一次設定，避免中間狀態違反限制。
// 任何錯誤都不會回傳半成品。
func New(kind string, alg string, params map[string]float64) (Dist, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	d := registry[k]()

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "laplace":
		params = withDefault(params, "sym", 1)
	case "halfcauchy":
		params = withDefault(params, "sym", 0)
	}

	switch t := d.(type) {
	case *Triangle:
		if err := applyTriangle(t, params); err != nil {
			return nil, err
		}
	case *Categorical:
		if err := applyCategorical(t, params); err != nil {
			return nil, err
		}
	default:
		keys := make([]string, 0, len(params))
		for name := range params {
			keys = append(keys, name)
		}
		slices.Sort(keys)
		for _, name := range keys {
			if err := d.SetParam(name, params[name]); err != nil {
				return nil, err
			}
		}
	}

	if alg != "" {
		sel, ok := d.(AlgSelector)
		if !ok {
			return nil, errs.Invalidf("%s: no selectable algorithms", k)
		}
		if err := sel.UseAlg(strings.ToLower(alg)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func withDefault(p map[string]float64, name string, v float64) map[string]float64 {
	out := make(map[string]float64, len(p)+1)
	out[name] = v
	for k, x := range p {
		out[k] = x
	}
	return out
}

func applyTriangle(t *Triangle, params map[string]float64) error {
	a, c, b := t.a, t.c, t.b
	for name, v := range params {
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
	}
	return t.Set(a, c, b)
}
