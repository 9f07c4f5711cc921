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

package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// Fit 適合度檢定結果
type Fit struct {
	Test string `json:"Test"` // "ks" 或 "chi2"
	Stat Num    `json:"Stat"`
	DoF  int    `json:"DoF,omitempty"`
	P    Num    `json:"P"`
}

// Pass 回報 p 值是否不低於顯著水準 alpha。
func (f Fit) Pass(alpha float64) bool {
	return float64(f.P) >= alpha
}

// ============================================================
// ** 公開方法 **
// ============================================================

// KS 單樣本 Kolmogorov-Smirnov 檢定：xs 對理論 CDF。
// p 值採 Kolmogorov 極限分布（含 Stephens 小樣本修正）。
func KS(xs []float64, cdf func(float64) float64) Fit {
	n := len(xs)
	if n == 0 {
		return Fit{Test: "ks", Stat: Num(math.NaN()), P: Num(math.NaN())}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	fn := float64(n)
	d := 0.0
	for i, x := range sorted {
		f := cdf(x)
		if hi := float64(i+1)/fn - f; hi > d {
			d = hi
		}
		if lo := f - float64(i)/fn; lo > d {
			d = lo
		}
	}
	return Fit{Test: "ks", Stat: Num(d), P: Num(ksPValue(d, n))}
}

// ChiSquare 卡方適合度檢定；expected 為各格期望次數，自由度為格數 - 1。
func ChiSquare(observed []int, expected []float64) Fit {
	k := min(len(observed), len(expected))
	if k < 2 {
		return Fit{Test: "chi2", Stat: Num(math.NaN()), P: Num(math.NaN())}
	}
	chi := 0.0
	for i := 0; i < k; i++ {
		e := expected[i]
		if e <= 0 {
			continue
		}
		d := float64(observed[i]) - e
		chi += d * d / e
	}
	dof := k - 1
	p := distuv.ChiSquared{K: float64(dof)}.Survival(chi)
	return Fit{Test: "chi2", Stat: Num(chi), DoF: dof, P: Num(p)}
}

// ChiSquareUniform 檢定各格次數是否來自均勻分布。
func ChiSquareUniform(counts []int) Fit {
	total := 0
	for _, c := range counts {
		total += c
	}
	exp := make([]float64, len(counts))
	if len(counts) > 0 {
		e := float64(total) / float64(len(counts))
		for i := range exp {
			exp[i] = e
		}
	}
	return ChiSquare(counts, exp)
}

// ProportionCI 以 Clopper–Pearson 精確法估計二項比例 k/n 的信賴區間。
func ProportionCI(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = Num(b.Quantile(alpha / 2))
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = Num(b.Quantile(1 - alpha/2))
	}
	return
}

// QuantileCI 估計第 q 分位的信賴區間（順序統計量 + Beta 反推）。
func QuantileCI(data []float64, q, confidence float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	cp := slices.Clone(data)
	slices.Sort(cp)
	return quantileCISorted(cp, q, confidence)
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

func ksPValue(d float64, n int) float64 {
	sn := math.Sqrt(float64(n))
	lambda := (sn + 0.12 + 0.11/sn) * d
	// 極小的 λ 級數收斂很慢，此時 p 實際上就是 1
	if lambda < 0.27 {
		return 1
	}
	sum := 0.0
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := math.Exp(-2 * float64(k*k) * lambda * lambda)
		sum += sign * term
		if term < 1e-12 {
			break
		}
		sign = -sign
	}
	return math.Min(math.Max(2*sum, 0), 1)
}

// 把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
func quantileCISorted(cp []float64, q, confidence float64) (float64, float64) {
	n := len(cp)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return cp[0], cp[0]
	}
	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	li = min(max(li, 0), n-1)
	ui = min(max(ui, 0), n-1)
	return cp[li], cp[ui]
}
