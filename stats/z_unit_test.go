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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/litterlab/stats"
)

func TestSummarizeBasic(t *testing.T) {
	xs := []float64{5, 1, 4, 2, 3}
	s := stats.Summarize(xs)
	if s.Count != 5 {
		t.Fatalf("count got %d want 5", s.Count)
	}
	if float64(s.Mean) != 3 {
		t.Fatalf("mean got %v want 3", s.Mean)
	}
	if float64(s.Min) != 1 || float64(s.Max) != 5 {
		t.Fatalf("min/max got %v/%v", s.Min, s.Max)
	}
	if float64(s.Median) != 3 {
		t.Fatalf("median got %v want 3", s.Median)
	}
	// 樣本變異數 (n-1)
	if math.Abs(float64(s.Var)-2.5) > 1e-12 {
		t.Fatalf("var got %v want 2.5", s.Var)
	}
	if math.Abs(float64(s.Skew)) > 1e-12 {
		t.Fatalf("skew of symmetric sample should be 0, got %v", s.Skew)
	}
	if !(float64(s.MeanCI.Lo) < 3 && float64(s.MeanCI.Hi) > 3) {
		t.Fatalf("mean CI should cover 3: %+v", s.MeanCI)
	}
	if xs[0] != 5 {
		t.Fatalf("input slice was modified")
	}
}

func TestSummarizeSmallSamples(t *testing.T) {
	s := stats.Summarize(nil)
	if s.Count != 0 || !math.IsNaN(float64(s.Mean)) {
		t.Fatalf("empty summary should be NaN, got %+v", s)
	}
	s = stats.Summarize([]float64{7})
	if float64(s.Mean) != 7 || float64(s.Median) != 7 {
		t.Fatalf("single sample mean/median should be 7, got %v/%v", s.Mean, s.Median)
	}
	if !math.IsNaN(float64(s.Var)) {
		t.Fatalf("single sample variance should be NaN, got %v", s.Var)
	}
}

func TestNumJSON(t *testing.T) {
	in := []stats.Num{1.5, stats.Num(math.NaN()), stats.Num(math.Inf(1)), stats.Num(math.Inf(-1))}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `[1.5,"NaN","+Inf","-Inf"]` {
		t.Fatalf("unexpected json %s", b)
	}
	var out []stats.Num
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out[0] != 1.5 || !math.IsNaN(float64(out[1])) || !math.IsInf(float64(out[2]), 1) || !math.IsInf(float64(out[3]), -1) {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestKSUniform(t *testing.T) {
	n := 1000
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = (float64(i) + 0.5) / float64(n)
	}
	uni := func(x float64) float64 { return math.Min(math.Max(x, 0), 1) }
	f := stats.KS(xs, uni)
	if float64(f.Stat) > 1e-3+1e-12 {
		t.Fatalf("D of a perfect grid should be 0.5/n, got %v", f.Stat)
	}
	if !f.Pass(0.05) {
		t.Fatalf("perfect grid should pass, p=%v", f.P)
	}

	// 全部擠在 0.1 附近，應被拒絕
	for i := range xs {
		xs[i] = 0.1
	}
	f = stats.KS(xs, uni)
	if f.Pass(1e-6) {
		t.Fatalf("degenerate sample should fail, D=%v p=%v", f.Stat, f.P)
	}
}

func TestChiSquare(t *testing.T) {
	f := stats.ChiSquareUniform([]int{100, 100, 100, 100})
	if float64(f.Stat) != 0 || f.DoF != 3 {
		t.Fatalf("uniform counts: stat=%v dof=%d", f.Stat, f.DoF)
	}
	if math.Abs(float64(f.P)-1) > 1e-9 {
		t.Fatalf("p should be 1, got %v", f.P)
	}
	f = stats.ChiSquareUniform([]int{400, 0, 0, 0})
	if f.Pass(1e-6) {
		t.Fatalf("skewed counts should fail, p=%v", f.P)
	}
	f = stats.ChiSquare([]int{1}, []float64{1})
	if !math.IsNaN(float64(f.P)) {
		t.Fatalf("single cell test should be NaN")
	}
}

func TestProportionCI(t *testing.T) {
	p, ci := stats.ProportionCI(30, 100, 0.95)
	if p != 0.3 {
		t.Fatalf("pHat got %v", p)
	}
	if !(float64(ci.Lo) < 0.3 && float64(ci.Hi) > 0.3) {
		t.Fatalf("CI should cover 0.3: %+v", ci)
	}
	_, ci = stats.ProportionCI(0, 10, 0.95)
	if ci.Lo != 0 {
		t.Fatalf("k=0 lower bound should be 0")
	}
	_, ci = stats.ProportionCI(10, 10, 0.95)
	if ci.Hi != 1 {
		t.Fatalf("k=n upper bound should be 1")
	}
}

func TestQuantileCI(t *testing.T) {
	xs := make([]float64, 1001)
	for i := range xs {
		xs[len(xs)-1-i] = float64(i)
	}
	lo, hi := stats.QuantileCI(xs, 0.5, 0.95)
	if !(lo <= 500 && hi >= 500) {
		t.Fatalf("median CI [%v,%v] should cover 500", lo, hi)
	}
	if hi-lo > 100 {
		t.Fatalf("median CI too wide: [%v,%v]", lo, hi)
	}
}

func TestHistogram(t *testing.T) {
	h := stats.NewHistogram(0, 1, 4)
	if len(h.Counts) != 6 || len(h.Labels) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(h.Counts))
	}
	cases := map[float64]int{-0.1: 0, 0: 1, 0.24: 1, 0.25: 2, 0.99: 4, 1: 5, math.NaN(): 5}
	for x, want := range cases {
		if got := h.Index(x); got != want {
			t.Fatalf("Index(%v) got %d want %d", x, got, want)
		}
	}
	for _, x := range []float64{0.1, 0.3, 0.6, 0.9} {
		h.Add(x)
	}
	o := h.Clone()
	o.Add(2)
	h.Merge(o)
	h.Done()
	if h.Counts[5] != 1 {
		t.Fatalf("overflow cell should have 1, got %d", h.Counts[5])
	}
	sum := 0.0
	for _, p := range h.Dist {
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("dist should sum to 1, got %v", sum)
	}
}

func TestHistogramWorkerMerge(t *testing.T) {
	proto := stats.NewHistogram(-2, 2, 16)
	whole := proto.Clone()
	workers := []*stats.Histogram{proto.Clone(), proto.Clone(), proto.Clone()}
	for i := 0; i < 3000; i++ {
		x := math.Sin(float64(i)) * 2.5
		whole.Add(x)
		workers[i%len(workers)].Add(x)
	}
	for _, w := range workers {
		proto.Merge(w)
	}
	for i := range whole.Counts {
		if proto.Counts[i] != whole.Counts[i] {
			t.Fatalf("cell %s: merged %d sequential %d", whole.Labels[i], proto.Counts[i], whole.Counts[i])
		}
	}
	proto.Merge(stats.NewHistogram(-2, 2, 4))
	if proto.Counts[0] != whole.Counts[0] {
		t.Fatalf("mismatched layout must be ignored")
	}
}

func TestRenders(t *testing.T) {
	rep := &stats.Report{
		Name:      "demo",
		Dist:      "normal",
		Alg:       "kr",
		Generator: "taus88",
		Salt:      7,
		Workers:   1,
		Summary:   stats.Summarize([]float64{-1, 0, 1}),
		Expected:  []stats.Expected{{Name: "skew", Value: 0}, {Name: "kurt", Value: stats.Num(math.NaN())}},
		Fit:       &stats.Fit{Test: "ks", Stat: 0.1, P: 0.9},
		Hist:      stats.NewHistogram(-1, 1, 2),
	}
	for _, name := range []string{"json", "yaml", "table"} {
		var buf bytes.Buffer
		r := stats.RenderByName(name)
		if r == nil {
			t.Fatalf("render %q not found", name)
		}
		if err := rep.WriteWith(&buf, r); err != nil {
			t.Fatalf("%s render: %v", name, err)
		}
		if !strings.Contains(buf.String(), "normal") {
			t.Fatalf("%s output missing dist name:\n%s", name, buf.String())
		}
	}
	if stats.RenderByName("xml") != nil {
		t.Fatalf("unknown render should be nil")
	}

	var buf bytes.Buffer
	if err := rep.WriteWith(&buf, &stats.JsonReportRender{}); err != nil {
		t.Fatal(err)
	}
	var back stats.Report
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("json output should decode back: %v", err)
	}
	if !math.IsNaN(float64(back.Expected[1].Value)) {
		t.Fatalf("NaN should survive json")
	}
}
