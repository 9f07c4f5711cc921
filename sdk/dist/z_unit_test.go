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

package dist_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/dist"
	"github.com/zintix-labs/litterlab/stats"
)

const (
	ksDraws = 5000
	ksAlpha = 1e-4
)

func newCore(salt uint32) *core.Core {
	return core.New(core.NewTaus88(salt))
}

func draw(d dist.Dist, salt uint32, n int) []float64 {
	xs := make([]float64, n)
	dist.Fill(d, newCore(salt), xs)
	return xs
}

// checkKS 以 KS 檢定 d 的樣本對其自身 CDF。
func checkKS(t *testing.T, name string, d dist.Dist, salt uint32) {
	t.Helper()
	cdfer, ok := d.(dist.CDFer)
	if !ok {
		t.Fatalf("%s: %T has no CDF", name, d)
	}
	f := stats.KS(draw(d, salt, ksDraws), cdfer.CDF)
	if !f.Pass(ksAlpha) {
		t.Fatalf("%s: KS failed D=%v p=%v", name, f.Stat, f.P)
	}
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// countingSource 計算底層亂數被取用的次數。
type countingSource struct {
	src   core.Source
	calls int
}

func (s *countingSource) Uint32() uint32 {
	s.calls++
	return s.src.Uint32()
}

func TestNormalKS(t *testing.T) {
	n := dist.NewNormal(1, 2)
	checkKS(t, "normal/kr", n, 11)
	if err := n.UseAlg("boxmuller"); err != nil {
		t.Fatal(err)
	}
	checkKS(t, "normal/boxmuller", n, 12)
	if n.Alg() != "boxmuller" {
		t.Fatalf("alg got %q", n.Alg())
	}
	if err := n.UseAlg("ziggurat"); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("unknown alg should be ErrInvalidParam, got %v", err)
	}
}

func TestNormalDegenerate(t *testing.T) {
	n := dist.NewNormal(3, 0)
	c := newCore(1)
	for i := 0; i < 10; i++ {
		if x := n.Sample(c); x != 3 {
			t.Fatalf("sigma=0 should return mu, got %v", x)
		}
	}
	if n.Expect(dist.Var) != 0 {
		t.Fatalf("degenerate variance should be 0")
	}
}

func TestRecommendGammaAlg(t *testing.T) {
	cases := []struct {
		alpha float64
		want  dist.GammaAlg
	}{
		{0.5, dist.GammaGS},
		{0.999, dist.GammaGS},
		{1, dist.GammaErlangDirect},
		{1.001, dist.GammaGD},
		{12.999, dist.GammaGD},
		{13, dist.GammaErlangDirect},
		{13.001, dist.GammaGD},
		{14, dist.GammaErlangRejection},
		{1e6, dist.GammaErlangRejection},
		{9.2e18, dist.GammaErlangRejection},
		{float64(math.MaxInt64), dist.GammaGD},
		{1e19, dist.GammaGD},
	}
	for _, tc := range cases {
		if got := dist.RecommendGammaAlg(tc.alpha); got != tc.want {
			t.Fatalf("alpha=%v got %v want %v", tc.alpha, got, tc.want)
		}
	}
}

func TestGammaMean(t *testing.T) {
	g := dist.NewGamma(5, 2)
	if g.CurrentAlg() != dist.GammaErlangDirect {
		t.Fatalf("alpha=5 should pick direct, got %v", g.CurrentAlg())
	}
	xs := draw(g, 1, 100000)
	if m := mean(xs); math.Abs(m-10)/10 > 0.01 {
		t.Fatalf("mean got %v want 10 +-1%%", m)
	}
	if g.Expect(dist.Mean) != 10 || g.Expect(dist.Var) != 20 {
		t.Fatalf("expected mean/var 10/20, got %v/%v", g.Expect(dist.Mean), g.Expect(dist.Var))
	}
}

func TestGammaAlgorithmsKS(t *testing.T) {
	cases := []struct {
		alpha float64
		alg   dist.GammaAlg
	}{
		{3, dist.GammaErlangDirect},
		{20, dist.GammaErlangDirect},
		{3, dist.GammaErlangRejection},
		{40, dist.GammaErlangRejection},
		{0.3, dist.GammaGS},
		{1, dist.GammaGS},
		{1, dist.GammaGD},
		{2.5, dist.GammaGD},
		{7.5, dist.GammaGD},
		{120.25, dist.GammaGD},
	}
	for i, tc := range cases {
		g := dist.NewGamma(tc.alpha, 1.5)
		if err := g.SetAlg(tc.alg); err != nil {
			t.Fatalf("alpha=%v alg=%v: %v", tc.alpha, tc.alg, err)
		}
		checkKS(t, "gamma/"+tc.alg.String(), g, uint32(100+i))
	}
}

func TestGammaSetAlgRejected(t *testing.T) {
	g := dist.NewGamma(2.5, 1)
	before := g.CurrentAlg()
	for _, a := range []dist.GammaAlg{dist.GammaErlangDirect, dist.GammaErlangRejection, dist.GammaGS} {
		if err := g.SetAlg(a); !errors.Is(err, errs.ErrInvalidParam) {
			t.Fatalf("alg %v on alpha=2.5 should fail, got %v", a, err)
		}
		if g.CurrentAlg() != before {
			t.Fatalf("failed SetAlg changed state")
		}
	}
}

func TestGammaDegenerate(t *testing.T) {
	c := newCore(3)
	for _, g := range []*dist.Gamma{dist.NewGamma(0, 1), dist.NewGamma(-2, 1), dist.NewGamma(2, 0)} {
		if x := g.Sample(c); x != 0 {
			t.Fatalf("degenerate gamma should return 0, got %v", x)
		}
	}
}

func TestChiSquareKS(t *testing.T) {
	for i, k := range []int64{1, 2, 5, 30} {
		x := dist.NewChiSquare(k)
		checkKS(t, "chisq/direct", x, uint32(200+i))
		if err := x.UseAlg("rejection"); err != nil {
			t.Fatal(err)
		}
		checkKS(t, "chisq/rejection", x, uint32(210+i))
	}
	x := dist.NewChiSquare(-3)
	if x.DoF() != 1 {
		t.Fatalf("non-positive dof should clamp to 1, got %d", x.DoF())
	}
}

func TestCauchyKS(t *testing.T) {
	c := dist.NewCauchy(1, 2)
	checkKS(t, "cauchy/ad", c, 31)
	if err := c.UseAlg("ratio"); err != nil {
		t.Fatal(err)
	}
	checkKS(t, "cauchy/ratio", c, 32)
	h := dist.NewHalfCauchy(0, 1)
	checkKS(t, "halfcauchy", h, 33)
	for _, x := range draw(h, 34, 1000) {
		if x < 0 {
			t.Fatalf("half cauchy produced negative value %v", x)
		}
	}
	if !math.IsNaN(c.Expect(dist.Mean)) || c.Expect(dist.Median) != 1 {
		t.Fatalf("cauchy mean should be NaN and median the location")
	}
}

func TestSignBitsWordPerThirtyTwo(t *testing.T) {
	src := &countingSource{src: core.NewTaus88(9)}
	c := core.New(src)
	var b dist.SignBits
	for i := 0; i < 320; i++ {
		b.Next(c)
	}
	if src.calls != 10 {
		t.Fatalf("320 sign bits should consume 10 words, got %d", src.calls)
	}
}

func TestExponentialAndLaplace(t *testing.T) {
	checkKS(t, "expon", dist.NewExponential(2, 1), 41)
	checkKS(t, "laplace", dist.NewLaplace(2, 1), 42)
	e := dist.NewExponential(0, 5)
	if x := e.Sample(newCore(1)); x != 5 {
		t.Fatalf("tau=0 should return loc, got %v", x)
	}
}

func TestWeibullIsExponential(t *testing.T) {
	w := dist.NewWeibull(1, 1)
	ref := dist.NewExponential(1, 0)
	f := stats.KS(draw(w, 51, ksDraws), ref.CDF)
	if !f.Pass(ksAlpha) {
		t.Fatalf("weibull(1,1) vs exponential(1): D=%v p=%v", f.Stat, f.P)
	}
	checkKS(t, "weibull", dist.NewWeibull(2, 3.5), 52)
}

func TestOtherContinuousKS(t *testing.T) {
	cases := map[string]dist.Dist{
		"logistic":  dist.NewLogistic(1.5, 2),
		"lognormal": dist.NewLogNormal(2, 0.5),
		"pareto":    dist.NewPareto(3, 2),
		"kuma":      dist.NewKumaraswamy(2, 5),
		"kuma/uni":  dist.NewKumaraswamy(1, 1),
	}
	salt := uint32(60)
	for name, d := range cases {
		salt++
		checkKS(t, name, d, salt)
	}
}

func TestLogNormalMoments(t *testing.T) {
	x := dist.NewLogNormal(2, 0.5)
	if math.Abs(x.Expect(dist.Mean)-2) > 1e-12 || math.Abs(x.Expect(dist.StdDev)-0.5) > 1e-12 {
		t.Fatalf("lognormal should honour requested mean/stddev: %v %v", x.Expect(dist.Mean), x.Expect(dist.StdDev))
	}
}

func TestKumaraswamyRegimes(t *testing.T) {
	cases := []struct {
		a, b     float64
		want     dist.KumaRegime
		min, max float64
	}{
		{2, 3, dist.KumaGeneral, 0, 1},
		{1, 1, dist.KumaUniform, 0, 1},
		{0, 3, dist.KumaAlways0, 0, 0},
		{2, 0, dist.KumaAlways1, 1, 1},
		{0, 0, dist.KumaIndeterminate, 0, 1},
		{-1, -1, dist.KumaIndeterminate, 0, 1},
	}
	for _, tc := range cases {
		k := dist.NewKumaraswamy(tc.a, tc.b)
		if k.Regime() != tc.want {
			t.Fatalf("(%v,%v) regime got %v want %v", tc.a, tc.b, k.Regime(), tc.want)
		}
		if lo, hi := k.Expect(dist.Min), k.Expect(dist.Max); lo != tc.min || hi != tc.max {
			t.Fatalf("(%v,%v) support got [%v,%v] want [%v,%v]", tc.a, tc.b, lo, hi, tc.min, tc.max)
		}
		xs := draw(k, 70, 2000)
		lo, hi := xs[0], xs[0]
		for _, x := range xs {
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
		if lo < 0 || hi > 1 {
			t.Fatalf("(%v,%v) out of [0,1]: [%v,%v]", tc.a, tc.b, lo, hi)
		}
		switch tc.want {
		case dist.KumaAlways0:
			if hi != 0 {
				t.Fatalf("always0 produced %v", hi)
			}
		case dist.KumaAlways1:
			if lo != 1 {
				t.Fatalf("always1 produced %v", lo)
			}
		case dist.KumaIndeterminate:
			m := mean(xs)
			if m < 0.4 || m > 0.6 {
				t.Fatalf("indeterminate coin mean %v", m)
			}
		}
	}
}

func TestZipfPMF(t *testing.T) {
	z := dist.NewZipf(1)
	xs := draw(z, 80, 100000)
	ones, twos := 0, 0
	for _, x := range xs {
		if x < 1 || x != math.Floor(x) {
			t.Fatalf("zipf produced non positive-integer %v", x)
		}
		switch x {
		case 1:
			ones++
		case 2:
			twos++
		}
	}
	p1 := 6 / (math.Pi * math.Pi)
	if got := float64(ones) / float64(len(xs)); math.Abs(got-p1) > 0.01 {
		t.Fatalf("P(1) got %v want %v", got, p1)
	}
	if got := float64(twos) / float64(len(xs)); math.Abs(got-p1/4) > 0.01 {
		t.Fatalf("P(2) got %v want %v", got, p1/4)
	}
	if !math.IsInf(z.Expect(dist.Mean), 1) && !math.IsNaN(z.Expect(dist.Mean)) {
		t.Fatalf("zipf rho=1 mean should be undefined, got %v", z.Expect(dist.Mean))
	}
}

func TestStudentTKS(t *testing.T) {
	for dof := int64(1); dof <= 6; dof++ {
		checkKS(t, "studentt", dist.NewStudentT(dof), uint32(90+dof))
	}
	checkKS(t, "studentt/30", dist.NewStudentT(30), 99)
}

func TestStudentTLargeDoF(t *testing.T) {
	// ν 很大時應貼近標準常態
	d := dist.NewStudentT(1_000_000)
	checkKS(t, "studentt/1e6", d, 98)
	xs := draw(d, 97, 20000)
	m := mean(xs)
	v := 0.0
	for _, x := range xs {
		v += (x - m) * (x - m)
	}
	v /= float64(len(xs) - 1)
	if math.Abs(v-1) > 0.05 {
		t.Fatalf("variance %v, want ~1", v)
	}
}

func TestTriangle(t *testing.T) {
	sym, err := dist.NewTriangle(0, 0.5, 1)
	if err != nil {
		t.Fatal(err)
	}
	if m := mean(draw(sym, 101, 100000)); math.Abs(m-0.5) > 0.005 {
		t.Fatalf("symmetric triangle mean got %v", m)
	}
	checkKS(t, "triangle/sym", sym, 102)

	left, _ := dist.NewTriangle(0, 0, 1)
	if left.CDF(0.5) != 0.75 {
		t.Fatalf("(0,0,1) CDF(0.5) got %v want 0.75", left.CDF(0.5))
	}
	checkKS(t, "triangle/left", left, 103)

	right, _ := dist.NewTriangle(0, 1, 1)
	if right.CDF(0.5) != 0.25 {
		t.Fatalf("(0,1,1) CDF(0.5) got %v want 0.25", right.CDF(0.5))
	}
	checkKS(t, "triangle/right", right, 104)

	gen, _ := dist.NewTriangle(-1, 2, 3)
	checkKS(t, "triangle/general", gen, 105)

	pt, _ := dist.NewTriangle(2, 2, 2)
	if x := pt.Sample(newCore(1)); x != 2 {
		t.Fatalf("point triangle got %v", x)
	}
}

func TestTriangleOrderError(t *testing.T) {
	if _, err := dist.NewTriangle(1, 0, 2); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("bad order should be ErrInvalidParam, got %v", err)
	}
	tri, _ := dist.NewTriangle(0, 0.5, 1)
	if err := tri.Set(0, 2, 1); err == nil {
		t.Fatalf("c > b should fail")
	}
	p := tri.Params()
	if p["a"] != 0 || p["c"] != 0.5 || p["b"] != 1 {
		t.Fatalf("failed Set changed params: %v", p)
	}
}

func TestRejectionLoopsTerminate(t *testing.T) {
	ds := []dist.Dist{
		dist.NewGamma(0.1, 1),
		dist.NewGamma(1.5, 1),
		dist.NewGamma(1000, 1),
		dist.NewGamma(1e9, 1),
		dist.NewStudentT(3),
		dist.NewStudentT(4),
		dist.NewStudentT(50),
		dist.NewZipf(0.5),
		dist.NewZipf(0.01),
		dist.NewCauchy(0, 1),
		dist.NewNormal(0, 1),
	}
	// 單次抽樣取用的字數上限；實測最差約 100 字
	const maxWords = 1000
	trials := 1_000_000
	if testing.Short() {
		trials = 20_000
	}
	for _, d := range ds {
		src := &countingSource{src: core.NewTaus88(5)}
		c := core.New(src)
		worst := 0
		for i := 0; i < trials; i++ {
			before := src.calls
			d.Sample(c)
			worst = max(worst, src.calls-before)
		}
		if worst > maxWords {
			t.Fatalf("%s %v: a single draw took %d words", d.Kind(), d.Params(), worst)
		}
	}
}

func TestKRWordsPerDraw(t *testing.T) {
	src := &countingSource{src: core.NewTaus88(6)}
	c := core.New(src)
	worst := 0
	for i := 0; i < 200_000; i++ {
		before := src.calls
		x := dist.KR(c)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("draw %d not finite: %v", i, x)
		}
		worst = max(worst, src.calls-before)
	}
	if worst > 1000 {
		t.Fatalf("KR took %d words in one draw", worst)
	}
}

func TestRegistry(t *testing.T) {
	for _, k := range dist.Kinds() {
		d, err := dist.New(string(k), "", nil)
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if d.Kind() != k {
			t.Fatalf("kind mismatch %s vs %s", d.Kind(), k)
		}
		d.Sample(newCore(1))
	}

	d, err := dist.New("erlang", "rejection", map[string]float64{"alpha": 20, "beta": 2})
	if err != nil {
		t.Fatal(err)
	}
	if d.(dist.AlgSelector).Alg() != "rejection" {
		t.Fatalf("alg got %q", d.(dist.AlgSelector).Alg())
	}

	lap, err := dist.New("laplace", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if lap.Params()["sym"] != 1 {
		t.Fatalf("laplace alias should set sym")
	}

	tri, err := dist.New("linnie", "", map[string]float64{"a": 2, "c": 3, "b": 4})
	if err != nil || tri.Params()["c"] != 3 {
		t.Fatalf("triangle via registry: %v %v", tri, err)
	}

	if _, err := dist.New("beta", "", nil); !errors.Is(err, errs.ErrUnknownKind) {
		t.Fatalf("unknown kind should be ErrUnknownKind, got %v", err)
	}
	if _, err := dist.New("normal", "", map[string]float64{"rho": 1}); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("unknown param should be ErrInvalidParam, got %v", err)
	}
	if _, err := dist.New("pareto", "fast", nil); err == nil {
		t.Fatalf("alg on a dist without selector should fail")
	}
	if _, err := dist.New("triangle", "", map[string]float64{"a": 5}); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("triangle order violation via registry should fail, got %v", err)
	}
}

func TestMomentParse(t *testing.T) {
	for _, m := range dist.Moments() {
		got, err := dist.ParseMoment(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMoment(%q) = %v, %v", m.String(), got, err)
		}
	}
	if m, err := dist.ParseMoment("variance"); err != nil || m != dist.Var {
		t.Fatalf("alias variance: %v %v", m, err)
	}
	if _, err := dist.ParseMoment("nope"); err == nil {
		t.Fatalf("unknown moment should fail")
	}
}

func TestAlgsAreRecognized(t *testing.T) {
	for k, names := range dist.Algs() {
		for _, name := range names {
			_, err := dist.New(string(k), name, nil)
			if err != nil && !errors.Is(err, errs.ErrInvalidParam) {
				t.Fatalf("%s/%s: %v", k, name, err)
			}
			if err != nil && strings.Contains(err.Error(), "unknown algorithm") {
				t.Fatalf("%s/%s listed but not recognized", k, name)
			}
		}
	}
}

func TestCategorical(t *testing.T) {
	d, err := dist.New("categorical", "", map[string]float64{"w0": 0, "w1": 3, "w3": 1})
	if err != nil {
		t.Fatal(err)
	}
	cat := d.(*dist.Categorical)
	if got := cat.Weights(); len(got) != 4 || got[0] != 0 || got[1] != 3 || got[2] != 0 || got[3] != 1 {
		t.Fatalf("weights = %v", got)
	}
	xs := draw(d, 21, 40000)
	counts := make([]int, 4)
	for _, x := range xs {
		counts[int(x)]++
	}
	if counts[0] != 0 || counts[2] != 0 {
		t.Fatalf("zero-weight categories drawn: %v", counts)
	}
	if f := stats.ChiSquare([]int{counts[1], counts[3]}, []float64{30000, 10000}); !f.Pass(ksAlpha) {
		t.Fatalf("chi-square failed: %+v", f)
	}
	if got := d.Expect(dist.Mean); math.Abs(got-1.5) > 1e-12 {
		t.Fatalf("mean = %v", got)
	}
	if d.Expect(dist.Mode) != 1 || d.Expect(dist.Median) != 1 || d.Expect(dist.Min) != 1 || d.Expect(dist.Max) != 3 {
		t.Fatalf("unexpected mode/median/min/max")
	}
	want := -(0.75*math.Log(0.75) + 0.25*math.Log(0.25))
	if got := d.Expect(dist.Entropy); math.Abs(got-want) > 1e-12 {
		t.Fatalf("entropy = %v want %v", got, want)
	}
}

func TestCategoricalRejectsBadWeights(t *testing.T) {
	d, _ := dist.New("discrete", "", map[string]float64{"w0": 1, "w1": 1})
	for name, v := range map[string]float64{"w0": -1, "w1": 0.5, "x": 1} {
		if err := d.SetParam(name, v); !errors.Is(err, errs.ErrInvalidParam) {
			t.Fatalf("%s=%v: expected invalid param, got %v", name, v, err)
		}
	}
	// 把唯一剩下的權重歸零會讓總和為 0
	_ = d.SetParam("w1", 0)
	if err := d.SetParam("w0", 0); err == nil {
		t.Fatalf("all-zero weights should fail")
	}
	if p := d.Params(); p["w0"] != 1 || p["w1"] != 0 {
		t.Fatalf("state changed on failed update: %v", p)
	}
}

func BenchmarkSample(b *testing.B) {
	for _, k := range dist.Kinds() {
		d, err := dist.New(string(k), "", nil)
		if err != nil {
			b.Fatal(err)
		}
		c := newCore(1)
		b.Run(string(k), func(b *testing.B) {
			var sink float64
			for i := 0; i < b.N; i++ {
				sink += d.Sample(c)
			}
			_ = sink
		})
	}
}
