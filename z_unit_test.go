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

package litterlab

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/litterlab/dto"
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/plan"
	"github.com/zintix-labs/litterlab/sdk/core"
)

const exponYAML = `name: expon_unit
id: 1
generator:
  kind: taus88
  salt: 9
dist:
  kind: expon
  params:
    tau: 2
count: 20000
workers: 3
expect: [mean, var]
hist:
  lo: 0
  hi: 20
  bins: 10
`

const coinJSON = `{"name":"coin","id":2,"generator":{"kind":"pcg32","salt":3},
"dist":{"kind":"categorical","params":{"w0":1,"w1":1}},"count":4000,"workers":1}`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"expon.yaml": {Data: []byte(exponYAML)},
		"coin.json":  {Data: []byte(coinJSON)},
	}
}

func newTestLab(t *testing.T) *Lab {
	t.Helper()
	lab, err := NewAuto(testFS())
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return lab
}

func TestLabRegisterAll(t *testing.T) {
	lab := newTestLab(t)
	ids := lab.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	e, ok := lab.EntryByName("coin")
	if !ok || e.ID != 2 || e.ConfigName != "coin.json" {
		t.Fatalf("unexpected entry: %+v %v", e, ok)
	}
	sum, err := lab.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum[0].Dist != "expon" || sum[0].Workers != 3 || sum[1].Generator != "pcg32" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestLabRejectsDuplicates(t *testing.T) {
	fsys := testFS()
	fsys["again.yaml"] = &fstest.MapFile{Data: []byte(exponYAML)}
	if _, err := NewAuto(fsys); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	nested := testFS()
	nested["sub/x.yaml"] = &fstest.MapFile{Data: []byte(exponYAML)}
	if _, err := NewAuto(nested); err == nil {
		t.Fatalf("expected flat config error")
	}

	if _, err := NewAuto(fstest.MapFS{"readme.txt": {Data: []byte("hi")}}); err == nil {
		t.Fatalf("expected no config error")
	}
}

func TestLabRequiresFreeze(t *testing.T) {
	lab, err := New(testFS())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := lab.RegisterAll(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := lab.NewRunner(1); err == nil {
		t.Fatalf("expected not frozen error")
	}
	if _, err := lab.Summary(); err == nil {
		t.Fatalf("expected not frozen error")
	}
}

func TestLabValidPlan(t *testing.T) {
	lab := newTestLab(t)
	cases := []struct {
		name string
		id   plan.PID
		ok   bool
	}{
		{"expon_unit", 1, true},
		{"fresh", 99, true},
		{"expon_unit", 2, false},
		{"other", 1, false},
		{"coin", 99, false},
	}
	for _, c := range cases {
		err := lab.validPlan(&plan.Plan{Name: c.name, ID: c.id})
		if (err == nil) != c.ok {
			t.Fatalf("%s/%d: unexpected err %v", c.name, c.id, err)
		}
	}
}

func TestRunnerDeterministic(t *testing.T) {
	lab := newTestLab(t)
	draw := func(salt uint32) []float64 {
		r, err := lab.NewRunnerWithSalt(1, salt)
		if err != nil {
			t.Fatalf("runner: %v", err)
		}
		xs, err := r.Samples(context.Background())
		if err != nil {
			t.Fatalf("samples: %v", err)
		}
		return xs
	}
	a, b, c := draw(42), draw(42), draw(43)
	if len(a) != 20000 {
		t.Fatalf("unexpected len %d", len(a))
	}
	same := 0
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("salt 42 differs at %d", i)
		}
		if a[i] == c[i] {
			same++
		}
	}
	if same > 10 {
		t.Fatalf("different salts produced %d equal draws", same)
	}
}

func TestRunnerWorkerZeroMatchesSingle(t *testing.T) {
	lab := newTestLab(t)
	multi, err := lab.NewRunnerWithSalt(1, 7)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	xs, err := multi.Samples(context.Background())
	if err != nil {
		t.Fatalf("samples: %v", err)
	}

	single, err := lab.NewRunnerWithSalt(1, 7)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if err := single.Resize(0, 1); err != nil {
		t.Fatalf("resize: %v", err)
	}
	ys, err := single.Samples(context.Background())
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	// worker 0 拿到前 ceil(n/3) 筆
	seg := (20000 + 2) / 3
	for i := 0; i < seg; i++ {
		if xs[i] != ys[i] {
			t.Fatalf("worker 0 segment differs at %d", i)
		}
	}
}

func TestRunnerReport(t *testing.T) {
	lab := newTestLab(t)
	r, err := lab.NewRunner(1)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if r.Salt() != 9 {
		t.Fatalf("unexpected salt %d", r.Salt())
	}
	rep, _, err := r.Run(false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Fit == nil || rep.Fit.Test != "ks" {
		t.Fatalf("expected ks fit: %+v", rep.Fit)
	}
	if !rep.Fit.Pass(1e-4) {
		t.Fatalf("ks rejected: %+v", rep.Fit)
	}
	if len(rep.Expected) != 2 || rep.Expected[0].Name != "mean" || float64(rep.Expected[0].Value) != 2 {
		t.Fatalf("unexpected expected: %+v", rep.Expected)
	}
	if rep.Hist == nil {
		t.Fatalf("missing histogram")
	}

	coin, err := lab.NewRunner(2)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	rep, _, err = coin.Run(false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Fit == nil || rep.Fit.DoF != 1 {
		t.Fatalf("expected chi-square fit with 1 dof: %+v", rep.Fit)
	}
}

func TestRunnerRandomSalt(t *testing.T) {
	lab := newTestLab(t)
	r, err := lab.NewRunnerByYAML([]byte("name: adhoc\nid: 50\ngenerator: {kind: lcg}\ndist: {kind: normal}\ncount: 10\n"), 0)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if r.Salt() == 0 {
		t.Fatalf("salt 0 must be replaced")
	}
}

func TestRunnerCanceled(t *testing.T) {
	lab := newTestLab(t)
	r, err := lab.NewRunner(1)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = r.RunCtx(ctx, false)
	e, ok := errs.AsErr(err)
	if !ok || e.ErrLv != errs.Warn {
		t.Fatalf("expected warn error, got %v", err)
	}
}

func TestRunnerResizeRejectsBadCount(t *testing.T) {
	lab := newTestLab(t)
	r, err := lab.NewRunner(1)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if err := r.Resize(plan.MaxCount+1, 0); err == nil {
		t.Fatalf("expected count error")
	}
}

func TestGenPoolRebuildsAfterPanic(t *testing.T) {
	gp, err := newGenPool(2, core.KindTaus88, 5)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	err = gp.Do(context.Background(), func(core.Generator) error { panic("boom") })
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Fatal {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if gp.Panics() != 1 || gp.ReBuild() != 1 || gp.Available() != 2 {
		t.Fatalf("unexpected metrics: %+v", gp.Metrics())
	}

	err = gp.Do(context.Background(), func(core.Generator) error { return errs.NewFatal("bad state") })
	if err == nil || gp.Fatals() != 1 || gp.ReBuild() != 2 {
		t.Fatalf("unexpected fatal handling: %v %+v", err, gp.Metrics())
	}
	if n := gp.DrainBroken(); n != 2 {
		t.Fatalf("expected 2 broken, got %d", n)
	}

	err = gp.Do(context.Background(), func(core.Generator) error { return errs.NewWarn("bad param") })
	if err == nil || gp.ReBuild() != 2 || gp.Available() != 2 {
		t.Fatalf("warn must not rebuild: %+v", gp.Metrics())
	}
}

func TestGenPoolClose(t *testing.T) {
	gp, err := newGenPool(1, core.KindPCG64, 5)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	gp.Close()
	gp.Close()
	if err := gp.Do(context.Background(), func(core.Generator) error { return nil }); err == nil {
		t.Fatalf("expected closed error")
	}
	m := gp.Metrics()
	if !m.Closed || m.CloseReason != "closed" || m.CloseAvail != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestGenPoolCanceled(t *testing.T) {
	gp, err := newGenPool(1, core.KindLCG, 5)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = gp.Do(context.Background(), func(core.Generator) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gp.Do(ctx, func(core.Generator) error { return nil }); err == nil {
		t.Fatalf("expected canceled error")
	}
	close(release)
}

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := newTestLab(t).BuildRuntime(2)
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	t.Cleanup(rt.Close)
	return rt
}

func TestRuntimeSampleResume(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	whole, err := rt.Sample(ctx, &dto.SampleRequest{Dist: "expon", Generator: "mt19937", Salt: 5, Count: 20})
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	head, err := rt.Sample(ctx, &dto.SampleRequest{Dist: "expon", Generator: "mt19937", Salt: 5, Count: 12})
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if head.State.StartB64U != whole.State.StartB64U {
		t.Fatalf("same salt must share start state")
	}
	tail, err := rt.Sample(ctx, &dto.SampleRequest{
		Dist:       "expon",
		Count:      8,
		StartState: &dto.StartState{StartB64U: head.State.AfterB64U},
	})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if tail.Generator != "mt19937" {
		t.Fatalf("generator must come from snapshot, got %s", tail.Generator)
	}
	got := append(append([]float64{}, numsToFloats(head.Values)...), numsToFloats(tail.Values)...)
	for i, v := range numsToFloats(whole.Values) {
		if got[i] != v {
			t.Fatalf("resumed stream differs at %d", i)
		}
	}
	if tail.State.AfterB64U != whole.State.AfterB64U {
		t.Fatalf("after state mismatch")
	}
}

func numsToFloats[T ~float64](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func TestRuntimeSampleErrors(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	rt.SetMaxDraws(10)

	_, err := rt.Sample(ctx, &dto.SampleRequest{Dist: "normal", Count: 11})
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Warn {
		t.Fatalf("expected count warn, got %v", err)
	}
	_, err = rt.Sample(ctx, &dto.SampleRequest{Dist: "nope", Count: 1})
	if !errors.Is(err, errs.ErrUnknownKind) {
		t.Fatalf("expected unknown kind, got %v", err)
	}
	_, err = rt.Sample(ctx, &dto.SampleRequest{Dist: "normal", Generator: "nope", Count: 1})
	if !errors.Is(err, errs.ErrUnknownKind) {
		t.Fatalf("expected unknown generator, got %v", err)
	}
	_, err = rt.Sample(ctx, &dto.SampleRequest{
		Dist: "normal", Generator: "lcg", Count: 1,
		StartState: &dto.StartState{StartB64U: "!!"},
	})
	if err == nil {
		t.Fatalf("expected bad snapshot error")
	}

	res, err := rt.Sample(ctx, &dto.SampleRequest{Dist: "normal", Count: 10})
	if err != nil || res.Generator != "taus88" || len(res.Values) != 10 {
		t.Fatalf("pooled sample: %+v %v", res, err)
	}
}

func TestRuntimeExpect(t *testing.T) {
	rt := newTestRuntime(t)
	res, err := rt.Expect(&dto.ExpectRequest{Dist: "expon", Params: map[string]float64{"tau": 3}, Moments: []string{"mean"}})
	if err != nil {
		t.Fatalf("expect: %v", err)
	}
	if len(res.Values) != 1 || float64(res.Values[0].Value) != 3 {
		t.Fatalf("unexpected: %+v", res)
	}
	if _, err := rt.Expect(&dto.ExpectRequest{Dist: "expon", Moments: []string{"nope"}}); err == nil {
		t.Fatalf("expected moment error")
	}
}

func TestRuntimeNoise(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	req := &dto.NoiseRequest{Color: "pink", Count: 64, Generator: "tt800", Salt: 2}
	a, err := rt.Noise(ctx, req)
	if err != nil {
		t.Fatalf("noise: %v", err)
	}
	b, err := rt.Noise(ctx, req)
	if err != nil {
		t.Fatalf("noise: %v", err)
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			t.Fatalf("salted noise must repeat, differs at %d", i)
		}
	}
	if a.Pow != defaultNoisePow {
		t.Fatalf("unexpected pow %d", a.Pow)
	}
	if _, err := rt.Noise(ctx, &dto.NoiseRequest{Color: "hurst", Count: 4}); err == nil {
		t.Fatalf("hurst color without hurst must fail")
	}
	if _, err := rt.Noise(ctx, &dto.NoiseRequest{Color: "white", Count: 4}); err != nil {
		t.Fatalf("shared noise: %v", err)
	}
}

func TestRuntimeNoisePowLimit(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	if rt.MaxNoisePow() != DefaultMaxNoisePow {
		t.Fatalf("default max pow got %d", rt.MaxNoisePow())
	}
	for _, salt := range []uint32{0, 3} {
		_, err := rt.Noise(ctx, &dto.NoiseRequest{Color: "pink", Pow: 24, Count: 4, Salt: salt})
		if !errors.Is(err, errs.ErrOutOfMemory) {
			t.Fatalf("salt %d: pow 24 should be rejected, got %v", salt, err)
		}
	}
	rt.SetMaxNoisePow(4)
	if _, err := rt.Noise(ctx, &dto.NoiseRequest{Color: "brown", Pow: 5, Count: 4}); !errors.Is(err, errs.ErrOutOfMemory) {
		t.Fatalf("pow above lowered limit should be rejected, got %v", err)
	}
	res, err := rt.Noise(ctx, &dto.NoiseRequest{Color: "brown", Pow: 4, Count: 4})
	if err != nil || res.Pow != 4 {
		t.Fatalf("pow at limit: %+v %v", res, err)
	}
	// white 不配置緩衝區，不受 pow 限制
	if _, err := rt.Noise(ctx, &dto.NoiseRequest{Color: "white", Pow: 24, Count: 4}); err != nil {
		t.Fatalf("white noise ignores pow: %v", err)
	}
	rt.SetMaxNoisePow(0)
	if rt.MaxNoisePow() != DefaultMaxNoisePow {
		t.Fatalf("reset max pow got %d", rt.MaxNoisePow())
	}
}

func TestRuntimeUrn(t *testing.T) {
	rt := newTestRuntime(t)
	off := false
	res, err := rt.Urn(context.Background(), &dto.UrnRequest{
		Counts: []int{2, 3}, Draws: 6, AutoReset: &off, Generator: "gray", Salt: 4,
	})
	if err != nil {
		t.Fatalf("urn: %v", err)
	}
	hits := [2]int{}
	for i, d := range res.Draws[:5] {
		if d < 0 || d > 1 {
			t.Fatalf("draw %d out of range: %d", i, d)
		}
		hits[d]++
	}
	if hits != [2]int{2, 3} || res.Draws[5] != -1 || res.Remaining != 0 {
		t.Fatalf("unexpected urn result: %+v", res)
	}

	rep, err := rt.Urn(context.Background(), &dto.UrnRequest{Counts: []int{1, 1, 2}, Draws: 4000, Replace: true, Salt: 8})
	if err != nil {
		t.Fatalf("urn: %v", err)
	}
	if rep.Fit == nil || !rep.Fit.Pass(1e-4) {
		t.Fatalf("replace fit: %+v", rep.Fit)
	}
}

func TestRuntimeChaos(t *testing.T) {
	rt := newTestRuntime(t)
	res, err := rt.Chaos(context.Background(), &dto.ChaosRequest{Seed: 0.3, Count: 5})
	if err != nil {
		t.Fatalf("chaos: %v", err)
	}
	if res.Last != res.Values[4] {
		t.Fatalf("last must equal final value: %+v", res)
	}
	next, err := rt.Chaos(context.Background(), &dto.ChaosRequest{Seed: res.Last, Count: 1})
	if err != nil {
		t.Fatalf("chaos: %v", err)
	}
	again, err := rt.Chaos(context.Background(), &dto.ChaosRequest{Seed: 0.3, Count: 6})
	if err != nil {
		t.Fatalf("chaos: %v", err)
	}
	if next.Values[0] != again.Values[5] {
		t.Fatalf("resume from last must continue the trajectory")
	}
}

func TestRuntimeRun(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	res, err := rt.Run(ctx, &dto.RunRequest{Name: "expon_unit", Count: 500, Workers: 1})
	if err != nil {
		t.Fatalf("run by name: %v", err)
	}
	if res.Report.Summary.Count != 500 || res.Report.Salt != 9 {
		t.Fatalf("unexpected report: %+v", res.Report)
	}

	raw, _ := json.Marshal(map[string]any{
		"name": "inline", "id": 77,
		"generator": map[string]any{"kind": "pcg64", "salt": 1},
		"dist":      map[string]any{"kind": "normal"},
		"count":     100,
	})
	res, err = rt.Run(ctx, &dto.RunRequest{Plan: raw, Salt: 12})
	if err != nil {
		t.Fatalf("run inline: %v", err)
	}
	if res.Report.Name != "inline" || res.Report.Salt != 12 {
		t.Fatalf("unexpected inline report: %+v", res.Report)
	}

	_, err = rt.Run(ctx, &dto.RunRequest{Plan: []byte(`{"name":""}`)})
	if !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("expected invalid param, got %v", err)
	}
	if _, err := rt.Run(ctx, &dto.RunRequest{Name: "missing"}); err == nil {
		t.Fatalf("expected not found")
	}
	if _, err := rt.Run(ctx, &dto.RunRequest{}); err == nil {
		t.Fatalf("expected missing selector error")
	}
}

func TestRuntimeClose(t *testing.T) {
	rt := newTestRuntime(t)
	rt.Close()
	if !rt.Closed() || rt.ClosedReason() != "closed" {
		t.Fatalf("runtime not closed")
	}
	if _, err := rt.Sample(context.Background(), &dto.SampleRequest{Dist: "normal", Count: 1}); err == nil {
		t.Fatalf("closed runtime must reject")
	}
	for _, m := range rt.Metrics() {
		if !m.Closed {
			t.Fatalf("pool %s still open", m.Generator)
		}
	}
}
