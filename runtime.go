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
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/litterlab/dto"
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/plan"
	"github.com/zintix-labs/litterlab/sdk/chaos"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/dist"
	"github.com/zintix-labs/litterlab/sdk/noise"
	"github.com/zintix-labs/litterlab/sdk/urn"
	"github.com/zintix-labs/litterlab/stats"
)

// DefaultMaxDraws 單一請求的預設抽樣上限。
const DefaultMaxDraws = 1 << 20

// 雜訊預設緩衝區 2^10
const defaultNoisePow = 10

// DefaultMaxNoisePow 即時雜訊請求的 pow 上限（緩衝區 2^16+1）。
const DefaultMaxNoisePow = 16

var colors = []string{"white", "gauss", "pink", "brown", "black", "hurst"}

// Runtime 是 HTTP 服務用的即時抽樣入口。
//
//   - 帶 salt 或 start_b64u 的請求：現場建立產生器，可重現。
//   - 都沒帶的抽樣 / 甕請求：向對應種類的 GenPool 借用。
//   - 都沒帶的雜訊 / 混沌請求：使用唯一的共用產生器（core.Shared）。
type Runtime struct {
	lab *Lab

	pools  map[core.Kind]*GenPool
	kinds  []core.Kind
	shared *core.Shared

	maxDraws    atomic.Int64
	maxNoisePow atomic.Int32
	maxWorkers  int

	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

func newRuntime(l *Lab, poolSize int) (*Runtime, error) {
	if len(l.IDs()) == 0 {
		return nil, errs.NewFatal("no plans registered")
	}
	base, err := randomSalt()
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		lab:        l,
		pools:      make(map[core.Kind]*GenPool),
		kinds:      core.Kinds(),
		shared:     core.NewShared(core.NewTaus88(core.DeriveSalt(base, 0))),
		maxWorkers: runtime.GOMAXPROCS(0),
		done:       make(chan struct{}),
	}
	rt.reason.Store("")
	rt.maxDraws.Store(DefaultMaxDraws)
	rt.maxNoisePow.Store(DefaultMaxNoisePow)

	for i, k := range rt.kinds {
		gp, err := newGenPool(poolSize, k, core.DeriveSalt(base, uint64(i+1)))
		if err != nil {
			return nil, err
		}
		rt.pools[k] = gp
	}
	return rt, nil
}

// SetMaxDraws 設定單一請求的抽樣上限（< 1 時回到預設值）。
func (rt *Runtime) SetMaxDraws(n int) {
	if n < 1 {
		n = DefaultMaxDraws
	}
	rt.maxDraws.Store(int64(n))
}

func (rt *Runtime) MaxDraws() int {
	return int(rt.maxDraws.Load())
}

// SetMaxNoisePow 設定雜訊 pow 上限，夾到 [noise.MinPow, noise.MaxPow]；< 1 時回到預設值。
func (rt *Runtime) SetMaxNoisePow(n int) {
	if n < 1 {
		n = DefaultMaxNoisePow
	}
	rt.maxNoisePow.Store(int32(min(max(n, noise.MinPow), noise.MaxPow)))
}

func (rt *Runtime) MaxNoisePow() int {
	return int(rt.maxNoisePow.Load())
}

func (rt *Runtime) checkLive(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.NewWarn("request canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		return errs.NewFatal("litterlab runtime closed: " + rt.ClosedReason())
	default:
		return nil
	}
}

func (rt *Runtime) checkCount(n int) error {
	if n < 1 || n > rt.MaxDraws() {
		return errs.NewWarn(fmt.Sprintf("count must be in [1,%d]", rt.MaxDraws()))
	}
	return nil
}

// Kinds 列出支援的產生器、分布、演算法、解析量與雜訊色彩。
func (rt *Runtime) Kinds() dto.KindsResult {
	res := dto.KindsResult{
		Algs:   map[string][]string{},
		Colors: append([]string(nil), colors...),
	}
	for _, k := range core.Kinds() {
		res.Generators = append(res.Generators, string(k))
	}
	for _, k := range dist.Kinds() {
		res.Dists = append(res.Dists, string(k))
	}
	for k, v := range dist.Algs() {
		res.Algs[string(k)] = v
	}
	for _, m := range dist.Moments() {
		res.Moments = append(res.Moments, m.String())
	}
	return res
}

// Plans 回傳目錄摘要。
func (rt *Runtime) Plans() (dto.PlansResult, error) {
	sum, err := rt.lab.Summary()
	if err != nil {
		return dto.PlansResult{}, err
	}
	return dto.PlansResult{Plans: sum}, nil
}

// withGenerator 依 salt / start 決定產生器來源後執行 fn。
//
// start 有值但未指定種類時，以快照內記錄的種類為準。
func (rt *Runtime) withGenerator(ctx context.Context, genKind string, salt uint32, start string, fn func(kind core.Kind, g core.Generator) error) (core.Kind, error) {
	var (
		kind core.Kind
		err  error
	)
	if genKind == "" && start != "" {
		kind, err = dto.SnapshotKind(start)
	} else {
		kind, err = core.ParseKind(genKind)
	}
	if err != nil {
		return "", err
	}

	if start == "" && salt == 0 {
		gp, ok := rt.pools[kind]
		if !ok {
			return "", errs.WrapWithExtra(errs.ErrUnknownKind, "generator pool", string(kind))
		}
		return kind, gp.Do(ctx, func(g core.Generator) error { return fn(kind, g) })
	}

	g, err := core.NewGenerator(kind, max(salt, 1))
	if err != nil {
		return "", err
	}
	if start != "" {
		if err := dto.RestoreB64U(kind, g, start); err != nil {
			return "", err
		}
	}
	return kind, fn(kind, g)
}

func streamState(kind core.Kind, g core.Generator, fn func(c *core.Core)) (dto.StreamState, error) {
	var st dto.StreamState
	s, err := dto.SnapshotB64U(kind, g)
	if err != nil {
		return st, err
	}
	st.StartB64U = s
	fn(core.New(g))
	if st.AfterB64U, err = dto.SnapshotB64U(kind, g); err != nil {
		return st, err
	}
	return st, nil
}

// Sample 依請求抽樣，回傳樣本與前後快照。
func (rt *Runtime) Sample(ctx context.Context, req *dto.SampleRequest) (dto.SampleResult, error) {
	if err := rt.checkLive(ctx); err != nil {
		return dto.SampleResult{}, err
	}
	if err := rt.checkCount(req.Count); err != nil {
		return dto.SampleResult{}, err
	}
	d, err := dist.New(req.Dist, req.Alg, req.Params)
	if err != nil {
		return dto.SampleResult{}, err
	}

	res := dto.SampleResult{
		Dist:   strings.ToLower(strings.TrimSpace(req.Dist)),
		Params: d.Params(),
		Salt:   req.Salt,
		Values: make([]stats.Num, req.Count),
	}
	if sel, ok := d.(dist.AlgSelector); ok {
		res.Alg = sel.Alg()
	}
	kind, err := rt.withGenerator(ctx, req.Generator, req.Salt, req.Start(), func(kind core.Kind, g core.Generator) error {
		st, err := streamState(kind, g, func(c *core.Core) {
			for i := range res.Values {
				res.Values[i] = stats.Num(d.Sample(c))
			}
		})
		res.State = st
		return err
	})
	if err != nil {
		return dto.SampleResult{}, err
	}
	res.Generator = string(kind)
	return res, nil
}

// Expect 解析量查詢，不需要產生器。
func (rt *Runtime) Expect(req *dto.ExpectRequest) (dto.ExpectResult, error) {
	d, err := dist.New(req.Dist, req.Alg, req.Params)
	if err != nil {
		return dto.ExpectResult{}, err
	}
	ms := dist.Moments()
	if len(req.Moments) > 0 {
		ms = ms[:0:0]
		for _, s := range req.Moments {
			m, err := dist.ParseMoment(s)
			if err != nil {
				return dto.ExpectResult{}, err
			}
			ms = append(ms, m)
		}
	}
	res := dto.ExpectResult{
		Dist:   strings.ToLower(strings.TrimSpace(req.Dist)),
		Params: d.Params(),
		Values: make([]stats.Expected, len(ms)),
	}
	if sel, ok := d.(dist.AlgSelector); ok {
		res.Alg = sel.Alg()
	}
	for i, m := range ms {
		res.Values[i] = stats.Expected{Name: m.String(), Value: stats.Num(d.Expect(m))}
	}
	return res, nil
}

// Noise 產生一段雜訊。
func (rt *Runtime) Noise(ctx context.Context, req *dto.NoiseRequest) (dto.NoiseResult, error) {
	if err := rt.checkLive(ctx); err != nil {
		return dto.NoiseResult{}, err
	}
	if err := rt.checkCount(req.Count); err != nil {
		return dto.NoiseResult{}, err
	}
	color := strings.ToLower(strings.TrimSpace(req.Color))
	if color == "" {
		color = "white"
	}
	res := dto.NoiseResult{Color: color, NN: req.NN, Salt: req.Salt, Values: make([]float32, req.Count)}

	var hurst float64
	switch color {
	case "white", "gauss":
	case "pink":
		hurst = noise.Pink
	case "brown":
		hurst = noise.Brown
	case "black":
		hurst = noise.Black
	case "hurst":
		if req.Hurst == nil {
			return dto.NoiseResult{}, errs.NewWarn("hurst color requires hurst")
		}
		hurst = *req.Hurst
	default:
		return dto.NoiseResult{}, errs.WrapWithExtra(errs.ErrUnknownKind, "noise color", req.Color)
	}
	colored := color != "white" && color != "gauss"
	pow := req.Pow
	if colored && pow == 0 {
		pow = defaultNoisePow
	}
	// 緩衝區在 fill 內配置，共用產生器的鎖會一路持有到填完
	if colored && pow > rt.MaxNoisePow() {
		return dto.NoiseResult{}, errs.OutOfMemoryf("noise: pow %d exceeds limit %d", pow, rt.MaxNoisePow())
	}

	fill := func(c *core.Core) error {
		mask := noise.NewMask(req.NN)
		switch color {
		case "white":
			noise.FillWhite(c, res.Values)
		case "gauss":
			sigma := req.Sigma
			if sigma == 0 {
				sigma = 1
			}
			noise.FillGauss(c, sigma, res.Values)
		default:
			v, err := noise.NewVoss(hurst, pow, c)
			if err != nil {
				return err
			}
			v.SetPitch(req.Pitch)
			v.SetNN(req.NN)
			noise.FillColored(v, res.Values)
			res.Hurst = v.Hurst()
			res.Pow = v.Pow()
			return nil
		}
		for i, x := range res.Values {
			res.Values[i] = mask.Apply(x)
		}
		return nil
	}

	if req.Salt == 0 {
		var err error
		rt.shared.With(func(c *core.Core) { err = fill(c) })
		if err != nil {
			return dto.NoiseResult{}, err
		}
		return res, nil
	}
	kind, err := core.ParseKind(req.Generator)
	if err != nil {
		return dto.NoiseResult{}, err
	}
	g, err := core.NewGenerator(kind, req.Salt)
	if err != nil {
		return dto.NoiseResult{}, err
	}
	if err := fill(core.New(g)); err != nil {
		return dto.NoiseResult{}, err
	}
	return res, nil
}

// Urn 依 counts 建甕並連續抽球。
func (rt *Runtime) Urn(ctx context.Context, req *dto.UrnRequest) (dto.UrnResult, error) {
	if err := rt.checkLive(ctx); err != nil {
		return dto.UrnResult{}, err
	}
	if err := rt.checkCount(req.Draws); err != nil {
		return dto.UrnResult{}, err
	}
	u, err := urn.NewWithCounts(req.Counts)
	if err != nil {
		return dto.UrnResult{}, err
	}
	if req.AutoReset != nil {
		u.SetAutoReset(*req.AutoReset)
	}

	res := dto.UrnResult{Draws: make([]int, req.Draws), Salt: req.Salt}
	kind, err := rt.withGenerator(ctx, req.Generator, req.Salt, req.Start(), func(kind core.Kind, g core.Generator) error {
		st, err := streamState(kind, g, func(c *core.Core) {
			for i := range res.Draws {
				if req.Replace {
					res.Draws[i] = u.DrawReplace(c)
				} else {
					res.Draws[i] = u.Draw(c)
				}
			}
		})
		res.Stream = st
		return err
	})
	if err != nil {
		return dto.UrnResult{}, err
	}
	res.Generator = string(kind)
	res.Remaining = u.Remaining()
	res.State = u.State()
	if req.Replace {
		res.Fit = replaceFit(u.Counts(), res.Draws)
	}
	return res, nil
}

// replaceFit 放回抽樣的卡方檢定：只納入 count > 0 的類別。
func replaceFit(counts []int, draws []int) *stats.Fit {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil
	}
	hits := make([]int, len(counts))
	for _, d := range draws {
		if d >= 0 {
			hits[d]++
		}
	}
	var obs []int
	var exp []float64
	for i, c := range counts {
		if c > 0 {
			obs = append(obs, hits[i])
			exp = append(exp, float64(len(draws))*float64(c)/float64(total))
		}
	}
	if len(obs) < 2 {
		return nil
	}
	f := stats.ChiSquare(obs, exp)
	return &f
}

// Chaos 推進混沌映射；seed 為 0 時由共用產生器抽一個 (0,1) 初始值。
func (rt *Runtime) Chaos(ctx context.Context, req *dto.ChaosRequest) (dto.ChaosResult, error) {
	if err := rt.checkLive(ctx); err != nil {
		return dto.ChaosResult{}, err
	}
	if err := rt.checkCount(req.Count); err != nil {
		return dto.ChaosResult{}, err
	}
	var m *chaos.Map
	if req.Seed == 0 {
		rt.shared.With(func(c *core.Core) { m = chaos.NewFrom(c) })
	} else {
		var err error
		if m, err = chaos.New(req.Seed); err != nil {
			return dto.ChaosResult{}, err
		}
	}
	res := dto.ChaosResult{Seed: m.State(), Values: make([]float64, req.Count)}
	for i := range res.Values {
		res.Values[i] = m.Next()
	}
	res.Last = m.State()
	return res, nil
}

// Run 執行目錄內計畫或臨時計畫，count 受 MaxDraws 限制，workers 受 GOMAXPROCS 限制。
func (rt *Runtime) Run(ctx context.Context, req *dto.RunRequest) (dto.RunResult, error) {
	if err := rt.checkLive(ctx); err != nil {
		return dto.RunResult{}, err
	}
	p, err := rt.resolvePlan(req)
	if err != nil {
		return dto.RunResult{}, err
	}
	if req.Count > 0 {
		p.Count = req.Count
	}
	if req.Workers > 0 {
		p.Workers = req.Workers
	}
	p.Workers = min(p.Workers, rt.maxWorkers)
	if err := rt.checkCount(p.Count); err != nil {
		return dto.RunResult{}, err
	}
	if err := p.Init(); err != nil {
		return dto.RunResult{}, errs.WrapWithExtra(errs.ErrInvalidParam, "invalid plan", err.Error())
	}
	salt := req.Salt
	if salt == 0 {
		salt = p.Generator.Salt
	}
	r, err := newRunnerWithSalt(p, salt)
	if err != nil {
		return dto.RunResult{}, err
	}
	rep, used, err := r.RunCtx(ctx, false)
	if err != nil {
		return dto.RunResult{}, err
	}
	return dto.RunResult{Report: rep, UsedMs: float64(used) / float64(time.Millisecond)}, nil
}

func (rt *Runtime) resolvePlan(req *dto.RunRequest) (*plan.Plan, error) {
	switch {
	case len(req.Plan) > 0:
		p, err := plan.GetPlanByJSON(req.Plan)
		if err != nil {
			// 請求端帶來的計畫有誤屬於參數錯誤
			return nil, errs.WrapWithExtra(errs.ErrInvalidParam, "invalid plan", err.Error())
		}
		if err := rt.lab.validPlan(p); err != nil {
			return nil, err
		}
		return p, nil
	case req.ID != 0:
		return rt.lab.Plan(req.ID)
	case req.Name != "":
		e, ok := rt.lab.EntryByName(req.Name)
		if !ok {
			return nil, errs.NewWarn("plan name not found")
		}
		return rt.lab.Plan(e.ID)
	default:
		return nil, errs.NewWarn("run requires id, name or plan")
	}
}

// Metrics 依產生器種類順序回傳各池的觀測快照。
func (rt *Runtime) Metrics() []GenPoolMetrics {
	out := make([]GenPoolMetrics, 0, len(rt.kinds))
	for _, k := range rt.kinds {
		out = append(out, rt.pools[k].Metrics())
	}
	return out
}

// Close 讓 runtime 進入關閉狀態，可重複呼叫。
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, gp := range rt.pools {
			gp.closeWithReason(reason)
		}
	})
}

func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
