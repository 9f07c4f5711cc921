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
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/plan"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/dist"
	"github.com/zintix-labs/litterlab/stats"
)

// 每批抽樣後才更新進度條與檢查取消，避免在熱迴圈內碰共享狀態。
const batch = 4096

// Runner 依計畫執行大量抽樣，可多 worker 平行，並合併成一份統計報告。
//
// 每個 worker 各自持有產生器與分布實例：worker 0 使用基礎 salt，
// worker i 使用 core.DeriveSalt(salt, i)。
type Runner struct {
	Name string   // 計畫名稱
	ID   plan.PID // 計畫編號
	p    *plan.Plan
	salt uint32
}

func newRunner(p *plan.Plan) (*Runner, error) {
	return newRunnerWithSalt(p, p.Generator.Salt)
}

func newRunnerWithSalt(p *plan.Plan, salt uint32) (*Runner, error) {
	if p == nil {
		return nil, errs.NewFatal("plan required")
	}
	if salt == 0 {
		s, err := randomSalt()
		if err != nil {
			return nil, err
		}
		salt = s
	}
	return &Runner{Name: p.Name, ID: p.ID, p: p, salt: salt}, nil
}

// randomSalt 由 crypto/rand 取一個非 0 的 salt。
func randomSalt() (uint32, error) {
	var b [4]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return 0, errs.Wrap(err, "read random salt failed")
		}
		if s := binary.BigEndian.Uint32(b[:]); s != 0 {
			return s, nil
		}
	}
}

// Salt 回傳本次使用的基礎 salt（計畫未指定時為隨機值，可用於重現）。
func (r *Runner) Salt() uint32 {
	return r.salt
}

// Plan 回傳正在執行的計畫。
func (r *Runner) Plan() *plan.Plan {
	return r.p
}

// Resize 覆寫抽樣數與 worker 數（<= 0 保留原值），覆寫後重新檢查計畫。
func (r *Runner) Resize(count, workers int) error {
	if count > 0 {
		r.p.Count = count
	}
	if workers > 0 {
		r.p.Workers = workers
	}
	return r.p.Init()
}

// Run 執行計畫並回傳報告與用時。
func (r *Runner) Run(showpb bool) (*stats.Report, time.Duration, error) {
	return r.RunCtx(context.Background(), showpb)
}

// RunCtx 同 Run，可由 ctx 中途取消；取消時回傳 Warn 等級錯誤。
func (r *Runner) RunCtx(ctx context.Context, showpb bool) (*stats.Report, time.Duration, error) {
	bar := pb.StartNew(r.p.Count)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	xs, hist, err := r.draw(ctx, bar)
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, used, err
	}
	rep, err := r.report(xs, hist)
	if err != nil {
		return nil, used, err
	}
	return rep, used, nil
}

// Samples 只抽樣不做統計，回傳依 worker 順序串接的樣本。
func (r *Runner) Samples(ctx context.Context) ([]float64, error) {
	bar := pb.New(r.p.Count)
	bar.SetWriter(io.Discard)
	xs, _, err := r.draw(ctx, bar)
	return xs, err
}

func (r *Runner) draw(ctx context.Context, bar *pb.ProgressBar) ([]float64, *stats.Histogram, error) {
	n := r.p.Count
	mp := r.p.Workers
	xs := make([]float64, n)

	var proto *stats.Histogram
	if h := r.p.Hist; h != nil {
		proto = stats.NewHistogram(h.Lo, h.Hi, h.Bins)
	}

	// 先全建好（fail-fast），再開 goroutine
	cores := make([]*core.Core, mp)
	dists := make([]dist.Dist, mp)
	hists := make([]*stats.Histogram, mp)
	for i := 0; i < mp; i++ {
		salt := r.salt
		if i > 0 {
			salt = core.DeriveSalt(r.salt, uint64(i))
		}
		g, err := core.NewGenerator(r.p.GeneratorKind(), salt)
		if err != nil {
			return nil, nil, err
		}
		d, err := r.p.NewDist()
		if err != nil {
			return nil, nil, err
		}
		cores[i] = core.New(g)
		dists[i] = d
		if proto != nil {
			hists[i] = proto.Clone()
		}
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	per := n / mp
	rest := n % mp
	lo := 0
	for i := 0; i < mp; i++ {
		hi := lo + per
		if i < rest {
			hi++
		}
		go func(i int, seg []float64) {
			defer wg.Done()
			c, d, h := cores[i], dists[i], hists[i]
			for off := 0; off < len(seg); off += batch {
				if ctx.Err() != nil {
					return
				}
				end := min(off+batch, len(seg))
				for j := off; j < end; j++ {
					x := d.Sample(c)
					seg[j] = x
					if h != nil {
						h.Add(x)
					}
				}
				bar.Add(end - off)
			}
		}(i, xs[lo:hi])
		lo = hi
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, errs.NewWarn("run canceled/timeout: " + err.Error())
	}
	if proto == nil {
		return xs, nil, nil
	}
	for _, h := range hists {
		proto.Merge(h)
	}
	proto.Done()
	return xs, proto, nil
}

func (r *Runner) report(xs []float64, hist *stats.Histogram) (*stats.Report, error) {
	d, err := r.p.NewDist()
	if err != nil {
		return nil, err
	}
	rep := &stats.Report{
		Name:      r.p.Name,
		Dist:      r.p.Dist.Kind,
		Params:    d.Params(),
		Generator: r.p.Generator.Kind,
		Salt:      r.salt,
		Workers:   r.p.Workers,
		Summary:   stats.Summarize(xs),
		Hist:      hist,
	}
	if sel, ok := d.(dist.AlgSelector); ok {
		rep.Alg = sel.Alg()
	}
	for _, m := range r.p.Moments() {
		rep.Expected = append(rep.Expected, stats.Expected{Name: m.String(), Value: stats.Num(d.Expect(m))})
	}
	switch dd := d.(type) {
	case dist.CDFer:
		f := stats.KS(xs, dd.CDF)
		rep.Fit = &f
	case dist.Prober:
		rep.Fit = probFit(xs, dd.Probs())
	}
	return rep, nil
}

// probFit 對有限離散分布做卡方檢定，只計機率 > 0 的類別。
func probFit(xs []float64, probs []float64) *stats.Fit {
	counts := make([]int, len(probs))
	for _, x := range xs {
		if k := int(x); k >= 0 && k < len(counts) {
			counts[k]++
		}
	}
	var obs []int
	var exp []float64
	n := float64(len(xs))
	for k, p := range probs {
		if p > 0 {
			obs = append(obs, counts[k])
			exp = append(exp, p*n)
		}
	}
	if len(obs) < 2 {
		return nil
	}
	f := stats.ChiSquare(obs, exp)
	return &f
}
