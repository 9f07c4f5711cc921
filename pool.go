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
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
)

// GenPool 管理「某一種產生器」的所有實例。
//
// 透過兩個通道管理生命週期：
//  1. pool：健康且可用的產生器，供 Do() 借出 / 歸還。
//  2. broken：使用期間發生 panic 或 fatal error 的產生器，狀態不可信，送往此通道後丟棄。
//
// 壞掉的產生器會立即以新的 salt 補上一台，維持容量。
// 每台產生器的 salt 由池的基礎 salt 以 core.DeriveSalt 依序派生，彼此不共用狀態。
type GenPool struct {
	kind          core.Kind
	baseSalt      uint32
	seq           atomic.Uint64
	pool          chan core.Generator // 可用產生器
	broken        chan core.Generator // 壞掉的產生器
	done          chan struct{}       // 關閉訊號：關閉後不再允許借出 / 歸還 / 補充
	closeOnce     sync.Once
	poolsize      int
	rebuild       atomic.Int32 // 補充次數
	inflight      atomic.Int32 // 使用中
	panics        atomic.Int32 // panic 次數
	fatals        atomic.Int32 // fatal 次數
	closeReason   atomic.Value // string
	closeInflight atomic.Int32 // 關閉當下 inflight（快照）
	closeAvail    atomic.Int32 // 關閉當下 len(pool)（快照）
	closeBroken   atomic.Int32 // 關閉當下 len(broken)（快照）
}

// newGenPool 建立 n 台（至少 1）kind 種類的產生器並放入池中。
func newGenPool(n int, kind core.Kind, salt uint32) (*GenPool, error) {
	n = max(1, n)
	p := &GenPool{
		kind:     kind,
		baseSalt: salt,
		pool:     make(chan core.Generator, n),
		broken:   make(chan core.Generator, 100),
		done:     make(chan struct{}),
		poolsize: n,
	}
	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)
	p.closeBroken.Store(-1)

	for i := 0; i < n; i++ {
		g, err := p.newGen()
		if err != nil {
			return nil, err
		}
		p.pool <- g
	}
	return p, nil
}

func (p *GenPool) newGen() (core.Generator, error) {
	return core.NewGenerator(p.kind, core.DeriveSalt(p.baseSalt, p.seq.Add(1)))
}

// Kind 回傳池內產生器的種類。
func (p *GenPool) Kind() core.Kind {
	return p.kind
}

// Close 進入關閉狀態：之後所有 Do() 直接回傳錯誤。
func (p *GenPool) Close() {
	p.closeWithReason("closed")
}

// Closed 回報池是否已關閉。
func (p *GenPool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 進入關閉狀態並記錄原因（reason 只寫入一次）。
func (p *GenPool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		p.closeBroken.Store(int32(len(p.broken)))
		close(p.done)
	})
}

// isFatalErr 只有錯誤本身宣告 Fatal 才代表產生器狀態不可信。
// 一般的參數錯誤（Warn）不淘汰產生器。
func isFatalErr(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := errs.AsErr(err); ok && e.ErrLv == errs.Fatal {
		return true
	}
	return false
}

// Do 借出一台產生器執行 fn，結束後歸還。
//
// fn 內 panic 或回傳 Fatal 錯誤時，該產生器送往 broken 並補上一台新的；
// Warn 等級錯誤照樣歸還並原樣回傳。
func (p *GenPool) Do(ctx context.Context, fn func(g core.Generator) error) (err error) {
	var g core.Generator
	select {
	case <-p.done:
		return errs.NewFatal("generator pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return errs.NewWarn("draw canceled/timeout: " + ctx.Err().Error())
	case g = <-p.pool:
		p.inflight.Add(1)
	}

	if g == nil {
		return errs.NewFatal("generator pool got nil generator")
	}

	var isPanic bool

	defer func() {
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			isPanic = true
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("generator %s panic : %v", p.kind, r))
		}

		if p.Closed() {
			return
		}

		if isPanic || isFatalErr(err) {
			if !isPanic {
				p.fatals.Add(1)
			}
			select {
			case p.broken <- g:
			default:
				// broken 滿代表正在連續故障，交給上層處理
				p.closeWithReason("overwhelmed_by_failures")
				if err == nil {
					err = errs.NewFatal("generator pool overwhelmed by failures")
				}
				return
			}

			ng, buildErr := p.newGen()
			p.rebuild.Add(1)
			if buildErr != nil {
				err = errs.NewFatal(fmt.Sprintf("generator %s can not build", p.kind))
				p.closeWithReason("rebuild_failed")
				return
			}
			select {
			case <-p.done:
			case p.pool <- ng:
			}
			return
		}

		select {
		case <-p.done:
		case p.pool <- g:
		}
	}()

	return fn(g)
}

// DrainBroken 取出目前所有壞掉的產生器（供檢查），回傳數量。
func (p *GenPool) DrainBroken() int {
	n := 0
	for {
		select {
		case <-p.broken:
			n++
		default:
			return n
		}
	}
}

func (p *GenPool) PoolSize() int {
	return p.poolsize
}

func (p *GenPool) Inflight() int {
	return int(p.inflight.Load())
}

func (p *GenPool) ReBuild() int {
	return int(p.rebuild.Load())
}

func (p *GenPool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (p *GenPool) Panics() int {
	return int(p.panics.Load())
}

func (p *GenPool) Fatals() int {
	return int(p.fatals.Load())
}

// Available 當下可借出的數量（len(pool)），高併發下為近似值。
func (p *GenPool) Available() int {
	return len(p.pool)
}

// GenPoolMetrics 拉取式的觀測快照，不綁任何 metrics SDK。
//
// Close* 欄位只在 Close 時寫入一次，尚未關閉時為 -1。
type GenPoolMetrics struct {
	Generator     core.Kind `json:"generator"`
	PoolSize      int       `json:"pool_size"`
	Available     int       `json:"available"`
	Inflight      int       `json:"inflight"`
	BrokenBacklog int       `json:"broken_backlog"`
	Rebuild       int       `json:"rebuild"`
	Panics        int       `json:"panics"`
	Fatals        int       `json:"fatals"`
	Closed        bool      `json:"closed"`
	CloseReason   string    `json:"close_reason"`
	CloseInflight int       `json:"close_inflight"`
	CloseAvail    int       `json:"close_avail"`
	CloseBroken   int       `json:"close_broken"`
}

func (p *GenPool) Metrics() GenPoolMetrics {
	return GenPoolMetrics{
		Generator:     p.kind,
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
		CloseBroken:   int(p.closeBroken.Load()),
	}
}
