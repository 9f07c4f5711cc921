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

// Package urn 實作有限類別的「抽出不放回」甕模型。
//
// 每個類別有一個主計數 (master) 與目前剩餘數 (state)；
// 抽出時依剩餘球數加權選出類別並將其剩餘數減一。
//
// 不變式：每次呼叫後 ballsInUrn == sum(state)、totalBalls == sum(master)。
package urn

import (
	"math"
	"slices"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/sampler"
)

// MaxCategories 類別數上限，超過視為配置失敗。
const MaxCategories = 1 << 24

// Urn 甕狀態。零值為沒有類別的空甕，可直接使用。
type Urn struct {
	master     []int
	state      []int
	totalBalls int
	ballsInUrn int
	autoReset  bool
	alias      *sampler.AliasTable // 放回抽樣用，master 變動時作廢
}

// New 建立 n 個類別、每類 0 顆球的甕；預設抽完自動重置。
func New(n int) (*Urn, error) {
	u := &Urn{autoReset: true}
	if err := u.Resize(n); err != nil {
		return nil, err
	}
	return u, nil
}

// NewWithCounts 以各類別球數建立甕。
func NewWithCounts(counts []int) (*Urn, error) {
	u := &Urn{autoReset: true}
	if err := u.SetCounts(counts); err != nil {
		return nil, err
	}
	return u, nil
}

// ============================================================
// ** 參數 **
// ============================================================

// SetCounts 以 counts 取代所有類別（長度即類別數），負數視為 0，並把甕裝滿。
// 失敗時狀態不變。
func (u *Urn) SetCounts(counts []int) error {
	if len(counts) > MaxCategories {
		return errs.OutOfMemoryf("urn: %d categories exceeds limit %d", len(counts), MaxCategories)
	}
	total := 0
	for _, n := range counts {
		n = max(n, 0)
		if total > math.MaxInt-n {
			return errs.Invalidf("urn: total ball count overflows")
		}
		total += n
	}
	master := make([]int, len(counts))
	for i, n := range counts {
		master[i] = max(n, 0)
	}
	u.master = master
	u.state = slices.Clone(master)
	u.totalBalls = total
	u.ballsInUrn = total
	u.alias = nil
	return nil
}

// SetCount 設定單一類別的主計數；該類別剩餘數同步為新值。
func (u *Urn) SetCount(i int, n int) error {
	if i < 0 || i >= len(u.master) {
		return errs.Invalidf("urn: category %d out of range [0,%d)", i, len(u.master))
	}
	n = max(n, 0)
	if u.totalBalls-u.master[i] > math.MaxInt-n {
		return errs.Invalidf("urn: total ball count overflows")
	}
	u.totalBalls += n - u.master[i]
	u.ballsInUrn += n - u.state[i]
	u.master[i] = n
	u.state[i] = n
	u.alias = nil
	return nil
}

// Resize 調整類別數：保留舊類別的主計數與剩餘數，新類別從 0 開始。
// 超過上限回傳 ErrOutOfMemory 且狀態不變。
func (u *Urn) Resize(n int) error {
	if n < 0 {
		return errs.Invalidf("urn: negative size %d", n)
	}
	if n > MaxCategories {
		return errs.OutOfMemoryf("urn: %d categories exceeds limit %d", n, MaxCategories)
	}
	master := make([]int, n)
	state := make([]int, n)
	copy(master, u.master)
	copy(state, u.state)
	total, in := 0, 0
	for i := range master {
		total += master[i]
		in += state[i]
	}
	u.master, u.state = master, state
	u.totalBalls, u.ballsInUrn = total, in
	u.alias = nil
	return nil
}

// SetAutoReset 設定抽完最後一顆時是否自動裝滿。
// 關閉時空甕一律回傳 -1，直到呼叫 Reset。
func (u *Urn) SetAutoReset(on bool) { u.autoReset = on }

func (u *Urn) AutoReset() bool { return u.autoReset }

// ============================================================
// ** 抽樣 **
// ============================================================

// Draw 不放回地抽出一顆球並回傳其類別；甕空時回傳 -1 且不改變狀態。
func (u *Urn) Draw(c *core.Core) int {
	if u.ballsInUrn <= 0 {
		return -1
	}
	r := c.IntN(u.ballsInUrn)
	cat := -1
	for i, n := range u.state {
		if r < n {
			cat = i
			break
		}
		r -= n
	}
	u.state[cat]--
	u.ballsInUrn--
	if u.ballsInUrn == 0 && u.autoReset {
		u.Reset()
	}
	return cat
}

// DrawReplace 依主計數放回抽樣（不影響剩餘數）；總數為 0 時回傳 -1。
func (u *Urn) DrawReplace(c *core.Core) int {
	if u.totalBalls <= 0 {
		return -1
	}
	if u.alias == nil {
		at, err := sampler.NewAliasTable(u.master)
		if err != nil {
			// 類別數超過 sampler.MaxCategories 或 n*total 溢位時退回線性掃描
			return u.drawLinear(c)
		}
		u.alias = at
	}
	return u.alias.Pick(c)
}

// Reset 把所有球放回甕中。
func (u *Urn) Reset() {
	copy(u.state, u.master)
	u.ballsInUrn = u.totalBalls
}

// ============================================================
// ** 查詢 **
// ============================================================

// Remaining 回傳甕中剩餘球數。
func (u *Urn) Remaining() int { return u.ballsInUrn }

// Total 回傳裝滿時的總球數。
func (u *Urn) Total() int { return u.totalBalls }

func (u *Urn) Len() int { return len(u.master) }

// Counts 回傳主計數的複本。
func (u *Urn) Counts() []int { return slices.Clone(u.master) }

// State 回傳剩餘數的複本。
func (u *Urn) State() []int { return slices.Clone(u.state) }

func (u *Urn) drawLinear(c *core.Core) int {
	r := c.IntN(u.totalBalls)
	for i, n := range u.master {
		if r < n {
			return i
		}
		r -= n
	}
	return -1
}
