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

// Package core 提供均勻亂數核心（Taus88 與替代產生器）以及 uint32 → 單位區間的轉換工具。
//
// 所有分布取樣器（sdk/dist）都只依賴 Source 介面：任何產生器都可以直接替換 Taus88。
// 本套件沒有任何隱藏的全域狀態：呼叫端必須明確注入產生器（見 Shared）。
package core

import (
	"math/bits"
)

// Source 是最小的亂數來源合約：每次呼叫回傳一個 32-bit 均勻亂數並推進內部狀態。
type Source interface {
	Uint32() uint32
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態（big-endian）。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原內部狀態；失敗時狀態不變。
	Restore([]byte) error
}

// Filler 由支援批次產生的產生器實作，例如 Taus88 以暫存器批次推進，避免每次都回寫記憶體。
type Filler interface {
	Fill(dst []uint32)
}

// Generator 是完整的產生器：可取樣、可快照/還原。
type Generator interface {
	Source
	Restorable
}

// Core 封裝 Source，並提供常用的單位區間與有界整數取樣。
//
// Core 不是併發安全的：每個 voice / 物件應持有自己的 Core。
// 需要共用時，以 Shared 包裝底層 Source。
type Core struct {
	Source
}

// New 以任意 Source 建立 Core。
func New(src Source) *Core {
	return &Core{src}
}

// Open 回傳 (0,1) 的亂數，兩端都不會出現。
func (c *Core) Open() float64 { return UnitOpen(c.Uint32()) }

// Closed 回傳 [0,1] 的亂數，兩端都可能出現。
func (c *Core) Closed() float64 { return UnitClosed(c.Uint32()) }

// ClosedOpen 回傳 [0,1) 的亂數。
func (c *Core) ClosedOpen() float64 { return UnitClosedOpen(c.Uint32()) }

// OpenClosed 回傳 (0,1] 的亂數，可以安全地送進 log。
func (c *Core) OpenClosed() float64 { return UnitOpenClosed(c.Uint32()) }

// Signed 回傳 [-1,1) 的亂數。
func (c *Core) Signed() float64 { return UnitSigned(c.Uint32()) }

// Exponential 回傳標準指數分布亂數 -ln(U)，U ∈ (0,1]。
func (c *Core) Exponential() float64 { return UnitToExponential(c.OpenClosed()) }

// Uint64 以兩次 Uint32 組成 64-bit 亂數（高位先取）。
func (c *Core) Uint64() uint64 {
	hi := uint64(c.Uint32())
	lo := uint64(c.Uint32())
	return hi<<32 | lo
}

// UintN 回傳 [0,n) 的無偏亂數，n == 0 回傳 0。
// 使用乘法高位與拒絕採樣（Lemire），每次至多消耗少量額外亂數。
func (c *Core) UintN(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	if n&(n-1) == 0 { // 2 的冪次，直接遮罩
		return c.Uint32() & (n - 1)
	}
	hi, lo := bits.Mul32(c.Uint32(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul32(c.Uint32(), n)
		}
	}
	return hi
}

// IntN 回傳 [0,n) 的亂數；若 n <= 0 回傳 -1。
func (c *Core) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	if uint64(n) <= uint64(^uint32(0)) {
		return int(c.UintN(uint32(n)))
	}
	bound := uint64(n)
	hi, lo := bits.Mul64(c.Uint64(), bound)
	if lo < bound {
		thresh := -bound % bound
		for lo < thresh {
			hi, lo = bits.Mul64(c.Uint64(), bound)
		}
	}
	return int(hi)
}

// Bool 回傳一個公平的布林值（取最高位元）。
func (c *Core) Bool() bool {
	return c.Uint32()&0x80000000 != 0
}

// Fill 以亂數填滿 dst。若底層支援 Filler，走批次快路徑。
func (c *Core) Fill(dst []uint32) {
	if f, ok := c.Source.(Filler); ok {
		f.Fill(dst)
		return
	}
	for i := range dst {
		dst[i] = c.Uint32()
	}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

// ShuffleInts 使用 Fisher-Yates 演算法對 []int 進行就地隨機重排。
// 所有 N! 種排列機率相等，時間 O(N)、零配置。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}
