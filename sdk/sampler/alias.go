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

// Package sampler 提供整數權重的離散抽樣：Vose alias table 與加權不放回抽樣。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
)

// MaxCategories 單一表的類別上限。
const MaxCategories = 1 << 20

// AliasTable 是整數版的 Vose alias method：建表 O(N)，抽樣 O(1)（固定兩次 IntN）。
//
// 權重乘上 N 做整數 scaling，以 total 為門檻分 small / large 兩桶配對，
// 全程不經浮點，避免 0.999... != 1 的累積誤差。空間與權重總和無關。
type AliasTable struct {
	prob    []int
	aliases []int
	weights []int
	total   int
}

// NewAliasTable 以非負整數權重建表，權重不需正規化。
//
// 負權重、全為零、總和或 total*N 溢位回傳 ErrInvalidParam；
// 類別數超過 MaxCategories 回傳 ErrOutOfMemory。
func NewAliasTable(weights []int) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errs.Invalidf("alias table: no weights")
	}
	if n > MaxCategories {
		return nil, errs.OutOfMemoryf("alias table: %d categories exceeds limit %d", n, MaxCategories)
	}
	total := uint64(0)
	for i, w := range weights {
		if w < 0 {
			return nil, errs.Invalidf("alias table: negative weight %d at %d", w, i)
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			return nil, errs.Invalidf("alias table: total weight overflows int")
		}
		total += uint64(w)
	}
	if total == 0 {
		return nil, errs.Invalidf("alias table: all weights are zero")
	}
	if hi, lo := bits.Mul64(total, uint64(n)); hi != 0 || lo > math.MaxInt64 {
		return nil, errs.Invalidf("alias table: weights too large for %d categories", n)
	}

	t := int(total)
	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		prob[i] = w * n
		aliases[i] = i
		if prob[i] < t {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		// s 的不足由 l 補上；sum(prob) = total*n 不變
		aliases[s] = l
		prob[l] = prob[l] + prob[s] - t
		if prob[l] < t {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的槽位一律滿格
	for _, i := range large {
		prob[i] = t
	}
	for _, i := range small {
		prob[i] = t
	}

	w := make([]int, n)
	copy(w, weights)
	return &AliasTable{prob: prob, aliases: aliases, weights: w, total: t}, nil
}

// Pick 回傳一個類別索引。
func (at *AliasTable) Pick(c *core.Core) int {
	idx := c.IntN(len(at.prob))
	if c.IntN(at.total) < at.prob[idx] {
		return idx
	}
	return at.aliases[idx]
}

// Len 類別數。
func (at *AliasTable) Len() int { return len(at.prob) }

// Total 權重總和。
func (at *AliasTable) Total() int { return at.total }

// Weight 第 i 類的原始權重。
func (at *AliasTable) Weight(i int) int { return at.weights[i] }

// P 第 i 類的機率。
func (at *AliasTable) P(i int) float64 {
	return float64(at.weights[i]) / float64(at.total)
}
