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

package sampler

import (
	"cmp"
	"container/heap"
	"math"
	"slices"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
)

// Efraimidis-Spirakis：每個元素的分數為 Exp(1)/w，分數越小排名越前。
// 權重 0 的分數為 +Inf。

type weightItem struct {
	idx   int
	score float64
}

// weightHeap 以分數大者為堆頂（Max-Heap），保留目前最小的 K 個。
type weightHeap []weightItem

func (h weightHeap) Len() int           { return len(h) }
func (h weightHeap) Less(i, j int) bool { return h[i].score > h[j].score }
func (h weightHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *weightHeap) Push(x any)        { *h = append(*h, x.(weightItem)) }
func (h *weightHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func checkWeights(weights []int) error {
	for i, w := range weights {
		if w < 0 {
			return errs.Invalidf("sampler: negative weight %d at %d", w, i)
		}
	}
	return nil
}

// WeightedShuffle 加權不放回的全排列，O(N log N)。權重 0 的元素排在最後，彼此順序不定。
func WeightedShuffle(c *core.Core, weights []int) ([]int, error) {
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	items := make([]weightItem, len(weights))
	for i, w := range weights {
		score := math.Inf(1)
		if w > 0 {
			score = c.Exponential() / float64(w)
		}
		items[i] = weightItem{idx: i, score: score}
	}
	slices.SortStableFunc(items, func(a, b weightItem) int {
		return cmp.Compare(a.score, b.score)
	})
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.idx
	}
	return out, nil
}

// WeightedSample 加權不放回抽 k 個（依抽中先後排序），O(N log K)、空間 O(K)。
// 權重 0 的元素不會被抽中；正權重元素少於 k 時只回傳這些。
func WeightedSample(c *core.Core, weights []int, k int) ([]int, error) {
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	if k <= 0 || len(weights) == 0 {
		return []int{}, nil
	}
	k = min(k, len(weights))

	h := make(weightHeap, 0, k)
	for i, w := range weights {
		if w == 0 {
			continue
		}
		score := c.Exponential() / float64(w)
		switch {
		case h.Len() < k:
			heap.Push(&h, weightItem{idx: i, score: score})
		case score < h[0].score:
			h[0] = weightItem{idx: i, score: score}
			heap.Fix(&h, 0)
		}
	}

	out := make([]int, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(weightItem).idx
	}
	return out, nil
}
