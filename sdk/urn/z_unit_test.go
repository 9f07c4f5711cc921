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

package urn_test

import (
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/urn"
	"github.com/zintix-labs/litterlab/stats"
)

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func checkInvariant(t *testing.T, u *urn.Urn) {
	t.Helper()
	if got := sum(u.State()); got != u.Remaining() {
		t.Fatalf("ballsInUrn %d != sum(state) %d", u.Remaining(), got)
	}
	if got := sum(u.Counts()); got != u.Total() {
		t.Fatalf("totalBalls %d != sum(master) %d", u.Total(), got)
	}
}

func TestDrawToExhaustion(t *testing.T) {
	counts := []int{3, 0, 5, 1, 7}
	u, err := urn.NewWithCounts(counts)
	if err != nil {
		t.Fatal(err)
	}
	u.SetAutoReset(false)
	c := core.New(core.NewTaus88(1))

	seen := make([]int, len(counts))
	for i := 0; i < sum(counts); i++ {
		cat := u.Draw(c)
		if cat < 0 {
			t.Fatalf("draw %d returned -1 before exhaustion", i)
		}
		seen[cat]++
		checkInvariant(t, u)
	}
	for i := range counts {
		if seen[i] != counts[i] {
			t.Fatalf("category %d drawn %d times, want %d", i, seen[i], counts[i])
		}
	}

	before := u.State()
	if cat := u.Draw(c); cat != -1 {
		t.Fatalf("empty urn should return -1, got %d", cat)
	}
	after := u.State()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("draw on empty urn mutated state")
		}
	}

	u.Reset()
	if u.Remaining() != u.Total() {
		t.Fatalf("reset should refill, got %d of %d", u.Remaining(), u.Total())
	}
	checkInvariant(t, u)
}

func TestAutoResetCycles(t *testing.T) {
	counts := []int{2, 4, 1}
	u, _ := urn.NewWithCounts(counts)
	c := core.New(core.NewTaus88(2))
	seen := make([]int, len(counts))
	cycles := 5
	for i := 0; i < cycles*sum(counts); i++ {
		cat := u.Draw(c)
		if cat < 0 {
			t.Fatalf("auto reset urn returned -1")
		}
		seen[cat]++
		checkInvariant(t, u)
	}
	for i := range counts {
		if seen[i] != cycles*counts[i] {
			t.Fatalf("category %d drawn %d, want %d", i, seen[i], cycles*counts[i])
		}
	}
	if u.Remaining() != u.Total() {
		t.Fatalf("after whole cycles urn should be full")
	}
}

func TestEmptyUrn(t *testing.T) {
	var u urn.Urn
	c := core.New(core.NewTaus88(3))
	if u.Draw(c) != -1 || u.DrawReplace(c) != -1 {
		t.Fatalf("zero urn should return -1")
	}
	z, _ := urn.New(4)
	if z.Draw(c) != -1 {
		t.Fatalf("urn of zeros should return -1")
	}
}

func TestSetCountAndResize(t *testing.T) {
	u, _ := urn.NewWithCounts([]int{1, 2, 3})
	c := core.New(core.NewTaus88(4))
	u.Draw(c)
	checkInvariant(t, u)

	if err := u.SetCount(1, 10); err != nil {
		t.Fatal(err)
	}
	checkInvariant(t, u)
	if u.Counts()[1] != 10 {
		t.Fatalf("SetCount did not apply")
	}
	if err := u.SetCount(3, 1); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("out of range SetCount should be ErrInvalidParam, got %v", err)
	}

	if err := u.Resize(5); err != nil {
		t.Fatal(err)
	}
	got := u.Counts()
	if len(got) != 5 || got[1] != 10 || got[3] != 0 || got[4] != 0 {
		t.Fatalf("resize should keep old slots and zero new ones: %v", got)
	}
	checkInvariant(t, u)

	if err := u.Resize(2); err != nil {
		t.Fatal(err)
	}
	checkInvariant(t, u)
	if u.Total() != 11 {
		t.Fatalf("shrink should drop trailing categories, total %d", u.Total())
	}
}

func TestOutOfMemoryLeavesState(t *testing.T) {
	u, _ := urn.NewWithCounts([]int{4, 4})
	err := u.Resize(urn.MaxCategories + 1)
	if !errors.Is(err, errs.ErrOutOfMemory) {
		t.Fatalf("oversize resize should be ErrOutOfMemory, got %v", err)
	}
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Fatal {
		t.Fatalf("out of memory should be fatal level, got %v", err)
	}
	if u.Len() != 2 || u.Total() != 8 {
		t.Fatalf("failed resize mutated urn")
	}
	if err := u.SetCounts([]int{math.MaxInt, 1}); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("overflowing counts should fail, got %v", err)
	}
	if u.Len() != 2 || u.Total() != 8 {
		t.Fatalf("failed SetCounts mutated urn")
	}
}

func TestNegativeCountsClamp(t *testing.T) {
	u, _ := urn.NewWithCounts([]int{-3, 2})
	if u.Counts()[0] != 0 || u.Total() != 2 {
		t.Fatalf("negative count should clamp to 0: %v", u.Counts())
	}
}

func TestDrawReplaceProportions(t *testing.T) {
	counts := []int{1, 2, 3, 4}
	u, _ := urn.NewWithCounts(counts)
	c := core.New(core.NewTaus88(5))
	n := 100000
	obs := make([]int, len(counts))
	for i := 0; i < n; i++ {
		obs[u.DrawReplace(c)]++
	}
	exp := make([]float64, len(counts))
	for i, w := range counts {
		exp[i] = float64(n) * float64(w) / 10
	}
	if f := stats.ChiSquare(obs, exp); !f.Pass(1e-4) {
		t.Fatalf("with-replacement draws off: chi2=%v p=%v obs=%v", f.Stat, f.P, obs)
	}
	if u.Remaining() != u.Total() {
		t.Fatalf("DrawReplace must not consume balls")
	}
}
