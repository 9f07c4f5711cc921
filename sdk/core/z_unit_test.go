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

package core

import (
	"errors"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/zintix-labs/litterlab/errs"
)

func expectSeq(t *testing.T, name string, src Source, want []uint32) {
	t.Helper()
	for i, w := range want {
		if got := src.Uint32(); got != w {
			t.Fatalf("%s: output %d = %#08x, want %#08x", name, i, got, w)
		}
	}
}

func TestTaus88Golden(t *testing.T) {
	g := NewTaus88(1)
	s1, s2, s3 := g.Words()
	if s1 != 0x9e3779b8 || s2 != 0x7f4a7415 || s3 != 0xf31cc060 {
		t.Fatalf("seeded words = %#x %#x %#x", s1, s2, s3)
	}
	expectSeq(t, "taus88", g, []uint32{0x03f1b039, 0x0c26c008, 0x2eec98e0})
	s1, s2, s3 = g.Words()
	if s1 != 0x200cbf1f || s2 != 0xa7414131 || s3 != 0xa9a166ce {
		t.Fatalf("state after 3 draws = %#x %#x %#x", s1, s2, s3)
	}
}

func TestTaus88FoldsSmallSeeds(t *testing.T) {
	g := NewTaus88FromWords(0, 7, 15)
	s1, s2, s3 := g.Words()
	if s1 != taus88Seed1 || s2 != taus88Seed2 || s3 != taus88Seed3 {
		t.Fatalf("small seeds not folded: %#x %#x %#x", s1, s2, s3)
	}
	// 低於下限以外的值保持原樣
	g = NewTaus88FromWords(2, 8, 16)
	s1, s2, s3 = g.Words()
	if s1 != 2 || s2 != 8 || s3 != 16 {
		t.Fatalf("valid seeds modified: %d %d %d", s1, s2, s3)
	}
}

func TestTaus88FillMatchesUint32(t *testing.T) {
	a := NewTaus88(99)
	b := NewTaus88(99)
	buf := make([]uint32, 257)
	a.Fill(buf)
	for i, v := range buf {
		if w := b.Uint32(); v != w {
			t.Fatalf("fill[%d]=%#x, want %#x", i, v, w)
		}
	}
	if a.Uint32() != b.Uint32() {
		t.Fatalf("state diverged after Fill")
	}
}

func TestTT800Canonical(t *testing.T) {
	expectSeq(t, "tt800", NewTT800Canonical(), []uint32{0x33c2a07e, 0x55ee93b7, 0x40bd28c3})
}

func TestMT19937Reference(t *testing.T) {
	expectSeq(t, "mt19937/5489", NewMT19937(5489), []uint32{3499211612, 581869302, 3890346734})
	expectSeq(t, "mt19937/1", NewMT19937(1), []uint32{1791095845, 4282876139, 3093770124})
}

func TestLCGReference(t *testing.T) {
	expectSeq(t, "ranqd1", NewLCG(1), []uint32{1015568748, 1586005467, 2165703038})

	minstd, err := NewLCGWith(1, 16807, 0, 2147483647)
	if err != nil {
		t.Fatalf("minstd: %v", err)
	}
	expectSeq(t, "minstd", minstd, []uint32{16807, 282475249, 1622650073})

	if _, err := NewLCGWith(1, 0, 1, 0); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam for zero multiplier, got %v", err)
	}
	l, _ := NewLCGWith(10, 3, 0, 7)
	if l.seed != 3 {
		t.Fatalf("seed should be reduced modulo, got %d", l.seed)
	}
}

func TestMamaGolden(t *testing.T) {
	m := NewMama(1)
	wantM1 := [10]uint32{30903 & 0x7FFF, 4817, 42067, 26676, 10920, 28475, 16202, 8793, 25463, 0}
	wantM2 := [10]uint32{62019 & 0x7FFF, 50379, 18265, 5483, 39202, 29031, 41174, 32371, 38924, 0}
	if m.m1 != wantM1 {
		t.Fatalf("m1 = %v", m.m1)
	}
	if m.m2 != wantM2 {
		t.Fatalf("m2 = %v", m.m2)
	}
	expectSeq(t, "mama", m, []uint32{2916024993, 2242520228, 1578259299})
}

func TestMamaSeedLeavesLastLagZero(t *testing.T) {
	for _, salt := range []uint32{1, 7, 0xDEADBEEF, 0xFFFFFFFF} {
		m := NewMama(salt)
		// 先弄髒狀態，確認重播種會清掉 [9]
		m.m1[9], m.m2[9] = 0xFFFF, 0xFFFF
		m.Seed(salt)
		if m.m1[9] != 0 || m.m2[9] != 0 {
			t.Fatalf("salt %#x: m1[9]=%d m2[9]=%d", salt, m.m1[9], m.m2[9])
		}
		if m.m1[0] > 0x7FFF || m.m2[0] > 0x7FFF {
			t.Fatalf("salt %#x: carry exceeds 15 bits", salt)
		}
	}
}

func TestGrayFlipsOneBit(t *testing.T) {
	g := NewGray(5)
	prev := g.state
	for i := 0; i < 1000; i++ {
		v := g.Uint32()
		d := v ^ prev
		if d == 0 || d&(d-1) != 0 {
			t.Fatalf("step %d flipped %#x", i, d)
		}
		prev = v
	}
}

func TestGeneratorsSnapshotRestore(t *testing.T) {
	for _, k := range Kinds() {
		g, err := NewGenerator(k, 12345)
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		for i := 0; i < 700; i++ { // 跨過 TT800/MT19937 的重生邊界
			g.Uint32()
		}
		snap, err := g.Snapshot()
		if err != nil {
			t.Fatalf("%s snapshot: %v", k, err)
		}
		want := make([]uint32, 50)
		for i := range want {
			want[i] = g.Uint32()
		}

		h, _ := NewGenerator(k, 777)
		if err := h.Restore(snap); err != nil {
			t.Fatalf("%s restore: %v", k, err)
		}
		for i, w := range want {
			if got := h.Uint32(); got != w {
				t.Fatalf("%s: restored output %d = %#x, want %#x", k, i, got, w)
			}
		}
	}
}

func TestRestoreRejectsBadSnapshot(t *testing.T) {
	for _, k := range Kinds() {
		g, _ := NewGenerator(k, 3)
		before, _ := g.Snapshot()
		if err := g.Restore([]byte{1, 2, 3}); err == nil {
			t.Fatalf("%s: expected error for truncated snapshot", k)
		}
		after, _ := g.Snapshot()
		if !slices.Equal(before, after) {
			t.Fatalf("%s: state modified by failed restore", k)
		}
	}

	bad := make([]byte, 12) // 全 0 低於 Taus88 下限
	if err := NewTaus88(1).Restore(bad); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
}

func TestSaltDeterminism(t *testing.T) {
	for _, k := range Kinds() {
		a, _ := NewGenerator(k, 42)
		b, _ := NewGenerator(k, 42)
		c, _ := NewGenerator(k, 43)
		same, diff := true, false
		for i := 0; i < 16; i++ {
			x, y, z := a.Uint32(), b.Uint32(), c.Uint32()
			if x != y {
				same = false
			}
			if x != z {
				diff = true
			}
		}
		if !same {
			t.Fatalf("%s: same salt produced different streams", k)
		}
		if !diff {
			t.Fatalf("%s: different salts produced identical streams", k)
		}
	}
}

func TestUnseededGeneratorsDiffer(t *testing.T) {
	a := NewTaus88(0)
	b := NewTaus88(0)
	if a.Uint32() == b.Uint32() && a.Uint32() == b.Uint32() {
		t.Fatalf("entropy-seeded generators should differ")
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" MT19937 ")
	if err != nil || k != KindMT19937 {
		t.Fatalf("ParseKind = %q, %v", k, err)
	}
	if k, _ := ParseKind(""); k != KindTaus88 {
		t.Fatalf("empty kind should default to taus88, got %q", k)
	}
	if _, err := ParseKind("xorshift"); !errors.Is(err, errs.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := NewGenerator("nope", 1); !errors.Is(err, errs.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestUnitTransformsBounds(t *testing.T) {
	edges := []uint32{0, 1, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFE, 0xFFFFFFFF}
	for _, u := range edges {
		if x := UnitOpen(u); x <= 0 || x >= 1 {
			t.Fatalf("UnitOpen(%#x)=%v", u, x)
		}
		if x := UnitClosed(u); x < 0 || x > 1 {
			t.Fatalf("UnitClosed(%#x)=%v", u, x)
		}
		if x := UnitClosedOpen(u); x < 0 || x >= 1 {
			t.Fatalf("UnitClosedOpen(%#x)=%v", u, x)
		}
		if x := UnitOpenClosed(u); x <= 0 || x > 1 {
			t.Fatalf("UnitOpenClosed(%#x)=%v", u, x)
		}
		if x := UnitSigned(u); x < -1 || x >= 1 {
			t.Fatalf("UnitSigned(%#x)=%v", u, x)
		}
	}
	if UnitClosed(0) != 0 || UnitClosed(0xFFFFFFFF) != 1 {
		t.Fatalf("UnitClosed endpoints not reachable")
	}
	if UnitOpenClosed(0xFFFFFFFF) != 1 {
		t.Fatalf("UnitOpenClosed upper endpoint not reachable")
	}
	if UnitSigned(0x80000000) != -1 {
		t.Fatalf("UnitSigned lower endpoint = %v", UnitSigned(0x80000000))
	}
	if UnitToExponential(1) != 0 {
		t.Fatalf("exp(1) should be 0")
	}
	if got := UnitToLaplace(0.5); got != 0 {
		t.Fatalf("laplace(0.5) = %v", got)
	}
	if UnitToLaplace(0.25) != -UnitToLaplace(0.75) {
		t.Fatalf("laplace transform not symmetric")
	}
}

func TestCoreDeterminism(t *testing.T) {
	c1 := New(NewTaus88(7))
	c2 := New(NewTaus88(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestCoreUintNRange(t *testing.T) {
	c := New(NewTaus88(17))
	counts := make([]int, 6)
	for i := 0; i < 60000; i++ {
		v := c.UintN(6)
		if v >= 6 {
			t.Fatalf("UintN out of range: %d", v)
		}
		counts[v]++
	}
	for i, n := range counts {
		if n < 9000 || n > 11000 {
			t.Fatalf("bucket %d count %d looks biased", i, n)
		}
	}
	if c.UintN(0) != 0 || c.IntN(0) != -1 || c.IntN(-3) != -1 {
		t.Fatalf("degenerate bounds not handled")
	}
	if v := c.UintN(8); v >= 8 {
		t.Fatalf("power-of-two bound out of range: %d", v)
	}
}

func TestCorePickAndShuffle(t *testing.T) {
	c := New(NewTaus88(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}

	src := []int{1, 2, 3, 4}
	c.ShuffleInts(src)
	if len(src) != 4 {
		t.Fatalf("unexpected length after shuffle")
	}
	want := []int{1, 2, 3, 4}
	got := slices.Clone(src)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		t.Fatalf("shuffle changed elements: %v", src)
	}
}

func TestExponentialDeterministic(t *testing.T) {
	c1 := New(NewTaus88(11))
	c2 := New(NewTaus88(11))
	v1 := c1.Exponential()
	v2 := c2.Exponential()
	if v1 != v2 {
		t.Fatalf("expected deterministic Exponential")
	}
	if v1 < 0 || math.IsNaN(v1) || math.IsInf(v1, 0) {
		t.Fatalf("unexpected Exponential value: %v", v1)
	}
}

// 每種產生器的高 4 位在 16 格上做卡方檢定，df=15 時 p=0.001 的臨界值約 37.7。
func TestGeneratorsUniformity(t *testing.T) {
	const n = 64000
	for _, k := range Kinds() {
		if k == KindGray { // 相鄰輸出高度相關，不適用
			continue
		}
		g, _ := NewGenerator(k, 2024)
		var bins [16]float64
		for i := 0; i < n; i++ {
			bins[g.Uint32()>>28]++
		}
		exp := float64(n) / 16
		chi := 0.0
		for _, o := range bins {
			chi += (o - exp) * (o - exp) / exp
		}
		if chi > 37.7 {
			t.Fatalf("%s: chi-square %.2f too large", k, chi)
		}
	}
}

func TestCoreFillFallsBack(t *testing.T) {
	a := New(NewMT19937(8))
	b := NewMT19937(8)
	buf := make([]uint32, 10)
	a.Fill(buf)
	for i, v := range buf {
		if w := b.Uint32(); v != w {
			t.Fatalf("fill[%d]=%d want %d", i, v, w)
		}
	}
}

func TestSharedConcurrent(t *testing.T) {
	s := NewShared(NewTaus88(3))
	ref := NewTaus88(3)
	want := map[uint32]int{}
	for i := 0; i < 4000; i++ {
		want[ref.Uint32()]++
	}
	var mu sync.Mutex
	got := map[uint32]int{}
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint32, 0, 1000)
			for i := 0; i < 500; i++ {
				local = append(local, s.Uint32())
			}
			buf := make([]uint32, 500)
			s.Fill(buf)
			local = append(local, buf...)
			mu.Lock()
			for _, v := range local {
				got[v]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(got) != len(want) {
		t.Fatalf("shared stream lost or duplicated values")
	}
	for v, n := range want {
		if got[v] != n {
			t.Fatalf("value %#x count %d want %d", v, got[v], n)
		}
	}
	s.With(func(c *Core) {
		if x := c.Open(); x <= 0 || x >= 1 {
			t.Fatalf("Open() = %v", x)
		}
	})
}

func TestDeriveSaltNonZero(t *testing.T) {
	seen := map[uint32]bool{}
	for i := uint64(0); i < 1000; i++ {
		s := DeriveSalt(7, i)
		if s == 0 {
			t.Fatalf("derived salt is zero at %d", i)
		}
		seen[s] = true
	}
	if len(seen) < 990 {
		t.Fatalf("derived salts collide too often: %d unique", len(seen))
	}
	if DeriveSalt(7, 3) != DeriveSalt(7, 3) {
		t.Fatalf("DeriveSalt not deterministic")
	}
}

func BenchmarkGenerators(b *testing.B) {
	for _, k := range Kinds() {
		g, err := NewGenerator(k, 1)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(string(k), func(b *testing.B) {
			var sink uint32
			for i := 0; i < b.N; i++ {
				sink ^= g.Uint32()
			}
			_ = sink
		})
	}
}

func BenchmarkTaus88Fill(b *testing.B) {
	g := NewTaus88(1)
	buf := make([]uint32, 4096)
	b.SetBytes(int64(len(buf) * 4))
	for i := 0; i < b.N; i++ {
		g.Fill(buf)
	}
}
