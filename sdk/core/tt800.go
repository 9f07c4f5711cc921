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
	"math/bits"
	"unsafe"

	"github.com/zintix-labs/litterlab/errs"
)

// TT800 為 Matsumoto & Kurita 的 twisted GFSR（25 個字、週期 2^800 - 1）。
// 字陣列用完時整批重算，之後逐字調溫輸出。
type TT800 struct {
	x [tt800N]uint32
	k int
}

const (
	tt800N = 25
	tt800M = 7

	tt800Mag   uint32 = 0x8ebfd028
	tt800MaskB uint32 = 0x2b5b2500
	tt800MaskC uint32 = 0xdb8b0000
)

var tt800Default = [tt800N]uint32{
	0x95f24dab, 0x0b685215, 0xe76ccae7, 0xaf3ec239, 0x715fad23,
	0x24a590ad, 0x69e4b5ef, 0xbf456141, 0x96bc1b7b, 0xa7bdf825,
	0xc1de75b7, 0x8858a9c9, 0x2da87693, 0xb657f9dd, 0xffdc8a9f,
	0x8121da71, 0x8b823ecb, 0x885d05f5, 0x4e20cd47, 0x5a9ad5d9,
	0x512c0c03, 0xea857ccd, 0x4cc1d30f, 0x8891a8a1, 0xa6b7aadd,
}

// NewTT800 以 salt 建立產生器；salt == 0 由熵來源派生。
func NewTT800(salt uint32) *TT800 {
	t := &TT800{}
	t.Seed(salt)
	return t
}

// NewTT800Canonical 使用原始論文的預設字陣列（不加鹽），序列與參考實作一致。
func NewTT800Canonical() *TT800 {
	return &TT800{x: tt800Default, k: tt800N}
}

// Seed 以 salt 旋轉後與預設字陣列逐字 XOR。
func (t *TT800) Seed(salt uint32) {
	if salt == 0 {
		x := entropy64(unsafe.Pointer(t))
		salt = uint32(x) ^ uint32(x>>32)
	}
	nonzero := false
	for i := range t.x {
		t.x[i] = tt800Default[i] ^ bits.RotateLeft32(salt, i)
		if t.x[i] != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.x = tt800Default
	}
	t.k = tt800N
}

// Uint32 回傳下一個調溫後的字。
func (t *TT800) Uint32() uint32 {
	if t.k >= tt800N {
		t.regen()
	}
	y := t.x[t.k]
	y ^= (y << 7) & tt800MaskB
	y ^= (y << 15) & tt800MaskC
	y ^= y >> 16
	t.k++
	return y
}

func (t *TT800) regen() {
	var kk int
	for kk = 0; kk < tt800N-tt800M; kk++ {
		t.x[kk] = t.x[kk+tt800M] ^ (t.x[kk] >> 1) ^ (tt800Mag & -(t.x[kk] & 1))
	}
	for ; kk < tt800N; kk++ {
		t.x[kk] = t.x[kk+tt800M-tt800N] ^ (t.x[kk] >> 1) ^ (tt800Mag & -(t.x[kk] & 1))
	}
	t.k = 0
}

// Snapshot 25 個字 + 游標。
func (t *TT800) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 4*(tt800N+1))
	for _, w := range t.x {
		b = AppendUint32(b, w)
	}
	b = AppendUint32(b, uint32(t.k))
	return b, nil
}

func (t *TT800) Restore(data []byte) error {
	w, err := readWords(data, tt800N+1, "tt800")
	if err != nil {
		return err
	}
	if w[tt800N] > tt800N {
		return errs.Invalidf("tt800: cursor %d out of range", w[tt800N])
	}
	copy(t.x[:], w[:tt800N])
	t.k = int(w[tt800N])
	return nil
}
