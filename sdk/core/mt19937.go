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
	"unsafe"

	"github.com/zintix-labs/litterlab/errs"
)

// MT19937 為標準 32-bit Mersenne Twister（624 字狀態、397 斷點、標準調溫）。
type MT19937 struct {
	mt  [mtN]uint32
	mti int
}

const (
	mtN = 624
	mtM = 397

	mtMatrixA   uint32 = 0x9908b0df
	mtUpperMask uint32 = 0x80000000
	mtLowerMask uint32 = 0x7fffffff
	mtTemperB   uint32 = 0x9d2c5680
	mtTemperC   uint32 = 0xefc60000
)

// NewMT19937 以 salt 建立產生器。salt != 0 時等同參考實作的 init_genrand(salt)；
// salt == 0 由熵來源派生。
func NewMT19937(salt uint32) *MT19937 {
	m := &MT19937{}
	m.Seed(salt)
	return m
}

// Seed 以 Knuth 乘數 1812433253 展開狀態。
func (m *MT19937) Seed(salt uint32) {
	if salt == 0 {
		x := entropy64(unsafe.Pointer(m))
		salt = uint32(x) ^ uint32(x>>32)
	}
	m.mt[0] = salt
	for i := 1; i < mtN; i++ {
		m.mt[i] = 1812433253*(m.mt[i-1]^(m.mt[i-1]>>30)) + uint32(i)
	}
	m.mti = mtN
}

// Uint32 回傳下一個調溫後的字。
func (m *MT19937) Uint32() uint32 {
	if m.mti >= mtN {
		m.twist()
	}
	y := m.mt[m.mti]
	m.mti++

	y ^= y >> 11
	y ^= (y << 7) & mtTemperB
	y ^= (y << 15) & mtTemperC
	y ^= y >> 18
	return y
}

func (m *MT19937) twist() {
	var kk int
	var y uint32
	for kk = 0; kk < mtN-mtM; kk++ {
		y = (m.mt[kk] & mtUpperMask) | (m.mt[kk+1] & mtLowerMask)
		m.mt[kk] = m.mt[kk+mtM] ^ (y >> 1) ^ (mtMatrixA & -(y & 1))
	}
	for ; kk < mtN-1; kk++ {
		y = (m.mt[kk] & mtUpperMask) | (m.mt[kk+1] & mtLowerMask)
		m.mt[kk] = m.mt[kk+(mtM-mtN)] ^ (y >> 1) ^ (mtMatrixA & -(y & 1))
	}
	y = (m.mt[mtN-1] & mtUpperMask) | (m.mt[0] & mtLowerMask)
	m.mt[mtN-1] = m.mt[mtM-1] ^ (y >> 1) ^ (mtMatrixA & -(y & 1))
	m.mti = 0
}

// Snapshot 624 個字 + 游標。
func (m *MT19937) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 4*(mtN+1))
	for _, w := range m.mt {
		b = AppendUint32(b, w)
	}
	b = AppendUint32(b, uint32(m.mti))
	return b, nil
}

func (m *MT19937) Restore(data []byte) error {
	w, err := readWords(data, mtN+1, "mt19937")
	if err != nil {
		return err
	}
	if w[mtN] > mtN {
		return errs.Invalidf("mt19937: cursor %d out of range", w[mtN])
	}
	copy(m.mt[:], w[:mtN])
	m.mti = int(w[mtN])
	return nil
}
