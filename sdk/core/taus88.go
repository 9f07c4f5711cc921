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

// Taus88 為 L'Ecuyer 的三分量 Tausworthe 產生器（週期約 2^88）。
//
// 不變量：s1 >= 2, s2 >= 8, s3 >= 16。低於門檻的字會折回預設常數，
// 因此任何可達狀態都不會退化成全零或卡死的序列。
type Taus88 struct {
	s1, s2, s3 uint32
}

const (
	taus88Seed1 uint32 = 0x9E3779B9
	taus88Seed2 uint32 = 0x7F4A7C15
	taus88Seed3 uint32 = 0xF39CC060

	taus88Min1 uint32 = 2
	taus88Min2 uint32 = 8
	taus88Min3 uint32 = 16
)

// NewTaus88 以 salt 建立產生器。
//
//   - salt == 0：由熵來源（時間、經過時間、計數）與此狀態的位址派生。
//   - salt != 0：三個預設常數分別與 salt（旋轉 0 / 11 / 23 位）做 XOR，結果可重現。
func NewTaus88(salt uint32) *Taus88 {
	t := &Taus88{}
	t.Seed(salt)
	return t
}

// NewTaus88FromWords 直接指定三個狀態字（會套用最小值不變量）。
func NewTaus88FromWords(s1, s2, s3 uint32) *Taus88 {
	t := &Taus88{s1: s1, s2: s2, s3: s3}
	t.fold()
	return t
}

// Seed 依 salt 重新初始化狀態。
func (t *Taus88) Seed(salt uint32) {
	if salt == 0 {
		x := entropy64(unsafe.Pointer(t))
		t.s1 = taus88Seed1 ^ uint32(x)
		t.s2 = taus88Seed2 ^ uint32(x>>32)
		t.s3 = taus88Seed3 ^ uint32(splitmix64(x))
	} else {
		t.s1 = taus88Seed1 ^ salt
		t.s2 = taus88Seed2 ^ bits.RotateLeft32(salt, 11)
		t.s3 = taus88Seed3 ^ bits.RotateLeft32(salt, 23)
	}
	t.fold()
}

func (t *Taus88) fold() {
	if t.s1 < taus88Min1 {
		t.s1 = taus88Seed1
	}
	if t.s2 < taus88Min2 {
		t.s2 = taus88Seed2
	}
	if t.s3 < taus88Min3 {
		t.s3 = taus88Seed3
	}
}

// Uint32 推進一步並回傳 32-bit 亂數。
func (t *Taus88) Uint32() uint32 {
	b := ((t.s1 << 13) ^ t.s1) >> 19
	t.s1 = ((t.s1 & 0xFFFFFFFE) << 12) ^ b
	b = ((t.s2 << 2) ^ t.s2) >> 25
	t.s2 = ((t.s2 & 0xFFFFFFF8) << 4) ^ b
	b = ((t.s3 << 3) ^ t.s3) >> 11
	t.s3 = ((t.s3 & 0xFFFFFFF0) << 17) ^ b
	return t.s1 ^ t.s2 ^ t.s3
}

// Words 回傳目前三個狀態字（除錯/測試用）。
func (t *Taus88) Words() (uint32, uint32, uint32) {
	return t.s1, t.s2, t.s3
}

// -----------------------------------------------------------------------------
// 批次路徑：Load → Next... → Store
// -----------------------------------------------------------------------------

// Taus88Regs 是 Taus88 狀態的區域暫存器副本。
// 在熱迴圈內以值操作，結束時一次 Store 回去，省去每個樣本的記憶體往返。
type Taus88Regs struct {
	s1, s2, s3 uint32
}

// Load 取出暫存器副本。
func (t *Taus88) Load() Taus88Regs {
	return Taus88Regs{t.s1, t.s2, t.s3}
}

// Store 把暫存器寫回產生器。
func (t *Taus88) Store(r Taus88Regs) {
	t.s1, t.s2, t.s3 = r.s1, r.s2, r.s3
}

// Next 與 Taus88.Uint32 相同的推進步驟，作用於暫存器。
func (r *Taus88Regs) Next() uint32 {
	b := ((r.s1 << 13) ^ r.s1) >> 19
	r.s1 = ((r.s1 & 0xFFFFFFFE) << 12) ^ b
	b = ((r.s2 << 2) ^ r.s2) >> 25
	r.s2 = ((r.s2 & 0xFFFFFFF8) << 4) ^ b
	b = ((r.s3 << 3) ^ r.s3) >> 11
	r.s3 = ((r.s3 & 0xFFFFFFF0) << 17) ^ b
	return r.s1 ^ r.s2 ^ r.s3
}

// Fill 以批次路徑填滿 dst。
func (t *Taus88) Fill(dst []uint32) {
	r := t.Load()
	for i := range dst {
		dst[i] = r.Next()
	}
	t.Store(r)
}

// Snapshot 取得目前狀態（12 bytes）。
func (t *Taus88) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 12)
	b = AppendUint32(b, t.s1)
	b = AppendUint32(b, t.s2)
	b = AppendUint32(b, t.s3)
	return b, nil
}

// Restore 還原狀態；違反最小值不變量的快照會被拒絕。
func (t *Taus88) Restore(data []byte) error {
	w, err := readWords(data, 3, "taus88")
	if err != nil {
		return err
	}
	if w[0] < taus88Min1 || w[1] < taus88Min2 || w[2] < taus88Min3 {
		return errs.Invalidf("taus88: snapshot violates minimum seed values")
	}
	t.s1, t.s2, t.s3 = w[0], w[1], w[2]
	return nil
}
