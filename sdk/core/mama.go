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

// Mama 為 Marsaglia 的 "Mother of All" 產生器：兩組各 10 個 16-bit 字的
// 延遲加權和（multiply-with-carry），高 16 位取自第一組、低 16 位取自第二組。
//
// [0] 存進位、[1] 存最新的低 16 位、[2..9] 為延遲項。
// 權重常數必須與下表完全一致（測試向量依賴它）。累加一律在 uint32 中完成，
// 不可退回 16-bit 截斷運算：那正是早期版本序列收斂的原因。
type Mama struct {
	m1 [10]uint32
	m2 [10]uint32
}

var (
	mamaWeights1 = [8]uint32{1941, 1860, 1812, 1776, 1492, 1215, 1066, 12013}
	mamaWeights2 = [8]uint32{1111, 2222, 3333, 4444, 5555, 6666, 7777, 9272}
)

const (
	mamaMask16 uint32 = 0xFFFF
	mamaMask15 uint32 = 0x7FFF
	mamaMask31 uint32 = 0x7FFFFFFF
)

// NewMama 以 salt 建立產生器；salt == 0 由熵來源派生。
func NewMama(salt uint32) *Mama {
	m := &Mama{}
	m.Seed(salt)
	return m
}

// Seed 以 30903 的 MWC 展開 18 個 16-bit 字，各組填 [0..8]，[9] 留 0。
func (m *Mama) Seed(salt uint32) {
	if salt == 0 {
		x := entropy64(unsafe.Pointer(m))
		salt = uint32(x) ^ uint32(x>>32)
	}
	sNum := salt & mamaMask16
	num := salt & mamaMask31
	m.m1, m.m2 = [10]uint32{}, [10]uint32{}
	for i := 0; i < 18; i++ {
		num = 30903*sNum + (num >> 16)
		sNum = num & mamaMask16
		if i < 9 {
			m.m1[i] = sNum
		} else {
			m.m2[i-9] = sNum
		}
	}
	m.m1[0] &= mamaMask15
	m.m2[0] &= mamaMask15
}

// Uint32 推進兩組狀態並組合輸出。
func (m *Mama) Uint32() uint32 {
	copy(m.m1[2:], m.m1[1:9])
	copy(m.m2[2:], m.m2[1:9])

	n1 := m.m1[0]
	n2 := m.m2[0]
	for i := 0; i < 8; i++ {
		n1 += mamaWeights1[i] * m.m1[i+2]
		n2 += mamaWeights2[i] * m.m2[i+2]
	}

	m.m1[0] = n1 >> 16
	m.m2[0] = n2 >> 16
	m.m1[1] = n1 & mamaMask16
	m.m2[1] = n2 & mamaMask16

	return m.m1[1]<<16 | m.m2[1]
}

// Snapshot 20 個字（每字只用低 16 位）。
func (m *Mama) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 80)
	for _, w := range m.m1 {
		b = AppendUint32(b, w)
	}
	for _, w := range m.m2 {
		b = AppendUint32(b, w)
	}
	return b, nil
}

func (m *Mama) Restore(data []byte) error {
	w, err := readWords(data, 20, "mama")
	if err != nil {
		return err
	}
	for _, v := range w {
		if v > mamaMask16 {
			return errs.Invalidf("mama: snapshot word %#x exceeds 16 bits", v)
		}
	}
	copy(m.m1[:], w[:10])
	copy(m.m2[:], w[10:])
	return nil
}
