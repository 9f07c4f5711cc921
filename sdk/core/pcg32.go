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
	"encoding/binary"
	"math/bits"
	"unsafe"

	"github.com/zintix-labs/litterlab/errs"
)

const pcg32Multiplier = 6364136223846793005

// PCG32 為 64-bit 狀態、32-bit 輸出的 PCG (XSH RR) 產生器。
// 原生輸出就是 uint32，可以不經轉換直接替換 Taus88。
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32 以 salt 建立產生器；salt == 0 由熵來源派生。
func NewPCG32(salt uint32) *PCG32 {
	r := &PCG32{}
	seed := uint64(salt)
	if salt == 0 {
		seed = entropy64(unsafe.Pointer(r))
	}
	r.initWithSeed(seed, 1)
	return r
}

// Uint32 回傳非負整數uint32亂數。
func (r *PCG32) Uint32() uint32 {
	oldstate := r.state
	r.state = oldstate*pcg32Multiplier + r.inc
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}

// Snapshot 取得當下內部狀態(state, inc)
func (r *PCG32) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 16)
	b = AppendUint64(b, r.state)
	b = AppendUint64(b, r.inc)
	return b, nil
}

// Restore 還原內部狀態；inc 必須是奇數。
func (r *PCG32) Restore(data []byte) error {
	if len(data) != 16 {
		return errs.Invalidf("pcg32: snapshot length %d, want 16", len(data))
	}
	inc := binary.BigEndian.Uint64(data[8:])
	if inc&1 == 0 {
		return errs.Invalidf("pcg32: stream increment must be odd")
	}
	r.state = binary.BigEndian.Uint64(data)
	r.inc = inc
	return nil
}

// PCG 建議的初始化流程：先用 stream 初始化一次，再加 seed，最後再 step。
func (r *PCG32) initWithSeed(seed uint64, seq uint64) {
	r.inc = (seq << 1) | 1
	r.state = 0
	r.Uint32()
	r.state += seed
	r.Uint32()
}
