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

// PCG 演算法由 Melissa O'Neill 設計。

package core

import (
	r2 "math/rand/v2"
	"unsafe"

	"github.com/zintix-labs/litterlab/errs"
)

// PCG64 亂數產生器（128-bit 狀態），輸出取 64-bit 結果的高 32 位。
// 高位品質最好，適合作為 Taus88 的替代來源。
type PCG64 struct {
	rng *r2.PCG
}

// NewPCG64 以 salt 建立產生器；salt == 0 由熵來源派生。
func NewPCG64(salt uint32) *PCG64 {
	r := &PCG64{}
	x := uint64(salt) ^ 0x9e3779b97f4a7c15
	if salt == 0 {
		x = entropy64(unsafe.Pointer(r))
	}
	hi := splitmix64(x)
	lo := splitmix64(x ^ 0xDA942042E4DD58B5)
	r.rng = r2.NewPCG(hi, lo)
	return r
}

// Uint32 回傳 64-bit 輸出的高 32 位。
func (r *PCG64) Uint32() uint32 {
	return uint32(r.rng.Uint64() >> 32)
}

// Snapshot 取得當下內部狀態
func (r *PCG64) Snapshot() ([]byte, error) {
	return r.rng.MarshalBinary()
}

// Restore 恢復內部狀態
func (r *PCG64) Restore(data []byte) error {
	if err := r.rng.UnmarshalBinary(data); err != nil {
		return errs.Wrap(errs.ErrInvalidParam, "pcg64: "+err.Error())
	}
	return nil
}
