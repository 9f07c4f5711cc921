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

// LCG 為簡單線性同餘產生器：seed' = seed*Mul + Add [mod Mod]。
//
// Mod == 0 代表隱含的 2^32 模數：Go 的 uint32 乘加本身就是明確定義的環繞運算。
// Mod != 0 時以 uint64 計算後取模，不會溢位。
type LCG struct {
	seed uint32
	mul  uint32
	add  uint32
	mod  uint32
}

// Numerical Recipes 的 ranqd1 參數。
const (
	LCGDefaultMul uint32 = 1664525
	LCGDefaultAdd uint32 = 1013904223
)

// NewLCG 以預設參數（ranqd1，mod 2^32）建立產生器；salt == 0 由熵來源派生。
func NewLCG(salt uint32) *LCG {
	l := &LCG{mul: LCGDefaultMul, add: LCGDefaultAdd}
	if salt == 0 {
		x := entropy64(unsafe.Pointer(l))
		salt = uint32(x) ^ uint32(x>>32)
	}
	l.seed = salt
	return l
}

// NewLCGWith 以自訂參數建立產生器。
// mod != 0 時 seed 先化約到 [0,mod)；mul == 0 視為無效（序列會卡住）。
func NewLCGWith(seed, mul, add, mod uint32) (*LCG, error) {
	if mul == 0 {
		return nil, errs.Invalidf("lcg: multiplier must be non-zero")
	}
	l := &LCG{seed: seed, mul: mul, add: add, mod: mod}
	if mod != 0 {
		l.seed %= mod
	}
	return l, nil
}

// Params 回傳 (mul, add, mod)。
func (l *LCG) Params() (mul, add, mod uint32) {
	return l.mul, l.add, l.mod
}

// Uint32 推進並回傳新的 seed。
func (l *LCG) Uint32() uint32 {
	if l.mod == 0 {
		l.seed = l.seed*l.mul + l.add
	} else {
		l.seed = uint32((uint64(l.seed)*uint64(l.mul) + uint64(l.add)) % uint64(l.mod))
	}
	return l.seed
}

// Snapshot seed / mul / add / mod。
func (l *LCG) Snapshot() ([]byte, error) {
	b := make([]byte, 0, 16)
	b = AppendUint32(b, l.seed)
	b = AppendUint32(b, l.mul)
	b = AppendUint32(b, l.add)
	b = AppendUint32(b, l.mod)
	return b, nil
}

func (l *LCG) Restore(data []byte) error {
	w, err := readWords(data, 4, "lcg")
	if err != nil {
		return err
	}
	if w[1] == 0 {
		return errs.Invalidf("lcg: multiplier must be non-zero")
	}
	l.seed, l.mul, l.add, l.mod = w[0], w[1], w[2], w[3]
	return nil
}
