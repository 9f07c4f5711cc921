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

package noise

import "math"

const fixedScale = 2147483648.0 // 2^31

// Mask NN 位元深度遮罩：把 [-1,1) 的樣本量化成 2^(32-nn) 階。
// 零值不做任何處理。
type Mask struct {
	nn     uint8
	bits   uint32
	offset uint32
}

// NewMask 建立遮掉低 nn 位元的遮罩；nn 夾到 [0,31]。
func NewMask(nn int) Mask {
	nn = min(max(nn, 0), 31)
	if nn == 0 {
		return Mask{}
	}
	return Mask{
		nn:     uint8(nn),
		bits:   ^uint32(0) << nn,
		offset: 1 << (nn - 1), // 落在量化階的中央
	}
}

func (m Mask) NN() int { return int(m.nn) }

// Apply 對已完成的樣本值做量化；超出 [-1,1) 的值先夾住。
func (m Mask) Apply(x float32) float32 {
	if m.nn == 0 {
		return x
	}
	f := float64(x)
	switch {
	case math.IsNaN(f):
		return x
	case f >= 1:
		f = 1 - 1/fixedScale
	case f < -1:
		f = -1
	}
	u := uint32(int32(f * fixedScale))
	u = u&m.bits + m.offset
	return float32(float64(int32(u)) / fixedScale)
}
