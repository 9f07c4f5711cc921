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

import "math"

// 本檔案 (unit.go) 定義 uint32 → 單位區間的純函數轉換。
//
// 命名對照（小寫 = 不含端點，大寫 = 含端點）：
//   - UnitOpen       (0,1)  zo
//   - UnitClosed     [0,1]  ZO
//   - UnitClosedOpen [0,1)  Zo
//   - UnitOpenClosed (0,1]  zO
//
// 全部結果都是 float64 可精確表示的值，不會出現 NaN / Inf。

const (
	unitScale       = 1.0 / 4294967296.0 // 2^-32
	unitClosedScale = 1.0 / 4294967295.0 // 1/(2^32-1)
	signedScale     = 1.0 / 2147483648.0 // 2^-31
)

// UnitOpen 將 u 映射到 (0,1)：(u + 0.5) / 2^32。
// 最小值 2^-33，最大值 1 - 2^-33，皆可精確表示。
func UnitOpen(u uint32) float64 {
	return (float64(u) + 0.5) * unitScale
}

// UnitClosed 將 u 映射到 [0,1]：u / (2^32 - 1)。
func UnitClosed(u uint32) float64 {
	return float64(u) * unitClosedScale
}

// UnitClosedOpen 將 u 映射到 [0,1)：u / 2^32。
func UnitClosedOpen(u uint32) float64 {
	return float64(u) * unitScale
}

// UnitOpenClosed 將 u 映射到 (0,1]：(u + 1) / 2^32。
func UnitOpenClosed(u uint32) float64 {
	return (float64(u) + 1.0) * unitScale
}

// UnitSigned 將 u 映射到 [-1,1)：以 int32 解讀後除以 2^31。
func UnitSigned(u uint32) float64 {
	return float64(int32(u)) * signedScale
}

// UnitToExponential 回傳 -ln(x)。
// 呼叫端必須保證 0 < x <= 1（請使用 UnitOpenClosed / UnitOpen）。
func UnitToExponential(x float64) float64 {
	return -math.Log(x)
}

// UnitToLaplace 將 (0,1) 的 x 轉換成標準 Laplace 變量，以 0.5 為對稱中心。
func UnitToLaplace(x float64) float64 {
	if x <= 0.5 {
		return math.Log(x + x)
	}
	return -math.Log(2.0 - x - x)
}
