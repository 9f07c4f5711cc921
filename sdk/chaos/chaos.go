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

// Package chaos 實作 Schuster/Procaccia 間歇混沌映射 x' = (x + x^2) mod 1。
package chaos

import (
	"math"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
)

// Floor 狀態下限；x 落到此值以下時先放大，避免映射停在 0 附近。
const Floor = 1.0 / 525288

// Map 單一 float64 狀態，完全由初始值決定。
type Map struct {
	x float64
}

// New 以 (0,1) 內的初始值建立映射。
func New(seed float64) (*Map, error) {
	m := &Map{}
	if err := m.Seed(seed); err != nil {
		return nil, err
	}
	return m, nil
}

// NewFrom 以產生器抽出的 (0,1) 值作為初始值。
func NewFrom(c *core.Core) *Map {
	return &Map{x: c.Open()}
}

// Seed 設定初始值；不在 (0,1) 內回傳錯誤且狀態不變。
func (m *Map) Seed(x float64) error {
	if !(x > 0 && x < 1) {
		return errs.Invalidf("chaos: seed must lie in (0,1), got %g", x)
	}
	m.x = x
	return nil
}

func (m *Map) State() float64 { return m.x }

// Next 推進一步並回傳新狀態。
func (m *Map) Next() float64 {
	x := m.x
	if x <= Floor {
		if x == 0 {
			x = Floor
		} else {
			x += x
		}
	}
	x += x * x
	m.x = x - math.Floor(x)
	return m.x
}

// Uint32 把狀態映射到 32-bit 整數，讓映射可直接當作 core.Source 使用。
func (m *Map) Uint32() uint32 {
	return uint32(m.Next() * 4294967296.0)
}

var _ core.Source = (*Map)(nil)
