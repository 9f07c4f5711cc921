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

// Gray 是 Gray-code 式的位元翻轉產生器：每次只翻轉一個位元，
// 翻轉位置由內部的 Taus88 決定。相鄰輸出的漢明距離恆為 1，
// 在音訊上聽起來是帶有低頻成分的 "gray noise"。
type Gray struct {
	state uint32
	inner *Taus88
}

// NewGray 以 salt 建立產生器；起始狀態取自內部產生器的第一個輸出。
func NewGray(salt uint32) *Gray {
	g := &Gray{inner: NewTaus88(salt)}
	g.state = g.inner.Uint32()
	return g
}

// Uint32 翻轉一個位元並回傳新狀態。
func (g *Gray) Uint32() uint32 {
	g.state ^= 1 << (g.inner.Uint32() >> 27)
	return g.state
}

// Snapshot state + 內部 Taus88。
func (g *Gray) Snapshot() ([]byte, error) {
	inner, _ := g.inner.Snapshot()
	b := make([]byte, 0, 4+len(inner))
	b = AppendUint32(b, g.state)
	return append(b, inner...), nil
}

func (g *Gray) Restore(data []byte) error {
	w, err := readWords(data, 4, "gray")
	if err != nil {
		return err
	}
	if err := g.inner.Restore(data[4:]); err != nil {
		return err
	}
	g.state = w[0]
	return nil
}
