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

import "sync"

// Shared 以互斥鎖包裝一個 Source，作為「未指定種子時共用」的單一指定產生器。
//
// 這是唯一允許跨 goroutine 共用的產生器形式；一般情況下每個 voice / 物件
// 應該持有自己的產生器，完全不需要鎖。
type Shared struct {
	mu  sync.Mutex
	src Source
}

// NewShared 包裝 src；src 為 nil 時以熵來源建立 Taus88。
func NewShared(src Source) *Shared {
	if src == nil {
		src = NewTaus88(0)
	}
	return &Shared{src: src}
}

// Uint32 在鎖內推進一次。
func (s *Shared) Uint32() uint32 {
	s.mu.Lock()
	v := s.src.Uint32()
	s.mu.Unlock()
	return v
}

// Fill 在單次持鎖內批次填滿 dst。
func (s *Shared) Fill(dst []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.src.(Filler); ok {
		f.Fill(dst)
		return
	}
	for i := range dst {
		dst[i] = s.src.Uint32()
	}
}

// With 在持鎖期間以獨占的 Core 執行 fn，適合一次抽多個變量（例如 rejection 迴圈）。
func (s *Shared) With(fn func(c *Core)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(New(s.src))
}
