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
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/zintix-labs/litterlab/errs"
)

// salt == 0 時的熵來源：牆鐘 + 行程啟動後經過時間 + 呼叫計數，再與狀態本身的位址混合。
// 即使兩個實例在同一個 tick 內以 0 播種，位址與計數也保證它們分岔。

var (
	procStart   = time.Now()
	seedCounter atomic.Uint64
)

// entropy64 產生一個 64-bit 的種子材料；owner 為被初始化狀態的位址。
func entropy64(owner unsafe.Pointer) uint64 {
	x := uint64(time.Now().UnixNano())
	x ^= uint64(time.Since(procStart)) << 17
	x ^= seedCounter.Add(1) * 0x9e3779b97f4a7c15
	x ^= uint64(uintptr(owner))
	return splitmix64(x)
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// DeriveSalt 由基礎 salt 與序號派生子 salt，供多 worker 各自持有產生器。
// 結果永遠非 0（0 代表「使用熵來源」）。
func DeriveSalt(base uint32, seq uint64) uint32 {
	x := splitmix64(uint64(base)<<32 ^ seq)
	s := uint32(x) ^ uint32(x>>32)
	if s == 0 {
		s = 0x6a09e667
	}
	return s
}

// AppendUint32 以 big-endian 寫入 v。
func AppendUint32(b []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(b, v)
}

// AppendUint64 以 big-endian 寫入 v。
func AppendUint64(b []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(b, v)
}

// readWords 將快照切成 n 個 big-endian uint32；長度不符回傳錯誤。
func readWords(data []byte, n int, who string) ([]uint32, error) {
	if len(data) != 4*n {
		return nil, errs.Invalidf("%s: snapshot length %d, want %d", who, len(data), 4*n)
	}
	w := make([]uint32, n)
	for i := range w {
		w[i] = binary.BigEndian.Uint32(data[4*i:])
	}
	return w, nil
}
