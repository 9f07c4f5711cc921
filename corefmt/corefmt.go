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

// Package corefmt 產生器快照的對外編碼：blob frame（uvarint 長度前綴）與 base64url。
//
// 快照格式：frame(kind) + frame(state)，讓快照自帶產生器種類，還原時可以先比對。
package corefmt

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/zintix-labs/litterlab/errs"
)

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64url failed")
	}
	return b, err
}

// AppendBlobFrame 以 uvarint 長度前綴把 payload 接到 dst 後面。
func AppendBlobFrame(dst []byte, payload []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(payload)))
	return append(dst, payload...)
}

// DecodeBlobFrame 讀出一個 frame，回傳 payload（複本）與剩餘位元組。
func DecodeBlobFrame(frame []byte) ([]byte, []byte, error) {
	n, size := binary.Uvarint(frame)
	if size <= 0 {
		return nil, nil, errs.NewWarn("decode blob frame failed: invalid varint length")
	}
	if uint64(len(frame)-size) < n {
		return nil, nil, errs.NewWarn("decode blob frame failed: truncated payload")
	}
	end := size + int(n)
	// 回傳複本，避免持有整個 frame 的底層陣列
	out := make([]byte, n)
	copy(out, frame[size:end])
	return out, frame[end:], nil
}

// EncodeSnapshot 將產生器種類與狀態編成一個快照。
func EncodeSnapshot(kind string, state []byte) []byte {
	out := make([]byte, 0, len(kind)+len(state)+2*binary.MaxVarintLen64)
	out = AppendBlobFrame(out, []byte(kind))
	return AppendBlobFrame(out, state)
}

// DecodeSnapshot 拆解 EncodeSnapshot 的結果；多餘位元組視為格式錯誤。
func DecodeSnapshot(b []byte) (kind string, state []byte, err error) {
	k, rest, err := DecodeBlobFrame(b)
	if err != nil {
		return "", nil, err
	}
	state, rest, err = DecodeBlobFrame(rest)
	if err != nil {
		return "", nil, err
	}
	if len(rest) != 0 {
		return "", nil, errs.NewWarn("decode snapshot failed: trailing bytes")
	}
	return string(k), state, nil
}

// EncodeSnapshotB64U EncodeSnapshot 後再轉 base64url。
func EncodeSnapshotB64U(kind string, state []byte) string {
	return EncodeBase64URL(EncodeSnapshot(kind, state))
}

// DecodeSnapshotB64U 為 EncodeSnapshotB64U 的反向。
func DecodeSnapshotB64U(s string) (kind string, state []byte, err error) {
	b, err := DecodeBase64URL(s)
	if err != nil {
		return "", nil, err
	}
	return DecodeSnapshot(b)
}
