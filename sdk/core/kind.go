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
	"strings"

	"github.com/zintix-labs/litterlab/errs"
)

// Kind 為產生器種類的字串標籤，用於設定檔與 HTTP 介面。
type Kind string

const (
	KindTaus88  Kind = "taus88"
	KindTT800   Kind = "tt800"
	KindMama    Kind = "mama"
	KindMT19937 Kind = "mt19937"
	KindLCG     Kind = "lcg"
	KindGray    Kind = "gray"
	KindPCG32   Kind = "pcg32"
	KindPCG64   Kind = "pcg64"
)

// Kinds 回傳所有支援的產生器種類（固定順序）。
func Kinds() []Kind {
	return []Kind{KindTaus88, KindTT800, KindMama, KindMT19937, KindLCG, KindGray, KindPCG32, KindPCG64}
}

// ParseKind 解析種類字串（不分大小寫）；空字串視為 taus88。
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindTaus88, nil
	}
	for _, v := range Kinds() {
		if v == k {
			return k, nil
		}
	}
	return "", errs.WrapWithExtra(errs.ErrUnknownKind, "generator kind", s)
}

// NewGenerator 依種類與 salt 建立產生器。
func NewGenerator(k Kind, salt uint32) (Generator, error) {
	switch k {
	case KindTaus88, "":
		return NewTaus88(salt), nil
	case KindTT800:
		return NewTT800(salt), nil
	case KindMama:
		return NewMama(salt), nil
	case KindMT19937:
		return NewMT19937(salt), nil
	case KindLCG:
		return NewLCG(salt), nil
	case KindGray:
		return NewGray(salt), nil
	case KindPCG32:
		return NewPCG32(salt), nil
	case KindPCG64:
		return NewPCG64(salt), nil
	default:
		return nil, errs.WrapWithExtra(errs.ErrUnknownKind, "generator kind", string(k))
	}
}
