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

package errs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestWrapKeepsLevel(t *testing.T) {
	warn := Wrap(ErrInvalidParam, "triangle")
	if warn.ErrLv != Warn || !errors.Is(warn, ErrInvalidParam) {
		t.Fatalf("unexpected: %+v", warn)
	}
	plain := Wrap(io.EOF, "read")
	if plain.ErrLv != Fatal || !errors.Is(plain, io.EOF) {
		t.Fatalf("non *E cause must be fatal: %+v", plain)
	}
	deep := Wrap(Wrap(ErrUnknownKind, "dist"), "sample")
	if deep.ErrLv != Warn || !errors.Is(deep, ErrUnknownKind) {
		t.Fatalf("unexpected: %+v", deep)
	}
}

func TestHelpers(t *testing.T) {
	if e := Invalidf("n=%d", 3); e.ErrLv != Warn || !errors.Is(e, ErrInvalidParam) || !strings.Contains(e.Error(), "n=3") {
		t.Fatalf("unexpected invalid: %v", e)
	}
	if e := OutOfMemoryf("cap %d", 9); e.ErrLv != Fatal || !errors.Is(e, ErrOutOfMemory) {
		t.Fatalf("unexpected oom: %v", e)
	}
	e := WrapWithExtra(ErrUnknownKind, "generator kind", "xyz")
	if !strings.Contains(e.Error(), "extra: xyz") || !strings.Contains(e.Error(), "errlv=warn") {
		t.Fatalf("unexpected message: %s", e.Error())
	}
	if _, ok := AsErr(io.EOF); ok {
		t.Fatalf("io.EOF is not *E")
	}
	if got, ok := AsErr(e); !ok || got != e {
		t.Fatalf("AsErr failed")
	}
	if ErrLv(ErrLevel(99)) != "" {
		t.Fatalf("unknown level must be empty")
	}
}
