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

package corefmt

import (
	"bytes"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	state := []byte{0, 1, 2, 3, 0xff, 0xfe}
	s := EncodeSnapshotB64U("mt19937", state)
	kind, got, err := DecodeSnapshotB64U(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if kind != "mt19937" || !bytes.Equal(got, state) {
		t.Fatalf("round trip mismatch: %q %v", kind, got)
	}
}

func TestDecodeSnapshotRejectsBadFrames(t *testing.T) {
	good := EncodeSnapshot("lcg", []byte{1, 2, 3, 4})
	cases := map[string][]byte{
		"empty":     nil,
		"truncated": good[:len(good)-1],
		"trailing":  append(append([]byte{}, good...), 9),
	}
	for name, b := range cases {
		if _, _, err := DecodeSnapshot(b); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDecodeBlobFrameCopies(t *testing.T) {
	frame := AppendBlobFrame(nil, []byte("abc"))
	p, rest, err := DecodeBlobFrame(frame)
	if err != nil || string(p) != "abc" || len(rest) != 0 {
		t.Fatalf("unexpected: %q %v %v", p, rest, err)
	}
	frame[1] = 'z'
	if string(p) != "abc" {
		t.Fatalf("payload aliases frame")
	}
}

func TestDecodeBase64URL(t *testing.T) {
	if _, err := DecodeBase64URL("***"); err == nil {
		t.Fatalf("expected error")
	}
	b, err := DecodeBase64URL(EncodeBase64URL([]byte{0xfb, 0xff}))
	if err != nil || !bytes.Equal(b, []byte{0xfb, 0xff}) {
		t.Fatalf("unexpected: %v %v", b, err)
	}
}
