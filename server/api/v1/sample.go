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

package v1

import (
	"context"
	"net/http"

	"github.com/zintix-labs/litterlab/dto"
)

// Sample GET/POST /v1/sample
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	serve(h, "v1 sample", dto.DecodeSampleRequest, h.rt.Sample)(w, r)
}

// Expect GET/POST /v1/expect
func (h *Handler) Expect(w http.ResponseWriter, r *http.Request) {
	serve(h, "v1 expect", dto.DecodeExpectRequest, func(_ context.Context, req *dto.ExpectRequest) (dto.ExpectResult, error) {
		return h.rt.Expect(req)
	})(w, r)
}

// Noise POST /v1/noise
func (h *Handler) Noise(w http.ResponseWriter, r *http.Request) {
	serve(h, "v1 noise", dto.DecodeNoiseRequest, h.rt.Noise)(w, r)
}

// Urn POST /v1/urn
func (h *Handler) Urn(w http.ResponseWriter, r *http.Request) {
	serve(h, "v1 urn", dto.DecodeUrnRequest, h.rt.Urn)(w, r)
}

// Chaos POST /v1/chaos
func (h *Handler) Chaos(w http.ResponseWriter, r *http.Request) {
	serve(h, "v1 chaos", dto.DecodeChaosRequest, h.rt.Chaos)(w, r)
}
