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

// Package netsvr 抽象 HTTP 路由與服務啟停，預設以 chi 實作。
package netsvr

import (
	"net/http"

	"github.com/zintix-labs/litterlab/server/app"
)

// NetSvr 路由 + 啟停，只交給最外層組裝者；實作 app.Component 以納入 app.App 的生命週期。
type NetSvr interface {
	NetRouter
	app.Component

	// Handler 回傳根路由，可直接交給 httptest 使用。
	Handler() http.Handler
	Address() string
}

// NetRouter 只有路由行為，看不到 Run/Shutdown。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)

	// Group 在 path 下掛子路由；子路由的 Use 只作用於該群組。
	Group(path string, fn func(NetRouter))
}
