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

// Package app 管理長期運行元件（HTTP server、背景工作）的啟動與優雅關閉。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultGrace = 5 * time.Second

// App 啟動所有 Component，收到終止信號、ctx 結束或任一元件返回時，依序呼叫 Shutdown。
type App struct {
	comps []Component
	log   *slog.Logger
	grace time.Duration
}

func New() *App { return &App{grace: defaultGrace} }

// NewWith 建立並註冊 comps。
func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// WithLogger 設定關閉錯誤的輸出；未設定時用 slog.Default。
func (a *App) WithLogger(log *slog.Logger) *App {
	a.log = log
	return a
}

// WithGrace 設定優雅關閉的總時限。
func (a *App) WithGrace(d time.Duration) *App {
	if d > 0 {
		a.grace = d
	}
	return a
}

// Run 等同以 SIGINT/SIGTERM 為取消條件的 RunContext。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 並行執行每個 Component.Run 並阻塞：
//   - ctx 結束：優雅關閉後回傳 nil。
//   - 任一元件返回：優雅關閉後回傳該錯誤（nil 表示元件自行結束）。
func (a *App) RunContext(ctx context.Context) error {
	if len(a.comps) == 0 {
		return errors.New("app: no component registered")
	}
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()
	log := a.log
	if log == nil {
		log = slog.Default()
	}
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			log.Error("shutdown failed", slog.Any("err", err))
		}
	}
}
