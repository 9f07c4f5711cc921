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

// Package demo 以內嵌的 demo/plans 組裝可直接執行的 Lab 與服務設定。
package demo

import (
	"github.com/zintix-labs/litterlab"
	"github.com/zintix-labs/litterlab/demo/plans"
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/server/logger"
	"github.com/zintix-labs/litterlab/server/svrcfg"
)

// NewLab 載入全部 demo 計畫並凍結目錄。
func NewLab() (*litterlab.Lab, error) {
	lab, err := litterlab.NewAuto(litterlab.Configs(plans.FS)...)
	if err != nil {
		return nil, errs.Wrap(err, "new demo lab failed")
	}
	return lab, nil
}

// NewServerConfig 以 demo Lab 與非同步 dev logger 組成服務設定。
func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := NewLab()
	if err != nil {
		return nil, err
	}
	return &svrcfg.SvrCfg{
		Log:      logger.NewDefaultAsyncLogger(logger.ModeDev),
		PoolSize: 2,
		Lab:      lab,
	}, nil
}
