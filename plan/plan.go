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

// Package plan 定義抽樣計畫（draw plan）設定檔：用哪個產生器、哪個分布、抽幾次。
package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/sdk/core"
	"github.com/zintix-labs/litterlab/sdk/dist"
	"gopkg.in/yaml.v3"
)

// PID 計畫編號
type PID int

// MaxCount 單一計畫的抽樣數上限。
const MaxCount = 1 << 28

// Plan 一份抽樣計畫。
type Plan struct {
	Name      string       `yaml:"name"      json:"name"`
	ID        PID          `yaml:"id"        json:"id"`
	Generator GenSetting   `yaml:"generator" json:"generator"`
	Dist      DistSetting  `yaml:"dist"      json:"dist"`
	Count     int          `yaml:"count"     json:"count"`
	Workers   int          `yaml:"workers"   json:"workers"`
	Expect    []string     `yaml:"expect"    json:"expect,omitempty"`
	Hist      *HistSetting `yaml:"hist"      json:"hist,omitempty"`
}

// GenSetting 產生器設定；salt 為 0 時由執行端隨機決定並寫進報告。
type GenSetting struct {
	Kind string `yaml:"kind" json:"kind"`
	Salt uint32 `yaml:"salt" json:"salt"`
}

// DistSetting 分布設定，params 依名稱套用（見 dist.New）。
type DistSetting struct {
	Kind   string             `yaml:"kind"   json:"kind"`
	Alg    string             `yaml:"alg"    json:"alg,omitempty"`
	Params map[string]float64 `yaml:"params" json:"params,omitempty"`
}

// HistSetting 直方圖分箱。
type HistSetting struct {
	Lo   float64 `yaml:"lo"   json:"lo"`
	Hi   float64 `yaml:"hi"   json:"hi"`
	Bins int     `yaml:"bins" json:"bins"`
}

// GetPlanByYAML
// 會讀取 YAML 設定、正規化並執行基本檢查後回傳。
func GetPlanByYAML(data []byte) (*Plan, error) {
	p := &Plan{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}
	if err := p.init(); err != nil {
		return nil, errs.Wrap(err, "plan initialized err")
	}
	return p, nil
}

// GetPlanByJSON
// 會讀取 Json 設定、正規化並執行基本檢查後回傳
func GetPlanByJSON(data []byte) (*Plan, error) {
	p := &Plan{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}
	if err := p.init(); err != nil {
		return nil, errs.Wrap(err, "plan initialized err")
	}
	return p, nil
}

// Init 對程式內組出的 Plan 執行與設定檔相同的正規化與檢查。
func (p *Plan) Init() error {
	return p.init()
}

func (p *Plan) init() error {
	p.Name = strings.TrimSpace(p.Name)
	gk, err := core.ParseKind(p.Generator.Kind)
	if err != nil {
		return err
	}
	p.Generator.Kind = string(gk)
	dk, err := dist.ParseKind(p.Dist.Kind)
	if err != nil {
		return err
	}
	// 保留別名（laplace / halfcauchy 會注入預設參數），只做大小寫正規化
	p.Dist.Kind = strings.ToLower(strings.TrimSpace(p.Dist.Kind))
	if p.Dist.Kind == "" {
		p.Dist.Kind = string(dk)
	}
	if p.Workers < 1 {
		p.Workers = 1
	}
	for i, m := range p.Expect {
		mm, err := dist.ParseMoment(m)
		if err != nil {
			return err
		}
		p.Expect[i] = mm.String()
	}
	return p.valid()
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (p *Plan) valid() error {
	if p.Name == "" {
		return errs.NewFatal("plan name required")
	}
	if p.Count < 1 || p.Count > MaxCount {
		return errs.NewFatal(fmt.Sprintf("plan: %s err: count must be in [1,%d]", p.Name, MaxCount))
	}
	if p.Workers > p.Count {
		p.Workers = p.Count
	}
	if p.Hist != nil && (p.Hist.Bins < 1 || !(p.Hist.Hi > p.Hist.Lo)) {
		return errs.NewFatal(fmt.Sprintf("plan: %s err: hist requires bins >= 1 and hi > lo", p.Name))
	}
	// 參數能否套用到分布上，直接建一次看看
	if _, err := p.NewDist(); err != nil {
		return err
	}
	return nil
}

// NewDist 依設定建立一個新的分布實例（每個 worker 各自持有）。
func (p *Plan) NewDist() (dist.Dist, error) {
	return dist.New(p.Dist.Kind, p.Dist.Alg, p.Dist.Params)
}

// GeneratorKind 回傳正規化後的產生器種類。
func (p *Plan) GeneratorKind() core.Kind {
	return core.Kind(p.Generator.Kind)
}

// Moments 回傳要列入報告的解析量；未指定時為 mean/stddev/skew/kurt。
func (p *Plan) Moments() []dist.Moment {
	if len(p.Expect) == 0 {
		return []dist.Moment{dist.Mean, dist.StdDev, dist.Skew, dist.Kurtosis}
	}
	out := make([]dist.Moment, 0, len(p.Expect))
	for _, s := range p.Expect {
		if m, err := dist.ParseMoment(s); err == nil {
			out = append(out, m)
		}
	}
	return out
}
