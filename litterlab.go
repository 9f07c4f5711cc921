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

// Package litterlab 提供 Litterlab 的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 持有一份計畫目錄（catalog），設定檔來源一律以 fs.FS 注入，不綁定任何檔案路徑。
// 由 Lab 可以建立：
//   - Runner：依計畫大量抽樣並產出統計報告（CLI / 批次驗證）。
//   - Runtime：提供 HTTP 服務用的即時抽樣入口（產生器池 + 共用產生器）。
//
// 亂數核心與分布取樣器位於 sdk/core 與 sdk/dist；本套件只負責把它們依計畫組裝起來。
package litterlab

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/litterlab/catalog"
	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/plan"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把計畫直接編進 binary，也可以用 os.DirFS 在本機讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是組裝器：持有計畫目錄並提供 Runner / Runtime 的建立入口。
//
// 使用流程分兩階段：
//   - 註冊階段：建立 catalog、註冊計畫、檢查重複與缺漏。
//   - 執行階段：Freeze 之後依計畫 ID 建立 Runner，或建立 Runtime 對外服務。
//
// 目錄 ID 的唯一性只保證在同一個 Lab instance 內。
type Lab struct {
	cat *catalog.Catalog
	sum []catalog.Summary
}

// New 建立一個尚在註冊階段的 Lab；cfgs 至少一個。
func New(cfgs ...fs.FS) (*Lab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{cat: cata}, nil
}

// NewAuto 建立 Lab、註冊來源內所有計畫並直接進入執行階段。
func NewAuto(cfgs ...fs.FS) (*Lab, error) {
	lab, err := New(cfgs...)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll
//
// 掃描 catalog 持有的設定檔來源，把所有 .yaml/.yml/.json 解析成 *plan.Plan，
// 並以計畫內宣告的 ID / Name 產生 catalog.Entry 批次註冊。
//
// 行為特性：
//  1. Fail-fast：任何一個檔案讀取、解析、檢查失敗都立刻回傳 error。
//  2. 原子性：全部檔案都成功才呼叫一次 Register，不會留下半完成的目錄。
//  3. 穩定性：fs.WalkDir 依檔名字典序走訪，行為可重現。
func (l *Lab) RegisterAll() error {
	sources := l.cat.Cfg().Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 64)
	seenID := map[plan.PID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}
			p, perr := catalog.ParsePlanByExt(base, raw)
			if perr != nil {
				return errs.NewFatal(fmt.Sprintf("parse plan failed: %s: %v", base, perr))
			}

			if prev, ok := seenID[p.ID]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate plan id: %d (config=%s and %s)", p.ID, prev, base))
			}
			if _, ok := l.cat.GetByID(p.ID); ok {
				return errs.NewFatal(fmt.Sprintf("plan id already registered: %d (config=%s)", p.ID, base))
			}
			seenID[p.ID] = base

			nameKey := strings.ToLower(p.Name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate plan name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := l.cat.GetByName(p.Name); ok {
				return errs.NewFatal(fmt.Sprintf("plan name already registered: %s (config=%s)", p.Name, base))
			}
			seenName[nameKey] = base

			entries = append(entries, catalog.Entry{
				ID:         p.ID,
				Name:       p.Name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return l.cat.Register(entries...)
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) EntryById(id plan.PID) (catalog.Entry, bool) {
	return l.cat.GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Lab) IDs() []plan.PID {
	return l.cat.IDs()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

// Plan 依 ID 讀出並解析計畫（每次呼叫都回傳新的實例）。
func (l *Lab) Plan(id plan.PID) (*plan.Plan, error) {
	return l.cat.PlanById(id)
}

// Summary 回傳目錄內所有計畫的摘要（結果會快取）。
func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		p, err := l.cat.PlanById(id)
		if err != nil {
			return nil, errs.NewFatal("parse plan failed")
		}
		cs = append(cs, catalog.Summary{
			ID:        id,
			Name:      p.Name,
			Dist:      p.Dist.Kind,
			Alg:       p.Dist.Alg,
			Generator: p.Generator.Kind,
			Count:     p.Count,
			Workers:   p.Workers,
		})
	}
	l.sum = cs
	return l.sum, nil
}

// NewRunner 依計畫 ID 建立 Runner；salt 取自計畫（0 則隨機）。
func (l *Lab) NewRunner(id plan.PID) (*Runner, error) {
	p, err := l.frozenPlan(id)
	if err != nil {
		return nil, err
	}
	return newRunner(p)
}

// NewRunnerWithSalt 與 NewRunner 相同，但由呼叫端指定基礎 salt（覆蓋計畫設定）。
//
// 同一份計畫 + 同一個 salt + 同樣的 workers 數，會得到完全相同的樣本。
func (l *Lab) NewRunnerWithSalt(id plan.PID, salt uint32) (*Runner, error) {
	p, err := l.frozenPlan(id)
	if err != nil {
		return nil, err
	}
	return newRunnerWithSalt(p, salt)
}

// NewRunnerByJSON 以呼叫端提供的計畫內容建立 Runner。
//
// 若計畫宣告的 ID 或名稱已在目錄內，兩者必須指向同一筆登錄。
func (l *Lab) NewRunnerByJSON(raw []byte, salt uint32) (*Runner, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	p, err := plan.GetPlanByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validPlan(p); err != nil {
		return nil, err
	}
	return newRunnerWithSalt(p, salt)
}

// NewRunnerByYAML 同 NewRunnerByJSON，內容為 YAML。
func (l *Lab) NewRunnerByYAML(raw []byte, salt uint32) (*Runner, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	p, err := plan.GetPlanByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validPlan(p); err != nil {
		return nil, err
	}
	return newRunnerWithSalt(p, salt)
}

// BuildRuntime 進入服務階段：Freeze 目錄並為每個產生器種類建立 poolSize 大小的池。
func (l *Lab) BuildRuntime(poolSize int) (*Runtime, error) {
	l.Freeze()
	return newRuntime(l, poolSize)
}

func (l *Lab) frozenPlan(id plan.PID) (*plan.Plan, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.PlanById(id)
}

func (l *Lab) validPlan(p *plan.Plan) error {
	byID, okID := l.cat.GetByID(p.ID)
	byName, okName := l.cat.GetByName(p.Name)
	switch {
	case okID && okName && byID.ID != byName.ID:
		return errs.NewWarn("plan id is not matched plan name")
	case okID && !okName:
		return errs.NewWarn("plan id already used by another name")
	case !okID && okName:
		return errs.NewWarn("plan name already used by another id")
	}
	return nil
}
