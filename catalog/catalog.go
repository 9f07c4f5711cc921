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

// Package catalog 維護抽樣計畫目錄：哪些計畫存在、各自對應哪個設定檔。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/zintix-labs/litterlab/errs"
	"github.com/zintix-labs/litterlab/plan"
)

var (
	ErrDupID   = errs.NewFatal("duplicate plan id")
	ErrDupName = errs.NewFatal("duplicate plan name")
)

type Entry struct {
	ID         plan.PID
	Name       string
	ConfigName string
}

// Summary 計畫的對外摘要
type Summary struct {
	ID        plan.PID `json:"id"`
	Name      string   `json:"name"`
	Dist      string   `json:"dist"`
	Alg       string   `json:"alg,omitempty"`
	Generator string   `json:"generator"`
	Count     int      `json:"count"`
	Workers   int      `json:"workers"`
}

type Catalog struct {
	byID   map[plan.PID]Entry
	byName map[string]Entry
	ids    []plan.PID          // 用來穩定排序
	unique map[string]struct{} // 一組計畫，檔名需唯一
	config *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:   map[plan.PID]Entry{},
		byName: map[string]Entry{},
		ids:    make([]plan.PID, 0, 100),
		unique: map[string]struct{}{},
		config: multFS,
		frozen: false,
	}, nil
}

func (c *Catalog) Register(metas ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenID := map[plan.PID]struct{}{}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for _, meta := range metas {
		meta.Name = strings.TrimSpace(meta.Name)
		meta.Name = strings.ToLower(meta.Name)
		if meta.Name == "" {
			return errs.NewFatal("plan name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.index[meta.ConfigName]; !ok {
			return errs.NewFatal(fmt.Sprintf("config file not found: %s", meta.ConfigName))
		}
		if _, ok := c.byID[meta.ID]; ok {
			return ErrDupID
		}
		if _, ok := c.byName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := c.unique[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		if _, ok := seenID[meta.ID]; ok {
			return ErrDupID
		}
		if _, ok := seenName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := seenCfg[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		seenID[meta.ID] = struct{}{}
		seenName[meta.Name] = struct{}{}
		seenCfg[meta.ConfigName] = struct{}{}
	}
	for _, meta := range metas {
		c.unique[meta.ConfigName] = struct{}{}
		c.byID[meta.ID] = meta
		c.byName[meta.Name] = meta
		c.ids = append(c.ids, meta.ID)
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return nil
}

func (c *Catalog) GetByID(id plan.PID) (Entry, bool) {
	m, ok := c.byID[id]
	return m, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	m, ok := c.byName[name]
	return m, ok
}

func (c *Catalog) IDs() []plan.PID {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]plan.PID(nil), c.ids...)
}

func (c *Catalog) All() []Entry {
	order := c.IDs()
	m := make([]Entry, 0, len(c.ids))
	for _, id := range order {
		if meta, ok := c.GetByID(id); ok {
			m = append(m, meta)
		}
	}
	return m
}

func (c *Catalog) Cfg() *multiFS {
	return c.config
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

// planExts 計畫設定檔可用的副檔名。
var planExts = []string{".yaml", ".yml", ".json"}

// isPlanFile 判斷檔名是否為計畫設定檔（大小寫不敏感）。
func isPlanFile(name string) bool {
	return slices.Contains(planExts, strings.ToLower(filepath.Ext(name)))
}

// validFileName 檔名必須是 basename、副檔名為 planExts 之一且不以 . 開頭。
func validFileName(file string) error {
	switch {
	case file == "":
		return errs.NewFatal("empty config filename")
	case strings.ContainsAny(file, `/\:`):
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename)", file))
	case !isPlanFile(file):
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with %s)", file, strings.Join(planExts, ", ")))
	case strings.HasPrefix(file, "."):
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}

// ParsePlanByExt 依副檔名選擇 YAML 或 JSON 解析。
func ParsePlanByExt(filename string, raw []byte) (*plan.Plan, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return plan.GetPlanByYAML(raw)
	case ".json":
		return plan.GetPlanByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}

// PlanById
//
// 會讀取 fs.FS 中的 YAML/JSON 設定、正規化並執行基本檢查後回傳
func (c *Catalog) PlanById(id plan.PID) (*plan.Plan, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.NewWarn("id does not exist in catalog")
	}
	return c.parseEntry(e)
}

// PlanByName
//
// 會讀取fs中的 YAML/JSON 設定、正規化並執行基本檢查後回傳
func (c *Catalog) PlanByName(name string) (*plan.Plan, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.NewWarn("name does not exist in catalog")
	}
	return c.parseEntry(e)
}

func (c *Catalog) parseEntry(e Entry) (*plan.Plan, error) {
	src, ok := c.config.GetFS(e.ConfigName)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, e.ConfigName)
	if err != nil {
		return nil, errs.Wrap(err, "catalog parse file error")
	}
	return ParsePlanByExt(e.ConfigName, raw)
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 256),
	}

	// 建立檔名索引，同時檢查扁平目錄與跨來源重複
	for i, s := range src {
		err := fs.WalkDir(s, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			if strings.Contains(path, "/") {
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			// 非計畫檔（說明文件等）略過
			if !isPlanFile(path) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

// Sources 回傳來源清單的複本，供唯讀走訪。
func (m *multiFS) Sources() []fs.FS {
	if m == nil || len(m.src) == 0 {
		return nil
	}
	return append([]fs.FS(nil), m.src...)
}
