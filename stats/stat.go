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

package stats

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

var lang language.Tag = language.English

// Num 是可以安全 JSON 序列化的 float64：NaN / ±Inf 以字串輸出。
type Num float64

func (n Num) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n *Num) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	switch s {
	case "NaN", "null":
		*n = Num(math.NaN())
		return nil
	case "+Inf", "Inf":
		*n = Num(math.Inf(1))
		return nil
	case "-Inf":
		*n = Num(math.Inf(-1))
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Num(f)
	return nil
}

// 信賴區間
type CI struct {
	Lo Num `json:"Lo"`
	Hi Num `json:"Hi"`
}

// Report 一次抽樣作業的統計報告
type Report struct {
	Name      string             `json:"Name"`
	Dist      string             `json:"Dist"`
	Alg       string             `json:"Alg,omitempty"`
	Params    map[string]float64 `json:"Params,omitempty"`
	Generator string             `json:"Generator"`
	Salt      uint32             `json:"Salt"`
	Workers   int                `json:"Workers"`
	Summary   Summary            `json:"Summary"`
	Expected  []Expected         `json:"Expected,omitempty"`
	Fit       *Fit               `json:"Fit,omitempty"`
	Hist      *Histogram         `json:"Hist,omitempty"`
}

// Expected 解析期望值（與 Summary 對照用）
type Expected struct {
	Name  string `json:"Name"`
	Value Num    `json:"Value"`
}

// Summary 樣本統計
type Summary struct {
	Count    int `json:"Count"`
	Mean     Num `json:"Mean"`
	MeanCI   CI  `json:"MeanCI"`
	StdDev   Num `json:"StdDev"`
	Var      Num `json:"Var"`
	Skew     Num `json:"Skew"`
	ExKurt   Num `json:"ExKurt"`
	Min      Num `json:"Min"`
	Max      Num `json:"Max"`
	Median   Num `json:"Median"`
	MedianCI CI  `json:"MedianCI"`
	P05      Num `json:"P05"`
	P95      Num `json:"P95"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Summarize 計算樣本統計；xs 不會被修改。
//
// 樣本數 < 2 時變異數以上的高階量為 NaN。
func Summarize(xs []float64) Summary {
	nan := Num(math.NaN())
	n := len(xs)
	s := Summary{
		Count: n,
		Mean:  nan, StdDev: nan, Var: nan, Skew: nan, ExKurt: nan,
		Min: nan, Max: nan, Median: nan, P05: nan, P95: nan,
		MeanCI: CI{nan, nan}, MedianCI: CI{nan, nan},
	}
	if n == 0 {
		return s
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	s.Mean = Num(stat.Mean(sorted, nil))
	s.Min = Num(sorted[0])
	s.Max = Num(sorted[n-1])
	s.Median = Num(stat.Quantile(0.5, stat.Empirical, sorted, nil))
	s.P05 = Num(stat.Quantile(0.05, stat.Empirical, sorted, nil))
	s.P95 = Num(stat.Quantile(0.95, stat.Empirical, sorted, nil))
	if n < 2 {
		return s
	}
	mean, std := stat.MeanStdDev(sorted, nil)
	s.StdDev = Num(std)
	s.Var = Num(std * std)
	s.Skew = Num(stat.Skew(sorted, nil))
	s.ExKurt = Num(stat.ExKurtosis(sorted, nil))
	se := std / math.Sqrt(float64(n))
	s.MeanCI = CI{Lo: Num(mean - 1.96*se), Hi: Num(mean + 1.96*se)}
	lo, hi := quantileCISorted(sorted, 0.5, 0.95)
	s.MedianCI = CI{Lo: Num(lo), Hi: Num(hi)}
	return s
}

func (r *Report) WriteWith(w io.Writer, rep ReportRender) error {
	return rep.Write(w, r)
}

// StdOut 印出耗時與摘要表格。
func (r *Report) StdOut(ut time.Duration) {
	formatDuration(ut, r.Summary.Count)
	fmt.Println(r.Table())
}

// Table 回傳摘要表格字串。
func (r *Report) Table() string {
	sk, sm := r.fmtBasic()
	return fmtTable(r.Name, sk, sm)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, draws int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(draws) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ndps : %d draws/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\ndps : %d draws/sec\n", m, s, dps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ndps : %d draws/sec\n", h, m, s, dps)
}

func fmtNum(p *message.Printer, n Num) string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return p.Sprintf("%.6g", f)
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	s := r.Summary
	basic := map[string]string{
		"Distribution": r.Dist,
		"Generator":    fmt.Sprintf("%s (salt %d)", r.Generator, r.Salt),
		"Draws":        p.Sprintf("%d", s.Count),
		"Workers":      p.Sprintf("%d", r.Workers),
		"Mean":         fmtNum(p, s.Mean),
		"Mean 95% CI":  "[" + fmtNum(p, s.MeanCI.Lo) + ", " + fmtNum(p, s.MeanCI.Hi) + "]",
		"StdDev":       fmtNum(p, s.StdDev),
		"Skew":         fmtNum(p, s.Skew),
		"Ex. Kurtosis": fmtNum(p, s.ExKurt),
		"Min":          fmtNum(p, s.Min),
		"Median":       fmtNum(p, s.Median),
		"Max":          fmtNum(p, s.Max),
	}
	keys := []string{"Distribution", "Generator", "Draws", "Workers", "Mean", "Mean 95% CI", "StdDev", "Skew", "Ex. Kurtosis", "Min", "Median", "Max"}
	if r.Alg != "" {
		basic["Algorithm"] = r.Alg
		keys = slices.Insert(keys, 1, "Algorithm")
	}
	for _, e := range r.Expected {
		k := "E[" + e.Name + "]"
		basic[k] = fmtNum(p, e.Value)
		keys = append(keys, k)
	}
	if r.Fit != nil {
		basic["Fit ("+r.Fit.Test+")"] = fmt.Sprintf("stat=%s p=%s", fmtNum(p, r.Fit.Stat), fmtNum(p, r.Fit.P))
		keys = append(keys, "Fit ("+r.Fit.Test+")")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
