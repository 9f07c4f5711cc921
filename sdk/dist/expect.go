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

package dist

import (
	"math"
	"strings"

	"github.com/zintix-labs/litterlab/errs"
)

// Moment 選擇 Expect 要回傳的解析量。
type Moment int

const (
	Mean Moment = iota
	Median
	Mode
	Var
	StdDev
	Skew
	Kurtosis // 超額峰度 (excess kurtosis)，常態分布為 0
	Min
	Max
	Entropy // 自然對數 (nats)
)

var momentNames = [...]string{
	Mean:     "mean",
	Median:   "median",
	Mode:     "mode",
	Var:      "var",
	StdDev:   "stddev",
	Skew:     "skew",
	Kurtosis: "kurtosis",
	Min:      "min",
	Max:      "max",
	Entropy:  "entropy",
}

// Moments 回傳所有 Moment（固定順序）。
func Moments() []Moment {
	return []Moment{Mean, Median, Mode, Var, StdDev, Skew, Kurtosis, Min, Max, Entropy}
}

func (m Moment) String() string {
	if m < 0 || int(m) >= len(momentNames) {
		return "unknown"
	}
	return momentNames[m]
}

// ParseMoment 解析名稱；接受常見別名 variance / skewness / kurt。
func ParseMoment(s string) (Moment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	case "mode":
		return Mode, nil
	case "var", "variance":
		return Var, nil
	case "stddev", "std", "sd":
		return StdDev, nil
	case "skew", "skewness":
		return Skew, nil
	case "kurtosis", "kurt":
		return Kurtosis, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	case "entropy":
		return Entropy, nil
	}
	return 0, errs.Invalidf("unknown moment %q", s)
}

// summary 收攏一組參數下的所有解析量，Expect 只負責挑選。
type summary struct {
	mean, median, mode float64
	variance           float64
	skew, kurt         float64
	min, max           float64
	entropy            float64
}

func (s summary) get(m Moment) float64 {
	switch m {
	case Mean:
		return s.mean
	case Median:
		return s.median
	case Mode:
		return s.mode
	case Var:
		return s.variance
	case StdDev:
		if math.IsNaN(s.variance) {
			return math.NaN()
		}
		return math.Sqrt(s.variance)
	case Skew:
		return s.skew
	case Kurtosis:
		return s.kurt
	case Min:
		return s.min
	case Max:
		return s.max
	case Entropy:
		return s.entropy
	}
	return math.NaN()
}

// pointMass 退化為單點分布：變異數 0，高階矩無定義，(微分)熵為 -Inf。
func pointMass(x float64) summary {
	return summary{
		mean: x, median: x, mode: x,
		variance: 0,
		skew:     nan, kurt: nan,
		min: x, max: x,
		entropy: math.Inf(-1),
	}
}

const eulerGamma = 0.57721566490153286060651209008240243104215933593992

var (
	nan    = math.NaN()
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)
