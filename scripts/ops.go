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

// ops 是開發用的任務入口：go run ./scripts <task>
//
//	test         只顯示 ok / FAIL 行
//	test-detail  verbose，略過 [no test files]
//	bench        產生器與分布的 benchmark
//	profile      以 demo 計畫跑一次 cpu profile（輸出到 build/profiling）
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

func printColor(color, msg string) { fmt.Printf("%s%s%s\n", color, msg, colorReset) }

type task struct {
	title string
	args  []string
	// filter 決定每一行怎麼印；nil 時原樣輸出
	filter func(line string)
}

var tasks = map[string]task{
	"test": {
		title: "running tests",
		args:  []string{"go", "test", "./...", "-cover", "-count=1"},
		filter: func(line string) {
			switch {
			case strings.HasPrefix(line, "ok"):
				printColor(colorGreen, line)
			case strings.HasPrefix(line, "FAIL"),
				strings.Contains(line, "build failed"),
				strings.Contains(line, "setup failed"):
				printColor(colorRed, line)
			}
		},
	},
	"test-detail": {
		title: "running tests (detail)",
		args:  []string{"go", "test", "./...", "-v", "-count=1"},
		filter: func(line string) {
			switch {
			case strings.Contains(line, "[no test files]"):
			case strings.HasPrefix(line, "ok"):
				printColor(colorGreen, line)
			case strings.HasPrefix(line, "FAIL"):
				printColor(colorRed, line)
			default:
				fmt.Println(line)
			}
		},
	},
	"bench": {
		title: "running benchmarks",
		args:  []string{"go", "test", "./sdk/...", "-run", "^$", "-bench", ".", "-benchmem"},
	},
	"profile": {
		title: "profiling normal_kr (cpu)",
		args:  []string{"go", "run", "./cmd/run", "-plan", "normal_kr", "-q", "-p", "cpu"},
	},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts [test|test-detail|bench|profile]")
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		printColor(colorYellow, "Unknown task: "+os.Args[1])
		os.Exit(1)
	}
	if err := run(t); err != nil {
		printColor(colorRed, "\n"+t.title+" finished with errors: "+err.Error())
		os.Exit(1)
	}
}

func run(t task) error {
	printColor(colorGreen, t.title)
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		printColor(colorRed, err.Error())
	}

	cmd := exec.Command(t.args[0], t.args[1:]...)
	if t.filter == nil {
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
		return cmd.Run()
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		t.filter(sc.Text())
	}
	return cmd.Wait()
}
