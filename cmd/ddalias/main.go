// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-dda/cmd/ddalias/analyze"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/check"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/cycles"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/query"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/render"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/tools"
)

// version of the tool
const version = "0.1.0"

const usage = `ddalias: demand-driven alias analysis on value-flow graphs
Usage:
  ddalias [tool] [options] <node name(s)>
Tools:
  - query: answers alias queries for the given nodes
  - analyze: answers the queries of a config file and prints statistics
  - cycles: prints the recursive cycles of the call graph of a value-flow graph
  - check: checks a config file and its value-flow graph
  - render: prints a value-flow graph in graphviz format
Examples:
  Query one node: ddalias query -graph example.vfg.yaml -sensitivity context y
  Run all the queries of a config: ddalias analyze -config config.yaml`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(version)
		return
	}

	args := os.Args[2:]
	var run func(tools.CommonFlags) error
	var cmdUsage string
	switch cmd := os.Args[1]; cmd {
	case "query":
		run, cmdUsage = query.Run, query.Usage
	case "analyze":
		run, cmdUsage = analyze.Run, analyze.Usage
	case "cycles":
		run, cmdUsage = cycles.Run, cycles.Usage
	case "check":
		run, cmdUsage = check.Run, check.Usage
	case "render":
		flags, err := render.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := render.Run(flags); err != nil {
			errExit(err)
		}
		return
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
	flags, err := tools.NewCommonFlags(os.Args[1], args, cmdUsage)
	if err != nil {
		errExit(err)
	}
	if err := run(flags); err != nil {
		errExit(err)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
