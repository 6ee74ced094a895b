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

// Package render implements the render sub-command, which prints a value-flow graph in graphviz format.
package render

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/rendering"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/tools"
)

// Flags represents the parsed flags for the render sub-command.
type Flags struct {
	tools.CommonFlags
	output string
}

// NewFlags creates parsed render sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("render")
	output := flags.FlagSet.String("o", "", "output file; the graph is printed on standard output if empty")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, output: *output}, nil
}

// Usage for the render sub-command
const Usage = `Render a value-flow graph in graphviz format. If a node is given, the node is queried and its
aliases and points-to set are highlighted.

Usage:
  ddalias render [options] [node]

Examples:
% ddalias render -graph example.vfg.yaml -o example.dot
% ddalias render -graph example.vfg.yaml -sensitivity field y | dot -Tsvg > y.svg
`

// Run renders the graph designated by the flags
func Run(flags Flags) error {
	in, err := tools.LoadInputs(flags.CommonFlags)
	if err != nil {
		return err
	}
	var result *dda.Result
	if args := flags.FlagSet.Args(); len(args) > 0 {
		if len(args) > 1 {
			return fmt.Errorf("expected at most one node, got %d", len(args))
		}
		nodes, err := in.QueryNodes(args)
		if err != nil {
			return err
		}
		q, err := in.NewQuerier()
		if err != nil {
			return err
		}
		r := q.ComputeAlias(nodes[0])
		result = &r
	}
	if flags.output == "" {
		return rendering.WriteGraphviz(in.Graph, result, os.Stdout)
	}
	if err := rendering.GraphvizToFile(in.Graph, result, flags.output); err != nil {
		return err
	}
	in.Logger.Infof("Graph written in %s\n", flags.output)
	return nil
}
