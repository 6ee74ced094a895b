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

// Package cycles implements the cycles sub-command, which prints the recursive cycles of the call graph induced by
// the call sites of a value-flow graph.
package cycles

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-go-dda/cmd/ddalias/tools"
	"github.com/awslabs/ar-go-dda/internal/formatutil"
	"github.com/awslabs/ar-go-dda/internal/funcutil"
	"github.com/awslabs/ar-go-dda/internal/graphutil"
	"github.com/yourbasic/graph"
)

// Usage for the cycles sub-command
const Usage = `Print the elementary cycles of the call graph of a value-flow graph, and the call sites that are
part of a recursion. Calls and returns through those call sites are not matched by the context-sensitive
analyses.

Usage:
  ddalias cycles [options]

Examples:
% ddalias cycles -graph example.vfg.yaml
`

// Run prints the cycles of the call graph of the graph designated by the flags
func Run(flags tools.CommonFlags) error {
	in, err := tools.LoadInputs(flags)
	if err != nil {
		return err
	}
	PrintCycles(os.Stdout, in.Graph.CallGraph())
	return nil
}

// PrintCycles prints the statistics, the elementary cycles and the recursive call sites of cg to w
func PrintCycles(w io.Writer, cg *graphutil.CallGraph) {
	stats := graph.Check(cg)
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Call graph"))
	fmt.Fprintf(w, "  functions:       %d\n", cg.Order())
	fmt.Fprintf(w, "  call edges:      %d\n", stats.Size)
	fmt.Fprintf(w, "  self-recursive:  %d\n", stats.Loops)
	fmt.Fprintf(w, "  isolated:        %d\n", stats.Isolated)

	cycles := graphutil.FindAllElementaryCycles(cg)
	fmt.Fprintf(w, "%s (%d)\n", formatutil.Bold("Cycles"), len(cycles))
	for _, cycle := range cycles {
		fmt.Fprintf(w, "  %s\n", formatutil.Magenta(strings.Join(funcutil.Map(cycle, cg.FuncName), " -> ")))
	}

	ids := funcutil.SetToOrderedSlice(cg.RecursiveSites())
	fmt.Fprintf(w, "%s (%d)\n", formatutil.Bold("Recursive call sites"), len(ids))
	for _, id := range ids {
		for _, site := range cg.Sites {
			if site.ID == id {
				fmt.Fprintf(w, "  %d: %s -> %s\n", id, site.Caller, site.Callee)
			}
		}
	}
}
