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

// Package check implements the check sub-command, which validates a config file and its value-flow graph.
package check

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/tools"
	"github.com/awslabs/ar-go-dda/internal/formatutil"
)

// Usage for the check sub-command
const Usage = `Check that a config file and its value-flow graph are valid, and print a summary of the graph.

Usage:
  ddalias check [options]

Examples:
% ddalias check -config config.yaml
`

// Summary counts the elements of a value-flow graph
type Summary struct {
	Nodes          map[vfg.NodeKind]int
	Edges          map[vfg.EdgeKind]int
	CallSites      int
	RecursiveSites int
	Components     int
}

// Summarize returns the summary of g
func Summarize(g *vfg.Graph) Summary {
	s := Summary{Nodes: map[vfg.NodeKind]int{}, Edges: map[vfg.EdgeKind]int{}}
	for n := 0; n < g.NumNodes(); n++ {
		s.Nodes[g.Kind(vfg.NodeID(n))]++
	}
	for _, kind := range vfg.AllEdgeKinds() {
		s.Edges[kind] = len(g.EdgesOfKind(kind))
	}
	cg := g.CallGraph()
	s.CallSites = len(cg.Sites)
	s.RecursiveSites = vfg.NewRecursion(cg).Len()

	index := vfg.NewCandidateIndex(g)
	components := map[int]bool{}
	for n := 0; n < g.NumNodes(); n++ {
		components[index.Component(vfg.NodeID(n))] = true
	}
	s.Components = len(components)
	return s
}

// Run loads the inputs designated by the flags and prints the summary of the graph
func Run(flags tools.CommonFlags) error {
	in, err := tools.LoadInputs(flags)
	if err != nil {
		return err
	}
	if _, err := in.QueryNodes(nil); err != nil {
		return fmt.Errorf("invalid queries in config: %w", err)
	}
	PrintSummary(os.Stdout, Summarize(in.Graph))
	fmt.Fprintf(os.Stdout, "%s\n", formatutil.Green("OK"))
	return nil
}

// PrintSummary prints s to w
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Nodes"))
	for _, kind := range []vfg.NodeKind{vfg.Pointer, vfg.Object, vfg.Value} {
		fmt.Fprintf(w, "  %-8s %d\n", kind.String()+":", s.Nodes[kind])
	}
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Edges"))
	for _, kind := range vfg.AllEdgeKinds() {
		fmt.Fprintf(w, "  %-8s %d\n", kind.String()+":", s.Edges[kind])
	}
	fmt.Fprintf(w, "call sites: %d (%d recursive)\n", s.CallSites, s.RecursiveSites)
	fmt.Fprintf(w, "connected components: %d\n", s.Components)
}
