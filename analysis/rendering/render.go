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

// Package rendering writes graphviz representations of value-flow graphs.
package rendering

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
)

// edgeStyle defines specific styles for specific edges in the value-flow graph
// - loads and stores are colored, the matcher bridges them
// - calls and returns are dashed
// - address edges are bold
func edgeStyle(e *vfg.Edge) string {
	switch e.Kind {
	case vfg.Address:
		return "[style=bold]"
	case vfg.Load:
		return "[color=blue]"
	case vfg.Store:
		return "[color=red]"
	case vfg.Call, vfg.Return:
		return "[style=dashed]"
	}
	return ""
}

func edgeLabel(e *vfg.Edge) string {
	var label string
	switch e.Kind {
	case vfg.FieldAccess:
		if e.Variant {
			label = "*"
		} else {
			label = fmt.Sprintf("+%d", e.Offset)
		}
	case vfg.Call:
		label = fmt.Sprintf("(%d", e.CallSite)
	case vfg.Return:
		label = fmt.Sprintf(")%d", e.CallSite)
	case vfg.Load, vfg.Store:
		label = e.Kind.String()
	}
	if len(e.Guard) > 0 {
		if label != "" {
			label += " "
		}
		label += "if " + strings.Join(e.Guard, " && ")
	}
	return label
}

func nodeShape(k vfg.NodeKind) string {
	switch k {
	case vfg.Object:
		return "box"
	case vfg.Value:
		return "diamond"
	default:
		return "ellipse"
	}
}

// WriteGraphviz writes a graphviz representation of the value-flow graph to w. If result is not nil, the query
// is filled in gray, its aliases in light blue and its points-to set in light green.
func WriteGraphviz(g *vfg.Graph, result *dda.Result, w io.Writer) error {
	var err error
	before := "digraph vfg {\n"
	after := "}\n"

	_, err = w.Write([]byte(before))
	if err != nil {
		return fmt.Errorf("error while writing in file: %w", err)
	}
	for i := 0; i < g.NumNodes(); i++ {
		n := vfg.NodeID(i)
		s := fmt.Sprintf("  %d [label=%q shape=%s%s];\n", n, g.NodeName(n), nodeShape(g.Kind(n)), fill(n, result))
		if _, err := w.Write([]byte(s)); err != nil {
			return fmt.Errorf("error while writing in file: %w", err)
		}
	}
	for _, kind := range vfg.AllEdgeKinds() {
		for _, e := range g.EdgesOfKind(kind) {
			s := fmt.Sprintf("  %d -> %d %s", e.Src, e.Dst, edgeStyle(e))
			if label := edgeLabel(e); label != "" {
				s += fmt.Sprintf("[label=%q]", label)
			}
			if _, err := w.Write([]byte(s + ";\n")); err != nil {
				return fmt.Errorf("error while writing in file: %w", err)
			}
		}
	}
	_, err = w.Write([]byte(after))
	if err != nil {
		return fmt.Errorf("error while writing in file: %w", err)
	}
	return nil
}

func fill(n vfg.NodeID, result *dda.Result) string {
	switch {
	case result == nil:
		return ""
	case n == result.Query:
		return " style=filled fillcolor=gray"
	case result.Aliases != nil && result.Aliases.Has(int(n)):
		return " style=filled fillcolor=lightblue"
	case result.PointsTo != nil && result.PointsTo.Has(int(n)):
		return " style=filled fillcolor=lightgreen"
	}
	return ""
}

// GraphvizToFile writes the graphviz representation of g in a new file filename
func GraphvizToFile(g *vfg.Graph, result *dda.Result, filename string) error {
	var err error
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	err = WriteGraphviz(g, result, w)
	if err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return err
}
