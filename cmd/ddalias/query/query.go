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

// Package query implements the query sub-command, which answers alias queries for named nodes.
package query

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/tools"
	"github.com/awslabs/ar-go-dda/internal/formatutil"
)

// Usage for the query sub-command
const Usage = `Answer alias queries for nodes of a value-flow graph.

Usage:
  ddalias query [options] node...

If no node is given, the queries of the config file are answered, or every pointer of the graph if
the config file has none.

Examples:
% ddalias query -graph example.vfg.yaml y
% ddalias query -config config.yaml -sensitivity path y w
`

// Run answers the queries for the nodes named in the arguments of the flags.
func Run(flags tools.CommonFlags) error {
	in, err := tools.LoadInputs(flags)
	if err != nil {
		return err
	}
	nodes, err := in.QueryNodes(flags.FlagSet.Args())
	if err != nil {
		return err
	}
	q, err := in.NewQuerier()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, formatutil.Faint("Answering %d queries with %s sensitivity")+"\n",
		len(nodes), in.Config.Sensitivity)
	for _, n := range nodes {
		q.ResetStatePerQuery()
		PrintResult(os.Stdout, in.Graph, q.ComputeAlias(n))
	}
	return nil
}

// PrintResult prints the points-to set, the targets and the aliases of r to w
func PrintResult(w io.Writer, g *vfg.Graph, r dda.Result) {
	header := formatutil.Bold(g.NodeName(r.Query))
	if r.Partial {
		header += " " + formatutil.Yellow("(partial)")
	}
	fmt.Fprintf(w, "%s\n", header)
	fmt.Fprintf(w, "  points-to: %s\n",
		formatutil.Green(strings.Join(tools.NodeNames(g, r.PointsToNodes()), ", ")))
	for _, t := range r.Targets {
		fmt.Fprintf(w, "    %s\n", formatTarget(g, t))
	}
	fmt.Fprintf(w, "  aliases: %s\n", formatutil.Cyan(strings.Join(tools.NodeNames(g, r.AliasNodes()), ", ")))
}

func formatTarget(g *vfg.Graph, t dda.Target) string {
	s := formatutil.Sanitize(g.NodeName(t.Node))
	if len(t.Fields) > 0 {
		s += fmt.Sprintf(".%v", t.Fields)
	}
	if len(t.Context) > 0 {
		s += " @" + t.Context.String()
	}
	if t.Cond != nil {
		s += " if " + formatutil.Faint(t.Cond.String())
	}
	return s
}
