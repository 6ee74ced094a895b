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

// Package analyze implements the analyze sub-command, which answers a batch of queries and reports statistics.
package analyze

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/query"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/tools"
	"github.com/awslabs/ar-go-dda/internal/formatutil"
)

// Usage for the analyze sub-command
const Usage = `Answer the queries of a config file, or query every pointer of a value-flow graph, and print
statistics about the search.

Usage:
  ddalias analyze [options]

The options print-aliases and print-pts of the config file control what is printed for every query.
When report-results is set, one line per query is written to a results file in reports-dir.

Examples:
% ddalias analyze -config config.yaml
% ddalias analyze -graph example.vfg.yaml -sensitivity context
`

// Run answers the queries and prints the report
func Run(flags tools.CommonFlags) error {
	in, err := tools.LoadInputs(flags)
	if err != nil {
		return err
	}
	nodes, err := in.QueryNodes(nil)
	if err != nil {
		return err
	}
	q, err := in.NewQuerier()
	if err != nil {
		return err
	}
	in.Logger.Infof("Analyzing %d queries with %s sensitivity\n", len(nodes), in.Config.Sensitivity)
	report := dda.AnalyzeAll(q, nodes, in.Logger)

	if in.Config.PrintAliases || in.Config.PrintPointsTo {
		for _, n := range report.Nodes() {
			printQuery(os.Stdout, in.Graph, in.Config, report.Results[n])
		}
	}
	PrintStats(os.Stdout, in.Graph, report)

	if in.Config.ReportResults {
		filename, err := WriteResults(in.Config.ReportsDir, in.Graph, report)
		if err != nil {
			return err
		}
		in.Logger.Infof("Results written in %s\n", filename)
	}
	return nil
}

func printQuery(w io.Writer, g *vfg.Graph, cfg *config.Config, r dda.Result) {
	if cfg.PrintAliases && cfg.PrintPointsTo {
		query.PrintResult(w, g, r)
		return
	}
	if cfg.PrintPointsTo {
		fmt.Fprintf(w, "%s -> %s\n", formatutil.Bold(g.NodeName(r.Query)),
			formatutil.Green(strings.Join(tools.NodeNames(g, r.PointsToNodes()), ", ")))
	}
	if cfg.PrintAliases {
		fmt.Fprintf(w, "%s ~ %s\n", formatutil.Bold(g.NodeName(r.Query)),
			formatutil.Cyan(strings.Join(tools.NodeNames(g, r.AliasNodes()), ", ")))
	}
}

// PrintStats prints the statistics of the report to w
func PrintStats(w io.Writer, g *vfg.Graph, report *dda.Report) {
	s := report.Stats
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Statistics"))
	fmt.Fprintf(w, "  queries:           %d (%d nested)\n", s.Queries, s.SubQueries)
	fmt.Fprintf(w, "  alias pairs:       %d\n", report.NumAliasPairs())
	fmt.Fprintf(w, "  steps:             %d\n", s.Steps)
	fmt.Fprintf(w, "  rejected paths:    %d\n", s.Rejected)
	fmt.Fprintf(w, "  cache hits:        %d\n", s.CacheHits)
	fmt.Fprintf(w, "  matched pairs:     %d\n", s.MatchedPairs)
	fmt.Fprintf(w, "  guard skips:       %d\n", s.GuardSkips)
	if len(report.OutOfBudget) > 0 {
		fmt.Fprintf(w, "  %s %s\n", formatutil.Red("out of budget:"),
			strings.Join(tools.NodeNames(g, report.OutOfBudget), ", "))
	} else {
		fmt.Fprintf(w, "  out of budget:     0\n")
	}
}

// WriteResults writes one line per query of the report in a new results file in dir, and returns the name of
// the file.
func WriteResults(dir string, g *vfg.Graph, report *dda.Report) (string, error) {
	f, err := os.CreateTemp(dir, "results-*.out")
	if err != nil {
		return "", fmt.Errorf("could not create results file: %w", err)
	}
	defer f.Close()
	for _, n := range report.Nodes() {
		r := report.Results[n]
		status := "complete"
		if r.Partial {
			status = "partial"
		}
		_, err := fmt.Fprintf(f, "%s\t%s\tpts=[%s]\taliases=[%s]\n", g.NodeName(n), status,
			strings.Join(tools.NodeNames(g, r.PointsToNodes()), " "),
			strings.Join(tools.NodeNames(g, r.AliasNodes()), " "))
		if err != nil {
			return "", fmt.Errorf("could not write results: %w", err)
		}
	}
	return f.Name(), nil
}
