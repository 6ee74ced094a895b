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

package dda

import (
	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Querier answers alias queries one at a time. Engine implements Querier; the path-sensitive analysis provides one
// as well.
type Querier interface {
	ComputeAlias(n vfg.NodeID) Result
	ResetStatePerQuery()
	Stats() Stats
}

// Report is the result of AnalyzeAll
type Report struct {
	// Results maps every query to its result
	Results map[vfg.NodeID]Result

	// OutOfBudget are the queries whose result is partial, in increasing order
	OutOfBudget []vfg.NodeID

	// Stats are the statistics of the querier after all the queries
	Stats Stats
}

// Nodes returns the queried nodes, in increasing order
func (r *Report) Nodes() []vfg.NodeID {
	nodes := maps.Keys(r.Results)
	slices.Sort(nodes)
	return nodes
}

// NumAliasPairs returns the number of (query, alias) pairs in the report
func (r *Report) NumAliasPairs() int {
	n := 0
	for _, res := range r.Results {
		n += res.Aliases.Len()
	}
	return n
}

// AnalyzeAll answers a query for every node, resetting the per-query state between queries.
func AnalyzeAll(q Querier, nodes []vfg.NodeID, logger *config.LogGroup) *Report {
	report := &Report{Results: make(map[vfg.NodeID]Result, len(nodes))}
	for i, n := range nodes {
		if logger != nil {
			logger.Debugf("Answering query for node %d (%d/%d)\n", n, i+1, len(nodes))
		}
		q.ResetStatePerQuery()
		r := q.ComputeAlias(n)
		report.Results[n] = r
		if r.Partial {
			report.OutOfBudget = append(report.OutOfBudget, n)
		}
	}
	slices.Sort(report.OutOfBudget)
	report.Stats = q.Stats()
	return report
}

// QueryNodes returns the nodes to query: the named nodes if names is not empty, otherwise every valid pointer of g.
// Returns the names that do not match any node.
func QueryNodes(g *vfg.Graph, names []string) ([]vfg.NodeID, []string) {
	if len(names) == 0 {
		return g.ValidPointers(), nil
	}
	var nodes []vfg.NodeID
	var unknown []string
	for _, name := range names {
		if n, ok := g.Lookup(name); ok {
			nodes = append(nodes, n)
		} else {
			unknown = append(unknown, name)
		}
	}
	return nodes, unknown
}
