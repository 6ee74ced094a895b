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

// Package pathdda implements the path-sensitive demand-driven alias analysis. It runs a path-sensitive engine and
// falls back to a context-sensitive engine for the queries that exceed the path budget.
package pathdda

import (
	"fmt"

	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"github.com/awslabs/ar-go-dda/internal/graphutil"
	"golang.org/x/tools/container/intsets"
)

// Analysis is the path-sensitive analysis. Like the engines it owns, it is not safe for concurrent use.
type Analysis struct {
	graph       vfg.ValueFlowGraph
	algebra     ConditionAlgebra
	logger      *config.LogGroup
	path        *dda.Engine
	context     *dda.Engine
	outOfBudget map[vfg.NodeID]bool
}

// New returns a path-sensitive analysis of g. The path engine is bounded by the path budget of the config, and
// the context-sensitive engine used as fallback by the query budget.
func New(g vfg.ValueFlowGraph, cg *graphutil.CallGraph, alg ConditionAlgebra, logger *config.LogGroup,
	cfg *config.Config) (*Analysis, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	if alg == nil {
		alg = LiteralAlgebra{}
	}
	recursion := vfg.RecursionOf(g)
	if cg != nil {
		recursion = vfg.NewRecursion(cg)
	}

	pathCfg := *cfg
	pathCfg.Sensitivity = config.PathSensitivity
	pathCfg.QueryBudget = cfg.PathBudget
	pathEngine := dda.NewEngine(g, NewPathPolicy(alg, recursion, dda.StackLimit(cfg)), logger, &pathCfg)

	contextCfg := *cfg
	contextCfg.Sensitivity = config.ContextSensitivity
	contextEngine, err := dda.New(g, cg, logger, &contextCfg)
	if err != nil {
		return nil, fmt.Errorf("could not create fallback engine: %w", err)
	}
	return &Analysis{
		graph:       g,
		algebra:     alg,
		logger:      logger,
		path:        pathEngine,
		context:     contextEngine,
		outOfBudget: map[vfg.NodeID]bool{},
	}, nil
}

// Query answers a query for n with the path-sensitive engine. If the path budget is exceeded, the partial result
// is discarded and the query is answered by the context-sensitive engine, with every target holding under a true
// path condition. The aliases of the result are those of the context-sensitive engine only.
func (a *Analysis) Query(n vfg.NodeID) dda.Result {
	r := a.path.ComputeAlias(n)
	if !r.Partial {
		return r
	}
	a.logger.Warnf("Path-sensitive query for %s exceeded the path budget, using context-sensitive results\n",
		a.graph.NodeName(n))
	a.outOfBudget[n] = true
	cr := a.context.ComputeAlias(n)
	merged := dda.Result{
		Query:    n,
		PointsTo: &intsets.Sparse{},
		Aliases:  &intsets.Sparse{},
		Partial:  cr.Partial,
	}
	merged.PointsTo.Copy(cr.PointsTo)
	merged.Aliases.Copy(cr.Aliases)
	for _, t := range cr.Targets {
		t.Cond = a.algebra.True()
		merged.Targets = append(merged.Targets, t)
	}
	return merged
}

// ComputeAlias returns the points-to targets of n with the conditions under which they hold
func (a *Analysis) ComputeAlias(n vfg.NodeID) []PathVar {
	r := a.Query(n)
	vars := make([]PathVar, 0, len(r.Targets))
	for _, t := range r.Targets {
		cond := targetCond(t)
		if cond.Paths == nil {
			cond.Paths = a.algebra.True()
		}
		vars = append(vars, PathVar{Node: t.Node, Fields: t.Fields, Cond: cond})
	}
	return vars
}

// PointsTo returns the objects n points to
func (a *Analysis) PointsTo(n vfg.NodeID) *intsets.Sparse {
	return a.Query(n).PointsTo
}

// IsAlias returns true if a and b have been recorded as aliases by either engine. This includes the facts the
// path-sensitive engine proved before a query ran out of budget: each was recorded along a feasible path, so they
// hold even though the partial result is discarded by Query.
func (a *Analysis) IsAlias(x, y vfg.NodeID) bool {
	return a.path.IsAlias(x, y) || a.context.IsAlias(x, y)
}

// IsOutOfBudget returns true if the query for n exceeded the path budget
func (a *Analysis) IsOutOfBudget(n vfg.NodeID) bool {
	return a.outOfBudget[n]
}

// OutOfBudget returns the number of queries that exceeded the path budget
func (a *Analysis) OutOfBudget() int {
	return len(a.outOfBudget)
}

// ResetStatePerQuery resets the per-query state of both engines
func (a *Analysis) ResetStatePerQuery() {
	a.path.ResetStatePerQuery()
	a.context.ResetStatePerQuery()
}

// Policy returns the policy of the path-sensitive engine
func (a *Analysis) Policy() *PathPolicy {
	return a.path.Policy().(*PathPolicy)
}

// Stats returns the sum of the statistics of both engines
func (a *Analysis) Stats() dda.Stats {
	p, c := a.path.Stats(), a.context.Stats()
	return dda.Stats{
		Queries:      p.Queries,
		SubQueries:   p.SubQueries + c.SubQueries,
		Steps:        p.Steps + c.Steps,
		Rejected:     p.Rejected + c.Rejected,
		CacheHits:    p.CacheHits + c.CacheHits,
		MatchedPairs: p.MatchedPairs + c.MatchedPairs,
		GuardSkips:   p.GuardSkips + c.GuardSkips,
		OutOfBudget:  len(a.outOfBudget),
	}
}

// Querier returns the analysis as a dda.Querier, to be used with dda.AnalyzeAll
func (a *Analysis) Querier() dda.Querier {
	return querier{a}
}

type querier struct {
	*Analysis
}

func (q querier) ComputeAlias(n vfg.NodeID) dda.Result {
	return q.Query(n)
}
