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

package pathdda

import (
	"embed"
	"io"
	"testing"

	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata
var testfsys embed.FS

func loadGraph(t *testing.T, name string) *vfg.Graph {
	b, err := testfsys.ReadFile("testdata/" + name)
	require.NoError(t, err)
	g, err := vfg.Parse(b)
	require.NoError(t, err)
	return g
}

func newTestAnalysis(t *testing.T, g *vfg.Graph, pathBudget int) *Analysis {
	cfg := config.NewDefault()
	cfg.Sensitivity = config.PathSensitivity
	cfg.PathBudget = pathBudget
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	a, err := New(g, nil, LiteralAlgebra{}, logger, cfg)
	require.NoError(t, err)
	return a
}

// newContextEngine returns the context-sensitive engine the path analysis falls back to
func newContextEngine(t *testing.T, g *vfg.Graph) *dda.Engine {
	cfg := config.NewDefault()
	cfg.Sensitivity = config.ContextSensitivity
	cfg.SilenceWarn = true
	e, err := dda.New(g, nil, nil, cfg)
	require.NoError(t, err)
	return e
}

func nodes(g *vfg.Graph, names ...string) []vfg.NodeID {
	ids := make([]vfg.NodeID, len(names))
	for i, name := range names {
		ids[i] = g.MustLookup(name)
	}
	return ids
}

func TestGuardedPointsTo(t *testing.T) {
	g := loadGraph(t, "guards.vfg.yaml")
	a := newTestAnalysis(t, g, 30000)
	q, p := g.MustLookup("q"), g.MustLookup("p")

	vars := a.ComputeAlias(q)
	require.Len(t, vars, 1)
	assert.Equal(t, g.MustLookup("o1"), vars[0].Node)
	assert.Equal(t, "c", vars[0].Cond.Paths.String())
	assert.False(t, a.IsOutOfBudget(q))
	assert.Positive(t, a.Stats().Rejected)

	a.ResetStatePerQuery()
	conds := map[string]string{}
	for _, v := range a.ComputeAlias(p) {
		conds[g.NodeName(v.Node)] = v.Cond.Paths.String()
	}
	assert.Equal(t, map[string]string{"o1": "c", "o2": "!c"}, conds)
	assert.Equal(t, nodes(g, "o1", "o2"), dda.Result{PointsTo: a.PointsTo(p)}.PointsToNodes())

	// the context-sensitive analysis ignores the guards
	ctx := newContextEngine(t, g)
	assert.Equal(t, nodes(g, "o1", "o2"), ctx.ComputeAlias(q).PointsToNodes())
}

func TestFallbackToContextSensitivity(t *testing.T) {
	g := loadGraph(t, "guards.vfg.yaml")
	a := newTestAnalysis(t, g, 1)
	q := g.MustLookup("q")

	r := a.Query(q)
	assert.True(t, a.IsOutOfBudget(q))
	assert.False(t, r.Partial, "the context-sensitive engine completed")
	assert.Equal(t, nodes(g, "o1", "o2"), r.PointsToNodes())
	for _, target := range r.Targets {
		assert.Equal(t, "true", target.Cond.String())
	}
	assert.Equal(t, 1, a.OutOfBudget())

	// the aliases are exactly those of the context-sensitive engine, the partial path result is dropped
	ctx := newContextEngine(t, g)
	want := ctx.ComputeAlias(q).Aliases
	assert.True(t, r.Aliases.Equals(want), "got %s, want %s", r.Aliases, want)

	a.ResetStatePerQuery()
	vars := a.ComputeAlias(q)
	require.Len(t, vars, 2)
	for _, v := range vars {
		assert.Equal(t, "true", v.Cond.Paths.String())
		assert.Empty(t, v.Cond.Contexts)
	}
	assert.True(t, a.IsAlias(q, g.MustLookup("p")))
}

func TestGuardedLoadStore(t *testing.T) {
	// the store happens under c, the load under !c
	g := loadGraph(t, "guarded_heap.vfg.yaml")
	a := newTestAnalysis(t, g, 30000)

	report := dda.AnalyzeAll(a.Querier(), nodes(g, "w", "v"), nil)
	assert.Empty(t, report.Results[g.MustLookup("w")].PointsToNodes(), "infeasible load/store pair")
	assert.Equal(t, nodes(g, "o2"), report.Results[g.MustLookup("v")].PointsToNodes())
	assert.Equal(t, 2, report.Stats.Queries)
	assert.Empty(t, report.OutOfBudget)
}

func TestPathPolicyRecursion(t *testing.T) {
	g := loadGraph(t, "recursion.vfg.yaml")
	a := newTestAnalysis(t, g, 30000)
	policy := a.Policy()
	cs1, _ := g.CallSiteByName("cs1")
	cs3, _ := g.CallSiteByName("cs3")

	// crossing a recursive call site never pushes, in either direction
	for _, s := range []dda.State{dda.S1, dda.S3} {
		for _, kind := range []vfg.EdgeKind{vfg.Call, vfg.Return} {
			it := dda.Item{State: s, Contexts: dda.CallString{cs3}}
			require.True(t, policy.Transition(it, &it, &vfg.Edge{Kind: kind, CallSite: cs1}))
			assert.Equal(t, dda.CallString{cs3}, it.Contexts, "state %v, edge %v", s, kind)

			it = dda.Item{State: s, Contexts: dda.CallString{cs3, cs1, cs1}}
			require.True(t, policy.Transition(it, &it, &vfg.Edge{Kind: kind, CallSite: cs1}))
			assert.Equal(t, dda.CallString{cs3}, it.Contexts, "recursive frames are popped")
		}
	}

	r := a.Query(g.MustLookup("r"))
	assert.False(t, r.Partial)
	assert.Equal(t, nodes(g, "o"), r.PointsToNodes())
}

func TestGuardedRecursion(t *testing.T) {
	g := loadGraph(t, "recursion_guarded.vfg.yaml")
	r := g.MustLookup("r")

	// o2 flows into the cycle only under c, the cycle returns to f only under !c
	a := newTestAnalysis(t, g, 30000)
	res := a.Query(r)
	assert.False(t, res.Partial)
	assert.False(t, a.IsOutOfBudget(r))
	assert.Equal(t, nodes(g, "o"), res.PointsToNodes())
	assert.Positive(t, a.Stats().Rejected)
	assert.True(t, a.IsAlias(r, g.MustLookup("p")))
	assert.False(t, a.IsAlias(r, g.MustLookup("t")))

	ctx := newContextEngine(t, g)
	assert.Equal(t, nodes(g, "o", "o2"), ctx.ComputeAlias(r).PointsToNodes())

	cfg := config.NewDefault()
	cfg.Sensitivity = config.PathSensitivity
	cfg.VisitedIdentity = config.FullStackIdentity
	cfg.MaxStackDepth = 2
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	full, err := New(g, nil, LiteralAlgebra{}, logger, cfg)
	require.NoError(t, err)
	res = full.Query(r)
	assert.False(t, res.Partial)
	assert.Equal(t, nodes(g, "o"), res.PointsToNodes())
}

func TestPathPolicyCompatible(t *testing.T) {
	p := NewPathPolicy(LiteralAlgebra{}, nil, 0)
	c, notC := Literal("c"), Literal("!c")
	assert.True(t, p.Compatible(dda.Target{Node: 1, Cond: c}, dda.Target{Node: 1, Cond: c}))
	assert.False(t, p.Compatible(dda.Target{Node: 1, Cond: c}, dda.Target{Node: 1, Cond: notC}))
	assert.False(t, p.Compatible(dda.Target{Node: 1}, dda.Target{Node: 2}))
	assert.False(t, p.Compatible(
		dda.Target{Node: 1, Context: dda.CallString{1}},
		dda.Target{Node: 1, Context: dda.CallString{2}}))
	assert.True(t, p.Compatible(
		dda.Target{Node: 1, Context: dda.CallString{1}},
		dda.Target{Node: 1}), "a target without context is a singleton")
	assert.True(t, p.IsCondCompatible(PathCond{Paths: c}, PathCond{}, false))
	assert.Equal(t, config.PathSensitivity, p.Name())
	assert.Equal(t, dda.ClearPerQuery, p.Reset())
	assert.Equal(t, "true", p.InitialCondition().String())
}
