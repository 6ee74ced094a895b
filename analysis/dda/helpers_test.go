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
	"io"
	"testing"

	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"github.com/awslabs/ar-go-dda/internal/graphutil"
	"github.com/stretchr/testify/require"
)

// graphBuilder builds graphs by node name
type graphBuilder struct {
	t *testing.T
	g *vfg.Graph
}

func newGraphBuilder(t *testing.T) *graphBuilder {
	return &graphBuilder{t: t, g: vfg.New()}
}

func (b *graphBuilder) pointers(names ...string) *graphBuilder {
	for _, name := range names {
		_, err := b.g.AddNode(name, vfg.Pointer)
		require.NoError(b.t, err)
	}
	return b
}

func (b *graphBuilder) objects(names ...string) *graphBuilder {
	for _, name := range names {
		_, err := b.g.AddNode(name, vfg.Object)
		require.NoError(b.t, err)
	}
	return b
}

func (b *graphBuilder) site(name, caller, callee string) vfg.CallSiteID {
	id, err := b.g.AddCallSite(name, caller, callee)
	require.NoError(b.t, err)
	return id
}

func (b *graphBuilder) edge(kind vfg.EdgeKind, src, dst string) *graphBuilder {
	return b.add(vfg.Edge{Kind: kind, Src: b.n(src), Dst: b.n(dst)})
}

func (b *graphBuilder) field(src, dst string, offset int) *graphBuilder {
	return b.add(vfg.Edge{Kind: vfg.FieldAccess, Src: b.n(src), Dst: b.n(dst), Offset: offset})
}

func (b *graphBuilder) variant(src, dst string) *graphBuilder {
	return b.add(vfg.Edge{Kind: vfg.FieldAccess, Src: b.n(src), Dst: b.n(dst), Variant: true})
}

func (b *graphBuilder) call(kind vfg.EdgeKind, src, dst string, site vfg.CallSiteID) *graphBuilder {
	return b.add(vfg.Edge{Kind: kind, Src: b.n(src), Dst: b.n(dst), CallSite: site})
}

func (b *graphBuilder) add(e vfg.Edge) *graphBuilder {
	_, err := b.g.AddEdge(e)
	require.NoError(b.t, err)
	return b
}

func (b *graphBuilder) n(name string) vfg.NodeID {
	return b.g.MustLookup(name)
}

func (b *graphBuilder) build() *vfg.Graph {
	require.NoError(b.t, b.g.Validate())
	return b.g
}

// endToEndGraph is p = &o; *q = p; y = *q
func endToEndGraph(t *testing.T) *graphBuilder {
	b := newGraphBuilder(t).pointers("p", "q", "y", "w").objects("o")
	b.edge(vfg.Address, "o", "p").edge(vfg.Store, "p", "q").edge(vfg.Load, "q", "y")
	return b
}

// fieldGraph is base = &o; f4 = &base->f4; f8 = &base->f8; a = f4; c = f8
func fieldGraph(t *testing.T) *graphBuilder {
	b := newGraphBuilder(t).pointers("base", "f4", "f8", "a", "c").objects("o")
	b.edge(vfg.Address, "o", "base").field("base", "f4", 4).field("base", "f8", 8)
	b.edge(vfg.Copy, "f4", "a").edge(vfg.Copy, "f8", "c")
	return b
}

// bracketGraph is A = &oa; C = &oc; D = &od; B = &A->f4 or &C->f4 or &D->f8; E = &A->f8; G = &D->f8;
// *E = v1; *G = v2; w = *B
func bracketGraph(t *testing.T) *graphBuilder {
	b := newGraphBuilder(t).pointers("A", "B", "C", "D", "E", "G", "v1", "v2", "w").
		objects("oa", "oc", "od", "o1", "o2")
	b.edge(vfg.Address, "oa", "A").edge(vfg.Address, "oc", "C").edge(vfg.Address, "od", "D")
	b.edge(vfg.Address, "o1", "v1").edge(vfg.Address, "o2", "v2")
	b.field("A", "B", 4).field("C", "B", 4).field("D", "B", 8)
	b.field("A", "E", 8).field("D", "G", 8)
	b.edge(vfg.Store, "v1", "E").edge(vfg.Store, "v2", "G").edge(vfg.Load, "B", "w")
	return b
}

// heapChainGraph is q = *pp; t = q; base = &o; v = &base->f4; *q = v; w = *t. Nothing is stored in *pp, so q
// and t have no targets.
func heapChainGraph(t *testing.T) *graphBuilder {
	b := newGraphBuilder(t).pointers("pp", "q", "t", "base", "v", "w").objects("o")
	b.edge(vfg.Load, "pp", "q").edge(vfg.Copy, "q", "t")
	b.edge(vfg.Address, "o", "base").field("base", "v", 4)
	b.edge(vfg.Store, "v", "q").edge(vfg.Load, "t", "w")
	return b
}

// callGraph is r1 = f(p1); r2 = f(p2) with f(x) { return x }
func callGraph(t *testing.T) *graphBuilder {
	b := newGraphBuilder(t).pointers("p1", "p2", "x", "r1", "r2").objects("o1", "o2")
	cs1 := b.site("cs1", "main", "f")
	cs2 := b.site("cs2", "main", "f")
	b.edge(vfg.Address, "o1", "p1").edge(vfg.Address, "o2", "p2")
	b.call(vfg.Call, "p1", "x", cs1).call(vfg.Call, "p2", "x", cs2)
	b.call(vfg.Return, "x", "r1", cs1).call(vfg.Return, "x", "r2", cs2)
	return b
}

// indirectionGraph is a = &o; p = a; q = a; y = &o2; *q = y; w = *p
func indirectionGraph(t *testing.T) *graphBuilder {
	b := newGraphBuilder(t).pointers("a", "p", "q", "y", "w").objects("o", "o2")
	b.edge(vfg.Address, "o", "a").edge(vfg.Copy, "a", "p").edge(vfg.Copy, "a", "q")
	b.edge(vfg.Address, "o2", "y").edge(vfg.Store, "y", "q").edge(vfg.Load, "p", "w")
	return b
}

// chainGraph is a = &o; b = a; c = b; d = c
func chainGraph(t *testing.T) *graphBuilder {
	b := newGraphBuilder(t).pointers("a", "b", "c", "d").objects("o")
	b.edge(vfg.Address, "o", "a").edge(vfg.Copy, "a", "b").edge(vfg.Copy, "b", "c").edge(vfg.Copy, "c", "d")
	return b
}

// recursiveGraph is main calls f(p) at cs3, f calls g(x) at cs1, g calls f(y) at cs2 and f returns x to r
func recursiveGraph(t *testing.T) *graphBuilder {
	b := newGraphBuilder(t).pointers("p", "x", "y", "r").objects("o")
	cs1 := b.site("cs1", "f", "g")
	cs2 := b.site("cs2", "g", "f")
	cs3 := b.site("cs3", "main", "f")
	b.edge(vfg.Address, "o", "p")
	b.call(vfg.Call, "p", "x", cs3).call(vfg.Call, "x", "y", cs1).call(vfg.Call, "y", "x", cs2)
	b.call(vfg.Return, "x", "r", cs3)
	return b
}

type configOption func(*config.Config)

func withBudget(budget int) configOption {
	return func(c *config.Config) { c.QueryBudget = budget }
}

func withFullStack(depth int) configOption {
	return func(c *config.Config) {
		c.VisitedIdentity = config.FullStackIdentity
		c.MaxStackDepth = depth
	}
}

func withoutPruning() configOption {
	return func(c *config.Config) { c.PruneCandidates = false }
}

func testConfig(s config.Sensitivity, opts ...configOption) *config.Config {
	cfg := config.NewDefault()
	cfg.Sensitivity = s
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newTestEngine(t *testing.T, g vfg.ValueFlowGraph, cg *graphutil.CallGraph, s config.Sensitivity,
	opts ...configOption) *Engine {
	cfg := testConfig(s, opts...)
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	e, err := New(g, cg, logger, cfg)
	require.NoError(t, err)
	return e
}

var allSensitivities = []config.Sensitivity{
	config.FlowSensitivity,
	config.FieldSensitivity,
	config.ContextSensitivity,
}
