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

package graphutil

import (
	"golang.org/x/exp/slices"
)

// CallSite is a call from the function Caller to the function Callee. ID is the identifier of the call site in the
// value-flow graph.
type CallSite struct {
	ID     int
	Caller string
	Callee string
}

// CallGraph is the call graph induced by a list of call sites. Functions are numbered in order of first appearance.
// It implements graph.Iterator to work with the yourbasic graph library.
type CallGraph struct {
	// Sites are the call sites the graph was built from
	Sites []CallSite

	funcs     []string
	funcIndex map[string]int

	// Keys are all the function indices of the graph, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means that function x calls function y
	Edges map[int64]map[int64]bool
}

// NewCallGraph returns the call graph of the call sites
func NewCallGraph(sites []CallSite) *CallGraph {
	cg := &CallGraph{
		Sites:     sites,
		funcIndex: map[string]int{},
		Edges:     map[int64]map[int64]bool{},
	}
	for _, site := range sites {
		caller := int64(cg.addFunc(site.Caller))
		callee := int64(cg.addFunc(site.Callee))
		cg.Edges[caller][callee] = true
	}
	return cg
}

func (c *CallGraph) addFunc(name string) int {
	if i, ok := c.funcIndex[name]; ok {
		return i
	}
	i := len(c.funcs)
	c.funcs = append(c.funcs, name)
	c.funcIndex[name] = i
	c.Keys = append(c.Keys, int64(i))
	c.Edges[int64(i)] = map[int64]bool{}
	return i
}

// subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in include are kept. Function indices stay consistent across subgraphs.
func subgraph(original *CallGraph, include []int64) *CallGraph {
	keep := make(map[int64]bool, len(include))
	for _, i := range include {
		keep[i] = true
	}
	edges := make(map[int64]map[int64]bool, len(include))
	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if keep[e] {
				edges[i][e] = true
			}
		}
	}
	return &CallGraph{
		Sites:     original.Sites,
		funcs:     original.funcs,
		funcIndex: original.funcIndex,
		Keys:      slices.Clone(include),
		Edges:     edges,
	}
}

// Order implements the order of the graph.Iterator interface for the CallGraph
func (c *CallGraph) Order() int {
	return len(c.funcs)
}

// Visit implements the graph.Iterator interface for the CallGraph
func (c *CallGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for _, w := range c.Successors(int64(v)) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Successors returns the functions called by function v, sorted
func (c *CallGraph) Successors(v int64) []int64 {
	var succs []int64
	for w := range c.Edges[v] {
		succs = append(succs, w)
	}
	slices.Sort(succs)
	return succs
}

// FuncName returns the name of the function with index i
func (c *CallGraph) FuncName(i int64) string {
	if i < 0 || int(i) >= len(c.funcs) {
		return ""
	}
	return c.funcs[i]
}

// FuncIndex returns the index of the function with the given name
func (c *CallGraph) FuncIndex(name string) (int64, bool) {
	i, ok := c.funcIndex[name]
	return int64(i), ok
}

// RecursiveSites returns the identifiers of the call sites whose caller and callee belong to the same cycle of the
// call graph. Self-recursive calls are included.
func (c *CallGraph) RecursiveSites() map[int]bool {
	inCycle := map[int64]int{}
	for i, scc := range CyclicComponents(c.Keys, c.Successors) {
		for _, f := range scc {
			inCycle[f] = i
		}
	}
	sites := map[int]bool{}
	for _, site := range c.Sites {
		caller, _ := c.FuncIndex(site.Caller)
		callee, _ := c.FuncIndex(site.Callee)
		ci, ok1 := inCycle[caller]
		cj, ok2 := inCycle[callee]
		if ok1 && ok2 && ci == cj {
			sites[site.ID] = true
		}
	}
	return sites
}
