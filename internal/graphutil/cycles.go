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
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// FindAllElementaryCycles finds all elementary cycles in the call graph, including self-recursive calls.
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
//
// Each cycle starts and ends with its least function index.
func FindAllElementaryCycles(cg *CallGraph) [][]int64 {
	s := &johnson{}
	keys := cg.Keys
	for len(keys) > 0 {
		fg := subgraph(cg, keys)
		var least []int64
		for _, component := range graph.StrongComponents(fg) {
			c := make([]int64, len(component))
			for i, x := range component {
				c[i] = int64(x)
			}
			if !isCyclic(fg, c) {
				continue
			}
			slices.Sort(c)
			if least == nil || c[0] < least[0] {
				least = c
			}
		}
		if least == nil {
			break
		}
		start := least[0]
		s.reset()
		s.circuit(start, start, subgraph(cg, least))
		i, _ := slices.BinarySearch(keys, start)
		keys = keys[i+1:]
	}
	return s.cycles
}

func isCyclic(g *CallGraph, component []int64) bool {
	if len(component) >= 2 {
		return true
	}
	return len(component) == 1 && g.Edges[component[0]][component[0]]
}

type johnson struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (s *johnson) reset() {
	s.blocked = map[int64]bool{}
	s.blist = map[int64]map[int64]bool{}
	s.stack = []int64{}
}

func (s *johnson) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *johnson) circuit(v int64, start int64, g *CallGraph) bool {
	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range g.Successors(v) {
		if w == start {
			cycle := append(slices.Clone(s.stack), w)
			s.cycles = append(s.cycles, cycle)
			found = true
		} else if !s.blocked[w] {
			if s.circuit(w, start, g) {
				found = true
			}
		}
	}

	if found {
		s.unblock(v)
	} else {
		for _, w := range g.Successors(v) {
			if s.blist[w] == nil {
				s.blist[w] = map[int64]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found
}
