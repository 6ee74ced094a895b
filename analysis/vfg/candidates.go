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

package vfg

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CandidateIndex maps every node to the load and store edges that are reachable from it when the edges of the
// value-flow graph are seen as undirected. A store can only match a load if it is reachable from the load's source
// in that sense.
type CandidateIndex struct {
	component []int
	stores    map[int][]*Edge
	loads     map[int][]*Edge
}

// NewCandidateIndex computes the connected components of g seen as an undirected graph.
func NewCandidateIndex(g ValueFlowGraph) *CandidateIndex {
	n := g.NumNodes()
	ug := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		ug.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		for _, e := range g.OutEdges(NodeID(i)) {
			// gonum panics on self edges; a self edge does not change connectivity anyway
			if e.Src == e.Dst {
				continue
			}
			ug.SetEdge(ug.NewEdge(simple.Node(e.Src), simple.Node(e.Dst)))
		}
	}

	idx := &CandidateIndex{
		component: make([]int, n),
		stores:    map[int][]*Edge{},
		loads:     map[int][]*Edge{},
	}
	for c, nodes := range topo.ConnectedComponents(ug) {
		for _, node := range nodes {
			idx.component[node.ID()] = c
		}
	}
	for _, e := range g.EdgesOfKind(Store) {
		c := idx.component[e.Dst]
		idx.stores[c] = append(idx.stores[c], e)
	}
	for _, e := range g.EdgesOfKind(Load) {
		c := idx.component[e.Src]
		idx.loads[c] = append(idx.loads[c], e)
	}
	return idx
}

// Component returns the index of the connected component of n
func (c *CandidateIndex) Component(n NodeID) int {
	return c.component[n]
}

// CandidateStores returns the store edges that may match the load edge
func (c *CandidateIndex) CandidateStores(load *Edge) []*Edge {
	return c.stores[c.component[load.Src]]
}

// CandidateLoads returns the load edges that may match the store edge
func (c *CandidateIndex) CandidateLoads(store *Edge) []*Edge {
	return c.loads[c.component[store.Dst]]
}
