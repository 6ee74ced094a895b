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

// Package vfg defines the value-flow graph consumed by the demand-driven alias analyses, and an in-memory
// implementation of it that can be loaded from yaml files.
//
// Nodes are pointers, objects (the sources of Address edges) or other values. Edges are labelled by an EdgeKind.
// The graph is never mutated by the analyses.
package vfg

import (
	"fmt"

	"github.com/awslabs/ar-go-dda/internal/graphutil"
)

// ValueFlowGraph is the interface of the graph the analyses run on.
type ValueFlowGraph interface {
	// NumNodes returns the number of nodes. Node identifiers are in [0, NumNodes()).
	NumNodes() int

	// IsValidPointer returns true if the node is a legitimate query target
	IsValidPointer(n NodeID) bool

	// InEdges returns the edges whose destination is n. If kinds is not empty, only edges of those kinds are
	// returned.
	InEdges(n NodeID, kinds ...EdgeKind) []*Edge

	// OutEdges returns the edges whose source is n. If kinds is not empty, only edges of those kinds are returned.
	OutEdges(n NodeID, kinds ...EdgeKind) []*Edge

	// EdgesOfKind returns all the edges of the given kind
	EdgesOfKind(kind EdgeKind) []*Edge

	// NodeName returns a printable name of the node
	NodeName(n NodeID) string
}

// NodeKind distinguishes pointers from objects and other values
type NodeKind int

const (
	// Pointer nodes are valid query targets
	Pointer NodeKind = iota
	// Object nodes are abstract memory locations, sources of Address edges
	Object
	// Value nodes are neither pointers nor objects (e.g. integers flowing through memory)
	Value
)

func (k NodeKind) String() string {
	switch k {
	case Pointer:
		return "pointer"
	case Object:
		return "object"
	default:
		return "value"
	}
}

type adjacency [numEdgeKinds][]*Edge

// Graph is an in-memory value-flow graph
type Graph struct {
	names  []string
	kinds  []NodeKind
	byName map[string]NodeID
	edges  []*Edge
	in     []adjacency
	out    []adjacency
	byKind adjacency

	sites     []graphutil.CallSite
	siteNames map[string]CallSiteID
}

// New returns an empty graph
func New() *Graph {
	return &Graph{
		byName:    map[string]NodeID{},
		siteNames: map[string]CallSiteID{},
	}
}

// AddNode adds a node named name to the graph and returns its identifier. If a node with that name already exists
// with the same kind, its identifier is returned.
func (g *Graph) AddNode(name string, kind NodeKind) (NodeID, error) {
	if id, ok := g.byName[name]; ok {
		if g.kinds[id] != kind {
			return id, fmt.Errorf("node %q already declared as %s, not %s", name, g.kinds[id], kind)
		}
		return id, nil
	}
	id := NodeID(len(g.names))
	g.names = append(g.names, name)
	g.kinds = append(g.kinds, kind)
	g.in = append(g.in, adjacency{})
	g.out = append(g.out, adjacency{})
	g.byName[name] = id
	return id, nil
}

// AddCallSite declares a call site named name from function caller to function callee
func (g *Graph) AddCallSite(name string, caller string, callee string) (CallSiteID, error) {
	if _, ok := g.siteNames[name]; ok {
		return 0, fmt.Errorf("call site %q declared twice", name)
	}
	// call site identifiers start at 1, 0 means no call site
	id := CallSiteID(len(g.sites) + 1)
	g.sites = append(g.sites, graphutil.CallSite{ID: int(id), Caller: caller, Callee: callee})
	g.siteNames[name] = id
	return id, nil
}

// AddEdge adds a copy of e to the graph and returns the edge stored in the graph. The ID of e is ignored.
func (g *Graph) AddEdge(e Edge) (*Edge, error) {
	if !g.hasNode(e.Src) || !g.hasNode(e.Dst) {
		return nil, fmt.Errorf("edge %s has an endpoint that is not in the graph", &e)
	}
	if e.Kind < 0 || e.Kind >= numEdgeKinds {
		return nil, fmt.Errorf("edge %s has an invalid kind", &e)
	}
	switch e.Kind {
	case Address:
		if g.kinds[e.Src] != Object {
			return nil, fmt.Errorf("address edge %s: source %q is not an object", &e, g.names[e.Src])
		}
	case Call, Return:
		if int(e.CallSite) < 0 || int(e.CallSite) > len(g.sites) {
			return nil, fmt.Errorf("edge %s: unknown call site", &e)
		}
	default:
		if g.kinds[e.Src] == Object {
			return nil, fmt.Errorf("edge %s: object %q can only be the source of an address edge", &e,
				g.names[e.Src])
		}
	}
	if g.kinds[e.Dst] == Object {
		return nil, fmt.Errorf("edge %s: object %q cannot have incoming edges", &e, g.names[e.Dst])
	}
	stored := e
	stored.ID = EdgeID(len(g.edges))
	g.edges = append(g.edges, &stored)
	g.in[e.Dst][e.Kind] = append(g.in[e.Dst][e.Kind], &stored)
	g.out[e.Src][e.Kind] = append(g.out[e.Src][e.Kind], &stored)
	g.byKind[e.Kind] = append(g.byKind[e.Kind], &stored)
	return &stored, nil
}

// Validate checks the structural invariants the analyses rely on: every object has exactly one outgoing edge,
// which is an address edge.
func (g *Graph) Validate() error {
	for id, kind := range g.kinds {
		if kind != Object {
			continue
		}
		n := NodeID(id)
		out := g.OutEdges(n)
		if len(out) != 1 || out[0].Kind != Address {
			return fmt.Errorf("object %q must have exactly one outgoing address edge, has %d edges",
				g.names[n], len(out))
		}
	}
	return nil
}

func (g *Graph) hasNode(n NodeID) bool {
	return n >= 0 && int(n) < len(g.names)
}

// NumNodes returns the number of nodes in the graph
func (g *Graph) NumNodes() int {
	return len(g.names)
}

// NumEdges returns the number of edges in the graph
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// Edge returns the edge with identifier id
func (g *Graph) Edge(id EdgeID) *Edge {
	return g.edges[id]
}

// IsValidPointer returns true if n is a pointer node
func (g *Graph) IsValidPointer(n NodeID) bool {
	return g.hasNode(n) && g.kinds[n] == Pointer
}

// Kind returns the kind of node n
func (g *Graph) Kind(n NodeID) NodeKind {
	return g.kinds[n]
}

// NodeName returns the name of n
func (g *Graph) NodeName(n NodeID) string {
	if !g.hasNode(n) {
		return fmt.Sprintf("#%d", n)
	}
	return g.names[n]
}

// Lookup returns the node with the given name
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// MustLookup returns the node with the given name, and panics if there is none.
func (g *Graph) MustLookup(name string) NodeID {
	id, ok := g.byName[name]
	if !ok {
		panic(fmt.Sprintf("no node named %q", name))
	}
	return id
}

// CallSiteByName returns the identifier of the call site with the given name
func (g *Graph) CallSiteByName(name string) (CallSiteID, bool) {
	id, ok := g.siteNames[name]
	return id, ok
}

// ValidPointers returns the valid pointers of the graph, in increasing order
func (g *Graph) ValidPointers() []NodeID {
	var ptrs []NodeID
	for id, kind := range g.kinds {
		if kind == Pointer {
			ptrs = append(ptrs, NodeID(id))
		}
	}
	return ptrs
}

// InEdges returns the incoming edges of n of the given kinds, or all incoming edges if no kind is given
func (g *Graph) InEdges(n NodeID, kinds ...EdgeKind) []*Edge {
	return collect(&g.in[n], kinds)
}

// OutEdges returns the outgoing edges of n of the given kinds, or all outgoing edges if no kind is given
func (g *Graph) OutEdges(n NodeID, kinds ...EdgeKind) []*Edge {
	return collect(&g.out[n], kinds)
}

// EdgesOfKind returns all the edges of kind k
func (g *Graph) EdgesOfKind(k EdgeKind) []*Edge {
	return g.byKind[k]
}

// CallGraph returns the call graph induced by the call sites of the graph
func (g *Graph) CallGraph() *graphutil.CallGraph {
	return graphutil.NewCallGraph(g.sites)
}

func collect(adj *adjacency, kinds []EdgeKind) []*Edge {
	if len(kinds) == 1 {
		return adj[kinds[0]]
	}
	if len(kinds) == 0 {
		kinds = AllEdgeKinds()
	}
	var edges []*Edge
	for _, k := range kinds {
		edges = append(edges, adj[k]...)
	}
	return edges
}
