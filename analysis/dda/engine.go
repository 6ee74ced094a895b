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

// Package dda implements demand-driven alias analyses over value-flow graphs.
//
// A query for a node n runs a worklist search from n. The search goes backwards along the value flow (state S1)
// until it finds the objects whose address may flow to n (state S2), and then forward from those objects (state
// S3) to every node that may hold the same address. Loads and stores are bridged by the LoadStoreMatcher, which
// asks the engine for the points-to targets of other nodes in nested searches.
//
// The sensitivity of the analysis is a Policy: the flow policy accepts every path, the field and context
// policies only accept paths whose field accesses and calls/returns are balanced.
package dda

import (
	"fmt"

	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"github.com/awslabs/ar-go-dda/internal/graphutil"
	"golang.org/x/tools/container/intsets"
)

// Result is the result of a query
type Result struct {
	// Query is the node queried
	Query vfg.NodeID

	// PointsTo is the set of objects the query points to, without pending fields
	PointsTo *intsets.Sparse

	// Aliases is the set of nodes recorded as aliases of the query, including the facts discovered by earlier
	// queries
	Aliases *intsets.Sparse

	// Targets are all the points-to facts of the query
	Targets []Target

	// Partial is true if the search stopped because the budget was exceeded
	Partial bool
}

func emptyResult(n vfg.NodeID) Result {
	return Result{Query: n, PointsTo: &intsets.Sparse{}, Aliases: &intsets.Sparse{}}
}

// PointsToNodes returns the objects pointed to by the query, in increasing order
func (r Result) PointsToNodes() []vfg.NodeID {
	return toNodes(r.PointsTo)
}

// AliasNodes returns the aliases of the query, in increasing order
func (r Result) AliasNodes() []vfg.NodeID {
	return toNodes(r.Aliases)
}

func toNodes(s *intsets.Sparse) []vfg.NodeID {
	if s == nil {
		return nil
	}
	var nodes []vfg.NodeID
	for _, x := range s.AppendTo(nil) {
		nodes = append(nodes, vfg.NodeID(x))
	}
	return nodes
}

// Stats are counters accumulated by an engine across queries
type Stats struct {
	Queries      int
	SubQueries   int
	Steps        int
	Rejected     int
	CacheHits    int
	MatchedPairs int
	GuardSkips   int
	OutOfBudget  int
}

// frame is the state of one search. Nested searches started by the matcher get their own frame.
type frame struct {
	query      vfg.NodeID
	worklist   []Item
	visited    map[vfg.NodeID]map[visitKey]bool
	savedS1    map[vfg.NodeID][]savedItem
	savedS3    map[vfg.NodeID][]savedItem
	pts        map[vfg.NodeID]*intsets.Sparse
	targets    map[vfg.NodeID][]Target
	targetKeys map[vfg.NodeID]map[string]bool
	// exhausted is set when the budget was exceeded during the search
	exhausted bool
	// incomplete is set when a load/store pair was skipped by the recursion guard
	incomplete bool
}

// savedItem is an item saved before starting a search for the aliases of the pointer a load reads from or a store
// writes to. The edge is that load or store.
type savedItem struct {
	item Item
	edge *vfg.Edge
}

func newFrame(query vfg.NodeID) *frame {
	return &frame{
		query:      query,
		visited:    map[vfg.NodeID]map[visitKey]bool{},
		savedS1:    map[vfg.NodeID][]savedItem{},
		savedS3:    map[vfg.NodeID][]savedItem{},
		pts:        map[vfg.NodeID]*intsets.Sparse{},
		targets:    map[vfg.NodeID][]Target{},
		targetKeys: map[vfg.NodeID]map[string]bool{},
	}
}

// markVisited returns false if the item was already visited
func (fr *frame) markVisited(n vfg.NodeID, k visitKey) bool {
	keys, ok := fr.visited[n]
	if !ok {
		keys = map[visitKey]bool{}
		fr.visited[n] = keys
	}
	if keys[k] {
		return false
	}
	keys[k] = true
	return true
}

func (fr *frame) addTarget(root vfg.NodeID, t Target) {
	keys, ok := fr.targetKeys[root]
	if !ok {
		keys = map[string]bool{}
		fr.targetKeys[root] = keys
	}
	if keys[t.key()] {
		return
	}
	keys[t.key()] = true
	fr.targets[root] = append(fr.targets[root], t)
	if len(t.Fields) == 0 {
		pts, ok := fr.pts[root]
		if !ok {
			pts = &intsets.Sparse{}
			fr.pts[root] = pts
		}
		pts.Insert(int(t.Node))
	}
}

// Engine is a demand-driven alias analysis. An engine is not safe for concurrent use: queries must be issued
// sequentially, with ResetStatePerQuery between independent queries.
type Engine struct {
	graph     vfg.ValueFlowGraph
	policy    Policy
	logger    *config.LogGroup
	config    *config.Config
	fullStack bool

	recorder *AliasRecorder
	matches  *MatchRelation
	matcher  *LoadStoreMatcher
	cache    *QueryCache
	budget   *BudgetGuard

	frames []*frame
	stats  Stats
}

// NewEngine returns an engine answering queries over g with the given policy. The logger and the config may be
// nil, in which case the defaults are used.
func NewEngine(g vfg.ValueFlowGraph, policy Policy, logger *config.LogGroup, cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	e := &Engine{
		graph:     g,
		policy:    policy,
		logger:    logger,
		config:    cfg,
		fullStack: cfg.UsesFullStackIdentity(),
		recorder:  NewAliasRecorder(g),
		cache:     NewQueryCache(cfg.EnableCache),
		budget:    NewBudgetGuard(cfg.QueryBudget),
	}
	e.matches = NewMatchRelation(g, e.recorder)
	var index *vfg.CandidateIndex
	if cfg.PruneCandidates {
		index = vfg.NewCandidateIndex(g)
	}
	e.matcher = newLoadStoreMatcher(e, index)
	return e
}

// New returns an engine with the policy named in the config. Recursive call sites are computed from the call
// graph cg, or from the call sites of g if cg is nil.
func New(g vfg.ValueFlowGraph, cg *graphutil.CallGraph, logger *config.LogGroup,
	cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	recursion := vfg.RecursionOf(g)
	if cg != nil {
		recursion = vfg.NewRecursion(cg)
	}
	policy, err := NewPolicy(cfg.Sensitivity, recursion, StackLimit(cfg))
	if err != nil {
		return nil, fmt.Errorf("could not create engine: %w", err)
	}
	return NewEngine(g, policy, logger, cfg), nil
}

// StackLimit returns the maximum length of the field and context stacks. Stacks are only limited when they are
// part of the identity of the items.
func StackLimit(cfg *config.Config) int {
	if cfg.UsesFullStackIdentity() {
		return cfg.MaxStackDepth
	}
	return 0
}

// Policy returns the policy of the engine
func (e *Engine) Policy() Policy {
	return e.policy
}

// Graph returns the graph the engine runs on
func (e *Engine) Graph() vfg.ValueFlowGraph {
	return e.graph
}

// ComputeAlias runs a search for n and returns its points-to targets and aliases. Invalid query targets have an
// empty result. If the budget is exceeded, the result is partial.
func (e *Engine) ComputeAlias(n vfg.NodeID) Result {
	e.stats.Queries++
	if !e.graph.IsValidPointer(n) {
		e.logger.Debugf("Node %s is not a valid query target\n", e.graph.NodeName(n))
		return emptyResult(n)
	}
	if r, ok := e.cache.Lookup(n); ok {
		e.logger.Debugf("Cached result for %s\n", e.graph.NodeName(n))
		r.Aliases = e.recorder.Row(n)
		return r
	}
	r, complete := e.run(n)
	if complete {
		e.cache.Store(n, r)
	}
	if r.Partial {
		e.stats.OutOfBudget++
		e.logger.Warnf("Query for %s exceeded the budget of %d steps\n", e.graph.NodeName(n), e.budget.Budget())
	}
	return r
}

// PointsTo returns the points-to targets of n. When called during a search, it runs a nested search sharing the
// state of the current query.
func (e *Engine) PointsTo(n vfg.NodeID) []Target {
	if len(e.frames) == 0 {
		return e.ComputeAlias(n).Targets
	}
	return e.subQuery(n).Targets
}

// IsAlias returns true if a and b are the same node or have been recorded as aliases. Callers typically query
// both nodes first.
func (e *Engine) IsAlias(a, b vfg.NodeID) bool {
	return e.recorder.IsAlias(a, b)
}

// Aliases returns the nodes recorded as aliases of n
func (e *Engine) Aliases(n vfg.NodeID) []vfg.NodeID {
	return e.recorder.Aliases(n)
}

// Recorder returns the alias relation of the engine
func (e *Engine) Recorder() *AliasRecorder {
	return e.recorder
}

// Matches returns the load/store pairs matched by the engine
func (e *Engine) Matches() *MatchRelation {
	return e.matches
}

// OutOfBudget returns true if the budget was exceeded since the last reset
func (e *Engine) OutOfBudget() bool {
	return e.budget.Exceeded()
}

// Stats returns the counters of the engine
func (e *Engine) Stats() Stats {
	s := e.stats
	s.CacheHits = e.cache.Hits()
	return s
}

// ResetStatePerQuery must be called between independent queries. It clears the search state, the recursion guards
// and the budget. Policies that are not valid across queries also clear the cached results, the matched pairs and
// what the policy learned, so their results do not depend on the order of the queries.
// The alias relation and the match relation are kept.
func (e *Engine) ResetStatePerQuery() {
	e.frames = nil
	e.matcher.resetGuards()
	e.budget.Reset()
	if e.policy.Reset() == ClearPerQuery {
		e.cache.Clear()
		e.matcher.clearMatched()
		e.policy.Clear()
	}
}

// Reset clears all the state of the engine, including the alias relation and the statistics
func (e *Engine) Reset() {
	e.ResetStatePerQuery()
	e.policy.Clear()
	e.cache = NewQueryCache(e.config.EnableCache)
	e.matcher.clearMatched()
	e.recorder.Clear()
	e.matches.Clear()
	e.stats = Stats{}
}

func (e *Engine) subQuery(n vfg.NodeID) Result {
	e.stats.SubQueries++
	if r, ok := e.cache.Lookup(n); ok {
		return r
	}
	if !e.graph.IsValidPointer(n) {
		return emptyResult(n)
	}
	r, complete := e.run(n)
	if complete {
		e.cache.Store(n, r)
	}
	return r
}

// run searches from n in a new frame. Returns the result and whether the search was complete.
func (e *Engine) run(n vfg.NodeID) (Result, bool) {
	var parent *frame
	if len(e.frames) > 0 {
		parent = e.frames[len(e.frames)-1]
	}
	fr := newFrame(n)
	e.frames = append(e.frames, fr)
	defer func() { e.frames = e.frames[:len(e.frames)-1] }()

	e.logger.Debugf("Searching from %s (depth %d)\n", e.graph.NodeName(n), len(e.frames))
	e.push(fr, Item{Cur: n, Root: n, State: S1, Cond: e.policy.InitialCondition()})
	upward := e.policy.UpwardPropagation()
	for len(fr.worklist) > 0 {
		if e.budget.Step() {
			fr.exhausted = true
			break
		}
		it := fr.worklist[len(fr.worklist)-1]
		fr.worklist = fr.worklist[:len(fr.worklist)-1]
		e.stats.Steps++
		if e.logger.LogsTrace() {
			e.logger.Tracef("[%s] %s at %s\n", e.graph.NodeName(n), it, e.graph.NodeName(it.Cur))
		}

		if upward {
			e.propagateUp(fr, it)
		}
		switch it.State {
		case S1:
			e.handleS1(fr, it)
		case S2:
			e.handleS2(fr, it)
		case S3:
			e.handleS3(fr, it)
		default:
			panic(fmt.Sprintf("item %s has an unknown state", it))
		}
		if upward {
			e.propagateDown(fr, it)
		}
	}
	if e.budget.Exceeded() {
		fr.exhausted = true
	}

	r := Result{
		Query:    n,
		PointsTo: &intsets.Sparse{},
		Aliases:  e.recorder.Row(n),
		Targets:  fr.targets[n],
		Partial:  fr.exhausted,
	}
	if pts, ok := fr.pts[n]; ok {
		r.PointsTo.Copy(pts)
	}
	if parent != nil {
		parent.exhausted = parent.exhausted || fr.exhausted
		parent.incomplete = parent.incomplete || fr.incomplete
	}
	return r, !fr.exhausted && !fr.incomplete
}

// push enqueues the item if it has not been visited, and records the facts it proves
func (e *Engine) push(fr *frame, it Item) {
	if !fr.markVisited(it.Cur, it.key(e.fullStack)) {
		return
	}
	fr.worklist = append(fr.worklist, it)
	switch it.State {
	case S2:
		fr.addTarget(it.Root, Target{Node: it.Cur, Fields: it.Fields, Context: it.Contexts, Cond: it.Cond})
	case S1, S3:
		if e.policy.Balanced(it) {
			e.recorder.Record(it.Root, it.Cur)
		}
	}
}

// stateProp propagates orig to node dst in state s across the given edges, in order. The policy decides whether
// each transition is feasible. A rejected item is marked visited but not enqueued.
func (e *Engine) stateProp(fr *frame, orig Item, dst vfg.NodeID, s State, edges ...*vfg.Edge) {
	next := Item{
		Cur:      dst,
		Root:     orig.Root,
		State:    s,
		Fields:   orig.Fields,
		Contexts: orig.Contexts,
		Cond:     orig.Cond,
	}
	for _, edge := range edges {
		if !e.policy.Transition(orig, &next, edge) {
			e.stats.Rejected++
			fr.markVisited(dst, next.key(e.fullStack))
			if e.logger.LogsTrace() {
				e.logger.Tracef("Rejected %s across %s\n", next, edge)
			}
			return
		}
	}
	e.push(fr, next)
}

func (e *Engine) handleS1(fr *frame, it Item) {
	for _, edge := range e.graph.InEdges(it.Cur) {
		switch edge.Kind {
		case vfg.Address:
			e.stateProp(fr, it, edge.Src, S2, edge)
		case vfg.Copy, vfg.FieldAccess, vfg.Call, vfg.Return:
			e.stateProp(fr, it, edge.Src, S1, edge)
		case vfg.Load:
			e.matcher.MatchLoad(fr, it, edge)
		}
	}
}

func (e *Engine) handleS2(fr *frame, it Item) {
	if in := e.graph.InEdges(it.Cur); len(in) > 0 {
		panic(fmt.Sprintf("address node %s has %d incoming edges", e.graph.NodeName(it.Cur), len(in)))
	}
	out := e.graph.OutEdges(it.Cur)
	if len(out) != 1 || out[0].Kind != vfg.Address {
		panic(fmt.Sprintf("address node %s must have exactly one outgoing address edge, has %d edges",
			e.graph.NodeName(it.Cur), len(out)))
	}
	e.stateProp(fr, it, out[0].Dst, S3, out[0])
}

func (e *Engine) handleS3(fr *frame, it Item) {
	for _, edge := range e.graph.OutEdges(it.Cur) {
		switch edge.Kind {
		case vfg.Address:
			panic(fmt.Sprintf("node %s in forward flow has an outgoing address edge %s",
				e.graph.NodeName(it.Cur), edge))
		case vfg.Copy, vfg.FieldAccess, vfg.Call, vfg.Return:
			e.stateProp(fr, it, edge.Dst, S3, edge)
		case vfg.Store:
			e.matcher.MatchStore(fr, it, edge)
		}
	}
}

// propagateUp connects the loads and stores of the root to the ones of the current node when both alias. The
// items saved when the search went down to the root continue from the matched nodes.
func (e *Engine) propagateUp(fr *frame, it Item) {
	root, cur := it.Root, it.Cur
	if !e.recorder.IsAlias(root, cur) {
		return
	}
	if stores := e.graph.InEdges(cur, vfg.Store); len(stores) > 0 {
		for _, load := range e.graph.OutEdges(root, vfg.Load) {
			for _, store := range stores {
				if e.matches.Add(load.Dst, store.Src) {
					e.stats.MatchedPairs++
				}
			}
		}
		for _, saved := range fr.savedS1[root] {
			orig := saved.item
			orig.Contexts = it.Contexts
			for _, store := range stores {
				e.stateProp(fr, orig, store.Src, S1, saved.edge, store)
			}
		}
	}
	if loads := e.graph.OutEdges(cur, vfg.Load); len(loads) > 0 {
		for _, store := range e.graph.InEdges(root, vfg.Store) {
			for _, load := range loads {
				if e.matches.Add(load.Dst, store.Src) {
					e.stats.MatchedPairs++
				}
			}
		}
		for _, saved := range fr.savedS3[root] {
			orig := saved.item
			orig.Contexts = it.Contexts
			for _, load := range loads {
				e.stateProp(fr, orig, load.Dst, S3, saved.edge, load)
			}
		}
	}
}

// propagateDown starts a search for the aliases of the pointer a load reads from (S1) or a store writes to (S3),
// saving the current item to continue once an alias is found.
func (e *Engine) propagateDown(fr *frame, it Item) {
	switch it.State {
	case S1:
		for _, load := range e.graph.InEdges(it.Cur, vfg.Load) {
			fr.savedS1[load.Src] = append(fr.savedS1[load.Src], savedItem{item: it, edge: load})
			e.push(fr, Item{Cur: load.Src, Root: load.Src, State: S1, Contexts: it.Contexts, Cond: it.Cond})
		}
	case S3:
		for _, store := range e.graph.OutEdges(it.Cur, vfg.Store) {
			fr.savedS3[store.Dst] = append(fr.savedS3[store.Dst], savedItem{item: it, edge: store})
			e.push(fr, Item{Cur: store.Dst, Root: store.Dst, State: S1, Contexts: it.Contexts, Cond: it.Cond})
		}
	}
}

// mayAlias returns true if p and q may point to the same memory
func (e *Engine) mayAlias(p, q vfg.NodeID) bool {
	if p == q || e.recorder.IsAlias(p, q) {
		return true
	}
	tp := e.subQuery(p).Targets
	if len(tp) == 0 {
		return false
	}
	for _, b := range e.subQuery(q).Targets {
		for _, a := range tp {
			if e.policy.Compatible(a, b) {
				return true
			}
		}
	}
	return false
}
