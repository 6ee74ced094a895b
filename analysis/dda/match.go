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
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"golang.org/x/tools/container/intsets"
)

// MatchRelation records the load/store pairs that have been matched: the source of the store flows to the
// destination of the load. Both directions are maintained together.
type MatchRelation struct {
	graph        vfg.ValueFlowGraph
	recorder     *AliasRecorder
	storeSources map[vfg.NodeID]*intsets.Sparse
	loadDests    map[vfg.NodeID]*intsets.Sparse
	size         int
}

// NewMatchRelation returns an empty relation. Matched pairs are also recorded as aliases in recorder.
func NewMatchRelation(g vfg.ValueFlowGraph, recorder *AliasRecorder) *MatchRelation {
	return &MatchRelation{
		graph:        g,
		recorder:     recorder,
		storeSources: map[vfg.NodeID]*intsets.Sparse{},
		loadDests:    map[vfg.NodeID]*intsets.Sparse{},
	}
}

// Add records that storeSrc flows to loadDst. Returns true if the pair is new.
func (m *MatchRelation) Add(loadDst, storeSrc vfg.NodeID) bool {
	if loadDst == storeSrc {
		return false
	}
	if !m.graph.IsValidPointer(loadDst) && !m.graph.IsValidPointer(storeSrc) {
		return false
	}
	m.recorder.Record(loadDst, storeSrc)
	if !insertIn(m.storeSources, loadDst, storeSrc) {
		return false
	}
	insertIn(m.loadDests, storeSrc, loadDst)
	m.size++
	return true
}

func insertIn(m map[vfg.NodeID]*intsets.Sparse, key vfg.NodeID, x vfg.NodeID) bool {
	s, ok := m[key]
	if !ok {
		s = &intsets.Sparse{}
		m[key] = s
	}
	return s.Insert(int(x))
}

func nodesIn(m map[vfg.NodeID]*intsets.Sparse, key vfg.NodeID) []vfg.NodeID {
	s, ok := m[key]
	if !ok {
		return nil
	}
	var nodes []vfg.NodeID
	for _, x := range s.AppendTo(nil) {
		nodes = append(nodes, vfg.NodeID(x))
	}
	return nodes
}

// StoreSources returns the sources of the stores matched with loads into loadDst
func (m *MatchRelation) StoreSources(loadDst vfg.NodeID) []vfg.NodeID {
	return nodesIn(m.storeSources, loadDst)
}

// LoadDests returns the destinations of the loads matched with stores from storeSrc
func (m *MatchRelation) LoadDests(storeSrc vfg.NodeID) []vfg.NodeID {
	return nodesIn(m.loadDests, storeSrc)
}

// Len returns the number of pairs in the relation
func (m *MatchRelation) Len() int {
	return m.size
}

// Clear empties the relation
func (m *MatchRelation) Clear() {
	m.storeSources = map[vfg.NodeID]*intsets.Sparse{}
	m.loadDests = map[vfg.NodeID]*intsets.Sparse{}
	m.size = 0
}

type edgePair struct {
	load  vfg.EdgeID
	store vfg.EdgeID
}

// LoadStoreMatcher bridges heap indirections: a load from p and a store to q induce a flow from the stored value
// to the loaded value when p and q may alias.
type LoadStoreMatcher struct {
	engine  *Engine
	index   *vfg.CandidateIndex
	matched map[edgePair]bool
	guard   map[edgePair]bool
}

func newLoadStoreMatcher(e *Engine, index *vfg.CandidateIndex) *LoadStoreMatcher {
	return &LoadStoreMatcher{
		engine:  e,
		index:   index,
		matched: map[edgePair]bool{},
		guard:   map[edgePair]bool{},
	}
}

// MatchLoad is called when the search reaches the destination of load in S1. The search continues backwards from
// the source of every store that matches the load.
func (m *LoadStoreMatcher) MatchLoad(fr *frame, it Item, load *vfg.Edge) {
	for _, src := range m.engine.matches.StoreSources(load.Dst) {
		m.engine.stateProp(fr, it, src, S1, load)
	}
	for _, store := range m.candidateStores(load) {
		if m.match(fr, load, store) {
			m.engine.stateProp(fr, it, store.Src, S1, load, store)
		}
	}
}

// MatchStore is called when the search reaches the source of store in S3. The search continues forward from the
// destination of every load that matches the store.
func (m *LoadStoreMatcher) MatchStore(fr *frame, it Item, store *vfg.Edge) {
	for _, dst := range m.engine.matches.LoadDests(store.Src) {
		m.engine.stateProp(fr, it, dst, S3, store)
	}
	for _, load := range m.candidateLoads(store) {
		if m.match(fr, load, store) {
			m.engine.stateProp(fr, it, load.Dst, S3, store, load)
		}
	}
}

func (m *LoadStoreMatcher) candidateStores(load *vfg.Edge) []*vfg.Edge {
	if m.index != nil {
		return m.index.CandidateStores(load)
	}
	return m.engine.graph.EdgesOfKind(vfg.Store)
}

func (m *LoadStoreMatcher) candidateLoads(store *vfg.Edge) []*vfg.Edge {
	if m.index != nil {
		return m.index.CandidateLoads(store)
	}
	return m.engine.graph.EdgesOfKind(vfg.Load)
}

// match returns true if the load and the store access memory that may alias. A pair that is already being
// evaluated by a caller is skipped, and the frame is marked incomplete.
func (m *LoadStoreMatcher) match(fr *frame, load, store *vfg.Edge) bool {
	pair := edgePair{load: load.ID, store: store.ID}
	if m.matched[pair] {
		return true
	}
	if m.engine.budget.Exceeded() {
		fr.exhausted = true
		return false
	}
	if !m.acquire(pair) {
		fr.incomplete = true
		m.engine.stats.GuardSkips++
		return false
	}
	defer m.release(pair)

	if !m.engine.mayAlias(load.Src, store.Dst) {
		return false
	}
	m.matched[pair] = true
	if m.engine.matches.Add(load.Dst, store.Src) {
		m.engine.stats.MatchedPairs++
	}
	m.engine.logger.Tracef("Matched load %s with store %s\n", load, store)
	return true
}

func (m *LoadStoreMatcher) acquire(pair edgePair) bool {
	if m.guard[pair] {
		return false
	}
	m.guard[pair] = true
	return true
}

func (m *LoadStoreMatcher) release(pair edgePair) {
	delete(m.guard, pair)
}

// IsMatched returns true if the pair of edges has been matched since the matched pairs were last cleared
func (m *LoadStoreMatcher) IsMatched(load, store *vfg.Edge) bool {
	return m.matched[edgePair{load: load.ID, store: store.ID}]
}

func (m *LoadStoreMatcher) resetGuards() {
	m.guard = map[edgePair]bool{}
}

func (m *LoadStoreMatcher) clearMatched() {
	m.matched = map[edgePair]bool{}
}
