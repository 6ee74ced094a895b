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
	"fmt"

	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"golang.org/x/tools/container/intsets"
)

// AliasRecorder stores the symmetric alias relation discovered by the searches. Every node has a row, and a pair
// is always inserted in both rows at once.
type AliasRecorder struct {
	graph vfg.ValueFlowGraph
	rows  map[vfg.NodeID]*intsets.Sparse
	pairs int
}

// NewAliasRecorder returns an empty relation over the nodes of g
func NewAliasRecorder(g vfg.ValueFlowGraph) *AliasRecorder {
	return &AliasRecorder{graph: g, rows: map[vfg.NodeID]*intsets.Sparse{}}
}

func (r *AliasRecorder) row(n vfg.NodeID) *intsets.Sparse {
	s, ok := r.rows[n]
	if !ok {
		s = &intsets.Sparse{}
		r.rows[n] = s
	}
	return s
}

// Record records that a and b are aliases. Self pairs and pairs of two invalid pointers are not stored.
// Returns true if the pair is new.
func (r *AliasRecorder) Record(a, b vfg.NodeID) bool {
	if a == b {
		return false
	}
	if !r.graph.IsValidPointer(a) && !r.graph.IsValidPointer(b) {
		return false
	}
	added := r.row(a).Insert(int(b))
	if r.row(b).Insert(int(a)) != added {
		panic(fmt.Sprintf("alias relation is not symmetric for %d and %d", a, b))
	}
	if added {
		r.pairs++
	}
	return added
}

// IsAlias returns true if a and b are the same node or have been recorded as aliases
func (r *AliasRecorder) IsAlias(a, b vfg.NodeID) bool {
	if a == b {
		return true
	}
	ra, rb := r.rows[a], r.rows[b]
	ab := ra != nil && ra.Has(int(b))
	ba := rb != nil && rb.Has(int(a))
	if ab != ba {
		panic(fmt.Sprintf("alias relation is not symmetric for %d and %d", a, b))
	}
	return ab
}

// Row returns a copy of the row of n: the set of nodes recorded as aliases of n
func (r *AliasRecorder) Row(n vfg.NodeID) *intsets.Sparse {
	s := &intsets.Sparse{}
	if row, ok := r.rows[n]; ok {
		s.Copy(row)
	}
	return s
}

// Aliases returns the nodes recorded as aliases of n, in increasing order
func (r *AliasRecorder) Aliases(n vfg.NodeID) []vfg.NodeID {
	row, ok := r.rows[n]
	if !ok {
		return nil
	}
	var ids []int
	var nodes []vfg.NodeID
	for _, x := range row.AppendTo(ids) {
		nodes = append(nodes, vfg.NodeID(x))
	}
	return nodes
}

// Len returns the number of alias pairs in the relation
func (r *AliasRecorder) Len() int {
	return r.pairs
}

// Clear empties the relation
func (r *AliasRecorder) Clear() {
	r.rows = map[vfg.NodeID]*intsets.Sparse{}
	r.pairs = 0
}
