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
	"github.com/awslabs/ar-go-dda/internal/graphutil"
)

// CallSiteInfo is the optional interface of value-flow graphs that know the caller and callee of their call sites.
type CallSiteInfo interface {
	CallGraph() *graphutil.CallGraph
}

// Recursion records which call sites belong to a recursive cycle of the call graph. The context-sensitive
// analyses do not match brackets of recursive call sites.
type Recursion struct {
	sites map[int]bool
}

// NewRecursion computes the recursive call sites of the call graph. A nil call graph has no recursive call site.
func NewRecursion(cg *graphutil.CallGraph) *Recursion {
	if cg == nil {
		return &Recursion{sites: map[int]bool{}}
	}
	return &Recursion{sites: cg.RecursiveSites()}
}

// RecursionOf returns the recursion information of g, if g has call site information.
func RecursionOf(g ValueFlowGraph) *Recursion {
	if info, ok := g.(CallSiteInfo); ok {
		return NewRecursion(info.CallGraph())
	}
	return NewRecursion(nil)
}

// InRecursion returns true if the call site is part of a cycle of the call graph
func (r *Recursion) InRecursion(site CallSiteID) bool {
	return r != nil && r.sites[int(site)]
}

// Len returns the number of recursive call sites
func (r *Recursion) Len() int {
	if r == nil {
		return 0
	}
	return len(r.sites)
}
