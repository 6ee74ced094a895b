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

// FieldBrackets matches the field offsets of FieldAccess edges. Going backwards (S1) across a field access opens a
// bracket, going forward (S3) closes it.
//
// Nodes touched by a variant field access are field-insensitive: field accesses from or to them have no effect on
// the stack.
type FieldBrackets struct {
	limit     int
	collapsed intsets.Sparse
}

// NewFieldBrackets returns a field matcher. If limit is positive, field stacks are limited to limit offsets.
func NewFieldBrackets(limit int) *FieldBrackets {
	return &FieldBrackets{limit: limit}
}

// Transition updates the field stack of next when the search crosses e. Returns false if the transition is
// infeasible.
func (f *FieldBrackets) Transition(next *Item, e *vfg.Edge) bool {
	if e.Kind != vfg.FieldAccess {
		return true
	}
	if e.Variant {
		f.collapsed.Insert(int(e.Src))
		f.collapsed.Insert(int(e.Dst))
		next.Fields = nil
		return true
	}
	if e.Offset == 0 || f.IsFieldInsensitive(e.Src) || f.IsFieldInsensitive(e.Dst) {
		return true
	}
	switch next.State {
	case S1:
		next.Fields = push(next.Fields, e.Offset, f.limit)
	case S3:
		if len(next.Fields) == 0 || next.Fields[len(next.Fields)-1] != e.Offset {
			return false
		}
		next.Fields = pop(next.Fields)
	}
	return true
}

// IsFieldInsensitive returns true if n has been touched by a variant field access
func (f *FieldBrackets) IsFieldInsensitive(n vfg.NodeID) bool {
	return f.collapsed.Has(int(n))
}

// Clear forgets the field-insensitive nodes
func (f *FieldBrackets) Clear() {
	f.collapsed.Clear()
}

// ContextBrackets matches the call sites of Call and Return edges. Going backwards (S1) a return opens a bracket
// that the matching call closes; going forward (S3) a call opens a bracket that the matching return closes.
//
// A closing bracket is accepted only when it matches the innermost pending call site, an empty stack included.
// Call sites in a recursive cycle of the call graph are not matched.
type ContextBrackets struct {
	limit     int
	recursion *vfg.Recursion
}

// NewContextBrackets returns a context matcher. If limit is positive, call strings are limited to limit call sites.
func NewContextBrackets(recursion *vfg.Recursion, limit int) *ContextBrackets {
	return &ContextBrackets{limit: limit, recursion: recursion}
}

// IsOpening returns true if crossing e in state s opens a bracket
func IsOpening(s State, e *vfg.Edge) bool {
	return (s == S1 && e.Kind == vfg.Return) || (s == S3 && e.Kind == vfg.Call)
}

// Transition updates the call string of next when the search crosses e. Returns false if the transition is
// infeasible.
func (c *ContextBrackets) Transition(next *Item, e *vfg.Edge) bool {
	if e.Kind != vfg.Call && e.Kind != vfg.Return {
		return true
	}
	if e.CallSite == 0 || c.recursion.InRecursion(e.CallSite) {
		return true
	}
	if IsOpening(next.State, e) {
		next.Contexts = next.Contexts.Push(e.CallSite, c.limit)
		return true
	}
	top, ok := next.Contexts.Top()
	if !ok || top != e.CallSite {
		return false
	}
	next.Contexts = next.Contexts.Pop()
	return true
}

// InRecursion returns true if the call site is part of a recursive cycle
func (c *ContextBrackets) InRecursion(site vfg.CallSiteID) bool {
	return c.recursion.InRecursion(site)
}
