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

package pathdda

import (
	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
)

// PathPolicy is the path-sensitive policy: fields and calls/returns are matched as in the context-sensitive
// policy, and every item carries the conjunction of the guards of the edges it crossed. Items whose condition is
// unsatisfiable are rejected.
//
// Recursive call sites are not matched and never pushed. Crossing one in either direction pops the recursive call
// sites on top of the call string, so the stack stays bounded inside a cycle.
type PathPolicy struct {
	Algebra  ConditionAlgebra
	Fields   *dda.FieldBrackets
	Contexts *dda.ContextBrackets
}

// NewPathPolicy returns a path-sensitive policy. If limit is positive, stacks are limited to limit elements.
func NewPathPolicy(alg ConditionAlgebra, recursion *vfg.Recursion, limit int) *PathPolicy {
	return &PathPolicy{
		Algebra:  alg,
		Fields:   dda.NewFieldBrackets(limit),
		Contexts: dda.NewContextBrackets(recursion, limit),
	}
}

func (p *PathPolicy) Name() config.Sensitivity { return config.PathSensitivity }

func (p *PathPolicy) Transition(_ dda.Item, next *dda.Item, e *vfg.Edge) bool {
	if !p.Fields.Transition(next, e) {
		return false
	}
	if p.isRecursive(e) {
		p.popRecursive(next)
	} else if !p.Contexts.Transition(next, e) {
		return false
	}
	cond := p.Algebra.And(next.Cond, p.Algebra.EdgeGuard(e))
	if !p.Algebra.Satisfiable(cond) {
		return false
	}
	next.Cond = cond
	return true
}

func (p *PathPolicy) isRecursive(e *vfg.Edge) bool {
	return (e.Kind == vfg.Call || e.Kind == vfg.Return) && e.CallSite != 0 && p.Contexts.InRecursion(e.CallSite)
}

// popRecursive removes the recursive call sites on top of the call string of it
func (p *PathPolicy) popRecursive(it *dda.Item) {
	for {
		top, ok := it.Contexts.Top()
		if !ok || !p.Contexts.InRecursion(top) {
			return
		}
		it.Contexts = it.Contexts.Pop()
	}
}

func (p *PathPolicy) Balanced(it dda.Item) bool { return len(it.Fields) == 0 }

func (p *PathPolicy) UpwardPropagation() bool { return true }

func (p *PathPolicy) Reset() dda.ResetPolicy { return dda.ClearPerQuery }

func (p *PathPolicy) Clear() { p.Fields.Clear() }

func (p *PathPolicy) InitialCondition() dda.Condition { return p.Algebra.True() }

// Compatible returns true if both targets are the same memory under compatible conditions. Targets reached
// without calling context are singletons.
func (p *PathPolicy) Compatible(a, b dda.Target) bool {
	if !dda.SameTarget(a, b) {
		return false
	}
	singleton := len(a.Context) == 0 || len(b.Context) == 0
	return IsCondCompatible(p.Algebra, targetCond(a), targetCond(b), singleton)
}

// IsCondCompatible returns true if a and b are compatible under the algebra of the policy
func (p *PathPolicy) IsCondCompatible(a, b PathCond, singleton bool) bool {
	return IsCondCompatible(p.Algebra, a, b, singleton)
}
