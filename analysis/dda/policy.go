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

	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"golang.org/x/exp/slices"
)

// Policy is the sensitivity of an engine. The engine calls the policy at every step of the search; the policy
// decides which transitions are feasible and when facts can be recorded.
type Policy interface {
	// Name is the name of the sensitivity level, as in the configuration
	Name() config.Sensitivity

	// Transition is called when the search goes from orig to next across a copy, field access, call, return or
	// address edge. It may update the stacks and the condition of next. Returns false if the transition is
	// infeasible.
	Transition(orig Item, next *Item, e *vfg.Edge) bool

	// Balanced returns true if the alias between the root and the current node of the item can be recorded
	Balanced(it Item) bool

	// UpwardPropagation returns true if the engine must run the upward and downward propagations
	UpwardPropagation() bool

	// Reset returns what the engine must clear between top-level queries
	Reset() ResetPolicy

	// Clear forgets what the policy learned during previous searches, such as the field-insensitive nodes. The
	// engine calls it on Reset, and between top-level queries when Reset returns ClearPerQuery.
	Clear()

	// InitialCondition returns the condition of the first item of a search
	InitialCondition() Condition

	// Compatible returns true if two points-to targets may denote the same memory
	Compatible(a, b Target) bool
}

// NewPolicy returns the policy of the given sensitivity. Path sensitivity needs a condition algebra and is built
// by the pathdda package. If limit is positive, stacks are k-limited to limit elements.
func NewPolicy(s config.Sensitivity, recursion *vfg.Recursion, limit int) (Policy, error) {
	switch s {
	case config.FlowSensitivity, "":
		return &FlowPolicy{}, nil
	case config.FieldSensitivity:
		return NewFieldPolicy(limit), nil
	case config.ContextSensitivity:
		return NewContextPolicy(recursion, limit), nil
	case config.PathSensitivity:
		return nil, fmt.Errorf("path sensitivity requires a condition algebra, use the pathdda package")
	default:
		return nil, fmt.Errorf("unknown sensitivity %q", s)
	}
}

// SameTarget returns true if both targets are the same object or the same field of an object
func SameTarget(a, b Target) bool {
	return a.Node == b.Node && slices.Equal(a.Fields, b.Fields)
}

// FlowPolicy is the regular, field-insensitive and context-insensitive analysis. Its results do not depend on the
// query, so cached results are kept across queries.
type FlowPolicy struct{}

// Name returns flow
func (p *FlowPolicy) Name() config.Sensitivity { return config.FlowSensitivity }

// Transition accepts every transition
func (p *FlowPolicy) Transition(Item, *Item, *vfg.Edge) bool { return true }

// Balanced is always true
func (p *FlowPolicy) Balanced(Item) bool { return true }

// UpwardPropagation is false
func (p *FlowPolicy) UpwardPropagation() bool { return false }

// Reset retains cached results
func (p *FlowPolicy) Reset() ResetPolicy { return RetainAcrossQueries }

// Clear does nothing, the policy is stateless
func (p *FlowPolicy) Clear() {}

// InitialCondition is nil
func (p *FlowPolicy) InitialCondition() Condition { return nil }

// Compatible compares the nodes of the targets
func (p *FlowPolicy) Compatible(a, b Target) bool { return a.Node == b.Node }

// FieldPolicy matches field accesses
type FieldPolicy struct {
	Fields *FieldBrackets
}

// NewFieldPolicy returns a field-sensitive policy
func NewFieldPolicy(limit int) *FieldPolicy {
	return &FieldPolicy{Fields: NewFieldBrackets(limit)}
}

func (p *FieldPolicy) Name() config.Sensitivity { return config.FieldSensitivity }

func (p *FieldPolicy) Transition(_ Item, next *Item, e *vfg.Edge) bool {
	return p.Fields.Transition(next, e)
}

// Balanced returns true when the item has no pending field
func (p *FieldPolicy) Balanced(it Item) bool { return len(it.Fields) == 0 }

func (p *FieldPolicy) UpwardPropagation() bool { return true }

func (p *FieldPolicy) Reset() ResetPolicy { return ClearPerQuery }

func (p *FieldPolicy) Clear() { p.Fields.Clear() }

func (p *FieldPolicy) InitialCondition() Condition { return nil }

func (p *FieldPolicy) Compatible(a, b Target) bool { return SameTarget(a, b) }

// ContextPolicy matches field accesses and calls/returns as two independent languages
type ContextPolicy struct {
	Fields   *FieldBrackets
	Contexts *ContextBrackets
}

// NewContextPolicy returns a field- and context-sensitive policy
func NewContextPolicy(recursion *vfg.Recursion, limit int) *ContextPolicy {
	return &ContextPolicy{
		Fields:   NewFieldBrackets(limit),
		Contexts: NewContextBrackets(recursion, limit),
	}
}

func (p *ContextPolicy) Name() config.Sensitivity { return config.ContextSensitivity }

func (p *ContextPolicy) Transition(_ Item, next *Item, e *vfg.Edge) bool {
	return p.Fields.Transition(next, e) && p.Contexts.Transition(next, e)
}

// Balanced returns true when the item has no pending field. The call string does not prevent recording.
func (p *ContextPolicy) Balanced(it Item) bool { return len(it.Fields) == 0 }

func (p *ContextPolicy) UpwardPropagation() bool { return true }

func (p *ContextPolicy) Reset() ResetPolicy { return ClearPerQuery }

func (p *ContextPolicy) Clear() { p.Fields.Clear() }

func (p *ContextPolicy) InitialCondition() Condition { return nil }

func (p *ContextPolicy) Compatible(a, b Target) bool { return SameTarget(a, b) }
