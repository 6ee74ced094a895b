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
	"strings"

	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"golang.org/x/exp/slices"
)

// State is the state of the finite-state search at one item
type State int

const (
	// S1 is the inverse flow state: the search goes backwards from a use towards the addresses it may hold
	S1 State = iota + 1
	// S2 is the address state: the current node is an object whose address has been found
	S2
	// S3 is the forward flow state: the search goes forward from a known address to every node that may hold it
	S3
)

func (s State) String() string {
	switch s {
	case S1:
		return "S1"
	case S2:
		return "S2"
	case S3:
		return "S3"
	default:
		return fmt.Sprintf("S?(%d)", int(s))
	}
}

// Condition is an opaque path condition carried by the items of the path-sensitive analysis. A nil condition
// stands for true. The string representation must be deterministic: it is used to compare items.
type Condition fmt.Stringer

// CallString is a stack of call sites. The innermost call site is the last element.
type CallString []vfg.CallSiteID

// Top returns the innermost call site of the call string, if any
func (c CallString) Top() (vfg.CallSiteID, bool) {
	if len(c) == 0 {
		return 0, false
	}
	return c[len(c)-1], true
}

// Push returns a new call string with site on top. If limit is positive, the oldest call sites are dropped so that
// the result has at most limit elements.
func (c CallString) Push(site vfg.CallSiteID, limit int) CallString {
	return push(c, site, limit)
}

// Pop returns a new call string without its innermost call site
func (c CallString) Pop() CallString {
	return pop(c)
}

func (c CallString) String() string {
	parts := make([]string, len(c))
	for i, s := range c {
		parts[i] = fmt.Sprintf("cs%d", s)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// push never modifies s, so that items can share their stacks
func push[T any](s []T, x T, limit int) []T {
	if limit > 0 && len(s) >= limit {
		s = s[len(s)-limit+1:]
	}
	r := make([]T, len(s), len(s)+1)
	copy(r, s)
	return append(r, x)
}

func pop[T any](s []T) []T {
	if len(s) == 0 {
		return s
	}
	return slices.Clone(s[:len(s)-1])
}

// An Item is one point of the search: the search for the aliases of Root is at node Cur, in state State.
// Fields holds the pending field offsets, Contexts the pending call sites and Cond the path condition.
//
// Items are values. Stacks are copied on write and never modified once the item is created.
type Item struct {
	Cur      vfg.NodeID
	Root     vfg.NodeID
	State    State
	Fields   []int
	Contexts CallString
	Cond     Condition
}

func (it Item) String() string {
	s := fmt.Sprintf("(%d, root %d, %s", it.Cur, it.Root, it.State)
	if len(it.Fields) > 0 {
		s += fmt.Sprintf(", fields %v", it.Fields)
	}
	if len(it.Contexts) > 0 {
		s += ", ctx " + it.Contexts.String()
	}
	if it.Cond != nil {
		s += ", cond " + it.Cond.String()
	}
	return s + ")"
}

// visitKey identifies items in the visited sets. With the default identity only the root and the state are used
// (the node indexes the visited set); the stacks and the condition are summarized in stacks otherwise.
type visitKey struct {
	root   vfg.NodeID
	state  State
	stacks string
}

func (it Item) key(fullStack bool) visitKey {
	k := visitKey{root: it.Root, state: it.State}
	if fullStack {
		cond := ""
		if it.Cond != nil {
			cond = it.Cond.String()
		}
		k.stacks = fmt.Sprintf("%v|%v|%s", it.Fields, []vfg.CallSiteID(it.Contexts), cond)
	}
	return k
}

// A Target is a points-to fact: the root may point to Node, or to a field of Node if Fields is not empty.
type Target struct {
	Node    vfg.NodeID
	Fields  []int
	Context CallString
	Cond    Condition
}

func (t Target) String() string {
	s := fmt.Sprintf("%d", t.Node)
	if len(t.Fields) > 0 {
		s += fmt.Sprintf(".%v", t.Fields)
	}
	if len(t.Context) > 0 {
		s += "@" + t.Context.String()
	}
	if t.Cond != nil {
		s += "|" + t.Cond.String()
	}
	return s
}

func (t Target) key() string {
	return t.String()
}
