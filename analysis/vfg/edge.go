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
	"fmt"
	"strings"
)

// NodeID is the dense identifier of a node of the value-flow graph
type NodeID int

// EdgeID is the dense identifier of an edge of the value-flow graph
type EdgeID int

// CallSiteID identifies a call site. The zero value means "no call site": call and return edges with a zero call
// site are not matched by the context-sensitive analyses.
type CallSiteID int

// EdgeKind is the kind of value flow an edge represents
type EdgeKind int

const (
	// Address is o --> p for p = &o. The source is an object.
	Address EdgeKind = iota
	// Copy is q --> p for p = q
	Copy
	// FieldAccess is q --> p for p = &q->f, with the offset of f
	FieldAccess
	// Call is a --> x where a is an argument of a call and x the corresponding parameter of the callee
	Call
	// Return is r --> y where r is returned by the callee and y receives the result of the call
	Return
	// Load is q --> p for p = *q
	Load
	// Store is q --> p for *p = q
	Store

	numEdgeKinds
)

var edgeKindNames = [numEdgeKinds]string{"addr", "copy", "field", "call", "ret", "load", "store"}

func (k EdgeKind) String() string {
	if k < 0 || k >= numEdgeKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return edgeKindNames[k]
}

// ParseEdgeKind returns the edge kind with name s
func ParseEdgeKind(s string) (EdgeKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "gep", "field-access":
		return FieldAccess, nil
	case "return":
		return Return, nil
	case "address":
		return Address, nil
	}
	for i, n := range edgeKindNames {
		if n == name {
			return EdgeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown edge kind %q", s)
}

// AllEdgeKinds returns every edge kind
func AllEdgeKinds() []EdgeKind {
	kinds := make([]EdgeKind, numEdgeKinds)
	for i := range kinds {
		kinds[i] = EdgeKind(i)
	}
	return kinds
}

// An Edge is a value flow from Src to Dst
type Edge struct {
	ID   EdgeID
	Kind EdgeKind
	Src  NodeID
	Dst  NodeID

	// Offset is the field offset of a FieldAccess edge
	Offset int

	// Variant is true for a FieldAccess edge whose offset is not a constant
	Variant bool

	// CallSite is the call site of a Call or Return edge
	CallSite CallSiteID

	// Guard is a list of labels describing the control-flow condition under which the value flows. The labels are
	// opaque to the graph; they are interpreted by a path-condition algebra.
	Guard []string
}

// IsBracket returns true if the edge opens or closes a bracket in the field or the call/return language
func (e *Edge) IsBracket() bool {
	return e.Kind == FieldAccess || e.Kind == Call || e.Kind == Return
}

func (e *Edge) String() string {
	switch e.Kind {
	case FieldAccess:
		if e.Variant {
			return fmt.Sprintf("%d -%s[*]-> %d", e.Src, e.Kind, e.Dst)
		}
		return fmt.Sprintf("%d -%s[%d]-> %d", e.Src, e.Kind, e.Offset, e.Dst)
	case Call, Return:
		return fmt.Sprintf("%d -%s[cs%d]-> %d", e.Src, e.Kind, e.CallSite, e.Dst)
	default:
		return fmt.Sprintf("%d -%s-> %d", e.Src, e.Kind, e.Dst)
	}
}
