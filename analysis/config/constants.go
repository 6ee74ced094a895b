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

package config

const (
	// DefaultQueryBudget is the default number of search steps of a top-level query
	DefaultQueryBudget = 30000
	// DefaultPathBudget is the default number of search steps of a path-sensitive query
	DefaultPathBudget = 30000
	// DefaultMaxStackDepth bounds field and context stacks when items are identified by their stacks
	DefaultMaxStackDepth = 16
)

// Sensitivity is the precision level of the demand-driven analysis
type Sensitivity string

const (
	// FlowSensitivity is the field-, context- and path-insensitive analysis over the flattened value-flow graph
	FlowSensitivity Sensitivity = "flow"
	// FieldSensitivity matches field offsets along the search paths
	FieldSensitivity Sensitivity = "field"
	// ContextSensitivity matches field offsets and call sites along the search paths
	ContextSensitivity Sensitivity = "context"
	// PathSensitivity additionally tracks path conditions, and falls back to ContextSensitivity when out of budget
	PathSensitivity Sensitivity = "path"
)

// AllSensitivities lists the valid sensitivity levels
var AllSensitivities = []Sensitivity{FlowSensitivity, FieldSensitivity, ContextSensitivity, PathSensitivity}

// IsValid returns true when s is one of the known sensitivity levels
func (s Sensitivity) IsValid() bool {
	for _, x := range AllSensitivities {
		if s == x {
			return true
		}
	}
	return false
}

// VisitedIdentity selects which fields of a search item are part of its identity
type VisitedIdentity string

const (
	// NodeRootStateIdentity identifies items by (current node, root, state). Stacks are ignored: two items that
	// only differ in their stacks are the same item.
	NodeRootStateIdentity VisitedIdentity = "node-root-state"
	// FullStackIdentity also includes stacks and path conditions. Stacks are then k-limited to guarantee
	// termination.
	FullStackIdentity VisitedIdentity = "full-stack"
)

// IsValid returns true when v is one of the known identities. The empty value defaults to NodeRootStateIdentity.
func (v VisitedIdentity) IsValid() bool {
	return v == "" || v == NodeRootStateIdentity || v == FullStackIdentity
}
