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
)

// ResetPolicy defines what survives between two top-level queries
type ResetPolicy int

const (
	// RetainAcrossQueries keeps cached results across top-level queries
	RetainAcrossQueries ResetPolicy = iota
	// ClearPerQuery clears the cached results and matched pairs before every top-level query. Results computed
	// under one root or context are not valid under another.
	ClearPerQuery
)

func (p ResetPolicy) String() string {
	if p == ClearPerQuery {
		return "clear-per-query"
	}
	return "retain-across-queries"
}

// QueryCache memoizes the results of completed searches
type QueryCache struct {
	enabled bool
	entries map[vfg.NodeID]Result
	hits    int
}

// NewQueryCache returns an empty cache. A disabled cache never stores anything.
func NewQueryCache(enabled bool) *QueryCache {
	return &QueryCache{enabled: enabled, entries: map[vfg.NodeID]Result{}}
}

// Lookup returns the cached result for n
func (c *QueryCache) Lookup(n vfg.NodeID) (Result, bool) {
	r, ok := c.entries[n]
	if ok {
		c.hits++
	}
	return r, ok
}

// Store caches the result of a search for n. Partial results are never cached.
func (c *QueryCache) Store(n vfg.NodeID, r Result) {
	if !c.enabled || r.Partial {
		return
	}
	c.entries[n] = r
}

// Reset clears the cache if the policy requires it
func (c *QueryCache) Reset(policy ResetPolicy) {
	if policy == ClearPerQuery {
		c.Clear()
	}
}

// Clear empties the cache
func (c *QueryCache) Clear() {
	c.entries = map[vfg.NodeID]Result{}
}

// Len returns the number of cached results
func (c *QueryCache) Len() int {
	return len(c.entries)
}

// Hits returns the number of successful lookups
func (c *QueryCache) Hits() int {
	return c.hits
}
