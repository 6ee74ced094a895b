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

package graphutil_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-dda/internal/funcutil"
	"github.com/awslabs/ar-go-dda/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

func TestFindAllElementaryCycles(t *testing.T) {
	sites := []graphutil.CallSite{
		{ID: 1, Caller: "main", Callee: "f"},
		{ID: 2, Caller: "f", Callee: "g"},
		{ID: 3, Caller: "g", Callee: "f"},
		{ID: 4, Caller: "g", Callee: "h"},
		{ID: 5, Caller: "h", Callee: "h"},
		{ID: 6, Caller: "h", Callee: "f"},
		{ID: 7, Caller: "main", Callee: "k"},
	}
	cg := graphutil.NewCallGraph(sites)
	stats := graph.Check(cg)
	t.Logf("Stats:\n\tsize: %d\n\tmulti: %d\n\tloops: %d\n\tisolated: %d",
		stats.Size, stats.Multi, stats.Loops, stats.Isolated)

	cycles := graphutil.FindAllElementaryCycles(cg)
	results := make([]string, len(cycles))
	for i, cycle := range cycles {
		results[i] = strings.Join(funcutil.Map(cycle, cg.FuncName), "->")
	}
	sort.Strings(results)
	expected := []string{"f->g->f", "f->g->h->f", "h->h"}
	if !slices.Equal(results, expected) {
		for i, s := range results {
			t.Logf("Cycle %d: %s", i, s)
		}
		t.Fatalf("Cycles not as expected")
	}
}

func TestRecursiveSites(t *testing.T) {
	cg := graphutil.NewCallGraph([]graphutil.CallSite{
		{ID: 1, Caller: "main", Callee: "f"},
		{ID: 2, Caller: "f", Callee: "g"},
		{ID: 3, Caller: "g", Callee: "f"},
		{ID: 4, Caller: "g", Callee: "k"},
		{ID: 5, Caller: "k", Callee: "k"},
	})
	rec := cg.RecursiveSites()
	for id, expected := range map[int]bool{1: false, 2: true, 3: true, 4: false, 5: true} {
		if rec[id] != expected {
			t.Errorf("call site %d: expected recursive=%v", id, expected)
		}
	}
}

func TestCallGraphNoCycles(t *testing.T) {
	cg := graphutil.NewCallGraph([]graphutil.CallSite{
		{ID: 1, Caller: "main", Callee: "f"},
		{ID: 2, Caller: "f", Callee: "g"},
	})
	if cycles := graphutil.FindAllElementaryCycles(cg); len(cycles) != 0 {
		t.Errorf("expected no cycles, got %v", cycles)
	}
	if i, ok := cg.FuncIndex("g"); !ok || cg.FuncName(i) != "g" {
		t.Errorf("function g not indexed")
	}
	if cg.Order() != 3 {
		t.Errorf("expected 3 functions, got %d", cg.Order())
	}
}
