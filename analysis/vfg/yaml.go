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
	"os"

	"gopkg.in/yaml.v3"
)

// graphSpec is the yaml representation of a graph:
//
//	pointers: [p, q, y]
//	objects: [o]
//	callsites:
//	  - {name: cs1, caller: main, callee: f}
//	edges:
//	  - {kind: addr, src: o, dst: p}
//	  - {kind: field, src: p, dst: q, offset: 4}
//	  - {kind: call, src: q, dst: y, site: cs1, guard: ["!c"]}
type graphSpec struct {
	Pointers  []string       `yaml:"pointers"`
	Objects   []string       `yaml:"objects"`
	Values    []string       `yaml:"values"`
	CallSites []callSiteSpec `yaml:"callsites"`
	Edges     []edgeSpec     `yaml:"edges"`
}

type callSiteSpec struct {
	Name   string `yaml:"name"`
	Caller string `yaml:"caller"`
	Callee string `yaml:"callee"`
}

type edgeSpec struct {
	Kind    string   `yaml:"kind"`
	Src     string   `yaml:"src"`
	Dst     string   `yaml:"dst"`
	Offset  int      `yaml:"offset"`
	Variant bool     `yaml:"variant"`
	Site    string   `yaml:"site"`
	Guard   []string `yaml:"guard"`
}

// LoadFile reads a graph from a yaml file
func LoadFile(filename string) (*Graph, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read graph file: %w", err)
	}
	g, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("could not load graph %s: %w", filename, err)
	}
	return g, nil
}

// Parse reads a graph from the content of a yaml file. Every node used by an edge must be declared.
func Parse(b []byte) (*Graph, error) {
	var spec graphSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("could not unmarshal graph: %w", err)
	}
	g := New()
	declare := func(names []string, kind NodeKind) error {
		for _, name := range names {
			if _, err := g.AddNode(name, kind); err != nil {
				return err
			}
		}
		return nil
	}
	if err := declare(spec.Pointers, Pointer); err != nil {
		return nil, err
	}
	if err := declare(spec.Objects, Object); err != nil {
		return nil, err
	}
	if err := declare(spec.Values, Value); err != nil {
		return nil, err
	}
	for _, cs := range spec.CallSites {
		if _, err := g.AddCallSite(cs.Name, cs.Caller, cs.Callee); err != nil {
			return nil, err
		}
	}
	for i, es := range spec.Edges {
		e, err := es.toEdge(g)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if _, err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (es edgeSpec) toEdge(g *Graph) (Edge, error) {
	kind, err := ParseEdgeKind(es.Kind)
	if err != nil {
		return Edge{}, err
	}
	src, ok := g.Lookup(es.Src)
	if !ok {
		return Edge{}, fmt.Errorf("undeclared source node %q", es.Src)
	}
	dst, ok := g.Lookup(es.Dst)
	if !ok {
		return Edge{}, fmt.Errorf("undeclared destination node %q", es.Dst)
	}
	e := Edge{Kind: kind, Src: src, Dst: dst, Guard: es.Guard}
	switch kind {
	case FieldAccess:
		e.Offset = es.Offset
		e.Variant = es.Variant
	case Call, Return:
		if es.Site != "" {
			site, ok := g.CallSiteByName(es.Site)
			if !ok {
				return Edge{}, fmt.Errorf("undeclared call site %q", es.Site)
			}
			e.CallSite = site
		}
	}
	return e, nil
}
