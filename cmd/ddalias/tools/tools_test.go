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

package tools

import (
	"testing"

	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
)

func TestLoadInputs(t *testing.T) {
	in, err := LoadInputs(CommonFlags{ConfigPath: "testdata/config.yaml"})
	if err != nil {
		t.Fatalf("could not load inputs: %v", err)
	}
	if in.Config.Sensitivity != config.FieldSensitivity {
		t.Errorf("expected field sensitivity, got %s", in.Config.Sensitivity)
	}
	if in.Graph.NumNodes() != 5 {
		t.Errorf("expected 5 nodes, got %d", in.Graph.NumNodes())
	}
	nodes, err := in.QueryNodes(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0] != in.Graph.MustLookup("y") {
		t.Errorf("expected the queries of the config, got %v", nodes)
	}
	if _, err := in.QueryNodes([]string{"y", "-verbose"}); err == nil {
		t.Errorf("expected an error for an unknown node")
	} else if HintForErrorMessage(err.Error()) == "" {
		t.Errorf("expected a hint for %q", err)
	}
}

func TestLoadInputsOverrides(t *testing.T) {
	in, err := LoadInputs(CommonFlags{
		ConfigPath:  "testdata/nograph.yaml",
		GraphPath:   "testdata/example.vfg.yaml",
		Sensitivity: "PATH",
		Verbose:     true,
	})
	if err != nil {
		t.Fatalf("could not load inputs: %v", err)
	}
	if in.Config.Sensitivity != config.PathSensitivity {
		t.Errorf("expected path sensitivity, got %s", in.Config.Sensitivity)
	}
	if !in.Config.Verbose() {
		t.Errorf("expected verbose config")
	}
}

func TestLoadInputsErrors(t *testing.T) {
	if _, err := LoadInputs(CommonFlags{ConfigPath: "testdata/nograph.yaml"}); err == nil {
		t.Errorf("expected an error when no graph is specified")
	}
	if _, err := LoadInputs(CommonFlags{GraphPath: "testdata/example.vfg.yaml", Sensitivity: "fast"}); err == nil {
		t.Errorf("expected an error for an unknown sensitivity")
	}
	if _, err := LoadInputs(CommonFlags{ConfigPath: "testdata/missing.yaml"}); err == nil {
		t.Errorf("expected an error for a missing config file")
	}
}

func TestNewQuerier(t *testing.T) {
	for _, s := range config.AllSensitivities {
		t.Run(string(s), func(t *testing.T) {
			in, err := LoadInputs(CommonFlags{GraphPath: "testdata/example.vfg.yaml", Sensitivity: string(s)})
			if err != nil {
				t.Fatalf("could not load inputs: %v", err)
			}
			q, err := in.NewQuerier()
			if err != nil {
				t.Fatalf("could not build querier: %v", err)
			}
			y := in.Graph.MustLookup("y")
			r := q.ComputeAlias(y)
			pts := NodeNames(in.Graph, r.PointsToNodes())
			if len(pts) != 1 || pts[0] != "o" {
				t.Errorf("expected y to point to o, got %v", pts)
			}
			if r.Aliases.Has(int(in.Graph.MustLookup("q"))) {
				t.Errorf("q should not alias y")
			}
		})
	}
}

func TestNodeNames(t *testing.T) {
	g := vfg.New()
	b, _ := g.AddNode("b", vfg.Pointer)
	a, _ := g.AddNode("a", vfg.Pointer)
	names := NodeNames(g, []vfg.NodeID{b, a})
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
