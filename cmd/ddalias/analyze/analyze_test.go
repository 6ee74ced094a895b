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

package analyze

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/cmd/ddalias/tools"
)

func analyzeExample(t *testing.T, sensitivity string) (*tools.Inputs, *dda.Report) {
	in, err := tools.LoadInputs(tools.CommonFlags{
		GraphPath:   "../tools/testdata/example.vfg.yaml",
		Sensitivity: sensitivity,
	})
	if err != nil {
		t.Fatalf("could not load inputs: %v", err)
	}
	nodes, err := in.QueryNodes(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, err := in.NewQuerier()
	if err != nil {
		t.Fatalf("could not build querier: %v", err)
	}
	return in, dda.AnalyzeAll(q, nodes, nil)
}

func TestWriteResults(t *testing.T) {
	in, report := analyzeExample(t, "context")
	filename, err := WriteResults(t.TempDir(), in.Graph, report)
	if err != nil {
		t.Fatalf("could not write results: %v", err)
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("could not read results: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected one line per pointer, got %q", lines)
	}
	if lines[2] != "y\tcomplete\tpts=[o]\taliases=[p]" {
		t.Errorf("unexpected result line %q", lines[2])
	}
}

func TestPrintStats(t *testing.T) {
	in, report := analyzeExample(t, "flow")
	var buf bytes.Buffer
	PrintStats(&buf, in.Graph, report)
	out := buf.String()
	for _, expected := range []string{"queries:           3", "out of budget:     0"} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected %q in output:\n%s", expected, out)
		}
	}
}
