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

package cycles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-dda/internal/graphutil"
)

func TestPrintCycles(t *testing.T) {
	cg := graphutil.NewCallGraph([]graphutil.CallSite{
		{ID: 1, Caller: "main", Callee: "f"},
		{ID: 2, Caller: "f", Callee: "g"},
		{ID: 3, Caller: "g", Callee: "f"},
		{ID: 4, Caller: "g", Callee: "g"},
	})
	var buf bytes.Buffer
	PrintCycles(&buf, cg)
	out := buf.String()
	for _, expected := range []string{
		"functions:       3",
		"call edges:      4",
		"self-recursive:  1",
		"Cycles (2)",
		"f -> g -> f",
		"g -> g",
		"Recursive call sites (3)",
		"2: f -> g",
		"4: g -> g",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected %q in output:\n%s", expected, out)
		}
	}
	if strings.Contains(out, "1: main -> f") {
		t.Errorf("main -> f is not recursive:\n%s", out)
	}
}
