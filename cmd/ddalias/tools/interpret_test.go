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
	"strings"
	"testing"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint for %q: %q; check and update error message if necessary", errorMsg, hint)
	}
}

func TestHintForFlagAfterNodes(t *testing.T) {
	errorMsg := "unknown nodes: -sensitivity, path"
	containedHint := "all command line flags should be before the names"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForFailedLoadConfig(t *testing.T) {
	errorMsg := "failed to load config file cfg.yaml: could not read config file: open cfg.yaml: no such file"
	containedHint := "-config flag points to a yaml file"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForMissingGraph(t *testing.T) {
	validateHint(t, "no value-flow graph specified", "use the -graph flag")
}

func TestHintForBadGraph(t *testing.T) {
	errorMsg := "could not load graph g.yaml: edge 3: unknown node \"x\""
	validateHint(t, errorMsg, "must be declared")
}

func TestHintForSensitivity(t *testing.T) {
	errorMsg := "unknown sensitivity \"fast\" (expected one of [flow field context path])"
	validateHint(t, errorMsg, "flow, field, context or path")
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("unknown nodes: x"); hint != "" {
		t.Errorf("unexpected hint %q", hint)
	}
}
