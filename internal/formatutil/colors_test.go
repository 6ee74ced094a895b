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

package formatutil

import "testing"

func TestSanitize(t *testing.T) {
	for input, expected := range map[string]string{
		"p":          "p",
		"a\x1b[1mb":  "a\\x1b[1mb",
		"line\nnext": "line\\nnext",
	} {
		if s := Sanitize(input); s != expected {
			t.Errorf("Sanitize(%q) = %q, expected %q", input, s, expected)
		}
	}
}

func TestColorWithoutTerminal(t *testing.T) {
	// test output is not a terminal
	if s := Bold("x", 1); s != "x1" {
		t.Errorf("expected uncolored output, got %q", s)
	}
}
