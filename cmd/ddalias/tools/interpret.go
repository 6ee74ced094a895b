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

import "regexp"

// Captures errors happening before any analysis starts (config could not load)
var regexCouldNotLoadConfig = regexp.MustCompile("failed to load config file")

// Captures the kind of error that happen when you put a flag at the end instead of node names
var unknownFlagNode = regexp.MustCompile("unknown nodes: (.*, )?-(\\w)")

// Captures errors in the graph file
var regexCouldNotLoadGraph = regexp.MustCompile("could not (read graph file|load graph)")

var regexNoGraph = regexp.MustCompile("no value-flow graph specified")

var regexUnknownSensitivity = regexp.MustCompile("unknown sensitivity")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoadConfig.MatchString(errMsg) {
		return "make sure the -config flag points to a yaml file with the analysis options"
	}
	if unknownFlagNode.MatchString(errMsg) {
		return "all command line flags should be before the names of the nodes to query"
	}
	if regexNoGraph.MatchString(errMsg) {
		return "set the graph option in the config file or use the -graph flag"
	}
	if regexCouldNotLoadGraph.MatchString(errMsg) {
		return "every node used by an edge must be declared under pointers, objects or values in the graph file"
	}
	if regexUnknownSensitivity.MatchString(errMsg) {
		return "the sensitivity is one of flow, field, context or path"
	}
	return ""
}
