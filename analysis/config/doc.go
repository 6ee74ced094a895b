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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type, and the fields of [Options] are inlined at the top level. Fields that are absent keep the value
of [NewDefault].
For example, a valid config file is as follows:

	graph: program.vfg.yaml
	sensitivity: context
	query-budget: 5000
	visited-identity: full-stack
	max-stack-depth: 8
	log-level: 4
	queries:
	  - y
	  - w

# Budgets

The query budget bounds the number of search steps of one top-level query, including the nested searches
started by load/store matching. A query that exceeds its budget returns a partial result. The path budget plays
the same role for the path-sensitive analysis, which then answers the query again with the context-sensitive
analysis.

# Unsafe options

Setting visited-identity to full-stack makes the search more precise, but the stacks are then truncated at
max-stack-depth frames, which loses precision in deeply nested field or call chains.
*/
package config
