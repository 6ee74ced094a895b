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

package pathdda

import (
	"fmt"

	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
)

// PathCond is the condition under which a fact holds: a path condition and a calling context
type PathCond struct {
	Paths    dda.Condition
	Contexts dda.CallString
}

func (c PathCond) String() string {
	paths := "true"
	if c.Paths != nil {
		paths = c.Paths.String()
	}
	return fmt.Sprintf("%s @ %s", paths, c.Contexts)
}

// PathVar is a node under a condition
type PathVar struct {
	Node   vfg.NodeID
	Fields []int
	Cond   PathCond
}

func (v PathVar) String() string {
	if len(v.Fields) > 0 {
		return fmt.Sprintf("%d.%v | %s", v.Node, v.Fields, v.Cond)
	}
	return fmt.Sprintf("%d | %s", v.Node, v.Cond)
}

// IsCondCompatible returns true if the facts under a and b can hold together: their path conditions are jointly
// satisfiable and, unless one of them is a singleton context, their call strings agree on the innermost frames
// they share.
func IsCondCompatible(alg ConditionAlgebra, a, b PathCond, singleton bool) bool {
	if !alg.Satisfiable(alg.And(a.Paths, b.Paths)) {
		return false
	}
	if singleton {
		return true
	}
	return contextsAgree(a.Contexts, b.Contexts)
}

func contextsAgree(a, b dda.CallString) bool {
	for i := 1; i <= len(a) && i <= len(b); i++ {
		if a[len(a)-i] != b[len(b)-i] {
			return false
		}
	}
	return true
}

func targetCond(t dda.Target) PathCond {
	return PathCond{Paths: t.Cond, Contexts: t.Context}
}
