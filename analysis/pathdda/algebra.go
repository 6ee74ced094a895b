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
	"sort"
	"strings"

	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
)

// ConditionAlgebra is the algebra of path conditions. Conditions are opaque to the analysis: they are only built
// and tested through the algebra.
type ConditionAlgebra interface {
	True() dda.Condition
	False() dda.Condition
	And(a, b dda.Condition) dda.Condition
	Complement(a dda.Condition) dda.Condition

	// EdgeGuard returns the condition under which the value flows along e
	EdgeGuard(e *vfg.Edge) dda.Condition

	Satisfiable(c dda.Condition) bool
}

// Conjunction is a conjunction of literals. A literal is a label, possibly negated.
type Conjunction struct {
	literals map[string]bool
	unsat    bool
}

// Literals returns the literals of the conjunction, negated literals prefixed by "!", sorted by label
func (c *Conjunction) Literals() []string {
	labels := make([]string, 0, len(c.literals))
	for l := range c.literals {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for i, l := range labels {
		if !c.literals[l] {
			labels[i] = "!" + l
		}
	}
	return labels
}

func (c *Conjunction) String() string {
	if c.unsat {
		return "false"
	}
	if len(c.literals) == 0 {
		return "true"
	}
	return strings.Join(c.Literals(), " && ")
}

// LiteralAlgebra is the algebra of conjunctions of literals. The guard of an edge is the conjunction of its
// labels, where a label "!c" is the negation of "c".
//
// The complement of a conjunction with more than one literal is a disjunction, which is approximated by true.
type LiteralAlgebra struct{}

var (
	trueConjunction  = &Conjunction{}
	falseConjunction = &Conjunction{unsat: true}
)

func (LiteralAlgebra) True() dda.Condition { return trueConjunction }

func (LiteralAlgebra) False() dda.Condition { return falseConjunction }

func asConjunction(c dda.Condition) *Conjunction {
	if c == nil {
		return trueConjunction
	}
	conj, ok := c.(*Conjunction)
	if !ok {
		panic(fmt.Sprintf("condition %v is not a conjunction of literals", c))
	}
	return conj
}

// And returns the conjunction of a and b. A nil condition is true.
func (LiteralAlgebra) And(a, b dda.Condition) dda.Condition {
	ca, cb := asConjunction(a), asConjunction(b)
	if ca.unsat || cb.unsat {
		return falseConjunction
	}
	if len(cb.literals) == 0 {
		return ca
	}
	if len(ca.literals) == 0 {
		return cb
	}
	r := &Conjunction{literals: make(map[string]bool, len(ca.literals)+len(cb.literals))}
	for l, pos := range ca.literals {
		r.literals[l] = pos
	}
	for l, pos := range cb.literals {
		if prev, ok := r.literals[l]; ok && prev != pos {
			return falseConjunction
		}
		r.literals[l] = pos
	}
	return r
}

func (LiteralAlgebra) Complement(a dda.Condition) dda.Condition {
	c := asConjunction(a)
	switch {
	case c.unsat:
		return trueConjunction
	case len(c.literals) == 0:
		return falseConjunction
	case len(c.literals) == 1:
		for l, pos := range c.literals {
			return &Conjunction{literals: map[string]bool{l: !pos}}
		}
	}
	return trueConjunction
}

// EdgeGuard returns the conjunction of the guard labels of e
func (alg LiteralAlgebra) EdgeGuard(e *vfg.Edge) dda.Condition {
	if e == nil || len(e.Guard) == 0 {
		return trueConjunction
	}
	var c dda.Condition = trueConjunction
	for _, label := range e.Guard {
		c = alg.And(c, Literal(label))
	}
	return c
}

func (LiteralAlgebra) Satisfiable(c dda.Condition) bool {
	return !asConjunction(c).unsat
}

// Literal returns the condition of a single label. "!c" is the negation of "c"; an empty label is true.
func Literal(label string) dda.Condition {
	label = strings.TrimSpace(label)
	pos := true
	for strings.HasPrefix(label, "!") {
		pos = !pos
		label = strings.TrimSpace(label[1:])
	}
	if label == "" {
		return trueConjunction
	}
	return &Conjunction{literals: map[string]bool{label: pos}}
}
