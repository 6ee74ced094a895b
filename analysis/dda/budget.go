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

package dda

// BudgetGuard counts the steps of a query and signals when the count exceeds the budget. Once exceeded, the guard
// stays exceeded until it is reset.
type BudgetGuard struct {
	budget   int
	count    int
	exceeded bool
}

// NewBudgetGuard returns a guard with the given budget. A budget <= 0 means the searches are unbounded.
func NewBudgetGuard(budget int) *BudgetGuard {
	return &BudgetGuard{budget: budget}
}

// Step counts one step and returns true if the budget is exceeded
func (b *BudgetGuard) Step() bool {
	if b.exceeded {
		return true
	}
	b.count++
	if b.budget > 0 && b.count > b.budget {
		b.exceeded = true
	}
	return b.exceeded
}

// Exceeded returns true if the budget has been exceeded since the last reset
func (b *BudgetGuard) Exceeded() bool {
	return b.exceeded
}

// Count returns the number of steps counted since the last reset
func (b *BudgetGuard) Count() int {
	return b.count
}

// Budget returns the ceiling of the guard
func (b *BudgetGuard) Budget() int {
	return b.budget
}

// Reset sets the count back to zero and clears the exceeded flag
func (b *BudgetGuard) Reset() {
	b.count = 0
	b.exceeded = false
}
