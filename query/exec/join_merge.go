// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exec

import (
	"context"
	"sort"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/parallel"
)

// mergeJoin reads both of its inputs, sorts each on the join variables, then
// merges them, joining each run of equal left keys with the run of equal
// right keys. Sorting here means the inputs don't need to arrive in order.
type mergeJoin struct {
	def   *plandef.MergeJoin
	left  queryOperator
	right queryOperator
}

func (m *mergeJoin) operator() plandef.Expr {
	return m.def
}

func (m *mergeJoin) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	var left, right []rdf.Binding
	collect := func(input queryOperator, into *[]rdf.Binding) func(context.Context) error {
		return func(ctx context.Context) error {
			return input.run(ctx, seeds, resultsFunc(func(_ context.Context, b rdf.Binding) error {
				*into = append(*into, b)
				return nil
			}))
		}
	}
	err := parallel.Invoke(ctx, collect(m.left, &left), collect(m.right, &right))
	if err != nil {
		return err
	}
	vars := m.def.Variables
	sortOn(left, vars)
	sortOn(right, vars)
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		switch c := compareOn(left[i], right[j], vars); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			iEnd := runEnd(left, i, vars)
			jEnd := runEnd(right, j, vars)
			for _, l := range left[i:iEnd] {
				for _, r := range right[j:jEnd] {
					if out, ok := join(l, r, m.def.Condition); ok {
						if err := res.add(ctx, out); err != nil {
							return err
						}
					}
				}
			}
			i, j = iEnd, jEnd
		}
	}
	return nil
}

func sortOn(bindings []rdf.Binding, vars plandef.VarSet) {
	sort.SliceStable(bindings, func(i, j int) bool {
		return compareOn(bindings[i], bindings[j], vars) < 0
	})
}

// runEnd returns the index just past the run of bindings starting at 'start'
// that are equal on 'vars'.
func runEnd(bindings []rdf.Binding, start int, vars plandef.VarSet) int {
	end := start + 1
	for end < len(bindings) && compareOn(bindings[start], bindings[end], vars) == 0 {
		end++
	}
	return end
}

// compareOn orders bindings by their values for 'vars', in order. Unbound
// variables sort first.
func compareOn(a, b rdf.Binding, vars plandef.VarSet) int {
	for _, v := range vars {
		av, aOK := a.Get(v.Name)
		bv, bOK := b.Get(v.Name)
		switch {
		case !aOK && !bOK:
			continue
		case !aOK:
			return -1
		case !bOK:
			return 1
		}
		if c := rdf.Compare(av, bv); c != 0 {
			return c
		}
	}
	return 0
}
