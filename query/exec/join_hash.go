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
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/parallel"
)

// hashJoin reads all of its left input into a hash table keyed by the join
// variables, then streams its right input, emitting each right result merged
// with every matching left result. Both inputs start at once; the right
// input waits for the table to be built before its first result is looked up.
type hashJoin struct {
	def   *plandef.HashJoin
	left  queryOperator
	right queryOperator
}

func (h *hashJoin) operator() plandef.Expr {
	return h.def
}

func (h *hashJoin) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	var table map[uint64][]rdf.Binding
	built := make(chan struct{})

	fnLeft := func(ctx context.Context) error {
		leftValues := make(map[uint64][]rdf.Binding)
		err := h.left.run(ctx, seeds, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
			key := joinKey(b, h.def.Variables)
			leftValues[key] = append(leftValues[key], b)
			return nil
		}))
		if err != nil {
			return err
		}
		table = leftValues
		close(built)
		return nil
	}

	fnRight := func(ctx context.Context) error {
		return h.right.run(ctx, seeds, resultsFunc(func(ctx context.Context, right rdf.Binding) error {
			select {
			case <-built:
			case <-ctx.Done():
				return ctx.Err()
			}
			for _, left := range table[joinKey(right, h.def.Variables)] {
				if out, ok := join(left, right, h.def.Condition); ok {
					if err := res.add(ctx, out); err != nil {
						return err
					}
				}
			}
			return nil
		}))
	}
	return parallel.Invoke(ctx, fnLeft, fnRight)
}

// joinKey returns a hash of the values 'b' binds to 'vars'. Two bindings that
// bind the same values have the same key. Keys of different values may
// collide; join rejects those pairs when it merges them.
func joinKey(b rdf.Binding, vars plandef.VarSet) uint64 {
	var key strings.Builder
	for _, v := range vars {
		if val, ok := b.Get(v.Name); ok {
			val.Key(&key)
		}
		key.WriteByte(0)
	}
	return xxhash.Sum64String(key.String())
}

// join merges two results, returning false if they're not compatible or if
// the merged result doesn't satisfy 'cond'. A nil condition always holds.
func join(left, right rdf.Binding, cond plandef.ValueExpr) (rdf.Binding, bool) {
	out, ok := left.Merge(right)
	if !ok {
		return rdf.Binding{}, false
	}
	if cond != nil && !Holds(cond, out) {
		return rdf.Binding{}, false
	}
	return out, true
}
