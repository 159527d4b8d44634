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
	"errors"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/cmp"
)

// errLimitReached is returned through the input of a sliceOp once it has
// produced enough results. It never escapes the sliceOp.
var errLimitReached = errors.New("limit reached")

// sliceOp skips the first Offset results of its input and stops it after
// Limit more. It works on a single seed at a time.
type sliceOp struct {
	def   *plandef.Slice
	input queryOperator
}

func (op *sliceOp) operator() plandef.Expr {
	return op.def
}

func (op *sliceOp) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	var offset, limit uint64
	limited := op.def.Paging.Limit != nil
	if limited {
		limit = *op.def.Paging.Limit
		if limit == 0 {
			return nil
		}
	}
	if op.def.Paging.Offset != nil {
		offset = *op.def.Paging.Offset
	}
	inputCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var seen, sent uint64
	err := op.input.run(inputCtx, seeds, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		seen++
		if seen <= offset {
			return nil
		}
		if err := res.add(ctx, b); err != nil {
			return err
		}
		sent++
		if limited && sent >= limit {
			cancel()
			return errLimitReached
		}
		return nil
	}))
	if limited && sent >= limit && ctx.Err() == nil {
		// The input was stopped early on purpose.
		return nil
	}
	return err
}

// distinctOp removes duplicate results of its input. It works on a single
// seed at a time.
type distinctOp struct {
	def   *plandef.Distinct
	input queryOperator
}

func (op *distinctOp) operator() plandef.Expr {
	return op.def
}

func (op *distinctOp) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	seen := make(map[string]struct{})
	return op.input.run(ctx, seeds, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		key := cmp.GetKey(b)
		if _, dup := seen[key]; dup {
			return nil
		}
		seen[key] = struct{}{}
		return res.add(ctx, b)
	}))
}
