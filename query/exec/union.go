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
	"sync"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/parallel"
)

// unionOp runs both of its inputs concurrently with the same binding context
// and emits the results of both as they arrive. Duplicates are kept.
type unionOp struct {
	def   *plandef.Union
	left  queryOperator
	right queryOperator
}

func (u *unionOp) operator() plandef.Expr {
	return u.def
}

func (u *unionOp) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	var lock sync.Mutex
	out := resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		lock.Lock()
		defer lock.Unlock()
		return res.add(ctx, b)
	})
	return parallel.Invoke(ctx,
		func(ctx context.Context) error {
			return u.left.run(ctx, seeds, out)
		},
		func(ctx context.Context) error {
			return u.right.run(ctx, seeds, out)
		})
}
