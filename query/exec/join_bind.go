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

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
)

// bindJoin streams its left input in batches. Each batch becomes the binding
// context for one evaluation of the right input, whose results already extend
// the left results they match. Batches are evaluated in the order the left
// results arrive.
type bindJoin struct {
	def       *plandef.BindJoin
	left      queryOperator
	right     queryOperator
	batchSize int
}

func (j *bindJoin) operator() plandef.Expr {
	return j.def
}

func (j *bindJoin) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	out := resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		if j.def.Condition != nil && !Holds(j.def.Condition, b) {
			return nil
		}
		return res.add(ctx, b)
	})
	batch := make([]rdf.Binding, 0, j.batchSize)
	flush := func(ctx context.Context) error {
		if len(batch) == 0 {
			return nil
		}
		err := j.right.run(ctx, batch, out)
		batch = make([]rdf.Binding, 0, j.batchSize)
		return err
	}
	err := j.left.run(ctx, seeds, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		batch = append(batch, b)
		if len(batch) < j.batchSize {
			return nil
		}
		return flush(ctx)
	}))
	if err != nil {
		return err
	}
	return flush(ctx)
}
