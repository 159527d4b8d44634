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

// filterOp passes on the results of its input for which the condition holds.
type filterOp struct {
	def   *plandef.Filter
	input queryOperator
}

func (op *filterOp) operator() plandef.Expr {
	return op.def
}

func (op *filterOp) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	return op.input.run(ctx, seeds, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		if Holds(op.def.Condition, b) {
			return res.add(ctx, b)
		}
		return nil
	}))
}

// projectionOp restricts the results of its input to the projected variables.
// Variables bound by the seed are kept, so that the results still extend it.
type projectionOp struct {
	def   *plandef.Projection
	input queryOperator
}

func (op *projectionOp) operator() plandef.Expr {
	return op.def
}

func (op *projectionOp) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	names := append(op.def.Variables.Names(), seeds[0].Names()...)
	return op.input.run(ctx, seeds, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		return res.add(ctx, b.Project(names))
	}))
}

// extensionOp binds new variables to values computed from each result of its
// input. A variable whose expression can't be evaluated is left unbound.
type extensionOp struct {
	def   *plandef.Extension
	input queryOperator
}

func (op *extensionOp) operator() plandef.Expr {
	return op.def
}

func (op *extensionOp) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	return op.input.run(ctx, seeds, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		for _, eb := range op.def.Bindings {
			if _, bound := b.Get(eb.Out.Name); bound {
				continue
			}
			val, err := EvalTerm(eb.Expr, b)
			if err != nil {
				continue
			}
			b = b.With(eb.Out.Name, val)
		}
		return res.add(ctx, b)
	}))
}
