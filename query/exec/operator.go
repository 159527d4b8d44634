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
	"sync/atomic"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/clocks"
)

// results receives the output of an operator. Each operator calls add from
// one goroutine at a time. If add returns an error, the operator must stop
// and return an error.
type results interface {
	add(ctx context.Context, b rdf.Binding) error
}

// resultsFunc adapts a function to the results interface.
type resultsFunc func(ctx context.Context, b rdf.Binding) error

func (f resultsFunc) add(ctx context.Context, b rdf.Binding) error {
	return f(ctx, b)
}

// queryOperator is an executable node of the operator tree.
type queryOperator interface {
	// run evaluates the operator once for each binding in 'seeds', sending the
	// results to 'res'. It returns once all results have been sent.
	run(ctx context.Context, seeds []rdf.Binding, res results) error
}

// operator is implemented by each kind of expression the engine evaluates.
// decoratedOp turns an operator into a queryOperator.
type operator interface {
	operator() plandef.Expr
	execute(ctx context.Context, seeds []rdf.Binding, res results) error
}

// Events is notified as operators run. Implementations must be safe for
// concurrent use.
type Events interface {
	// OpCompleted is called each time an operator finishes executing.
	OpCompleted(event OpCompletedEvent)
	// Clock returns the clock used to timestamp events.
	Clock() clocks.Source
}

// OpCompletedEvent describes one execution of one operator.
type OpCompletedEvent struct {
	Operator plandef.Expr
	// The number of bindings in the binding context.
	InputBulkCount int
	StartedAt      clocks.Time
	EndedAt        clocks.Time
	Output         StreamStats
	Err            error
}

// StreamStats counts the output of an operator.
type StreamStats struct {
	NumBindings int
}

type ignoreEvents struct{}

func (ignoreEvents) OpCompleted(OpCompletedEvent) {}

func (ignoreEvents) Clock() clocks.Source {
	return clocks.Wall
}

// decoratedOp counts the output of an operator and reports an event when it
// completes.
type decoratedOp struct {
	events Events
	op     operator
}

func (d *decoratedOp) run(ctx context.Context, seeds []rdf.Binding, res results) error {
	var count int64
	start := d.events.Clock().Now()
	err := d.op.execute(ctx, seeds, resultsFunc(func(ctx context.Context, b rdf.Binding) error {
		atomic.AddInt64(&count, 1)
		return res.add(ctx, b)
	}))
	d.events.OpCompleted(OpCompletedEvent{
		Operator:       d.op.operator(),
		InputBulkCount: len(seeds),
		StartedAt:      start,
		EndedAt:        d.events.Clock().Now(),
		Output:         StreamStats{NumBindings: int(atomic.LoadInt64(&count))},
		Err:            err,
	})
	return err
}

// bulkWrapper takes an operator that works on a single seed binding at a time
// and runs it once per seed, in order.
type bulkWrapper struct {
	singleRowOp operator
}

func (b *bulkWrapper) operator() plandef.Expr {
	return b.singleRowOp.operator()
}

func (b *bulkWrapper) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	if len(seeds) == 1 {
		return b.singleRowOp.execute(ctx, seeds, res)
	}
	for i := range seeds {
		if err := b.singleRowOp.execute(ctx, seeds[i:i+1], res); err != nil {
			return err
		}
	}
	return nil
}

// planOp evaluates the root of a plan.
type planOp struct {
	def  *plandef.Plan
	root queryOperator
}

func (op *planOp) operator() plandef.Expr {
	return op.def
}

func (op *planOp) execute(ctx context.Context, seeds []rdf.Binding, res results) error {
	return op.root.run(ctx, seeds, res)
}
