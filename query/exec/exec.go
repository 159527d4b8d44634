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

// Package exec evaluates decomposed query expressions against a federation of
// sources. Each expression node is turned into an operator; operators push
// their results to their parent, and the top-level results are delivered to a
// single consumer through a Stream.
package exec

import (
	"context"
	"time"

	"github.com/ebay/federation/config"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/parallel"
)

// A QueryExecutor evaluates sub-expressions at individual sources. It's the
// boundary between the engine and the sources of the federation.
type QueryExecutor interface {
	// Evaluate evaluates 'expr' at 'site' once for each of 'bindings', which
	// is the binding context. Each result must extend a compatible binding
	// from the context, and is passed to 'emit'. If emit returns an error,
	// Evaluate should stop and return that error. Evaluate should give up
	// when 'ctx' is done. It must not call emit after returning.
	Evaluate(ctx context.Context, site plandef.Site, expr plandef.Expr,
		bindings []rdf.Binding, emit func(rdf.Binding) error) error
}

// Options configure an Engine. Zero values get defaults.
type Options struct {
	// Number of left results a bind join sends to its right side at once.
	BatchSize int
	// Number of results buffered between the engine and the consumer of a
	// Stream.
	StreamBuffer int
	// If set, the longest a single source query may take.
	SourceTimeout time.Duration
	// Notified of each operator execution. Optional.
	Events Events
}

// OptionsFromConfig returns the Options described by the configuration.
func OptionsFromConfig(cfg config.Exec) Options {
	cfg = cfg.WithDefaults()
	return Options{
		BatchSize:     cfg.BatchSize,
		StreamBuffer:  cfg.StreamBuffer,
		SourceTimeout: time.Duration(cfg.SourceTimeout),
	}
}

// An Engine evaluates expressions. It's safe for concurrent use by multiple
// queries.
type Engine struct {
	executor QueryExecutor
	pool     *parallel.Pool
	opts     Options
}

// New returns an Engine that sends source queries to 'executor'. Calls to the
// executor run on 'pool', which the caller owns.
func New(executor QueryExecutor, pool *parallel.Pool, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.DefaultBatchSize
	}
	if opts.StreamBuffer <= 0 {
		opts.StreamBuffer = config.DefaultStreamBuffer
	}
	if opts.Events == nil {
		opts.Events = ignoreEvents{}
	}
	return &Engine{executor: executor, pool: pool, opts: opts}
}

// Evaluate returns the results of 'expr' extending 'seed'. Evaluation starts
// on the first call to the stream's Next.
func (e *Engine) Evaluate(ctx context.Context, expr plandef.Expr, seed rdf.Binding) *Stream {
	return e.EvaluateBatch(ctx, expr, []rdf.Binding{seed})
}

// EvaluateBatch returns the results of 'expr' extending each of 'seeds'. With
// no seeds, the stream is empty.
func (e *Engine) EvaluateBatch(ctx context.Context, expr plandef.Expr, seeds []rdf.Binding) *Stream {
	return newStream(ctx, e.opts.StreamBuffer, func(ctx context.Context, res results) error {
		if len(seeds) == 0 {
			return nil
		}
		op, err := e.build(expr)
		if err != nil {
			return err
		}
		return op.run(ctx, seeds, res)
	})
}

// build returns the operator tree evaluating 'expr'. It returns an
// UnsupportedExprError for expressions that can't be evaluated, such as
// patterns that weren't decomposed into source queries.
func (e *Engine) build(expr plandef.Expr) (queryOperator, error) {
	var inputs []queryOperator
	switch expr.(type) {
	case *plandef.SourceQuery, nil:
		// A source query's input is evaluated by the source.
	default:
		for _, in := range plandef.Inputs(expr) {
			op, err := e.build(in)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, op)
		}
	}
	var op operator
	switch def := expr.(type) {
	case *plandef.SourceQuery:
		op = &sourceQueryOp{def: def, executor: e.executor, pool: e.pool, timeout: e.opts.SourceTimeout}
	case *plandef.BindJoin:
		op = &bindJoin{def: def, left: inputs[0], right: inputs[1], batchSize: e.opts.BatchSize}
	case *plandef.HashJoin:
		op = &bulkWrapper{singleRowOp: &hashJoin{def: def, left: inputs[0], right: inputs[1]}}
	case *plandef.MergeJoin:
		op = &bulkWrapper{singleRowOp: &mergeJoin{def: def, left: inputs[0], right: inputs[1]}}
	case *plandef.Union:
		op = &unionOp{def: def, left: inputs[0], right: inputs[1]}
	case *plandef.Filter:
		op = &filterOp{def: def, input: inputs[0]}
	case *plandef.Projection:
		op = &bulkWrapper{singleRowOp: &projectionOp{def: def, input: inputs[0]}}
	case *plandef.Extension:
		op = &extensionOp{def: def, input: inputs[0]}
	case *plandef.Slice:
		op = &bulkWrapper{singleRowOp: &sliceOp{def: def, input: inputs[0]}}
	case *plandef.Distinct:
		op = &bulkWrapper{singleRowOp: &distinctOp{def: def, input: inputs[0]}}
	case *plandef.Plan:
		op = &planOp{def: def, root: inputs[0]}
	default:
		return nil, &UnsupportedExprError{Expr: expr}
	}
	return &decoratedOp{events: e.opts.Events, op: op}, nil
}
