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

// Package query is the high level entry point for running federated queries.
// It decomposes a query expression into a plan over the federation's sources,
// then evaluates the plan.
package query

import (
	"context"

	"github.com/ebay/federation/query/estimate"
	"github.com/ebay/federation/query/exec"
	"github.com/ebay/federation/query/planner"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/query/selector"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/parallel"
	"github.com/ebay/federation/util/tracing"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// Options configure an Engine.
type Options struct {
	// Chooses the sources that may answer each pattern. Required.
	Selector selector.Selector
	// Used by the optimizer to compare plans.
	Estimators estimate.Estimators
	// Evaluates source queries. Required.
	Executor exec.QueryExecutor
	// Runs the calls to Executor. Required; owned by the caller.
	Pool    *parallel.Pool
	Planner planner.Options
	Exec    exec.Options
}

// Engine runs queries against a federation. It's safe for concurrent use.
type Engine struct {
	decomposer *planner.Decomposer
	exec       *exec.Engine
}

// New returns an Engine.
func New(opts Options) *Engine {
	return &Engine{
		decomposer: &planner.Decomposer{
			Selector:   opts.Selector,
			Estimators: opts.Estimators,
			Options:    opts.Planner,
		},
		exec: exec.New(opts.Executor, opts.Pool, opts.Exec),
	}
}

// Prepare returns the decomposed form of 'expr', in which every basic graph
// pattern has been replaced by a plan of source queries.
func (e *Engine) Prepare(ctx context.Context, expr plandef.Expr,
	dataset rdf.Dataset, bindings rdf.Binding) (plandef.Expr, error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "plan query")
	tracing.UpdateMetric(span, metrics.planQueryDurationSeconds)
	defer span.Finish()
	plan, err := e.decomposer.Decompose(ctx, expr, dataset, bindings)
	if err != nil {
		log.WithError(err).Warn("Planner failed")
		return nil, err
	}
	return plan, nil
}

// Query prepares 'expr' and returns a stream of its results, along with the
// plan being evaluated. The results extend 'bindings'. Evaluation starts when
// the stream is first read; the caller must read the stream to its end or close
// it.
func (e *Engine) Query(ctx context.Context, expr plandef.Expr,
	dataset rdf.Dataset, bindings rdf.Binding) (*exec.Stream, plandef.Expr, error) {

	plan, err := e.Prepare(ctx, expr, dataset, bindings)
	if err != nil {
		return nil, nil, err
	}
	return e.exec.Evaluate(ctx, plan, bindings), plan, nil
}

// Run prepares and evaluates 'expr', calling 'fn' with each result. It blocks
// until the query completes, fails, or 'fn' returns an error.
func (e *Engine) Run(ctx context.Context, expr plandef.Expr,
	dataset rdf.Dataset, bindings rdf.Binding, fn func(rdf.Binding) error) error {

	span, ctx := opentracing.StartSpanFromContext(ctx, "query")
	defer span.Finish()
	stream, _, err := e.Query(ctx, expr, dataset, bindings)
	if err != nil {
		return err
	}
	defer stream.Close()
	execSpan, _ := opentracing.StartSpanFromContext(ctx, "execute query")
	tracing.UpdateMetric(execSpan, metrics.executeQueryDurationSeconds)
	defer execSpan.Finish()
	count := 0
	for {
		b, ok := stream.Next()
		if !ok {
			break
		}
		count++
		if err := fn(b); err != nil {
			return err
		}
	}
	span.SetTag("results", count)
	return stream.Err()
}
