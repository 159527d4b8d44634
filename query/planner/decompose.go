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

package planner

import (
	"context"
	"fmt"

	"github.com/ebay/federation/query/estimate"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/query/selector"
	"github.com/ebay/federation/rdf"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// A Decomposer turns a logical query expression into one that a federation of
// sources can evaluate, by replacing each of its BGPs with the best Plan for
// it.
type Decomposer struct {
	Selector   selector.Selector
	Estimators estimate.Estimators
	Options    Options
}

// Decompose returns a new expression equivalent to 'expr' in which every BGP
// has been replaced by a Plan. 'expr' is not modified. Subtrees that are
// already plans are left alone, so decomposing a decomposed expression returns
// an equivalent expression.
//
// It returns a *StructuralError if 'expr' is malformed and an
// *UnanswerableQueryError if no source can answer some pattern.
func (d *Decomposer) Decompose(ctx context.Context, expr plandef.Expr,
	dataset rdf.Dataset, bindings rdf.Binding) (plandef.Expr, error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "decompose")
	defer span.Finish()
	bgps, err := CollectBGPs(expr)
	if err != nil {
		return nil, err
	}
	span.SetTag("bgps", len(bgps))
	plans := make(map[plandef.Expr]*plandef.Plan, len(bgps))
	for _, bgp := range bgps {
		plan, err := d.plan(ctx, bgp, dataset, bindings)
		if err != nil {
			return nil, err
		}
		plans[bgp.Root] = plan
	}
	res, err := plandef.Replace(expr, func(e plandef.Expr) (plandef.Expr, bool, error) {
		if plan, found := plans[e]; found {
			return plan, true, nil
		}
		switch e.(type) {
		case *plandef.Plan, *plandef.SourceQuery:
			return e, true, nil
		}
		return nil, false, nil
	})
	if err != nil {
		return nil, err
	}
	res = PushDownLimit(res)
	res = CleanupExtensions(res)
	return res, nil
}

// plan finds the best plan for a single BGP. The BGP's sources are resolved
// once, then handed to the optimizer through a Static selector.
func (d *Decomposer) plan(ctx context.Context, bgp BGP,
	dataset rdf.Dataset, bindings rdf.Binding) (*plandef.Plan, error) {

	selection, err := d.Selector.Sources(bgp.Root, dataset, bindings)
	if err != nil {
		return nil, fmt.Errorf("source selection failed: %w", err)
	}
	opt := DPOptimizer{
		Selector:   selector.NewStatic(selection),
		Estimators: d.Estimators,
		Options:    d.Options,
	}
	plan, ok, err := opt.BestPlan(ctx, bgp.Root, dataset, bindings)
	if err != nil {
		log.WithError(err).Warn("Unable to plan BGP")
		return nil, err
	}
	if !ok {
		unanswerable := new(UnanswerableQueryError)
		for _, p := range bgp.Patterns() {
			if len(selection.SitesFor(p)) == 0 {
				unanswerable.Patterns = append(unanswerable.Patterns, p)
			}
		}
		log.WithError(unanswerable).Warn("Unable to plan BGP")
		return nil, unanswerable
	}
	metrics.bgpsDecomposed.Inc()
	return plan, nil
}
