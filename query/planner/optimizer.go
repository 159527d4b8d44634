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
	"github.com/ebay/federation/util/tracing"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// maxPatterns is the largest BGP the optimizer accepts. The search tries every
// split of every subset of the patterns, which takes about 3^n steps.
const maxPatterns = 12

// Options control plan generation.
type Options struct {
	// If true, a pattern that several sites can answer is answered by the
	// union of all of them. If false, only the cheapest site is asked.
	CompleteSources bool
	// If true, merge joins are never considered.
	DisableMergeJoin bool
}

// A DPOptimizer finds the cheapest plan for a BGP by dynamic programming over
// subsets of its patterns.
type DPOptimizer struct {
	Selector   selector.Selector
	Estimators estimate.Estimators
	Options    Options
}

// BestPlan returns the cheapest plan for the patterns and filters of 'bgp'.
// The returned plan covers exactly the BGP's patterns, and every leaf of it is
// a SourceQuery. ok is false if there's no plan: the BGP has no patterns, or
// no source can answer one of them. Errors report malformed input, invalid
// estimates, source selection failures, and cancellation.
func (o *DPOptimizer) BestPlan(ctx context.Context, bgp plandef.Expr,
	dataset rdf.Dataset, bindings rdf.Binding) (plan *plandef.Plan, ok bool, err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "optimize bgp")
	tracing.UpdateMetric(span, metrics.optimizeBGPSeconds)
	defer span.Finish()
	dctx := NewDecomposerContext(BGP{Root: bgp})
	n := len(dctx.Patterns)
	span.SetTag("patterns", n)
	if n == 0 {
		return nil, false, nil
	}
	if n > maxPatterns {
		return nil, false, structuralErrorf("BGP has %d patterns, limit is %d", n, maxPatterns)
	}
	selection, err := o.Selector.Sources(bgp, dataset, bindings)
	if err != nil {
		return nil, false, fmt.Errorf("source selection failed: %w", err)
	}
	sites := make([][]plandef.Site, n)
	for i, p := range dctx.Patterns {
		sites[i] = selection.SitesFor(p)
		if len(sites[i]) == 0 {
			log.WithFields(log.Fields{"pattern": p.String()}).
				Warn("No source can answer pattern")
			return nil, false, nil
		}
	}
	gen := newGenerator(dctx, sites, o.Estimators, o.Options)
	best, err := o.search(ctx, gen, n)
	if err != nil {
		return nil, false, err
	}
	root, est := best.expr, best.est
	if unplaced := gen.unplaced(); len(unplaced) > 0 {
		root = &plandef.Filter{Condition: plandef.AndAll(unplaced), Input: root}
	}
	plan = &plandef.Plan{Root: root, Est: est}
	span.SetTag("cost", est.Cost)
	log.WithFields(log.Fields{
		"patterns":    n,
		"candidates":  gen.built,
		"cardinality": est.Cardinality,
		"cost":        est.Cost,
	}).Debugf("Chose plan:\n%v", plandef.Format(plan))
	return plan, true, nil
}

// search fills in the table of best plans, smallest pattern sets first, and
// returns the best plan for all the patterns.
func (o *DPOptimizer) search(ctx context.Context, gen *generator, n int) (*candidate, error) {
	full := patternSet(1)<<uint(n) - 1
	bySize := make([][]patternSet, n+1)
	for set := patternSet(1); set <= full; set++ {
		bySize[set.size()] = append(bySize[set.size()], set)
	}
	best := make(map[patternSet]*cheapest, full)
	pick := func(set patternSet, cands []*candidate) {
		b := best[set]
		if b == nil {
			b = new(cheapest)
			best[set] = b
		}
		for _, c := range cands {
			b.add(c)
		}
	}
	for _, set := range bySize[1] {
		pick(set, gen.accessPlans(set))
	}
	for size := 2; size <= n; size++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, set := range bySize[size] {
			pick(set, gen.accessPlans(set))
			for left := (set - 1) & set; left > 0; left = (left - 1) & set {
				l := best[left].best()
				if l == nil {
					continue
				}
				for _, r := range best[set&^left].rightInputs() {
					pick(set, gen.joinPlans(l, r))
				}
			}
		}
		if gen.err != nil {
			return nil, gen.err
		}
	}
	if gen.err != nil {
		return nil, gen.err
	}
	res := best[full].best()
	if res == nil {
		log.Panicf("planner: no plan for the full pattern set of %d patterns", n)
	}
	return res, nil
}
