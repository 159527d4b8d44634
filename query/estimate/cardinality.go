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

package estimate

import (
	"math"

	"github.com/ebay/federation/query/planner/plandef"
	log "github.com/sirupsen/logrus"
)

// Cardinality is the default CardinalityEstimator. It counts patterns using
// Stats, when available, and derives everything else from selectivities.
type Cardinality struct {
	// Optional.
	Stats       Stats
	Selectivity SelectivityEstimator
	// Used for patterns without statistics.
	Default float64
}

// Cardinality implements CardinalityEstimator.
func (c *Cardinality) Cardinality(expr plandef.Expr, site plandef.Site) float64 {
	switch e := expr.(type) {
	case *plandef.Pattern:
		if c.Stats != nil && site != plandef.AnySite {
			if n, ok := c.Stats.PatternCount(site, e); ok {
				return n
			}
		}
		return c.Default
	case *plandef.Join:
		sel := factor("join selectivity", c.Selectivity.JoinSelectivity(e, site), e)
		return c.Cardinality(e.Left, site) * c.Cardinality(e.Right, site) * sel
	case *plandef.Filter:
		return c.Cardinality(e.Input, site) * c.conditions(e.Condition, e.Input, site)
	case *plandef.Union:
		return c.input(e.Left, site) + c.input(e.Right, site)
	case *plandef.Projection:
		return c.Cardinality(e.Input, site)
	case *plandef.Extension:
		return c.Cardinality(e.Input, site)
	case *plandef.Distinct:
		return c.Cardinality(e.Input, site)
	case *plandef.Slice:
		n := c.Cardinality(e.Input, site)
		if e.Paging.Offset != nil {
			n = math.Max(0, n-float64(*e.Paging.Offset))
		}
		if e.Paging.Limit != nil {
			n = math.Min(n, float64(*e.Paging.Limit))
		}
		return n
	case *plandef.SourceQuery:
		return c.Cardinality(e.Input, e.Site)
	case *plandef.BindJoin, *plandef.HashJoin, *plandef.MergeJoin:
		props := plandef.Props(e)
		join := &plandef.Join{
			Left:  plandef.Logical(props.Left),
			Right: plandef.Logical(props.Right),
		}
		sel := factor("join selectivity", c.Selectivity.JoinSelectivity(join, site), e)
		n := c.input(props.Left, site) * c.input(props.Right, site) * sel
		if props.Condition != nil {
			n *= c.conditions(props.Condition, join, site)
		}
		return n
	case *plandef.Plan:
		return c.input(e.Root, site)
	}
	log.Panicf("estimate.Cardinality: unexpected expression type %T", expr)
	return 0
}

// input returns the estimate already attached to a physical expression, or
// computes one for a logical expression.
func (c *Cardinality) input(expr plandef.Expr, site plandef.Site) float64 {
	if est, ok := plandef.EstimatesOf(expr); ok {
		return est.Cardinality
	}
	return c.Cardinality(expr, site)
}

func (c *Cardinality) conditions(cond plandef.ValueExpr, input plandef.Expr, site plandef.Site) float64 {
	sel := 1.0
	for _, part := range plandef.Conjuncts(cond) {
		sel *= factor("condition selectivity",
			c.Selectivity.ConditionSelectivity(part, input, site), input)
	}
	return sel
}
