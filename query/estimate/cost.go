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
)

// NetworkCost is the default CostEstimator. It models the cost of a plan as
// the requests it sends to sources, the results it transfers over the
// network, and the rows it processes locally.
type NetworkCost struct {
	// Fixed cost per request sent to a source.
	RequestCost float64
	// Cost per result received from a source.
	TransferCostPerRow float64
	// Cost per row handled locally (hashed, looked up, compared, sorted).
	LocalCostPerRow float64
	// Number of left results per request sent by bind joins.
	BatchSize int
}

// Cost implements CostEstimator.
func (c *NetworkCost) Cost(expr plandef.Expr) float64 {
	switch e := expr.(type) {
	case *plandef.SourceQuery:
		return c.RequestCost + e.Est.Cardinality*c.TransferCostPerRow
	case *plandef.HashJoin:
		l, r := cardinality(e.Left), cardinality(e.Right)
		return c.input(e.Left) + c.input(e.Right) +
			(l+r+e.Est.Cardinality)*c.LocalCostPerRow
	case *plandef.BindJoin:
		return c.bindJoin(e)
	case *plandef.MergeJoin:
		l, r := cardinality(e.Left), cardinality(e.Right)
		return c.input(e.Left) + c.input(e.Right) +
			(sortRows(l)+sortRows(r)+l+r+e.Est.Cardinality)*c.LocalCostPerRow
	case *plandef.Plan:
		return c.input(e.Root)
	}
	total := 0.0
	for _, in := range plandef.Inputs(expr) {
		total += c.input(in)
	}
	return total
}

// bindJoin costs the left input, plus the requests sent for each batch of left
// results, plus transferring the joined results. If the right input can't
// take a batch in one request, it's evaluated once per left result instead.
func (c *NetworkCost) bindJoin(e *plandef.BindJoin) float64 {
	left := cardinality(e.Left)
	cost := c.input(e.Left) + left*c.LocalCostPerRow
	sources, ok := remoteLeaves(e.Right)
	if !ok {
		return cost + left*c.input(e.Right)
	}
	batch := float64(c.BatchSize)
	if batch < 1 {
		batch = 1
	}
	requests := math.Ceil(left/batch) * float64(sources)
	return cost + requests*c.RequestCost + e.Est.Cardinality*c.TransferCostPerRow
}

// remoteLeaves returns the number of source queries making up 'e', if 'e'
// consists only of source queries and unions of them.
func remoteLeaves(e plandef.Expr) (int, bool) {
	switch e := e.(type) {
	case *plandef.SourceQuery:
		return 1, true
	case *plandef.Plan:
		return remoteLeaves(e.Root)
	case *plandef.Union:
		l, lok := remoteLeaves(e.Left)
		r, rok := remoteLeaves(e.Right)
		return l + r, lok && rok
	}
	return 0, false
}

func (c *NetworkCost) input(e plandef.Expr) float64 {
	if est, ok := plandef.EstimatesOf(e); ok {
		return est.Cost
	}
	return c.Cost(e)
}

func cardinality(e plandef.Expr) float64 {
	est, _ := plandef.EstimatesOf(e)
	return est.Cardinality
}

// sortRows is the number of row comparisons needed to sort n rows.
func sortRows(n float64) float64 {
	if n < 2 {
		return 0
	}
	return n * math.Log2(n)
}
