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

// Constant is a SelectivityEstimator that ignores statistics.
type Constant struct {
	// Used for joins whose inputs share at least one variable. Joins without
	// shared variables are cross products, with selectivity 1.
	Join float64
	// Used for each conjunct of a condition.
	Condition float64
	// Number of distinct values assumed for any variable.
	DistinctValues float64
}

// JoinSelectivity implements SelectivityEstimator.
func (c *Constant) JoinSelectivity(join *plandef.Join, site plandef.Site) float64 {
	if len(sharedVars(join)) == 0 {
		return 1
	}
	return c.Join
}

// VarSelectivity implements SelectivityEstimator.
func (c *Constant) VarSelectivity(v *plandef.Variable, expr plandef.Expr, site plandef.Site) float64 {
	return math.Max(c.DistinctValues, 0)
}

// ConditionSelectivity implements SelectivityEstimator.
func (c *Constant) ConditionSelectivity(cond plandef.ValueExpr, expr plandef.Expr, site plandef.Site) float64 {
	return c.Condition
}

func sharedVars(join *plandef.Join) plandef.VarSet {
	return plandef.Vars(join.Left).Intersect(plandef.Vars(join.Right))
}

// StatsSelectivity is a SelectivityEstimator that uses source statistics when
// they're available and falls back to Default otherwise.
type StatsSelectivity struct {
	Stats   Stats
	Default *Constant
}

// JoinSelectivity implements SelectivityEstimator. For each shared variable,
// it assumes the input with fewer distinct values for it has all its values
// contained in the other input, giving 1/max(distinct values).
func (s *StatsSelectivity) JoinSelectivity(join *plandef.Join, site plandef.Site) float64 {
	shared := sharedVars(join)
	if len(shared) == 0 {
		return 1
	}
	sel := 1.0
	for _, v := range shared {
		sel *= perValue(math.Max(
			s.VarSelectivity(v, join.Left, site),
			s.VarSelectivity(v, join.Right, site)))
	}
	return sel
}

// VarSelectivity implements SelectivityEstimator.
func (s *StatsSelectivity) VarSelectivity(v *plandef.Variable, expr plandef.Expr, site plandef.Site) float64 {
	distinct, ok := s.distinctValues(v, expr, site)
	if !ok {
		return s.Default.VarSelectivity(v, expr, site)
	}
	return distinct
}

// perValue returns the fraction of results holding any one of 'distinct'
// values.
func perValue(distinct float64) float64 {
	return 1 / math.Max(distinct, 1)
}

// distinctValues returns the largest number of distinct values 'v' takes in
// any pattern of 'expr' that uses it.
func (s *StatsSelectivity) distinctValues(v *plandef.Variable, expr plandef.Expr, site plandef.Site) (float64, bool) {
	if s.Stats == nil || site == plandef.AnySite {
		return 0, false
	}
	found := false
	max := 0.0
	for _, p := range plandef.Patterns(expr) {
		if !plandef.Vars(p).Contains(v) {
			continue
		}
		n, ok := s.Stats.DistinctValues(site, p, v)
		if !ok {
			return 0, false
		}
		found = true
		max = math.Max(max, n)
	}
	return max, found
}

// ConditionSelectivity implements SelectivityEstimator. Equality with a
// constant selects one value of the variable; conjunctions, disjunctions,
// and negations combine their parts assuming independence.
func (s *StatsSelectivity) ConditionSelectivity(cond plandef.ValueExpr, expr plandef.Expr, site plandef.Site) float64 {
	switch c := cond.(type) {
	case *plandef.Compare:
		if c.Op == plandef.OpEqual {
			if v, ok := equalsConstant(c); ok {
				return perValue(s.VarSelectivity(v, expr, site))
			}
		}
	case *plandef.And:
		return s.ConditionSelectivity(c.Left, expr, site) *
			s.ConditionSelectivity(c.Right, expr, site)
	case *plandef.Or:
		l := s.ConditionSelectivity(c.Left, expr, site)
		r := s.ConditionSelectivity(c.Right, expr, site)
		return l + r - l*r
	case *plandef.Not:
		return 1 - s.ConditionSelectivity(c.Arg, expr, site)
	}
	return s.Default.ConditionSelectivity(cond, expr, site)
}

func equalsConstant(c *plandef.Compare) (*plandef.Variable, bool) {
	switch l := c.Left.(type) {
	case *plandef.Variable:
		_, ok := c.Right.(*plandef.Constant)
		return l, ok
	case *plandef.Constant:
		v, ok := c.Right.(*plandef.Variable)
		return v, ok
	}
	return nil, false
}
