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
	"math/bits"

	"github.com/ebay/federation/query/estimate"
	"github.com/ebay/federation/query/planner/plandef"
	log "github.com/sirupsen/logrus"
)

// A patternSet is a set of pattern indexes into DecomposerContext.Patterns.
type patternSet uint64

func (s patternSet) size() int {
	return bits.OnesCount64(uint64(s))
}

func (s patternSet) contains(i int) bool {
	return s&(1<<uint(i)) != 0
}

// members returns the indexes in the set, in increasing order.
func (s patternSet) members() []int {
	res := make([]int, 0, s.size())
	for s != 0 {
		i := bits.TrailingZeros64(uint64(s))
		res = append(res, i)
		s &^= 1 << uint(i)
	}
	return res
}

// A candidate is a physical plan for a set of patterns, with all the filter
// conditions covered by that set applied.
type candidate struct {
	expr plandef.Expr
	set  patternSet
	est  plandef.Estimates
	// True if expr consists only of source queries and unions of them, so a
	// bind join can send it batches of bindings.
	remote bool
	order  int // construction order, for breaking ties
}

// better returns true if 'c' should be preferred over 'other': it's cheaper,
// or equally expensive but smaller, or equal in both but was built first.
func (c *candidate) better(other *candidate) bool {
	switch {
	case c.est.Cost != other.est.Cost:
		return c.est.Cost < other.est.Cost
	case c.est.Cardinality != other.est.Cardinality:
		return c.est.Cardinality < other.est.Cardinality
	}
	return c.order < other.order
}

// cheapest holds the best candidates found for one pattern set. The best remote
// candidate is kept along with the best of the others, since bind joins cost a
// remote right input by its requests rather than by its own cost.
type cheapest struct {
	remote *candidate
	local  *candidate
}

func (b *cheapest) add(c *candidate) {
	slot := &b.local
	if c.remote {
		slot = &b.remote
	}
	if *slot == nil || c.better(*slot) {
		*slot = c
	}
}

// best returns the best candidate overall, or nil if there's none.
func (b *cheapest) best() *candidate {
	if b.remote == nil || (b.local != nil && b.local.better(b.remote)) {
		return b.local
	}
	return b.remote
}

// rightInputs returns the candidates worth using as the right input of a join,
// best first.
func (b *cheapest) rightInputs() []*candidate {
	best := b.best()
	if best == nil {
		return nil
	}
	res := []*candidate{best}
	if other := b.remote; other == best {
		if b.local != nil {
			res = append(res, b.local)
		}
	} else if other != nil {
		res = append(res, other)
	}
	return res
}

// generator builds candidate plans for the patterns of one BGP.
type generator struct {
	ctx   *DecomposerContext
	sites [][]plandef.Site // indexed like ctx.Patterns
	est   estimate.Estimators
	opts  Options

	patternVars []plandef.VarSet // indexed like ctx.Patterns
	filterVars  []plandef.VarSet // indexed like ctx.Filters
	built       int
	err         error
}

func newGenerator(ctx *DecomposerContext, sites [][]plandef.Site, est estimate.Estimators, opts Options) *generator {
	g := &generator{
		ctx:         ctx,
		sites:       sites,
		est:         est,
		opts:        opts,
		patternVars: make([]plandef.VarSet, len(ctx.Patterns)),
		filterVars:  make([]plandef.VarSet, len(ctx.Filters)),
	}
	for i, p := range ctx.Patterns {
		g.patternVars[i] = plandef.Vars(p)
	}
	for i, f := range ctx.Filters {
		g.filterVars[i] = plandef.ValueVars(f)
	}
	return g
}

func (g *generator) vars(set patternSet) plandef.VarSet {
	var res plandef.VarSet
	for _, i := range set.members() {
		res = res.Union(g.patternVars[i])
	}
	return res
}

// conditions returns the indexes of the filters whose variables are all bound
// by the patterns in 'set'.
func (g *generator) conditions(set patternSet) []int {
	bound := g.vars(set)
	var res []int
	for i, fv := range g.filterVars {
		if bound.ContainsSet(fv) {
			res = append(res, i)
		}
	}
	return res
}

func (g *generator) filters(indexes []int) []plandef.ValueExpr {
	res := make([]plandef.ValueExpr, len(indexes))
	for i, idx := range indexes {
		res[i] = g.ctx.Filters[idx]
	}
	return res
}

// unplaced returns the filters that no subset of the patterns covers. They're
// applied on top of the final plan, in case the caller binds their variables.
func (g *generator) unplaced() []plandef.ValueExpr {
	placed := make(map[int]bool)
	all := patternSet(1)<<uint(len(g.ctx.Patterns)) - 1
	for _, i := range g.conditions(all) {
		placed[i] = true
	}
	var res []plandef.ValueExpr
	for i, f := range g.ctx.Filters {
		if !placed[i] {
			res = append(res, f)
		}
	}
	return res
}

// accessPlans returns the candidates that answer all the patterns in 'set'
// with a single request to one source: one per site that can answer every
// pattern in the set. In complete-sources mode, a single pattern served by
// several sites is answered by a union over all of them instead, and groups
// are only formed from patterns served by that site alone.
func (g *generator) accessPlans(set patternSet) []*candidate {
	members := set.members()
	if g.opts.CompleteSources && len(members) == 1 && len(g.sites[members[0]]) > 1 {
		return g.unionPlan(members[0])
	}
	var res []*candidate
	for _, site := range g.sites[members[0]] {
		ok := true
		for _, i := range members[1:] {
			if !g.answers(i, site) {
				ok = false
				break
			}
		}
		if ok && g.opts.CompleteSources && len(members) > 1 {
			for _, i := range members {
				if len(g.sites[i]) != 1 {
					ok = false
					break
				}
			}
		}
		if ok {
			res = append(res, g.sourceQuery(site, set))
		}
	}
	return res
}

func (g *generator) answers(pattern int, site plandef.Site) bool {
	for _, s := range g.sites[pattern] {
		if s == site {
			return true
		}
	}
	return false
}

// sourceQuery builds a source query sending the patterns in 'set', and the
// filters they cover, to 'site'.
func (g *generator) sourceQuery(site plandef.Site, set patternSet) *candidate {
	var input plandef.Expr
	for _, i := range set.members() {
		if input == nil {
			input = g.ctx.Patterns[i]
		} else {
			input = &plandef.Join{Left: input, Right: g.ctx.Patterns[i]}
		}
	}
	if cond := plandef.AndAll(g.filters(g.conditions(set))); cond != nil {
		input = &plandef.Filter{Condition: cond, Input: input}
	}
	sq := &plandef.SourceQuery{Site: site, Input: input}
	sq.Est.Cardinality = g.cardinality(sq)
	sq.Est.Cost = g.cost(sq)
	return g.newCandidate(sq, set, sq.Est)
}

func (g *generator) unionPlan(pattern int) []*candidate {
	set := patternSet(1) << uint(pattern)
	var expr plandef.Expr
	for _, site := range g.sites[pattern] {
		sq := g.sourceQuery(site, set).expr
		if expr == nil {
			expr = sq
			continue
		}
		u := &plandef.Union{Left: expr, Right: sq}
		u.Est.Cardinality = g.cardinality(u)
		u.Est.Cost = g.cost(u)
		expr = u
	}
	est, _ := plandef.EstimatesOf(expr)
	return []*candidate{g.newCandidate(expr, set, est)}
}

// joinPlans returns one candidate per join strategy for joining 'left' and
// 'right', which must cover disjoint pattern sets.
func (g *generator) joinPlans(left, right *candidate) []*candidate {
	set := left.set | right.set
	applied := make(map[int]bool)
	for _, i := range g.conditions(left.set) {
		applied[i] = true
	}
	for _, i := range g.conditions(right.set) {
		applied[i] = true
	}
	var conds []plandef.ValueExpr
	for _, i := range g.conditions(set) {
		if !applied[i] {
			conds = append(conds, g.ctx.Filters[i])
		}
	}
	props := plandef.JoinProps{
		Variables: g.vars(left.set).Intersect(g.vars(right.set)),
		Condition: plandef.AndAll(conds),
		Left:      left.expr,
		Right:     right.expr,
	}
	exprs := []plandef.Expr{
		&plandef.BindJoin{JoinProps: props},
		&plandef.HashJoin{JoinProps: props},
	}
	if len(props.Variables) > 0 && !g.opts.DisableMergeJoin {
		exprs = append(exprs, &plandef.MergeJoin{JoinProps: props})
	}
	res := make([]*candidate, len(exprs))
	for i, e := range exprs {
		p := plandef.Props(e)
		p.Est.Cardinality = g.cardinality(e)
		p.Est.Cost = g.cost(e)
		res[i] = g.newCandidate(e, set, p.Est)
	}
	return res
}

func (g *generator) newCandidate(e plandef.Expr, set patternSet, est plandef.Estimates) *candidate {
	g.built++
	metrics.candidatesBuilt.Inc()
	return &candidate{expr: e, set: set, est: est, remote: isRemote(e), order: g.built}
}

func isRemote(e plandef.Expr) bool {
	switch e := e.(type) {
	case *plandef.SourceQuery:
		return true
	case *plandef.Union:
		return isRemote(e.Left) && isRemote(e.Right)
	}
	return false
}

// cardinality and cost record the first invalid estimate in g.err.
func (g *generator) cardinality(e plandef.Expr) float64 {
	n := g.est.Cardinality.Cardinality(e, plandef.AnySite)
	g.check(estimate.CheckAmount("cardinality", n, e))
	return n
}

func (g *generator) cost(e plandef.Expr) float64 {
	c := g.est.Cost.Cost(e)
	g.check(estimate.CheckAmount("cost", c, e))
	return c
}

func (g *generator) check(err error) {
	if err != nil && g.err == nil {
		log.WithError(err).Error("Estimator returned an invalid value")
		g.err = err
	}
}
