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
	"testing"
	"time"

	"github.com/ebay/federation/config"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/stretchr/testify/assert"
)

// mockStats reports counts by predicate IRI and site.
type mockStats struct {
	counts   map[string]float64 // "site predicate" -> count
	distinct map[string]float64 // "site predicate var" -> distinct values
	calls    int
}

func predicateOf(p *plandef.Pattern) string {
	if c, ok := p.Predicate.(*plandef.Constant); ok {
		return c.Value.(*rdf.IRI).Value
	}
	return "?"
}

func (m *mockStats) PatternCount(site plandef.Site, p *plandef.Pattern) (float64, bool) {
	m.calls++
	n, ok := m.counts[string(site)+" "+predicateOf(p)]
	return n, ok
}

func (m *mockStats) DistinctValues(site plandef.Site, p *plandef.Pattern, v *plandef.Variable) (float64, bool) {
	m.calls++
	n, ok := m.distinct[string(site)+" "+predicateOf(p)+" "+v.Name]
	return n, ok
}

func pattern(s, p, o string) *plandef.Pattern {
	term := func(x string) plandef.Term {
		if x[0] == '?' {
			return plandef.NewVar(x[1:])
		}
		return plandef.IRI(x)
	}
	return plandef.NewPattern(term(s), term(p), term(o))
}

func Test_Constant(t *testing.T) {
	assert := assert.New(t)
	c := &Constant{Join: 0.1, Condition: 0.5, DistinctValues: 20}
	joined := &plandef.Join{Left: pattern("?s", "p", "?o"), Right: pattern("?o", "q", "?x")}
	cross := &plandef.Join{Left: pattern("?s", "p", "?o"), Right: pattern("?a", "q", "?b")}
	assert.Equal(0.1, c.JoinSelectivity(joined, plandef.AnySite))
	assert.Equal(1.0, c.JoinSelectivity(cross, "S1"))
	assert.Equal(20.0, c.VarSelectivity(plandef.NewVar("o"), joined, plandef.AnySite))
	assert.Equal(0.5, c.ConditionSelectivity(&plandef.Bound{Var: plandef.NewVar("o")}, joined, "S1"))
}

func Test_StatsSelectivity(t *testing.T) {
	assert := assert.New(t)
	stats := &mockStats{distinct: map[string]float64{
		"S1 p o": 10,
		"S1 q o": 40,
	}}
	s := &StatsSelectivity{Stats: stats, Default: &Constant{Join: 0.1, Condition: 0.5, DistinctValues: 4}}
	join := &plandef.Join{Left: pattern("?s", "p", "?o"), Right: pattern("?o", "q", "?x")}
	assert.Equal(1.0/40, s.JoinSelectivity(join, "S1"))
	// No statistics for this site.
	assert.Equal(0.25, s.JoinSelectivity(join, "S2"))
	assert.Equal(0.25, s.JoinSelectivity(join, plandef.AnySite))

	varO := plandef.NewVar("o")
	assert.Equal(10.0, s.VarSelectivity(varO, join.Left, "S1"))
	assert.Equal(40.0, s.VarSelectivity(varO, join, "S1"))
	assert.Equal(4.0, s.VarSelectivity(varO, join.Left, "S2"))
	assert.Equal(4.0, s.VarSelectivity(plandef.NewVar("s"), join.Left, "S1"))

	eq := &plandef.Compare{Op: plandef.OpEqual, Left: plandef.NewVar("o"), Right: plandef.IRI("x")}
	assert.Equal(0.1, s.ConditionSelectivity(eq, join.Left, "S1"))
	lt := &plandef.Compare{Op: plandef.OpLess, Left: plandef.NewVar("o"), Right: plandef.IRI("x")}
	assert.Equal(0.5, s.ConditionSelectivity(lt, join.Left, "S1"))
	assert.InDelta(0.55, s.ConditionSelectivity(&plandef.Or{Left: eq, Right: lt}, join.Left, "S1"), 1e-9)
	assert.InDelta(0.05, s.ConditionSelectivity(&plandef.And{Left: eq, Right: lt}, join.Left, "S1"), 1e-9)
	assert.InDelta(0.9, s.ConditionSelectivity(&plandef.Not{Arg: eq}, join.Left, "S1"), 1e-9)
}

func Test_Cardinality(t *testing.T) {
	stats := &mockStats{counts: map[string]float64{"S1 p": 100, "S2 q": 50}}
	c := &Cardinality{
		Stats:       stats,
		Selectivity: &Constant{Join: 0.1, Condition: 0.5, DistinctValues: 10},
		Default:     1000,
	}
	p := pattern("?s", "p", "?o")
	q := pattern("?o", "q", "?x")
	limit, offset := uint64(7), uint64(95)
	sqP := &plandef.SourceQuery{Site: "S1", Input: p, Est: plandef.Estimates{Cardinality: 100}}
	sqQ := &plandef.SourceQuery{Site: "S2", Input: q, Est: plandef.Estimates{Cardinality: 50}}
	cond := &plandef.Bound{Var: plandef.NewVar("x")}
	tests := []struct {
		name string
		expr plandef.Expr
		site plandef.Site
		exp  float64
	}{
		{"pattern with stats", p, "S1", 100},
		{"pattern without stats", p, "S2", 1000},
		{"pattern any site", p, plandef.AnySite, 1000},
		{"join", &plandef.Join{Left: p, Right: p}, "S1", 100 * 100 * 0.1},
		{"filter", &plandef.Filter{Condition: &plandef.And{Left: cond, Right: cond}, Input: p}, "S1", 25},
		{"union", &plandef.Union{Left: p, Right: sqQ}, "S1", 150},
		{"slice", &plandef.Slice{Paging: plandef.LimitOffset{Limit: &limit, Offset: &offset}, Input: p}, "S1", 5},
		{"projection", &plandef.Projection{Variables: plandef.Vars(p), Input: p}, "S1", 100},
		{"distinct", &plandef.Distinct{Input: p}, "S1", 100},
		{"source query", &plandef.SourceQuery{Site: "S2", Input: q}, plandef.AnySite, 50},
		{"hash join", &plandef.HashJoin{JoinProps: plandef.JoinProps{Left: sqP, Right: sqQ}}, plandef.AnySite, 500},
		{"bind join with condition", &plandef.BindJoin{JoinProps: plandef.JoinProps{
			Left: sqP, Right: sqQ, Condition: cond}}, plandef.AnySite, 250},
		{"plan", &plandef.Plan{Root: sqQ}, plandef.AnySite, 50},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.exp, c.Cardinality(test.expr, test.site), 1e-9)
		})
	}
}

func Test_Cardinality_invalidSelectivity(t *testing.T) {
	c := &Cardinality{
		Selectivity: &Constant{Join: 1.5, Condition: 0.5},
		Default:     10,
	}
	join := &plandef.Join{Left: pattern("?s", "p", "?o"), Right: pattern("?o", "q", "?x")}
	n := c.Cardinality(join, plandef.AnySite)
	assert.True(t, math.IsNaN(n))
	err := CheckAmount("cardinality", n, join)
	if assert.Error(t, err) {
		assert.IsType(t, &EstimationError{}, err)
		assert.Equal(t, "invalid cardinality estimate NaN for Join", err.Error())
	}
}

func Test_Check(t *testing.T) {
	assert := assert.New(t)
	p := pattern("?s", "p", "?o")
	assert.NoError(CheckAmount("cost", 0, p))
	assert.NoError(CheckAmount("cost", 1e12, p))
	assert.Error(CheckAmount("cost", -1, p))
	assert.Error(CheckAmount("cost", math.Inf(1), p))
	assert.NoError(CheckFactor("selectivity", 0, p))
	assert.NoError(CheckFactor("selectivity", 1, p))
	assert.Error(CheckFactor("selectivity", 1.01, p))
	assert.EqualError(CheckFactor("selectivity", -0.5, nil),
		"invalid selectivity estimate -0.5 for <nil>")
}

func Test_NetworkCost(t *testing.T) {
	c := &NetworkCost{RequestCost: 100, TransferCostPerRow: 1, LocalCostPerRow: 0.5, BatchSize: 10}
	p := pattern("?s", "p", "?o")
	q := pattern("?o", "q", "?x")
	sqP := &plandef.SourceQuery{Site: "S1", Input: p, Est: plandef.Estimates{Cardinality: 100, Cost: 200}}
	sqQ := &plandef.SourceQuery{Site: "S2", Input: q, Est: plandef.Estimates{Cardinality: 50, Cost: 150}}
	props := func(card float64, left, right plandef.Expr) plandef.JoinProps {
		return plandef.JoinProps{Left: left, Right: right, Est: plandef.Estimates{Cardinality: card}}
	}
	tests := []struct {
		name string
		expr plandef.Expr
		exp  float64
	}{
		{"source query", &plandef.SourceQuery{Site: "S1", Input: p, Est: plandef.Estimates{Cardinality: 100}}, 200},
		{"hash join", &plandef.HashJoin{JoinProps: props(20, sqP, sqQ)}, 200 + 150 + (100+50+20)*0.5},
		// 10 batches of left results, each one request.
		{"bind join", &plandef.BindJoin{JoinProps: props(20, sqP, sqQ)}, 200 + 100*0.5 + 10*100 + 20},
		{"bind join into union", &plandef.BindJoin{JoinProps: props(20, sqP,
			&plandef.Union{Left: sqQ, Right: sqQ})}, 200 + 100*0.5 + 20*100 + 20},
		{"bind join into hash join", &plandef.BindJoin{JoinProps: props(20, sqQ,
			&plandef.HashJoin{JoinProps: plandef.JoinProps{Left: sqP, Right: sqP,
				Est: plandef.Estimates{Cost: 10}}})}, 150 + 50*0.5 + 50*10},
		{"merge join", &plandef.MergeJoin{JoinProps: props(20, sqP, sqQ)},
			200 + 150 + (100*math.Log2(100)+50*math.Log2(50)+100+50+20)*0.5},
		{"union", &plandef.Union{Left: sqP, Right: sqQ}, 350},
		{"plan", &plandef.Plan{Root: sqP}, 200},
		{"logical", &plandef.Distinct{Input: sqQ}, 150},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.exp, c.Cost(test.expr), 1e-9)
		})
	}
}

func Test_CachedStats(t *testing.T) {
	assert := assert.New(t)
	stats := &mockStats{
		counts:   map[string]float64{"S1 p": 100},
		distinct: map[string]float64{"S1 p o": 7},
	}
	cached := NewCachedStats(stats, time.Hour)
	for i := 0; i < 3; i++ {
		n, ok := cached.PatternCount("S1", pattern("?s", "p", "?o"))
		assert.True(ok)
		assert.Equal(100.0, n)
		// Variable names don't matter.
		n, ok = cached.PatternCount("S1", pattern("?a", "p", "?b"))
		assert.True(ok)
		assert.Equal(100.0, n)
	}
	assert.Equal(1, stats.calls)
	_, ok := cached.PatternCount("S2", pattern("?s", "p", "?o"))
	assert.False(ok)
	_, ok = cached.PatternCount("S2", pattern("?s", "p", "?o"))
	assert.False(ok)
	assert.Equal(2, stats.calls)

	n, ok := cached.DistinctValues("S1", pattern("?s", "p", "?o"), plandef.NewVar("o"))
	assert.True(ok)
	assert.Equal(7.0, n)
	assert.Equal(3, stats.calls)
	cached.Flush()
	cached.PatternCount("S1", pattern("?s", "p", "?o"))
	assert.Equal(4, stats.calls)
}

func Test_New(t *testing.T) {
	est := New(config.Estimates{}, 10, nil)
	assert.IsType(t, &Constant{}, est.Selectivity)
	assert.Equal(t, 10, est.Cost.(*NetworkCost).BatchSize)
	est = New(config.Estimates{}, 10, &mockStats{})
	assert.IsType(t, &StatsSelectivity{}, est.Selectivity)
	assert.IsType(t, &CachedStats{}, est.Cardinality.(*Cardinality).Stats)

	est = New(config.Estimates{
		JoinSelectivity:      config.Fraction(0),
		ConditionSelectivity: config.Fraction(0),
	}, 10, nil)
	assert.Equal(t, &Constant{Join: 0, Condition: 0, DistinctValues: config.DefaultDistinctValues},
		est.Selectivity)
	est = New(config.Estimates{}, 10, nil)
	assert.Equal(t, &Constant{
		Join:           config.DefaultJoinSelectivity,
		Condition:      config.DefaultConditionSelectivity,
		DistinctValues: config.DefaultDistinctValues,
	}, est.Selectivity)
}
