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
	"testing"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/stretchr/testify/assert"
)

func Test_Slice(t *testing.T) {
	tests := []struct {
		name   string
		paging plandef.LimitOffset
		exp    []rdf.Binding
	}{
		{"none", plandef.LimitOffset{}, rowsS1},
		{"limit", plandef.LimitOffset{Limit: uint64p(2)}, rowsS1[:2]},
		{"limitZero", plandef.LimitOffset{Limit: uint64p(0)}, nil},
		{"offset", plandef.LimitOffset{Offset: uint64p(3)}, rowsS1[3:]},
		{"both", plandef.LimitOffset{Limit: uint64p(2), Offset: uint64p(1)}, rowsS1[1:3]},
		{"pastEnd", plandef.LimitOffset{Limit: uint64p(10), Offset: uint64p(10)}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := evaluate(t, twoSources(), Options{}, &plandef.Slice{Paging: test.paging, Input: sq("S1")})
			assert.NoError(t, err)
			assert.Equal(t, keys(test.exp), keys(res))
		})
	}
}

func Test_Slice_stopsInput(t *testing.T) {
	executor := twoSources()
	executor.hang = map[plandef.Site]bool{"S1": true}
	res, err := evaluate(t, executor, Options{}, &plandef.Slice{
		Paging: plandef.LimitOffset{Limit: uint64p(2)},
		Input:  sq("S1"),
	})
	assert.NoError(t, err)
	assert.Len(t, res, 2)
}

func Test_Slice_perSeed(t *testing.T) {
	executor := twoSources()
	engine, closePool := newEngine(executor, Options{})
	defer closePool()
	expr := &plandef.Slice{Paging: plandef.LimitOffset{Limit: uint64p(1)}, Input: sq("S1")}
	res, err := engine.EvaluateBatch(ctx, expr, []rdf.Binding{
		bind("x", "a"),
		bind("x", "b"),
	}).Collect()
	assert.NoError(t, err)
	assert.Equal(t, keys(rowsS1[:2]), keys(res))
}

func Test_Distinct(t *testing.T) {
	executor := &fakeExecutor{rows: map[plandef.Site][]rdf.Binding{"S1": {
		bind("x", "a"),
		bind("x", "b"),
		bind("x", "a"),
		bind("x", "a", "y", "1"),
	}}}
	res, err := evaluate(t, executor, Options{}, &plandef.Distinct{Input: sq("S1")})
	assert.NoError(t, err)
	assert.Equal(t, keys([]rdf.Binding{
		bind("x", "a"),
		bind("x", "a", "y", "1"),
		bind("x", "b"),
	}), keys(res))
}

func Test_Filter(t *testing.T) {
	expr := &plandef.Filter{
		Condition: &plandef.Compare{Op: plandef.OpEqual, Left: varX, Right: plandef.IRI("a")},
		Input:     sq("S1"),
	}
	res, err := evaluate(t, twoSources(), Options{}, expr)
	assert.NoError(t, err)
	assert.Equal(t, keys([]rdf.Binding{rowsS1[0], rowsS1[2]}), keys(res))
}

func Test_Projection(t *testing.T) {
	expr := &plandef.Projection{Variables: plandef.NewVarSet(varY), Input: sq("S1")}
	res, err := evaluate(t, twoSources(), Options{}, expr)
	assert.NoError(t, err)
	assert.Equal(t, keys([]rdf.Binding{
		bind("y", "1"),
		bind("y", "2"),
		bind("y", "3"),
		bind("y", "4"),
	}), keys(res))

	engine, closePool := newEngine(twoSources(), Options{})
	defer closePool()
	res, err = engine.Evaluate(ctx, expr, bind("x", "b")).Collect()
	assert.NoError(t, err)
	assert.Equal(t, keys([]rdf.Binding{bind("x", "b", "y", "2")}), keys(res))
}

func Test_Extension(t *testing.T) {
	expr := &plandef.Extension{
		Bindings: []plandef.ExprBinding{
			{Expr: plandef.NewConst(rdf.NewInt(7)), Out: varZ},
			{Expr: varW, Out: plandef.NewVar("v")},
			{Expr: &plandef.Compare{Op: plandef.OpEqual, Left: varX, Right: plandef.IRI("a")}, Out: varW},
		},
		Input: sq("S1"),
	}
	res, err := evaluate(t, twoSources(), Options{}, expr)
	assert.NoError(t, err)
	yes := rdf.NewTyped("true", rdf.XSDBoolean)
	no := rdf.NewTyped("false", rdf.XSDBoolean)
	seven := rdf.NewInt(7)
	assert.Equal(t, keys([]rdf.Binding{
		bind("x", "a", "y", "1", "z", seven, "w", yes),
		bind("x", "b", "y", "2", "z", seven, "w", no),
		bind("x", "a", "y", "3", "z", seven, "w", yes),
		bind("x", "d", "y", "4", "z", seven, "w", no),
	}), keys(res))
}
