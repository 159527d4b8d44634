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

func Test_evalBool(t *testing.T) {
	b := bind("x", rdf.NewInt(1), "y", rdf.NewString("a"), "i", "http://example.com/i")
	varI := plandef.NewVar("i")
	num := func(n int64) *plandef.Constant { return plandef.NewConst(rdf.NewInt(n)) }
	cmpr := func(op plandef.CompareOp, l, r plandef.ValueExpr) *plandef.Compare {
		return &plandef.Compare{Op: op, Left: l, Right: r}
	}
	failing := cmpr(plandef.OpLess, varX, varY)
	type test struct {
		name   string
		expr   plandef.ValueExpr
		exp    bool
		expErr bool
	}
	tests := []test{
		{"equal", cmpr(plandef.OpEqual, varX, num(1)), true, false},
		{"equalNumeric", cmpr(plandef.OpEqual, varX, plandef.NewConst(rdf.NewTyped("1.0", rdf.XSDDecimal))), true, false},
		{"less", cmpr(plandef.OpLess, varX, num(2)), true, false},
		{"greaterOrEqual", cmpr(plandef.OpGreaterOrEqual, varX, num(2)), false, false},
		{"strings", cmpr(plandef.OpLess, varY, plandef.NewConst(rdf.NewString("b"))), true, false},
		{"incomparable", failing, false, true},
		{"iriEqual", cmpr(plandef.OpEqual, varI, plandef.IRI("http://example.com/i")), true, false},
		{"iriNotEqual", cmpr(plandef.OpNotEqual, varI, varX), true, false},
		{"iriOrdered", cmpr(plandef.OpLess, varI, varX), false, true},
		{"unbound", cmpr(plandef.OpEqual, varW, num(1)), false, true},
		{"falseAndError", &plandef.And{Left: cmpr(plandef.OpEqual, varX, num(2)), Right: failing}, false, false},
		{"errorAndFalse", &plandef.And{Left: failing, Right: cmpr(plandef.OpEqual, varX, num(2))}, false, false},
		{"trueAndError", &plandef.And{Left: cmpr(plandef.OpEqual, varX, num(1)), Right: failing}, false, true},
		{"trueOrError", &plandef.Or{Left: failing, Right: cmpr(plandef.OpEqual, varX, num(1))}, true, false},
		{"falseOrError", &plandef.Or{Left: cmpr(plandef.OpEqual, varX, num(2)), Right: failing}, false, true},
		{"not", &plandef.Not{Arg: cmpr(plandef.OpEqual, varX, num(2))}, true, false},
		{"notError", &plandef.Not{Arg: failing}, false, true},
		{"bound", &plandef.Bound{Var: varX}, true, false},
		{"notBound", &plandef.Bound{Var: varW}, false, false},
		{"numberTrue", varX, true, false},
		{"numberFalse", num(0), false, false},
		{"emptyString", plandef.NewConst(rdf.NewString("")), false, false},
		{"string", varY, true, false},
		{"boolean", plandef.NewConst(rdf.NewTyped("false", rdf.XSDBoolean)), false, false},
		{"iri", varI, false, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := evalBool(test.expr, b)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, test.exp, res)
			}
			assert.Equal(t, test.exp && !test.expErr, Holds(test.expr, b))
		})
	}
}

func Test_evalTerm(t *testing.T) {
	b := bind("x", rdf.NewInt(1))
	val, err := EvalTerm(varX, b)
	assert.NoError(t, err)
	assert.Equal(t, rdf.NewInt(1), val)

	_, err = EvalTerm(varY, b)
	assert.Equal(t, errUnbound, err)

	val, err = EvalTerm(&plandef.Bound{Var: varX}, b)
	assert.NoError(t, err)
	assert.Equal(t, rdf.NewTyped("true", rdf.XSDBoolean), val)
}
