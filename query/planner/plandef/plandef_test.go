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

package plandef

import (
	"testing"

	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/cmp"
	"github.com/stretchr/testify/assert"
)

func vars(names ...string) VarSet {
	set := make([]*Variable, len(names))
	for i, n := range names {
		set[i] = NewVar(n)
	}
	return NewVarSet(set...)
}

func Test_VarSet(t *testing.T) {
	assert := assert.New(t)
	ab := vars("b", "a", "b")
	assert.Equal("?a ?b", ab.String())
	bc := vars("c", "b")
	assert.Equal("?b", ab.Intersect(bc).String())
	assert.Equal("?a ?b ?c", ab.Union(bc).String())
	assert.Equal("?a", ab.Sub(bc).String())
	assert.Equal("?c", bc.Sub(ab).String())
	assert.True(ab.Contains(NewVar("a")))
	assert.False(ab.Contains(NewVar("c")))
	assert.True(ab.Union(bc).ContainsSet(ab))
	assert.False(ab.ContainsSet(bc))
	assert.True(ab.Equal(vars("a", "b")))
	assert.False(ab.Equal(bc))
	assert.Equal([]string{"a", "b"}, ab.Names())
	assert.Nil(VarSet(nil).Intersect(ab))
	assert.Equal("?a ?b", VarSet(nil).Union(ab).String())
}

func samplePattern(s string, p string, o string) *Pattern {
	term := func(x string) Term {
		if x[0] == '?' {
			return NewVar(x[1:])
		}
		return IRI(x)
	}
	return NewPattern(term(s), term(p), term(o))
}

func Test_Format(t *testing.T) {
	p1 := samplePattern("?s", "name", "?name")
	p2 := samplePattern("?s", "age", "?age")
	age := &Compare{Op: OpGreater, Left: NewVar("age"), Right: NewConst(rdf.NewInt(30))}
	limit := uint64(10)
	tree := &Slice{
		Paging: LimitOffset{Limit: &limit},
		Input: &Projection{
			Variables: vars("name"),
			Input: &Plan{
				Est: Estimates{Cardinality: 5, Cost: 250},
				Root: &HashJoin{JoinProps: JoinProps{
					Variables: vars("s"),
					Condition: age,
					Left:      &SourceQuery{Site: "S1", Input: p1, Est: Estimates{Cardinality: 100, Cost: 200}},
					Right:     &SourceQuery{Site: "S2", Input: p2},
				}},
			},
		},
	}
	assert.Equal(t, `
Slice Limit 10
	Projection ?name
		Plan
			HashJoin ?s if ?age > "30"^^<http://www.w3.org/2001/XMLSchema#integer>
				SourceQuery S1
					Pattern ?s <name> ?name
				SourceQuery S2
					Pattern ?s <age> ?age
`, "\n"+Format(tree))
	assert.Equal(t, `
Plan [card=5 cost=250]
	HashJoin ?s if ?age > "30"^^<http://www.w3.org/2001/XMLSchema#integer> [card=0 cost=0]
		SourceQuery S1 [card=100 cost=200]
			Pattern ?s <name> ?name
		SourceQuery S2 [card=0 cost=0]
			Pattern ?s <age> ?age
`, "\n"+FormatEstimates(tree.Input.(*Projection).Input))

	assert.Equal(t, "?age ?name ?s", Vars(tree.Input.(*Projection).Input).String())
	assert.Equal(t, "?name", Vars(tree).String())
	assert.Equal(t, []*Pattern{p1, p2}, Patterns(tree))

	logical := Logical(tree)
	assert.Equal(t, `
Slice Limit 10
	Projection ?name
		Filter ?age > "30"^^<http://www.w3.org/2001/XMLSchema#integer>
			Join
				Pattern ?s <name> ?name
				Pattern ?s <age> ?age
`, "\n"+Format(logical))
}

func Test_Key(t *testing.T) {
	j1 := &Join{Left: samplePattern("?s", "p", "?o"), Right: samplePattern("?o", "q", "?x")}
	j2 := &Join{Left: samplePattern("?s", "p", "?o"), Right: samplePattern("?o", "q", "?x")}
	assert.Equal(t, cmp.GetKey(j1), cmp.GetKey(j2))
	assert.Equal(t, "Join(Pattern(?s <p> ?o),Pattern(?o <q> ?x))", cmp.GetKey(j1))
	sq := &SourceQuery{Site: "S1", Input: j1}
	assert.Equal(t, "SourceQuery[S1](Join(Pattern(?s <p> ?o),Pattern(?o <q> ?x)))", cmp.GetKey(sq))
	assert.Equal(t, "Join(nil,nil)", cmp.GetKey(&Join{}))
}

func Test_Replace(t *testing.T) {
	p1 := samplePattern("?s", "p", "?o")
	p2 := samplePattern("?o", "q", "?x")
	orig := &Distinct{Input: &Join{Left: p1, Right: p2}}
	res, err := Replace(orig, func(e Expr) (Expr, bool, error) {
		if e == p2 {
			return samplePattern("?o", "r", "?x"), true, nil
		}
		return e, false, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "Distinct(Join(Pattern(?s <p> ?o),Pattern(?o <r> ?x)))", cmp.GetKey(res))
	assert.Equal(t, "Distinct(Join(Pattern(?s <p> ?o),Pattern(?o <q> ?x)))", cmp.GetKey(orig))
	assert.True(t, res.(*Distinct).Input.(*Join).Left == p1, "unchanged subtrees are shared")

	same, err := Replace(orig, func(e Expr) (Expr, bool, error) { return e, false, nil })
	assert.NoError(t, err)
	assert.True(t, same == Expr(orig))
}

func Test_WithInputs_wrongCount(t *testing.T) {
	assert.Panics(t, func() {
		WithInputs(&Join{}, []Expr{samplePattern("?s", "p", "?o")})
	})
}

func Test_Conjuncts(t *testing.T) {
	a := &Bound{Var: NewVar("a")}
	b := &Compare{Op: OpEqual, Left: NewVar("b"), Right: IRI("x")}
	c := &Not{Arg: &Bound{Var: NewVar("c")}}
	cond := AndAll([]ValueExpr{a, b, c})
	assert.Equal(t, "((bound(?a) && ?b = <x>) && !bound(?c))", cond.String())
	assert.Equal(t, []ValueExpr{a, b, c}, Conjuncts(cond))
	assert.Nil(t, Conjuncts(nil))
	assert.Nil(t, AndAll(nil))
	assert.Equal(t, "?a ?b ?c", ValueVars(cond).String())
	or := &Or{Left: a, Right: b}
	assert.Equal(t, []ValueExpr{or}, Conjuncts(or))
}
