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

package sparqlhttp

import (
	"testing"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/stretchr/testify/assert"
)

var (
	varS = plandef.NewVar("s")
	varO = plandef.NewVar("o")
)

func iri(s string) *rdf.IRI {
	return rdf.NewIRI("http://ex/" + s)
}

func Test_Render(t *testing.T) {
	knows := plandef.NewPattern(varS, plandef.NewConst(iri("knows")), varO)
	name := plandef.NewPattern(varO, plandef.NewConst(iri("name")), plandef.NewConst(rdf.NewString("x")))
	two := uint64(2)
	type test struct {
		name     string
		expr     plandef.Expr
		bindings []rdf.Binding
		exp      string
	}
	tests := []test{{
		name: "values",
		expr: &plandef.Filter{
			Condition: &plandef.Compare{Op: plandef.OpNotEqual, Left: varO, Right: plandef.NewConst(iri("z"))},
			Input:     &plandef.Join{Left: knows, Right: name},
		},
		bindings: []rdf.Binding{
			rdf.NewBinding(map[string]rdf.Term{"s": iri("a")}),
			rdf.NewBinding(map[string]rdf.Term{"s": iri("b")}),
			rdf.NewBinding(map[string]rdf.Term{"s": iri("a"), "w": iri("c")}),
			rdf.NewBinding(map[string]rdf.Term{"w": iri("c")}),
		},
		exp: `SELECT * WHERE {
  VALUES (?s) {
    (<http://ex/a>)
    (<http://ex/b>)
    (UNDEF)
  }
  ?s <http://ex/knows> ?o .
  ?o <http://ex/name> "x" .
  FILTER((?o != <http://ex/z>))
}
`,
	}, {
		name:     "noContext",
		expr:     knows,
		bindings: []rdf.Binding{rdf.EmptyBinding},
		exp: `SELECT * WHERE {
  ?s <http://ex/knows> ?o .
}
`,
	}, {
		name: "union",
		expr: &plandef.Union{Left: knows, Right: &plandef.Extension{
			Bindings: []plandef.ExprBinding{{Expr: &plandef.Bound{Var: varS}, Out: plandef.NewVar("b")}},
			Input:    name,
		}},
		exp: `SELECT * WHERE {
  {
    ?s <http://ex/knows> ?o .
  }
  UNION
  {
    ?o <http://ex/name> "x" .
    BIND(BOUND(?s) AS ?b)
  }
}
`,
	}, {
		name: "subSelects",
		expr: &plandef.Slice{
			Paging: plandef.LimitOffset{Limit: &two},
			Input: &plandef.Distinct{Input: &plandef.Projection{
				Variables: plandef.NewVarSet(varO),
				Input:     knows,
			}},
		},
		bindings: []rdf.Binding{rdf.NewBinding(map[string]rdf.Term{"s": iri("a")})},
		exp: `SELECT * WHERE {
  {
    SELECT * WHERE {
      {
        SELECT DISTINCT * WHERE {
          {
            SELECT ?o WHERE {
              ?s <http://ex/knows> ?o .
            }
          }
        }
      }
    }
    LIMIT 2
  }
}
`,
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			query, err := Render(test.expr, test.bindings)
			assert.NoError(t, err)
			assert.Equal(t, test.exp, query)
		})
	}
}

func Test_Render_unsupported(t *testing.T) {
	_, err := Render(&plandef.SourceQuery{Site: "S1"}, nil)
	assert.EqualError(t, err, "sparqlhttp: can't render *plandef.SourceQuery expressions")
}
