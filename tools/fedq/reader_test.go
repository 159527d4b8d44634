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

package main

import (
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_readQuery(t *testing.T) {
	varP := plandef.NewVar("p")
	varF := plandef.NewVar("f")
	varAge := plandef.NewVar("age")
	knows := plandef.NewPattern(varP, plandef.IRI("http://ex/knows"), varF)
	age := plandef.NewPattern(varF, plandef.IRI("http://ex/age"), varAge)

	tests := []struct {
		name  string
		input string
		exp   plandef.Expr
		err   string
	}{{
		name:  "one pattern",
		input: "?p <http://ex/knows> ?f .\n",
		exp:   knows,
	}, {
		name:  "join",
		input: "# friends\n?p <http://ex/knows> ?f\n\n  ?f <http://ex/age> ?age .\n",
		exp:   &plandef.Join{Left: knows, Right: age},
	}, {
		name: "filters",
		input: `?p <http://ex/knows> ?f .
?f <http://ex/age> ?age .
FILTER ?age >= 18
filter ?p != <http://ex/bob>
`,
		exp: &plandef.Filter{
			Condition: &plandef.And{
				Left: &plandef.Compare{Op: plandef.OpGreaterOrEqual,
					Left: varAge, Right: plandef.NewConst(rdf.NewInt(18))},
				Right: &plandef.Compare{Op: plandef.OpNotEqual,
					Left: varP, Right: plandef.IRI("http://ex/bob")},
			},
			Input: &plandef.Join{Left: knows, Right: age},
		},
	}, {
		name:  "literals",
		input: `?p <http://ex/name> "Alice Smith"@en` + "\n" + `?p <http://ex/height> 1.75`,
		exp: &plandef.Join{
			Left: plandef.NewPattern(varP, plandef.IRI("http://ex/name"),
				plandef.NewConst(rdf.NewLangString("Alice Smith", "en"))),
			Right: plandef.NewPattern(varP, plandef.IRI("http://ex/height"),
				plandef.NewConst(rdf.NewTyped("1.75", rdf.XSDDecimal))),
		},
	}, {
		name:  "empty",
		input: "# nothing\n",
		err:   "query has no patterns",
	}, {
		name:  "short pattern",
		input: "?p <http://ex/knows>\n",
		err:   "line 1: expected term, got end of line",
	}, {
		name:  "trailing text",
		input: "?p <http://ex/knows> ?f ?g\n",
		err:   "line 1: unexpected text after pattern: ?g",
	}, {
		name:  "bad operator",
		input: "?p <http://ex/knows> ?f\nFILTER ?f ~ 3\n",
		err:   `line 2: unknown comparison operator "~"`,
	}, {
		name:  "bad number",
		input: "?p <http://ex/age> 12abc\n",
		err:   "line 1: invalid number: 12abc",
	}, {
		name:  "bad term",
		input: "?p knows ?f\n",
		err:   "line 1: unexpected term: knows ?f",
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			expr, err := readQuery(strings.NewReader(test.input))
			if test.err != "" {
				assert.EqualError(t, err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, plandef.Format(test.exp), plandef.Format(expr))
			assert.Equal(t, test.exp, expr)
		})
	}
}

func Test_dumpResults(t *testing.T) {
	results := []rdf.Binding{
		rdf.NewBinding(map[string]rdf.Term{
			"s":    rdf.NewIRI("alice"),
			"name": rdf.NewString("Alice"),
		}),
		rdf.NewBinding(map[string]rdf.Term{
			"s": rdf.NewIRI("bob"),
		}),
	}
	var b strings.Builder
	dumpResults(&b, results)
	assert.Equal(t, strings.TrimPrefix(`
 ?name   | ?s      |
 ------- | ------- |
 "Alice" | <alice> |
         | <bob>   |
`, "\n"), b.String())

	b.Reset()
	dumpResults(&b, nil)
	assert.Equal(t, "", b.String())
}

// lockedBuilder is a strings.Builder that's safe for concurrent writes.
type lockedBuilder struct {
	lock sync.Mutex
	b    strings.Builder
}

func (l *lockedBuilder) Write(p []byte) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuilder) String() string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.b.String()
}

func Test_progressBars(t *testing.T) {
	var out lockedBuilder
	monitor := progressBars(&out)
	r, done := monitor("/data/people.nt", 11, strings.NewReader("hello world"))
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	done()
	assert.Equal(t, "hello world", string(data))
	assert.Contains(t, out.String(), "Loading people.nt")
}
