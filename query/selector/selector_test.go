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

package selector

import (
	"testing"

	"github.com/ebay/federation/config"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pattern(s, p, o string) *plandef.Pattern {
	term := func(x string) plandef.Term {
		if x[0] == '?' {
			return plandef.NewVar(x[1:])
		}
		return plandef.IRI(x)
	}
	return plandef.NewPattern(term(s), term(p), term(o))
}

const foaf = "http://xmlns.com/foaf/0.1/"

func Test_Catalog(t *testing.T) {
	cat := NewCatalog([]config.Source{
		{ID: "people", Type: "memory", Predicates: []string{foaf}},
		{ID: "names", Type: "memory", Predicates: []string{foaf + "name", "http://schema.org/name"}},
		{ID: "everything", Type: "memory"},
		{ID: "geo", Type: "memory", Predicates: []string{"http://www.w3.org/2003/01/geo/"}},
	})
	name := pattern("?s", foaf+"name", "?name")
	knows := pattern("?s", foaf+"knows", "?o")
	lat := pattern("?s", "http://www.w3.org/2003/01/geo/wgs84_pos#lat", "?lat")
	unknown := pattern("?s", "http://example.org/other", "?x")
	anyPred := pattern("?s", "?p", "?o")
	bgp := &plandef.Join{
		Left:  &plandef.Join{Left: name, Right: knows},
		Right: &plandef.Join{Left: &plandef.Join{Left: lat, Right: unknown}, Right: anyPred},
	}
	sel, err := cat.Sources(bgp, rdf.Dataset{}, rdf.EmptyBinding)
	require.NoError(t, err)
	require.Len(t, sel, 5)
	assert.Equal(t, []plandef.Site{"people", "names", "everything"}, sel[0].Sites)
	assert.Equal(t, []plandef.Site{"people", "everything"}, sel[1].Sites)
	assert.Equal(t, []plandef.Site{"everything", "geo"}, sel[2].Sites)
	assert.Equal(t, []plandef.Site{"everything"}, sel[3].Sites)
	assert.Equal(t, []plandef.Site{"people", "names", "everything", "geo"}, sel[4].Sites)
	assert.Equal(t, []plandef.Site{"people", "names", "everything", "geo"}, sel.Sites())

	// A predicate variable bound by the caller acts like a constant.
	sel, err = cat.Sources(anyPred, rdf.Dataset{},
		rdf.NewBinding(map[string]rdf.Term{"p": rdf.NewIRI("http://schema.org/name")}))
	require.NoError(t, err)
	assert.Equal(t, []plandef.Site{"names", "everything"}, sel[0].Sites)
}

func Test_Static(t *testing.T) {
	p1 := pattern("?s", "p1", "?o")
	p2 := pattern("?o", "p2", "?x")
	p3 := pattern("?x", "p3", "?y")
	static := NewStatic(Selection{
		{Pattern: p1, Sites: []plandef.Site{"S1"}},
		{Pattern: p2, Sites: []plandef.Site{"S1", "S2"}},
	})
	bgp := &plandef.Join{Left: p1, Right: &plandef.Join{Left: pattern("?o", "p2", "?x"), Right: p3}}
	sel, err := static.Sources(bgp, rdf.Dataset{}, rdf.EmptyBinding)
	require.NoError(t, err)
	assert.Equal(t, `
Pattern ?s <p1> ?o -> [S1]
Pattern ?o <p2> ?x -> [S1 S2]
Pattern ?x <p3> ?y -> []
`, "\n"+sel.String())
	assert.Equal(t, []plandef.Site{"S1", "S2"}, sel.Sites())
	assert.Nil(t, sel.SitesFor(pattern("?a", "p9", "?b")))
}
