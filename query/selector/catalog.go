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
	"github.com/ebay/federation/config"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/tchap/go-patricia/patricia"
)

// Catalog is a Selector driven by the predicates each source declares in the
// configuration. It does no I/O.
type Catalog struct {
	// All sites, in configuration order.
	sites []plandef.Site
	// Sites that declared no predicates and so may answer anything.
	anything map[plandef.Site]bool
	// Maps predicate IRI prefixes to the []plandef.Site declaring them.
	prefixes *patricia.Trie
}

// NewCatalog returns a Catalog for the given sources.
func NewCatalog(sources []config.Source) *Catalog {
	c := &Catalog{
		anything: make(map[plandef.Site]bool),
		prefixes: patricia.NewTrie(),
	}
	for _, src := range sources {
		site := plandef.Site(src.ID)
		c.sites = append(c.sites, site)
		if len(src.Predicates) == 0 {
			c.anything[site] = true
			continue
		}
		for _, prefix := range src.Predicates {
			key := patricia.Prefix(prefix)
			if item := c.prefixes.Get(key); item != nil {
				c.prefixes.Set(key, append(item.([]plandef.Site), site))
			} else {
				c.prefixes.Insert(key, []plandef.Site{site})
			}
		}
	}
	return c
}

// Sources implements Selector. A pattern whose predicate is a constant IRI (or
// a variable bound to one in 'bindings') is answered by the sites that
// declared a prefix of that IRI, plus those that declared nothing. Any other
// pattern is answered by every site.
func (c *Catalog) Sources(bgp plandef.Expr, dataset rdf.Dataset, bindings rdf.Binding) (Selection, error) {
	patterns := plandef.Patterns(bgp)
	res := make(Selection, len(patterns))
	for i, p := range patterns {
		res[i] = Candidate{Pattern: p, Sites: c.sitesFor(predicateIRI(p, bindings))}
	}
	return res, nil
}

func predicateIRI(p *plandef.Pattern, bindings rdf.Binding) *rdf.IRI {
	var value rdf.Term
	switch t := p.Predicate.(type) {
	case *plandef.Constant:
		value = t.Value
	case *plandef.Variable:
		value, _ = bindings.Get(t.Name)
	}
	iri, _ := value.(*rdf.IRI)
	return iri
}

func (c *Catalog) sitesFor(predicate *rdf.IRI) []plandef.Site {
	if predicate == nil {
		return append([]plandef.Site(nil), c.sites...)
	}
	matched := make(map[plandef.Site]bool)
	c.prefixes.VisitPrefixes(patricia.Prefix(predicate.Value),
		func(prefix patricia.Prefix, item patricia.Item) error {
			for _, site := range item.([]plandef.Site) {
				matched[site] = true
			}
			return nil
		})
	var res []plandef.Site
	for _, site := range c.sites {
		if c.anything[site] || matched[site] {
			res = append(res, site)
		}
	}
	return res
}
