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

// Package selector decides which sources of the federation can answer which
// triple patterns.
package selector

import (
	"fmt"
	"strings"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/cmp"
)

// A Selector finds the sources relevant to the patterns of a basic graph
// pattern.
type Selector interface {
	// Sources returns, for each pattern of 'bgp' in pre-order, the sites able
	// to answer it. A pattern no site can answer gets an empty list.
	Sources(bgp plandef.Expr, dataset rdf.Dataset, bindings rdf.Binding) (Selection, error)
}

// A Candidate lists the sites able to answer one pattern.
type Candidate struct {
	Pattern *plandef.Pattern
	Sites   []plandef.Site
}

// A Selection is the result of source selection: one Candidate per pattern.
type Selection []Candidate

// Sites returns every site appearing in the selection, in order of first
// appearance.
func (s Selection) Sites() []plandef.Site {
	seen := make(map[plandef.Site]bool)
	var res []plandef.Site
	for _, c := range s {
		for _, site := range c.Sites {
			if !seen[site] {
				seen[site] = true
				res = append(res, site)
			}
		}
	}
	return res
}

// SitesFor returns the sites able to answer 'p'. Patterns are matched by
// identity first, then by equal keys.
func (s Selection) SitesFor(p *plandef.Pattern) []plandef.Site {
	for _, c := range s {
		if c.Pattern == p {
			return c.Sites
		}
	}
	key := cmp.GetKey(p)
	for _, c := range s {
		if cmp.GetKey(c.Pattern) == key {
			return c.Sites
		}
	}
	return nil
}

func (s Selection) String() string {
	var b strings.Builder
	for _, c := range s {
		fmt.Fprintf(&b, "%v -> %v\n", c.Pattern, c.Sites)
	}
	return b.String()
}

// Static is a Selector that returns a precomputed selection. The decomposer
// uses it so that each BGP's sources are resolved only once per query.
type Static struct {
	selection Selection
}

// NewStatic returns a Static selector answering with 'selection'.
func NewStatic(selection Selection) *Static {
	return &Static{selection: selection}
}

// Sources implements Selector. It ignores the dataset and bindings.
func (s *Static) Sources(bgp plandef.Expr, dataset rdf.Dataset, bindings rdf.Binding) (Selection, error) {
	patterns := plandef.Patterns(bgp)
	res := make(Selection, len(patterns))
	for i, p := range patterns {
		res[i] = Candidate{Pattern: p, Sites: s.selection.SitesFor(p)}
	}
	return res, nil
}
