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

package memstore

import (
	"github.com/ebay/federation/rdf"
	"github.com/google/btree"
)

// A triple is a subject, predicate, and object, in that order.
type triple [3]rdf.Term

// An order lists triple positions from most to least significant.
type order [3]int

var (
	spo = order{0, 1, 2}
	pos = order{1, 2, 0}
	osp = order{2, 0, 1}
)

// An index holds every triple of a graph, sorted in one order. A nil term in a
// search key sorts before every other term, so a key with a bound prefix and
// nils after it is the first possible triple with that prefix.
type index struct {
	order order
	tree  *btree.BTreeG[triple]
}

func newIndex(o order) *index {
	return &index{
		order: o,
		tree: btree.NewG(16, func(a, b triple) bool {
			return compareIn(o, a, b) < 0
		}),
	}
}

func compareIn(o order, a, b triple) int {
	for _, i := range o {
		switch {
		case a[i] == nil && b[i] == nil:
			continue
		case a[i] == nil:
			return -1
		case b[i] == nil:
			return 1
		}
		if c := rdf.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// prefixLen returns how many leading positions of the index order are bound in
// 'key'.
func (idx *index) prefixLen(key triple) int {
	n := 0
	for _, i := range idx.order {
		if key[i] == nil {
			break
		}
		n++
	}
	return n
}

// scan calls fn for each triple that equals 'key' in every bound position of
// the index's order prefix, stopping when fn returns false.
func (idx *index) scan(key triple, fn func(triple) bool) {
	n := idx.prefixLen(key)
	if n == 0 {
		idx.tree.Ascend(fn)
		return
	}
	idx.tree.AscendGreaterOrEqual(key, func(t triple) bool {
		for _, i := range idx.order[:n] {
			if !rdf.Equal(t[i], key[i]) {
				return false
			}
		}
		return fn(t)
	})
}

// graph is the set of triples held for one site.
type graph struct {
	spo, pos, osp *index
}

func newGraph() *graph {
	return &graph{spo: newIndex(spo), pos: newIndex(pos), osp: newIndex(osp)}
}

// add inserts a triple, returning false if it was already present.
func (g *graph) add(t triple) bool {
	if _, replaced := g.spo.tree.ReplaceOrInsert(t); replaced {
		return false
	}
	g.pos.tree.ReplaceOrInsert(t)
	g.osp.tree.ReplaceOrInsert(t)
	return true
}

func (g *graph) len() int {
	return g.spo.tree.Len()
}

// match calls fn for each triple equal to 'key' in its bound positions. It
// picks the index whose order puts the most bound positions first.
func (g *graph) match(key triple, fn func(triple) bool) {
	best := g.spo
	for _, idx := range []*index{g.pos, g.osp} {
		if idx.prefixLen(key) > best.prefixLen(key) {
			best = idx
		}
	}
	best.scan(key, func(t triple) bool {
		for i := range key {
			if key[i] != nil && !rdf.Equal(key[i], t[i]) {
				return true
			}
		}
		return fn(t)
	})
}
