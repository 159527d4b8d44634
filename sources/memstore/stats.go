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
	"github.com/ebay/federation/query/estimate"
	"github.com/ebay/federation/query/exec"
	"github.com/ebay/federation/query/planner/plandef"
)

// PatternCount implements estimate.Stats by counting the triples at 'site'
// that match the constants of 'pattern'.
func (s *Store) PatternCount(site plandef.Site, pattern *plandef.Pattern) (float64, bool) {
	n := 0
	ok := s.scanPattern(site, pattern, func(triple) { n++ })
	return float64(n), ok
}

// DistinctValues implements estimate.Stats. It counts the distinct terms that
// 'v' takes among the triples at 'site' matching 'pattern'.
func (s *Store) DistinctValues(site plandef.Site, pattern *plandef.Pattern, v *plandef.Variable) (float64, bool) {
	pos := -1
	for i, term := range pattern.Terms() {
		if tv, ok := term.(*plandef.Variable); ok && tv.Name == v.Name {
			pos = i
			break
		}
	}
	if pos < 0 {
		return 0, false
	}
	seen := make(map[string]struct{})
	ok := s.scanPattern(site, pattern, func(t triple) {
		seen[t[pos].String()] = struct{}{}
	})
	return float64(len(seen)), ok
}

// scanPattern calls fn for each triple matching the constants of 'pattern'.
// It returns false if the store doesn't serve 'site'.
func (s *Store) scanPattern(site plandef.Site, pattern *plandef.Pattern, fn func(triple)) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	g := s.graphs[site]
	if g == nil {
		return false
	}
	var key triple
	for i, term := range pattern.Terms() {
		if c, ok := term.(*plandef.Constant); ok {
			key[i] = c.Value
		}
	}
	g.match(key, func(t triple) bool {
		fn(t)
		return true
	})
	return true
}

var (
	_ estimate.Stats     = (*Store)(nil)
	_ exec.QueryExecutor = (*Store)(nil)
)
