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

package estimate

import (
	"strings"
	"time"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/patrickmn/go-cache"
)

// CachedStats remembers the answers of another Stats for a while. Asking a
// remote source for statistics is typically much slower than planning.
type CachedStats struct {
	stats Stats
	cache *cache.Cache
}

type cachedStat struct {
	value float64
	ok    bool
}

// NewCachedStats returns a Stats that caches the results of 'stats' for 'ttl'.
// Expired entries are dropped lazily; no background goroutine is started.
func NewCachedStats(stats Stats, ttl time.Duration) *CachedStats {
	return &CachedStats{
		stats: stats,
		cache: cache.New(ttl, 0),
	}
}

// PatternCount implements Stats.
func (c *CachedStats) PatternCount(site plandef.Site, pattern *plandef.Pattern) (float64, bool) {
	key := statKey("count", site, pattern, nil)
	return c.get(key, func() (float64, bool) {
		return c.stats.PatternCount(site, pattern)
	})
}

// DistinctValues implements Stats.
func (c *CachedStats) DistinctValues(site plandef.Site, pattern *plandef.Pattern, v *plandef.Variable) (float64, bool) {
	key := statKey("distinct", site, pattern, v)
	return c.get(key, func() (float64, bool) {
		return c.stats.DistinctValues(site, pattern, v)
	})
}

// Flush drops all cached statistics.
func (c *CachedStats) Flush() {
	c.cache.Flush()
}

func (c *CachedStats) get(key string, fetch func() (float64, bool)) (float64, bool) {
	if cached, found := c.cache.Get(key); found {
		stat := cached.(cachedStat)
		return stat.value, stat.ok
	}
	value, ok := fetch()
	c.cache.SetDefault(key, cachedStat{value: value, ok: ok})
	return value, ok
}

// statKey identifies a statistic. Variable names other than 'v' don't affect
// the statistics, so they're normalized away.
func statKey(kind string, site plandef.Site, pattern *plandef.Pattern, v *plandef.Variable) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte(' ')
	b.WriteString(string(site))
	for _, t := range pattern.Terms() {
		b.WriteByte(' ')
		switch t := t.(type) {
		case *plandef.Variable:
			if v != nil && t.Name == v.Name {
				b.WriteString("?v")
			} else {
				b.WriteString("?")
			}
		default:
			t.Key(&b)
		}
	}
	return b.String()
}
