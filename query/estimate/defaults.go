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
	"time"

	"github.com/ebay/federation/config"
)

// Estimators bundles the three estimators the planner needs.
type Estimators struct {
	Selectivity SelectivityEstimator
	Cardinality CardinalityEstimator
	Cost        CostEstimator
}

// New returns the default estimators configured by 'cfg'. If 'stats' is not
// nil, it's consulted (through a cache) for pattern counts and distinct
// values.
func New(cfg config.Estimates, batchSize int, stats Stats) Estimators {
	cfg = cfg.WithDefaults()
	constant := &Constant{
		Join:           *cfg.JoinSelectivity,
		Condition:      *cfg.ConditionSelectivity,
		DistinctValues: cfg.DistinctValues,
	}
	var sel SelectivityEstimator = constant
	if stats != nil {
		stats = NewCachedStats(stats, time.Duration(cfg.StatsCacheTTL))
		sel = &StatsSelectivity{Stats: stats, Default: constant}
	}
	return Estimators{
		Selectivity: sel,
		Cardinality: &Cardinality{
			Stats:       stats,
			Selectivity: sel,
			Default:     cfg.DefaultCardinality,
		},
		Cost: &NetworkCost{
			RequestCost:        cfg.RequestCost,
			TransferCostPerRow: cfg.TransferCostPerRow,
			LocalCostPerRow:    cfg.LocalCostPerRow,
			BatchSize:          batchSize,
		},
	}
}
