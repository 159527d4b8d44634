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

package planner

import (
	metricsutil "github.com/ebay/federation/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type plannerMetrics struct {
	candidatesBuilt    prometheus.Counter
	bgpsDecomposed     prometheus.Counter
	optimizeBGPSeconds prometheus.Summary
}

var metrics plannerMetrics

func init() {
	mr := metricsutil.Default
	metrics = plannerMetrics{
		candidatesBuilt: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "federation",
			Subsystem: "planner",
			Name:      "candidates_built_total",
			Help:      `Number of candidate plans the optimizer has costed.`,
		}),
		bgpsDecomposed: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "federation",
			Subsystem: "planner",
			Name:      "bgps_decomposed_total",
			Help:      `Number of basic graph patterns the decomposer has planned.`,
		}),
		optimizeBGPSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "federation",
			Subsystem:  "planner",
			Name:       "optimize_bgp_seconds",
			Help:       `The time it takes to find the best plan for one basic graph pattern.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
	}
}
