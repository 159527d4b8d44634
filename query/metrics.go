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

package query

import (
	metricsutil "github.com/ebay/federation/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type queryMetrics struct {
	planQueryDurationSeconds    prometheus.Summary
	executeQueryDurationSeconds prometheus.Summary
}

var metrics queryMetrics

func init() {
	mr := metricsutil.Default
	metrics = queryMetrics{
		planQueryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "federation",
			Subsystem:  "query",
			Name:       "plan_query_seconds",
			Help:       `The time it takes to decompose a query into a plan over the sources.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
		executeQueryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "federation",
			Subsystem:  "query",
			Name:       "execute_query_seconds",
			Help:       `The time it takes to evaluate a decomposed query and deliver all its results.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
	}
}
