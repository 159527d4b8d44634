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

package exec

import (
	metricsutil "github.com/ebay/federation/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type execMetrics struct {
	sourceQuerySeconds prometheus.Summary
	sourceDurations    *prometheus.HistogramVec
	sourceResults      *prometheus.CounterVec
	sourceErrors       *prometheus.CounterVec
}

var metrics execMetrics

func init() {
	mr := metricsutil.Default
	metrics = execMetrics{
		sourceQuerySeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "federation",
			Subsystem:  "exec",
			Name:       "source_query_seconds",
			Help:       `The time from starting a source query until its results have been consumed.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
		sourceDurations: mr.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "federation",
			Subsystem: "exec",
			Name:      "source_response_seconds",
			Help:      `The time each source takes to return all the results of a source query.`,
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"site"}),
		sourceResults: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "federation",
			Subsystem: "exec",
			Name:      "source_results_total",
			Help:      `Number of results received from each source.`,
		}, []string{"site"}),
		sourceErrors: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "federation",
			Subsystem: "exec",
			Name:      "source_errors_total",
			Help:      `Number of source queries that failed, by source.`,
		}, []string{"site"}),
	}
}
