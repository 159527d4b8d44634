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

// Package config contains the configuration for a federated query engine. The
// configuration is typically loaded from a JSON or YAML file on disk.
package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Defaults used when the corresponding configuration value is zero.
const (
	DefaultBatchSize            = 10
	DefaultStreamBuffer         = 16
	DefaultCardinality          = 1000
	DefaultJoinSelectivity      = 0.1
	DefaultConditionSelectivity = 0.5
	DefaultDistinctValues       = 100
	DefaultRequestCost          = 100
	DefaultTransferCostPerRow   = 1
	DefaultLocalCostPerRow      = 0.1
	DefaultStatsCacheTTL        = time.Minute
)

// Source types.
const (
	SourceMemory = "memory"
	SourceSPARQL = "sparql"
)

// Federation describes the configuration for a federated query engine.
type Federation struct {
	// The data sources taking part in the federation. Required.
	Sources []Source `json:"sources"`

	// Options for query decomposition and plan selection.
	Planner Planner `json:"planner"`

	// Constants and costs used by the default estimators.
	Estimates Estimates `json:"estimates"`

	// Options for query evaluation.
	Exec Exec `json:"exec"`

	// If non-nil, the configuration for distributed tracing (OpenTracing). If
	// nil, no traces are collected.
	Tracing *Tracing `json:"tracing,omitempty"`

	// If set, the host:port to serve Prometheus metrics on.
	MetricsAddress string `json:"metricsAddress,omitempty"`
}

// A Source describes one member of the federation.
type Source struct {
	// A unique identifier for the source. Plans refer to sources by this ID.
	ID string `json:"id"`

	// Either "memory" or "sparql".
	Type string `json:"type"`

	// Required for sparql sources; ignored otherwise. The URL of the SPARQL
	// 1.1 protocol query endpoint.
	Endpoint string `json:"endpoint,omitempty"`

	// Optional for memory sources; ignored otherwise. A file of N-Triples to
	// load at startup.
	DataFile string `json:"dataFile,omitempty"`

	// IRI prefixes of the predicates this source has data for. If empty, the
	// source is assumed to be able to answer any pattern.
	Predicates []string `json:"predicates,omitempty"`
}

// Planner controls how queries are decomposed into source queries.
type Planner struct {
	// If true, a pattern served by several sources is answered by the union of
	// all of them. If false, the single cheapest source is used.
	CompleteSources bool `json:"completeSources,omitempty"`

	// If true, the optimizer never chooses merge joins.
	DisableMergeJoin bool `json:"disableMergeJoin,omitempty"`
}

// Estimates configures the default selectivity, cardinality, and cost
// estimators. Zero values are replaced by the package defaults, except for the
// selectivities, which are only defaulted when unset.
type Estimates struct {
	// Number of results assumed for a pattern with no statistics.
	DefaultCardinality float64 `json:"defaultCardinality,omitempty"`
	// Fraction of the cross product assumed to survive a join, in [0, 1].
	JoinSelectivity *float64 `json:"joinSelectivity,omitempty"`
	// Fraction of results assumed to survive a filter condition, in [0, 1].
	ConditionSelectivity *float64 `json:"conditionSelectivity,omitempty"`
	// Number of distinct values assumed for a variable with no statistics.
	DistinctValues float64 `json:"distinctValues,omitempty"`
	// Fixed cost of sending one request to a source.
	RequestCost float64 `json:"requestCost,omitempty"`
	// Cost of receiving one result from a source.
	TransferCostPerRow float64 `json:"transferCostPerRow,omitempty"`
	// Cost of processing one row locally (hashing, comparing, sorting).
	LocalCostPerRow float64 `json:"localCostPerRow,omitempty"`
	// How long source statistics are cached for.
	StatsCacheTTL Duration `json:"statsCacheTTL,omitempty"`
}

// Exec configures query evaluation.
type Exec struct {
	// Number of left-side results sent per request by bind joins.
	BatchSize int `json:"batchSize,omitempty"`
	// Maximum number of concurrently running source queries. 0 means no limit.
	MaxConcurrentSourceQueries int `json:"maxConcurrentSourceQueries,omitempty"`
	// Number of results buffered ahead of the consumer of a query.
	StreamBuffer int `json:"streamBuffer,omitempty"`
	// If non-zero, the time limit for each individual source query.
	SourceTimeout Duration `json:"sourceTimeout,omitempty"`
}

// Tracing configures distributed tracing.
type Tracing struct {
	// URL of a Jaeger collector accepting jaeger.thrift over HTTP, for
	// example "http://localhost:14268/api/traces".
	Endpoint string `json:"endpoint"`
}

// Fraction returns a pointer to 'v', for setting the selectivities of
// Estimates.
func Fraction(v float64) *float64 {
	return &v
}

// WithDefaults returns a copy of 'e' with zero values and unset selectivities
// replaced by defaults.
func (e Estimates) WithDefaults() Estimates {
	setDefault(&e.DefaultCardinality, DefaultCardinality)
	if e.JoinSelectivity == nil {
		e.JoinSelectivity = Fraction(DefaultJoinSelectivity)
	}
	if e.ConditionSelectivity == nil {
		e.ConditionSelectivity = Fraction(DefaultConditionSelectivity)
	}
	setDefault(&e.DistinctValues, DefaultDistinctValues)
	setDefault(&e.RequestCost, DefaultRequestCost)
	setDefault(&e.TransferCostPerRow, DefaultTransferCostPerRow)
	setDefault(&e.LocalCostPerRow, DefaultLocalCostPerRow)
	if e.StatsCacheTTL == 0 {
		e.StatsCacheTTL = Duration(DefaultStatsCacheTTL)
	}
	return e
}

// WithDefaults returns a copy of 'e' with zero values replaced by defaults.
func (e Exec) WithDefaults() Exec {
	if e.BatchSize <= 0 {
		e.BatchSize = DefaultBatchSize
	}
	if e.StreamBuffer <= 0 {
		e.StreamBuffer = DefaultStreamBuffer
	}
	return e
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// Validate checks the configuration for errors that Load can't detect on its
// own, such as duplicate source IDs.
func (cfg *Federation) Validate() error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}
	seen := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if src.ID == "" {
			return fmt.Errorf("source %d has no id", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
		switch src.Type {
		case SourceMemory:
		case SourceSPARQL:
			if src.Endpoint == "" {
				return fmt.Errorf("sparql source %q has no endpoint", src.ID)
			}
		default:
			return fmt.Errorf("source %q has unknown type %q", src.ID, src.Type)
		}
	}
	for name, v := range map[string]*float64{
		"joinSelectivity":      cfg.Estimates.JoinSelectivity,
		"conditionSelectivity": cfg.Estimates.ConditionSelectivity,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("estimates.%s must be between 0 and 1, got %v", name, *v)
		}
	}
	return nil
}

// Duration is a time.Duration that's encoded as a string like "1m30s".
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %v", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
