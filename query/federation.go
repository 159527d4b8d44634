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
	"context"
	"fmt"
	"time"

	"github.com/ebay/federation/config"
	"github.com/ebay/federation/query/estimate"
	"github.com/ebay/federation/query/exec"
	"github.com/ebay/federation/query/planner"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/query/selector"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/sources/memstore"
	"github.com/ebay/federation/sources/sparqlhttp"
	"github.com/ebay/federation/util/parallel"
)

// A Federation is an Engine built from a configuration, along with the
// resources it owns.
type Federation struct {
	*Engine
	// Holds the data of the federation's memory sources.
	Store *memstore.Store
	pool  *parallel.Pool
}

// NewFederation builds an Engine for the sources described by 'cfg'. It loads
// the data files of memory sources, reading them through 'monitor' if it's not
// nil. The caller must Close the Federation.
func NewFederation(cfg *config.Federation, monitor memstore.LoadMonitor) (*Federation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store := memstore.New()
	routes := make(router)
	var remote []config.Source
	for _, src := range cfg.Sources {
		site := plandef.Site(src.ID)
		switch src.Type {
		case config.SourceMemory:
			store.Serve(site)
			if src.DataFile != "" {
				if err := store.LoadFile(site, src.DataFile, monitor); err != nil {
					return nil, err
				}
			}
			routes[site] = store
		case config.SourceSPARQL:
			remote = append(remote, src)
		}
	}
	if len(remote) > 0 {
		client := sparqlhttp.NewFromConfig(remote, time.Duration(cfg.Exec.SourceTimeout))
		for _, src := range remote {
			routes[plandef.Site(src.ID)] = client
		}
	}
	execOpts := exec.OptionsFromConfig(cfg.Exec)
	pool := parallel.NewPool(cfg.Exec.MaxConcurrentSourceQueries)
	engine := New(Options{
		Selector:   selector.NewCatalog(cfg.Sources),
		Estimators: estimate.New(cfg.Estimates, execOpts.BatchSize, store),
		Executor:   routes,
		Pool:       pool,
		Planner: planner.Options{
			CompleteSources:  cfg.Planner.CompleteSources,
			DisableMergeJoin: cfg.Planner.DisableMergeJoin,
		},
		Exec: execOpts,
	})
	return &Federation{Engine: engine, Store: store, pool: pool}, nil
}

// Close waits for running source queries to finish and releases the
// federation's resources.
func (f *Federation) Close() {
	f.pool.Close()
}

// router sends each source query to the executor for its site.
type router map[plandef.Site]exec.QueryExecutor

func (r router) Evaluate(ctx context.Context, site plandef.Site, expr plandef.Expr,
	bindings []rdf.Binding, emit func(rdf.Binding) error) error {

	executor, ok := r[site]
	if !ok {
		return fmt.Errorf("no executor for site %v", site)
	}
	return executor.Evaluate(ctx, site, expr, bindings, emit)
}
