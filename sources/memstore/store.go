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

// Package memstore is an in-memory triple store holding data for any number of
// sites. It evaluates source queries locally, which makes it useful for tests,
// demos, and small reference datasets.
package memstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	log "github.com/sirupsen/logrus"
)

// A Store holds the triples of each site it serves. It's safe for concurrent
// use.
type Store struct {
	lock   sync.RWMutex
	graphs map[plandef.Site]*graph
}

// New returns an empty Store.
func New() *Store {
	return &Store{graphs: make(map[plandef.Site]*graph)}
}

// Add inserts a triple into the data of 'site'. It returns false if the site
// already had the triple.
func (s *Store) Add(site plandef.Site, subject, predicate, object rdf.Term) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	g := s.graphs[site]
	if g == nil {
		g = newGraph()
		s.graphs[site] = g
	}
	return g.add(triple{subject, predicate, object})
}

// Load reads N-Triples from 'r' into the data of 'site'. It returns the number
// of new triples.
func (s *Store) Load(site plandef.Site, r io.Reader) (int, error) {
	added := 0
	err := rdf.ReadNTriples(r, func(subject, predicate, object rdf.Term) error {
		if s.Add(site, subject, predicate, object) {
			added++
		}
		return nil
	})
	return added, err
}

// A LoadMonitor observes the loading of a data file. It's given the open file
// and its size in bytes. It returns the reader to load from and a function
// that's called once loading ends.
type LoadMonitor func(filename string, size int64, r io.Reader) (io.Reader, func())

// LoadFile reads a file of N-Triples into the data of 'site'. If 'monitor' is
// not nil, the file is read through it.
func (s *Store) LoadFile(site plandef.Site, filename string, monitor LoadMonitor) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	var r io.Reader = f
	if monitor != nil {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		var done func()
		r, done = monitor(filename, info.Size(), f)
		defer done()
	}
	added, err := s.Load(site, r)
	if err != nil {
		return fmt.Errorf("error loading %v: %w", filename, err)
	}
	log.WithFields(log.Fields{
		"site":    site,
		"file":    filename,
		"triples": added,
	}).Info("Loaded source data")
	return nil
}

// Len returns the number of triples held for 'site'.
func (s *Store) Len(site plandef.Site) int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if g := s.graphs[site]; g != nil {
		return g.len()
	}
	return 0
}

// Sites returns the sites the store has data for, in no particular order.
func (s *Store) Sites() []plandef.Site {
	s.lock.RLock()
	defer s.lock.RUnlock()
	res := make([]plandef.Site, 0, len(s.graphs))
	for site := range s.graphs {
		res = append(res, site)
	}
	return res
}

// Serve makes 'site' known to the store even if it has no data, so that
// queries against it return no results instead of failing.
func (s *Store) Serve(site plandef.Site) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.graphs[site] == nil {
		s.graphs[site] = newGraph()
	}
}

// Evaluate implements exec.QueryExecutor. It evaluates 'expr' against the data
// of 'site' once for each binding of the context, in order. The store is read
// locked throughout, so writes wait for running queries.
func (s *Store) Evaluate(ctx context.Context, site plandef.Site, expr plandef.Expr,
	bindings []rdf.Binding, emit func(rdf.Binding) error) error {

	s.lock.RLock()
	defer s.lock.RUnlock()
	g := s.graphs[site]
	if g == nil {
		return fmt.Errorf("memstore: unknown site %v", site)
	}
	e := &evaluator{ctx: ctx, graph: g}
	for _, b := range bindings {
		if err := e.eval(expr, b, emit); err != nil {
			return err
		}
	}
	return nil
}
