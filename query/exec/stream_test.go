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
	"context"
	"errors"
	"testing"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/stretchr/testify/assert"
)

func Test_Stream_cancelBeforeDemand(t *testing.T) {
	executor := twoSources()
	engine, closePool := newEngine(executor, Options{})
	defer closePool()
	s := engine.Evaluate(ctx, sq("S1"), rdf.Binding{})
	s.Cancel()
	_, ok := s.Next()
	assert.False(t, ok)
	assert.NoError(t, s.Err())
	s.Close()
	assert.NoError(t, s.Err())
	assert.Empty(t, executor.calls)
}

func Test_Stream_cancelAfterStart(t *testing.T) {
	executor := twoSources()
	executor.hang = map[plandef.Site]bool{"S1": true}
	engine, closePool := newEngine(executor, Options{StreamBuffer: 1})
	defer closePool()
	s := engine.Evaluate(ctx, sq("S1"), rdf.Binding{})
	_, ok := s.Next()
	assert.True(t, ok)
	s.Cancel()
	_, ok = s.Next()
	assert.False(t, ok)
	assert.True(t, errors.Is(s.Err(), context.Canceled), "error: %v", s.Err())
	s.Close()
	assert.True(t, errors.Is(s.Err(), context.Canceled), "error: %v", s.Err())
}

func Test_Stream_collectAfterCancel(t *testing.T) {
	executor := twoSources()
	executor.hang = map[plandef.Site]bool{"S1": true}
	engine, closePool := newEngine(executor, Options{StreamBuffer: 1})
	defer closePool()
	s := engine.Evaluate(ctx, sq("S1"), rdf.Binding{})
	_, ok := s.Next()
	assert.True(t, ok)
	s.Cancel()
	res, err := s.Collect()
	assert.Empty(t, res)
	assert.True(t, errors.Is(err, context.Canceled), "error: %v", err)
}

func Test_Stream_closeUnread(t *testing.T) {
	engine, closePool := newEngine(twoSources(), Options{StreamBuffer: 1})
	defer closePool()
	s := engine.Evaluate(ctx, &plandef.Union{Left: sq("S1"), Right: sq("S2")}, rdf.Binding{})
	_, ok := s.Next()
	assert.True(t, ok)
	s.Close()
	_, ok = s.Next()
	assert.False(t, ok)
}

func Test_Stream_parentContext(t *testing.T) {
	executor := twoSources()
	executor.hang = map[plandef.Site]bool{"S1": true}
	engine, closePool := newEngine(executor, Options{})
	defer closePool()
	parent, cancel := context.WithCancel(ctx)
	s := engine.Evaluate(parent, sq("S1"), rdf.Binding{})
	for i := 0; i < len(rowsS1); i++ {
		_, ok := s.Next()
		assert.True(t, ok)
	}
	cancel()
	res, err := s.Collect()
	assert.Empty(t, res)
	assert.True(t, errors.Is(err, context.Canceled), "error: %v", err)
}

func Test_Stream_endsOnce(t *testing.T) {
	engine, closePool := newEngine(twoSources(), Options{})
	defer closePool()
	s := engine.Evaluate(ctx, sq("S2"), rdf.Binding{})
	res, err := s.Collect()
	assert.NoError(t, err)
	assert.Len(t, res, len(rowsS2))
	_, ok := s.Next()
	assert.False(t, ok)
	s.Cancel()
	s.Close()
	assert.NoError(t, s.Err())
}
