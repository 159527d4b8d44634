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

// Package planner decomposes query expressions into plans that a federation
// of sources can evaluate. It finds the basic graph patterns (BGPs) of a
// query, picks the cheapest way to answer each one with a dynamic programming
// search over source queries and join strategies, and grafts the chosen plans
// into the query tree.
package planner

import (
	"fmt"
	"strings"

	"github.com/ebay/federation/query/planner/plandef"
)

// A StructuralError reports a query tree that's malformed or can't be
// decomposed. It's not retryable.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "malformed query expression: " + e.Msg
}

func structuralErrorf(format string, args ...interface{}) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// An UnanswerableQueryError reports a BGP for which no plan exists, because
// no source can answer some of its patterns.
type UnanswerableQueryError struct {
	Patterns []*plandef.Pattern
}

func (e *UnanswerableQueryError) Error() string {
	parts := make([]string, len(e.Patterns))
	for i, p := range e.Patterns {
		parts[i] = p.String()
	}
	return "no source can answer: " + strings.Join(parts, ", ")
}
