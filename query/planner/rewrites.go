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
	"github.com/ebay/federation/query/planner/plandef"
)

// PushDownLimit moves slices closer to the sources so that less data is
// fetched. A slice moves below projections and extensions. Over a union or a
// plan that's a single source query, the slice stays in place and a copy
// limited to limit+offset results is pushed into the union's arms or the
// source query. Filters, joins, and distinct block the push-down. The result
// is a new expression; applying PushDownLimit again doesn't change it.
func PushDownLimit(expr plandef.Expr) plandef.Expr {
	return plandef.Transform(expr, func(e plandef.Expr) plandef.Expr {
		if s, ok := e.(*plandef.Slice); ok {
			return pushSlice(s)
		}
		return e
	})
}

func pushSlice(s *plandef.Slice) plandef.Expr {
	switch in := s.Input.(type) {
	case *plandef.Projection:
		return &plandef.Projection{
			Variables: in.Variables,
			Input:     pushSlice(&plandef.Slice{Paging: s.Paging, Input: in.Input}),
		}
	case *plandef.Extension:
		return &plandef.Extension{
			Bindings: in.Bindings,
			Input:    pushSlice(&plandef.Slice{Paging: s.Paging, Input: in.Input}),
		}
	case *plandef.Union:
		n, ok := window(s.Paging)
		if !ok {
			return s
		}
		left, right := capRows(in.Left, n), capRows(in.Right, n)
		if left == in.Left && right == in.Right {
			return s
		}
		return &plandef.Slice{
			Paging: s.Paging,
			Input:  &plandef.Union{Left: left, Right: right, Est: in.Est},
		}
	case *plandef.Plan:
		n, ok := window(s.Paging)
		sq, isSQ := in.Root.(*plandef.SourceQuery)
		if !ok || !isSQ || capped(sq.Input, n) {
			return s
		}
		return &plandef.Slice{
			Paging: s.Paging,
			Input: &plandef.Plan{
				Root: &plandef.SourceQuery{
					Site:  sq.Site,
					Input: &plandef.Slice{Paging: limitOnly(n), Input: sq.Input},
					Est:   sq.Est,
				},
				Est: in.Est,
			},
		}
	}
	return s
}

// window returns the number of input rows a slice can look at. ok is false if
// the slice has no limit.
func window(paging plandef.LimitOffset) (n uint64, ok bool) {
	if paging.Limit == nil {
		return 0, false
	}
	n = *paging.Limit
	if paging.Offset != nil {
		n += *paging.Offset
	}
	return n, true
}

func limitOnly(n uint64) plandef.LimitOffset {
	return plandef.LimitOffset{Limit: &n}
}

// capRows returns 'e' limited to 'n' rows, pushing the limit down as far as
// it goes. It returns 'e' itself if it's already limited to at most 'n' rows.
func capRows(e plandef.Expr, n uint64) plandef.Expr {
	if capped(e, n) {
		return e
	}
	return pushSlice(&plandef.Slice{Paging: limitOnly(n), Input: e})
}

// capped returns true if 'e' produces at most 'n' rows because of a slice
// near its top.
func capped(e plandef.Expr, n uint64) bool {
	for {
		switch in := e.(type) {
		case *plandef.Projection:
			e = in.Input
		case *plandef.Extension:
			e = in.Input
		case *plandef.Slice:
			noOffset := in.Paging.Offset == nil || *in.Paging.Offset == 0
			return noOffset && in.Paging.Limit != nil && *in.Paging.Limit <= n
		case *plandef.Plan:
			sq, ok := in.Root.(*plandef.SourceQuery)
			if !ok {
				return false
			}
			e = sq.Input
		default:
			return false
		}
	}
}

// CleanupExtensions removes extensions that bind nothing and projections that
// keep every variable of their input, and collapses nested projections into
// one. The result is a new expression.
func CleanupExtensions(expr plandef.Expr) plandef.Expr {
	return plandef.Transform(expr, func(e plandef.Expr) plandef.Expr {
		switch e := e.(type) {
		case *plandef.Extension:
			if len(e.Bindings) == 0 {
				return e.Input
			}
		case *plandef.Projection:
			p := e
			if inner, ok := p.Input.(*plandef.Projection); ok {
				p = &plandef.Projection{
					Variables: p.Variables.Intersect(inner.Variables),
					Input:     inner.Input,
				}
			}
			if p.Variables.Equal(plandef.Vars(p.Input)) {
				return p.Input
			}
			return p
		}
		return e
	})
}
