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

package memstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ebay/federation/query/exec"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/cmp"
)

// evaluator evaluates logical expressions against a graph. Each result of an
// expression extends the binding it was evaluated with.
type evaluator struct {
	ctx   context.Context
	graph *graph
}

func (e *evaluator) eval(expr plandef.Expr, in rdf.Binding, fn func(rdf.Binding) error) error {
	switch expr := expr.(type) {
	case *plandef.Pattern:
		return e.pattern(expr, in, fn)
	case *plandef.Join:
		return e.eval(expr.Left, in, func(left rdf.Binding) error {
			return e.eval(expr.Right, left, fn)
		})
	case *plandef.Filter:
		return e.eval(expr.Input, in, func(b rdf.Binding) error {
			if exec.Holds(expr.Condition, b) {
				return fn(b)
			}
			return nil
		})
	case *plandef.Union:
		if err := e.eval(expr.Left, in, fn); err != nil {
			return err
		}
		return e.eval(expr.Right, in, fn)
	case *plandef.Projection:
		names := append(expr.Variables.Names(), in.Names()...)
		return e.eval(expr.Input, in, func(b rdf.Binding) error {
			return fn(b.Project(names))
		})
	case *plandef.Extension:
		return e.eval(expr.Input, in, func(b rdf.Binding) error {
			for _, eb := range expr.Bindings {
				if _, bound := b.Get(eb.Out.Name); bound {
					continue
				}
				if val, err := exec.EvalTerm(eb.Expr, b); err == nil {
					b = b.With(eb.Out.Name, val)
				}
			}
			return fn(b)
		})
	case *plandef.Slice:
		return e.slice(expr, in, fn)
	case *plandef.Distinct:
		seen := make(map[string]struct{})
		return e.eval(expr.Input, in, func(b rdf.Binding) error {
			key := cmp.GetKey(b)
			if _, dup := seen[key]; dup {
				return nil
			}
			seen[key] = struct{}{}
			return fn(b)
		})
	}
	return fmt.Errorf("memstore: can't evaluate %T expressions", expr)
}

func (e *evaluator) slice(expr *plandef.Slice, in rdf.Binding, fn func(rdf.Binding) error) error {
	var offset uint64
	if expr.Paging.Offset != nil {
		offset = *expr.Paging.Offset
	}
	limit := expr.Paging.Limit
	if limit != nil && *limit == 0 {
		return nil
	}
	// Nested slices each need their own sentinel.
	full := errors.New("slice full")
	var seen, sent uint64
	err := e.eval(expr.Input, in, func(b rdf.Binding) error {
		seen++
		if seen <= offset {
			return nil
		}
		if err := fn(b); err != nil {
			return err
		}
		sent++
		if limit != nil && sent >= *limit {
			return full
		}
		return nil
	})
	if err == full {
		return nil
	}
	return err
}

// pattern matches a triple pattern, with the variables bound by 'in'
// substituted, against the graph.
func (e *evaluator) pattern(p *plandef.Pattern, in rdf.Binding, fn func(rdf.Binding) error) error {
	var key triple
	var vars [3]string
	for i, term := range p.Terms() {
		switch term := term.(type) {
		case *plandef.Constant:
			key[i] = term.Value
		case *plandef.Variable:
			if val, ok := in.Get(term.Name); ok {
				key[i] = val
			} else {
				vars[i] = term.Name
			}
		}
	}
	var err error
	e.graph.match(key, func(t triple) bool {
		if err = e.ctx.Err(); err != nil {
			return false
		}
		out := in
		for i, name := range vars {
			if name == "" {
				continue
			}
			// A variable repeated within the pattern must match the same term.
			if val, ok := out.Get(name); ok {
				if !rdf.Equal(val, t[i]) {
					return true
				}
				continue
			}
			out = out.With(name, t[i])
		}
		err = fn(out)
		return err == nil
	})
	return err
}
