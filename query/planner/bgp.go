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

// A BGP is a basic graph pattern: a maximal subtree of a query made only of
// patterns, joins, and filters.
type BGP struct {
	Root plandef.Expr
}

// Patterns returns the BGP's triple patterns in pre-order.
func (b BGP) Patterns() []*plandef.Pattern {
	return plandef.Patterns(b.Root)
}

// CollectBGPs returns the BGPs of 'expr' in pre-order. The BGPs are disjoint.
// Subtrees that have already been planned (plans and source queries) are not
// searched. It returns a StructuralError if the tree is malformed.
func CollectBGPs(expr plandef.Expr) ([]BGP, error) {
	var bgps []BGP
	var visit func(e plandef.Expr) error
	visit = func(e plandef.Expr) error {
		if e == nil {
			return structuralErrorf("missing expression")
		}
		isBGP, err := inBGP(e)
		if err != nil {
			return err
		}
		if isBGP {
			bgps = append(bgps, BGP{Root: e})
			return nil
		}
		switch e.(type) {
		case *plandef.Plan, *plandef.SourceQuery:
			return nil
		}
		for _, in := range plandef.Inputs(e) {
			if err := visit(in); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(expr); err != nil {
		return nil, err
	}
	return bgps, nil
}

// inBGP returns true if 'e' and all of its descendants may belong to a BGP.
func inBGP(e plandef.Expr) (bool, error) {
	switch e := e.(type) {
	case *plandef.Pattern:
		for _, t := range e.Terms() {
			if t == nil {
				return false, structuralErrorf("pattern with missing term: %v", e)
			}
		}
		return true, nil
	case *plandef.Join:
		if e.Left == nil || e.Right == nil {
			return false, structuralErrorf("join with missing input")
		}
		left, err := inBGP(e.Left)
		if err != nil || !left {
			return false, err
		}
		return inBGP(e.Right)
	case *plandef.Filter:
		if e.Condition == nil {
			return false, structuralErrorf("filter without condition")
		}
		if e.Input == nil {
			return false, structuralErrorf("filter with missing input")
		}
		return inBGP(e.Input)
	}
	return false, nil
}

// A DecomposerContext holds the parts of a BGP the plan generator works with:
// its patterns and the conjuncts of its filter conditions.
type DecomposerContext struct {
	Patterns []*plandef.Pattern
	Filters  []plandef.ValueExpr
}

// NewDecomposerContext flattens a BGP into a DecomposerContext.
func NewDecomposerContext(bgp BGP) *DecomposerContext {
	ctx := new(DecomposerContext)
	plandef.Walk(bgp.Root, func(e plandef.Expr) bool {
		switch e := e.(type) {
		case *plandef.Pattern:
			ctx.Patterns = append(ctx.Patterns, e)
		case *plandef.Filter:
			ctx.Filters = append(ctx.Filters, plandef.Conjuncts(e.Condition)...)
		}
		return true
	})
	return ctx
}
