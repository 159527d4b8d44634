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

package plandef

import (
	"fmt"
	"strings"
)

// Estimates are the optimizer's predictions for a physical expression. Cost
// includes the cost of the expression's inputs.
type Estimates struct {
	Cardinality float64
	Cost        float64
}

func (e Estimates) String() string {
	return fmt.Sprintf("card=%.4g cost=%.4g", e.Cardinality, e.Cost)
}

// A SourceQuery sends its Input expression to a single source and returns the
// source's results. Input is a logical expression.
type SourceQuery struct {
	Site  Site
	Input Expr
	Est   Estimates
}

func (s *SourceQuery) String() string {
	return "SourceQuery " + string(s.Site)
}

// Key implements cmp.Key.
func (s *SourceQuery) Key(b *strings.Builder) {
	writeKey(b, "SourceQuery", string(s.Site), s.Input)
}

// JoinProps are the fields common to all physical join strategies.
type JoinProps struct {
	// The variables shared by both inputs, on which they're joined.
	Variables VarSet
	// If not nil, a condition applied to each joined result.
	Condition ValueExpr
	Left      Expr
	Right     Expr
	Est       Estimates
}

func (j *JoinProps) describe(name string) string {
	s := name
	if len(j.Variables) > 0 {
		s += " " + j.Variables.String()
	}
	if j.Condition != nil {
		s += " if " + valueString(j.Condition)
	}
	return s
}

func (j *JoinProps) writeKey(b *strings.Builder, name string) {
	detail := j.Variables.String()
	if j.Condition != nil {
		detail += " if " + valueString(j.Condition)
	}
	writeKey(b, name, detail, j.Left, j.Right)
}

// A BindJoin evaluates its left input, then evaluates its right input once per
// batch of left results, using the batch as the binding context.
type BindJoin struct {
	JoinProps
}

func (j *BindJoin) String() string {
	return j.describe("BindJoin")
}

// Key implements cmp.Key.
func (j *BindJoin) Key(b *strings.Builder) {
	j.writeKey(b, "BindJoin")
}

// A HashJoin builds a hash table from its left input and looks up each result
// of its right input in it.
type HashJoin struct {
	JoinProps
}

func (j *HashJoin) String() string {
	return j.describe("HashJoin")
}

// Key implements cmp.Key.
func (j *HashJoin) Key(b *strings.Builder) {
	j.writeKey(b, "HashJoin")
}

// A MergeJoin sorts both of its inputs on the join variables and merges them.
type MergeJoin struct {
	JoinProps
}

func (j *MergeJoin) String() string {
	return j.describe("MergeJoin")
}

// Key implements cmp.Key.
func (j *MergeJoin) Key(b *strings.Builder) {
	j.writeKey(b, "MergeJoin")
}

// A Plan is the optimizer's chosen way to evaluate one basic graph pattern. It
// replaces that pattern in the query tree.
type Plan struct {
	Root Expr
	Est  Estimates
}

func (*Plan) String() string {
	return "Plan"
}

// Key implements cmp.Key.
func (p *Plan) Key(b *strings.Builder) {
	writeKey(b, "Plan", "", p.Root)
}

// EstimatesOf returns the estimates of a physical expression. ok is false for
// logical expressions.
func EstimatesOf(e Expr) (est Estimates, ok bool) {
	switch e := e.(type) {
	case *SourceQuery:
		return e.Est, true
	case *BindJoin:
		return e.Est, true
	case *HashJoin:
		return e.Est, true
	case *MergeJoin:
		return e.Est, true
	case *Plan:
		return e.Est, true
	case *Union:
		return e.Est, e.Est != Estimates{}
	}
	return Estimates{}, false
}

// Props returns the join fields of a physical join, or nil if 'e' isn't one.
func Props(e Expr) *JoinProps {
	switch e := e.(type) {
	case *BindJoin:
		return &e.JoinProps
	case *HashJoin:
		return &e.JoinProps
	case *MergeJoin:
		return &e.JoinProps
	}
	return nil
}
