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

// Package plandef defines the query expressions the planner rewrites and the
// executor evaluates. The set of expression types is closed: they're all
// defined in this package.
//
// Logical expressions (Pattern, Join, Filter, Union, Projection, Extension,
// Slice, Distinct) describe what a query asks for. Physical expressions
// (SourceQuery, BindJoin, HashJoin, MergeJoin, Plan) describe how to answer it
// across the federation, and carry the optimizer's estimates.
package plandef

import (
	"fmt"
	"strings"
)

// An Expr is a node in a query expression tree.
type Expr interface {
	// String returns a single-line description of this node, excluding its
	// inputs.
	String() string
	// Key writes the identity of the whole subtree rooted at this node.
	Key(*strings.Builder)
	anExpr()
}

// ImplementExpr is a list of types that implement Expr. It serves as
// documentation and a compile-time check.
var ImplementExpr = []Expr{
	new(Pattern),
	new(Join),
	new(Filter),
	new(Union),
	new(Projection),
	new(Extension),
	new(Slice),
	new(Distinct),
	new(SourceQuery),
	new(BindJoin),
	new(HashJoin),
	new(MergeJoin),
	new(Plan),
}

// A Pattern is a triple pattern, the basic unit of a query. It matches the
// triples whose terms equal its constants.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewPattern returns a Pattern for the given terms.
func NewPattern(subject, predicate, object Term) *Pattern {
	return &Pattern{Subject: subject, Predicate: predicate, Object: object}
}

// Terms returns the pattern's subject, predicate, and object.
func (p *Pattern) Terms() [3]Term {
	return [3]Term{p.Subject, p.Predicate, p.Object}
}

func (p *Pattern) String() string {
	return fmt.Sprintf("Pattern %v %v %v", p.Subject, p.Predicate, p.Object)
}

// Key implements cmp.Key.
func (p *Pattern) Key(b *strings.Builder) {
	b.WriteString("Pattern(")
	for i, t := range p.Terms() {
		if i > 0 {
			b.WriteByte(' ')
		}
		if t == nil {
			b.WriteString("nil")
		} else {
			t.Key(b)
		}
	}
	b.WriteByte(')')
}

// A Join is the inner join of its inputs on their shared variables.
type Join struct {
	Left  Expr
	Right Expr
}

func (*Join) String() string {
	return "Join"
}

// Key implements cmp.Key.
func (j *Join) Key(b *strings.Builder) {
	writeKey(b, "Join", "", j.Left, j.Right)
}

// A Filter keeps the results of its input for which Condition holds.
type Filter struct {
	Condition ValueExpr
	Input     Expr
}

func (f *Filter) String() string {
	return "Filter " + valueString(f.Condition)
}

// Key implements cmp.Key.
func (f *Filter) Key(b *strings.Builder) {
	writeKey(b, "Filter", valueString(f.Condition), f.Input)
}

// A Union returns the results of both inputs, without removing duplicates.
// Est is only set on unions the optimizer creates.
type Union struct {
	Left  Expr
	Right Expr
	Est   Estimates
}

func (*Union) String() string {
	return "Union"
}

// Key implements cmp.Key.
func (u *Union) Key(b *strings.Builder) {
	writeKey(b, "Union", "", u.Left, u.Right)
}

// A Projection restricts its input's results to the given variables.
type Projection struct {
	Variables VarSet
	Input     Expr
}

func (p *Projection) String() string {
	return "Projection " + p.Variables.String()
}

// Key implements cmp.Key.
func (p *Projection) Key(b *strings.Builder) {
	writeKey(b, "Projection", p.Variables.String(), p.Input)
}

// An ExprBinding assigns the value of an expression to a variable.
type ExprBinding struct {
	Expr ValueExpr
	Out  *Variable
}

func (eb ExprBinding) String() string {
	return fmt.Sprintf("(%v AS %v)", valueString(eb.Expr), eb.Out)
}

// An Extension adds variables computed from each of its input's results.
type Extension struct {
	Bindings []ExprBinding
	Input    Expr
}

func (e *Extension) String() string {
	return "Extension " + e.describe()
}

func (e *Extension) describe() string {
	parts := make([]string, len(e.Bindings))
	for i, eb := range e.Bindings {
		parts[i] = eb.String()
	}
	return strings.Join(parts, " ")
}

// Key implements cmp.Key.
func (e *Extension) Key(b *strings.Builder) {
	writeKey(b, "Extension", e.describe(), e.Input)
}

// LimitOffset describes a window of results. Either field may be nil.
type LimitOffset struct {
	Limit  *uint64
	Offset *uint64
}

func (lo LimitOffset) String() string {
	var parts []string
	if lo.Limit != nil {
		parts = append(parts, fmt.Sprintf("Limit %d", *lo.Limit))
	}
	if lo.Offset != nil {
		parts = append(parts, fmt.Sprintf("Offset %d", *lo.Offset))
	}
	return strings.Join(parts, " ")
}

// A Slice returns a window of its input's results.
type Slice struct {
	Paging LimitOffset
	Input  Expr
}

func (s *Slice) String() string {
	return "Slice " + s.Paging.String()
}

// Key implements cmp.Key.
func (s *Slice) Key(b *strings.Builder) {
	writeKey(b, "Slice", s.Paging.String(), s.Input)
}

// A Distinct removes duplicate results of its input.
type Distinct struct {
	Input Expr
}

func (*Distinct) String() string {
	return "Distinct"
}

// Key implements cmp.Key.
func (d *Distinct) Key(b *strings.Builder) {
	writeKey(b, "Distinct", "", d.Input)
}

func (*Pattern) anExpr()     {}
func (*Join) anExpr()        {}
func (*Filter) anExpr()      {}
func (*Union) anExpr()       {}
func (*Projection) anExpr()  {}
func (*Extension) anExpr()   {}
func (*Slice) anExpr()       {}
func (*Distinct) anExpr()    {}
func (*SourceQuery) anExpr() {}
func (*BindJoin) anExpr()    {}
func (*HashJoin) anExpr()    {}
func (*MergeJoin) anExpr()   {}
func (*Plan) anExpr()        {}

// writeKey writes "name[detail](input,input)". Nil inputs are written as
// "nil".
func writeKey(b *strings.Builder, name, detail string, inputs ...Expr) {
	b.WriteString(name)
	if detail != "" {
		b.WriteByte('[')
		b.WriteString(detail)
		b.WriteByte(']')
	}
	b.WriteByte('(')
	for i, in := range inputs {
		if i > 0 {
			b.WriteByte(',')
		}
		if in == nil {
			b.WriteString("nil")
		} else {
			in.Key(b)
		}
	}
	b.WriteByte(')')
}
