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

// A ValueExpr computes a value from a binding. Filter conditions and extension
// expressions are ValueExprs. Variable and Constant are ValueExprs too.
type ValueExpr interface {
	String() string
	Key(*strings.Builder)
	aValue()
}

// ImplementValueExpr is a list of types that implement ValueExpr.
var ImplementValueExpr = []ValueExpr{
	new(Variable),
	new(Constant),
	new(Compare),
	new(And),
	new(Or),
	new(Not),
	new(Bound),
}

// CompareOp is a comparison operator.
type CompareOp int

// Comparison operators.
const (
	OpEqual CompareOp = iota + 1
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

func (op CompareOp) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	}
	return fmt.Sprintf("CompareOp(%d)", int(op))
}

// Compare compares two values.
type Compare struct {
	Op    CompareOp
	Left  ValueExpr
	Right ValueExpr
}

// And is true if both its arguments are true.
type And struct {
	Left  ValueExpr
	Right ValueExpr
}

// Or is true if either of its arguments is true.
type Or struct {
	Left  ValueExpr
	Right ValueExpr
}

// Not negates its argument.
type Not struct {
	Arg ValueExpr
}

// Bound is true if the variable has a value.
type Bound struct {
	Var *Variable
}

func (*Compare) aValue() {}
func (*And) aValue()     {}
func (*Or) aValue()      {}
func (*Not) aValue()     {}
func (*Bound) aValue()   {}

func (c *Compare) String() string {
	return fmt.Sprintf("%v %v %v", valueString(c.Left), c.Op, valueString(c.Right))
}

// Key implements cmp.Key.
func (c *Compare) Key(b *strings.Builder) {
	b.WriteString(c.String())
}

func (a *And) String() string {
	return fmt.Sprintf("(%v && %v)", valueString(a.Left), valueString(a.Right))
}

// Key implements cmp.Key.
func (a *And) Key(b *strings.Builder) {
	b.WriteString(a.String())
}

func (o *Or) String() string {
	return fmt.Sprintf("(%v || %v)", valueString(o.Left), valueString(o.Right))
}

// Key implements cmp.Key.
func (o *Or) Key(b *strings.Builder) {
	b.WriteString(o.String())
}

func (n *Not) String() string {
	return "!" + valueString(n.Arg)
}

// Key implements cmp.Key.
func (n *Not) Key(b *strings.Builder) {
	b.WriteString(n.String())
}

func (bd *Bound) String() string {
	return fmt.Sprintf("bound(%v)", bd.Var)
}

// Key implements cmp.Key.
func (bd *Bound) Key(b *strings.Builder) {
	b.WriteString(bd.String())
}

func valueString(v ValueExpr) string {
	if v == nil {
		return "nil"
	}
	return v.String()
}

// ValueVars returns the variables referenced by 'v'.
func ValueVars(v ValueExpr) VarSet {
	switch v := v.(type) {
	case *Variable:
		return VarSet{v}
	case *Compare:
		return ValueVars(v.Left).Union(ValueVars(v.Right))
	case *And:
		return ValueVars(v.Left).Union(ValueVars(v.Right))
	case *Or:
		return ValueVars(v.Left).Union(ValueVars(v.Right))
	case *Not:
		return ValueVars(v.Arg)
	case *Bound:
		return VarSet{v.Var}
	}
	return nil
}

// Conjuncts splits a condition made of nested Ands into its parts.
func Conjuncts(v ValueExpr) []ValueExpr {
	if and, ok := v.(*And); ok {
		return append(Conjuncts(and.Left), Conjuncts(and.Right)...)
	}
	if v == nil {
		return nil
	}
	return []ValueExpr{v}
}

// AndAll combines conditions into one. It returns nil for no conditions.
func AndAll(conds []ValueExpr) ValueExpr {
	if len(conds) == 0 {
		return nil
	}
	res := conds[0]
	for _, c := range conds[1:] {
		res = &And{Left: res, Right: c}
	}
	return res
}
