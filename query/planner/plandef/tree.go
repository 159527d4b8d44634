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
	"strings"

	log "github.com/sirupsen/logrus"
)

// Inputs returns the child expressions of 'e', in order.
func Inputs(e Expr) []Expr {
	switch e := e.(type) {
	case *Pattern:
		return nil
	case *Join:
		return []Expr{e.Left, e.Right}
	case *Filter:
		return []Expr{e.Input}
	case *Union:
		return []Expr{e.Left, e.Right}
	case *Projection:
		return []Expr{e.Input}
	case *Extension:
		return []Expr{e.Input}
	case *Slice:
		return []Expr{e.Input}
	case *Distinct:
		return []Expr{e.Input}
	case *SourceQuery:
		return []Expr{e.Input}
	case *BindJoin:
		return []Expr{e.Left, e.Right}
	case *HashJoin:
		return []Expr{e.Left, e.Right}
	case *MergeJoin:
		return []Expr{e.Left, e.Right}
	case *Plan:
		return []Expr{e.Root}
	}
	log.Panicf("plandef.Inputs: unexpected expression type %T", e)
	return nil
}

// WithInputs returns a shallow copy of 'e' with its inputs replaced. 'inputs'
// must have as many entries as Inputs(e).
func WithInputs(e Expr, inputs []Expr) Expr {
	if len(inputs) != len(Inputs(e)) {
		log.Panicf("plandef.WithInputs: %T needs %d inputs, got %d",
			e, len(Inputs(e)), len(inputs))
	}
	switch e := e.(type) {
	case *Pattern:
		c := *e
		return &c
	case *Join:
		return &Join{Left: inputs[0], Right: inputs[1]}
	case *Filter:
		return &Filter{Condition: e.Condition, Input: inputs[0]}
	case *Union:
		return &Union{Left: inputs[0], Right: inputs[1], Est: e.Est}
	case *Projection:
		return &Projection{Variables: e.Variables, Input: inputs[0]}
	case *Extension:
		return &Extension{Bindings: e.Bindings, Input: inputs[0]}
	case *Slice:
		return &Slice{Paging: e.Paging, Input: inputs[0]}
	case *Distinct:
		return &Distinct{Input: inputs[0]}
	case *SourceQuery:
		return &SourceQuery{Site: e.Site, Input: inputs[0], Est: e.Est}
	case *BindJoin:
		return &BindJoin{JoinProps: e.withInputs(inputs)}
	case *HashJoin:
		return &HashJoin{JoinProps: e.withInputs(inputs)}
	case *MergeJoin:
		return &MergeJoin{JoinProps: e.withInputs(inputs)}
	case *Plan:
		return &Plan{Root: inputs[0], Est: e.Est}
	}
	log.Panicf("plandef.WithInputs: unexpected expression type %T", e)
	return nil
}

func (j *JoinProps) withInputs(inputs []Expr) JoinProps {
	c := *j
	c.Left, c.Right = inputs[0], inputs[1]
	return c
}

// Walk calls 'fn' on every expression in the tree rooted at 'e', in pre-order.
// If 'fn' returns false, the children of that expression are skipped. Nil
// expressions are skipped.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, in := range Inputs(e) {
		Walk(in, fn)
	}
}

// Replace rewrites the tree rooted at 'e' top-down. 'fn' is called on each
// expression before its children; if it returns replaced=true, the returned
// expression takes the original's place and its children are not visited.
// Otherwise Replace continues into the children. Unchanged subtrees are shared
// with the input; changed nodes are copied, so 'e' itself is never modified.
func Replace(e Expr, fn func(Expr) (res Expr, replaced bool, err error)) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	res, replaced, err := fn(e)
	if err != nil || replaced {
		return res, err
	}
	inputs := Inputs(e)
	changed := false
	newInputs := make([]Expr, len(inputs))
	for i, in := range inputs {
		newInputs[i], err = Replace(in, fn)
		if err != nil {
			return nil, err
		}
		changed = changed || newInputs[i] != in
	}
	if !changed {
		return e, nil
	}
	return WithInputs(e, newInputs), nil
}

// Transform rewrites the tree rooted at 'e' bottom-up: 'fn' is called on each
// expression after its children have been transformed. As with Replace, 'e'
// itself is never modified.
func Transform(e Expr, fn func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	inputs := Inputs(e)
	changed := false
	newInputs := make([]Expr, len(inputs))
	for i, in := range inputs {
		newInputs[i] = Transform(in, fn)
		changed = changed || newInputs[i] != in
	}
	if changed {
		e = WithInputs(e, newInputs)
	}
	return fn(e)
}

// Vars returns the variables that may be bound in the results of 'e'.
func Vars(e Expr) VarSet {
	switch e := e.(type) {
	case nil:
		return nil
	case *Pattern:
		var set VarSet
		for _, t := range e.Terms() {
			if v, ok := t.(*Variable); ok {
				set = set.Union(VarSet{v})
			}
		}
		return set
	case *Projection:
		return e.Variables
	case *Extension:
		set := Vars(e.Input)
		for _, eb := range e.Bindings {
			set = set.Union(VarSet{eb.Out})
		}
		return set
	}
	var set VarSet
	for _, in := range Inputs(e) {
		set = set.Union(Vars(in))
	}
	return set
}

// Patterns returns the triple patterns in the tree rooted at 'e', in
// pre-order.
func Patterns(e Expr) []*Pattern {
	var res []*Pattern
	Walk(e, func(e Expr) bool {
		if p, ok := e.(*Pattern); ok {
			res = append(res, p)
		}
		return true
	})
	return res
}

// Logical returns the logical expression that 'e' computes, with source
// queries, plans, and physical joins replaced by their logical meaning.
func Logical(e Expr) Expr {
	return Transform(e, func(e Expr) Expr {
		switch e := e.(type) {
		case *SourceQuery:
			return e.Input
		case *Plan:
			return e.Root
		case *Union:
			if e.Est != (Estimates{}) {
				return &Union{Left: e.Left, Right: e.Right}
			}
		}
		if props := Props(e); props != nil {
			var j Expr = &Join{Left: props.Left, Right: props.Right}
			if props.Condition != nil {
				j = &Filter{Condition: props.Condition, Input: j}
			}
			return j
		}
		return e
	})
}

// Format returns a multi-line description of the tree rooted at 'e', with one
// node per line and inputs indented below their parent.
func Format(e Expr) string {
	return format(e, false)
}

// FormatEstimates is like Format but also includes the estimates of physical
// expressions.
func FormatEstimates(e Expr) string {
	return format(e, true)
}

func format(e Expr, withEst bool) string {
	var b strings.Builder
	var rec func(e Expr, depth int)
	rec = func(e Expr, depth int) {
		b.WriteString(strings.Repeat("\t", depth))
		if e == nil {
			b.WriteString("nil\n")
			return
		}
		b.WriteString(e.String())
		if est, ok := EstimatesOf(e); ok && withEst {
			b.WriteString(" [")
			b.WriteString(est.String())
			b.WriteString("]")
		}
		b.WriteByte('\n')
		for _, in := range Inputs(e) {
			rec(in, depth+1)
		}
	}
	rec(e, 0)
	return b.String()
}
