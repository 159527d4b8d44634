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

package sparqlhttp

import (
	"fmt"
	"strings"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/util/cmp"
)

// Render returns a SPARQL SELECT query for 'expr'. If any of 'bindings' bind
// variables of 'expr', they're sent in a VALUES block, so that the results
// are those of evaluating 'expr' once per binding.
func Render(expr plandef.Expr, bindings []rdf.Binding) (string, error) {
	r := renderer{}
	r.line("SELECT * WHERE {")
	r.depth++
	r.values(plandef.Vars(expr), bindings)
	if err := r.group(expr); err != nil {
		return "", err
	}
	r.depth--
	r.line("}")
	return r.b.String(), nil
}

type renderer struct {
	b     strings.Builder
	depth int
}

func (r *renderer) line(format string, args ...interface{}) {
	for i := 0; i < r.depth; i++ {
		r.b.WriteString("  ")
	}
	fmt.Fprintf(&r.b, format, args...)
	r.b.WriteByte('\n')
}

// values writes a VALUES block for the variables in 'vars' that are bound in
// 'bindings'. Bindings that agree on those variables are sent once.
func (r *renderer) values(vars plandef.VarSet, bindings []rdf.Binding) {
	var used []string
	for _, v := range vars {
		for _, b := range bindings {
			if _, ok := b.Get(v.Name); ok {
				used = append(used, v.Name)
				break
			}
		}
	}
	if len(used) == 0 {
		return
	}
	header := make([]string, len(used))
	for i, name := range used {
		header[i] = "?" + name
	}
	r.line("VALUES (%s) {", strings.Join(header, " "))
	r.depth++
	seen := make(map[string]bool)
	for _, b := range bindings {
		key := cmp.GetKey(b.Project(used))
		if seen[key] {
			continue
		}
		seen[key] = true
		row := make([]string, len(used))
		for i, name := range used {
			if val, ok := b.Get(name); ok {
				row[i] = val.String()
			} else {
				row[i] = "UNDEF"
			}
		}
		r.line("(%s)", strings.Join(row, " "))
	}
	r.depth--
	r.line("}")
}

// group writes the body of a group graph pattern for 'expr'.
func (r *renderer) group(expr plandef.Expr) error {
	switch e := expr.(type) {
	case *plandef.Pattern:
		r.line("%s %s %s .", term(e.Subject), term(e.Predicate), term(e.Object))
	case *plandef.Join:
		if err := r.group(e.Left); err != nil {
			return err
		}
		return r.group(e.Right)
	case *plandef.Filter:
		if err := r.group(e.Input); err != nil {
			return err
		}
		cond, err := value(e.Condition)
		if err != nil {
			return err
		}
		r.line("FILTER(%s)", cond)
	case *plandef.Union:
		if err := r.nested("", e.Left); err != nil {
			return err
		}
		r.line("UNION")
		return r.nested("", e.Right)
	case *plandef.Extension:
		if err := r.group(e.Input); err != nil {
			return err
		}
		for _, eb := range e.Bindings {
			val, err := value(eb.Expr)
			if err != nil {
				return err
			}
			r.line("BIND(%s AS ?%s)", val, eb.Out.Name)
		}
	case *plandef.Projection:
		return r.subSelect("SELECT "+varList(e.Variables), e.Input, "")
	case *plandef.Distinct:
		return r.subSelect("SELECT DISTINCT *", e.Input, "")
	case *plandef.Slice:
		var mods []string
		if e.Paging.Limit != nil {
			mods = append(mods, fmt.Sprintf("LIMIT %d", *e.Paging.Limit))
		}
		if e.Paging.Offset != nil {
			mods = append(mods, fmt.Sprintf("OFFSET %d", *e.Paging.Offset))
		}
		return r.subSelect("SELECT *", e.Input, strings.Join(mods, " "))
	default:
		return fmt.Errorf("sparqlhttp: can't render %T expressions", expr)
	}
	return nil
}

// nested writes 'expr' as a group in braces, after 'prefix'.
func (r *renderer) nested(prefix string, expr plandef.Expr) error {
	r.line("%s{", prefix)
	r.depth++
	if err := r.group(expr); err != nil {
		return err
	}
	r.depth--
	r.line("}")
	return nil
}

func (r *renderer) subSelect(head string, input plandef.Expr, modifiers string) error {
	r.line("{")
	r.depth++
	if err := r.nested(head+" WHERE ", input); err != nil {
		return err
	}
	if modifiers != "" {
		r.line("%s", modifiers)
	}
	r.depth--
	r.line("}")
	return nil
}

func varList(vars plandef.VarSet) string {
	if len(vars) == 0 {
		return "*"
	}
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = "?" + v.Name
	}
	return strings.Join(names, " ")
}

func term(t plandef.Term) string {
	switch t := t.(type) {
	case *plandef.Variable:
		return "?" + t.Name
	case *plandef.Constant:
		return t.Value.String()
	}
	return fmt.Sprintf("%v", t)
}

// value renders a filter or extension expression.
func value(v plandef.ValueExpr) (string, error) {
	switch v := v.(type) {
	case *plandef.Variable:
		return "?" + v.Name, nil
	case *plandef.Constant:
		return v.Value.String(), nil
	case *plandef.Bound:
		return "BOUND(?" + v.Var.Name + ")", nil
	case *plandef.Not:
		arg, err := value(v.Arg)
		return "(!" + arg + ")", err
	case *plandef.Compare:
		return binary(v.Left, v.Op.String(), v.Right)
	case *plandef.And:
		return binary(v.Left, "&&", v.Right)
	case *plandef.Or:
		return binary(v.Left, "||", v.Right)
	}
	return "", fmt.Errorf("sparqlhttp: can't render %T values", v)
}

func binary(left plandef.ValueExpr, op string, right plandef.ValueExpr) (string, error) {
	l, err := value(left)
	if err != nil {
		return "", err
	}
	r, err := value(right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", l, op, r), nil
}
