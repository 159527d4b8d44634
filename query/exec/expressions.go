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
	"errors"
	"fmt"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	log "github.com/sirupsen/logrus"
)

// errUnbound is the evaluation error for a variable with no value.
var errUnbound = errors.New("unbound variable")

var (
	trueLiteral  = rdf.NewTyped("true", rdf.XSDBoolean)
	falseLiteral = rdf.NewTyped("false", rdf.XSDBoolean)
)

// Holds returns true if 'cond' evaluates to true for 'b'. A condition that
// can't be evaluated, for example because it compares incomparable values,
// doesn't hold. Sources that evaluate conditions locally use it too.
func Holds(cond plandef.ValueExpr, b rdf.Binding) bool {
	res, err := evalBool(cond, b)
	return err == nil && res
}

// evalBool evaluates a condition. Errors propagate through And and Or the way
// they do in SPARQL: false && error is false, and true || error is true.
func evalBool(v plandef.ValueExpr, b rdf.Binding) (bool, error) {
	switch v := v.(type) {
	case *plandef.Compare:
		return evalCompare(v, b)
	case *plandef.And:
		l, lErr := evalBool(v.Left, b)
		if lErr == nil && !l {
			return false, nil
		}
		r, rErr := evalBool(v.Right, b)
		switch {
		case rErr == nil && !r:
			return false, nil
		case lErr != nil:
			return false, lErr
		}
		return r, rErr
	case *plandef.Or:
		l, lErr := evalBool(v.Left, b)
		if lErr == nil && l {
			return true, nil
		}
		r, rErr := evalBool(v.Right, b)
		switch {
		case rErr == nil && r:
			return true, nil
		case lErr != nil:
			return false, lErr
		}
		return r, rErr
	case *plandef.Not:
		res, err := evalBool(v.Arg, b)
		return !res && err == nil, err
	case *plandef.Bound:
		_, ok := b.Get(v.Var.Name)
		return ok, nil
	case *plandef.Variable, *plandef.Constant:
		term, err := EvalTerm(v, b)
		if err != nil {
			return false, err
		}
		return effectiveBool(term)
	}
	log.Panicf("exec: unexpected value expression type %T", v)
	return false, nil
}

func evalCompare(c *plandef.Compare, b rdf.Binding) (bool, error) {
	l, err := EvalTerm(c.Left, b)
	if err != nil {
		return false, err
	}
	r, err := EvalTerm(c.Right, b)
	if err != nil {
		return false, err
	}
	cmp, err := rdf.ValueCompare(l, r)
	if err != nil {
		// Terms that can't be ordered can still be told apart.
		switch c.Op {
		case plandef.OpEqual:
			return rdf.Equal(l, r), nil
		case plandef.OpNotEqual:
			return !rdf.Equal(l, r), nil
		}
		return false, err
	}
	switch c.Op {
	case plandef.OpEqual:
		return cmp == 0, nil
	case plandef.OpNotEqual:
		return cmp != 0, nil
	case plandef.OpLess:
		return cmp < 0, nil
	case plandef.OpLessOrEqual:
		return cmp <= 0, nil
	case plandef.OpGreater:
		return cmp > 0, nil
	case plandef.OpGreaterOrEqual:
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("unknown comparison operator %v", c.Op)
}

// EvalTerm evaluates an expression to a term. Conditions evaluate to boolean
// literals.
func EvalTerm(v plandef.ValueExpr, b rdf.Binding) (rdf.Term, error) {
	switch v := v.(type) {
	case *plandef.Variable:
		if val, ok := b.Get(v.Name); ok {
			return val, nil
		}
		return nil, errUnbound
	case *plandef.Constant:
		return v.Value, nil
	}
	res, err := evalBool(v, b)
	if err != nil {
		return nil, err
	}
	if res {
		return trueLiteral, nil
	}
	return falseLiteral, nil
}

// effectiveBool converts a term to a boolean the way SPARQL filters do:
// booleans are themselves, numbers are true unless zero, and strings are true
// unless empty. Other terms are an error.
func effectiveBool(t rdf.Term) (bool, error) {
	lit, ok := t.(*rdf.Literal)
	if !ok {
		return false, fmt.Errorf("no boolean value for %v", t)
	}
	if lit.Datatype == rdf.XSDBoolean {
		switch lit.Lexical {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return false, fmt.Errorf("invalid boolean %v", t)
	}
	if n, ok := lit.Numeric(); ok {
		return n != 0, nil
	}
	if lit.IsString() {
		return lit.Lexical != "", nil
	}
	return false, fmt.Errorf("no boolean value for %v", t)
}
