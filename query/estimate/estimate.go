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

// Package estimate predicts how many results query expressions produce and
// how expensive they are to evaluate. The planner compares candidate plans
// using these predictions.
//
// Estimators are pure functions of the expressions they're given; the only
// state they consult is source statistics.
package estimate

import (
	"fmt"
	"math"

	"github.com/ebay/federation/query/planner/plandef"
	log "github.com/sirupsen/logrus"
)

// A SelectivityEstimator predicts which fraction of results survive joins and
// conditions. Every method takes a Site; plandef.AnySite asks for an estimate
// that doesn't depend on where the expression is evaluated. Join and
// condition selectivities must be in [0, 1].
type SelectivityEstimator interface {
	// JoinSelectivity returns the fraction of the cross product of the join's
	// inputs that the join produces.
	JoinSelectivity(join *plandef.Join, site plandef.Site) float64
	// VarSelectivity returns the estimated number of distinct values that
	// variable 'v' takes among the results of 'expr'. It's never negative.
	VarSelectivity(v *plandef.Variable, expr plandef.Expr, site plandef.Site) float64
	// ConditionSelectivity returns the fraction of the results of 'expr'
	// that satisfy 'cond'.
	ConditionSelectivity(cond plandef.ValueExpr, expr plandef.Expr, site plandef.Site) float64
}

// A CardinalityEstimator predicts the number of results of an expression when
// evaluated at the given site. Physical inputs of the expression are expected
// to carry their own estimates already.
type CardinalityEstimator interface {
	Cardinality(expr plandef.Expr, site plandef.Site) float64
}

// A CostEstimator predicts the cost of evaluating an expression, including the
// cost of its inputs. The expression's own Est.Cardinality and its physical
// inputs' estimates are expected to be filled in.
type CostEstimator interface {
	Cost(expr plandef.Expr) float64
}

// Stats describes the data held by sources. ok is false when the statistic is
// unknown.
type Stats interface {
	// PatternCount returns the number of triples at 'site' that match the
	// constants of 'pattern'.
	PatternCount(site plandef.Site, pattern *plandef.Pattern) (count float64, ok bool)
	// DistinctValues returns the number of distinct values that variable 'v'
	// takes among the triples at 'site' matching 'pattern'.
	DistinctValues(site plandef.Site, pattern *plandef.Pattern, v *plandef.Variable) (count float64, ok bool)
}

// An EstimationError reports an estimate outside its valid range. This
// indicates a misconfigured or buggy estimator.
type EstimationError struct {
	// What was estimated, such as "cardinality" or "join selectivity".
	What  string
	Value float64
	// The expression being estimated, on a single line.
	Expr string
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("invalid %s estimate %v for %s", e.What, e.Value, e.Expr)
}

// CheckAmount returns an EstimationError if 'value' isn't a finite,
// non-negative number.
func CheckAmount(what string, value float64, expr plandef.Expr) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return &EstimationError{What: what, Value: value, Expr: describe(expr)}
	}
	return nil
}

// CheckFactor returns an EstimationError if 'value' isn't in [0, 1].
func CheckFactor(what string, value float64, expr plandef.Expr) error {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return &EstimationError{What: what, Value: value, Expr: describe(expr)}
	}
	return nil
}

func describe(expr plandef.Expr) string {
	if expr == nil {
		return "<nil>"
	}
	return expr.String()
}

// factor passes through valid selectivities. An invalid one is logged and
// replaced by NaN, which poisons the estimates derived from it so that the
// planner's checks reject them.
func factor(what string, value float64, expr plandef.Expr) float64 {
	if err := CheckFactor(what, value, expr); err != nil {
		log.WithError(err).Error("Selectivity estimator returned an invalid value")
		return math.NaN()
	}
	return value
}
