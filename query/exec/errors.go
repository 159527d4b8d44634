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
	"fmt"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/google/uuid"
)

// An UnsupportedExprError is returned when evaluating an expression the engine
// can't execute, such as a pattern or join that hasn't been decomposed. This
// is a configuration or programming error, not a transient one.
type UnsupportedExprError struct {
	Expr plandef.Expr
}

func (e *UnsupportedExprError) Error() string {
	if e.Expr == nil {
		return "can't evaluate missing expression"
	}
	return fmt.Sprintf("can't evaluate expression of type %T: %v", e.Expr, e.Expr)
}

// A SourceEvaluationError reports a failure returned by a source while
// evaluating a source query. Results received before the failure have already
// been delivered.
type SourceEvaluationError struct {
	Site      plandef.Site
	RequestID uuid.UUID
	Err       error
}

func (e *SourceEvaluationError) Error() string {
	return fmt.Sprintf("source %v failed (request %v): %v", e.Site, e.RequestID, e.Err)
}

// Unwrap returns the source's error.
func (e *SourceEvaluationError) Unwrap() error {
	return e.Err
}
