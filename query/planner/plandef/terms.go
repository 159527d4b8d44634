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

	"github.com/ebay/federation/rdf"
)

// A Term is a position of a triple pattern: a Variable or a Constant.
type Term interface {
	String() string
	Key(*strings.Builder)
	aTerm()
}

// A Variable is a named placeholder for a term.
type Variable struct {
	Name string
}

// A Constant is a fixed RDF term.
type Constant struct {
	Value rdf.Term
}

func (*Variable) aTerm()  {}
func (*Constant) aTerm()  {}
func (*Variable) aValue() {}
func (*Constant) aValue() {}

// NewVar returns a Variable with the given name.
func NewVar(name string) *Variable {
	return &Variable{Name: name}
}

// NewConst returns a Constant holding 'value'.
func NewConst(value rdf.Term) *Constant {
	return &Constant{Value: value}
}

// IRI returns a Constant holding an IRI.
func IRI(value string) *Constant {
	return &Constant{Value: rdf.NewIRI(value)}
}

// String returns the variable name prefixed with a question mark.
func (v *Variable) String() string {
	return "?" + v.Name
}

// Key implements cmp.Key.
func (v *Variable) Key(b *strings.Builder) {
	b.WriteByte('?')
	b.WriteString(v.Name)
}

func (c *Constant) String() string {
	return c.Value.String()
}

// Key implements cmp.Key.
func (c *Constant) Key(b *strings.Builder) {
	c.Value.Key(b)
}

// A Site identifies one data source of the federation. Sites are compared by
// equality only.
type Site string

// AnySite is passed to estimators to ask for a source-agnostic estimate.
const AnySite Site = ""

func (s Site) String() string {
	if s == AnySite {
		return "*"
	}
	return string(s)
}
