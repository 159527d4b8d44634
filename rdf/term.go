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

// Package rdf defines RDF terms and variable bindings, the values that flow
// between a query's operators.
package rdf

import (
	"math"
	"strconv"
	"strings"
)

// XML Schema datatype IRIs that get special treatment.
const (
	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
	XSDBoolean = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble  = "http://www.w3.org/2001/XMLSchema#double"
	XSDFloat   = "http://www.w3.org/2001/XMLSchema#float"
	XSDLong    = "http://www.w3.org/2001/XMLSchema#long"
	XSDInt     = "http://www.w3.org/2001/XMLSchema#int"
	RDFLangStr = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

var numericTypes = map[string]bool{
	XSDInteger: true,
	XSDDecimal: true,
	XSDDouble:  true,
	XSDFloat:   true,
	XSDLong:    true,
	XSDInt:     true,
	"http://www.w3.org/2001/XMLSchema#short":              true,
	"http://www.w3.org/2001/XMLSchema#byte":               true,
	"http://www.w3.org/2001/XMLSchema#nonNegativeInteger": true,
	"http://www.w3.org/2001/XMLSchema#positiveInteger":    true,
	"http://www.w3.org/2001/XMLSchema#negativeInteger":    true,
	"http://www.w3.org/2001/XMLSchema#nonPositiveInteger": true,
	"http://www.w3.org/2001/XMLSchema#unsignedLong":       true,
	"http://www.w3.org/2001/XMLSchema#unsignedInt":        true,
}

// A Term is an RDF term: an IRI, a literal, or a blank node.
type Term interface {
	// String returns the N-Triples representation of the term.
	String() string
	// Key writes the same representation as String; equal keys mean equal
	// terms.
	Key(*strings.Builder)
	aTerm()
}

// An IRI is an Internationalized Resource Identifier.
type IRI struct {
	Value string
}

// A Literal is an RDF literal. An empty Datatype means xsd:string, unless Lang
// is set.
type Literal struct {
	Lexical  string
	Datatype string
	Lang     string
}

// A Blank is a blank node, scoped to the source that produced it.
type Blank struct {
	ID string
}

func (*IRI) aTerm()     {}
func (*Literal) aTerm() {}
func (*Blank) aTerm()   {}

// NewIRI returns an IRI term.
func NewIRI(value string) *IRI {
	return &IRI{Value: value}
}

// NewString returns a plain string literal.
func NewString(s string) *Literal {
	return &Literal{Lexical: s}
}

// NewLangString returns a language-tagged string literal.
func NewLangString(s, lang string) *Literal {
	return &Literal{Lexical: s, Lang: strings.ToLower(lang)}
}

// NewTyped returns a literal with the given datatype IRI.
func NewTyped(lexical, datatype string) *Literal {
	if datatype == XSDString {
		datatype = ""
	}
	return &Literal{Lexical: lexical, Datatype: datatype}
}

// NewInt returns an xsd:integer literal.
func NewInt(i int64) *Literal {
	return &Literal{Lexical: strconv.FormatInt(i, 10), Datatype: XSDInteger}
}

func (t *IRI) String() string {
	return "<" + t.Value + ">"
}

// Key implements cmp.Key.
func (t *IRI) Key(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(t.Value)
	b.WriteByte('>')
}

func (t *Blank) String() string {
	return "_:" + t.ID
}

// Key implements cmp.Key.
func (t *Blank) Key(b *strings.Builder) {
	b.WriteString("_:")
	b.WriteString(t.ID)
}

func (t *Literal) String() string {
	var b strings.Builder
	t.Key(&b)
	return b.String()
}

// Key implements cmp.Key.
func (t *Literal) Key(b *strings.Builder) {
	b.WriteByte('"')
	writeEscaped(b, t.Lexical)
	b.WriteByte('"')
	switch {
	case t.Lang != "":
		b.WriteByte('@')
		b.WriteString(t.Lang)
	case t.Datatype != "":
		b.WriteString("^^<")
		b.WriteString(t.Datatype)
		b.WriteByte('>')
	}
}

func writeEscaped(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
}

// Numeric returns the value of a numeric literal. ok is false for other
// literals and for numeric literals whose lexical form doesn't parse.
func (t *Literal) Numeric() (value float64, ok bool) {
	if !numericTypes[t.Datatype] {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Lexical), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// IsString returns true for plain, xsd:string, and language-tagged literals.
func (t *Literal) IsString() bool {
	return t.Datatype == "" || t.Datatype == XSDString || t.Datatype == RDFLangStr
}

// Equal returns true if a and b are the same RDF term. Two nil terms are
// equal.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case *IRI:
		b, ok := b.(*IRI)
		return ok && a.Value == b.Value
	case *Literal:
		b, ok := b.(*Literal)
		return ok && *a == *b
	case *Blank:
		b, ok := b.(*Blank)
		return ok && a.ID == b.ID
	case nil:
		return b == nil
	}
	return false
}
