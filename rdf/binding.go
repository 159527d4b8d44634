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

package rdf

import (
	"sort"
	"strings"
)

// A Binding maps variable names to terms. Bindings are immutable: methods that
// change a binding return a new one. The zero value is the empty binding.
type Binding struct {
	// names is sorted and has no duplicates. values[i] is bound to names[i].
	names  []string
	values []Term
}

// EmptyBinding binds no variables.
var EmptyBinding = Binding{}

// NewBinding returns a binding with the given name to value mappings. Nil
// values are skipped.
func NewBinding(vars map[string]Term) Binding {
	names := make([]string, 0, len(vars))
	for name, val := range vars {
		if val != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	values := make([]Term, len(names))
	for i, name := range names {
		values[i] = vars[name]
	}
	return Binding{names: names, values: values}
}

// Len returns the number of bound variables.
func (b Binding) Len() int {
	return len(b.names)
}

// Names returns the bound variable names in sorted order. The caller must not
// modify the returned slice.
func (b Binding) Names() []string {
	return b.names
}

// Get returns the value bound to 'name', if any.
func (b Binding) Get(name string) (Term, bool) {
	i := sort.SearchStrings(b.names, name)
	if i < len(b.names) && b.names[i] == name {
		return b.values[i], true
	}
	return nil, false
}

// With returns a copy of 'b' with 'name' bound to 'value', replacing any
// existing value.
func (b Binding) With(name string, value Term) Binding {
	i := sort.SearchStrings(b.names, name)
	if i < len(b.names) && b.names[i] == name {
		values := append([]Term(nil), b.values...)
		values[i] = value
		return Binding{names: b.names, values: values}
	}
	names := make([]string, 0, len(b.names)+1)
	names = append(names, b.names[:i]...)
	names = append(names, name)
	names = append(names, b.names[i:]...)
	values := make([]Term, 0, len(b.values)+1)
	values = append(values, b.values[:i]...)
	values = append(values, value)
	values = append(values, b.values[i:]...)
	return Binding{names: names, values: values}
}

// Compatible returns true if every variable bound in both 'b' and 'other' is
// bound to the same term.
func (b Binding) Compatible(other Binding) bool {
	i, j := 0, 0
	for i < len(b.names) && j < len(other.names) {
		switch strings.Compare(b.names[i], other.names[j]) {
		case -1:
			i++
		case 1:
			j++
		default:
			if !Equal(b.values[i], other.values[j]) {
				return false
			}
			i++
			j++
		}
	}
	return true
}

// Merge returns the union of two compatible bindings. If the bindings are not
// compatible, it returns false.
func (b Binding) Merge(other Binding) (Binding, bool) {
	if len(other.names) == 0 {
		return b, true
	}
	if len(b.names) == 0 {
		return other, true
	}
	names := make([]string, 0, len(b.names)+len(other.names))
	values := make([]Term, 0, len(b.names)+len(other.names))
	i, j := 0, 0
	for i < len(b.names) || j < len(other.names) {
		c := 0
		switch {
		case i == len(b.names):
			c = 1
		case j == len(other.names):
			c = -1
		default:
			c = strings.Compare(b.names[i], other.names[j])
		}
		switch c {
		case -1:
			names = append(names, b.names[i])
			values = append(values, b.values[i])
			i++
		case 1:
			names = append(names, other.names[j])
			values = append(values, other.values[j])
			j++
		default:
			if !Equal(b.values[i], other.values[j]) {
				return Binding{}, false
			}
			names = append(names, b.names[i])
			values = append(values, b.values[i])
			i++
			j++
		}
	}
	return Binding{names: names, values: values}, true
}

// Project returns a binding with only the variables of 'b' that are listed in
// 'names'.
func (b Binding) Project(names []string) Binding {
	var res Binding
	for i, name := range b.names {
		for _, keep := range names {
			if name == keep {
				res.names = append(res.names, name)
				res.values = append(res.values, b.values[i])
				break
			}
		}
	}
	return res
}

// Equal returns true if both bindings bind the same variables to the same
// terms.
func (b Binding) Equal(other Binding) bool {
	if len(b.names) != len(other.names) {
		return false
	}
	for i := range b.names {
		if b.names[i] != other.names[i] || !Equal(b.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

// Key implements cmp.Key. Bindings with equal keys are equal.
func (b Binding) Key(w *strings.Builder) {
	w.WriteByte('{')
	for i, name := range b.names {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteByte('?')
		w.WriteString(name)
		w.WriteByte('=')
		b.values[i].Key(w)
	}
	w.WriteByte('}')
}

// String returns a string like {?name="Alice" ?s=<http://example.org/alice>}.
func (b Binding) String() string {
	var w strings.Builder
	b.Key(&w)
	return w.String()
}

// A Dataset restricts which graphs a query ranges over. The zero value means
// the sources' default graphs.
type Dataset struct {
	DefaultGraphs []*IRI
	NamedGraphs   []*IRI
}
