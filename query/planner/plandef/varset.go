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
	"sort"
	"strings"
)

// A VarSet is a set of variables, represented as a slice of uniquely named
// variables ordered by name.
type VarSet []*Variable

// NewVarSet returns a VarSet holding the given variables. Duplicate names are
// collapsed.
func NewVarSet(vars ...*Variable) VarSet {
	set := make(VarSet, 0, len(vars))
	for _, v := range vars {
		if !set.Contains(v) {
			i := set.search(v.Name)
			set = append(set, nil)
			copy(set[i+1:], set[i:])
			set[i] = v
		}
	}
	return set
}

func (set VarSet) search(name string) int {
	return sort.Search(len(set), func(i int) bool {
		return set[i].Name >= name
	})
}

// Contains returns true if a variable named like v is in the set.
func (set VarSet) Contains(v *Variable) bool {
	i := set.search(v.Name)
	return i < len(set) && set[i].Name == v.Name
}

// ContainsSet returns true if every variable in 'other' is in 'set'.
func (set VarSet) ContainsSet(other VarSet) bool {
	for _, v := range other {
		if !set.Contains(v) {
			return false
		}
	}
	return true
}

// Intersect returns the variables present in both sets.
func (set VarSet) Intersect(other VarSet) VarSet {
	return merge(set, other, false, true, false)
}

// Union returns the variables present in either set.
func (set VarSet) Union(other VarSet) VarSet {
	return merge(set, other, true, true, true)
}

// Sub returns the variables present in 'set' but not in 'other'.
func (set VarSet) Sub(other VarSet) VarSet {
	return merge(set, other, true, false, false)
}

// merge walks two sorted sets together, keeping the variables found only on
// the left, in both, or only on the right, as requested.
func merge(left, right VarSet, onlyLeft, both, onlyRight bool) VarSet {
	var res VarSet
	for len(left) > 0 || len(right) > 0 {
		switch {
		case len(right) == 0 || (len(left) > 0 && left[0].Name < right[0].Name):
			if onlyLeft {
				res = append(res, left[0])
			}
			left = left[1:]
		case len(left) == 0 || right[0].Name < left[0].Name:
			if onlyRight {
				res = append(res, right[0])
			}
			right = right[1:]
		default:
			if both {
				res = append(res, left[0])
			}
			left, right = left[1:], right[1:]
		}
	}
	return res
}

// Equal returns true if both sets hold the same variable names.
func (set VarSet) Equal(other VarSet) bool {
	if len(set) != len(other) {
		return false
	}
	for i := range set {
		if set[i].Name != other[i].Name {
			return false
		}
	}
	return true
}

// Names returns the variable names in order.
func (set VarSet) Names() []string {
	names := make([]string, len(set))
	for i, v := range set {
		names[i] = v.Name
	}
	return names
}

// String returns a space-separated list like "?a ?b".
func (set VarSet) String() string {
	var b strings.Builder
	set.Key(&b)
	return b.String()
}

// Key implements cmp.Key.
func (set VarSet) Key(b *strings.Builder) {
	for i, v := range set {
		if i > 0 {
			b.WriteByte(' ')
		}
		v.Key(b)
	}
}
