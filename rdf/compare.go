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
	"errors"
	"strings"
)

// kindOrder ranks term kinds: blank nodes sort first, then IRIs, then
// literals.
func kindOrder(t Term) int {
	switch t.(type) {
	case *Blank:
		return 0
	case *IRI:
		return 1
	case *Literal:
		return 2
	}
	return -1
}

// Compare is a total order over terms. It returns 0 only for equal terms.
// Numeric literals sort by value before all other literals; values that tie
// numerically (such as "1" and "1.0") are ordered by their lexical form and
// datatype. Other literals sort by lexical form, then datatype, then language.
func Compare(a, b Term) int {
	ka, kb := kindOrder(a), kindOrder(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch a := a.(type) {
	case *Blank:
		return strings.Compare(a.ID, b.(*Blank).ID)
	case *IRI:
		return strings.Compare(a.Value, b.(*IRI).Value)
	case *Literal:
		return compareLiterals(a, b.(*Literal))
	}
	return 0
}

func compareLiterals(a, b *Literal) int {
	av, aNum := a.Numeric()
	bv, bNum := b.Numeric()
	switch {
	case aNum && !bNum:
		return -1
	case !aNum && bNum:
		return 1
	case aNum && bNum:
		if c := compareFloats(av, bv); c != 0 {
			return c
		}
	}
	if c := strings.Compare(a.Lexical, b.Lexical); c != 0 {
		return c
	}
	if c := strings.Compare(a.Datatype, b.Datatype); c != 0 {
		return c
	}
	return strings.Compare(a.Lang, b.Lang)
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ErrIncomparable is returned by ValueCompare for terms that have no defined
// order between them.
var ErrIncomparable = errors.New("terms are not comparable")

// ValueCompare compares two terms the way filter expressions do. Numeric
// literals compare by value, strings with the same language compare
// lexically, booleans compare false < true, and any other pair of terms can
// only be compared for equality: ValueCompare returns 0 when they're the same
// term and ErrIncomparable otherwise.
func ValueCompare(a, b Term) (int, error) {
	la, aLit := a.(*Literal)
	lb, bLit := b.(*Literal)
	if aLit && bLit {
		av, aNum := la.Numeric()
		bv, bNum := lb.Numeric()
		switch {
		case aNum && bNum:
			return compareFloats(av, bv), nil
		case la.IsString() && lb.IsString() && la.Lang == lb.Lang:
			return strings.Compare(la.Lexical, lb.Lexical), nil
		case la.Datatype == XSDBoolean && lb.Datatype == XSDBoolean:
			return compareBools(la.Lexical, lb.Lexical)
		}
	}
	if Equal(a, b) {
		return 0, nil
	}
	return 0, ErrIncomparable
}

func compareBools(a, b string) (int, error) {
	parse := func(s string) (int, bool) {
		switch s {
		case "true", "1":
			return 1, true
		case "false", "0":
			return 0, true
		}
		return 0, false
	}
	av, aOK := parse(a)
	bv, bOK := parse(b)
	if !aOK || !bOK {
		return 0, ErrIncomparable
	}
	return av - bv, nil
}
