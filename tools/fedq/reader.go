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

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
)

var compareOps = map[string]plandef.CompareOp{
	"=":  plandef.OpEqual,
	"!=": plandef.OpNotEqual,
	"<":  plandef.OpLess,
	"<=": plandef.OpLessOrEqual,
	">":  plandef.OpGreater,
	">=": plandef.OpGreaterOrEqual,
}

// readQuery reads a query made of triple patterns, one per line, and lines of
// the form "FILTER ?x op value". Blank lines and lines starting with '#' are
// ignored. The patterns are joined and the filters apply to the join.
func readQuery(r io.Reader) (plandef.Expr, error) {
	var root plandef.Expr
	var conds []plandef.ValueExpr
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if hasKeyword(line, "FILTER") {
			cond, err := parseFilter(line[len("FILTER"):])
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			conds = append(conds, cond)
			continue
		}
		pattern, err := parsePattern(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", lineNum, err)
		}
		if root == nil {
			root = pattern
		} else {
			root = &plandef.Join{Left: root, Right: pattern}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("query has no patterns")
	}
	if len(conds) > 0 {
		root = &plandef.Filter{Condition: plandef.AndAll(conds), Input: root}
	}
	return root, nil
}

func hasKeyword(line, keyword string) bool {
	if len(line) <= len(keyword) || !strings.EqualFold(line[:len(keyword)], keyword) {
		return false
	}
	c := line[len(keyword)]
	return c == ' ' || c == '\t'
}

func parsePattern(line string) (*plandef.Pattern, error) {
	var terms [3]plandef.Term
	rest := line
	for i := range terms {
		var err error
		terms[i], rest, err = parseTerm(rest)
		if err != nil {
			return nil, err
		}
	}
	rest = strings.TrimSpace(rest)
	if rest != "" && rest != "." {
		return nil, fmt.Errorf("unexpected text after pattern: %s", rest)
	}
	return plandef.NewPattern(terms[0], terms[1], terms[2]), nil
}

func parseFilter(s string) (plandef.ValueExpr, error) {
	left, rest, err := parseTerm(s)
	if err != nil {
		return nil, err
	}
	opStr, rest := nextToken(rest)
	op, ok := compareOps[opStr]
	if !ok {
		return nil, fmt.Errorf("unknown comparison operator %q", opStr)
	}
	right, rest, err := parseTerm(rest)
	if err != nil {
		return nil, err
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		return nil, fmt.Errorf("unexpected text after filter: %s", rest)
	}
	return &plandef.Compare{
		Op:    op,
		Left:  left.(plandef.ValueExpr),
		Right: right.(plandef.ValueExpr),
	}, nil
}

// parseTerm parses a variable, an N-Triples term, or a bare number from the
// start of 's'. It returns the term and the remainder of the string.
func parseTerm(s string) (plandef.Term, string, error) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return nil, s, fmt.Errorf("expected term, got end of line")
	}
	switch c := s[0]; {
	case c == '?':
		name, rest := nextToken(s[1:])
		if name == "" {
			return nil, s, fmt.Errorf("empty variable name")
		}
		return plandef.NewVar(name), rest, nil
	case c == '<' || c == '"' || c == '_':
		term, rest, err := rdf.ParseTerm(s)
		if err != nil {
			return nil, s, err
		}
		return plandef.NewConst(term), rest, nil
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		lex, rest := nextToken(s)
		if i, err := strconv.ParseInt(lex, 10, 64); err == nil {
			return plandef.NewConst(rdf.NewInt(i)), rest, nil
		}
		if _, err := strconv.ParseFloat(lex, 64); err == nil {
			return plandef.NewConst(rdf.NewTyped(lex, rdf.XSDDecimal)), rest, nil
		}
		return nil, s, fmt.Errorf("invalid number: %s", lex)
	}
	return nil, s, fmt.Errorf("unexpected term: %s", s)
}

func nextToken(s string) (token, rest string) {
	s = strings.TrimLeft(s, " \t")
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}
