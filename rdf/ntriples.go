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
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseTerm parses the N-Triples term at the start of 's', ignoring leading
// whitespace. It returns the term and the remainder of the string.
func ParseTerm(s string) (Term, string, error) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return nil, s, fmt.Errorf("expected term, got end of input")
	}
	switch {
	case s[0] == '<':
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return nil, s, fmt.Errorf("unterminated IRI: %s", s)
		}
		return NewIRI(s[1:end]), s[end+1:], nil
	case strings.HasPrefix(s, "_:"):
		end := strings.IndexAny(s, " \t.")
		if end < 0 {
			end = len(s)
		}
		if end == 2 {
			return nil, s, fmt.Errorf("empty blank node label")
		}
		return &Blank{ID: s[2:end]}, s[end:], nil
	case s[0] == '"':
		return parseLiteral(s)
	}
	return nil, s, fmt.Errorf("unexpected term: %s", s)
}

func parseLiteral(s string) (Term, string, error) {
	var lex strings.Builder
	i := 1
	for ; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			break
		}
		if c != '\\' {
			lex.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			break
		}
		switch s[i] {
		case 'n':
			lex.WriteByte('\n')
		case 'r':
			lex.WriteByte('\r')
		case 't':
			lex.WriteByte('\t')
		case '"', '\\':
			lex.WriteByte(s[i])
		default:
			return nil, s, fmt.Errorf("unsupported escape sequence \\%c", s[i])
		}
	}
	if i >= len(s) {
		return nil, s, fmt.Errorf("unterminated literal: %s", s)
	}
	rest := s[i+1:]
	switch {
	case strings.HasPrefix(rest, "@"):
		end := strings.IndexAny(rest, " \t.")
		if end < 0 {
			end = len(rest)
		}
		return NewLangString(lex.String(), rest[1:end]), rest[end:], nil
	case strings.HasPrefix(rest, "^^"):
		dt, rest, err := ParseTerm(rest[2:])
		if err != nil {
			return nil, s, err
		}
		iri, ok := dt.(*IRI)
		if !ok {
			return nil, s, fmt.Errorf("literal datatype must be an IRI, got %v", dt)
		}
		return NewTyped(lex.String(), iri.Value), rest, nil
	}
	return NewString(lex.String()), rest, nil
}

// ReadNTriples reads N-Triples statements from 'r' and calls 'fn' for each one.
// It stops at the first error returned by 'fn' or found in the input.
func ReadNTriples(r io.Reader, fn func(subject, predicate, object Term) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		var terms [3]Term
		rest := line
		for i := range terms {
			var err error
			terms[i], rest, err = ParseTerm(rest)
			if err != nil {
				return fmt.Errorf("line %d: %v", lineNum, err)
			}
		}
		if strings.TrimSpace(rest) != "." {
			return fmt.Errorf("line %d: expected '.' after object, got %q", lineNum, rest)
		}
		if err := fn(terms[0], terms[1], terms[2]); err != nil {
			return err
		}
	}
	return scanner.Err()
}
