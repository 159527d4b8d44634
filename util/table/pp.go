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

// Package table formats rows of text into a table for human consumption.
package table

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ebay/federation/util/cmp"
	"golang.org/x/text/unicode/norm"
)

// Options control how a table is rendered.
type Options int

const (
	// HeaderRow separates the first row from the rest with a divider.
	HeaderRow Options = 1 << iota
	// SkipEmpty renders nothing when the table has no rows besides the header.
	SkipEmpty
	// RightJustify pads cells on the left rather than on the right.
	RightJustify
)

// PrettyPrint writes 'rows' as a table to 'dest'. Rows may have different
// lengths; missing cells are rendered empty. Cells may contain newlines.
func PrettyPrint(dest io.Writer, rows [][]string, opts Options) {
	if len(rows) == 0 {
		return
	}
	if opts&SkipEmpty != 0 && opts&HeaderRow != 0 && len(rows) == 1 {
		return
	}
	numCols := 0
	for _, row := range rows {
		numCols = cmp.MaxInt(numCols, len(row))
	}
	widths := make([]int, numCols)
	for _, row := range rows {
		for c, text := range row {
			for _, line := range strings.Split(text, "\n") {
				widths[c] = cmp.MaxInt(widths[c], charsWide(line))
			}
		}
	}
	w := bufio.NewWriterSize(dest, 256)
	defer w.Flush()
	for r, row := range rows {
		height := 1
		cells := make([][]string, numCols)
		for c := range cells {
			if c < len(row) {
				cells[c] = strings.Split(row[c], "\n")
			}
			height = cmp.MaxInt(height, len(cells[c]))
		}
		for l := 0; l < height; l++ {
			for c, lines := range cells {
				line := ""
				if l < len(lines) {
					line = lines[l]
				}
				w.WriteString(" ")
				w.WriteString(pad(line, widths[c], opts))
				w.WriteString(" |")
			}
			w.WriteString("\n")
		}
		if r == 0 && opts&HeaderRow != 0 {
			for _, width := range widths {
				w.WriteString(" ")
				w.WriteString(strings.Repeat("-", width))
				w.WriteString(" |")
			}
			w.WriteString("\n")
		}
	}
}

func pad(s string, width int, opts Options) string {
	n := width - charsWide(s)
	if n <= 0 {
		return s
	}
	if opts&RightJustify != 0 {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// charsWide estimates how wide a string will be on a typical terminal.
// Combining sequences are normalized so they count as a single character.
func charsWide(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}
