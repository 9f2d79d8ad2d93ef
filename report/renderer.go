// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Render renders every diagnostic in the report as plain text, one block
// per diagnostic.
func Render(r *Report) string {
	var out strings.Builder
	for i, d := range r.Diagnostics() {
		if i > 0 {
			out.WriteByte('\n')
		}
		renderDiagnostic(&out, d)
	}
	return out.String()
}

func renderDiagnostic(out *strings.Builder, d *Diagnostic) {
	fmt.Fprintf(out, "%v: %s\n", d.level, d.message)

	primary := d.Primary()
	if primary.IsZero() {
		if d.inFile != "" {
			fmt.Fprintf(out, "  --> %s\n", d.inFile)
		}
	} else {
		loc := primary.StartLoc()
		fmt.Fprintf(out, "  --> %s:%d:%d\n", primary.Path(), loc.Line, loc.Column)
		for _, a := range d.annotations {
			renderAnnotation(out, a)
		}
	}

	for _, note := range d.notes {
		fmt.Fprintf(out, "  = note: %s\n", note)
	}
}

func renderAnnotation(out *strings.Builder, a annotation) {
	start := a.span.StartLoc()

	// Extract the full line the span starts on.
	text := a.span.File.Text()
	lineStart := strings.LastIndexByte(text[:a.span.Start], '\n') + 1
	lineEnd := strings.IndexByte(text[a.span.Start:], '\n')
	if lineEnd == -1 {
		lineEnd = len(text)
	} else {
		lineEnd += a.span.Start
	}
	line := text[lineStart:lineEnd]
	fmt.Fprintf(out, "%4d | %s\n", start.Line, line)

	// Compute the underline geometry in terminal columns. Widths are
	// grapheme-aware so multi-byte text underlines correctly.
	prefixBytes := a.span.Start - lineStart
	prefix := uniseg.StringWidth(line[:prefixBytes])

	snippetEnd := min(a.span.End, lineEnd)
	width := uniseg.StringWidth(text[a.span.Start:snippetEnd])
	if width == 0 {
		width = 1
	}

	marker := "^"
	if !a.primary {
		marker = "-"
	}
	fmt.Fprintf(out, "     | %s%s", strings.Repeat(" ", prefix), strings.Repeat(marker, width))
	if a.message != "" {
		out.WriteByte(' ')
		out.WriteString(a.message)
	}
	out.WriteByte('\n')
}
