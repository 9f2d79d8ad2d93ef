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

package syntax

import (
	"slices"
	"strings"

	"github.com/bufbuild/retrofit/sourcemap"
)

// Replacement is a half-open source-offset range and its substitute text.
//
// Start == End denotes a pure insertion. Replacements are pure data;
// applying them is a separate step, see [Apply].
type Replacement struct {
	Start, End int
	Text       string
}

// Apply applies a set of replacements to src, returning the rewritten text
// and the edits that were applied, in ascending offset order, for source
// map construction.
//
// Replacements are sorted by start offset first; a replacement that
// overlaps an earlier one is dropped rather than applied, so that a
// misbehaving extension cannot corrupt its neighbors' rewrites. Applying
// the empty set returns src unchanged.
func Apply(src string, replacements []Replacement) (string, []sourcemap.Edit) {
	if len(replacements) == 0 {
		return src, nil
	}

	sorted := slices.Clone(replacements)
	slices.SortStableFunc(sorted, func(a, b Replacement) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})

	var (
		out   strings.Builder
		edits []sourcemap.Edit
		prev  int
	)
	for _, r := range sorted {
		if r.Start < prev || r.End < r.Start || r.End > len(src) {
			// Overlapping or out-of-bounds; drop it.
			continue
		}

		out.WriteString(src[prev:r.Start])
		out.WriteString(r.Text)
		prev = r.End

		edits = append(edits, sourcemap.Edit{
			Start: r.Start,
			End:   r.End,
			Text:  r.Text,
			Exact: true,
		})
	}
	out.WriteString(src[prev:])

	return out.String(), edits
}
