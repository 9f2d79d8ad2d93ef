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

// Package sourcemap maps byte offsets in rewritten text back to byte
// offsets in the text it was rewritten from.
//
// A [Map] is built from the [Edit]s one rewriting pass applied. Edits made
// by structural extensions are exact: every offset inside the replaced
// region maps content-inclusively into the original region. Edits made by
// the iterative operator rewriter are region-level only; [Mapping.Exact]
// distinguishes the two.
package sourcemap

import (
	"fmt"
	"slices"

	"github.com/tidwall/btree"

	"github.com/bufbuild/retrofit/internal/ext/cmpx"
)

// Edit records one text replacement a rewriting pass applied: the half-open
// range [Start, End) of the pass's *input* text was replaced with Text.
//
// Start == End denotes a pure insertion.
type Edit struct {
	Start, End int
	Text       string

	// Whether offsets within the replaced region can be mapped exactly.
	// Structural replacements are exact; iterative operator splices are not.
	Exact bool
}

// Mapping is the result of resolving an output offset.
type Mapping struct {
	// The corresponding offset in the original text.
	Offset int
	// Whether the offset is exact, or merely lands within the original
	// region that produced the output region.
	Exact bool
}

// Map maps offsets in the output of a rewriting pass to offsets in its
// input.
//
// A nil *Map behaves as an identity mapping.
type Map struct {
	// Segments keyed by their exclusive output end offset, in the manner of
	// an interval map: Seek(offset+1) finds the candidate segment whose end
	// is past offset.
	tree btree.Map[int, segment]

	// If non-nil, resolved offsets are fed through prev, composing this
	// pass's mapping onto an earlier pass's.
	prev *Map
}

type segment struct {
	outStart  int
	origStart int
	origEnd   int
	exact     bool
}

// Build constructs a Map for a pass over an input of inputLen bytes that
// applied the given edits.
//
// Edits must be sorted by Start and must not overlap; Build panics
// otherwise, since the appliers in package syntax and package rewrite
// guarantee both.
func Build(inputLen int, edits []Edit) *Map {
	if !slices.IsSortedFunc(edits, func(a, b Edit) int { return a.Start - b.Start }) {
		panic("retrofit/sourcemap: Build() called with unsorted edits")
	}

	m := new(Map)
	var in, out int
	for _, edit := range edits {
		if edit.Start < in || edit.End < edit.Start || edit.End > inputLen {
			panic(fmt.Sprintf("retrofit/sourcemap: edit [%d, %d) out of bounds", edit.Start, edit.End))
		}

		// Identity segment for the untouched text before this edit.
		if edit.Start > in {
			n := edit.Start - in
			m.tree.Set(out+n, segment{
				outStart:  out,
				origStart: in,
				origEnd:   edit.Start,
				exact:     true,
			})
			in, out = edit.Start, out+n
		}

		if len(edit.Text) > 0 {
			m.tree.Set(out+len(edit.Text), segment{
				outStart:  out,
				origStart: edit.Start,
				origEnd:   edit.End,
				exact:     edit.Exact,
			})
		}
		in, out = edit.End, out+len(edit.Text)
	}

	// Trailing identity segment.
	if in < inputLen {
		m.tree.Set(out+(inputLen-in), segment{
			outStart:  out,
			origStart: in,
			origEnd:   inputLen,
			exact:     true,
		})
	}

	return m
}

// Compose returns a Map that first resolves offsets through m and then
// through prev.
//
// m maps this pass's output to its input; prev maps that input back to some
// earlier text. Either may be nil, in which case the other is returned.
func (m *Map) Compose(prev *Map) *Map {
	if m == nil {
		return prev
	}
	if prev == nil {
		return m
	}

	composed := *m
	if composed.prev != nil {
		composed.prev = composed.prev.Compose(prev)
	} else {
		composed.prev = prev
	}
	return &composed
}

// ToOriginal resolves an output offset to the original offset that produced
// it.
//
// Offsets past the end of the output resolve to the end of the original
// text. For offsets inside inexact regions, the result is clamped into the
// original region.
func (m *Map) ToOriginal(offset int) Mapping {
	if m == nil {
		return Mapping{Offset: offset, Exact: true}
	}

	mapped := m.resolve(offset)
	if m.prev == nil {
		return mapped
	}

	final := m.prev.ToOriginal(mapped.Offset)
	final.Exact = final.Exact && mapped.Exact
	return final
}

func (m *Map) resolve(offset int) Mapping {
	iter := m.tree.Iter()
	if !iter.Seek(offset + 1) {
		// Past the end of the output; resolve to the end of the input.
		if iter.Last() {
			return Mapping{Offset: iter.Value().origEnd, Exact: true}
		}
		return Mapping{Offset: offset, Exact: true}
	}

	// Content-inclusive: offsets advance in lockstep with the original
	// region, clamped into it. For inexact segments this is merely a
	// best-effort landing inside the producing region.
	seg := iter.Value()
	return Mapping{
		Offset: cmpx.Clamp(seg.origStart+(offset-seg.outStart), seg.origStart, seg.origEnd),
		Exact:  seg.exact,
	}
}
