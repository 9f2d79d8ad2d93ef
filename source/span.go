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

package source

import "fmt"

// Spanner is any type with a [Span].
type Spanner interface {
	// Should return the zero [Span] to indicate that it does not contribute
	// span information.
	Span() Span
}

// Span is a location within a [File].
type Span struct {
	// The file this span refers to.
	*File

	// The start and end byte offsets for this span. The range is half-open:
	// Start is inclusive, End is exclusive.
	Start, End int
}

// IsZero returns whether or not this is the zero span.
func (s Span) IsZero() bool {
	return s.File == nil
}

// Span implements [Spanner].
func (s Span) Span() Span {
	return s
}

// Text returns the text corresponding to this span.
func (s Span) Text() string {
	return s.File.Text()[s.Start:s.End]
}

// StartLoc returns the start location for this span.
func (s Span) StartLoc() Location {
	return s.File.Location(s.Start)
}

// EndLoc returns the end location for this span.
func (s Span) EndLoc() Location {
	return s.File.Location(s.End)
}

// String implements [fmt.Stringer].
func (s Span) String() string {
	loc := s.StartLoc()
	return fmt.Sprintf("%s:%d:%d", s.Path(), loc.Line, loc.Column)
}

// Join joins a collection of spans, returning the smallest span that
// contains all of them.
//
// Zero spans are ignored; if every span is zero, this returns the zero span.
// Panics if two spans are from different files.
func Join(spans ...Spanner) Span {
	joined := Span{Start: -1}

	for _, spanner := range spans {
		if spanner == nil {
			continue
		}
		span := spanner.Span()
		if span.IsZero() {
			continue
		}

		if joined.File == nil {
			joined.File = span.File
		} else if joined.File != span.File {
			panic("retrofit/source: passed spans from different files to Join")
		}

		if joined.Start == -1 || joined.Start > span.Start {
			joined.Start = span.Start
		}
		if joined.End < span.End {
			joined.End = span.End
		}
	}

	if joined.File == nil {
		return Span{}
	}
	return joined
}
