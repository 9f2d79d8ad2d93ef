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

package token

// Cursor is an iterator-like construct for looping over a token stream.
// Unlike a plain range loop, it supports peeking and rewinding.
//
// The "skippable" variants operate on the raw stream; the plain variants
// skip whitespace and comment tokens, which is what structural lookahead
// almost always wants.
type Cursor struct {
	stream *Stream
	idx    int
}

// CursorMark is the return value of [Cursor.Mark], which marks a position
// on a Cursor for rewinding to.
type CursorMark struct {
	// This contains exactly the values needed to rewind the cursor.
	owner *Cursor
	idx   int
}

// Done returns whether or not there are still tokens left to yield.
func (c *Cursor) Done() bool {
	return c.Peek().IsZero()
}

// Index returns the stream index the cursor is at.
func (c *Cursor) Index() int {
	return c.idx
}

// Mark makes a mark on this cursor to indicate a place that can be rewound
// to.
func (c *Cursor) Mark() CursorMark {
	return CursorMark{owner: c, idx: c.idx}
}

// Rewind moves this cursor back to the position described by mark.
//
// Panics if mark was not created using this cursor's Mark method.
func (c *Cursor) Rewind(mark CursorMark) {
	if c != mark.owner {
		panic("retrofit/token: rewound cursor using the wrong cursor's mark")
	}
	c.idx = mark.idx
}

// PeekSkippable returns the next token in the stream without advancing,
// including whitespace and comments.
func (c *Cursor) PeekSkippable() Token {
	return c.stream.At(c.idx)
}

// Peek returns the next non-skippable token without advancing.
func (c *Cursor) Peek() Token {
	for i := c.idx; ; i++ {
		tok := c.stream.At(i)
		if tok.IsZero() || !tok.Kind().IsSkippable() {
			return tok
		}
	}
}

// NextSkippable advances past and returns the next token, including
// whitespace and comments.
func (c *Cursor) NextSkippable() Token {
	tok := c.stream.At(c.idx)
	if !tok.IsZero() {
		c.idx++
	}
	return tok
}

// Next advances past and returns the next non-skippable token.
func (c *Cursor) Next() Token {
	for {
		tok := c.NextSkippable()
		if tok.IsZero() || !tok.Kind().IsSkippable() {
			return tok
		}
	}
}

// Lookahead returns the n-th non-skippable token after the cursor without
// advancing; Lookahead(0) is equivalent to Peek.
func (c *Cursor) Lookahead(n int) Token {
	i := c.idx
	for {
		tok := c.stream.At(i)
		if tok.IsZero() {
			return tok
		}
		i++
		if tok.Kind().IsSkippable() {
			continue
		}
		if n == 0 {
			return tok
		}
		n--
	}
}
