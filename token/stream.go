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

import (
	"fmt"
	"math"

	"github.com/bufbuild/retrofit/source"
)

// Stream is the token stream for one file.
//
// Tokens are appended contiguously with [Stream.Push]; every byte of the
// backing file belongs to exactly one token once lexing completes.
type Stream struct {
	// The file this stream is over.
	*source.File

	tokens []Token
}

// NewStream returns an empty stream over the given file.
func NewStream(file *source.File) *Stream {
	return &Stream{File: file}
}

// Push mints the next token, referring to the next length bytes of the
// input source after the previous token.
func (s *Stream) Push(length int, kind Kind) Token {
	if length < 0 || length > math.MaxInt32 {
		panic(fmt.Sprintf("retrofit/token: Push() called with invalid length: %d", length))
	}

	var prevEnd int
	if len(s.tokens) != 0 {
		prevEnd = s.tokens[len(s.tokens)-1].end
	}

	end := prevEnd + length
	if end > len(s.Text()) {
		panic(fmt.Sprintf("retrofit/token: Push() overflowed backing text: %d > %d", end, len(s.Text())))
	}

	tok := Token{
		file:  s.File,
		start: prevEnd,
		end:   end,
		kind:  kind,
	}
	s.tokens = append(s.tokens, tok)
	return tok
}

// Len returns the number of tokens in this stream.
func (s *Stream) Len() int {
	return len(s.tokens)
}

// At returns the i-th token, or [Zero] if i is out of bounds.
func (s *Stream) At(i int) Token {
	if i < 0 || i >= len(s.tokens) {
		return Zero
	}
	return s.tokens[i]
}

// Tokens returns the stream's backing token slice. Callers must not
// modify it.
func (s *Stream) Tokens() []Token {
	return s.tokens
}

// Cursor returns a cursor positioned at the start of the stream.
func (s *Stream) Cursor() *Cursor {
	return &Cursor{stream: s}
}
