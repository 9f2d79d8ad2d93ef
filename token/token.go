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

	"github.com/bufbuild/retrofit/source"
)

// Zero is the zero [Token], which represents "no token". Cursors return it
// to signal end of stream.
var Zero Token

// Token is a single lexical element of a source file.
//
// Tokens are immutable and live only for the duration of one tokenization
// pass over their file.
type Token struct {
	file       *source.File
	start, end int
	kind       Kind
}

// IsZero returns whether this is the zero token.
func (t Token) IsZero() bool {
	return t.file == nil
}

// Kind returns this token's kind.
func (t Token) Kind() Kind {
	return t.kind
}

// Start returns the byte offset at which this token starts.
func (t Token) Start() int {
	return t.start
}

// End returns the byte offset immediately after this token.
func (t Token) End() int {
	return t.end
}

// Text returns this token's raw text.
func (t Token) Text() string {
	if t.IsZero() {
		return ""
	}
	return t.file.Text()[t.start:t.end]
}

// Span returns this token's span.
func (t Token) Span() source.Span {
	return t.file.Span(t.start, t.end)
}

// IsCustomOperator returns whether this token is an operator symbol
// registered by a custom-operator extension.
func (t Token) IsCustomOperator() bool {
	return t.kind == CustomOperator
}

// IsBoundary returns whether this token terminates the textual extent of an
// operand: statement terminators and other punctuation at which an
// expression cannot continue. Closing brackets are handled separately by
// bracket-depth tracking in the callers.
func (t Token) IsBoundary() bool {
	switch t.kind {
	case Punct:
		switch t.Text() {
		case ";", ",", "=", "=>", ":":
			return true
		}
	case Keyword:
		switch t.Text() {
		case "return", "const", "let", "var", "type", "interface",
			"if", "else", "for", "while", "import", "export":
			return true
		}
	}
	return false
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	if t.IsZero() {
		return "Token(<zero>)"
	}
	return fmt.Sprintf("Token(%v, %q, %d:%d)", t.kind, t.Text(), t.start, t.end)
}

// keywords is the reserved-word table of the host grammar.
var keywords = map[string]bool{
	"type": true, "interface": true, "class": true, "extends": true,
	"implements": true, "const": true, "let": true, "var": true,
	"function": true, "return": true, "new": true, "if": true,
	"else": true, "for": true, "while": true, "import": true,
	"export": true, "as": true, "in": true, "of": true,
}

// IsKeyword reports whether text is a reserved word of the host grammar.
func IsKeyword(text string) bool {
	return keywords[text]
}
