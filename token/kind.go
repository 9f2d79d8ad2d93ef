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

import "fmt"

// Kind identifies what kind of token a particular [Token] is.
type Kind byte

const (
	// Unrecognized garbage in the input file.
	Unrecognized Kind = iota
	// Non-comment contiguous whitespace.
	Space
	// A line or block comment.
	Comment
	// An identifier.
	Ident
	// An identifier the host grammar reserves.
	Keyword
	// A numeric literal.
	Number
	// A string literal.
	String
	// Non-bracket punctuation.
	Punct
	// An open or close bracket: one of ( ) [ ] { }.
	Bracket
	// An operator symbol registered by a custom-operator extension. The
	// host grammar does not know this token; it only exists so that the
	// rewriter can find and eliminate it.
	CustomOperator
)

// IsSkippable returns whether this kind is whitespace or a comment, i.e.
// tokens that structural lookahead should usually skip over.
func (k Kind) IsSkippable() bool {
	return k == Space || k == Comment
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case Unrecognized:
		return "Unrecognized"
	case Space:
		return "Space"
	case Comment:
		return "Comment"
	case Ident:
		return "Ident"
	case Keyword:
		return "Keyword"
	case Number:
		return "Number"
	case String:
		return "String"
	case Punct:
		return "Punct"
	case Bracket:
		return "Bracket"
	case CustomOperator:
		return "CustomOperator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
