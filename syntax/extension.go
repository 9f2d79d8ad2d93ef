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

// Package syntax defines the extension points through which callers teach
// the preprocessor new surface syntax.
//
// An extension is either structural, scanning the token stream and emitting
// text [Replacement]s, or a custom [Operator], declaring an infix symbol
// with a precedence, an associativity, and a transform from operand text to
// replacement text. Extensions are run in the stable order they were
// registered, structural extensions before operators.
package syntax

import (
	"github.com/bufbuild/retrofit/token"
)

// Options carries per-file settings into structural extensions.
type Options struct {
	// The path of the file being rewritten.
	Path string
	// Whether the file is lexed with the markup-embedding dialect.
	Markup bool
}

// Extension is a named syntax extension. The two implementations are
// [Structural] and [Operator].
type Extension interface {
	// Name returns the name this extension registers under. Names must be
	// unique within a [Registry].
	Name() string
}

// Structural is an extension that scans the token stream for a construct
// the host grammar would reject and emits the replacements that make it
// valid.
//
// Rewrite is invoked once per file per pass, must be stateless, and must
// not modify src or the stream; the replacements it returns are applied as
// a separate step.
type Structural interface {
	Extension

	Rewrite(stream *token.Stream, src string, opts Options) []Replacement
}

// StructuralFunc adapts a function to the [Structural] interface.
type StructuralFunc struct {
	ExtName string
	Func    func(stream *token.Stream, src string, opts Options) []Replacement
}

// Name implements [Extension].
func (s StructuralFunc) Name() string { return s.ExtName }

// Rewrite implements [Structural].
func (s StructuralFunc) Rewrite(stream *token.Stream, src string, opts Options) []Replacement {
	return s.Func(stream, src, opts)
}

// Associativity determines how an operator groups with itself and with
// operators of equal precedence.
type Associativity int8

const (
	// Left-associative: a · b · c groups as (a · b) · c.
	Left Associativity = iota
	// Right-associative: a · b · c groups as a · (b · c).
	Right
)

// String implements [fmt.Stringer].
func (a Associativity) String() string {
	if a == Right {
		return "right"
	}
	return "left"
}

// Operator declares a custom infix operator.
//
// The scanner recognizes Symbol as a single token wherever it appears, even
// when the host grammar would lex those characters as several tokens; the
// operator rewriter then eliminates every value-position occurrence by
// splicing in the result of Transform.
type Operator struct {
	// The operator's characters, e.g. "<+>". Must be non-empty and must not
	// contain whitespace.
	Symbol string

	// The operator's rank. Higher binds tighter.
	Precedence int

	// How the operator groups with operators of equal precedence.
	Assoc Associativity

	// Transform produces the host-language text an occurrence is replaced
	// with, given the raw text of its two operands.
	Transform func(left, right string) string
}

// Name implements [Extension].
func (o Operator) Name() string { return o.Symbol }
