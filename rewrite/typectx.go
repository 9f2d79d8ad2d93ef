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

package rewrite

import "github.com/bufbuild/retrofit/token"

// ctxState is a state of the type-context classifier.
type ctxState int8

const (
	// Ordinary value code.
	stateValue ctxState = iota
	// Between the `type` keyword and the `=` of an alias declaration.
	stateTypeHeader
	// The right-hand side of a `type X = ...` alias. The whole RHS is type
	// context until the terminating statement boundary, regardless of the
	// tokens that would normally exit an annotation.
	stateTypeAlias
	// Between the `interface` keyword and its opening brace.
	stateInterfaceHeader
	// Inside an `interface { ... }` body, until the matching close brace.
	stateInterfaceBody
)

// ClassifyTypeContexts runs a single forward scan over toks and reports,
// for each token, whether it sits inside a type context. Custom operators
// classified as in a type context are never rewritten.
//
// The classifier is an explicit state machine plus two counters: a generic
// angle-bracket depth, entered only when `<` immediately follows an
// identifier (no whitespace in between, to avoid misreading comparison
// operators), and a type-annotation depth entered after `:` and exited at
// `=`, `)`, `}`, `,`, or `{`.
func ClassifyTypeContexts(toks []token.Token) []bool {
	inType := make([]bool, len(toks))

	var (
		state           ctxState
		genericDepth    int
		annotationDepth int
		braceDepth      int // Interface-body brace nesting.
	)

	var prev token.Token // Previous non-skippable token.
	for i, tok := range toks {
		if tok.Kind().IsSkippable() {
			inType[i] = state != stateValue || genericDepth > 0 || annotationDepth > 0
			continue
		}

		text := tok.Text()

		// Generic depth is tracked in every state. A lone < opens a generic
		// argument list only when it hugs the preceding identifier.
		switch {
		case text == "<" && tok.Kind() != token.CustomOperator:
			follows := !prev.IsZero() && prev.End() == tok.Start() &&
				(prev.Kind() == token.Ident || prev.Kind() == token.Keyword)
			if follows || state != stateValue || annotationDepth > 0 {
				genericDepth++
			}
		case text == ">" && tok.Kind() != token.CustomOperator:
			if genericDepth > 0 {
				genericDepth--
			}
		case text == ";":
			// A statement boundary; an unbalanced generic depth cannot
			// survive it.
			genericDepth = 0
		}

		switch state {
		case stateValue:
			switch {
			case tok.Kind() == token.Keyword && text == "type":
				state = stateTypeHeader
			case tok.Kind() == token.Keyword && text == "interface":
				state = stateInterfaceHeader
			case text == ":":
				annotationDepth++
			case text == "=" || text == ")" || text == "}" || text == "," || text == "{":
				if annotationDepth > 0 {
					annotationDepth--
				}
			}

		case stateTypeHeader:
			switch text {
			case "=":
				state = stateTypeAlias
			case ";":
				state = stateValue
			}

		case stateTypeAlias:
			if text == ";" && genericDepth == 0 {
				state = stateValue
			}

		case stateInterfaceHeader:
			if text == "{" {
				state = stateInterfaceBody
				braceDepth = 1
			} else if text == ";" {
				state = stateValue
			}

		case stateInterfaceBody:
			switch text {
			case "{":
				braceDepth++
			case "}":
				braceDepth--
				if braceDepth == 0 {
					state = stateValue
				}
			}
		}

		inType[i] = state != stateValue || genericDepth > 0 || annotationDepth > 0
		prev = tok
	}

	return inType
}
