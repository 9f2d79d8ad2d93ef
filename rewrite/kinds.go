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

import (
	"github.com/bufbuild/retrofit/syntax"
	"github.com/bufbuild/retrofit/token"
)

// ApplyName is the canonical type the kind rewriter targets: an application
// F<T> of a kind parameter F becomes ApplyName<F, T>.
const ApplyName = "Apply"

// KindAnnotations canonicalizes "kind" annotations on type and interface
// declarations.
//
// A type parameter immediately followed by the placeholder argument list
// <_> declares that the parameter itself stands for a type constructor:
//
//	type Wrapped<F<_>, A> = F<A>;
//
// The pass strips the placeholder from the parameter list, leaving a bare
// name, and rewrites every one-argument application of that parameter
// within the declaration's body into the two-argument Apply form:
//
//	type Wrapped<F, A> = Apply<F, A>;
//
// Ordinary type parameters and their uses are left untouched, including
// when they share a declaration with a kind parameter. Malformed
// annotations are skipped rather than corrupting the declaration.
type KindAnnotations struct{}

// Name implements [syntax.Extension].
func (KindAnnotations) Name() string { return "kind-annotations" }

// Rewrite implements [syntax.Structural].
func (KindAnnotations) Rewrite(stream *token.Stream, _ string, _ syntax.Options) []syntax.Replacement {
	var out []syntax.Replacement

	cursor := stream.Cursor()
	for !cursor.Done() {
		tok := cursor.Next()
		if tok.Kind() != token.Keyword || (tok.Text() != "type" && tok.Text() != "interface") {
			continue
		}

		// Declaration head: a name followed by a type parameter list.
		name := cursor.Peek()
		if name.Kind() != token.Ident {
			continue
		}
		if open := cursor.Lookahead(1); open.Text() != "<" {
			continue
		}
		cursor.Next() // The name.
		cursor.Next() // The <.

		// The placeholder strips are buffered and committed only once the
		// whole declaration is known to be well-formed; a truncated
		// declaration is skipped in its entirety.
		var strips []syntax.Replacement
		kindParams := scanParamList(cursor, &strips)
		if len(kindParams) == 0 {
			continue
		}

		start, end, ok := declarationBody(cursor, tok.Text())
		if !ok {
			continue
		}
		out = append(out, strips...)
		rewriteApplications(stream, start, end, kindParams, &out)
	}

	return out
}

// scanParamList consumes a type parameter list, beginning just inside its
// opening <, and returns the names of the kind-marked parameters. The
// replacements that strip each <_> placeholder are appended to out.
func scanParamList(cursor *token.Cursor, out *[]syntax.Replacement) map[string]bool {
	kindParams := make(map[string]bool)

	depth := 1
	prev := "<" // Text of the previous non-skippable token.
	for depth > 0 {
		tok := cursor.Next()
		if tok.IsZero() {
			// Unterminated parameter list; nothing to rewrite safely.
			return nil
		}

		switch tok.Text() {
		case "<":
			depth++
		case ">":
			depth--
		default:
			// A parameter name sits at depth 1, right after the opening <
			// or a separating comma. It is kind-marked if the placeholder
			// <_> hugs it.
			if depth == 1 && tok.Kind() == token.Ident && (prev == "<" || prev == ",") {
				if lt, gt, ok := placeholderAfter(cursor, tok); ok {
					kindParams[tok.Text()] = true
					*out = append(*out, syntax.Replacement{Start: lt.Start(), End: gt.End()})

					cursor.Next() // <
					cursor.Next() // _
					cursor.Next() // >
					prev = ">"
					continue
				}
			}
		}
		prev = tok.Text()
	}

	return kindParams
}

// placeholderAfter reports whether the exact placeholder <_> immediately
// follows the given parameter name, returning its delimiter tokens.
func placeholderAfter(cursor *token.Cursor, name token.Token) (lt, gt token.Token, ok bool) {
	lt = cursor.Peek()
	underscore := cursor.Lookahead(1)
	gt = cursor.Lookahead(2)

	ok = lt.Text() == "<" && lt.Start() == name.End() &&
		underscore.Kind() == token.Ident && underscore.Text() == "_" &&
		gt.Text() == ">"
	return lt, gt, ok
}

// declarationBody locates the token index range [start, end) of the
// declaration's body: the right-hand side of a type alias, or the braced
// body of an interface.
func declarationBody(cursor *token.Cursor, keyword string) (start, end int, ok bool) {
	if keyword == "type" {
		// Seek the = sign, then take everything until the terminating
		// statement boundary.
		for {
			tok := cursor.Next()
			switch {
			case tok.IsZero() || tok.Text() == ";":
				return 0, 0, false
			case tok.Text() == "=":
				start = cursor.Index()
				for {
					tok := cursor.Next()
					if tok.IsZero() {
						// Truncated; rewriting what might be half a
						// declaration is worse than leaving it alone.
						return 0, 0, false
					}
					if tok.Text() == ";" {
						return start, cursor.Index(), true
					}
				}
			}
		}
	}

	// Interface: seek the opening brace (skipping any extends clause), then
	// its matching close brace.
	for {
		tok := cursor.Next()
		switch {
		case tok.IsZero() || tok.Text() == ";":
			return 0, 0, false
		case tok.Text() == "{":
			start = cursor.Index()
			depth := 1
			for depth > 0 {
				tok := cursor.Next()
				if tok.IsZero() {
					return 0, 0, false
				}
				switch tok.Text() {
				case "{":
					depth++
				case "}":
					depth--
				}
			}
			return start, cursor.Index(), true
		}
	}
}

// rewriteApplications finds every one-argument application F<T> of a kind
// parameter F within the token range [start, end) and replaces its head
// F< with Apply<F, . The trailing > already in place closes the new form,
// so nested applications compose without overlapping replacements.
func rewriteApplications(stream *token.Stream, start, end int, kindParams map[string]bool, out *[]syntax.Replacement) {
	toks := stream.Tokens()
	for i := start; i < end; i++ {
		tok := toks[i]
		if tok.Kind() != token.Ident || !kindParams[tok.Text()] {
			continue
		}

		lt := nextNonSkippable(toks, i+1, end)
		if lt.Text() != "<" || lt.Start() != tok.End() {
			continue
		}
		if !hasOneArgument(toks, i, end) {
			continue
		}

		*out = append(*out, syntax.Replacement{
			Start: tok.Start(),
			End:   lt.End(),
			Text:  ApplyName + "<" + tok.Text() + ", ",
		})
	}
}

// hasOneArgument reports whether the application starting at the identifier
// at index i has a matching > with exactly one top-level argument.
func hasOneArgument(toks []token.Token, i, end int) bool {
	var (
		angle, bracket int
		args           = 1
		started        bool
	)
	for ; i < end; i++ {
		switch toks[i].Text() {
		case "<":
			angle++
			started = true
		case ">":
			angle--
			if started && angle == 0 {
				return args == 1
			}
		case "(", "[", "{":
			bracket++
		case ")", "]", "}":
			bracket--
		case ",":
			if angle == 1 && bracket == 0 {
				args++
			}
		case ";":
			return false // Malformed: the application never closed.
		}
	}
	return false
}

// nextNonSkippable returns the first non-skippable token at or after index
// i, bounded by end.
func nextNonSkippable(toks []token.Token, i, end int) token.Token {
	for ; i < end; i++ {
		if !toks[i].Kind().IsSkippable() {
			return toks[i]
		}
	}
	return token.Zero
}
