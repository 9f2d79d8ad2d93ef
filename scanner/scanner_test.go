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

package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/scanner"
	"github.com/bufbuild/retrofit/source"
	"github.com/bufbuild/retrofit/token"
)

// lex tokenizes text and returns the non-skippable tokens.
func lex(t *testing.T, text string, opts scanner.Options) ([]token.Token, *report.Report) {
	t.Helper()

	errs := new(report.Report)
	stream := scanner.Lex(source.NewFile("test.src", text), opts, errs)

	var toks []token.Token
	for _, tok := range stream.Tokens() {
		if !tok.Kind().IsSkippable() {
			toks = append(toks, tok)
		}
	}
	return toks, errs
}

func texts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text()
	}
	return out
}

func TestLex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		opts scanner.Options
		want []string
	}{
		{
			name: "idents-and-keywords",
			text: "const x = foo;",
			want: []string{"const", "x", "=", "foo", ";"},
		},
		{
			name: "custom-operator-single-token",
			text: "a <+> b",
			opts: scanner.Options{Operators: []string{"<+>"}},
			want: []string{"a", "<+>", "b"},
		},
		{
			name: "custom-operator-maximal-munch",
			text: "a <+> b <+ c",
			opts: scanner.Options{Operators: []string{"<+", "<+>"}},
			want: []string{"a", "<+>", "b", "<+", "c"},
		},
		{
			name: "custom-operator-beats-builtin-punct",
			text: "a ** b",
			opts: scanner.Options{Operators: []string{"**"}},
			want: []string{"a", "**", "b"},
		},
		{
			name: "unregistered-symbol-splits",
			text: "a ** b",
			want: []string{"a", "*", "*", "b"},
		},
		{
			name: "multichar-puncts",
			text: "a === b ?? c?.d",
			want: []string{"a", "===", "b", "??", "c", "?.", "d"},
		},
		{
			name: "generics-split-normally",
			text: "Array<Array<T>>",
			want: []string{"Array", "<", "Array", "<", "T", ">", ">"},
		},
		{
			name: "comments-skipped",
			text: "a // trailing\n/* block */ b",
			want: []string{"a", "b"},
		},
		{
			name: "numbers",
			text: "1 + 2.5e+10",
			want: []string{"1", "+", "2.5e+10"},
		},
		{
			name: "strings",
			text: `f("one", 'two')`,
			want: []string{"f", "(", `"one"`, ",", "'two'", ")"},
		},
		{
			name: "markup-puncts",
			text: "<div></div>",
			opts: scanner.Options{Variant: scanner.Markup},
			want: []string{"<", "div", ">", "</", "div", ">"},
		},
		{
			name: "markup-self-closing-and-fragment",
			text: "<br/> <>",
			opts: scanner.Options{Variant: scanner.Markup},
			want: []string{"<", "br", "/>", "<>"},
		},
		{
			name: "standard-splits-markup-puncts",
			text: "</",
			want: []string{"<", "/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			toks, errs := lex(t, tt.text, tt.opts)
			assert.Equal(t, tt.want, texts(toks))
			assert.False(t, errs.HasErrors())
		})
	}
}

func TestLexKinds(t *testing.T) {
	t.Parallel()

	toks, errs := lex(t, `type x = f(1, "s") <+> [y];`, scanner.Options{Operators: []string{"<+>"}})
	require.False(t, errs.HasErrors())

	want := []token.Kind{
		token.Keyword,        // type
		token.Ident,          // x
		token.Punct,          // =
		token.Ident,          // f
		token.Bracket,        // (
		token.Number,         // 1
		token.Punct,          // ,
		token.String,         // "s"
		token.Bracket,        // )
		token.CustomOperator, // <+>
		token.Bracket,        // [
		token.Ident,          // y
		token.Bracket,        // ]
		token.Punct,          // ;
	}
	require.Len(t, toks, len(want))
	for i, tok := range toks {
		assert.Equal(t, want[i], tok.Kind(), "token %d: %v", i, tok)
	}
	assert.True(t, toks[9].IsCustomOperator())
}

func TestLexMultilineString(t *testing.T) {
	t.Parallel()

	toks, errs := lex(t, "`one\ntwo`", scanner.Options{})
	require.False(t, errs.HasErrors())
	require.Len(t, toks, 1)
	assert.Equal(t, token.String, toks[0].Kind())
	assert.Equal(t, "`one\ntwo`", toks[0].Text())
}

func TestLexErrors(t *testing.T) {
	t.Parallel()

	t.Run("unterminated-string", func(t *testing.T) {
		t.Parallel()

		_, errs := lex(t, `"never closed`, scanner.Options{})
		require.True(t, errs.HasErrors())
		assert.True(t, errs.Diagnostics()[0].HasTag(scanner.TagUnterminated))
	})

	t.Run("unterminated-block-comment", func(t *testing.T) {
		t.Parallel()

		_, errs := lex(t, "a /* never closed", scanner.Options{})
		require.True(t, errs.HasErrors())
		assert.True(t, errs.Diagnostics()[0].HasTag(scanner.TagUnterminated))
	})

	t.Run("unrecognized-character", func(t *testing.T) {
		t.Parallel()

		toks, errs := lex(t, "a  b", scanner.Options{})
		require.True(t, errs.HasErrors())
		assert.True(t, errs.Diagnostics()[0].HasTag(scanner.TagUnrecognized))
		require.Len(t, toks, 3)
		assert.Equal(t, token.Unrecognized, toks[1].Kind())
	})

	t.Run("unprintable-character", func(t *testing.T) {
		t.Parallel()

		toks, errs := lex(t, "a \x01 b", scanner.Options{})
		require.True(t, errs.HasErrors())
		assert.True(t, errs.Diagnostics()[0].HasTag(scanner.TagUnrecognized))
		require.Len(t, toks, 3)
		assert.Equal(t, token.Unrecognized, toks[1].Kind())
	})

	t.Run("printable-symbol-is-punct", func(t *testing.T) {
		t.Parallel()

		toks, errs := lex(t, "a @ b", scanner.Options{})
		require.False(t, errs.HasErrors())
		require.Len(t, toks, 3)
		assert.Equal(t, token.Punct, toks[1].Kind())
	})
}

func TestLexOffsetsAreContiguous(t *testing.T) {
	t.Parallel()

	text := "let x = a <+> f(b, c); // done"
	errs := new(report.Report)
	stream := scanner.Lex(source.NewFile("test.src", text), scanner.Options{
		Operators: []string{"<+>"},
	}, errs)

	var offset int
	for _, tok := range stream.Tokens() {
		assert.Equal(t, offset, tok.Start())
		offset = tok.End()
	}
	assert.Equal(t, len(text), offset)
}
