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

package retrofit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/retrofit"
	"github.com/bufbuild/retrofit/internal/diff"
	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/source"
	"github.com/bufbuild/retrofit/syntax"
	"github.com/bufbuild/retrofit/token"
)

// arithmetic returns a registry with |> as a low-precedence pipe and ** as
// a tighter right-associative power operator.
func arithmetic(t *testing.T) *syntax.Registry {
	t.Helper()

	registry := new(syntax.Registry)
	require.NoError(t, registry.Register(syntax.Operator{
		Symbol:     "|>",
		Precedence: 10,
		Assoc:      syntax.Left,
		Transform:  func(left, right string) string { return right + "(" + left + ")" },
	}))
	require.NoError(t, registry.Register(syntax.Operator{
		Symbol:     "**",
		Precedence: 20,
		Assoc:      syntax.Right,
		Transform:  func(left, right string) string { return "pow(" + left + ", " + right + ")" },
	}))
	return registry
}

func preprocess(t *testing.T, pipeline *retrofit.Pipeline, text string) (retrofit.PreprocessResult, *report.Report) {
	t.Helper()

	errs := new(report.Report)
	return pipeline.Run(source.NewFile("test.src", text), errs), errs
}

func TestPipeline(t *testing.T) {
	t.Parallel()

	pipeline := &retrofit.Pipeline{Registry: arithmetic(t)}

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "operators",
			text: "const x = data |> clean |> render;",
			want: "const x = render(clean(data));",
		},
		{
			name: "precedence",
			text: "const x = a ** b |> f;",
			want: "const x = f(pow(a, b));",
		},
		{
			name: "kind-annotations",
			text: "type Wrapped<F<_>, A> = F<A>;",
			want: "type Wrapped<F, A> = Apply<F, A>;",
		},
		{
			name: "both",
			text: "type Id<F<_>> = F<x>; const y = a |> f;",
			want: "type Id<F> = Apply<F, x>; const y = f(a);",
		},
		{
			name: "untouched",
			text: "const x = plain();",
			want: "const x = plain();",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, errs := preprocess(t, pipeline, tt.text)
			assert.Empty(t, diff.Unified(tt.want, result.Code))
			assert.False(t, errs.HasErrors())

			if tt.want == tt.text {
				assert.False(t, result.Changed)
				assert.Nil(t, result.Map)
			} else {
				assert.True(t, result.Changed)
				assert.NotNil(t, result.Map)
			}
		})
	}
}

func TestPipelineIdempotent(t *testing.T) {
	t.Parallel()

	pipeline := &retrofit.Pipeline{Registry: arithmetic(t)}

	first, errs := preprocess(t, pipeline, "type Id<F<_>> = F<x>; const y = a ** b ** c;")
	require.True(t, first.Changed)
	require.False(t, errs.HasErrors())

	second, errs := preprocess(t, pipeline, first.Code)
	assert.False(t, second.Changed, "preprocessing must be idempotent")
	assert.Nil(t, second.Map)
	assert.Equal(t, first.Code, second.Code)
	assert.False(t, errs.HasErrors())
}

func TestPipelineTypeContextSurvives(t *testing.T) {
	t.Parallel()

	// A custom operator in a type context is not rewritten, and is not an
	// error either: it is presumed meaningful to a later consumer.
	pipeline := &retrofit.Pipeline{Registry: arithmetic(t)}
	result, errs := preprocess(t, pipeline, "type T = A ** B;")

	assert.Equal(t, "type T = A ** B;", result.Code)
	assert.False(t, result.Changed)
	assert.False(t, errs.HasErrors())
}

func TestPipelineResidualIsError(t *testing.T) {
	t.Parallel()

	// No operand on the left, so the occurrence is abandoned; what remains
	// is text the host compiler cannot parse, which must be an error.
	pipeline := &retrofit.Pipeline{Registry: arithmetic(t)}
	result, errs := preprocess(t, pipeline, "const x = ** b;")

	assert.False(t, result.Changed)
	require.True(t, errs.HasErrors())

	var found bool
	for _, d := range errs.Diagnostics() {
		if d.HasTag(retrofit.TagResidualSyntax) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPipelineStructuralExtension(t *testing.T) {
	t.Parallel()

	// A structural extension that deletes every "debug!" marker token pair.
	registry := new(syntax.Registry)
	require.NoError(t, registry.Register(syntax.StructuralFunc{
		ExtName: "strip-debug",
		Func: func(stream *token.Stream, src string, _ syntax.Options) []syntax.Replacement {
			var out []syntax.Replacement
			cursor := stream.Cursor()
			for !cursor.Done() {
				tok := cursor.Next()
				if tok.Text() == "debug" && cursor.Peek().Text() == "!" {
					bang := cursor.Next()
					out = append(out, syntax.Replacement{Start: tok.Start(), End: bang.End()})
				}
			}
			return out
		},
	}))

	pipeline := &retrofit.Pipeline{Registry: registry}
	result, errs := preprocess(t, pipeline, "debug! const x = 1;")

	assert.Equal(t, " const x = 1;", result.Code)
	assert.True(t, result.Changed)
	assert.False(t, errs.HasErrors())

	// The structural edit maps exactly: offsets after the deletion resolve
	// to their pre-deletion positions.
	mapped := result.Map.ToOriginal(len(" const x = "))
	assert.True(t, mapped.Exact)
	assert.Equal(t, len("debug! const x = "), mapped.Offset)
}

func TestPipelineMarkupVariant(t *testing.T) {
	t.Parallel()

	pipeline := &retrofit.Pipeline{
		Registry:       arithmetic(t),
		MarkupPatterns: []string{"**/*.markup.src"},
	}

	errs := new(report.Report)
	result := pipeline.Run(source.NewFile("ui/view.markup.src", "const v = <div></div>;"), errs)
	assert.False(t, result.Changed)
	assert.False(t, errs.HasErrors())
}

func TestPipelineZeroValue(t *testing.T) {
	t.Parallel()

	result, errs := preprocess(t, new(retrofit.Pipeline), "const x = 1;")
	assert.Equal(t, "const x = 1;", result.Code)
	assert.False(t, result.Changed)
	assert.False(t, errs.HasErrors())
}
