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

package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/retrofit/internal/diff"
	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/rewrite"
	"github.com/bufbuild/retrofit/source"
	"github.com/bufbuild/retrofit/syntax"
)

func call(name string) func(left, right string) string {
	return func(left, right string) string {
		return name + "(" + left + ", " + right + ")"
	}
}

// arith is a small operator set: + and - at one level, * above them, and a
// right-associative ** above that.
var arith = []syntax.Operator{
	{Symbol: "+", Precedence: 10, Assoc: syntax.Left, Transform: call("add")},
	{Symbol: "-", Precedence: 10, Assoc: syntax.Left, Transform: call("sub")},
	{Symbol: "*", Precedence: 20, Assoc: syntax.Left, Transform: call("mul")},
	{Symbol: "**", Precedence: 30, Assoc: syntax.Right, Transform: call("pow")},
}

func rewriteOps(t *testing.T, text string, ops []syntax.Operator) (rewrite.Result, *report.Report) {
	t.Helper()

	errs := new(report.Report)
	rewriter := rewrite.Operators{Extensions: ops}
	return rewriter.Rewrite(source.NewFile("test.src", text), errs), errs
}

func TestOperators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single",
			text: "const x = a + b;",
			want: "const x = add(a, b);",
		},
		{
			name: "precedence-right-side",
			text: "const x = a + b * c;",
			want: "const x = add(a, mul(b, c));",
		},
		{
			name: "precedence-left-side",
			text: "const x = a * b + c;",
			want: "const x = add(mul(a, b), c);",
		},
		{
			name: "left-associative",
			text: "const x = a + b + c;",
			want: "const x = add(add(a, b), c);",
		},
		{
			name: "right-associative",
			text: "const x = a ** b ** c;",
			want: "const x = pow(a, pow(b, c));",
		},
		{
			name: "call-operands",
			text: "const x = f(a, b) + g(c);",
			want: "const x = add(f(a, b), g(c));",
		},
		{
			name: "parenthesized-operand",
			text: "const x = (a + b) * c;",
			want: "const x = mul((add(a, b)), c);",
		},
		{
			name: "stops-at-statement-boundary",
			text: "let x = a + b; let y = c;",
			want: "let x = add(a, b); let y = c;",
		},
		{
			name: "stops-at-comma",
			text: "f(a + b, c - d);",
			want: "f(add(a, b), sub(c, d));",
		},
		{
			name: "type-context-suppressed",
			text: "type T = A + B;",
			want: "type T = A + B;",
		},
		{
			name: "mixed-type-and-value",
			text: "const x: A + B = a + b;",
			want: "const x: A + B = add(a, b);",
		},
		{
			name: "no-operators",
			text: "const x = y;",
			want: "const x = y;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, errs := rewriteOps(t, tt.text, arith)
			assert.Empty(t, diff.Unified(tt.want, result.Code))
			assert.Equal(t, tt.want != tt.text, result.Changed)
			assert.False(t, errs.HasErrors())
		})
	}
}

func TestOperatorsResultMap(t *testing.T) {
	t.Parallel()

	text := "const x = a + b;"
	result, _ := rewriteOps(t, text, arith)
	require.True(t, result.Changed)
	require.NotNil(t, result.Map)

	// Offsets before the splice map exactly.
	exact := result.Map.ToOriginal(3)
	assert.Equal(t, 3, exact.Offset)
	assert.True(t, exact.Exact)

	// Offsets inside the spliced region land within it, inexactly.
	inside := result.Map.ToOriginal(len("const x = add("))
	assert.False(t, inside.Exact)
	assert.GreaterOrEqual(t, inside.Offset, len("const x = "))
	assert.LessOrEqual(t, inside.Offset, len(text))
}

func TestOperatorsUnchangedHasNoMap(t *testing.T) {
	t.Parallel()

	result, _ := rewriteOps(t, "const x = y;", arith)
	assert.False(t, result.Changed)
	assert.Nil(t, result.Map)
}

func TestOperatorsAbandonMalformed(t *testing.T) {
	t.Parallel()

	// A leading operator has no left operand; it must be left in place and
	// remarked upon, and the rest of the file still rewrites.
	result, errs := rewriteOps(t, "+ a; const x = b + c;", arith)
	assert.Equal(t, "+ a; const x = add(b, c);", result.Code)

	var remarks int
	for _, d := range errs.Diagnostics() {
		if d.HasTag(rewrite.TagUnrewritable) {
			remarks++
		}
	}
	assert.Equal(t, 1, remarks)
	assert.False(t, errs.HasErrors(), "abandonment is not an error")
}

func TestOperatorsTrailingAbandoned(t *testing.T) {
	t.Parallel()

	result, errs := rewriteOps(t, "const x = a +;", arith)
	assert.Equal(t, "const x = a +;", result.Code)
	assert.False(t, result.Changed)
	assert.False(t, errs.HasErrors())
}

func TestOperatorsIterationCap(t *testing.T) {
	t.Parallel()

	// A transform that emits its own operator back would loop forever; the
	// cap must stop it.
	pathological := []syntax.Operator{{
		Symbol:     "<+>",
		Precedence: 1,
		Transform:  func(left, right string) string { return left + " <+> " + right },
	}}

	errs := new(report.Report)
	rewriter := rewrite.Operators{Extensions: pathological, MaxIterations: 10}
	result := rewriter.Rewrite(source.NewFile("test.src", "a <+> b;"), errs)
	assert.True(t, result.Changed)
}

func TestOperatorsIdempotent(t *testing.T) {
	t.Parallel()

	result, _ := rewriteOps(t, "const x = a + b * c;", arith)
	require.True(t, result.Changed)

	again, errs := rewriteOps(t, result.Code, arith)
	assert.False(t, again.Changed)
	assert.Equal(t, result.Code, again.Code)
	assert.False(t, errs.HasErrors())
}
