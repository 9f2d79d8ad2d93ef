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
	"strings"

	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/scanner"
	"github.com/bufbuild/retrofit/source"
	"github.com/bufbuild/retrofit/sourcemap"
	"github.com/bufbuild/retrofit/syntax"
	"github.com/bufbuild/retrofit/token"
)

// MaxIterations is the default iteration cap for [Operators.Rewrite]. It is
// a safety valve against non-termination, not a tuning knob: a transform
// that emits its own operator back can otherwise loop forever.
const MaxIterations = 1000

// TagUnrewritable tags the remark generated when an operator occurrence is
// abandoned because its operand boundaries cannot be resolved.
const TagUnrewritable report.Tag = "unrewritable-operator"

// Operators rewrites custom-operator occurrences until none remain.
//
// Each iteration re-tokenizes the current text, classifies type contexts,
// selects the occurrence to rewrite next (highest precedence; leftmost for
// left-associative operators, rightmost for right-associative ones),
// resolves its operand spans, and splices in the operator's transform. An
// occurrence whose boundaries cannot be resolved is abandoned rather than
// corrupting the source.
type Operators struct {
	// The registered operator extensions.
	Extensions []syntax.Operator

	// The scanner dialect for the file being rewritten.
	Variant scanner.Variant

	// Overrides [MaxIterations] if positive.
	MaxIterations int
}

// Result is the net output of one rewriting run.
type Result struct {
	// The rewritten text; equal to the input if Changed is false.
	Code string

	// Whether any occurrence was rewritten.
	Changed bool

	// Maps offsets in Code back to offsets in the input. Nil when Changed
	// is false.
	//
	// Because rewriting splices text iteratively, the mapping is
	// region-level from the first rewritten offset onward; offsets before
	// it map exactly.
	Map *sourcemap.Map
}

// candidate is one rewritable operator occurrence in the current text.
type candidate struct {
	index int // Token index in the current stream.
	tok   token.Token
	op    syntax.Operator
}

// Rewrite eliminates custom-operator occurrences from file's text.
//
// Diagnostics for abandoned occurrences are appended to errs.
func (o *Operators) Rewrite(file *source.File, errs *report.Report) Result {
	if len(o.Extensions) == 0 {
		return Result{Code: file.Text()}
	}

	bySymbol := make(map[string]syntax.Operator, len(o.Extensions))
	symbols := make([]string, 0, len(o.Extensions))
	for _, op := range o.Extensions {
		bySymbol[op.Symbol] = op
		symbols = append(symbols, op.Symbol)
	}
	opts := scanner.Options{Operators: symbols, Variant: o.Variant}

	max := o.MaxIterations
	if max <= 0 {
		max = MaxIterations
	}

	var (
		text          = file.Text()
		changed       bool
		firstAffected = len(text)
		// Occurrences abandoned since the last splice, keyed by offset.
		// Offsets are stable until the next splice, which resets the set.
		abandoned = map[int]bool{}
	)

	for range max {
		// Re-tokenize from scratch: the previous splice may have created or
		// destroyed token boundaries anywhere around it. Scanning
		// diagnostics were already reported by the caller's first pass, so
		// they go to a throwaway report here.
		current := source.NewFile(file.Path(), text)
		stream := scanner.Lex(current, opts, new(report.Report))
		toks := stream.Tokens()
		inType := ClassifyTypeContexts(toks)

		var candidates []candidate
		for i, tok := range toks {
			if !tok.IsCustomOperator() || inType[i] || abandoned[tok.Start()] {
				continue
			}
			op, ok := bySymbol[tok.Text()]
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{index: i, tok: tok, op: op})
		}
		if len(candidates) == 0 {
			break
		}

		chosen := selectNext(candidates)

		left, right, ok := operandSpans(toks, chosen, bySymbol)
		if !ok {
			// Defined behavior for malformed input: leave the occurrence
			// untouched and move on to the next candidate.
			errs.Remark(
				report.Message("cannot resolve operands for operator %q", chosen.op.Symbol),
				report.Snippet(chosen.tok.Span()),
				TagUnrewritable,
			)
			abandoned[chosen.tok.Start()] = true
			continue
		}

		leftText := strings.TrimSpace(text[left:chosen.tok.Start()])
		rightText := strings.TrimSpace(text[chosen.tok.End():right])
		text = text[:left] + chosen.op.Transform(leftText, rightText) + text[right:]

		changed = true
		firstAffected = min(firstAffected, left)
		// Offsets after the splice shifted, so abandoned occurrences there
		// must be rediscovered against the new text. Offsets before it are
		// unchanged and stay abandoned, so they are not remarked on twice.
		for offset := range abandoned {
			if offset >= left {
				delete(abandoned, offset)
			}
		}
	}

	if !changed {
		return Result{Code: file.Text()}
	}

	// Offsets before the first splice still map exactly; everything after
	// is one region-level edit. Finer tracking through iterative splicing
	// is a known, accepted limitation.
	m := sourcemap.Build(len(file.Text()), []sourcemap.Edit{{
		Start: firstAffected,
		End:   len(file.Text()),
		Text:  text[min(firstAffected, len(text)):],
		Exact: false,
	}})
	return Result{Code: text, Changed: true, Map: m}
}

// selectNext picks the occurrence to rewrite next: within the
// highest-precedence group, the leftmost occurrence if that group is
// left-associative, the rightmost if right-associative.
func selectNext(candidates []candidate) candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.op.Precedence > best.op.Precedence:
			best = c
		case c.op.Precedence == best.op.Precedence && best.op.Assoc == syntax.Right:
			// Equal precedence: candidates are in left-to-right order, so
			// for right associativity keep taking later occurrences; for
			// left associativity the earliest already won.
			best = c
		}
	}
	return best
}

// operandSpans resolves the textual extents of the chosen occurrence's
// operands, returning the left operand's start offset and the right
// operand's end offset.
//
// Scanning in each direction tracks bracket depth so that a boundary never
// lands inside an unmatched bracket; at depth zero the scan stops at the
// first boundary token, or at another custom operator whose precedence
// indicates it terminates the operand. Returns ok = false if either operand
// would be empty.
func operandSpans(toks []token.Token, chosen candidate, ops map[string]syntax.Operator) (left, right int, ok bool) {
	left = scanOperand(toks, chosen, ops, -1)
	right = scanOperand(toks, chosen, ops, +1)

	// A left boundary at or past the operator, or a right boundary at or
	// before it, means there is no operand to take.
	if left >= chosen.tok.Start() || right <= chosen.tok.End() {
		return 0, 0, false
	}
	return left, right, true
}

// scanOperand scans outward from the operator in the given direction
// (-1 for the left operand, +1 for the right) and returns the offset at
// which the operand ends.
func scanOperand(toks []token.Token, chosen candidate, ops map[string]syntax.Operator, dir int) int {
	var depth int
	boundary := chosen.tok.Start()
	if dir > 0 {
		boundary = chosen.tok.End()
	}

	for i := chosen.index + dir; i >= 0 && i < len(toks); i += dir {
		tok := toks[i]
		if tok.Kind().IsSkippable() {
			continue
		}

		if tok.Kind() == token.Bracket {
			if opensToward(tok.Text(), dir) {
				depth++
			} else {
				depth--
				if depth < 0 {
					// An unmatched bracket; the operand cannot extend past
					// it.
					break
				}
			}
			boundary = extent(tok, dir)
			continue
		}

		if depth > 0 {
			// Inside a bracket the operand owns; everything is operand
			// text, boundaries included.
			boundary = extent(tok, dir)
			continue
		}

		if tok.IsBoundary() {
			break
		}
		if tok.IsCustomOperator() {
			other, known := ops[tok.Text()]
			// An operator of lower-or-equal precedence terminates the
			// operand; a tighter-binding one belongs to it. Unknown symbols
			// terminate, conservatively.
			if !known || other.Precedence <= chosen.op.Precedence {
				break
			}
		}

		boundary = extent(tok, dir)
	}

	return boundary
}

// opensToward reports whether a bracket token opens in the scan direction:
// when scanning right, ( [ { open; when scanning left, ) ] } do.
func opensToward(text string, dir int) bool {
	isOpen := text == "(" || text == "[" || text == "{"
	if dir > 0 {
		return isOpen
	}
	return !isOpen
}

// extent returns the edge of tok that the operand grows to in the given
// direction.
func extent(tok token.Token, dir int) int {
	if dir > 0 {
		return tok.End()
	}
	return tok.Start()
}
