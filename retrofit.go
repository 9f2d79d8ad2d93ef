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

// Package retrofit is a source-to-source preprocessor that lets a
// statically-typed, curly-brace language grow custom surface syntax, and an
// incremental engine for running type-directed transformations over the
// preprocessed result.
//
// A [Pipeline] rewrites one file's extended syntax into text the host
// language's own parser accepts: registered structural extensions run
// first, then the built-in kind-annotation canonicalizer, then the
// custom-operator rewriter. A [Session] drives many files through a
// pipeline and a [Transformer] in parallel, caching both stages by content
// hash and invalidating along the recorded dependency graph.
package retrofit

import (
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/rewrite"
	"github.com/bufbuild/retrofit/scanner"
	"github.com/bufbuild/retrofit/source"
	"github.com/bufbuild/retrofit/sourcemap"
	"github.com/bufbuild/retrofit/syntax"
	"github.com/bufbuild/retrofit/token"
)

// TagResidualSyntax tags the error generated when preprocessed output still
// contains extended syntax in value position, which the host compiler would
// reject.
const TagResidualSyntax report.Tag = "residual-extended-syntax"

// Pipeline preprocesses single files.
//
// The zero value is a usable pipeline that changes nothing; populate
// Registry to give it work to do. A Pipeline is stateless and may be shared
// across goroutines.
type Pipeline struct {
	// The syntax extensions to apply.
	Registry *syntax.Registry

	// Files matching any of these doublestar patterns are scanned with the
	// markup-embedding dialect.
	MarkupPatterns []string

	// Overrides the operator rewriter's iteration cap if positive.
	MaxIterations int
}

// PreprocessResult is the net output of preprocessing one file.
type PreprocessResult struct {
	// The preprocessed text; equal to the input if Changed is false.
	Code string

	// Whether any rewrite fired.
	Changed bool

	// Maps offsets in Code back to offsets in the original text. Nil when
	// Changed is false: an unchanged file needs no remapping.
	Map *sourcemap.Map
}

// Run preprocesses file, appending diagnostics to errs.
//
// Stages run in a fixed order: structural extensions in registration order,
// the built-in kind-annotation pass, then the operator rewriter. Each
// structural stage sees the text its predecessors produced, and the stage
// source maps are composed so the result maps all the way back to the
// original. Run is idempotent: feeding its output back in yields
// Changed == false and byte-identical text.
func (p *Pipeline) Run(file *source.File, errs *report.Report) PreprocessResult {
	variant := p.variant(file.Path())
	opts := scanner.Options{Variant: variant}
	var (
		structural []syntax.Structural
		operators  []syntax.Operator
	)
	if p.Registry != nil {
		opts.Operators = p.Registry.OperatorSymbols()
		structural = slices.Clone(p.Registry.Structural())
		operators = p.Registry.Operators()
	}
	structural = append(structural, rewrite.KindAnnotations{})
	extOpts := syntax.Options{Path: file.Path(), Markup: variant == scanner.Markup}

	// The first lex is the only one whose diagnostics reach the caller;
	// later stages re-lex text derived from the same input, and would only
	// repeat them.
	current := file
	stream := scanner.Lex(current, opts, errs)

	var m *sourcemap.Map
	for _, ext := range structural {
		replacements := ext.Rewrite(stream, current.Text(), extOpts)
		code, edits := syntax.Apply(current.Text(), replacements)
		if code == current.Text() {
			continue
		}

		m = sourcemap.Build(len(current.Text()), edits).Compose(m)
		current = source.NewFile(file.Path(), code)
		stream = scanner.Lex(current, opts, new(report.Report))
	}

	rewriter := rewrite.Operators{
		Extensions:    operators,
		Variant:       variant,
		MaxIterations: p.MaxIterations,
	}
	result := rewriter.Rewrite(current, errs)
	if result.Changed {
		m = result.Map.Compose(m)
		current = source.NewFile(file.Path(), result.Code)
	}

	p.checkResidual(current, opts, errs)

	changed := current.Text() != file.Text()
	if !changed {
		return PreprocessResult{Code: file.Text()}
	}
	return PreprocessResult{Code: current.Text(), Changed: true, Map: m}
}

// Preprocess implements [host.Preprocessor].
func (p *Pipeline) Preprocess(file *source.File, errs *report.Report) (string, *sourcemap.Map, bool) {
	result := p.Run(file, errs)
	return result.Code, result.Map, result.Changed
}

// checkResidual errors on any custom-operator token the rewriter left in
// value position. Occurrences in type contexts are legal output; abandoned
// value-position occurrences already produced a remark, and this escalates
// them, since the host compiler cannot parse them.
func (p *Pipeline) checkResidual(file *source.File, opts scanner.Options, errs *report.Report) {
	if len(opts.Operators) == 0 {
		return
	}

	toks := scanner.Lex(file, opts, new(report.Report)).Tokens()
	inType := rewrite.ClassifyTypeContexts(toks)
	for i, tok := range toks {
		if tok.Kind() != token.CustomOperator || inType[i] {
			continue
		}
		errs.Error(
			TagResidualSyntax,
			report.Message("operator `%s` could not be rewritten", tok.Text()),
			report.Snippetf(tok, "this occurrence survives preprocessing"),
			report.Notef("the host compiler cannot parse this operator"),
		)
	}
}

// variant returns the scanner dialect for path.
func (p *Pipeline) variant(path string) scanner.Variant {
	for _, pattern := range p.MarkupPatterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return scanner.Markup
		}
	}
	return scanner.Standard
}
