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

// Package scanner tokenizes host-language source text, including the
// extended tokens the host grammar does not know about.
//
// The scanner's one unusual obligation is custom operators: every character
// sequence registered in [Options.Operators] must come out as a single
// token, even when the host grammar would lex it as several. It otherwise
// has no opinions; deciding what the tokens mean is downstream's problem.
package scanner

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/source"
	"github.com/bufbuild/retrofit/token"
)

// MaxFileSize is the maximum file size the scanner accepts.
const MaxFileSize int = (1 << 31) - 1 // 2GB

// Diagnostic tags the scanner generates.
const (
	TagFileTooBig   report.Tag = "file-too-big"
	TagUnterminated report.Tag = "unterminated-literal"
	TagUnrecognized report.Tag = "unrecognized-character"
)

// Variant selects the grammar dialect a file is scanned with.
type Variant int8

const (
	// The plain host grammar.
	Standard Variant = iota
	// The markup-embedding dialect, in which the markup-only puncts </, />,
	// and <> lex as single tokens.
	Markup
)

// Options configures a single tokenization pass.
type Options struct {
	// Custom operator symbols to recognize as single tokens, each matched
	// by maximal munch.
	Operators []string

	// The grammar dialect, based on the caller's declared file kind.
	Variant Variant
}

// Lex performs lexical analysis on file, appending any diagnostics that
// result to errs.
//
// Lex has no side effects beyond the returned stream and the report; the
// same file may be lexed any number of times.
func Lex(file *source.File, opts Options, errs *report.Report) *token.Stream {
	l := &lexer{
		Stream: token.NewStream(file),
		Report: errs,
	}

	// Longest symbol first, so that maximal munch falls out of a linear
	// scan over the table.
	l.operators = slices.Clone(opts.Operators)
	slices.SortStableFunc(l.operators, func(a, b string) int {
		return len(b) - len(a)
	})
	l.markup = opts.Variant == Markup

	l.lex()
	return l.Stream
}

// lexer holds one tokenization pass's state.
type lexer struct {
	*token.Stream // Embedded so we don't have to call Stream() everywhere.
	*report.Report

	cursor    int
	operators []string
	markup    bool
}

func (l *lexer) lex() {
	if len(l.Text()) > MaxFileSize {
		l.Error(
			report.Message("file is too big to scan (%d bytes)", len(l.Text())),
			report.InFile(l.Path()),
			TagFileTooBig,
		)
		return
	}

	for !l.done() {
		start := l.cursor
		r := l.peek()

		switch {
		case unicode.In(r, unicode.Pattern_White_Space):
			// Consume as much whitespace as possible and mint a single
			// whitespace token.
			l.takeWhile(func(r rune) bool {
				return unicode.In(r, unicode.Pattern_White_Space)
			})
			l.Push(l.cursor-start, token.Space)

		case l.startsWith("//"):
			// Single-line comment. Seek to the next '\n' or the EOF.
			if _, ok := l.seekInclusive("\n"); !ok {
				l.seekEOF()
			}
			l.Push(l.cursor-start, token.Comment)

		case l.startsWith("/*"):
			// Block comment. Comments do not nest.
			l.cursor += len("/*")
			if _, ok := l.seekInclusive("*/"); !ok {
				l.Error(
					report.Message("unterminated block comment"),
					report.Snippet(l.SpanFrom(start)),
					TagUnterminated,
				)
				l.seekEOF()
			}
			l.Push(l.cursor-start, token.Comment)

		case l.matchOperator() != "":
			// A registered custom operator. This check runs before all of
			// the built-in punctuation so that a multi-character symbol is
			// never split into the host grammar's tokens.
			l.cursor += len(l.matchOperator())
			l.Push(l.cursor-start, token.CustomOperator)

		case l.markup && (l.startsWith("</") || l.startsWith("/>") || l.startsWith("<>")):
			l.cursor += 2
			l.Push(2, token.Punct)

		case r == '"' || r == '\'' || r == '`':
			l.lexString()

		case r == '.' && !unicode.IsDigit(l.peekAt(1)):
			l.lexPunct()

		case r == '.' || unicode.IsDigit(r):
			l.lexNumber()

		case r == '_' || r == '$' || unicode.IsLetter(r):
			text := l.takeWhile(func(r rune) bool {
				return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
			})
			kind := token.Ident
			if token.IsKeyword(text) {
				kind = token.Keyword
			}
			l.Push(len(text), kind)

		case strings.ContainsRune("()[]{}", r):
			l.cursor++
			l.Push(1, token.Bracket)

		default:
			l.lexPunct()
		}

		if l.cursor == start {
			// The cursor failed to advance; this is a bug in the scanner.
			panic("retrofit/scanner: lexer failed to make progress at offset " + l.SpanFrom(start).String())
		}
	}
}

// puncts is the built-in multi-character punctuation of the host grammar,
// longest first. << and >> are deliberately absent: lexing them as single
// tokens would confuse nested generic arguments like Array<Array<T>>.
var puncts = []string{
	"===", "!==", "...",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.",
	"++", "--", "+=", "-=", "*=", "/=", "%=",
}

func (l *lexer) lexPunct() {
	for _, p := range puncts {
		if l.startsWith(p) {
			l.cursor += len(p)
			l.Push(len(p), token.Punct)
			return
		}
	}

	r := l.pop()
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		tok := l.Push(utf8.RuneLen(r), token.Unrecognized)
		l.Error(
			report.Message("unrecognized character"),
			report.Snippet(tok.Span()),
			TagUnrecognized,
		)
		return
	}
	l.Push(utf8.RuneLen(r), token.Punct)
}

func (l *lexer) lexString() {
	start := l.cursor
	quote := l.pop()
	terminated := false

	for !l.done() {
		r := l.pop()
		switch {
		case r == quote:
			terminated = true
		case r == '\\' && !l.done():
			l.pop() // The escaped rune, whatever it is.
			continue
		case r == '\n' && quote != '`':
			// Strings cannot span lines; back up so the newline lexes as
			// whitespace.
			l.cursor--
		default:
			continue
		}
		break
	}

	if !terminated {
		l.Error(
			report.Message("unterminated string literal"),
			report.Snippet(l.SpanFrom(start)),
			TagUnterminated,
		)
	}
	l.Push(l.cursor-start, token.String)
}

func (l *lexer) lexNumber() {
	start := l.cursor
	for !l.done() {
		r := l.peek()
		switch {
		case unicode.IsDigit(r) || unicode.IsLetter(r) || r == '.' || r == '_':
			l.cursor += utf8.RuneLen(r)
		case r == '+' || r == '-':
			// Signs are part of the number only immediately after an
			// exponent marker.
			prev := l.Text()[l.cursor-1]
			if prev != 'e' && prev != 'E' {
				goto done
			}
			l.cursor++
		default:
			goto done
		}
	}
done:
	l.Push(l.cursor-start, token.Number)
}

// matchOperator returns the longest registered operator symbol at the
// cursor, or "" if none match.
func (l *lexer) matchOperator() string {
	for _, symbol := range l.operators {
		if l.startsWith(symbol) {
			return symbol
		}
	}
	return ""
}

func (l *lexer) done() bool {
	return l.cursor >= len(l.Text())
}

func (l *lexer) rest() string {
	return l.Text()[l.cursor:]
}

func (l *lexer) startsWith(prefix string) bool {
	return strings.HasPrefix(l.rest(), prefix)
}

// peek decodes the rune under the cursor without advancing.
func (l *lexer) peek() rune {
	r, _ := utf8.DecodeRuneInString(l.rest())
	return r
}

// peekAt decodes the rune n runes past the cursor without advancing.
func (l *lexer) peekAt(n int) rune {
	rest := l.rest()
	for ; n > 0; n-- {
		_, size := utf8.DecodeRuneInString(rest)
		rest = rest[size:]
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return r
}

// pop decodes the rune under the cursor and advances past it.
func (l *lexer) pop() rune {
	r, size := utf8.DecodeRuneInString(l.rest())
	if size == 0 {
		return utf8.RuneError
	}
	l.cursor += size
	return r
}

// takeWhile advances while f returns true, returning the text consumed.
func (l *lexer) takeWhile(f func(rune) bool) string {
	start := l.cursor
	for !l.done() {
		r := l.peek()
		if !f(r) {
			break
		}
		l.cursor += utf8.RuneLen(r)
	}
	return l.Text()[start:l.cursor]
}

// seekInclusive seeks to needle, returning the text up to and including it.
func (l *lexer) seekInclusive(needle string) (string, bool) {
	idx := strings.Index(l.rest(), needle)
	if idx == -1 {
		return "", false
	}
	text := l.rest()[:idx+len(needle)]
	l.cursor += len(text)
	return text, true
}

// seekEOF advances to the end of the file.
func (l *lexer) seekEOF() {
	l.cursor = len(l.Text())
}

// SpanFrom returns a span from start to the cursor.
func (l *lexer) SpanFrom(start int) source.Span {
	return l.File.Span(start, l.cursor)
}
