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

package report

import (
	"fmt"

	"github.com/bufbuild/retrofit/source"
)

// Level represents the severity of a diagnostic message.
type Level int8

const (
	// Internal preprocessor error. Indicates a panic within the engine.
	ICE Level = 1 + iota
	// Red. Indicates a constraint violation: the file cannot be made valid.
	Error
	// Yellow. Indicates something that probably should not be ignored.
	Warning
	// Cyan. This is the diagnostics version of "info".
	Remark
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case ICE:
		return "internal error"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	default:
		return fmt.Sprintf("Level(%d)", int8(l))
	}
}

// Tag is a diagnostic tag: a machine-readable identification for a
// diagnostic.
//
// Tags should be lowercase identifiers separated by dashes, e.g.
// unrewritable-operator. If a package generates diagnostics with tags, it
// should expose those tags as constants.
type Tag string

// Apply implements [DiagnosticOption].
func (t Tag) Apply(d *Diagnostic) {
	if d.tag != "" {
		panic("retrofit/report: set diagnostic tag more than once")
	}
	d.tag = t
}

// Diagnostic is a user-visible message attached to a location in a source
// file.
//
// Not all Diagnostics are "errors"; some represent warnings, or perhaps
// debugging remarks. To construct a diagnostic, call one of [Report.Error],
// [Report.Warning], or [Report.Remark] with the options to apply.
type Diagnostic struct {
	tag     Tag
	message string
	level   Level

	// The file this diagnostic occurs in, if it has no associated
	// annotations. This is used for errors like "output failed to parse"
	// that cannot be given a snippet.
	inFile string

	annotations []annotation
	notes       []string
}

type annotation struct {
	span    source.Span
	message string
	primary bool
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
//
// Nil values passed to [Diagnostic.With] are ignored.
type DiagnosticOption interface {
	Apply(*Diagnostic)
}

// Level returns this diagnostic's level.
func (d *Diagnostic) Level() Level {
	return d.level
}

// Message returns this diagnostic's message.
func (d *Diagnostic) Message() string {
	return d.message
}

// HasTag checks whether this diagnostic has a particular tag.
//
// This is deliberately not named Is: Diagnostic implements error, and an
// Is method with a non-error parameter trips up vet and errors.Is callers.
func (d *Diagnostic) HasTag(tag Tag) bool {
	return d.tag == tag
}

// Path returns the path of the file this diagnostic is for.
func (d *Diagnostic) Path() string {
	if primary := d.Primary(); !primary.IsZero() {
		return primary.Path()
	}
	return d.inFile
}

// Primary returns this diagnostic's primary span, if it has one.
//
// If it doesn't have one, it returns the zero span.
func (d *Diagnostic) Primary() source.Span {
	for _, annotation := range d.annotations {
		if annotation.primary {
			return annotation.span
		}
	}
	return source.Span{}
}

// With applies the given options to this diagnostic.
//
// Nil values are ignored.
func (d *Diagnostic) With(options ...DiagnosticOption) *Diagnostic {
	for _, option := range options {
		if option != nil {
			option.Apply(d)
		}
	}
	return d
}

// Error implements error so diagnostics can flow through error returns.
func (d *Diagnostic) Error() string {
	return d.message
}

// Message returns a DiagnosticOption that sets the main diagnostic message.
func Message(format string, args ...any) DiagnosticOption {
	return message(fmt.Sprintf(format, args...))
}

type message string

func (m message) Apply(d *Diagnostic) {
	if d.message != "" {
		panic("retrofit/report: set diagnostic message more than once")
	}
	d.message = string(m)
}

// InFile is a DiagnosticOption that causes a diagnostic without a primary
// span to mention the given file.
type InFile string

// Apply implements [DiagnosticOption].
func (f InFile) Apply(d *Diagnostic) {
	if d.inFile != "" {
		panic("retrofit/report: set diagnostic path more than once")
	}
	d.inFile = string(f)
}

// Snippetf returns a DiagnosticOption that adds an annotated source span to
// a diagnostic.
//
// The first annotation added is the "primary" annotation, and is rendered
// differently from the others. If at is nil or has a zero span, this option
// does nothing.
func Snippetf(at source.Spanner, format string, args ...any) DiagnosticOption {
	if at == nil {
		return nil
	}
	span := at.Span()
	if span.IsZero() {
		return nil
	}
	return snippet{span: span, message: fmt.Sprintf(format, args...)}
}

// Snippet is equivalent to Snippetf(at, "").
func Snippet(at source.Spanner) DiagnosticOption {
	return Snippetf(at, "")
}

type snippet annotation

func (s snippet) Apply(d *Diagnostic) {
	a := annotation(s)
	a.primary = len(d.annotations) == 0
	d.annotations = append(d.annotations, a)
}

// Notef returns a DiagnosticOption that appends a note to a diagnostic.
func Notef(format string, args ...any) DiagnosticOption {
	return note(fmt.Sprintf(format, args...))
}

type note string

func (n note) Apply(d *Diagnostic) {
	d.notes = append(d.notes, string(n))
}
