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

// Package report defines diagnostics for the preprocessing pipeline.
//
// Diagnostics are accumulated into a [Report] per file and returned
// alongside transformation results; they are never thrown across the
// pipeline as errors. Rendering is plain text in the style of modern
// compiler output.
package report

import "slices"

// Report is a collection of diagnostics.
//
// A zero Report is ready to use. Reports are not safe for concurrent
// mutation.
type Report struct {
	diagnostics []*Diagnostic
}

// Error creates a new error diagnostic with the given options applied.
func (r *Report) Error(options ...DiagnosticOption) *Diagnostic {
	return r.push(Error, options)
}

// Warning creates a new warning diagnostic with the given options applied.
func (r *Report) Warning(options ...DiagnosticOption) *Diagnostic {
	return r.push(Warning, options)
}

// Remark creates a new remark diagnostic with the given options applied.
func (r *Report) Remark(options ...DiagnosticOption) *Diagnostic {
	return r.push(Remark, options)
}

// Diagnostics returns the diagnostics accumulated so far.
func (r *Report) Diagnostics() []*Diagnostic {
	return r.diagnostics
}

// HasErrors returns whether any diagnostic of [Error] level or worse has
// been reported.
func (r *Report) HasErrors() bool {
	return slices.ContainsFunc(r.diagnostics, func(d *Diagnostic) bool {
		return d.level <= Error
	})
}

// ForPath returns the diagnostics attached to the given file path.
func (r *Report) ForPath(path string) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range r.diagnostics {
		if d.Path() == path {
			out = append(out, d)
		}
	}
	return out
}

func (r *Report) push(level Level, options []DiagnosticOption) *Diagnostic {
	d := &Diagnostic{level: level}
	d.With(options...)
	r.diagnostics = append(r.diagnostics, d)
	return d
}
