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

// Package host implements the virtual compiler host.
//
// A [Host] presents an ordinary [source.Opener] to a full type-checking
// compiler while transparently substituting preprocessed content for any
// intercepted file, so that the type checker never observes text containing
// the extended syntax. Files the host does not cover fall through to the
// delegate opener untouched.
package host

import (
	"fmt"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bufbuild/retrofit/incremental"
	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/source"
	"github.com/bufbuild/retrofit/sourcemap"
)

// Preprocessor runs the preprocessing pipeline over one file, producing
// syntactically valid text, the map from that text back to the original,
// and whether anything changed. Diagnostics go to errs.
type Preprocessor interface {
	Preprocess(file *source.File, errs *report.Report) (code string, m *sourcemap.Map, changed bool)
}

// Host is a compiler host that serves preprocessed text.
//
// Its Open method is safe for concurrent use; the preprocessed-entry cache
// and the diagnostic report are guarded by one mutex.
type Host struct {
	delegate   source.Opener
	preprocess Preprocessor
	patterns   []string
	cache      *incremental.Cache

	mu    sync.Mutex
	files map[string]*source.File // Preprocessed files by path.
	maps  map[string]*sourcemap.Map
	diags map[string][]*report.Diagnostic
}

// New constructs a Host.
//
// delegate resolves raw file content; synthetic in-memory files are
// provided by placing a [source.Map] first in a [source.Openers] chain.
// patterns are doublestar globs selecting which paths are intercepted and
// preprocessed; everything else is served raw. cache holds the
// preprocessed tier, letting entries survive across rebuilds within a
// session.
func New(delegate source.Opener, preprocess Preprocessor, patterns []string, cache *incremental.Cache) (*Host, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("host: invalid intercept pattern %q", pattern)
		}
	}

	return &Host{
		delegate:   delegate,
		preprocess: preprocess,
		patterns:   patterns,
		cache:      cache,
		files:      make(map[string]*source.File),
		maps:       make(map[string]*sourcemap.Map),
		diags:      make(map[string][]*report.Diagnostic),
	}, nil
}

// Open implements [source.Opener].
//
// For intercepted paths, the returned file contains preprocessed text; a
// file whose preprocessing changes nothing is served as-is, so diagnostics
// referencing it need no position remapping.
func (h *Host) Open(path string) (*source.File, error) {
	raw, err := h.delegate.Open(path)
	if err != nil {
		return nil, err
	}
	if !h.intercepts(path) {
		return raw, nil
	}

	hash := incremental.HashText(raw.Text())
	if entry, ok := h.cache.GetPreprocessed(path, hash); ok {
		return h.serve(path, raw, entry), nil
	}

	var errs report.Report
	code, m, changed := h.preprocess.Preprocess(raw, &errs)

	h.mu.Lock()
	h.diags[path] = errs.Diagnostics()
	h.mu.Unlock()

	entry := incremental.PreprocessedEntry{Code: code, Hash: hash}
	if changed {
		entry.Map = m
	}
	h.cache.PutPreprocessed(path, entry)
	return h.serve(path, raw, entry), nil
}

// serve materializes the *source.File for a preprocessed entry and records
// its source map for later remapping.
func (h *Host) serve(path string, raw *source.File, entry incremental.PreprocessedEntry) *source.File {
	if entry.Map == nil && entry.Code == raw.Text() {
		// Unchanged; hand the original through untouched.
		return raw
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, ok := h.files[path]
	if !ok || file.Text() != entry.Code {
		file = source.NewFile(path, entry.Code)
		h.files[path] = file
		h.maps[path] = entry.Map
	}
	return file
}

// SourceMap returns the map from the preprocessed text the host last served
// for path back to the file's original text, or nil if the file was served
// unchanged.
func (h *Host) SourceMap(path string) *sourcemap.Map {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.maps[path]
}

// Diagnostics returns the diagnostics produced by the most recent
// preprocessing run for path. A file served out of the preprocessed cache
// keeps the diagnostics of the run that populated it.
func (h *Host) Diagnostics(path string) []*report.Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Clone(h.diags[path])
}

// intercepts reports whether the host preprocesses path.
func (h *Host) intercepts(path string) bool {
	for _, pattern := range h.patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
