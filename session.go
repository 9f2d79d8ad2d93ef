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

package retrofit

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/bufbuild/retrofit/host"
	"github.com/bufbuild/retrofit/incremental"
	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/source"
)

// Transformer runs the type-directed transformation over one preprocessed
// file, e.g. by feeding it to the host compiler and expanding macros.
//
// code is syntactically valid host-language text. deps names every file the
// transformation consulted; the session records their content hashes so the
// cached result invalidates when any of them changes. Diagnostics go to
// errs; returning a non-nil error marks the whole file as failed.
type Transformer interface {
	Transform(ctx context.Context, path, code string, errs *report.Report) (output string, deps []string, err error)
}

// TransformerFunc adapts a function to the [Transformer] interface.
type TransformerFunc func(ctx context.Context, path, code string, errs *report.Report) (string, []string, error)

// Transform implements [Transformer].
func (f TransformerFunc) Transform(ctx context.Context, path, code string, errs *report.Report) (string, []string, error) {
	return f(ctx, path, code, errs)
}

// Session drives many files through preprocessing and transformation.
//
// Within one file the stages are strictly ordered: preprocess, transform,
// record dependency hashes. Across files the session runs semaphore-bounded
// goroutines, which is safe because the shared cache synchronizes
// internally. A Session may execute any number of [Session.Run] calls,
// reusing cache entries that are still valid.
type Session struct {
	// Resolves raw file content. Synthetic in-memory files are provided by
	// putting a [source.Map] first in a [source.Openers] chain.
	Opener source.Opener

	// The per-file preprocessor.
	Pipeline *Pipeline

	// The transformation to run over preprocessed text. If nil, files pass
	// through transformation unchanged with no dependencies.
	Transformer Transformer

	// The session's cache. If nil, the first Run creates an unbounded one.
	Cache *incremental.Cache

	// Files matching any of these doublestar patterns are preprocessed;
	// everything else is transformed as-is.
	InterceptPatterns []string

	// Bounds concurrent per-file work; defaults to [runtime.GOMAXPROCS].
	MaxParallelism int

	once    sync.Once
	initErr error
	host    *host.Host
	sem     *semaphore.Weighted
}

// Result is the outcome of processing one file.
type Result struct {
	// The path this result is for.
	Path string

	// The fully transformed output.
	Output string

	// Diagnostics from preprocessing and transformation, in that order.
	Diagnostics []*report.Diagnostic

	// Non-nil if the file could not be processed at all, e.g. the opener
	// failed or the transformer returned an error. The other fields are
	// meaningless when set.
	Err error
}

// Host returns the session's virtual compiler host, which external tooling
// may use to open preprocessed files or fetch their source maps directly.
func (s *Session) Host() (*host.Host, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	return s.host, nil
}

// Invalidate notifies the session that path's content changed, evicting its
// cache entries and the transformed entries of everything that depends on
// it.
func (s *Session) Invalidate(path string) {
	if s.Cache != nil {
		s.Cache.Invalidate(path)
	}
}

// Run processes each named file, in parallel, and returns one [Result] per
// path in input order.
//
// Per-file failures are reported in [Result.Err] and do not stop the other
// files; Run itself only fails on configuration errors or context
// cancellation.
func (s *Session) Run(ctx context.Context, paths ...string) ([]Result, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	e := &executor{session: s, tasks: make(map[string]*task, len(paths))}
	for _, path := range paths {
		e.evaluate(ctx, path)
	}

	results := make([]Result, len(paths))
	for i, path := range paths {
		t := e.tasks[path]
		select {
		case <-t.ready:
			results[i] = t.result
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}

func (s *Session) init() error {
	s.once.Do(func() {
		if s.Opener == nil {
			s.initErr = fmt.Errorf("retrofit: session has no opener")
			return
		}
		if s.Pipeline == nil {
			s.Pipeline = new(Pipeline)
		}
		if s.Cache == nil {
			s.Cache = incremental.NewCache(0)
		}

		parallelism := s.MaxParallelism
		if parallelism <= 0 {
			parallelism = runtime.GOMAXPROCS(0)
		}
		s.sem = semaphore.NewWeighted(int64(parallelism))

		s.host, s.initErr = host.New(s.Opener, s.Pipeline, s.InterceptPatterns, s.Cache)
	})
	return s.initErr
}

// executor deduplicates concurrent requests for the same path within one
// Run call.
type executor struct {
	session *Session

	mu    sync.Mutex
	tasks map[string]*task
}

type task struct {
	ready  chan struct{}
	result Result
}

// evaluate returns the task computing path's result, starting it if this is
// the first request.
func (e *executor) evaluate(ctx context.Context, path string) *task {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.tasks[path]; ok {
		return t
	}
	t := &task{ready: make(chan struct{})}
	e.tasks[path] = t

	go func() {
		defer close(t.ready)

		if err := e.session.sem.Acquire(ctx, 1); err != nil {
			t.result = Result{Path: path, Err: err}
			return
		}
		defer e.session.sem.Release(1)

		t.result = e.session.process(ctx, path)
	}()
	return t
}

// process runs the full pipeline for one file.
func (s *Session) process(ctx context.Context, path string) Result {
	raw, err := s.Opener.Open(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("retrofit: opening %s: %w", path, err)}
	}
	hash := incremental.HashText(raw.Text())

	if entry, ok := s.Cache.GetTransformed(path, hash, s.lookupHash); ok {
		return Result{Path: path, Output: entry.Output, Diagnostics: entry.Diagnostics}
	}

	// Preprocess through the host so the preprocessed tier is shared with
	// any external consumer of the same cache.
	preprocessed, err := s.host.Open(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("retrofit: preprocessing %s: %w", path, err)}
	}
	diagnostics := s.host.Diagnostics(path)

	var (
		output = preprocessed.Text()
		deps   []string
	)
	if s.Transformer != nil {
		var errs report.Report
		output, deps, err = s.Transformer.Transform(ctx, path, preprocessed.Text(), &errs)
		if err != nil {
			return Result{Path: path, Err: fmt.Errorf("retrofit: transforming %s: %w", path, err)}
		}
		diagnostics = append(diagnostics, errs.Diagnostics()...)
	}

	entry := &incremental.TransformedEntry{
		Output:           output,
		Diagnostics:      diagnostics,
		Hash:             hash,
		DependencyHashes: make(map[string]incremental.Hash, len(deps)),
	}
	cacheable := true
	for _, dep := range deps {
		depHash, ok := s.lookupHash(dep)
		if !ok {
			// A dependency we cannot hash now would always fail validation
			// later; do not cache the entry at all.
			cacheable = false
			break
		}
		entry.DependencyHashes[dep] = depHash
	}
	if cacheable {
		s.Cache.PutTransformed(path, entry)
	}

	return Result{Path: path, Output: output, Diagnostics: diagnostics}
}

// lookupHash resolves the current content hash of a file through the raw
// opener. It is the [incremental.HashLookup] cache validation uses.
func (s *Session) lookupHash(path string) (incremental.Hash, bool) {
	file, err := s.Opener.Open(path)
	if err != nil {
		return 0, false
	}
	return incremental.HashText(file.Text()), true
}
