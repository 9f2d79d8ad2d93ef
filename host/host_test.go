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

package host_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/retrofit/host"
	"github.com/bufbuild/retrofit/incremental"
	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/source"
	"github.com/bufbuild/retrofit/sourcemap"
)

// upper is a test preprocessor that uppercases any file containing "ext"
// and counts its invocations.
type upper struct {
	calls int
}

func (u *upper) Preprocess(file *source.File, errs *report.Report) (string, *sourcemap.Map, bool) {
	u.calls++
	if !strings.Contains(file.Text(), "ext") {
		return file.Text(), nil, false
	}

	code := strings.ToUpper(file.Text())
	m := sourcemap.Build(len(file.Text()), []sourcemap.Edit{
		{Start: 0, End: len(file.Text()), Text: code, Exact: false},
	})
	errs.Remark(report.Message("rewrote %s", file.Path()))
	return code, m, true
}

func newHost(t *testing.T, delegate source.Opener, preprocess host.Preprocessor) *host.Host {
	t.Helper()

	h, err := host.New(delegate, preprocess, []string{"**/*.ext.src"}, incremental.NewCache(0))
	require.NoError(t, err)
	return h
}

func TestHostServesPreprocessed(t *testing.T) {
	t.Parallel()

	files := source.NewMap(nil)
	files.Add("pkg/a.ext.src", "ext code")

	pre := new(upper)
	h := newHost(t, files, pre)

	file, err := h.Open("pkg/a.ext.src")
	require.NoError(t, err)
	assert.Equal(t, "EXT CODE", file.Text())
	assert.NotNil(t, h.SourceMap("pkg/a.ext.src"))
	assert.Len(t, h.Diagnostics("pkg/a.ext.src"), 1)
}

func TestHostFallsThrough(t *testing.T) {
	t.Parallel()

	files := source.NewMap(nil)
	files.Add("pkg/plain.src", "ext but not intercepted")

	pre := new(upper)
	h := newHost(t, files, pre)

	file, err := h.Open("pkg/plain.src")
	require.NoError(t, err)
	assert.Equal(t, "ext but not intercepted", file.Text())
	assert.Zero(t, pre.calls, "non-intercepted files never touch the preprocessor")
	assert.Nil(t, h.SourceMap("pkg/plain.src"))
}

func TestHostUnchangedServedAsIs(t *testing.T) {
	t.Parallel()

	files := source.NewMap(nil)
	files.Add("pkg/a.ext.src", "nothing to do")

	pre := new(upper)
	h := newHost(t, files, pre)

	file, err := h.Open("pkg/a.ext.src")
	require.NoError(t, err)
	assert.Equal(t, "nothing to do", file.Text())
	assert.Equal(t, 1, pre.calls)
	assert.Nil(t, h.SourceMap("pkg/a.ext.src"), "unchanged files need no remapping")
}

func TestHostCachesByContentHash(t *testing.T) {
	t.Parallel()

	files := source.NewMap(nil)
	files.Add("pkg/a.ext.src", "ext code")

	pre := new(upper)
	h := newHost(t, files, pre)

	first, err := h.Open("pkg/a.ext.src")
	require.NoError(t, err)
	second, err := h.Open("pkg/a.ext.src")
	require.NoError(t, err)

	assert.Equal(t, 1, pre.calls, "second open must hit the cache")
	assert.Same(t, first, second)
}

func TestHostReprocessesOnEdit(t *testing.T) {
	t.Parallel()

	files := source.NewMap(nil)
	files.Add("pkg/a.ext.src", "ext one")

	pre := new(upper)
	h := newHost(t, files, pre)

	_, err := h.Open("pkg/a.ext.src")
	require.NoError(t, err)

	files.Add("pkg/a.ext.src", "ext two")
	file, err := h.Open("pkg/a.ext.src")
	require.NoError(t, err)

	assert.Equal(t, "EXT TWO", file.Text())
	assert.Equal(t, 2, pre.calls)
}

func TestHostSyntheticFiles(t *testing.T) {
	t.Parallel()

	overlay := source.NewMap(nil)
	overlay.Add("gen/synthetic.ext.src", "ext generated")
	disk := source.NewMap(nil)
	disk.Add("pkg/real.ext.src", "ext real")

	h := newHost(t, &source.Openers{overlay, disk}, new(upper))

	file, err := h.Open("gen/synthetic.ext.src")
	require.NoError(t, err)
	assert.Equal(t, "EXT GENERATED", file.Text())

	file, err = h.Open("pkg/real.ext.src")
	require.NoError(t, err)
	assert.Equal(t, "EXT REAL", file.Text())
}

func TestHostMissingFile(t *testing.T) {
	t.Parallel()

	h := newHost(t, source.NewMap(nil), new(upper))
	_, err := h.Open("missing.ext.src")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestHostRejectsBadPattern(t *testing.T) {
	t.Parallel()

	_, err := host.New(source.NewMap(nil), new(upper), []string{"[unclosed"}, incremental.NewCache(0))
	assert.Error(t, err)
}
