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

package incremental_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/retrofit/incremental"
)

func TestGraphEdges(t *testing.T) {
	t.Parallel()

	g := incremental.NewGraph()
	g.SetDependencies("app.src", []string{"lib.src", "util.src"})
	g.SetDependencies("other.src", []string{"lib.src"})

	assert.Empty(t, cmp.Diff([]string{"lib.src", "util.src"}, g.DependenciesOf("app.src")))
	assert.Empty(t, cmp.Diff([]string{"app.src", "other.src"}, g.DependentsOf("lib.src")))
	assert.Empty(t, g.DependenciesOf("lib.src"))
}

func TestGraphReplaceDependencies(t *testing.T) {
	t.Parallel()

	g := incremental.NewGraph()
	g.SetDependencies("app.src", []string{"old.src"})
	g.SetDependencies("app.src", []string{"new.src"})

	assert.Empty(t, g.DependentsOf("old.src"), "stale reverse edge must be removed")
	assert.Equal(t, []string{"app.src"}, g.DependentsOf("new.src"))
	assert.Equal(t, []string{"new.src"}, g.DependenciesOf("app.src"))

	g.SetDependencies("app.src", nil)
	assert.Empty(t, g.DependentsOf("new.src"))
	assert.Empty(t, g.DependenciesOf("app.src"))
}

func TestGraphTransitiveDependents(t *testing.T) {
	t.Parallel()

	// c -> b -> a, d -> b.
	g := incremental.NewGraph()
	g.SetDependencies("b.src", []string{"a.src"})
	g.SetDependencies("c.src", []string{"b.src"})
	g.SetDependencies("d.src", []string{"b.src"})

	assert.Empty(t, cmp.Diff(
		[]string{"b.src", "c.src", "d.src"},
		g.TransitiveDependents("a.src"),
	))
	assert.Empty(t, g.TransitiveDependents("c.src"))
}

func TestGraphCycle(t *testing.T) {
	t.Parallel()

	// a and b depend on each other; traversal must terminate and report
	// both.
	g := incremental.NewGraph()
	g.SetDependencies("a.src", []string{"b.src"})
	g.SetDependencies("b.src", []string{"a.src"})

	assert.Empty(t, cmp.Diff([]string{"a.src", "b.src"}, g.TransitiveDependents("a.src")))
	assert.Empty(t, cmp.Diff([]string{"a.src", "b.src"}, g.TransitiveDependents("b.src")))
}

func TestGraphClear(t *testing.T) {
	t.Parallel()

	g := incremental.NewGraph()
	g.SetDependencies("a.src", []string{"b.src"})
	g.Clear()

	assert.Empty(t, g.DependenciesOf("a.src"))
	assert.Empty(t, g.DependentsOf("b.src"))
}
