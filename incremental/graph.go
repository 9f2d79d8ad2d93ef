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

package incremental

import "slices"

// Graph tracks which files each file's transformation depended on.
//
// It keeps a forward adjacency map (file -> files it depends on) and a
// reverse one (file -> files that depend on it), mutually consistent on
// every [Graph.SetDependencies] call. The graph may contain cycles, e.g.
// mutually dependent files; every traversal marks visited nodes and
// terminates.
//
// Files are addressed by name; there is no separate file-ID type.
//
// A Graph is not synchronized; [Cache] guards its graph with the cache
// mutex.
type Graph struct {
	fwd map[string]map[string]struct{}
	rev map[string]map[string]struct{}
}

// NewGraph returns an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		fwd: make(map[string]map[string]struct{}),
		rev: make(map[string]map[string]struct{}),
	}
}

// SetDependencies records that path depends on exactly deps, replacing
// whatever was recorded before. Old reverse edges are removed before the
// new ones are added, so the two adjacency maps never disagree.
func (g *Graph) SetDependencies(path string, deps []string) {
	for old := range g.fwd[path] {
		delete(g.rev[old], path)
		if len(g.rev[old]) == 0 {
			delete(g.rev, old)
		}
	}

	if len(deps) == 0 {
		delete(g.fwd, path)
		return
	}

	edges := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		edges[dep] = struct{}{}

		if g.rev[dep] == nil {
			g.rev[dep] = make(map[string]struct{})
		}
		g.rev[dep][path] = struct{}{}
	}
	g.fwd[path] = edges
}

// DependenciesOf returns the files path directly depends on, sorted.
func (g *Graph) DependenciesOf(path string) []string {
	return sortedKeys(g.fwd[path])
}

// DependentsOf returns the files that directly depend on path, sorted.
func (g *Graph) DependentsOf(path string) []string {
	return sortedKeys(g.rev[path])
}

// TransitiveDependents returns every file whose transformation depended,
// directly or indirectly, on path, sorted.
//
// The traversal is cycle-safe: if path participates in a dependency cycle
// it appears in its own result.
func (g *Graph) TransitiveDependents(path string) []string {
	visited := make(map[string]bool)

	queue := sortedKeys(g.rev[path])
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true

		queue = append(queue, sortedKeys(g.rev[next])...)
	}

	return sortedKeys(visited)
}

// Clear removes every edge.
func (g *Graph) Clear() {
	clear(g.fwd)
	clear(g.rev)
}

func sortedKeys[V any](set map[string]V) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
