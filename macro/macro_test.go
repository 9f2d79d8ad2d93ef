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

package macro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/retrofit/macro"
)

type named string

func (n named) Name() string { return string(n) }
func (n named) Expand(macro.Context, macro.Node, []macro.Node) (macro.Node, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := macro.NewRegistry()
	require.NoError(t, registry.Register(named("typeinfo")))
	require.NoError(t, registry.Register(named("derive")))

	m, ok := registry.Lookup("derive")
	require.True(t, ok)
	assert.Equal(t, "derive", m.Name())

	_, ok = registry.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"derive", "typeinfo"}, registry.Names(),
		"names are deterministic regardless of registration order")
}

func TestRegistryRejects(t *testing.T) {
	t.Parallel()

	registry := macro.NewRegistry()
	require.NoError(t, registry.Register(named("typeinfo")))

	assert.Error(t, registry.Register(named("typeinfo")), "duplicate name")
	assert.Error(t, registry.Register(named("")), "empty name")
}
