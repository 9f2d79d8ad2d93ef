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

// Package macro defines the capability contract between macro
// implementations and the transformation engine.
//
// A [Macro] never talks to the compiler directly. Everything it may do,
// such as querying types, minting fresh names, parsing code fragments, and
// constructing replacement nodes, flows through the [Context] it is handed,
// so the engine can observe which files an expansion consulted and record
// them as dependencies for incremental invalidation.
package macro

import (
	"fmt"
	"sort"

	"github.com/bufbuild/retrofit/report"
)

// Node is an opaque handle to a syntax tree node owned by the underlying
// compiler. Macros receive and return Nodes but never inspect their
// representation; all structure queries go through [Context].
type Node interface {
	// Span returns the node's position as offsets into its file, for
	// diagnostics. A synthesized node returns ok = false.
	Span() (path string, start, end int, ok bool)
}

// Type is an opaque handle to a resolved type.
type Type interface {
	// String renders the type the way the host compiler would print it.
	String() string
}

// Property describes one member of a resolved type.
type Property struct {
	Name     string
	Type     Type
	Optional bool
}

// Factory constructs replacement syntax nodes. The engine provides an
// implementation backed by the host compiler's node constructors.
type Factory interface {
	// Identifier creates an identifier reference node.
	Identifier(name string) Node
	// StringLiteral creates a string literal node.
	StringLiteral(value string) Node
	// NumberLiteral creates a numeric literal node.
	NumberLiteral(value float64) Node
	// Call creates a call expression node.
	Call(callee Node, args ...Node) Node
	// PropertyAccess creates a member access node, callee.name.
	PropertyAccess(receiver Node, name string) Node
	// Array creates an array literal node.
	Array(elements ...Node) Node
	// Object creates an object literal node from name/value pairs.
	Object(pairs ...ObjectProperty) Node
}

// ObjectProperty is one name/value pair of [Factory.Object].
type ObjectProperty struct {
	Name  string
	Value Node
}

// Context is the capability surface a macro expands against.
//
// Every type query made through a Context is tracked by the engine: if
// TypeOf or PropertiesOf resolves information out of another file, that
// file becomes a recorded dependency of the expansion.
type Context interface {
	// Factory returns the node factory for building replacements.
	Factory() Factory

	// TypeOf resolves the static type of an expression node.
	TypeOf(node Node) (Type, error)

	// PropertiesOf lists the members of a type, in declaration order.
	PropertiesOf(typ Type) ([]Property, error)

	// UniqueName mints an identifier that cannot collide with any name in
	// the file being expanded. hint seeds the generated name for
	// readability.
	UniqueName(hint string) string

	// ParseExpression parses a code fragment as an expression and returns
	// the resulting node. The fragment is parsed in isolation; names it
	// mentions resolve in the expansion site's scope.
	ParseExpression(code string) (Node, error)

	// ParseStatements parses a code fragment as a statement list.
	ParseStatements(code string) ([]Node, error)

	// Errorf reports an error diagnostic at node's position. The expansion
	// continues but the build fails.
	Errorf(node Node, format string, args ...any) *report.Diagnostic

	// Warnf reports a warning diagnostic at node's position.
	Warnf(node Node, format string, args ...any) *report.Diagnostic
}

// Macro rewrites one call expression during transformation.
type Macro interface {
	// Name returns the identifier that triggers this macro at a call site.
	Name() string

	// Expand replaces the call node with whatever the macro produces. args
	// are the call's argument nodes. Returning an error aborts this one
	// expansion; other expansions in the file still run.
	Expand(ctx Context, call Node, args []Node) (Node, error)
}

// Registry is an ordered collection of macros keyed by trigger name.
type Registry struct {
	byName map[string]Macro
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Macro)}
}

// Register adds a macro. Registering two macros with the same name is an
// error; expansion must never depend on registration racing.
func (r *Registry) Register(m Macro) error {
	name := m.Name()
	if name == "" {
		return fmt.Errorf("macro: cannot register macro with empty name")
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("macro: duplicate registration of %q", name)
	}
	r.byName[name] = m
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the macro registered under name, if any.
func (r *Registry) Lookup(name string) (Macro, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// Names returns the registered trigger names, sorted. Iteration over the
// registry is deterministic regardless of registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}
