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

package syntax

import (
	"fmt"
	"strings"
	"unicode"
)

// Registry holds the syntax extensions registered for a build session.
//
// Extensions run in the stable order they were registered, structural
// extensions before operator extensions. A zero Registry is ready to use.
type Registry struct {
	structural []Structural
	operators  []Operator
	names      map[string]bool
}

// Register adds an extension to this registry.
//
// Returns an error if the extension's name is already taken, or if an
// [Operator]'s symbol is empty, contains whitespace, or has no Transform.
func (r *Registry) Register(ext Extension) error {
	name := ext.Name()
	if name == "" {
		return fmt.Errorf("syntax: extension has no name")
	}
	if r.names[name] {
		return fmt.Errorf("syntax: extension %q registered more than once", name)
	}

	switch ext := ext.(type) {
	case Operator:
		if strings.IndexFunc(ext.Symbol, unicode.IsSpace) != -1 {
			return fmt.Errorf("syntax: operator symbol %q contains whitespace", ext.Symbol)
		}
		if ext.Transform == nil {
			return fmt.Errorf("syntax: operator %q has no transform", ext.Symbol)
		}
		r.operators = append(r.operators, ext)
	case Structural:
		r.structural = append(r.structural, ext)
	default:
		return fmt.Errorf("syntax: extension %q is neither structural nor an operator", name)
	}

	if r.names == nil {
		r.names = make(map[string]bool)
	}
	r.names[name] = true
	return nil
}

// Structural returns the registered structural extensions in registration
// order. Callers must not modify the returned slice.
func (r *Registry) Structural() []Structural {
	return r.structural
}

// Operators returns the registered operator extensions in registration
// order. Callers must not modify the returned slice.
func (r *Registry) Operators() []Operator {
	return r.operators
}

// OperatorSymbols returns the symbols of every registered operator, in
// registration order. This is what the scanner consumes.
func (r *Registry) OperatorSymbols() []string {
	symbols := make([]string, len(r.operators))
	for i, op := range r.operators {
		symbols[i] = op.Symbol
	}
	return symbols
}
