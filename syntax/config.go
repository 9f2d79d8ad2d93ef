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

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration format for declaring operators without
// writing Go, e.g.:
//
//	operators:
//	  - symbol: "+"
//	    precedence: 1
//	    associativity: left
//	    expand: "add($1, $2)"
//
// The expand template substitutes $1 for the left operand's text and $2 for
// the right operand's.
type Config struct {
	Operators []OperatorConfig `yaml:"operators"`
}

// OperatorConfig declares one operator in a [Config].
type OperatorConfig struct {
	Symbol        string `yaml:"symbol"`
	Precedence    int    `yaml:"precedence"`
	Associativity string `yaml:"associativity"`
	Expand        string `yaml:"expand"`
}

// LoadConfig parses a YAML operator configuration and converts it into
// [Operator] values ready for registration.
func LoadConfig(text []byte) ([]Operator, error) {
	var config Config
	if err := yaml.Unmarshal(text, &config); err != nil {
		return nil, fmt.Errorf("syntax: invalid operator config: %w", err)
	}

	operators := make([]Operator, 0, len(config.Operators))
	for _, oc := range config.Operators {
		op, err := oc.Operator()
		if err != nil {
			return nil, err
		}
		operators = append(operators, op)
	}
	return operators, nil
}

// Operator converts this configuration entry into an [Operator].
func (oc OperatorConfig) Operator() (Operator, error) {
	if oc.Symbol == "" {
		return Operator{}, fmt.Errorf("syntax: operator config is missing a symbol")
	}
	if !strings.Contains(oc.Expand, "$1") || !strings.Contains(oc.Expand, "$2") {
		return Operator{}, fmt.Errorf("syntax: expand template for %q must mention $1 and $2", oc.Symbol)
	}

	var assoc Associativity
	switch oc.Associativity {
	case "left", "":
		assoc = Left
	case "right":
		assoc = Right
	default:
		return Operator{}, fmt.Errorf("syntax: unknown associativity %q for %q", oc.Associativity, oc.Symbol)
	}

	template := oc.Expand
	return Operator{
		Symbol:     oc.Symbol,
		Precedence: oc.Precedence,
		Assoc:      assoc,
		Transform: func(left, right string) string {
			expanded := strings.ReplaceAll(template, "$1", left)
			return strings.ReplaceAll(expanded, "$2", right)
		},
	}, nil
}
