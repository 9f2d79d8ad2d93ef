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

// Package rewrite implements the rewriting passes that turn extended
// syntax into text the host language's own parser accepts.
//
// [Operators] eliminates custom infix operators by iterative text splicing,
// selecting occurrences in precedence order and suppressing any that sit in
// a type context. [KindAnnotations] canonicalizes higher-kinded type
// parameter declarations and their use sites. The two passes are
// independent and never need to coordinate precedence with each other.
package rewrite
