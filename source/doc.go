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

// Package source provides the representation of source files that the rest
// of the preprocessor operates on, along with mechanisms for opening them.
//
// A [File] is an immutable (path, text) pair with a lazily-computed line
// index for resolving byte offsets into editor coordinates. An [Opener] is
// anything that can produce a *File for a path; [Map], [FS], and [Openers]
// cover the common cases (in-memory overlays, real filesystems, and
// fallback chains).
package source
