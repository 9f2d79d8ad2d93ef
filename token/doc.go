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

// Package token defines the tokens the scanner produces and the stream and
// cursor types that syntax extensions use for structural lookahead.
//
// Tokens are plain immutable values that live for the duration of one
// tokenization pass. A [Stream] owns the tokens for one file; a [Cursor] is
// a rewindable read view over a stream. Neither has side effects on the
// underlying file.
package token
