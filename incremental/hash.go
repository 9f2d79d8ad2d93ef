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

import "hash/fnv"

// Hash is a fast, non-cryptographic digest of file text, used purely for
// cache-validity comparison.
type Hash uint64

// HashText digests text with FNV-64a.
func HashText(text string) Hash {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return Hash(h.Sum64())
}
