// Copyright 2025 The bookvec Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package checkpoint records which vectors an upload run has already
// written, keyed by upload target, so an interrupted run resumes where it
// stopped instead of re-embedding everything. Entries carry a content
// checksum: a chunk whose text changed since the last run is uploaded again
// even though its id is already marked.
//
// The ledger is a local BadgerDB database. Tests open it in memory.
package checkpoint
