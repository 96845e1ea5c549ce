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


// Package vectorstore defines the storage abstraction the upload pipeline
// writes into. Upserting is keyed by item id: writing an id that already
// exists replaces it, which is what makes re-running an upload safe.
//
// Two production backends implement Store: vectorstore/pinecone for a
// Pinecone serverless index and vectorstore/pgvector for Postgres with the
// pgvector extension. Memory is an in-process implementation used by tests
// and dry runs.
package vectorstore
