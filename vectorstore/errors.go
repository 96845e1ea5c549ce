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


package vectorstore

import "errors"

var (
	// ErrMissingID indicates an item without an id.
	ErrMissingID = errors.New("item id cannot be empty")

	// ErrEmptyVector indicates an item without an embedding.
	ErrEmptyVector = errors.New("item vector cannot be empty")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// store's embedding dimension. Changing dimension is a manual migration.
	ErrDimensionMismatch = errors.New("vector dimension does not match store")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("vector store is closed")
)
