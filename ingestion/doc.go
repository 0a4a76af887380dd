// Copyright 2025 Poiesic Systems
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


// Package ingestion stores documents and builds their searchable chunks.
//
// Each document's content is split into overlapping fragments, embedded,
// and persisted alongside the document. Embedding fans out over a worker
// pool across documents; a document whose embedding fails is kept, its
// chunks are simply absent until re-ingested.
package ingestion
