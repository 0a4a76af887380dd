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


// Package retrieval finds candidate documents for a query.
//
// A query is embedded and matched against the stored chunk vectors; chunk
// hits are deduplicated to their parent documents, each document keeping
// its best chunk similarity. The resulting candidates feed the scoring
// stage, which makes the actual relevance decision.
package retrieval
