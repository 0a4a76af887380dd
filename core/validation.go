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


package core

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - FullContent must not be empty
//   - Date must be set and not in the future
//
// NOT validated:
//   - ShortSummary (stores may omit it; judgment prompts fall back to content)
//   - ID (0 is valid before the document is assigned its content-based ID)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if doc.FullContent == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if !IsValidDate(doc.Date) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidDate)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - DocumentId must reference a document
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the chunk is embedded)
//   - ID (0 is valid from database sequences)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.DocumentId == 0 {
		return fmt.Errorf("%w: document id is required", ErrInvalidChunk)
	}

	return nil
}

// ValidateScoredDocument validates a ScoredDocument according to domain rules.
//
// Validation rules:
//   - AverageScore must be within [0,100]
//   - Title must not be empty
func ValidateScoredDocument(doc *ScoredDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: scored document is nil", ErrInvalidScoredDocument)
	}

	if doc.AverageScore < 0 || doc.AverageScore > 100 {
		return fmt.Errorf("%w: %w", ErrInvalidScoredDocument, ErrScoreOutOfRange)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidScoredDocument, ErrEmptyTitle)
	}

	return nil
}

// IsValidDate reports whether a publication date is set and not in the future.
func IsValidDate(date time.Time) bool {
	if date.IsZero() {
		return false
	}
	return !date.After(time.Now().UTC())
}
