package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestDocumentID(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("deterministic", func(t *testing.T) {
		id1 := DocumentID("Election results announced", date)
		id2 := DocumentID("Election results announced", date)
		if id1 != id2 {
			t.Errorf("DocumentID() produced different IDs for same inputs: %d vs %d", id1, id2)
		}
	})

	t.Run("title changes the ID", func(t *testing.T) {
		id1 := DocumentID("Election results announced", date)
		id2 := DocumentID("Storm warning issued", date)
		if id1 == id2 {
			t.Errorf("DocumentID() produced same ID for different titles")
		}
	})

	t.Run("date changes the ID", func(t *testing.T) {
		id1 := DocumentID("Election results announced", date)
		id2 := DocumentID("Election results announced", date.AddDate(0, 0, 1))
		if id1 == id2 {
			t.Errorf("DocumentID() produced same ID for different dates")
		}
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		id1 := DocumentID("Election results announced", date)
		id2 := DocumentID("Election results announced", date.Add(13*time.Hour))
		if id1 != id2 {
			t.Errorf("DocumentID() should only depend on the calendar date")
		}
	})
}
