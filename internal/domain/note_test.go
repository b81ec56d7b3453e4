package domain

import (
	"errors"
	"testing"
)

func TestCreateNoteDefaults(t *testing.T) {
	note, err := CreateNote(CreateNoteInput{
		UserID:  "user-1",
		Content: "Observed deep focus after lunch.",
	}, fixedNow, staticID("note-1"))
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	if note.Title != DefaultNoteTitle {
		t.Fatalf("expected default title %q, got %q", DefaultNoteTitle, note.Title)
	}
	if note.DateLabel != DefaultNoteDateLabel {
		t.Fatalf("expected default date label %q, got %q", DefaultNoteDateLabel, note.DateLabel)
	}
	if note.Content != "Observed deep focus after lunch." {
		t.Fatalf("unexpected content %q", note.Content)
	}
}

func TestCreateNoteRejectsEmpty(t *testing.T) {
	_, err := CreateNote(CreateNoteInput{UserID: "user-1", Title: "  ", Content: "   "}, fixedNow, staticID("note-1"))
	if !errors.Is(err, ErrNoteEmpty) {
		t.Fatalf("expected %v, got %v", ErrNoteEmpty, err)
	}
}

func TestCreateNoteKeepsExplicitTitle(t *testing.T) {
	note, err := CreateNote(CreateNoteInput{
		UserID:    "user-1",
		Title:     "Morning pages",
		DateLabel: "May 1",
	}, fixedNow, staticID("note-1"))
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if note.Title != "Morning pages" {
		t.Fatalf("expected explicit title kept, got %q", note.Title)
	}
	if note.DateLabel != "May 1" {
		t.Fatalf("expected explicit date label kept, got %q", note.DateLabel)
	}
}
