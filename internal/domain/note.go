package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/blizx/zenith/internal/platform/errors"
	"github.com/blizx/zenith/internal/platform/id"
)

// ErrNoteEmpty indicates a note with neither title nor content.
var ErrNoteEmpty = apperrors.New(apperrors.CodeNoteEmpty, "note needs a title or content")

const (
	// DefaultNoteTitle is used when a note is logged without a title.
	DefaultNoteTitle = "Untitled"
	// DefaultNoteDateLabel is the free-text label stamped on new notes.
	DefaultNoteDateLabel = "Today"
)

// Note is a freeform insight. Notes are written once and deleted, never
// edited in place.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	DateLabel string    `json:"date_label"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateNoteInput describes the metadata needed to create a note.
type CreateNoteInput struct {
	UserID    string
	Title     string
	Content   string
	DateLabel string
}

// NormalizeCreateNoteInput trims strings and applies default labels.
func NormalizeCreateNoteInput(input CreateNoteInput) (CreateNoteInput, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Title = strings.TrimSpace(input.Title)
	input.DateLabel = strings.TrimSpace(input.DateLabel)

	if input.Title == "" && strings.TrimSpace(input.Content) == "" {
		return CreateNoteInput{}, ErrNoteEmpty
	}
	if input.Title == "" {
		input.Title = DefaultNoteTitle
	}
	if input.DateLabel == "" {
		input.DateLabel = DefaultNoteDateLabel
	}
	return input, nil
}

// CreateNote builds a note with a generated identifier and creation time.
func CreateNote(input CreateNoteInput, now func() time.Time, idGenerator func() (string, error)) (Note, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateNoteInput(input)
	if err != nil {
		return Note{}, err
	}

	noteID, err := idGenerator()
	if err != nil {
		return Note{}, fmt.Errorf("generate note id: %w", err)
	}

	return Note{
		ID:        noteID,
		UserID:    normalized.UserID,
		Title:     normalized.Title,
		Content:   input.Content,
		DateLabel: normalized.DateLabel,
		CreatedAt: now().UTC(),
	}, nil
}
