// Package storage defines the persistence interfaces of the gateway.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/blizx/zenith/internal/domain"
)

// ErrNotFound indicates the requested record does not exist or belongs to
// another user.
var ErrNotFound = errors.New("record not found")

// ErrEmailTaken indicates a sign-up with an already registered email.
var ErrEmailTaken = errors.New("email already registered")

// User is a registered account. PasswordHash is a bcrypt digest and never
// leaves the storage layer except for verification.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// UserStore persists accounts.
type UserStore interface {
	// CreateUser inserts a new account. Returns ErrEmailTaken when the
	// email is already registered.
	CreateUser(ctx context.Context, user User) error
	// UserByEmail looks an account up by its (case-insensitive) email.
	UserByEmail(ctx context.Context, email string) (User, error)
	// UserByID looks an account up by ID.
	UserByID(ctx context.Context, id string) (User, error)
}

// ProfileStore persists one profile row per user.
type ProfileStore interface {
	// UpsertProfile inserts or replaces the user's profile.
	UpsertProfile(ctx context.Context, profile domain.Profile) error
	// ProfileByUserID returns the user's profile or ErrNotFound.
	ProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)
}

// TaskStore persists planner tasks.
type TaskStore interface {
	// CreateTask inserts a task row.
	CreateTask(ctx context.Context, task domain.Task) error
	// TasksByUserID lists the user's tasks newest first.
	TasksByUserID(ctx context.Context, userID string) ([]domain.Task, error)
	// TaskByID returns one of the user's tasks or ErrNotFound.
	TaskByID(ctx context.Context, userID, id string) (domain.Task, error)
	// UpdateTask replaces the mutable fields of one of the user's tasks.
	UpdateTask(ctx context.Context, userID string, task domain.Task) error
	// DeleteTask removes one of the user's tasks.
	DeleteTask(ctx context.Context, userID, id string) error
}

// PriorityStore persists focus-board items.
type PriorityStore interface {
	// CreatePriority inserts a focus-board row.
	CreatePriority(ctx context.Context, item domain.PriorityItem) error
	// PrioritiesByUserID lists the user's items oldest first.
	PrioritiesByUserID(ctx context.Context, userID string) ([]domain.PriorityItem, error)
	// PriorityByID returns one of the user's items or ErrNotFound.
	PriorityByID(ctx context.Context, userID, id string) (domain.PriorityItem, error)
	// UpdatePriority replaces the mutable fields of one of the user's items.
	UpdatePriority(ctx context.Context, userID string, item domain.PriorityItem) error
	// DeletePriority removes one of the user's items.
	DeletePriority(ctx context.Context, userID, id string) error
}

// NoteStore persists notes. Notes are immutable once written.
type NoteStore interface {
	// CreateNote inserts a note row.
	CreateNote(ctx context.Context, note domain.Note) error
	// NotesByUserID lists the user's notes newest first.
	NotesByUserID(ctx context.Context, userID string) ([]domain.Note, error)
	// DeleteNote removes one of the user's notes.
	DeleteNote(ctx context.Context, userID, id string) error
}

// Store is the full persistence surface of the gateway.
type Store interface {
	UserStore
	ProfileStore
	TaskStore
	PriorityStore
	NoteStore
}
