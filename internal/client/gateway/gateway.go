// Package gateway defines the client-side contract with the remote
// persistence gateway. The sync engine depends only on these interfaces;
// the HTTP implementation lives in internal/client/rest.
package gateway

import (
	"context"

	"github.com/blizx/zenith/internal/domain"
)

// Auth covers session lifecycle operations.
type Auth interface {
	// SignUp registers a new account and returns its fresh session.
	SignUp(ctx context.Context, email, password string) (domain.Session, error)
	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
	// SignOut revokes the current session.
	SignOut(ctx context.Context) error
	// Session returns the current session, or a zero session when there is
	// no signed-in user.
	Session(ctx context.Context) (domain.Session, error)
	// RequestPasswordReset asks the gateway to start a reset flow. It
	// succeeds whether or not the email is registered.
	RequestPasswordReset(ctx context.Context, email string) error
}

// Data covers the per-user collections. List queries filter by owner and
// return records in the gateway's fixed per-entity order.
type Data interface {
	Profile(ctx context.Context, userID string) (domain.Profile, error)
	UpsertProfile(ctx context.Context, profile domain.Profile) error

	Tasks(ctx context.Context, userID string) ([]domain.Task, error)
	InsertTask(ctx context.Context, task domain.Task) (domain.Task, error)
	UpdateTask(ctx context.Context, task domain.Task) error
	DeleteTask(ctx context.Context, id string) error

	Priorities(ctx context.Context, userID string) ([]domain.PriorityItem, error)
	InsertPriority(ctx context.Context, item domain.PriorityItem) (domain.PriorityItem, error)
	UpdatePriority(ctx context.Context, item domain.PriorityItem) error
	DeletePriority(ctx context.Context, id string) error

	Notes(ctx context.Context, userID string) ([]domain.Note, error)
	InsertNote(ctx context.Context, note domain.Note) (domain.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// Gateway is the full remote surface the client engine is built against.
type Gateway interface {
	Auth
	Data
}
