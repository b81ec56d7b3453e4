package session

import (
	"context"
	"errors"
	"testing"

	"github.com/blizx/zenith/internal/domain"
)

// fakeGateway covers the auth surface plus the profile lookup publish
// performs. Fields left nil behave as successful no-ops.
type fakeGateway struct {
	sessionFn   func(ctx context.Context) (domain.Session, error)
	signInFn    func(ctx context.Context, email, password string) (domain.Session, error)
	signUpFn    func(ctx context.Context, email, password string) (domain.Session, error)
	signOutFn   func(ctx context.Context) error
	recoverFn   func(ctx context.Context, email string) error
	profileFn   func(ctx context.Context, userID string) (domain.Profile, error)
	signOutSeen bool
}

func (f *fakeGateway) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	if f.signUpFn == nil {
		return domain.Session{}, nil
	}
	return f.signUpFn(ctx, email, password)
}

func (f *fakeGateway) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	if f.signInFn == nil {
		return domain.Session{}, nil
	}
	return f.signInFn(ctx, email, password)
}

func (f *fakeGateway) SignOut(ctx context.Context) error {
	f.signOutSeen = true
	if f.signOutFn == nil {
		return nil
	}
	return f.signOutFn(ctx)
}

func (f *fakeGateway) Session(ctx context.Context) (domain.Session, error) {
	if f.sessionFn == nil {
		return domain.Session{}, nil
	}
	return f.sessionFn(ctx)
}

func (f *fakeGateway) RequestPasswordReset(ctx context.Context, email string) error {
	if f.recoverFn == nil {
		return nil
	}
	return f.recoverFn(ctx, email)
}

func (f *fakeGateway) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	if f.profileFn == nil {
		return domain.Profile{}, nil
	}
	return f.profileFn(ctx, userID)
}

func (f *fakeGateway) UpsertProfile(context.Context, domain.Profile) error { return nil }

func (f *fakeGateway) Tasks(context.Context, string) ([]domain.Task, error) { return nil, nil }

func (f *fakeGateway) InsertTask(_ context.Context, task domain.Task) (domain.Task, error) {
	return task, nil
}

func (f *fakeGateway) UpdateTask(context.Context, domain.Task) error { return nil }

func (f *fakeGateway) DeleteTask(context.Context, string) error { return nil }

func (f *fakeGateway) Priorities(context.Context, string) ([]domain.PriorityItem, error) {
	return nil, nil
}

func (f *fakeGateway) InsertPriority(_ context.Context, item domain.PriorityItem) (domain.PriorityItem, error) {
	return item, nil
}

func (f *fakeGateway) UpdatePriority(context.Context, domain.PriorityItem) error { return nil }

func (f *fakeGateway) DeletePriority(context.Context, string) error { return nil }

func (f *fakeGateway) Notes(context.Context, string) ([]domain.Note, error) { return nil, nil }

func (f *fakeGateway) InsertNote(_ context.Context, note domain.Note) (domain.Note, error) {
	return note, nil
}

func (f *fakeGateway) DeleteNote(context.Context, string) error { return nil }

func activeSession() domain.Session {
	return domain.Session{UserID: "user-1", Email: "ada@example.com", AccessToken: "tok"}
}

func TestInitializePublishesExistingSession(t *testing.T) {
	fake := &fakeGateway{
		sessionFn: func(context.Context) (domain.Session, error) {
			return activeSession(), nil
		},
	}
	store := New(fake)

	var seen []domain.Session
	store.Subscribe(func(s domain.Session) { seen = append(seen, s) })

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(seen) != 1 || seen[0].UserID != "user-1" {
		t.Fatalf("expected one notification for user-1, got %v", seen)
	}
	if got := store.Session(); !got.Active() {
		t.Fatal("expected active session after initialize")
	}
}

func TestInitializeWithoutSessionNotifiesNobody(t *testing.T) {
	store := New(&fakeGateway{})

	var calls int
	store.Subscribe(func(domain.Session) { calls++ })

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notifications without a session, got %d", calls)
	}
}

func TestSignInErrorReturnedVerbatimAndNotPublished(t *testing.T) {
	authErr := errors.New("invalid login credentials")
	fake := &fakeGateway{
		signInFn: func(context.Context, string, string) (domain.Session, error) {
			return domain.Session{}, authErr
		},
	}
	store := New(fake)

	var calls int
	store.Subscribe(func(domain.Session) { calls++ })

	if err := store.SignIn(context.Background(), "ada@example.com", "nope"); !errors.Is(err, authErr) {
		t.Fatalf("expected gateway error verbatim, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notification on failed sign-in, got %d", calls)
	}
}

func TestSignOutNotifiesSubscribersBeforeReturning(t *testing.T) {
	fake := &fakeGateway{
		signInFn: func(context.Context, string, string) (domain.Session, error) {
			return activeSession(), nil
		},
	}
	store := New(fake)

	var cleared bool
	store.Subscribe(func(s domain.Session) {
		if !s.Active() {
			cleared = true
		}
	})

	if err := store.SignIn(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := store.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if !cleared {
		t.Fatal("expected subscriber to see the empty session before SignOut returned")
	}
	if !fake.signOutSeen {
		t.Fatal("expected gateway sign-out call")
	}
	if store.Session().Active() {
		t.Fatal("expected empty session after sign-out")
	}
}

func TestProfileLoadFailureFallsBackToEmptyProfile(t *testing.T) {
	fake := &fakeGateway{
		signInFn: func(context.Context, string, string) (domain.Session, error) {
			return activeSession(), nil
		},
		profileFn: func(context.Context, string) (domain.Profile, error) {
			return domain.Profile{}, errors.New("profiles table unavailable")
		},
	}
	var logged int
	store := New(fake, WithLogf(func(string, ...any) { logged++ }))

	if err := store.SignIn(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	profile, loaded := store.Profile()
	if !loaded {
		t.Fatal("expected profile load to be marked complete despite the failure")
	}
	if profile.OnboardingComplete {
		t.Fatal("expected empty fallback profile")
	}
	if logged != 1 {
		t.Fatalf("expected 1 logged failure, got %d", logged)
	}
}

func TestProfileLoadedOnSignIn(t *testing.T) {
	fake := &fakeGateway{
		signInFn: func(context.Context, string, string) (domain.Session, error) {
			return activeSession(), nil
		},
		profileFn: func(_ context.Context, userID string) (domain.Profile, error) {
			return domain.Profile{UserID: userID, DisplayName: "Ada", OnboardingComplete: true}, nil
		},
	}
	store := New(fake)

	if err := store.SignIn(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	profile, loaded := store.Profile()
	if !loaded || profile.DisplayName != "Ada" {
		t.Fatalf("expected Ada's profile loaded, got %+v loaded=%v", profile, loaded)
	}
}
