package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blizx/zenith/internal/domain"
	"github.com/blizx/zenith/internal/platform/id"
)

// fakeData is a function-field fake of the gateway data surface. Unset
// fields behave as successful no-ops.
type fakeData struct {
	profileFn        func(ctx context.Context, userID string) (domain.Profile, error)
	upsertProfileFn  func(ctx context.Context, profile domain.Profile) error
	tasksFn          func(ctx context.Context, userID string) ([]domain.Task, error)
	insertTaskFn     func(ctx context.Context, task domain.Task) (domain.Task, error)
	updateTaskFn     func(ctx context.Context, task domain.Task) error
	deleteTaskFn     func(ctx context.Context, id string) error
	prioritiesFn     func(ctx context.Context, userID string) ([]domain.PriorityItem, error)
	insertPriorityFn func(ctx context.Context, item domain.PriorityItem) (domain.PriorityItem, error)
	updatePriorityFn func(ctx context.Context, item domain.PriorityItem) error
	deletePriorityFn func(ctx context.Context, id string) error
	notesFn          func(ctx context.Context, userID string) ([]domain.Note, error)
	insertNoteFn     func(ctx context.Context, note domain.Note) (domain.Note, error)
	deleteNoteFn     func(ctx context.Context, id string) error
}

func (f *fakeData) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	if f.profileFn == nil {
		return domain.Profile{}, nil
	}
	return f.profileFn(ctx, userID)
}

func (f *fakeData) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	if f.upsertProfileFn == nil {
		return nil
	}
	return f.upsertProfileFn(ctx, profile)
}

func (f *fakeData) Tasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if f.tasksFn == nil {
		return nil, nil
	}
	return f.tasksFn(ctx, userID)
}

func (f *fakeData) InsertTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	if f.insertTaskFn == nil {
		return task, nil
	}
	return f.insertTaskFn(ctx, task)
}

func (f *fakeData) UpdateTask(ctx context.Context, task domain.Task) error {
	if f.updateTaskFn == nil {
		return nil
	}
	return f.updateTaskFn(ctx, task)
}

func (f *fakeData) DeleteTask(ctx context.Context, id string) error {
	if f.deleteTaskFn == nil {
		return nil
	}
	return f.deleteTaskFn(ctx, id)
}

func (f *fakeData) Priorities(ctx context.Context, userID string) ([]domain.PriorityItem, error) {
	if f.prioritiesFn == nil {
		return nil, nil
	}
	return f.prioritiesFn(ctx, userID)
}

func (f *fakeData) InsertPriority(ctx context.Context, item domain.PriorityItem) (domain.PriorityItem, error) {
	if f.insertPriorityFn == nil {
		return item, nil
	}
	return f.insertPriorityFn(ctx, item)
}

func (f *fakeData) UpdatePriority(ctx context.Context, item domain.PriorityItem) error {
	if f.updatePriorityFn == nil {
		return nil
	}
	return f.updatePriorityFn(ctx, item)
}

func (f *fakeData) DeletePriority(ctx context.Context, id string) error {
	if f.deletePriorityFn == nil {
		return nil
	}
	return f.deletePriorityFn(ctx, id)
}

func (f *fakeData) Notes(ctx context.Context, userID string) ([]domain.Note, error) {
	if f.notesFn == nil {
		return nil, nil
	}
	return f.notesFn(ctx, userID)
}

func (f *fakeData) InsertNote(ctx context.Context, note domain.Note) (domain.Note, error) {
	if f.insertNoteFn == nil {
		return note, nil
	}
	return f.insertNoteFn(ctx, note)
}

func (f *fakeData) DeleteNote(ctx context.Context, id string) error {
	if f.deleteNoteFn == nil {
		return nil
	}
	return f.deleteNoteFn(ctx, id)
}

func discardLogf(string, ...any) {}

func seededStore(t *testing.T, fake *fakeData, userID string) *Store {
	t.Helper()
	store := New(fake, WithClock(fixedNow), WithLogf(discardLogf))
	store.FetchAll(context.Background(), userID)
	store.Wait()
	return store
}

func fixedNow() time.Time {
	return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
}

func TestCreateTaskIsVisibleBeforeRemoteInsertCompletes(t *testing.T) {
	release := make(chan struct{})
	fake := &fakeData{
		insertTaskFn: func(_ context.Context, task domain.Task) (domain.Task, error) {
			<-release
			task.ID = "server-1"
			return task, nil
		},
	}
	store := seededStore(t, fake, "user-1")

	created, err := store.CreateTask(context.Background(), domain.CreateTaskInput{
		Title: "Write minutes",
		Date:  "2026-05-01",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task before remote insert finished, got %d", len(tasks))
	}
	if !id.IsPending(tasks[0].ID) {
		t.Fatalf("expected pending id before reconciliation, got %q", tasks[0].ID)
	}
	if tasks[0].Status != domain.TaskStatusTodo {
		t.Fatalf("expected new task status todo, got %q", tasks[0].Status)
	}

	close(release)
	store.Wait()

	tasks = store.Tasks()
	if tasks[0].ID != "server-1" {
		t.Fatalf("expected server id after reconciliation, got %q", tasks[0].ID)
	}
	if created.ID == tasks[0].ID {
		t.Fatal("expected temp id and server id to differ")
	}
}

func TestToggleThroughTempIDReachesReconciledRecord(t *testing.T) {
	var mu sync.Mutex
	var updates []domain.Task
	fake := &fakeData{
		insertTaskFn: func(_ context.Context, task domain.Task) (domain.Task, error) {
			task.ID = "server-1"
			return task, nil
		},
		updateTaskFn: func(_ context.Context, task domain.Task) error {
			mu.Lock()
			updates = append(updates, task)
			mu.Unlock()
			return nil
		},
	}
	store := seededStore(t, fake, "user-1")

	created, err := store.CreateTask(context.Background(), domain.CreateTaskInput{
		Title: "Review PR",
		Date:  "2026-05-01",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	store.Wait()

	store.ToggleTaskStatus(context.Background(), created.ID)
	store.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(updates) != 1 {
		t.Fatalf("expected 1 remote update, got %d", len(updates))
	}
	if updates[0].ID != "server-1" {
		t.Fatalf("expected update addressed to server id, got %q", updates[0].ID)
	}
	if updates[0].Status != domain.TaskStatusDone {
		t.Fatalf("expected update to carry done, got %q", updates[0].Status)
	}
}

func TestResetDiscardsLateFetchResults(t *testing.T) {
	release := make(chan struct{})
	fake := &fakeData{
		tasksFn: func(_ context.Context, userID string) ([]domain.Task, error) {
			<-release
			return []domain.Task{{ID: "t-1", UserID: userID, Title: "stale"}}, nil
		},
	}
	store := New(fake, WithLogf(discardLogf))

	store.FetchAll(context.Background(), "user-a")
	store.Reset()
	close(release)
	store.Wait()

	if got := store.Tasks(); len(got) != 0 {
		t.Fatalf("expected stale fetch to be discarded, got %d tasks", len(got))
	}
}

func TestFetchAllForNewUserDiscardsPreviousUsersLateFetch(t *testing.T) {
	releaseA := make(chan struct{})
	fake := &fakeData{
		tasksFn: func(_ context.Context, userID string) ([]domain.Task, error) {
			if userID == "user-a" {
				<-releaseA
				return []domain.Task{{ID: "t-a", UserID: userID, Title: "a's plans"}}, nil
			}
			return []domain.Task{{ID: "t-b", UserID: userID, Title: "b's plans"}}, nil
		},
	}
	store := New(fake, WithLogf(discardLogf))

	store.FetchAll(context.Background(), "user-a")
	store.FetchAll(context.Background(), "user-b")
	close(releaseA)
	store.Wait()

	got := store.Tasks()
	if len(got) != 1 {
		t.Fatalf("expected 1 task, got %d", len(got))
	}
	if got[0].UserID != "user-b" {
		t.Fatalf("expected user-b's task after switching users, got one owned by %q", got[0].UserID)
	}
}

func TestDoubleToggleSendsBothIntermediateStates(t *testing.T) {
	var mu sync.Mutex
	var statuses []domain.TaskStatus
	fake := &fakeData{
		updateTaskFn: func(_ context.Context, task domain.Task) error {
			mu.Lock()
			statuses = append(statuses, task.Status)
			mu.Unlock()
			return nil
		},
	}
	store := seededStore(t, fake, "user-1")
	if _, err := store.CreateTask(context.Background(), domain.CreateTaskInput{Title: "x", Date: "2026-05-01"}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	store.Wait()
	taskID := store.Tasks()[0].ID

	store.ToggleTaskStatus(context.Background(), taskID)
	store.Wait()
	store.ToggleTaskStatus(context.Background(), taskID)
	store.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 remote updates, got %d", len(statuses))
	}
	if statuses[0] != domain.TaskStatusDone || statuses[1] != domain.TaskStatusTodo {
		t.Fatalf("expected updates [done todo], got %v", statuses)
	}
	if got := store.Tasks()[0].Status; got != domain.TaskStatusTodo {
		t.Fatalf("expected task back at todo, got %q", got)
	}
}

func TestCreateTaskKeepsLocalEntryWhenRemoteInsertFails(t *testing.T) {
	var mu sync.Mutex
	var logged []string
	fake := &fakeData{
		insertTaskFn: func(_ context.Context, task domain.Task) (domain.Task, error) {
			return domain.Task{}, errors.New("gateway unreachable")
		},
	}
	store := New(fake, WithLogf(func(format string, args ...any) {
		mu.Lock()
		logged = append(logged, fmt.Sprintf(format, args...))
		mu.Unlock()
	}))
	store.FetchAll(context.Background(), "user-1")
	store.Wait()

	if _, err := store.CreateTask(context.Background(), domain.CreateTaskInput{Title: "offline task", Date: "2026-05-01"}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	store.Wait()

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected local entry to survive remote failure, got %d tasks", len(tasks))
	}
	if tasks[0].Status != domain.TaskStatusTodo {
		t.Fatalf("expected surviving entry at todo, got %q", tasks[0].Status)
	}
	if !id.IsPending(tasks[0].ID) {
		t.Fatalf("expected entry to keep its temp id, got %q", tasks[0].ID)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(logged) != 1 || !strings.Contains(logged[0], "gateway unreachable") {
		t.Fatalf("expected failure to be logged, got %v", logged)
	}
}

func TestResetClearsNotesSynchronously(t *testing.T) {
	fake := &fakeData{
		notesFn: func(_ context.Context, userID string) ([]domain.Note, error) {
			return []domain.Note{{ID: "n-1", UserID: userID, Title: "kept thought"}}, nil
		},
	}
	store := seededStore(t, fake, "user-1")
	if len(store.Notes()) != 1 {
		t.Fatal("expected seeded note")
	}

	store.Reset()

	if got := store.Notes(); len(got) != 0 {
		t.Fatalf("expected notes cleared by the time Reset returns, got %d", len(got))
	}
	if _, ok := store.Profile(); ok {
		t.Fatal("expected profile cleared on reset")
	}
}

func TestDeleteTaskThroughTempID(t *testing.T) {
	var mu sync.Mutex
	var deleted []string
	fake := &fakeData{
		insertTaskFn: func(_ context.Context, task domain.Task) (domain.Task, error) {
			task.ID = "server-9"
			return task, nil
		},
		deleteTaskFn: func(_ context.Context, id string) error {
			mu.Lock()
			deleted = append(deleted, id)
			mu.Unlock()
			return nil
		},
	}
	store := seededStore(t, fake, "user-1")
	created, err := store.CreateTask(context.Background(), domain.CreateTaskInput{Title: "x", Date: "2026-05-01"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	store.Wait()

	store.DeleteTask(context.Background(), created.ID)
	store.Wait()

	if got := store.Tasks(); len(got) != 0 {
		t.Fatalf("expected task removed locally, got %d", len(got))
	}
	mu.Lock()
	defer mu.Unlock()
	if len(deleted) != 1 || deleted[0] != "server-9" {
		t.Fatalf("expected remote delete of server-9, got %v", deleted)
	}
}

func TestFetchAllPopulatesCollectionsAndOwner(t *testing.T) {
	fake := &fakeData{
		tasksFn: func(_ context.Context, userID string) ([]domain.Task, error) {
			return []domain.Task{{ID: "t-1", UserID: userID}}, nil
		},
		prioritiesFn: func(_ context.Context, userID string) ([]domain.PriorityItem, error) {
			return []domain.PriorityItem{{ID: "p-1", UserID: userID}}, nil
		},
		notesFn: func(_ context.Context, userID string) ([]domain.Note, error) {
			return []domain.Note{{ID: "n-1", UserID: userID}}, nil
		},
	}
	store := seededStore(t, fake, "user-1")

	if len(store.Tasks()) != 1 || len(store.Priorities()) != 1 || len(store.Notes()) != 1 {
		t.Fatalf("expected all collections populated, got %d/%d/%d",
			len(store.Tasks()), len(store.Priorities()), len(store.Notes()))
	}

	created, err := store.CreateNote(context.Background(), domain.CreateNoteInput{Content: "new"})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if created.UserID != "user-1" {
		t.Fatalf("expected note stamped with current user, got %q", created.UserID)
	}
	if notes := store.Notes(); notes[0].ID != created.ID {
		t.Fatalf("expected new note prepended, got %q first", notes[0].ID)
	}
}

func TestSaveProfileAppliesLocallyAndUpserts(t *testing.T) {
	var mu sync.Mutex
	var upserts []domain.Profile
	fake := &fakeData{
		upsertProfileFn: func(_ context.Context, profile domain.Profile) error {
			mu.Lock()
			upserts = append(upserts, profile)
			mu.Unlock()
			return nil
		},
	}
	store := seededStore(t, fake, "user-1")

	saved, err := store.SaveProfile(context.Background(), domain.ProfileInput{
		DisplayName:        "Ada",
		OnboardingComplete: true,
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if saved.UserID != "user-1" {
		t.Fatalf("expected profile stamped with current user, got %q", saved.UserID)
	}

	profile, ok := store.Profile()
	if !ok || !profile.OnboardingComplete {
		t.Fatalf("expected onboarded profile available locally, got %+v ok=%v", profile, ok)
	}

	store.Wait()
	mu.Lock()
	defer mu.Unlock()
	if len(upserts) != 1 || upserts[0].DisplayName != "Ada" {
		t.Fatalf("expected 1 upsert with display name Ada, got %v", upserts)
	}
}

func TestPrioritiesAppendAndFilterByCell(t *testing.T) {
	store := seededStore(t, &fakeData{}, "user-1")

	first, err := store.CreatePriority(context.Background(), domain.CreatePriorityItemInput{
		Text: "a", Category: domain.CategoryWork, SubCategory: domain.SubCategoryMustDo,
	})
	if err != nil {
		t.Fatalf("create priority: %v", err)
	}
	second, err := store.CreatePriority(context.Background(), domain.CreatePriorityItemInput{
		Text: "b", Category: domain.CategoryWork, SubCategory: domain.SubCategoryMustDo,
	})
	if err != nil {
		t.Fatalf("create priority: %v", err)
	}

	items := store.PrioritiesIn(domain.CategoryWork, domain.SubCategoryMustDo)
	if len(items) != 2 {
		t.Fatalf("expected 2 items in cell, got %d", len(items))
	}
	if items[0].ID != first.ID || items[1].ID != second.ID {
		t.Fatal("expected items appended in creation order")
	}
	if got := store.PrioritiesIn(domain.CategoryPrivate, domain.SubCategoryBacklog); len(got) != 0 {
		t.Fatalf("expected empty cell, got %d", len(got))
	}
	store.Wait()
}
