// Package state holds the client's in-memory entity collections and the
// optimistic mutation controller that keeps them ahead of the gateway.
//
// Every mutation applies locally first and then issues the remote write in
// the background. Remote failures are logged and never rolled back; a stale
// local record beats a blocked user. Background continuations carry the
// epoch they were issued under and are dropped if the store was reset, or
// refetched for a different user, in the meantime, so a slow response from
// one session can never leak into the next.
package state

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/blizx/zenith/internal/client/gateway"
	"github.com/blizx/zenith/internal/domain"
	"github.com/blizx/zenith/internal/platform/id"
)

// Store is the single source of truth for the signed-in user's collections.
type Store struct {
	gw gateway.Data

	mu         sync.Mutex
	epoch      uint64
	userID     string
	tasks      []domain.Task
	priorities []domain.PriorityItem
	notes      []domain.Note
	profile    domain.Profile
	hasProfile bool

	// aliases maps optimistic temp IDs to the server IDs assigned on
	// reconciliation, so callers holding the original reference keep
	// addressing the same logical record.
	aliases map[string]string

	pending sync.WaitGroup

	clock       func() time.Time
	idGenerator func() (string, error)
	logf        func(format string, args ...any)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator overrides the temp ID source.
func WithIDGenerator(idGenerator func() (string, error)) Option {
	return func(s *Store) { s.idGenerator = idGenerator }
}

// WithLogf overrides where remote failures are reported.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Store) { s.logf = logf }
}

// New creates an empty store backed by the given gateway.
func New(gw gateway.Data, opts ...Option) *Store {
	s := &Store{
		gw:          gw,
		aliases:     make(map[string]string),
		clock:       time.Now,
		idGenerator: id.NewPendingID,
		logf:        log.Printf,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAll loads the three collections for userID, each populating
// independently as its query returns. Results for a store that was reset,
// or that moved to another user, while the query was in flight are
// discarded. Switching owners advances the epoch so a slow response issued
// for the previous user can never land in the new user's collections.
func (s *Store) FetchAll(ctx context.Context, userID string) {
	s.mu.Lock()
	if s.userID != userID {
		s.epoch++
	}
	s.userID = userID
	epoch := s.epoch
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	s.pending.Add(3)
	go func() {
		defer s.pending.Done()
		tasks, err := s.gw.Tasks(ctx, userID)
		if err != nil {
			s.logf("fetch tasks: %v", err)
			return
		}
		s.ifCurrent(epoch, func() { s.tasks = tasks })
	}()
	go func() {
		defer s.pending.Done()
		priorities, err := s.gw.Priorities(ctx, userID)
		if err != nil {
			s.logf("fetch priorities: %v", err)
			return
		}
		s.ifCurrent(epoch, func() { s.priorities = priorities })
	}()
	go func() {
		defer s.pending.Done()
		notes, err := s.gw.Notes(ctx, userID)
		if err != nil {
			s.logf("fetch notes: %v", err)
			return
		}
		s.ifCurrent(epoch, func() { s.notes = notes })
	}()
}

// FetchProfile loads the user's profile. A missing profile is not an error;
// the store simply stays without one until onboarding saves it.
func (s *Store) FetchProfile(ctx context.Context, userID string) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		profile, err := s.gw.Profile(context.WithoutCancel(ctx), userID)
		if err != nil {
			s.logf("fetch profile: %v", err)
			return
		}
		s.ifCurrent(epoch, func() {
			s.profile = profile
			s.hasProfile = true
		})
	}()
}

// Reset clears every collection and advances the epoch so in-flight
// continuations from the previous session are discarded. It returns only
// after the store is empty, which lets the sign-out path guarantee the UI
// never shows another user's data.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.userID = ""
	s.tasks = nil
	s.priorities = nil
	s.notes = nil
	s.profile = domain.Profile{}
	s.hasProfile = false
	s.aliases = make(map[string]string)
}

// Wait blocks until all background remote operations issued so far have
// completed. Intended for shutdown and tests.
func (s *Store) Wait() {
	s.pending.Wait()
}

// ifCurrent runs apply under the lock only when the store is still on the
// given epoch.
func (s *Store) ifCurrent(epoch uint64, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	apply()
}

// resolveID follows the alias map from an optimistic temp ID to the server
// ID it reconciled to. IDs without an alias pass through unchanged.
func (s *Store) resolveID(recordID string) string {
	if serverID, ok := s.aliases[recordID]; ok {
		return serverID
	}
	return recordID
}

// CreateTask inserts the task locally under a temp ID and returns it
// immediately; the remote insert runs in the background and reconciles the
// temp ID to the server-assigned one on success.
func (s *Store) CreateTask(ctx context.Context, input domain.CreateTaskInput) (domain.Task, error) {
	s.mu.Lock()
	input.UserID = s.userID
	task, err := domain.CreateTask(input, s.clock, s.idGenerator)
	if err != nil {
		s.mu.Unlock()
		return domain.Task{}, err
	}
	s.tasks = append([]domain.Task{task}, s.tasks...)
	epoch := s.epoch
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		created, err := s.gw.InsertTask(context.WithoutCancel(ctx), task)
		if err != nil {
			s.logf("insert task %s: %v", task.ID, err)
			return
		}
		s.ifCurrent(epoch, func() {
			for i := range s.tasks {
				if s.tasks[i].ID == task.ID {
					current := s.tasks[i]
					current.ID = created.ID
					current.CreatedAt = created.CreatedAt
					s.tasks[i] = current
					break
				}
			}
			s.aliases[task.ID] = created.ID
		})
	}()
	return task, nil
}

// ToggleTaskStatus flips the task between done and todo, locally first,
// then pushes the post-toggle record to the gateway. Unknown IDs are a
// no-op.
func (s *Store) ToggleTaskStatus(ctx context.Context, taskID string) {
	s.mu.Lock()
	recordID := s.resolveID(taskID)
	var updated domain.Task
	var found bool
	for i := range s.tasks {
		if s.tasks[i].ID == recordID {
			s.tasks[i].Status = s.tasks[i].ToggledStatus()
			updated = s.tasks[i]
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.gw.UpdateTask(context.WithoutCancel(ctx), updated); err != nil {
			s.logf("update task %s: %v", updated.ID, err)
		}
	}()
}

// SetTaskReminder switches the reminder flag on a task.
func (s *Store) SetTaskReminder(ctx context.Context, taskID string, enabled bool) {
	s.mu.Lock()
	recordID := s.resolveID(taskID)
	var updated domain.Task
	var found bool
	for i := range s.tasks {
		if s.tasks[i].ID == recordID {
			s.tasks[i].RemindEnabled = enabled
			updated = s.tasks[i]
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.gw.UpdateTask(context.WithoutCancel(ctx), updated); err != nil {
			s.logf("update task %s: %v", updated.ID, err)
		}
	}()
}

// DeleteTask removes the task locally and fires the remote delete.
func (s *Store) DeleteTask(ctx context.Context, taskID string) {
	s.mu.Lock()
	recordID := s.resolveID(taskID)
	delete(s.aliases, taskID)
	var found bool
	for i := range s.tasks {
		if s.tasks[i].ID == recordID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.gw.DeleteTask(context.WithoutCancel(ctx), recordID); err != nil {
			s.logf("delete task %s: %v", recordID, err)
		}
	}()
}

// CreatePriority appends a new focus-board item locally and inserts it
// remotely in the background.
func (s *Store) CreatePriority(ctx context.Context, input domain.CreatePriorityItemInput) (domain.PriorityItem, error) {
	s.mu.Lock()
	input.UserID = s.userID
	item, err := domain.CreatePriorityItem(input, s.clock, s.idGenerator)
	if err != nil {
		s.mu.Unlock()
		return domain.PriorityItem{}, err
	}
	s.priorities = append(s.priorities, item)
	epoch := s.epoch
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		created, err := s.gw.InsertPriority(context.WithoutCancel(ctx), item)
		if err != nil {
			s.logf("insert priority %s: %v", item.ID, err)
			return
		}
		s.ifCurrent(epoch, func() {
			for i := range s.priorities {
				if s.priorities[i].ID == item.ID {
					current := s.priorities[i]
					current.ID = created.ID
					current.CreatedAt = created.CreatedAt
					s.priorities[i] = current
					break
				}
			}
			s.aliases[item.ID] = created.ID
		})
	}()
	return item, nil
}

// TogglePriorityCompleted flips an item's completed flag and pushes the
// update.
func (s *Store) TogglePriorityCompleted(ctx context.Context, itemID string) {
	s.mu.Lock()
	recordID := s.resolveID(itemID)
	var updated domain.PriorityItem
	var found bool
	for i := range s.priorities {
		if s.priorities[i].ID == recordID {
			s.priorities[i].Completed = !s.priorities[i].Completed
			updated = s.priorities[i]
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.gw.UpdatePriority(context.WithoutCancel(ctx), updated); err != nil {
			s.logf("update priority %s: %v", updated.ID, err)
		}
	}()
}

// DeletePriority removes the item locally and fires the remote delete.
func (s *Store) DeletePriority(ctx context.Context, itemID string) {
	s.mu.Lock()
	recordID := s.resolveID(itemID)
	delete(s.aliases, itemID)
	var found bool
	for i := range s.priorities {
		if s.priorities[i].ID == recordID {
			s.priorities = append(s.priorities[:i], s.priorities[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.gw.DeletePriority(context.WithoutCancel(ctx), recordID); err != nil {
			s.logf("delete priority %s: %v", recordID, err)
		}
	}()
}

// CreateNote prepends a note locally and inserts it remotely in the
// background.
func (s *Store) CreateNote(ctx context.Context, input domain.CreateNoteInput) (domain.Note, error) {
	s.mu.Lock()
	input.UserID = s.userID
	note, err := domain.CreateNote(input, s.clock, s.idGenerator)
	if err != nil {
		s.mu.Unlock()
		return domain.Note{}, err
	}
	s.notes = append([]domain.Note{note}, s.notes...)
	epoch := s.epoch
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		created, err := s.gw.InsertNote(context.WithoutCancel(ctx), note)
		if err != nil {
			s.logf("insert note %s: %v", note.ID, err)
			return
		}
		s.ifCurrent(epoch, func() {
			for i := range s.notes {
				if s.notes[i].ID == note.ID {
					current := s.notes[i]
					current.ID = created.ID
					current.CreatedAt = created.CreatedAt
					s.notes[i] = current
					break
				}
			}
			s.aliases[note.ID] = created.ID
		})
	}()
	return note, nil
}

// DeleteNote removes the note locally and fires the remote delete.
func (s *Store) DeleteNote(ctx context.Context, noteID string) {
	s.mu.Lock()
	recordID := s.resolveID(noteID)
	delete(s.aliases, noteID)
	var found bool
	for i := range s.notes {
		if s.notes[i].ID == recordID {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.gw.DeleteNote(context.WithoutCancel(ctx), recordID); err != nil {
			s.logf("delete note %s: %v", recordID, err)
		}
	}()
}

// SaveProfile stores the profile locally and upserts it remotely, following
// the same apply-then-push shape as the collection mutations.
func (s *Store) SaveProfile(ctx context.Context, input domain.ProfileInput) (domain.Profile, error) {
	s.mu.Lock()
	input.UserID = s.userID
	profile, err := domain.NewProfile(input, s.clock)
	if err != nil {
		s.mu.Unlock()
		return domain.Profile{}, err
	}
	s.profile = profile
	s.hasProfile = true
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.gw.UpsertProfile(context.WithoutCancel(ctx), profile); err != nil {
			s.logf("upsert profile for %s: %v", profile.UserID, err)
		}
	}()
	return profile, nil
}

// Tasks returns a copy of all tasks, newest first.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// TasksOn returns a copy of the tasks planned for the given YYYY-MM-DD day.
func (s *Store) TasksOn(date string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Task
	for _, task := range s.tasks {
		if task.Date == date {
			out = append(out, task)
		}
	}
	return out
}

// Priorities returns a copy of all focus-board items in board order.
func (s *Store) Priorities() []domain.PriorityItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PriorityItem, len(s.priorities))
	copy(out, s.priorities)
	return out
}

// PrioritiesIn returns a copy of the items under one (category, tier) cell.
func (s *Store) PrioritiesIn(category domain.Category, sub domain.SubCategory) []domain.PriorityItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PriorityItem
	for _, item := range s.priorities {
		if item.Category == category && item.SubCategory == sub {
			out = append(out, item)
		}
	}
	return out
}

// Notes returns a copy of all notes, newest first.
func (s *Store) Notes() []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Profile returns the loaded profile and whether one is present.
func (s *Store) Profile() (domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.hasProfile
}
