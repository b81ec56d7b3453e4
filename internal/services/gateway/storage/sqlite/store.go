// Package sqlite implements gateway persistence over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/blizx/zenith/internal/domain"
	"github.com/blizx/zenith/internal/platform/storage/sqlitemigrate"
	"github.com/blizx/zenith/internal/services/gateway/storage"
	"github.com/blizx/zenith/internal/services/gateway/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements gateway persistence over a single SQLite file.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens the SQLite store and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateUser inserts a new account row.
func (s *Store) CreateUser(ctx context.Context, user storage.User) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, strings.ToLower(user.Email), user.PasswordHash, toMillis(user.CreatedAt),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByEmail looks an account up by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (storage.User, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(email),
	)
	return scanUser(row)
}

// UserByID looks an account up by ID.
func (s *Store) UserByID(ctx context.Context, id string) (storage.User, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (storage.User, error) {
	var user storage.User
	var createdAt int64
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return user, nil
}

// UpsertProfile inserts or replaces the user's profile row.
func (s *Store) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO profiles (user_id, display_name, age, occupation, completed_onboarding, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    display_name = excluded.display_name,
    age = excluded.age,
    occupation = excluded.occupation,
    completed_onboarding = excluded.completed_onboarding,
    updated_at = excluded.updated_at`,
		profile.UserID, profile.DisplayName, profile.Age, profile.Occupation,
		boolToInt(profile.OnboardingComplete), toMillis(profile.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// ProfileByUserID returns the user's profile row.
func (s *Store) ProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT user_id, display_name, age, occupation, completed_onboarding, updated_at
FROM profiles WHERE user_id = ?`, userID)

	var profile domain.Profile
	var completed int
	var updatedAt int64
	if err := row.Scan(&profile.UserID, &profile.DisplayName, &profile.Age,
		&profile.Occupation, &completed, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Profile{}, storage.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	profile.OnboardingComplete = completed != 0
	profile.UpdatedAt = fromMillis(updatedAt)
	return profile, nil
}

// CreateTask inserts a task row.
func (s *Store) CreateTask(ctx context.Context, task domain.Task) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO tasks (id, user_id, title, date, category, priority, status, remind_enabled, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.Title, task.Date, string(task.Category),
		string(task.Priority), string(task.Status), boolToInt(task.RemindEnabled),
		toMillis(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// TasksByUserID lists the user's tasks newest first.
func (s *Store) TasksByUserID(ctx context.Context, userID string) ([]domain.Task, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, user_id, title, date, category, priority, status, remind_enabled, created_at
FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// TaskByID returns one of the user's tasks.
func (s *Store) TaskByID(ctx context.Context, userID, id string) (domain.Task, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, user_id, title, date, category, priority, status, remind_enabled, created_at
FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("query task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Task{}, fmt.Errorf("query task: %w", err)
		}
		return domain.Task{}, storage.ErrNotFound
	}
	return scanTask(rows)
}

func scanTask(rows *sql.Rows) (domain.Task, error) {
	var task domain.Task
	var category, priority, status string
	var remind int
	var createdAt int64
	if err := rows.Scan(&task.ID, &task.UserID, &task.Title, &task.Date,
		&category, &priority, &status, &remind, &createdAt); err != nil {
		return domain.Task{}, fmt.Errorf("scan task: %w", err)
	}
	task.Category = domain.Category(category)
	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	task.RemindEnabled = remind != 0
	task.CreatedAt = fromMillis(createdAt)
	return task, nil
}

// UpdateTask replaces the mutable fields of one of the user's tasks.
func (s *Store) UpdateTask(ctx context.Context, userID string, task domain.Task) error {
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE tasks SET title = ?, date = ?, category = ?, priority = ?, status = ?, remind_enabled = ?
WHERE user_id = ? AND id = ?`,
		task.Title, task.Date, string(task.Category), string(task.Priority),
		string(task.Status), boolToInt(task.RemindEnabled), userID, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRow(result)
}

// DeleteTask removes one of the user's tasks.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(result)
}

// CreatePriority inserts a focus-board row.
func (s *Store) CreatePriority(ctx context.Context, item domain.PriorityItem) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO priorities (id, user_id, text, category, sub_category, completed, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Text, string(item.Category),
		string(item.SubCategory), boolToInt(item.Completed), toMillis(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert priority: %w", err)
	}
	return nil
}

// PrioritiesByUserID lists the user's focus-board items oldest first.
func (s *Store) PrioritiesByUserID(ctx context.Context, userID string) ([]domain.PriorityItem, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, user_id, text, category, sub_category, completed, created_at
FROM priorities WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query priorities: %w", err)
	}
	defer rows.Close()

	var items []domain.PriorityItem
	for rows.Next() {
		item, err := scanPriority(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate priorities: %w", err)
	}
	return items, nil
}

// PriorityByID returns one of the user's focus-board items.
func (s *Store) PriorityByID(ctx context.Context, userID, id string) (domain.PriorityItem, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, user_id, text, category, sub_category, completed, created_at
FROM priorities WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return domain.PriorityItem{}, fmt.Errorf("query priority: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.PriorityItem{}, fmt.Errorf("query priority: %w", err)
		}
		return domain.PriorityItem{}, storage.ErrNotFound
	}
	return scanPriority(rows)
}

func scanPriority(rows *sql.Rows) (domain.PriorityItem, error) {
	var item domain.PriorityItem
	var category, sub string
	var completed int
	var createdAt int64
	if err := rows.Scan(&item.ID, &item.UserID, &item.Text, &category, &sub,
		&completed, &createdAt); err != nil {
		return domain.PriorityItem{}, fmt.Errorf("scan priority: %w", err)
	}
	item.Category = domain.Category(category)
	item.SubCategory = domain.SubCategory(sub)
	item.Completed = completed != 0
	item.CreatedAt = fromMillis(createdAt)
	return item, nil
}

// UpdatePriority replaces the mutable fields of one of the user's items.
func (s *Store) UpdatePriority(ctx context.Context, userID string, item domain.PriorityItem) error {
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE priorities SET text = ?, category = ?, sub_category = ?, completed = ?
WHERE user_id = ? AND id = ?`,
		item.Text, string(item.Category), string(item.SubCategory),
		boolToInt(item.Completed), userID, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update priority: %w", err)
	}
	return requireRow(result)
}

// DeletePriority removes one of the user's items.
func (s *Store) DeletePriority(ctx context.Context, userID, id string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM priorities WHERE user_id = ? AND id = ?`, userID, id,
	)
	if err != nil {
		return fmt.Errorf("delete priority: %w", err)
	}
	return requireRow(result)
}

// CreateNote inserts a note row.
func (s *Store) CreateNote(ctx context.Context, note domain.Note) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO notes (id, user_id, title, content, date_label, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Title, note.Content, note.DateLabel,
		toMillis(note.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// NotesByUserID lists the user's notes newest first.
func (s *Store) NotesByUserID(ctx context.Context, userID string) ([]domain.Note, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, user_id, title, content, date_label, created_at
FROM notes WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var note domain.Note
		var createdAt int64
		if err := rows.Scan(&note.ID, &note.UserID, &note.Title, &note.Content,
			&note.DateLabel, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		note.CreatedAt = fromMillis(createdAt)
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

// DeleteNote removes one of the user's notes.
func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, id,
	)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return requireRow(result)
}

// requireRow converts a zero-row write into ErrNotFound.
func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
