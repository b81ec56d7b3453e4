// Package api exposes the gateway's HTTP/JSON surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/blizx/zenith/internal/domain"
	apperrors "github.com/blizx/zenith/internal/platform/errors"
	"github.com/blizx/zenith/internal/services/gateway/storage"
	"github.com/blizx/zenith/internal/services/gateway/token"
)

// MinPasswordLength is enforced at sign-up.
const MinPasswordLength = 6

// Handler serves the gateway API.
type Handler struct {
	store  storage.Store
	minter *token.Minter

	clock       func() time.Time
	idGenerator func() string
	logf        func(format string, args ...any)

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	authRate  rate.Limit
	authBurst int
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) { h.clock = clock }
}

// WithIDGenerator overrides the row ID source.
func WithIDGenerator(idGenerator func() string) Option {
	return func(h *Handler) { h.idGenerator = idGenerator }
}

// WithLogf overrides the request logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(h *Handler) { h.logf = logf }
}

// WithAuthRate overrides the per-IP credential attempt limit.
func WithAuthRate(limit rate.Limit, burst int) Option {
	return func(h *Handler) {
		h.authRate = limit
		h.authBurst = burst
	}
}

// New creates the API handler.
func New(store storage.Store, minter *token.Minter, opts ...Option) *Handler {
	h := &Handler{
		store:       store,
		minter:      minter,
		clock:       time.Now,
		idGenerator: uuid.NewString,
		logf:        log.Printf,
		limiters:    make(map[string]*rate.Limiter),
		authRate:    rate.Every(time.Second),
		authBurst:   10,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the full route table.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, req)
			h.logf("%s %s %d %s", req.Method, req.URL.Path, m.Code, m.Duration)
		})
	})

	r.Methods(http.MethodPost).Path("/v1/auth/signup").HandlerFunc(h.signUp)
	r.Methods(http.MethodPost).Path("/v1/auth/signin").HandlerFunc(h.signIn)
	r.Methods(http.MethodPost).Path("/v1/auth/signout").HandlerFunc(h.authed(h.signOut))
	r.Methods(http.MethodGet).Path("/v1/auth/session").HandlerFunc(h.authed(h.session))
	r.Methods(http.MethodPost).Path("/v1/auth/recover").HandlerFunc(h.recoverPassword)

	r.Methods(http.MethodGet).Path("/v1/tasks").HandlerFunc(h.authed(h.listTasks))
	r.Methods(http.MethodPost).Path("/v1/tasks").HandlerFunc(h.authed(h.createTask))
	r.Methods(http.MethodPatch).Path("/v1/tasks/{id}").HandlerFunc(h.authed(h.patchTask))
	r.Methods(http.MethodDelete).Path("/v1/tasks/{id}").HandlerFunc(h.authed(h.deleteTask))

	r.Methods(http.MethodGet).Path("/v1/priorities").HandlerFunc(h.authed(h.listPriorities))
	r.Methods(http.MethodPost).Path("/v1/priorities").HandlerFunc(h.authed(h.createPriority))
	r.Methods(http.MethodPatch).Path("/v1/priorities/{id}").HandlerFunc(h.authed(h.patchPriority))
	r.Methods(http.MethodDelete).Path("/v1/priorities/{id}").HandlerFunc(h.authed(h.deletePriority))

	r.Methods(http.MethodGet).Path("/v1/notes").HandlerFunc(h.authed(h.listNotes))
	r.Methods(http.MethodPost).Path("/v1/notes").HandlerFunc(h.authed(h.createNote))
	r.Methods(http.MethodDelete).Path("/v1/notes/{id}").HandlerFunc(h.authed(h.deleteNote))

	r.Methods(http.MethodGet).Path("/v1/profile").HandlerFunc(h.authed(h.getProfile))
	r.Methods(http.MethodPut).Path("/v1/profile").HandlerFunc(h.authed(h.putProfile))

	return r
}

type contextKey string

const claimsKey contextKey = "claims"

// authed wraps a handler with bearer token verification; the verified
// claims travel in the request context.
func (h *Handler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		header := req.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			h.writeError(w, apperrors.New(apperrors.CodeAuthSessionMissing, "missing bearer token"))
			return
		}
		claims, err := h.minter.Verify(raw)
		if err != nil {
			h.writeError(w, err)
			return
		}
		ctx := context.WithValue(req.Context(), claimsKey, claims)
		next(w, req.WithContext(ctx))
	}
}

func claimsFrom(req *http.Request) token.Claims {
	claims, _ := req.Context().Value(claimsKey).(token.Claims)
	return claims
}

// allowAuthAttempt charges one credential attempt against the client IP.
func (h *Handler) allowAuthAttempt(req *http.Request) bool {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	h.limiterMu.Lock()
	defer h.limiterMu.Unlock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(h.authRate, h.authBurst)
		h.limiters[host] = limiter
	}
	return limiter.Allow()
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

func (h *Handler) signUp(w http.ResponseWriter, req *http.Request) {
	if !h.allowAuthAttempt(req) {
		h.writeError(w, apperrors.New(apperrors.CodeAuthRateLimited, "too many attempts"))
		return
	}

	var payload credentialsPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeAuthEmailInvalid, "invalid request body"))
		return
	}
	email := strings.TrimSpace(strings.ToLower(payload.Email))
	if !strings.Contains(email, "@") {
		h.writeError(w, apperrors.New(apperrors.CodeAuthEmailInvalid, "a valid email is required"))
		return
	}
	if len(payload.Password) < MinPasswordLength {
		h.writeError(w, apperrors.New(apperrors.CodeAuthPasswordTooShort, "password must be at least 6 characters"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "hash password", err))
		return
	}

	user := storage.User{
		ID:           h.idGenerator(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    h.clock().UTC(),
	}
	if err := h.store.CreateUser(req.Context(), user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			h.writeError(w, apperrors.New(apperrors.CodeAuthEmailTaken, "email already registered"))
			return
		}
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "create user", err))
		return
	}

	h.writeSession(w, user.ID, user.Email)
}

func (h *Handler) signIn(w http.ResponseWriter, req *http.Request) {
	if !h.allowAuthAttempt(req) {
		h.writeError(w, apperrors.New(apperrors.CodeAuthRateLimited, "too many attempts"))
		return
	}

	var payload credentialsPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeAuthInvalidCredentials, "invalid request body"))
		return
	}

	user, err := h.store.UserByEmail(req.Context(), strings.TrimSpace(strings.ToLower(payload.Email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, apperrors.New(apperrors.CodeAuthInvalidCredentials, "invalid login credentials"))
			return
		}
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "look up user", err))
		return
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(payload.Password)) != nil {
		h.writeError(w, apperrors.New(apperrors.CodeAuthInvalidCredentials, "invalid login credentials"))
		return
	}

	h.writeSession(w, user.ID, user.Email)
}

func (h *Handler) writeSession(w http.ResponseWriter, userID, email string) {
	accessToken, err := h.minter.Mint(userID, email)
	if err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "mint token", err))
		return
	}
	h.writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken: accessToken,
		UserID:      userID,
		Email:       email,
	})
}

func (h *Handler) signOut(w http.ResponseWriter, req *http.Request) {
	// Tokens are stateless; sign-out is acknowledged so clients can drop
	// theirs.
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, req *http.Request) {
	claims := claimsFrom(req)
	h.writeJSON(w, http.StatusOK, domain.Session{
		UserID: claims.UserID,
		Email:  claims.Email,
	})
}

func (h *Handler) recoverPassword(w http.ResponseWriter, req *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(req.Body).Decode(&payload)
	// Always accepted; the response must not reveal whether the account
	// exists.
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) listTasks(w http.ResponseWriter, req *http.Request) {
	tasks, err := h.store.TasksByUserID(req.Context(), claimsFrom(req).UserID)
	if err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "list tasks", err))
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.writeJSON(w, http.StatusOK, tasks)
}

type taskPayload struct {
	Title         string `json:"title"`
	Date          string `json:"date"`
	Category      string `json:"category"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	RemindEnabled bool   `json:"remind_enabled"`
}

func (h *Handler) createTask(w http.ResponseWriter, req *http.Request) {
	var payload taskPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeTaskEmptyTitle, "invalid request body"))
		return
	}

	task, err := domain.CreateTask(domain.CreateTaskInput{
		UserID:        claimsFrom(req).UserID,
		Title:         payload.Title,
		Date:          payload.Date,
		Category:      domain.Category(payload.Category),
		Priority:      domain.TaskPriority(payload.Priority),
		Status:        domain.TaskStatus(payload.Status),
		RemindEnabled: payload.RemindEnabled,
	}, h.clock, func() (string, error) { return h.idGenerator(), nil })
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.store.CreateTask(req.Context(), task); err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "store task", err))
		return
	}
	h.writeJSON(w, http.StatusCreated, task)
}

type taskPatch struct {
	Title         *string `json:"title"`
	Date          *string `json:"date"`
	Category      *string `json:"category"`
	Priority      *string `json:"priority"`
	Status        *string `json:"status"`
	RemindEnabled *bool   `json:"remind_enabled"`
}

func (h *Handler) patchTask(w http.ResponseWriter, req *http.Request) {
	userID := claimsFrom(req).UserID
	task, err := h.store.TaskByID(req.Context(), userID, mux.Vars(req)["id"])
	if err != nil {
		h.writeStorageError(w, "load task", err)
		return
	}

	var patch taskPatch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeTaskInvalidStatus, "invalid request body"))
		return
	}
	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Date != nil {
		task.Date = *patch.Date
	}
	if patch.Category != nil {
		task.Category = domain.Category(*patch.Category)
	}
	if patch.Priority != nil {
		task.Priority = domain.TaskPriority(*patch.Priority)
	}
	if patch.Status != nil {
		task.Status = domain.TaskStatus(*patch.Status)
	}
	if patch.RemindEnabled != nil {
		task.RemindEnabled = *patch.RemindEnabled
	}

	if err := validateTask(task); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.store.UpdateTask(req.Context(), userID, task); err != nil {
		h.writeStorageError(w, "update task", err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func validateTask(task domain.Task) error {
	if task.Title == "" {
		return domain.ErrTaskEmptyTitle
	}
	if _, err := time.Parse(domain.DateLayout, task.Date); err != nil {
		return domain.ErrTaskInvalidDate
	}
	if !task.Category.Valid() {
		return domain.ErrTaskInvalidCategory
	}
	if !task.Priority.Valid() {
		return domain.ErrTaskInvalidPriority
	}
	if !task.Status.Valid() {
		return domain.ErrTaskInvalidStatus
	}
	return nil
}

func (h *Handler) deleteTask(w http.ResponseWriter, req *http.Request) {
	err := h.store.DeleteTask(req.Context(), claimsFrom(req).UserID, mux.Vars(req)["id"])
	if err != nil {
		h.writeStorageError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPriorities(w http.ResponseWriter, req *http.Request) {
	items, err := h.store.PrioritiesByUserID(req.Context(), claimsFrom(req).UserID)
	if err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "list priorities", err))
		return
	}
	if items == nil {
		items = []domain.PriorityItem{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

type priorityPayload struct {
	Text        string `json:"text"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

func (h *Handler) createPriority(w http.ResponseWriter, req *http.Request) {
	var payload priorityPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodePriorityEmptyText, "invalid request body"))
		return
	}

	item, err := domain.CreatePriorityItem(domain.CreatePriorityItemInput{
		UserID:      claimsFrom(req).UserID,
		Text:        payload.Text,
		Category:    domain.Category(payload.Category),
		SubCategory: domain.SubCategory(payload.SubCategory),
	}, h.clock, func() (string, error) { return h.idGenerator(), nil })
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.store.CreatePriority(req.Context(), item); err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "store priority", err))
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

type priorityPatch struct {
	Text        *string `json:"text"`
	Category    *string `json:"category"`
	SubCategory *string `json:"sub_category"`
	Completed   *bool   `json:"completed"`
}

func (h *Handler) patchPriority(w http.ResponseWriter, req *http.Request) {
	userID := claimsFrom(req).UserID
	item, err := h.store.PriorityByID(req.Context(), userID, mux.Vars(req)["id"])
	if err != nil {
		h.writeStorageError(w, "load priority", err)
		return
	}

	var patch priorityPatch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodePriorityEmptyText, "invalid request body"))
		return
	}
	if patch.Text != nil {
		item.Text = strings.TrimSpace(*patch.Text)
	}
	if patch.Category != nil {
		item.Category = domain.Category(*patch.Category)
	}
	if patch.SubCategory != nil {
		item.SubCategory = domain.SubCategory(*patch.SubCategory)
	}
	if patch.Completed != nil {
		item.Completed = *patch.Completed
	}

	if item.Text == "" {
		h.writeError(w, domain.ErrPriorityEmptyText)
		return
	}
	if !item.Category.Valid() {
		h.writeError(w, domain.ErrPriorityInvalidCategory)
		return
	}
	if !item.SubCategory.Valid() {
		h.writeError(w, domain.ErrPriorityInvalidSubCategory)
		return
	}

	if err := h.store.UpdatePriority(req.Context(), userID, item); err != nil {
		h.writeStorageError(w, "update priority", err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deletePriority(w http.ResponseWriter, req *http.Request) {
	err := h.store.DeletePriority(req.Context(), claimsFrom(req).UserID, mux.Vars(req)["id"])
	if err != nil {
		h.writeStorageError(w, "delete priority", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listNotes(w http.ResponseWriter, req *http.Request) {
	notes, err := h.store.NotesByUserID(req.Context(), claimsFrom(req).UserID)
	if err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "list notes", err))
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	h.writeJSON(w, http.StatusOK, notes)
}

type notePayload struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	DateLabel string `json:"date_label"`
}

func (h *Handler) createNote(w http.ResponseWriter, req *http.Request) {
	var payload notePayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeNoteEmpty, "invalid request body"))
		return
	}

	note, err := domain.CreateNote(domain.CreateNoteInput{
		UserID:    claimsFrom(req).UserID,
		Title:     payload.Title,
		Content:   payload.Content,
		DateLabel: payload.DateLabel,
	}, h.clock, func() (string, error) { return h.idGenerator(), nil })
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.store.CreateNote(req.Context(), note); err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "store note", err))
		return
	}
	h.writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) deleteNote(w http.ResponseWriter, req *http.Request) {
	err := h.store.DeleteNote(req.Context(), claimsFrom(req).UserID, mux.Vars(req)["id"])
	if err != nil {
		h.writeStorageError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getProfile(w http.ResponseWriter, req *http.Request) {
	profile, err := h.store.ProfileByUserID(req.Context(), claimsFrom(req).UserID)
	if err != nil {
		h.writeStorageError(w, "load profile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

type profilePayload struct {
	DisplayName        string `json:"display_name"`
	Age                string `json:"age"`
	Occupation         string `json:"occupation"`
	OnboardingComplete bool   `json:"completed_onboarding"`
}

func (h *Handler) putProfile(w http.ResponseWriter, req *http.Request) {
	var payload profilePayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeProfileEmptyName, "invalid request body"))
		return
	}

	profile, err := domain.NewProfile(domain.ProfileInput{
		UserID:             claimsFrom(req).UserID,
		DisplayName:        payload.DisplayName,
		Age:                payload.Age,
		Occupation:         payload.Occupation,
		OnboardingComplete: payload.OnboardingComplete,
	}, h.clock)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.store.UpsertProfile(req.Context(), profile); err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "store profile", err))
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeStorageError translates ErrNotFound into the not-found payload and
// wraps everything else as unknown.
func (h *Handler) writeStorageError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, apperrors.New(apperrors.CodeNotFound, "record not found"))
		return
	}
	h.writeError(w, apperrors.Wrap(apperrors.CodeUnknown, action, err))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	message := err.Error()
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, code.HTTPStatus(), errorResponse{
		Code:    string(code),
		Message: message,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.logf("encode response: %v", err)
	}
}
