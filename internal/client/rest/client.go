// Package rest implements the client-side gateway contract over HTTP/JSON.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/blizx/zenith/internal/client/gateway"
	"github.com/blizx/zenith/internal/domain"
	apperrors "github.com/blizx/zenith/internal/platform/errors"
	"github.com/blizx/zenith/internal/platform/timeouts"
)

// Client talks to the gateway API and carries the bearer token obtained at
// sign-in.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	session domain.Session
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a client for the gateway at baseURL. A nil httpClient falls
// back to a default with the standard request timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.GatewayRequest}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// RestoreSession seeds a previously persisted session; the next Session
// call validates it against the gateway.
func (c *Client) RestoreSession(session domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.AccessToken
}

func (c *Client) setSession(session domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
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

// SignUp registers an account and stores its session.
func (c *Client) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	return c.authenticate(ctx, "/v1/auth/signup", email, password)
}

// SignIn exchanges credentials for a session and stores it.
func (c *Client) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	return c.authenticate(ctx, "/v1/auth/signin", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (domain.Session, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, path, credentialsPayload{Email: email, Password: password}, &resp, false)
	if err != nil {
		return domain.Session{}, err
	}
	session := domain.Session{
		UserID:      resp.UserID,
		Email:       resp.Email,
		AccessToken: resp.AccessToken,
	}
	c.setSession(session)
	return session, nil
}

// SignOut revokes the session at the gateway and drops the stored token.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/v1/auth/signout", nil, nil, true)
	c.setSession(domain.Session{})
	return err
}

// Session validates the stored token against the gateway. Without a token,
// or when the gateway rejects it, the zero session is returned without
// error.
func (c *Client) Session(ctx context.Context) (domain.Session, error) {
	token := c.currentToken()
	if token == "" {
		return domain.Session{}, nil
	}

	var resp domain.Session
	err := c.do(ctx, http.MethodGet, "/v1/auth/session", nil, &resp, true)
	if err != nil {
		code := apperrors.CodeOf(err)
		if code == apperrors.CodeAuthSessionMissing || code == apperrors.CodeAuthSessionExpired {
			c.setSession(domain.Session{})
			return domain.Session{}, nil
		}
		return domain.Session{}, err
	}
	resp.AccessToken = token
	c.setSession(resp)
	return resp, nil
}

// RequestPasswordReset starts the reset flow for the given email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	payload := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.do(ctx, http.MethodPost, "/v1/auth/recover", payload, nil, false)
}

// Profile fetches the signed-in user's profile.
func (c *Client) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	var profile domain.Profile
	err := c.do(ctx, http.MethodGet, "/v1/profile", nil, &profile, true)
	return profile, err
}

// UpsertProfile writes the profile.
func (c *Client) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	return c.do(ctx, http.MethodPut, "/v1/profile", profile, nil, true)
}

// Tasks lists the user's tasks.
func (c *Client) Tasks(ctx context.Context, userID string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := c.do(ctx, http.MethodGet, "/v1/tasks", nil, &tasks, true)
	return tasks, err
}

// InsertTask creates a task; the gateway assigns the ID and timestamp.
func (c *Client) InsertTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	var created domain.Task
	err := c.do(ctx, http.MethodPost, "/v1/tasks", task, &created, true)
	return created, err
}

// UpdateTask pushes the task's current field values.
func (c *Client) UpdateTask(ctx context.Context, task domain.Task) error {
	return c.do(ctx, http.MethodPatch, "/v1/tasks/"+task.ID, task, nil, true)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/tasks/"+id, nil, nil, true)
}

// Priorities lists the user's focus-board items.
func (c *Client) Priorities(ctx context.Context, userID string) ([]domain.PriorityItem, error) {
	var items []domain.PriorityItem
	err := c.do(ctx, http.MethodGet, "/v1/priorities", nil, &items, true)
	return items, err
}

// InsertPriority creates a focus-board item.
func (c *Client) InsertPriority(ctx context.Context, item domain.PriorityItem) (domain.PriorityItem, error) {
	var created domain.PriorityItem
	err := c.do(ctx, http.MethodPost, "/v1/priorities", item, &created, true)
	return created, err
}

// UpdatePriority pushes the item's current field values.
func (c *Client) UpdatePriority(ctx context.Context, item domain.PriorityItem) error {
	return c.do(ctx, http.MethodPatch, "/v1/priorities/"+item.ID, item, nil, true)
}

// DeletePriority removes a focus-board item.
func (c *Client) DeletePriority(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/priorities/"+id, nil, nil, true)
}

// Notes lists the user's notes.
func (c *Client) Notes(ctx context.Context, userID string) ([]domain.Note, error) {
	var notes []domain.Note
	err := c.do(ctx, http.MethodGet, "/v1/notes", nil, &notes, true)
	return notes, err
}

// InsertNote creates a note.
func (c *Client) InsertNote(ctx context.Context, note domain.Note) (domain.Note, error) {
	var created domain.Note
	err := c.do(ctx, http.MethodPost, "/v1/notes", note, &created, true)
	return created, err
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/notes/"+id, nil, nil, true)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do issues one request and decodes the response into out when provided.
// Gateway error payloads come back as platform errors keyed by their code.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.currentToken())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError maps a gateway error payload back to a platform error.
// Responses without a parseable payload fall back to a code derived from
// the HTTP status.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Code != "" {
		return apperrors.New(apperrors.ParseCode(payload.Code), payload.Message)
	}
	if resp.StatusCode == http.StatusNotFound {
		return apperrors.New(apperrors.CodeNotFound, "record not found")
	}
	return apperrors.New(apperrors.CodeUnknown, fmt.Sprintf("unexpected status %d", resp.StatusCode))
}
