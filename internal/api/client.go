// Package api is the HTTP client for the training service. The service
// owns persistence, authentication, and validation enforcement; this
// client just speaks its REST contract and reports its errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/pumplog/internal/models"
)

// Client talks to the training service. The zero token means
// unauthenticated; protected endpoints then fail with ErrNoAuth before
// any request is sent.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ErrNoAuth is returned when a protected endpoint is called without a
// bearer token. Callers redirect to login rather than showing an error.
var ErrNoAuth = errors.New("api: not authenticated")

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport. Used to route requests
// through tsnet when the service lives on a tailnet.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken seeds the bearer token, typically loaded from the local
// state database at startup.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token (after login) or clears it (logout).
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string { return c.token }

// apiError is the service's JSON error body. Only message is contractual.
type apiError struct {
	Message string `json:"message"`
}

// do runs one request and decodes a 2xx JSON response into out (out may
// be nil for endpoints whose body is irrelevant). Non-2xx responses
// become an error carrying the body's message field when present, else
// fallback. One request per call, no retries, no coalescing.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, authed bool, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.token == "" {
			return ErrNoAuth
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e apiError
		if json.Unmarshal(respBody, &e) == nil && e.Message != "" {
			return fmt.Errorf("%s", e.Message)
		}
		return fmt.Errorf("%s (status %d)", fallback, resp.StatusCode)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%s: decoding response: %w", fallback, err)
		}
	}
	return nil
}

// --- Auth endpoints ---

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Register creates an account and returns the issued bearer token.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", credentials{email, password}, &resp, false, "Registration failed")
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Login authenticates and returns the issued bearer token. The token is
// not stored on the client; callers decide whether to adopt it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", credentials{email, password}, &resp, false, "Login failed")
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// ForgotPassword requests a password reset. The service currently hands
// the reset URL straight back in the response instead of mailing it;
// stand-in behavior on the service side, surfaced here as-is.
func (c *Client) ForgotPassword(ctx context.Context, email string) (resetURL string, err error) {
	var resp struct {
		ResetURL string `json:"resetUrl"`
	}
	err = c.do(ctx, http.MethodPost, "/auth/forgot-password",
		map[string]string{"email": email}, &resp, false, "Password reset request failed")
	if err != nil {
		return "", err
	}
	return resp.ResetURL, nil
}

// ResetPassword completes a reset using the token from the reset URL.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", body, nil, false, "Password reset failed")
}

// ChangePassword changes the authenticated user's password. The service
// takes old and new with no confirmation entry; preserved as-is.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/auth/change-password", body, nil, true, "Password change failed")
}

// --- Training session endpoints ---

// ListTrainings fetches the full session history.
func (c *Client) ListTrainings(ctx context.Context) ([]models.TrainingSession, error) {
	var sessions []models.TrainingSession
	err := c.do(ctx, http.MethodGet, "/trainings", nil, &sessions, true, "Failed to fetch sessions")
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetTraining fetches one session by id.
func (c *Client) GetTraining(ctx context.Context, id string) (*models.TrainingSession, error) {
	var s models.TrainingSession
	err := c.do(ctx, http.MethodGet, "/trainings/"+url.PathEscape(id), nil, &s, true, "Failed to fetch session")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateTraining saves a new session and returns the service's canonical
// record, id included.
func (c *Client) CreateTraining(ctx context.Context, values models.FormValues) (*models.TrainingSession, error) {
	var s models.TrainingSession
	err := c.do(ctx, http.MethodPost, "/trainings", values, &s, true, "Failed to submit session")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateTraining replaces an existing session and returns the updated
// canonical record.
func (c *Client) UpdateTraining(ctx context.Context, id string, values models.FormValues) (*models.TrainingSession, error) {
	var s models.TrainingSession
	err := c.do(ctx, http.MethodPut, "/trainings/"+url.PathEscape(id), values, &s, true, "Failed to update session")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteTraining removes a session.
func (c *Client) DeleteTraining(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/trainings/"+url.PathEscape(id), nil, nil, true, "Delete failed")
}
