// Package client is a thin HTTP client for the loopback API plus the
// terminal prompts used by cmd/client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/basetutor/internal/models"
)

// Client calls the loopback API at BaseURL.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// New returns a Client with a 10s request timeout.
func New(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ServerError is a non-2xx response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Message)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, email, password string, role models.Role) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"role":     string(role),
	}, &u)
	return u, err
}

// Login verifies credentials.
func (c *Client) Login(ctx context.Context, username, password string) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, &u)
	return u, err
}

// ConvertResult is the outcome of a conversion.
type ConvertResult struct {
	Result string                  `json:"result"`
	Entry  *models.ConversionEntry `json:"entry,omitempty"`
}

// Convert converts value; a non-empty username records it in their history.
func (c *Client) Convert(ctx context.Context, username, value string, from, to int) (ConvertResult, error) {
	var res ConvertResult
	err := c.do(ctx, http.MethodPost, "/api/convert", map[string]any{
		"username": username,
		"value":    value,
		"from":     from,
		"to":       to,
	}, &res)
	return res, err
}

// History returns the user's history; limit <= 0 returns all of it.
func (c *Client) History(ctx context.Context, username string, limit int) ([]models.ConversionEntry, error) {
	path := "/api/users/" + url.PathEscape(username) + "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []models.ConversionEntry
	err := c.do(ctx, http.MethodGet, path, nil, &entries)
	return entries, err
}

// ClearHistory deletes the user's history and returns the removed count.
func (c *Client) ClearHistory(ctx context.Context, username string) (int64, error) {
	var res struct {
		Removed int64 `json:"removed"`
	}
	err := c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(username)+"/history", nil, &res)
	return res.Removed, err
}

// Recent returns the anonymous recent-conversions cache.
func (c *Client) Recent(ctx context.Context) ([]string, error) {
	var res struct {
		History []string `json:"history"`
	}
	err := c.do(ctx, http.MethodGet, "/api/history/recent", nil, &res)
	return res.History, err
}

// Tutors lists registered tutors.
func (c *Client) Tutors(ctx context.Context) ([]string, error) {
	var res struct {
		Tutors []string `json:"tutors"`
	}
	err := c.do(ctx, http.MethodGet, "/api/tutors", nil, &res)
	return res.Tutors, err
}

// RequestTutor opens a request from student to tutor.
func (c *Client) RequestTutor(ctx context.Context, student, tutor string) (models.TutorRequest, error) {
	var tr models.TutorRequest
	err := c.do(ctx, http.MethodPost, "/api/requests", map[string]string{"student": student, "tutor": tutor}, &tr)
	return tr, err
}

// Requests lists requests of username, as the tutor when asTutor is set.
func (c *Client) Requests(ctx context.Context, username string, asTutor bool) ([]models.TutorRequest, error) {
	prefix := "/api/users/"
	if asTutor {
		prefix = "/api/tutors/"
	}
	var reqs []models.TutorRequest
	err := c.do(ctx, http.MethodGet, prefix+url.PathEscape(username)+"/requests", nil, &reqs)
	return reqs, err
}

// Accept accepts a request and returns the new session.
func (c *Client) Accept(ctx context.Context, requestID int64, topic string) (models.Session, error) {
	var s models.Session
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/requests/%d/accept", requestID), map[string]string{"topic": topic}, &s)
	return s, err
}

// Decline declines a request.
func (c *Client) Decline(ctx context.Context, requestID int64) (models.TutorRequest, error) {
	var tr models.TutorRequest
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/requests/%d/decline", requestID), nil, &tr)
	return tr, err
}

// Sessions lists sessions of username, as the tutor when asTutor is set.
func (c *Client) Sessions(ctx context.Context, username string, asTutor bool) ([]models.Session, error) {
	path := "/api/users/" + url.PathEscape(username) + "/sessions"
	if asTutor {
		path += "?as=tutor"
	}
	var sessions []models.Session
	err := c.do(ctx, http.MethodGet, path, nil, &sessions)
	return sessions, err
}

// FinishSession moves a scheduled session to completed or cancelled.
func (c *Client) FinishSession(ctx context.Context, sessionID int64, next models.SessionStatus) (models.Session, error) {
	action := "complete"
	if next == models.SessionCancelled {
		action = "cancel"
	}
	var s models.Session
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/sessions/%d/%s", sessionID, action), nil, &s)
	return s, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &ServerError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
