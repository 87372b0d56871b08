// Package client talks to the mathquest HTTP API and keeps the local play state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// HasCode reports whether err is an APIError carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type Client struct {
	baseURL string
	client  *http.Client
}

// New returns a client for the server at baseURL. A nil httpClient gets a
// default one whose timeout covers a slow generator call.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: httpClient}
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/session", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) JoinSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	body := map[string]string{"session_id": sessionID}
	if err := c.do(ctx, http.MethodPost, "/session/join", nil, body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SessionData(ctx context.Context, sessionID string) (*SessionData, error) {
	var raw struct {
		Session           sessionRecord      `json:"session"`
		RecentSubmissions []SubmissionRecord `json:"recent_submissions"`
	}
	q := url.Values{"session_id": {sessionID}}
	if err := c.do(ctx, http.MethodGet, "/session/data", q, nil, &raw); err != nil {
		return nil, err
	}
	return &SessionData{
		Session: Session{
			ID:             raw.Session.ID,
			CorrectCount:   raw.Session.CorrectCount,
			TotalCount:     raw.Session.TotalCount,
			Streak:         raw.Session.Streak,
			HintCredits:    raw.Session.HintCredits,
			LastAccessedAt: raw.Session.LastAccessedAt,
		},
		HintCap:           raw.Session.HintCap,
		RecentSubmissions: raw.RecentSubmissions,
	}, nil
}

func (c *Client) Topics(ctx context.Context) ([]Topic, error) {
	var resp struct {
		Topics []Topic `json:"topics"`
	}
	if err := c.do(ctx, http.MethodGet, "/topics", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Topics, nil
}

func (c *Client) GenerateProblem(ctx context.Context, opts ProblemOptions) (*Problem, error) {
	var p Problem
	if err := c.do(ctx, http.MethodPost, "/problem", nil, opts, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProblem fetches a stored problem. The returned Problem carries id as its ID.
func (c *Client) GetProblem(ctx context.Context, id string) (*Problem, error) {
	var p Problem
	if err := c.do(ctx, http.MethodGet, "/problem", url.Values{"sessionId": {id}}, nil, &p); err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	var r SubmitResult
	if err := c.do(ctx, http.MethodPost, "/problem/submit", nil, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) RequestHint(ctx context.Context, problemID, userSessionID string) (*Hint, error) {
	var h Hint
	body := map[string]string{"problem_session_id": problemID, "user_session_id": userSessionID}
	if err := c.do(ctx, http.MethodPost, "/problem/hint", nil, body, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) History(ctx context.Context, userSessionID string, page, limit int) (*HistoryPage, error) {
	q := url.Values{
		"user_session_id": {userSessionID},
		"page":            {strconv.Itoa(page)},
		"limit":           {strconv.Itoa(limit)},
	}
	var h HistoryPage
	if err := c.do(ctx, http.MethodGet, "/problem/history", q, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Code, apiErr.Message = e.Code, e.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
