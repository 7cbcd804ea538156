// Package crm is a REST client for the deal-tracking service. It logs
// decided meetings as interaction records, linked to a company entry
// when one matches by name.
package crm

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
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
	defaultRateLimit  = 5 // requests per second
	defaultBurst      = 10
)

// Entry is a CRM object row. Only the fields the bot reads are decoded.
type Entry struct {
	EntryID int64  `json:"EntryId"`
	Name    string `json:"CompanyName"`
}

// Interaction is a meeting log entry to create in the CRM.
type Interaction struct {
	Subject    string
	Notes      string
	Date       time.Time
	Type       int64
	AttendeeID int64
	CompanyID  *int64
}

// Config carries CRM connection settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client talks to the CRM REST API.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a CRM client. Credentials are exchanged lazily on
// the first API call.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("crm base url required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("crm credentials required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		clientID: cfg.ClientID,
		secret:   cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		maxRetries: defaultMaxRetries,
		logger:     logger.Named("crm"),
	}, nil
}

// Lookup reads all rows of an object type.
func (c *Client) Lookup(ctx context.Context, objectType string) ([]Entry, error) {
	var entries []Entry
	if err := c.call(ctx, http.MethodGet, "/api/rest/v4/data/"+objectType, nil, &entries); err != nil {
		return nil, fmt.Errorf("failed to look up %s entries: %w", objectType, err)
	}
	return entries, nil
}

// CreateInteraction creates one interaction row and returns its entry id.
func (c *Client) CreateInteraction(ctx context.Context, in Interaction) (int64, error) {
	row := map[string]any{
		"Date":              in.Date.UTC().Format(time.RFC3339),
		"Subject":           in.Subject,
		"Notes":             in.Notes,
		"Type":              in.Type,
		"InternalAttendees": in.AttendeeID,
	}
	if in.CompanyID != nil {
		row["Companies"] = *in.CompanyID
	}

	// The API takes and returns batches even for a single row.
	var created []Entry
	if err := c.call(ctx, http.MethodPost, "/api/rest/v4/data/Interaction", []map[string]any{row}, &created); err != nil {
		return 0, fmt.Errorf("failed to create interaction: %w", err)
	}
	if len(created) == 0 || created[0].EntryID == 0 {
		return 0, errors.New("interaction creation returned no entry id")
	}

	c.logger.Info("interaction created",
		zap.Int64("entry_id", created[0].EntryID),
		zap.String("subject", in.Subject))
	return created[0].EntryID, nil
}

// MatchCompany finds a company entry by normalized case-insensitive name.
func MatchCompany(entries []Entry, name string) (Entry, bool) {
	want := normalizeName(name)
	if want == "" {
		return Entry{}, false
	}
	for _, e := range entries {
		if normalizeName(e.Name) == want {
			return e, true
		}
	}
	return Entry{}, false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// call runs one API request with rate limiting and retries.
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := defaultBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.doRequest(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return err
		}
		c.logger.Warn("crm request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &retryableError{err: fmt.Errorf("rate limited (429)")}
	}
	if resp.StatusCode >= 500 {
		return &retryableError{err: fmt.Errorf("server error (%d): %s", resp.StatusCode, string(respBody))}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp apiError
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

type apiError struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// token returns a cached access token, exchanging client credentials
// when missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-30*time.Second)) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {"data"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rest/v1/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("token request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("token exchange returned empty token")
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.accessToken, nil
}
