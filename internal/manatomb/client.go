// Package manatomb provides the HTTP client for the mana-tomb backend.
// Session identity is opaque to the client: it is carried entirely by the
// session cookie, which lives in the client's cookie jar.
package manatomb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRateLimitDelay = 100 * time.Millisecond
	maxBackoff            = 8 * time.Second
	userAgent             = "mana-tomb-cli/1.0"
)

// ClientConfig holds configuration for the backend HTTP client.
type ClientConfig struct {
	// BaseURL is the base URL of the mana-tomb API (e.g., "https://api.mana-tomb.com")
	BaseURL string

	// Timeout is the timeout for individual requests
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for transient failures
	MaxRetries int

	// RetryBaseDelay is the base delay for exponential backoff
	RetryBaseDelay time.Duration

	// RateLimitDelay is the minimum spacing between requests
	RateLimitDelay time.Duration

	// Jar holds the session cookie. When nil a fresh in-memory jar is used.
	Jar http.CookieJar
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig(baseURL string) *ClientConfig {
	return &ClientConfig{
		BaseURL:        baseURL,
		Timeout:        defaultTimeout,
		MaxRetries:     defaultMaxRetries,
		RetryBaseDelay: defaultRetryBaseDelay,
		RateLimitDelay: defaultRateLimitDelay,
	}
}

// Client is an HTTP client for the mana-tomb backend with rate limiting and
// retry. Safe for concurrent use.
type Client struct {
	config      *ClientConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a new backend client.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RetryBaseDelay == 0 {
		config.RetryBaseDelay = defaultRetryBaseDelay
	}
	if config.RateLimitDelay == 0 {
		config.RateLimitDelay = defaultRateLimitDelay
	}

	jar := config.Jar
	if jar == nil {
		var err error
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Jar:     jar,
		},
		rateLimiter: rate.NewLimiter(rate.Every(config.RateLimitDelay), 1),
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Jar returns the cookie jar holding the session cookie.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// Me probes the current session identity. Returns ErrUnauthorized when no
// valid session cookie is present.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var me meResponse
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &me); err != nil {
		return nil, fmt.Errorf("identity probe: %w", err)
	}
	// The probe only reports the email address.
	return &User{Username: me.Email, Email: me.Email}, nil
}

// Login submits credentials. On success the backend sets the session cookie
// on the client's jar.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if err := c.doRequest(ctx, http.MethodPost, "/login", creds, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Logout requests server-side session termination.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Register creates a new account. The backend sets a session cookie on
// success, so a registered user is immediately logged in.
func (c *Client) Register(ctx context.Context, reg Registration) (*RegisterResult, error) {
	var result RegisterResult
	if err := c.doRequest(ctx, http.MethodPost, "/register", reg, &result); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &result, nil
}

// LookupCard resolves a card name against the backend. The backend answers
// with either a single exact match or a relevance-ordered fuzzy candidate
// list; a 404 means no card matched at all.
func (c *Client) LookupCard(ctx context.Context, name string) (*CardLookupResult, error) {
	path := "/card/" + url.PathEscape(name)

	var result CardLookupResult
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("lookup card %q: %w", name, err)
	}
	return &result, nil
}

// RandomCard fetches a random card using the backend's "random" sentinel.
func (c *Client) RandomCard(ctx context.Context) (*Card, error) {
	var result CardLookupResult
	if err := c.doRequest(ctx, http.MethodGet, "/card/random", nil, &result); err != nil {
		return nil, fmt.Errorf("random card: %w", err)
	}
	if result.ExactMatch == nil {
		return nil, fmt.Errorf("random card: backend returned no card")
	}
	return result.ExactMatch, nil
}

// ListDecks retrieves the current user's decks. Credentialed.
func (c *Client) ListDecks(ctx context.Context) ([]Deck, error) {
	var decks []Deck
	if err := c.doRequest(ctx, http.MethodGet, "/decks", nil, &decks); err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return decks, nil
}

// GetDeck retrieves a deck by ID.
func (c *Client) GetDeck(ctx context.Context, deckID int) (*Deck, error) {
	var deck Deck
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/decks/%d", deckID), nil, &deck); err != nil {
		return nil, fmt.Errorf("get deck %d: %w", deckID, err)
	}
	return &deck, nil
}

// CreateDeck persists a new deck. The backend allocates the deck ID.
func (c *Client) CreateDeck(ctx context.Context, req CreateDeckRequest) (*Deck, error) {
	var deck Deck
	if err := c.doRequest(ctx, http.MethodPost, "/decks/create", req, &deck); err != nil {
		return nil, fmt.Errorf("create deck: %w", err)
	}
	return &deck, nil
}

// UpdateDeck replaces the persisted deck identified by deck.DeckID.
func (c *Client) UpdateDeck(ctx context.Context, deck Deck) (*Deck, error) {
	var updated Deck
	path := fmt.Sprintf("/decks/update/%d", deck.DeckID)
	if err := c.doRequest(ctx, http.MethodPut, path, deck, &updated); err != nil {
		return nil, fmt.Errorf("update deck %d: %w", deck.DeckID, err)
	}
	if updated.DeckID == 0 {
		updated.DeckID = deck.DeckID
	}
	return &updated, nil
}

// DeleteDeck removes the deck identified by deckID.
func (c *Client) DeleteDeck(ctx context.Context, deckID int) error {
	path := fmt.Sprintf("/decks/delete/%d", deckID)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete deck %d: %w", deckID, err)
	}
	return nil
}

// doRequest performs an HTTP request with rate limiting and retry logic.
// Transport errors, 5xx and 429 are retried with exponential backoff; other
// non-success statuses map to the client's typed errors.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	fullURL := c.config.BaseURL + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	var lastErr error
	backoff := c.config.RetryBaseDelay

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		retry, err := c.handleResponse(resp, path, result)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err

		// A Retry-After hint overrides the computed backoff for the next wait.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			backoff = apiErr.RetryAfter
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// handleResponse consumes and closes the response body. The bool return
// reports whether the failure is retryable.
func (c *Client) handleResponse(resp *http.Response, path string, result interface{}) (bool, error) {
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if result == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return false, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return false, fmt.Errorf("decode response: %w", err)
		}
		return false, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, ErrUnauthorized

	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, &NotFoundError{Path: path}

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
		if raw := resp.Header.Get("Retry-After"); raw != "" {
			if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return true, apiErr

	default:
		body, _ := io.ReadAll(resp.Body)
		return false, &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	}
}
