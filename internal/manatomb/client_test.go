package manatomb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig(baseURL string) *ClientConfig {
	config := DefaultClientConfig(baseURL)
	config.RetryBaseDelay = time.Millisecond
	config.RateLimitDelay = time.Millisecond
	return config
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, server
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewClient(&ClientConfig{}); err == nil {
		t.Error("expected error for empty base URL")
	}
}

func TestClient_LookupCard_ExactMatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/card/Lightning%20Bolt" && r.URL.Path != "/card/Lightning Bolt" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"exact_match":{"name":"Lightning Bolt","mana_cost":"{R}","type_line":"Instant"}}`))
	}))

	result, err := client.LookupCard(context.Background(), "Lightning Bolt")
	if err != nil {
		t.Fatalf("LookupCard failed: %v", err)
	}
	if result.ExactMatch == nil {
		t.Fatal("expected exact match")
	}
	if result.ExactMatch.Name != "Lightning Bolt" {
		t.Errorf("expected 'Lightning Bolt', got %q", result.ExactMatch.Name)
	}
	if len(result.FuzzyMatches) != 0 {
		t.Errorf("expected no fuzzy matches, got %d", len(result.FuzzyMatches))
	}
}

func TestClient_LookupCard_FuzzyMatches(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fuzzy_matches":[{"name":"Lightning Bolt"},{"name":"Chain Lightning"}]}`))
	}))

	result, err := client.LookupCard(context.Background(), "Bolt")
	if err != nil {
		t.Fatalf("LookupCard failed: %v", err)
	}
	if result.ExactMatch != nil {
		t.Error("expected no exact match")
	}
	if len(result.FuzzyMatches) != 2 {
		t.Fatalf("expected 2 fuzzy matches, got %d", len(result.FuzzyMatches))
	}
	// The backend's relevance ordering must be preserved.
	if result.FuzzyMatches[0].Name != "Lightning Bolt" || result.FuzzyMatches[1].Name != "Chain Lightning" {
		t.Errorf("order not preserved: %q, %q", result.FuzzyMatches[0].Name, result.FuzzyMatches[1].Name)
	}
}

func TestClient_LookupCard_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "No cards found", http.StatusNotFound)
	}))

	_, err := client.LookupCard(context.Background(), "Zzyzx")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestClient_Login_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
	}))

	err := client.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_SessionCookieRoundTrip(t *testing.T) {
	const token = "deadbeef"
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "session_token", Value: token, Path: "/"})
			_, _ = w.Write([]byte(`{"success":true}`))
		case "/me":
			cookie, err := r.Cookie("session_token")
			if err != nil || cookie.Value != token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"email":"a@b.com"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))

	ctx := context.Background()
	if err := client.Login(ctx, Credentials{Email: "a@b.com", Password: "pw"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	user, err := client.Me(ctx)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Errorf("expected email 'a@b.com', got %q", user.Email)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	if _, err := client.ListDecks(context.Background()); err != nil {
		t.Fatalf("ListDecks failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestClient_RetriesRateLimited(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	if _, err := client.ListDecks(context.Background()); err != nil {
		t.Fatalf("ListDecks failed after 429: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestClient_RetryAfterHintSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	config := testConfig(server.URL)
	config.MaxRetries = 0
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.ListDecks(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.RetryAfter != 3*time.Second {
		t.Errorf("expected Retry-After hint of 3s, got %v", apiErr.RetryAfter)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))

	_, err := client.ListDecks(context.Background())
	if err == nil {
		t.Fatal("expected error for 400")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestClient_CreateDeck(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/decks/create" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"deck_id":42}`))
	}))

	deck, err := client.CreateDeck(context.Background(), CreateDeckRequest{
		Name:      "Burn",
		Commander: "Torbran, Thane of Red Fell",
		Cards:     []string{"Lightning Bolt"},
		UserID:    7,
	})
	if err != nil {
		t.Fatalf("CreateDeck failed: %v", err)
	}
	if deck.DeckID != 42 {
		t.Errorf("expected server-assigned deck ID 42, got %d", deck.DeckID)
	}
}

func TestClient_RandomCard(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/card/random" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"exact_match":{"name":"Black Lotus"}}`))
	}))

	card, err := client.RandomCard(context.Background())
	if err != nil {
		t.Fatalf("RandomCard failed: %v", err)
	}
	if card.Name != "Black Lotus" {
		t.Errorf("expected 'Black Lotus', got %q", card.Name)
	}
}
