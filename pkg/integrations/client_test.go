package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/skillcat/pkg/cache"
	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/httputil"
)

type message struct {
	Message string `json:"message"`
}

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(nil, time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache == nil {
		t.Error("NewClient() should default to a null cache")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestClientGet(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(message{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, time.Hour, map[string]string{"Authorization": "Bearer t"})

	var resp message
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
	if gotAuth != "Bearer t" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer t")
	}
}

func TestClientGetUsesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(message{Message: "cached"})
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(fc, time.Hour, nil)

	for range 3 {
		var resp message
		if err := client.Get(context.Background(), server.URL+"/x", &resp); err != nil {
			t.Fatalf("Get() error: %v", err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server calls = %d, want 1", n)
	}

	var resp message
	if err := client.Fetch(context.Background(), server.URL+"/x", &resp); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("Fetch should bypass the cache, server calls = %d, want 2", n)
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		headers   map[string]string
		wantCode  errs.Code
		outcome   Outcome
		retryable bool
	}{
		{"not found", http.StatusNotFound, nil, errs.ErrCodeNotFound, NotFound, false},
		{"unauthorized", http.StatusUnauthorized, nil, errs.ErrCodeUnauthorized, Unauthorized, false},
		{"rate limited 403", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": "1767225600"}, errs.ErrCodeRateLimited, RateLimited, false},
		{"secondary rate limit", http.StatusForbidden, map[string]string{"Retry-After": "60"}, errs.ErrCodeRateLimited, RateLimited, false},
		{"too many requests", http.StatusTooManyRequests, nil, errs.ErrCodeRateLimited, RateLimited, false},
		{"forbidden", http.StatusForbidden, nil, errs.ErrCodeNetwork, Transient, false},
		{"server error", http.StatusBadGateway, nil, errs.ErrCodeNetwork, Transient, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(nil, 0, nil)
			var v message
			err := client.Fetch(context.Background(), server.URL, &v)
			if err == nil {
				t.Fatal("Fetch() error = nil, want error")
			}
			if !errs.Is(err, tt.wantCode) {
				t.Errorf("Fetch() error = %v, want code %s", err, tt.wantCode)
			}
			if got := Classify(err); got != tt.outcome {
				t.Errorf("Classify() = %v, want %v", got, tt.outcome)
			}
			if got := httputil.IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestClientRateLimitReset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1767225600")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	var v message
	err := NewClient(nil, 0, nil).Fetch(context.Background(), server.URL, &v)

	var rl *errs.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("Fetch() error = %v, want RateLimitedError in chain", err)
	}
	if want := time.Unix(1767225600, 0).UTC(); !rl.Reset.Equal(want) {
		t.Errorf("Reset = %v, want %v", rl.Reset, want)
	}
}

func TestClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	var v message
	err := NewClient(nil, 0, nil).Get(context.Background(), server.URL, &v)
	if Classify(err) != Malformed {
		t.Errorf("Classify(%v) = %v, want malformed", err, Classify(err))
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != Found {
		t.Error("Classify(nil) should be Found")
	}
	if Classify(context.Canceled) != Transient {
		t.Error("Classify(context.Canceled) should be Transient")
	}
	if Classify(errs.ValidatePath("../x")) != Malformed {
		t.Error("a rejected content path should be Malformed")
	}
	if !RateLimited.Fatal() || NotFound.Fatal() || Malformed.Fatal() {
		t.Error("only rate limits, transient and auth failures abort pagination")
	}
	if RateLimited.String() != "rate_limited" {
		t.Errorf("String() = %q", RateLimited.String())
	}
}
