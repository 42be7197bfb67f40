package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

// Integration test is skipped unless REDIS_URL is set.
func TestRedisStoreIntegration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close() //nolint:errcheck

	store := NewSessionStore(client,
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
		false,
	)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	want := Principal{ID: "u-master", Name: "Mario", Role: "master"}
	r := requestWithSession(t, store, want)

	var got Principal
	w := httptest.NewRecorder()
	RequireActor(store, true, newTestLogger())(capture(t, &got)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestRedisStore_RejectsNonStringValues(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close() //nolint:errcheck

	store := NewSessionStore(client,
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
		false,
	)
	r := httptest.NewRequest(http.MethodGet, "/api/contracts", http.NoBody)
	session, err := store.New(r, sessionName)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	session.Values[sessionUserIDKey] = 42
	if err := store.Save(r, httptest.NewRecorder(), session); err == nil {
		t.Fatal("expected error saving a non-string session value")
	}
}
