package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// setupTestRedis creates a miniredis instance and a client against it
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client, mr
}

func testSession(id string) *domain.Session {
	return &domain.Session{
		ID:        id,
		UserID:    "user-1",
		Token:     "token-abc",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("session-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != session.UserID || got.Token != session.Token {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestSessionStore_GetMissing(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_SaveExpiredIsNoop(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("session-1")
	session.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := store.Get(ctx, "session-1")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_KeyExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("session-1")
	session.ExpiresAt = time.Now().Add(time.Minute)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "session-1")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after TTL, got %v", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, testSession("session-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := store.Get(ctx, "session-1")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}

	// Deleting a missing session is fine.
	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
