package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ok, err := s.Exists(ctx, "sid-1")
	if err != nil || ok {
		t.Fatalf("Exists(unknown) = (%v, %v), want (false, nil)", ok, err)
	}

	if err := s.Create(ctx, "sid-1", time.Hour); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if ok, _ = s.Exists(ctx, "sid-1"); !ok {
		t.Error("session missing after Create")
	}

	if err := s.Destroy(ctx, "sid-1"); err != nil {
		t.Fatalf("Destroy() failed: %v", err)
	}
	if ok, _ = s.Exists(ctx, "sid-1"); ok {
		t.Error("session still live after Destroy")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, "sid-2", -time.Second); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if ok, _ := s.Exists(ctx, "sid-2"); ok {
		t.Error("expired session reported live")
	}
}
