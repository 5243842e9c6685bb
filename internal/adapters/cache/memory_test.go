package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_AddIsSetNX(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	fresh, err := c.Add(ctx, "k", time.Minute)
	if err != nil || !fresh {
		t.Fatalf("first add: fresh=%v err=%v", fresh, err)
	}

	fresh, err = c.Add(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if fresh {
		t.Fatal("second add must report the key as already seen")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if _, err := c.Add(ctx, "k", time.Minute); err != nil {
		t.Fatalf("add: %v", err)
	}

	c.now = func() time.Time { return now.Add(2 * time.Minute) }

	fresh, err := c.Add(ctx, "k", time.Minute)
	if err != nil || !fresh {
		t.Fatalf("add after ttl: fresh=%v err=%v", fresh, err)
	}
}

func TestMemory_GetMiss(t *testing.T) {
	c := NewMemory()

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemory_SetGetDelete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := c.Get(ctx, "k")
	if err != nil || v != "v" {
		t.Fatalf("get: v=%q err=%v", v, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err := c.Exists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("exists after delete: ok=%v err=%v", ok, err)
	}
}
