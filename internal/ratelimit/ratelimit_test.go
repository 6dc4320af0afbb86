package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWaitPerSourceSpacing(t *testing.T) {
	t.Parallel()
	l := New(5*time.Millisecond, 60*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := l.Wait(ctx, "studio"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Fatalf("two calls to the same source took %v, want >= ~60ms", elapsed)
	}
}

func TestWaitDifferentSourcesOnlyGlobal(t *testing.T) {
	t.Parallel()
	l := New(5*time.Millisecond, 500*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	if err := l.Wait(ctx, "alpha"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := l.Wait(ctx, "beta"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 400*time.Millisecond {
		t.Fatalf("distinct sources waited %v, should not pay the per-source interval", elapsed)
	}
}

func TestWaitCancelled(t *testing.T) {
	t.Parallel()
	l := New(time.Minute, time.Minute)
	ctx := context.Background()
	if err := l.Wait(ctx, "studio"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Wait(cancelled, "studio"); err == nil {
		t.Fatal("Wait on cancelled context returned nil")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	l := New(time.Minute, time.Minute)
	ctx := context.Background()
	if err := l.Wait(ctx, "studio"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	l.Reset()

	start := time.Now()
	if err := l.Wait(ctx, "studio"); err != nil {
		t.Fatalf("Wait after Reset: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Wait after Reset blocked for %v", elapsed)
	}
}
