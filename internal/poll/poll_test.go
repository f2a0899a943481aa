package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestUntilImmediate(t *testing.T) {
	err := Until(context.Background(), func() bool { return true }, time.Second, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUntilEventually(t *testing.T) {
	var n atomic.Int32
	err := Until(context.Background(), func() bool {
		return n.Add(1) >= 3
	}, time.Second, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUntilTimeout(t *testing.T) {
	start := time.Now()
	err := Until(context.Background(), func() bool { return false }, 50*time.Millisecond, 5*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout took too long: %v", time.Since(start))
	}
}

func TestUntilContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Until(ctx, func() bool { return false }, time.Second, time.Millisecond)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestForState(t *testing.T) {
	var n atomic.Int32
	got, err := ForState(context.Background(), func() int32 {
		return n.Add(1)
	}, func(v int32) bool { return v >= 2 }, time.Second, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got < 2 {
		t.Errorf("got %d, want >= 2", got)
	}
}

func TestForStateTimeoutReturnsLastValue(t *testing.T) {
	got, err := ForState(context.Background(), func() string {
		return "stuck"
	}, func(string) bool { return false }, 30*time.Millisecond, 5*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got != "stuck" {
		t.Errorf("got %q, want last observed value", got)
	}
}
