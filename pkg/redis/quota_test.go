package redis

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)

	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("invalid miniredis port: %v", err)
	}

	client, err := NewClient(NewRedisConfig().WithHost(mr.Host()).WithPort(port))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestQuota_RejectsBeyondMinuteBudget(t *testing.T) {
	client := newTestClient(t)
	quota, err := NewQuota(client, "openweathermap", NewQuotaOptions().WithMaxPerMinute(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := quota.Acquire(ctx); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	err = quota.Acquire(ctx)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestQuota_WaitTimesOut(t *testing.T) {
	client := newTestClient(t)
	opts := NewQuotaOptions().WithMaxPerMinute(1).WithWaitOnLimit(true, 150*time.Millisecond)
	quota, err := NewQuota(client, "open-meteo", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if err := quota.Acquire(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	err = quota.Acquire(ctx)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded after waiting, got %v", err)
	}
	if time.Since(start) < 100*time.Millisecond {
		t.Errorf("expected Acquire to wait before giving up")
	}
}

func TestQuota_RejectsBeyondSecondBudget(t *testing.T) {
	client := newTestClient(t)
	quota, err := NewQuota(client, "burst", NewQuotaOptions().WithMaxPerSecond(1).WithMaxPerMinute(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if err := quota.Acquire(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := quota.Acquire(ctx); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected the second call within a second to be rejected, got %v", err)
	}
}

func TestNewQuota_RequiresALimit(t *testing.T) {
	client := newTestClient(t)
	if _, err := NewQuota(client, "none", NewQuotaOptions()); err == nil {
		t.Fatal("expected validation error without limits")
	}
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t)
	if err := HealthCheck(context.Background(), client); err != nil {
		t.Fatalf("expected healthy redis, got %v", err)
	}
	if HealthDetails(client)["address"] == "" {
		t.Error("expected address in health details")
	}
}
