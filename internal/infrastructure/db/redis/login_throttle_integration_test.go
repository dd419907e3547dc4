//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/candycraft/sweetshop-api/internal/testutil"
)

func TestLoginThrottle(t *testing.T) {
	ctx := context.Background()

	container, err := testutil.NewRedisContainer(ctx)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate redis: %v", err)
		}
	})

	client, err := Connect(ctx, Config{Addr: container.Addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	throttle := NewLoginThrottle(client, 3, time.Minute)
	const email = "eve@example.com"

	for i := 0; i < 3; i++ {
		ok, err := throttle.Allowed(ctx, email)
		if err != nil || !ok {
			t.Fatalf("attempt %d: expected allowed, got %v, %v", i, ok, err)
		}
		if err := throttle.RecordFailure(ctx, email); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	ok, err := throttle.Allowed(ctx, email)
	if err != nil || ok {
		t.Fatalf("expected blocked after 3 failures, got %v, %v", ok, err)
	}

	ttl, err := client.TTL(ctx, throttle.key(email)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected TTL within window, got %v, %v", ttl, err)
	}

	if err := throttle.Reset(ctx, email); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ok, _ := throttle.Allowed(ctx, email); !ok {
		t.Fatalf("expected allowed after reset")
	}
}
