package llmclient

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryRecoversAfterTransientErrors(t *testing.T) {
	fake := FailThenSucceed(2, errors.New("boom"), "answer")
	cli := Wrap(fake, Retry(3, time.Millisecond))
	t.Cleanup(func() { _ = cli.Close() })

	out, err := cli.Complete(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "answer" {
		t.Fatalf("out = %q, want %q", out, "answer")
	}
	if fake.Calls() != 3 {
		t.Fatalf("calls = %d, want 3", fake.Calls())
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	perm := NewPermanentError(errors.New("bad key"))
	fake := FailThenSucceed(5, perm, "never")
	cli := Wrap(fake, Retry(4, time.Millisecond))

	if _, err := cli.Complete(context.Background(), Request{Prompt: "p"}); err == nil {
		t.Fatal("want error")
	}
	if fake.Calls() != 1 {
		t.Fatalf("calls = %d, want 1 (no retries after permanent error)", fake.Calls())
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	fake := FailThenSucceed(10, boom, "never")
	cli := Wrap(fake, Retry(3, time.Millisecond))

	_, err := cli.Complete(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if fake.Calls() != 3 {
		t.Fatalf("calls = %d, want 3", fake.Calls())
	}
}

func TestRetryReturnsWithoutFinalBackoff(t *testing.T) {
	boom := errors.New("boom")
	fake := FailThenSucceed(10, boom, "never")
	cli := Wrap(fake, Retry(1, 2*time.Second))

	start := time.Now()
	_, err := cli.Complete(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	// A single attempt has no retry left, so there is nothing to back off for.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("elapsed = %v, exhaustion should not wait out the backoff", elapsed)
	}
}

func TestRateLimitSpacesCalls(t *testing.T) {
	fake := NewFakeClient("ok")
	cli := Wrap(fake, RateLimit(10, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := cli.Complete(ctx, Request{Prompt: "p"}); err != nil {
			t.Fatal(err)
		}
	}
	// burst=1 at 10 rps: two refills needed, so >= ~200ms total.
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Fatalf("elapsed = %v, want >= 150ms", elapsed)
	}
}

func TestRateLimitRespectsContextCancel(t *testing.T) {
	fake := NewFakeClient("ok")
	cli := Wrap(fake, RateLimit(0.1, 1))
	t.Cleanup(func() { _ = cli.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := cli.Complete(ctx, Request{Prompt: "a"}); err != nil {
		t.Fatalf("first call should pass the burst: %v", err)
	}
	if _, err := cli.Complete(ctx, Request{Prompt: "b"}); err == nil {
		t.Fatal("second call should fail when the context deadline hits")
	}
}
