package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("success first try", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("Retry() = %v after %d calls; want nil after 1", err, calls)
		}
	})

	t.Run("non-retryable stops", func(t *testing.T) {
		calls := 0
		permanent := errors.New("permanent")
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return permanent
		})
		if err != permanent || calls != 1 {
			t.Errorf("Retry() = %v after %d calls; want permanent after 1", err, calls)
		}
	})

	t.Run("retryable retries", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return Retryable(errTransient)
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("Retry() = %v after %d calls; want nil after 3", err, calls)
		}
	})

	t.Run("exhausted returns last error", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 2, time.Millisecond, func() error {
			calls++
			return Retryable(errTransient)
		})
		if !errors.Is(err, errTransient) || calls != 2 {
			t.Errorf("Retry() = %v after %d calls", err, calls)
		}
	})
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, 3, time.Second, func() error {
		calls++
		return Retryable(errTransient)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("fn called %d times after cancellation", calls)
	}
}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	if IsRetryable(errTransient) {
		t.Error("plain error should not be retryable")
	}
}

func TestPolicyHonorsRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Policy{Attempts: 2, Delay: time.Hour, MaxDelay: 20 * time.Millisecond}.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return RetryableAfter(errTransient, 10*time.Millisecond)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("Do() = %v after %d calls; want nil after 2", err, calls)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Do() waited %v; Retry-After should replace the backoff delay", elapsed)
	}
}

func TestPolicyCapsDelay(t *testing.T) {
	calls := 0
	start := time.Now()
	_ = Policy{Attempts: 3, Delay: time.Hour, MaxDelay: 5 * time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return Retryable(errTransient)
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Do() waited %v; MaxDelay should cap each wait", elapsed)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Retry-After", tt.value)
		}
		if got := RetryAfter(h); got != tt.want {
			t.Errorf("RetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRetryableAfterNil(t *testing.T) {
	if RetryableAfter(nil, time.Second) != nil {
		t.Error("RetryableAfter(nil) should return nil")
	}
}
