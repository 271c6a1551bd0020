package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !rl.Allow("ip1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow("ip1") {
		t.Fatalf("request over limit should be denied")
	}
	if !rl.Allow("ip2") {
		t.Fatalf("other key should be unaffected")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiterWithNow(1, time.Minute, func() time.Time { return now })

	if !rl.Allow("ip1") {
		t.Fatalf("first request should be allowed")
	}
	if rl.Allow("ip1") {
		t.Fatalf("second request should be denied")
	}

	now = now.Add(2 * time.Minute)
	if !rl.Allow("ip1") {
		t.Fatalf("request after window should be allowed")
	}
}
