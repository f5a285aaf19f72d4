package ratelimit

import "testing"

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("client") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)

	if !rl.Allow("a") {
		t.Fatal("first request for key a should pass")
	}
	if rl.Allow("a") {
		t.Fatal("second request for key a should be limited")
	}
	// A different key has its own bucket.
	if !rl.Allow("b") {
		t.Fatal("first request for key b should pass")
	}
}
