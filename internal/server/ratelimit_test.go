package server

import (
	"testing"
	"time"

	"github.com/lawnchairsociety/rosterforge/server/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRejectLimiter(t *testing.T, cfg config.RateLimitConfig) (*RejectLimiter, *fakeClock) {
	t.Helper()
	rl := NewRejectLimiter(cfg)
	t.Cleanup(rl.Stop)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl.now = clock.now
	return rl, clock
}

func TestRejectLimiter_Basic(t *testing.T) {
	rl, _ := newTestRejectLimiter(t, config.RateLimitConfig{
		MaxRejects:        3,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 10,
	})
	ip := "192.168.1.1"

	if locked, _ := rl.RecordReject(ip); locked {
		t.Error("first reject should not trigger lockout")
	}
	if locked, _ := rl.RecordReject(ip); locked {
		t.Error("second reject should not trigger lockout")
	}
	locked, d := rl.RecordReject(ip)
	if !locked {
		t.Error("third reject should trigger lockout")
	}
	if d != time.Second {
		t.Errorf("lockout = %v, want 1s", d)
	}
	if isLocked, _ := rl.IsLocked(ip); !isLocked {
		t.Error("IP should be locked")
	}
}

func TestRejectLimiter_AcceptClears(t *testing.T) {
	rl, _ := newTestRejectLimiter(t, config.RateLimitConfig{
		MaxRejects:        3,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 10,
	})
	ip := "192.168.1.1"

	rl.RecordReject(ip)
	rl.RecordReject(ip)
	rl.RecordAccept(ip)

	if n := rl.Rejects(ip); n != 0 {
		t.Errorf("Rejects after accept = %d, want 0", n)
	}
	if locked, _ := rl.RecordReject(ip); locked {
		t.Error("first reject after accept should not trigger lockout")
	}
}

func TestRejectLimiter_ExponentialBackoff(t *testing.T) {
	rl, clock := newTestRejectLimiter(t, config.RateLimitConfig{
		MaxRejects:        1,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 10,
	})
	ip := "192.168.1.1"

	for _, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second} {
		locked, d := rl.RecordReject(ip)
		if !locked || d != want {
			t.Errorf("RecordReject = %v, %v, want true, %v", locked, d, want)
		}
		clock.advance(d)
	}
}

func TestRejectLimiter_WhileLocked(t *testing.T) {
	rl, clock := newTestRejectLimiter(t, config.RateLimitConfig{
		MaxRejects:        1,
		LockoutSeconds:    10,
		MaxLockoutSeconds: 60,
	})
	ip := "192.168.1.1"

	rl.RecordReject(ip)
	clock.advance(4 * time.Second)

	locked, d := rl.RecordReject(ip)
	if !locked || d != 6*time.Second {
		t.Errorf("RecordReject while locked = %v, %v, want true, 6s", locked, d)
	}

	clock.advance(6 * time.Second)
	if locked, _ := rl.IsLocked(ip); locked {
		t.Error("lockout should have expired")
	}
}

func TestRejectLimiter_MultipleIPs(t *testing.T) {
	rl, _ := newTestRejectLimiter(t, config.RateLimitConfig{
		MaxRejects:        2,
		LockoutSeconds:    1,
		MaxLockoutSeconds: 10,
	})

	rl.RecordReject("192.168.1.1")
	rl.RecordReject("192.168.1.1")

	if locked, _ := rl.IsLocked("192.168.1.1"); !locked {
		t.Error("IP1 should be locked")
	}
	if locked, _ := rl.IsLocked("192.168.1.2"); locked {
		t.Error("IP2 should not be locked")
	}
	if locked, _ := rl.RecordReject("192.168.1.2"); locked {
		t.Error("first reject for IP2 should not trigger lockout")
	}
}

func TestRejectLimiter_Cleanup(t *testing.T) {
	rl, clock := newTestRejectLimiter(t, config.RateLimitConfig{MaxRejects: 5})

	rl.RecordReject("192.168.1.1")
	clock.advance(11 * time.Minute)
	rl.RecordReject("192.168.1.2")
	rl.cleanup()

	if n := rl.Rejects("192.168.1.1"); n != 0 {
		t.Errorf("stale client kept with %d rejects", n)
	}
	if n := rl.Rejects("192.168.1.2"); n != 1 {
		t.Errorf("recent client Rejects = %d, want 1", n)
	}
}

func TestRejectLimiter_Defaults(t *testing.T) {
	rl, _ := newTestRejectLimiter(t, config.RateLimitConfig{})

	if rl.maxRejects != 5 || rl.lockout != 30*time.Second || rl.maxLockout != 30*time.Second {
		t.Errorf("defaults = %d, %v, %v", rl.maxRejects, rl.lockout, rl.maxLockout)
	}
	rl.Stop()
}
