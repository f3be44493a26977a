package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/rosterforge/server/internal/config"
)

// RejectLimiter locks out clients that keep sending unreadable uploads.
// Each lockout doubles the previous one up to the configured maximum.
type RejectLimiter struct {
	mu          sync.Mutex
	clients     map[string]*rejectInfo
	maxRejects  int
	lockout     time.Duration
	maxLockout  time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type rejectInfo struct {
	rejects     int
	lockedUntil time.Time
	lockouts    int
	lastSeen    time.Time
}

// NewRejectLimiter creates a limiter and starts its cleanup goroutine.
func NewRejectLimiter(cfg config.RateLimitConfig) *RejectLimiter {
	rl := &RejectLimiter{
		clients:     make(map[string]*rejectInfo),
		maxRejects:  cfg.MaxRejects,
		lockout:     time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:  time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if rl.maxRejects <= 0 {
		rl.maxRejects = 5
	}
	if rl.lockout <= 0 {
		rl.lockout = 30 * time.Second
	}
	if rl.maxLockout < rl.lockout {
		rl.maxLockout = rl.lockout
	}

	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RejectLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// IsLocked reports whether ip is locked out and for how much longer.
func (rl *RejectLimiter) IsLocked(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.clients[ip]
	if !ok {
		return false, 0
	}
	now := rl.now()
	if now.Before(info.lockedUntil) {
		return true, info.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordReject counts a rejected upload from ip and reports whether the
// client is now locked out.
func (rl *RejectLimiter) RecordReject(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, ok := rl.clients[ip]
	if !ok {
		info = &rejectInfo{}
		rl.clients[ip] = info
	}
	info.lastSeen = now

	if now.Before(info.lockedUntil) {
		return true, info.lockedUntil.Sub(now)
	}

	info.rejects++
	if info.rejects < rl.maxRejects {
		return false, 0
	}

	info.lockouts++
	d := rl.lockoutFor(info.lockouts)
	info.lockedUntil = now.Add(d)
	info.rejects = 0
	return true, d
}

// RecordAccept clears the reject history of ip.
func (rl *RejectLimiter) RecordAccept(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.clients, ip)
}

// Rejects returns the rejects counted towards the next lockout of ip.
func (rl *RejectLimiter) Rejects(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if info, ok := rl.clients[ip]; ok {
		return info.rejects
	}
	return 0
}

func (rl *RejectLimiter) lockoutFor(n int) time.Duration {
	d := rl.lockout
	for i := 1; i < n; i++ {
		// compare before doubling so the value cannot overflow
		if d >= rl.maxLockout/2 {
			return rl.maxLockout
		}
		d *= 2
	}
	return min(d, rl.maxLockout)
}

func (rl *RejectLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup forgets clients that are unlocked and quiet for ten minutes.
func (rl *RejectLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for ip, info := range rl.clients {
		if info.lockedUntil.Before(cutoff) && info.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}
