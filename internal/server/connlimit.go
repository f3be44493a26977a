package server

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/lawnchairsociety/rosterforge/server/internal/config"
	"github.com/lawnchairsociety/rosterforge/server/internal/logger"
)

// ConnLimiter bounds concurrent uploads per client IP and overall.
type ConnLimiter struct {
	mu       sync.Mutex
	inFlight map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

// NewConnLimiter creates a limiter from cfg. Zero limits are unlimited.
func NewConnLimiter(cfg config.ConnectionsConfig) *ConnLimiter {
	return &ConnLimiter{
		inFlight: make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
	}
}

// TryAcquire takes a slot for ip, or reports false when a limit is reached.
func (c *ConnLimiter) TryAcquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTotal > 0 && c.total >= c.maxTotal {
		return false
	}
	if c.maxPerIP > 0 && c.inFlight[ip] >= c.maxPerIP {
		return false
	}

	c.inFlight[ip]++
	c.total++
	return true
}

// Release returns a slot taken by TryAcquire.
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight[ip] > 0 {
		c.inFlight[ip]--
		if c.inFlight[ip] == 0 {
			delete(c.inFlight, ip)
		}
	}
	if c.total > 0 {
		c.total--
	}
}

// Stats returns the uploads in flight and the number of distinct clients.
func (c *ConnLimiter) Stats() (total int, clients int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, len(c.inFlight)
}

// InFlight returns the uploads in flight for ip.
func (c *ConnLimiter) InFlight(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[ip]
}

// Wrap runs next only when a slot is free for the client, answering 429
// otherwise. The slot is held until next returns.
func (c *ConnLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !c.TryAcquire(ip) {
			logger.Warning("Upload rejected - limit exceeded", "client_ip", ip, "path", r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "Too many uploads in progress. Please try again later.")
			return
		}
		defer c.Release(ip)
		next(w, r)
	}
}

// clientIP prefers the proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// "client, proxy1, proxy2"
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return extractIP(r.RemoteAddr)
}

// extractIP strips the port from an ip:port address.
func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
