package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// adminFailures counts rejected admin credentials per client address. A
// client that reaches the limit within one window is refused for the
// cooldown, whatever credentials it sends next.
type adminFailures struct {
	mu        sync.Mutex
	clients   map[string]*failureRecord
	limit     int
	window    time.Duration
	cooldown  time.Duration
	lastSweep time.Time
}

type failureRecord struct {
	count        int
	windowStart  time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

func newAdminFailures(limit int, window, cooldown time.Duration) *adminFailures {
	if limit <= 0 || window <= 0 || cooldown <= 0 {
		return nil
	}
	return &adminFailures{
		clients:  make(map[string]*failureRecord),
		limit:    limit,
		window:   window,
		cooldown: cooldown,
	}
}

// retryAfter returns how long client must wait before its credentials are
// checked again, or zero when it may try now.
func (f *adminFailures) retryAfter(client string, now time.Time) time.Duration {
	if f == nil || client == "" {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepLocked(now)

	rec := f.clients[client]
	if rec == nil {
		return 0
	}
	rec.lastSeen = now
	if now.Before(rec.blockedUntil) {
		return rec.blockedUntil.Sub(now)
	}
	return 0
}

// fail records one rejected attempt and reports whether it started a
// cooldown.
func (f *adminFailures) fail(client string, now time.Time) bool {
	if f == nil || client == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepLocked(now)

	rec := f.clients[client]
	if rec == nil {
		rec = &failureRecord{}
		f.clients[client] = rec
	}
	rec.lastSeen = now
	if rec.windowStart.IsZero() || now.Sub(rec.windowStart) > f.window {
		rec.count = 0
		rec.windowStart = now
	}
	rec.count++
	if rec.count < f.limit {
		return false
	}
	rec.blockedUntil = now.Add(f.cooldown)
	rec.count = 0
	rec.windowStart = time.Time{}
	return true
}

// clear forgets a client after it authenticates.
func (f *adminFailures) clear(client string) {
	if f == nil || client == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, client)
}

func (f *adminFailures) tracked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// sweepLocked drops records idle for longer than both the window and the
// cooldown, at most once per window.
func (f *adminFailures) sweepLocked(now time.Time) {
	if !f.lastSweep.IsZero() && now.Sub(f.lastSweep) < f.window {
		return
	}
	f.lastSweep = now
	idle := max(f.window, f.cooldown)
	for client, rec := range f.clients {
		if now.Sub(rec.lastSeen) > idle && !now.Before(rec.blockedUntil) {
			delete(f.clients, client)
		}
	}
}

// adminClientKey identifies the caller by remote host, dropping the port so
// reconnects share one record.
func adminClientKey(r *http.Request) string {
	if r == nil {
		return ""
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return strings.TrimSpace(host)
	}
	return remote
}
