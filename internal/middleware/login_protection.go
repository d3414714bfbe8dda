// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// LoginProtection combines per-IP rate limiting of login requests with
// per-username lockout after repeated failures.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int
	lockoutDuration   time.Duration // doubles with each lockout
	attemptWindow     time.Duration

	stop chan struct{}
}

// loginAttempt tracks failed login attempts for an account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before account lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is base lockout time, doubles with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance and starts its
// cleanup loop. Call Close to stop it.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		stop:              make(chan struct{}),
	}

	go lp.cleanup()

	return lp
}

// Close stops the cleanup loop.
func (lp *LoginProtection) Close() {
	close(lp.stop)
}

// CheckIPRateLimit reports whether a login request from ip is allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.get(ip).Allow()
}

// IsAccountLocked returns whether username is locked and for how long.
func (lp *LoginProtection) IsAccountLocked(username string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[username]
	lp.attemptsMu.RUnlock()

	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.lockedUntil) {
		return true, time.Until(attempt.lockedUntil)
	}

	return false, 0
}

// RecordFailedAttempt records a failed login for username and reports
// whether the account is now locked.
func (lp *LoginProtection) RecordFailedAttempt(username string) (bool, time.Duration) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := time.Now()
	attempt, exists := lp.failedAttempts[username]

	if !exists {
		attempt = &loginAttempt{firstFailed: now}
		lp.failedAttempts[username] = attempt
	} else if now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt.count = 0
		attempt.firstFailed = now
	}

	attempt.count++
	slog.Debug("login attempt recorded", "username", username, "count", attempt.count)

	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	lockDuration := lp.lockoutDuration
	for i := 0; i < attempt.lockouts; i++ {
		lockDuration *= 2
		if lockDuration > 24*time.Hour {
			lockDuration = 24 * time.Hour
			break
		}
	}

	attempt.lockedUntil = now.Add(lockDuration)
	attempt.lockouts++
	attempt.count = 0

	slog.Warn("account locked due to failed login attempts",
		"username", username,
		"lockouts", attempt.lockouts,
		"duration", lockDuration,
	)

	return true, lockDuration
}

// RecordSuccessfulLogin clears failed attempt tracking for an account.
func (lp *LoginProtection) RecordSuccessfulLogin(username string) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	delete(lp.failedAttempts, username)
}

// GetRemainingAttempts returns the number of remaining attempts before lockout.
func (lp *LoginProtection) GetRemainingAttempts(username string) int {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[username]
	lp.attemptsMu.RUnlock()

	if !exists || time.Since(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}

	return max(lp.maxFailedAttempts-attempt.count, 0)
}

func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.stop:
			return
		}
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	now := time.Now()

	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared IP rate limiters due to size")
	}

	lp.attemptsMu.Lock()
	for username, attempt := range lp.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, username)
		}
	}
	lp.attemptsMu.Unlock()
}

// Middleware rate limits POST requests per client IP.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := GetClientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.Warn("login rate limit exceeded", "ip", ip)
				writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many login attempts, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClientIP extracts the client IP from proxy headers or RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
