package limiter

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

type Config struct {
	// DefaultHourlyLimit applies to any IP without an override.
	DefaultHourlyLimit int `env:"RATE_LIMIT_DEFAULT" envDefault:"100"`
	// Overrides is parsed from "ip=limit,ip=limit" pairs. Keys are exact
	// IPs or wildcard patterns on the last IPv4 octet ("a.b.c.*").
	Overrides map[string]int
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter enforces a per-IP fixed hourly quota. Counters are reset lazily
// on first access past window expiry. All state is owned by the instance;
// construct one per server and inject it.
type Limiter struct {
	mu           sync.Mutex
	counters     map[string]*window
	defaultLimit int
	overrides    map[string]int
	windowLength time.Duration

	now func() time.Time
}

func New(cfg *Config) *Limiter {
	overrides := cfg.Overrides
	if overrides == nil {
		overrides = map[string]int{}
	}
	return &Limiter{
		counters:     make(map[string]*window),
		defaultLimit: cfg.DefaultHourlyLimit,
		overrides:    overrides,
		windowLength: time.Hour,
		now:          time.Now,
	}
}

// CheckAllowed performs an atomic check-and-increment for the given IP.
// It returns false once the IP's quota for the current window is spent.
func (l *Limiter) CheckAllowed(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.counters[ip]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.windowLength)}
		l.counters[ip] = w
	}

	if w.count >= l.limitFor(ip) {
		return false
	}
	w.count++
	return true
}

// limitFor resolves the quota: exact override first, then a last-octet
// wildcard ("a.b.c.*"), then the default.
func (l *Limiter) limitFor(ip string) int {
	if limit, ok := l.overrides[ip]; ok {
		return limit
	}
	if i := strings.LastIndex(ip, "."); i >= 0 {
		if limit, ok := l.overrides[ip[:i]+".*"]; ok {
			return limit
		}
	}
	return l.defaultLimit
}

// ParseOverrides parses an "ip=limit,ip=limit" string, skipping malformed
// pairs.
func ParseOverrides(raw string) map[string]int {
	overrides := map[string]int{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		limit, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || limit < 0 {
			continue
		}
		overrides[strings.TrimSpace(parts[0])] = limit
	}
	return overrides
}
