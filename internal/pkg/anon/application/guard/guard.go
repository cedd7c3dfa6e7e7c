// Package guard holds the per-process ingress filter: banned substrings first, then a
// sliding-window rate cap per sender.
package guard

import (
	"strings"
	"sync"
	"time"
)

type Verdict int

const (
	VerdictAllowed Verdict = iota
	VerdictBanned
	VerdictRateLimited
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllowed:
		return "allowed"
	case VerdictBanned:
		return "banned"
	case VerdictRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

const (
	DefaultWindow      = 10 * time.Second
	DefaultMaxMessages = 5
	DefaultStaleAfter  = time.Hour
)

type Options struct {
	Window      time.Duration
	MaxMessages int
	StaleAfter  time.Duration
	BannedWords []string
}

// SpamGuard is safe for concurrent use. State is local to the process.
type SpamGuard struct {
	window     time.Duration
	max        int
	staleAfter time.Duration
	banned     []string

	mu     sync.Mutex
	events map[int64][]time.Time
}

func New(o Options) *SpamGuard {
	g := &SpamGuard{
		window:     o.Window,
		max:        o.MaxMessages,
		staleAfter: o.StaleAfter,
		events:     make(map[int64][]time.Time),
	}
	if g.window <= 0 {
		g.window = DefaultWindow
	}
	if g.max <= 0 {
		g.max = DefaultMaxMessages
	}
	if g.staleAfter <= 0 {
		g.staleAfter = DefaultStaleAfter
	}
	g.banned = normalizeWords(o.BannedWords)
	return g
}

// Classify decides whether the item may be relayed. A banned item is not counted
// against the sender's window.
func (g *SpamGuard) Classify(text string, senderID int64, now time.Time) Verdict {
	if g.containsBanned(text) {
		return VerdictBanned
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := now.Add(-g.window)
	kept := g.events[senderID][:0]
	for _, t := range g.events[senderID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	g.events[senderID] = kept
	if len(kept) > g.max {
		return VerdictRateLimited
	}
	return VerdictAllowed
}

// Sweep forgets senders whose last event is older than the staleness threshold.
func (g *SpamGuard) Sweep(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := now.Add(-g.staleAfter)
	n := 0
	for id, ts := range g.events {
		if len(ts) == 0 || ts[len(ts)-1].Before(cutoff) {
			delete(g.events, id)
			n++
		}
	}
	return n
}

// Tracked returns the number of senders currently held in memory.
func (g *SpamGuard) Tracked() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.events)
}

func (g *SpamGuard) containsBanned(text string) bool {
	if text == "" || len(g.banned) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range g.banned {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func normalizeWords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
