package domain

import "fmt"

// RateLimitState is the last advisory snapshot of the server-side limiter.
// It may be stale between checks; the scheduler re-fetches it every cycle.
type RateLimitState struct {
	Exhausted    bool
	ResetSeconds int
	Remaining    int
}

// Account is one wallet+proxy pairing driven through the farming lifecycle.
// It lives for the whole process; unrecoverable setup failures mark it with
// HasError instead of removing it from the fleet.
type Account struct {
	Index    int
	Secret   string
	ProxyURL string

	ProxyIP        string
	WalletAddress  string
	SessionToken   string
	ActiveThreadID string
	FailureStreak  int
	RateLimit      RateLimitState
	PointsTotal    int64
	HasError       bool
}

func (a *Account) Authenticated() bool {
	return a.SessionToken != ""
}

// RecordSendFailure counts one send that produced no response. Reaching
// threshold consecutive failures abandons the active thread and resets the
// streak so the next cycle starts a fresh conversation. Reports whether the
// thread was recycled.
func (a *Account) RecordSendFailure(threshold int) bool {
	a.FailureStreak++
	if a.FailureStreak < threshold {
		return false
	}

	a.ActiveThreadID = ""
	a.FailureStreak = 0
	return true
}

// RecordMutedResponse handles a send that was answered but awarded no points:
// the thread is abandoned, but the failure streak is left untouched because
// the server did reply.
func (a *Account) RecordMutedResponse() {
	a.ActiveThreadID = ""
}

// RecordProgress handles a send that moved the points total.
func (a *Account) RecordProgress(points int64) {
	a.FailureStreak = 0
	a.PointsTotal = points
}

func (a *Account) AdoptThread(threadID string) {
	a.ActiveThreadID = threadID
	a.FailureStreak = 0
}

// Label is the log prefix for this account, 1-based like the console output.
func (a *Account) Label() string {
	return fmt.Sprintf("account %d", a.Index+1)
}

func FormatPoints(v int64) string {
	if v < 1_000 {
		return fmt.Sprintf("%d", v)
	}

	if v < 1_000_000 {
		return fmt.Sprintf("%.1fk", float64(v)/1_000)
	}

	return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
}

// ShortAddress compacts a 0x address for board output.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-4:]
}
