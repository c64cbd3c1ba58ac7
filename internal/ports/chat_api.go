package ports

import (
	"context"
	"time"
)

type VerifyRequest struct {
	SignedMessage string
	Message       string
	ReferralCode  string
}

type VerifyResult struct {
	SessionToken string
	UserExists   bool
}

// RateLimitSnapshot is the raw /rate-limit response before the
// remaining==0 interpretation is applied.
type RateLimitSnapshot struct {
	Remaining    int
	ResetSeconds int
}

type Thread struct {
	ID string
}

type ChatMessage struct {
	Role    string
	Content string
}

type ChatRequest struct {
	ThreadID  string
	Messages  []ChatMessage
	CreatedAt time.Time
}

// ChatResult is the assistant turn as returned by the service. The core never
// inspects it beyond presence; an empty result means the send produced
// nothing usable.
type ChatResult map[string]any

// ChatAPI is one account's view of the remote chat service. Implementations
// are bound to that account's proxy; the session token is attached after
// authentication and sent on every call except Verify.
type ChatAPI interface {
	SetSessionToken(token string)
	Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error)
	RateLimit(ctx context.Context) (RateLimitSnapshot, error)
	Threads(ctx context.Context) ([]Thread, error)
	SendChat(ctx context.Context, req ChatRequest) (ChatResult, error)
	Points(ctx context.Context) (int64, error)
	TaskCompleted(ctx context.Context, task string) (bool, error)
	CompleteTask(ctx context.Context, task string) (int64, error)
	ExternalIP(ctx context.Context) (string, error)
}

// ChatAPIFactory builds a ChatAPI whose egress goes through proxyURL.
type ChatAPIFactory func(proxyURL string) (ChatAPI, error)
