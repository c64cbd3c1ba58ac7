package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"klokfarm/internal/ports"
)

// fakeChatAPI implements ports.ChatAPI with overridable behavior per call.
// Unset calls return benign defaults so tests only wire what they exercise.
type fakeChatAPI struct {
	verifyFn        func(ctx context.Context, req ports.VerifyRequest) (ports.VerifyResult, error)
	rateLimitFn     func(ctx context.Context) (ports.RateLimitSnapshot, error)
	threadsFn       func(ctx context.Context) ([]ports.Thread, error)
	sendChatFn      func(ctx context.Context, req ports.ChatRequest) (ports.ChatResult, error)
	pointsFn        func(ctx context.Context) (int64, error)
	taskCompletedFn func(ctx context.Context, task string) (bool, error)
	completeTaskFn  func(ctx context.Context, task string) (int64, error)
	externalIPFn    func(ctx context.Context) (string, error)

	sessionToken string
}

func (f *fakeChatAPI) SetSessionToken(token string) { f.sessionToken = token }

func (f *fakeChatAPI) Verify(ctx context.Context, req ports.VerifyRequest) (ports.VerifyResult, error) {
	if f.verifyFn == nil {
		return ports.VerifyResult{SessionToken: "token", UserExists: true}, nil
	}
	return f.verifyFn(ctx, req)
}

func (f *fakeChatAPI) RateLimit(ctx context.Context) (ports.RateLimitSnapshot, error) {
	if f.rateLimitFn == nil {
		return ports.RateLimitSnapshot{Remaining: 10}, nil
	}
	return f.rateLimitFn(ctx)
}

func (f *fakeChatAPI) Threads(ctx context.Context) ([]ports.Thread, error) {
	if f.threadsFn == nil {
		return nil, nil
	}
	return f.threadsFn(ctx)
}

func (f *fakeChatAPI) SendChat(ctx context.Context, req ports.ChatRequest) (ports.ChatResult, error) {
	if f.sendChatFn == nil {
		return ports.ChatResult{"message": "ok"}, nil
	}
	return f.sendChatFn(ctx, req)
}

func (f *fakeChatAPI) Points(ctx context.Context) (int64, error) {
	if f.pointsFn == nil {
		return 100, nil
	}
	return f.pointsFn(ctx)
}

func (f *fakeChatAPI) TaskCompleted(ctx context.Context, task string) (bool, error) {
	if f.taskCompletedFn == nil {
		return true, nil
	}
	return f.taskCompletedFn(ctx, task)
}

func (f *fakeChatAPI) CompleteTask(ctx context.Context, task string) (int64, error) {
	if f.completeTaskFn == nil {
		return 0, nil
	}
	return f.completeTaskFn(ctx, task)
}

func (f *fakeChatAPI) ExternalIP(ctx context.Context) (string, error) {
	if f.externalIPFn == nil {
		return "203.0.113.7", nil
	}
	return f.externalIPFn(ctx)
}

type fakeSigner struct {
	address string
	err     error
}

func (f fakeSigner) Address(string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.address == "" {
		return "0xAddr", nil
	}
	return f.address, nil
}

func (f fakeSigner) SignMessage(_, message string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "signed:" + message, nil
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

// noopSleeper skips all pauses so tests run instantly.
type noopSleeper struct{}

func (noopSleeper) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// recordingWaiter captures every wait and can cancel the run afterwards so
// Run terminates deterministically.
type recordingWaiter struct {
	mu     sync.Mutex
	waits  []time.Duration
	cancel context.CancelFunc
}

func (w *recordingWaiter) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
	return ctx.Err()
}

func (w *recordingWaiter) recorded() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.waits...)
}

type fixedPrompts struct {
	text string
}

func (p fixedPrompts) Next() string {
	if p.text == "" {
		return "Tell me something I might not know."
	}
	return p.text
}

func testRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1, Sleeper: noopSleeper{}}
}

var errBoom = errors.New("boom")
