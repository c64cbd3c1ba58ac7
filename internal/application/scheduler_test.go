package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klokfarm/internal/ports"
)

func testSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		AccountPause:      0,
		CyclePause:        5 * time.Second,
		MaxWait:           24 * time.Hour,
		MaxFailedAttempts: 3,
	}
}

func authenticatedSession(api *fakeChatAPI) *Session {
	sess := newTestSession(api, testRetry())
	sess.Account.SessionToken = "tok"
	sess.Account.ActiveThreadID = "t-1"
	return sess
}

func exhaustedAPI(resetSeconds int) *fakeChatAPI {
	return &fakeChatAPI{
		rateLimitFn: func(context.Context) (ports.RateLimitSnapshot, error) {
			return ports.RateLimitSnapshot{Remaining: 0, ResetSeconds: resetSeconds}, nil
		},
	}
}

func TestRunWaitsForSmallestPositiveReset(t *testing.T) {
	sessions := []*Session{
		authenticatedSession(exhaustedAPI(0)),
		authenticatedSession(exhaustedAPI(120)),
		authenticatedSession(exhaustedAPI(45)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	waiter := &recordingWaiter{cancel: cancel}
	s := NewScheduler(sessions, fixedPrompts{}, noopSleeper{}, waiter, testSchedulerConfig(), nil)

	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	waits := waiter.recorded()
	require.Len(t, waits, 1)
	assert.Equal(t, 45*time.Second, waits[0])
}

func TestRunFallsBackToMaxWaitWithoutPositiveResets(t *testing.T) {
	sessions := []*Session{
		authenticatedSession(exhaustedAPI(0)),
		authenticatedSession(exhaustedAPI(0)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	waiter := &recordingWaiter{cancel: cancel}
	s := NewScheduler(sessions, fixedPrompts{}, noopSleeper{}, waiter, testSchedulerConfig(), nil)

	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	waits := waiter.recorded()
	require.Len(t, waits, 1)
	assert.Equal(t, 24*time.Hour, waits[0])
}

func TestRunCapsWaitAtMaxWait(t *testing.T) {
	sessions := []*Session{
		authenticatedSession(exhaustedAPI(100_000)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	waiter := &recordingWaiter{cancel: cancel}
	cfg := testSchedulerConfig()
	cfg.MaxWait = time.Hour
	s := NewScheduler(sessions, fixedPrompts{}, noopSleeper{}, waiter, cfg, nil)

	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	waits := waiter.recorded()
	require.Len(t, waits, 1)
	assert.Equal(t, time.Hour, waits[0])
}

func TestRunPausesBrieflyWhileCapacityRemains(t *testing.T) {
	sessions := []*Session{
		authenticatedSession(&fakeChatAPI{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	waiter := &recordingWaiter{cancel: cancel}
	s := NewScheduler(sessions, fixedPrompts{}, noopSleeper{}, waiter, testSchedulerConfig(), nil)

	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	waits := waiter.recorded()
	require.Len(t, waits, 1)
	assert.Equal(t, 5*time.Second, waits[0])
}

func TestProcessAccountReportsResetWhenExhausted(t *testing.T) {
	sess := authenticatedSession(exhaustedAPI(90))
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	limited, reset := s.processAccount(context.Background(), sess)

	assert.True(t, limited)
	assert.Equal(t, 90, reset)
}

func TestProcessAccountTreatsUnknownRateLimitAsExhausted(t *testing.T) {
	api := &fakeChatAPI{
		rateLimitFn: func(context.Context) (ports.RateLimitSnapshot, error) {
			return ports.RateLimitSnapshot{}, errBoom
		},
	}
	sess := authenticatedSession(api)
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	limited, reset := s.processAccount(context.Background(), sess)

	assert.True(t, limited)
	assert.Zero(t, reset)
	assert.True(t, sess.Account.RateLimit.Exhausted)
}

func TestProcessAccountReauthenticatesMissingToken(t *testing.T) {
	verified := false
	api := &fakeChatAPI{
		verifyFn: func(context.Context, ports.VerifyRequest) (ports.VerifyResult, error) {
			verified = true
			return ports.VerifyResult{SessionToken: "tok-new"}, nil
		},
	}
	sess := authenticatedSession(api)
	sess.Account.SessionToken = ""
	sess.Account.HasError = true
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	limited, _ := s.processAccount(context.Background(), sess)

	assert.True(t, verified)
	assert.False(t, limited)
	assert.Equal(t, "tok-new", sess.Account.SessionToken)
	assert.False(t, sess.Account.HasError)
}

func TestProcessAccountMarksFailedReauthentication(t *testing.T) {
	api := &fakeChatAPI{
		verifyFn: func(context.Context, ports.VerifyRequest) (ports.VerifyResult, error) {
			return ports.VerifyResult{}, errBoom
		},
	}
	sess := authenticatedSession(api)
	sess.Account.SessionToken = ""
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	limited, reset := s.processAccount(context.Background(), sess)

	assert.True(t, limited)
	assert.Zero(t, reset)
	assert.True(t, sess.Account.HasError)
}

func TestProcessAccountRewardResetsStreak(t *testing.T) {
	pointsCalls := 0
	api := &fakeChatAPI{
		pointsFn: func(context.Context) (int64, error) {
			pointsCalls++
			if pointsCalls == 1 {
				return 100, nil
			}
			return 110, nil
		},
	}
	sess := authenticatedSession(api)
	sess.Account.FailureStreak = 2
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	limited, _ := s.processAccount(context.Background(), sess)

	assert.False(t, limited)
	assert.Zero(t, sess.Account.FailureStreak)
	assert.Equal(t, int64(110), sess.Account.PointsTotal)
	assert.Equal(t, "t-1", sess.Account.ActiveThreadID)
}

func TestProcessAccountRecyclesMutedConversation(t *testing.T) {
	api := &fakeChatAPI{
		pointsFn: func(context.Context) (int64, error) { return 100, nil },
	}
	sess := authenticatedSession(api)
	sess.Account.FailureStreak = 2

	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	limited, _ := s.processAccount(context.Background(), sess)

	assert.False(t, limited)
	assert.Empty(t, sess.Account.ActiveThreadID)
	assert.Equal(t, 2, sess.Account.FailureStreak)
}

func TestProcessAccountCountsEmptyResponses(t *testing.T) {
	api := &fakeChatAPI{
		sendChatFn: func(context.Context, ports.ChatRequest) (ports.ChatResult, error) {
			return ports.ChatResult{}, nil
		},
	}
	sess := authenticatedSession(api)
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	s.processAccount(context.Background(), sess)
	assert.Equal(t, 1, sess.Account.FailureStreak)
	assert.Equal(t, "t-1", sess.Account.ActiveThreadID)

	s.processAccount(context.Background(), sess)
	assert.Equal(t, 2, sess.Account.FailureStreak)

	s.processAccount(context.Background(), sess)
	assert.Zero(t, sess.Account.FailureStreak)
	assert.Empty(t, sess.Account.ActiveThreadID)
}

func TestProcessAccountCountsSendErrors(t *testing.T) {
	api := &fakeChatAPI{
		sendChatFn: func(context.Context, ports.ChatRequest) (ports.ChatResult, error) {
			return nil, errBoom
		},
	}
	sess := authenticatedSession(api)
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	limited, _ := s.processAccount(context.Background(), sess)

	assert.False(t, limited)
	assert.Equal(t, 1, sess.Account.FailureStreak)
}

func TestProcessAccountSkipsSendWithoutPointsOnRecord(t *testing.T) {
	sent := false
	api := &fakeChatAPI{
		pointsFn: func(context.Context) (int64, error) { return 0, nil },
		sendChatFn: func(context.Context, ports.ChatRequest) (ports.ChatResult, error) {
			sent = true
			return ports.ChatResult{"message": "ok"}, nil
		},
	}
	sess := authenticatedSession(api)
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	limited, _ := s.processAccount(context.Background(), sess)

	assert.False(t, limited)
	assert.False(t, sent)
}

func TestProcessAccountRecoversFromPanic(t *testing.T) {
	ipRefreshed := false
	api := &fakeChatAPI{
		taskCompletedFn: func(context.Context, string) (bool, error) {
			panic("unexpected")
		},
		externalIPFn: func(context.Context) (string, error) {
			ipRefreshed = true
			return "203.0.113.9", nil
		},
	}
	sess := authenticatedSession(api)
	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	assert.NotPanics(t, func() {
		limited, reset := s.processAccount(context.Background(), sess)
		assert.False(t, limited)
		assert.Zero(t, reset)
	})
	assert.True(t, ipRefreshed)
	assert.Equal(t, "203.0.113.9", sess.Account.ProxyIP)
}

func TestRunCycleAggregatesAcrossAccounts(t *testing.T) {
	limitedSess := authenticatedSession(exhaustedAPI(60))
	healthySess := authenticatedSession(&fakeChatAPI{})

	s := NewScheduler([]*Session{limitedSess, healthySess}, fixedPrompts{}, noopSleeper{}, nil, testSchedulerConfig(), nil)

	outcome := s.runCycle(context.Background())

	assert.False(t, outcome.allLimited)
	assert.Equal(t, 60, outcome.minReset)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScheduler(nil, fixedPrompts{}, noopSleeper{}, &recordingWaiter{}, testSchedulerConfig(), nil)

	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchedulerDefaultsNilCollaborators(t *testing.T) {
	s := NewScheduler(nil, fixedPrompts{}, nil, nil, testSchedulerConfig(), nil)

	require.NotNil(t, s.sleeper)
	require.NotNil(t, s.waiter)
	require.NotNil(t, s.log)
}
