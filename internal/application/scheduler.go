package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"klokfarm/internal/domain"
	"klokfarm/internal/ports"
)

type SchedulerConfig struct {
	// AccountPause throttles request cadence between per-account units.
	AccountPause time.Duration
	// CyclePause is the short wait between cycles while capacity remains.
	CyclePause time.Duration
	// MaxWait caps the all-accounts-limited wait; also the fallback when no
	// account reported a positive reset.
	MaxWait time.Duration
	// MaxFailedAttempts is the consecutive-failure threshold that recycles a
	// conversation.
	MaxFailedAttempts int
}

// Scheduler drives every session through the per-account work unit, one at a
// time in fixed index order, forever. It never terminates on its own; only
// context cancellation stops it.
type Scheduler struct {
	sessions []*Session
	prompts  ports.PromptSource
	sleeper  ports.Sleeper
	waiter   ports.Waiter
	cfg      SchedulerConfig
	log      *zap.Logger
}

func NewScheduler(sessions []*Session, prompts ports.PromptSource, sleeper ports.Sleeper, waiter ports.Waiter, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if sleeper == nil {
		sleeper = ports.SystemSleeper{}
	}
	if waiter == nil {
		waiter = ports.SleeperWaiter{Sleeper: sleeper}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		sessions: sessions,
		prompts:  prompts,
		sleeper:  sleeper,
		waiter:   waiter,
		cfg:      cfg,
		log:      logger,
	}
}

type cycleOutcome struct {
	allLimited bool
	// minReset is the smallest positive reset reported by a limited account
	// this cycle; 0 means none was seen.
	minReset int
}

// Run loops RUN_CYCLE -> EVALUATE -> WAIT until ctx is cancelled. An explicit
// loop, not self-rescheduling, so the stack stays flat over long runs.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome := s.runCycle(ctx)

		if outcome.allLimited {
			wait := s.cfg.MaxWait
			if reset := time.Duration(outcome.minReset) * time.Second; outcome.minReset > 0 && reset < s.cfg.MaxWait {
				wait = reset
			}
			s.log.Warn("all accounts rate limited", zap.Duration("wait", wait))
			if err := s.waiter.Wait(ctx, wait); err != nil {
				return err
			}
			continue
		}

		s.log.Info("cycle complete", zap.Duration("next_cycle_in", s.cfg.CyclePause))
		if err := s.waiter.Wait(ctx, s.cfg.CyclePause); err != nil {
			return err
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) cycleOutcome {
	outcome := cycleOutcome{allLimited: true}

	for _, sess := range s.sessions {
		if ctx.Err() != nil {
			return outcome
		}

		limited, reset := s.processAccount(ctx, sess)
		if !limited {
			outcome.allLimited = false
		}
		if limited && reset > 0 && (outcome.minReset == 0 || reset < outcome.minReset) {
			outcome.minReset = reset
		}

		if err := s.sleeper.Sleep(ctx, s.cfg.AccountPause); err != nil {
			return outcome
		}
	}

	return outcome
}

// processAccount is one account's work unit for the cycle. It reports whether
// the account ended the cycle rate-limited and, if so, the reset it observed.
// Per-account failures never propagate: each step either degrades or skips
// the rest of the unit.
func (s *Scheduler) processAccount(ctx context.Context, sess *Session) (limited bool, resetSeconds int) {
	account := sess.Account

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("account unit failed unexpectedly",
				zap.Int("account", account.Index+1),
				zap.Any("panic", r))
			sess.RefreshProxyIP(ctx)
			limited = account.RateLimit.Exhausted
			resetSeconds = 0
		}
	}()

	if !account.Authenticated() {
		s.log.Warn("no session token, re-authenticating", zap.Int("account", account.Index+1))
		if err := sess.Authenticate(ctx); err != nil {
			s.log.Error("re-authentication failed",
				zap.Int("account", account.Index+1),
				zap.Error(err))
			account.HasError = true
			return true, 0
		}
	}

	sess.CompleteSocialTasks(ctx)

	state, err := sess.CheckRateLimit(ctx)
	if err != nil {
		// Fail-safe: an unknown limiter state counts as exhausted.
		s.log.Warn("rate limit check failed, treating account as exhausted",
			zap.Int("account", account.Index+1),
			zap.Error(err))
		account.RateLimit = domain.RateLimitState{Exhausted: true}
		return true, 0
	}
	if state.Exhausted {
		return true, state.ResetSeconds
	}

	pointsBefore, err := sess.CheckPoints(ctx)
	if err != nil {
		s.log.Warn("points check failed",
			zap.Int("account", account.Index+1),
			zap.Error(err))
		return false, 0
	}
	if pointsBefore <= 0 {
		s.log.Warn("no points on record yet, skipping send", zap.Int("account", account.Index+1))
		return false, 0
	}
	account.PointsTotal = pointsBefore

	if _, err := sess.EnsureThread(ctx); err != nil {
		s.log.Warn("could not prepare a conversation",
			zap.Int("account", account.Index+1),
			zap.Error(err))
		return false, 0
	}

	text := s.prompts.Next()
	s.log.Info("sending message",
		zap.Int("account", account.Index+1),
		zap.String("message", text))

	result, err := sess.SendMessage(ctx, text)
	if err != nil {
		s.log.Warn("send failed",
			zap.Int("account", account.Index+1),
			zap.Int("failure_streak", account.FailureStreak+1),
			zap.Error(err))
		if account.RecordSendFailure(s.cfg.MaxFailedAttempts) {
			s.log.Warn("consecutive failures reached threshold, recycling conversation",
				zap.Int("account", account.Index+1))
		}
		return false, 0
	}

	if _, err := sess.CheckRateLimit(ctx); err != nil {
		s.log.Warn("rate limit re-check failed",
			zap.Int("account", account.Index+1),
			zap.Error(err))
	}

	pointsAfter, err := sess.CheckPoints(ctx)
	if err != nil {
		s.log.Warn("points re-check failed",
			zap.Int("account", account.Index+1),
			zap.Error(err))
		return false, 0
	}

	switch {
	case len(result) == 0:
		s.log.Warn("assistant produced no response",
			zap.Int("account", account.Index+1),
			zap.Int("failure_streak", account.FailureStreak+1))
		if account.RecordSendFailure(s.cfg.MaxFailedAttempts) {
			s.log.Warn("consecutive failures reached threshold, recycling conversation",
				zap.Int("account", account.Index+1))
		}
	case pointsAfter <= pointsBefore:
		// Muted response: the server replied but awarded nothing. Recycle the
		// conversation without touching the failure streak.
		s.log.Warn("points did not increase after send, recycling conversation",
			zap.Int("account", account.Index+1))
		account.RecordMutedResponse()
	default:
		account.RecordProgress(pointsAfter)
		s.log.Info("reward received",
			zap.Int("account", account.Index+1),
			zap.Int64("points", pointsAfter))
	}

	return false, 0
}
