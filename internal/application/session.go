package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"klokfarm/internal/domain"
	"klokfarm/internal/ports"
)

// SeedMessage opens every freshly created conversation.
const SeedMessage = "Starting new conversation"

// DefaultSocialTasks are the engagement actions probed each cycle.
var DefaultSocialTasks = []string{"twitter_klok", "discord", "twitter_mira"}

var errNoAPIClient = errors.New("api client unavailable")

type SessionConfig struct {
	ReferralCode string
	SocialTasks  []string
	TaskPause    time.Duration
}

// Session owns one account's lifecycle against the chat service:
// authentication, rate-limit snapshots, conversation continuity and sends.
// All network calls go through the retry policy.
type Session struct {
	Account *domain.Account

	api     ports.ChatAPI
	signer  ports.Signer
	clock   ports.Clock
	sleeper ports.Sleeper
	retry   RetryPolicy
	cfg     SessionConfig
	log     *zap.Logger

	newThreadID func() string
}

func NewSession(account *domain.Account, api ports.ChatAPI, signer ports.Signer, clock ports.Clock, retry RetryPolicy, cfg SessionConfig, logger *zap.Logger) *Session {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sleeper := retry.Sleeper
	if sleeper == nil {
		sleeper = ports.SystemSleeper{}
	}
	if len(cfg.SocialTasks) == 0 {
		cfg.SocialTasks = DefaultSocialTasks
	}

	return &Session{
		Account:     account,
		api:         api,
		signer:      signer,
		clock:       clock,
		sleeper:     sleeper,
		retry:       retry,
		cfg:         cfg,
		log:         logger,
		newThreadID: uuid.NewString,
	}
}

type verifyOutcome struct {
	address string
	token   string
	exists  bool
}

// Authenticate runs the full sign-in protocol: derive the address, build a
// fresh challenge, sign it and submit it for verification. Every attempt uses
// a new nonce and timestamp. On success the session token is attached to the
// API client and a previous error mark is cleared.
func (s *Session) Authenticate(ctx context.Context) error {
	if s.api == nil {
		return errNoAPIClient
	}

	outcome, err := Retry(ctx, s.retry, "verify wallet", s.Account.Index, func(ctx context.Context) (verifyOutcome, error) {
		address, err := s.signer.Address(s.Account.Secret)
		if err != nil {
			return verifyOutcome{}, fmt.Errorf("derive wallet address: %w", err)
		}

		nonce, err := NewSignInNonce()
		if err != nil {
			return verifyOutcome{}, fmt.Errorf("generate sign-in nonce: %w", err)
		}

		message := BuildSignInMessage(address, nonce, s.clock.Now())
		signed, err := s.signer.SignMessage(s.Account.Secret, message)
		if err != nil {
			return verifyOutcome{}, fmt.Errorf("sign challenge: %w", err)
		}

		verified, err := s.api.Verify(ctx, ports.VerifyRequest{
			SignedMessage: signed,
			Message:       message,
			ReferralCode:  s.cfg.ReferralCode,
		})
		if err != nil {
			return verifyOutcome{}, err
		}

		return verifyOutcome{address: address, token: verified.SessionToken, exists: verified.UserExists}, nil
	})
	if err != nil {
		return err
	}

	s.Account.WalletAddress = outcome.address
	s.Account.SessionToken = outcome.token
	s.Account.HasError = false
	s.api.SetSessionToken(outcome.token)

	s.log.Info("wallet verified",
		zap.Int("account", s.Account.Index+1),
		zap.String("address", outcome.address),
		zap.Bool("user_exists", outcome.exists))

	return nil
}

// CheckRateLimit fetches the limiter snapshot and stores the interpreted
// state on the account: zero remaining means exhausted with the reported
// reset, anything else means capacity with a zero reset.
func (s *Session) CheckRateLimit(ctx context.Context) (domain.RateLimitState, error) {
	snap, err := Retry(ctx, s.retry, "check rate limit", s.Account.Index, func(ctx context.Context) (ports.RateLimitSnapshot, error) {
		return s.api.RateLimit(ctx)
	})
	if err != nil {
		return domain.RateLimitState{}, err
	}

	state := domain.RateLimitState{Remaining: snap.Remaining}
	if snap.Remaining == 0 {
		state = domain.RateLimitState{Exhausted: true, ResetSeconds: snap.ResetSeconds}
	}
	s.Account.RateLimit = state

	return state, nil
}

// CheckPoints fetches the cumulative score and logs the account status line.
func (s *Session) CheckPoints(ctx context.Context) (int64, error) {
	points, err := Retry(ctx, s.retry, "check points", s.Account.Index, func(ctx context.Context) (int64, error) {
		return s.api.Points(ctx)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("points checked",
		zap.Int("account", s.Account.Index+1),
		zap.String("ip", s.Account.ProxyIP),
		zap.Int64("points", points))

	return points, nil
}

// EnsureThread guarantees an active conversation: keep the current one, adopt
// the first existing one, or create a fresh one seeded with SeedMessage.
func (s *Session) EnsureThread(ctx context.Context) (string, error) {
	if s.Account.ActiveThreadID != "" {
		return s.Account.ActiveThreadID, nil
	}

	threads, err := Retry(ctx, s.retry, "list threads", s.Account.Index, func(ctx context.Context) ([]ports.Thread, error) {
		return s.api.Threads(ctx)
	})
	if err != nil {
		return "", fmt.Errorf("list threads: %w", err)
	}

	if len(threads) > 0 {
		s.Account.AdoptThread(threads[0].ID)
		s.log.Info("adopted existing conversation",
			zap.Int("account", s.Account.Index+1),
			zap.String("thread", threads[0].ID))
		return threads[0].ID, nil
	}

	return s.CreateThread(ctx)
}

// CreateThread starts a new conversation under a fresh identifier.
func (s *Session) CreateThread(ctx context.Context) (string, error) {
	threadID := s.newThreadID()

	_, err := Retry(ctx, s.retry, "create thread", s.Account.Index, func(ctx context.Context) (ports.ChatResult, error) {
		return s.api.SendChat(ctx, ports.ChatRequest{
			ThreadID:  threadID,
			Messages:  []ports.ChatMessage{{Role: "user", Content: SeedMessage}},
			CreatedAt: s.clock.Now(),
		})
	})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}

	s.Account.AdoptThread(threadID)
	s.log.Info("conversation created",
		zap.Int("account", s.Account.Index+1),
		zap.String("thread", threadID))

	return threadID, nil
}

// SendMessage posts one user turn to the active conversation. The assistant's
// reply is returned opaque; progress is judged from the points delta, not
// from its content.
func (s *Session) SendMessage(ctx context.Context, text string) (ports.ChatResult, error) {
	if !s.Account.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	threadID := s.Account.ActiveThreadID
	if threadID == "" {
		return nil, errors.New("no active thread")
	}

	result, err := Retry(ctx, s.retry, "send message", s.Account.Index, func(ctx context.Context) (ports.ChatResult, error) {
		return s.api.SendChat(ctx, ports.ChatRequest{
			ThreadID:  threadID,
			Messages:  []ports.ChatMessage{{Role: "user", Content: text}},
			CreatedAt: s.clock.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("message delivered",
		zap.Int("account", s.Account.Index+1),
		zap.String("thread", threadID))

	return result, nil
}

// RefreshProxyIP probes the proxy's externally visible address. Best-effort:
// on failure the previous value (or "Unknown") is kept.
func (s *Session) RefreshProxyIP(ctx context.Context) {
	ip, err := Retry(ctx, s.retry, "check proxy ip", s.Account.Index, func(ctx context.Context) (string, error) {
		return s.api.ExternalIP(ctx)
	})
	if err != nil {
		s.log.Warn("proxy ip check failed",
			zap.Int("account", s.Account.Index+1),
			zap.Error(err))
		if s.Account.ProxyIP == "" {
			s.Account.ProxyIP = "Unknown"
		}
		return
	}

	s.Account.ProxyIP = ip
	s.log.Info("proxy ip resolved",
		zap.Int("account", s.Account.Index+1),
		zap.String("ip", ip))
}

// CompleteSocialTasks probes each engagement task and claims the ones not yet
// completed. Every task is best-effort; failures are logged and skipped.
func (s *Session) CompleteSocialTasks(ctx context.Context) {
	for _, task := range s.cfg.SocialTasks {
		if err := s.completeSocialTask(ctx, task); err != nil {
			s.log.Error("social task failed",
				zap.Int("account", s.Account.Index+1),
				zap.String("task", task),
				zap.Error(err))
		}

		if err := s.sleeper.Sleep(ctx, s.cfg.TaskPause); err != nil {
			return
		}
	}
}

func (s *Session) completeSocialTask(ctx context.Context, task string) error {
	completed, err := Retry(ctx, s.retry, "check task "+task, s.Account.Index, func(ctx context.Context) (bool, error) {
		return s.api.TaskCompleted(ctx, task)
	})
	if err != nil {
		return err
	}
	if completed {
		return nil
	}

	awarded, err := Retry(ctx, s.retry, "complete task "+task, s.Account.Index, func(ctx context.Context) (int64, error) {
		return s.api.CompleteTask(ctx, task)
	})
	if err != nil {
		return err
	}

	if awarded > 0 {
		s.log.Info("social task completed",
			zap.Int("account", s.Account.Index+1),
			zap.String("task", task),
			zap.Int64("points_awarded", awarded))
	} else {
		s.log.Warn("social task completed without reward",
			zap.Int("account", s.Account.Index+1),
			zap.String("task", task))
	}

	return nil
}
