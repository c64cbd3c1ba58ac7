package application

import (
	"context"

	"go.uber.org/zap"

	"klokfarm/internal/domain"
	"klokfarm/internal/ports"
)

// Initializer bootstraps one Session per wallet/proxy pair. Authentication is
// the only fatal step: everything else degrades the session instead of
// aborting it.
type Initializer struct {
	factory ports.ChatAPIFactory
	signer  ports.Signer
	clock   ports.Clock
	retry   RetryPolicy
	cfg     SessionConfig
	log     *zap.Logger
}

func NewInitializer(factory ports.ChatAPIFactory, signer ports.Signer, clock ports.Clock, retry RetryPolicy, cfg SessionConfig, logger *zap.Logger) *Initializer {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Initializer{
		factory: factory,
		signer:  signer,
		clock:   clock,
		retry:   retry,
		cfg:     cfg,
		log:     logger,
	}
}

// Initialize always returns a Session; a failed bootstrap is reported through
// the account's HasError flag, never by dropping the account from the fleet.
func (in *Initializer) Initialize(ctx context.Context, index int, secret, proxyURL string) *Session {
	account := &domain.Account{
		Index:    index,
		Secret:   secret,
		ProxyURL: proxyURL,
		ProxyIP:  "Unknown",
	}

	in.log.Info("initializing account", zap.Int("account", index+1))

	api, err := in.factory(proxyURL)
	if err != nil {
		in.log.Error("api client setup failed",
			zap.Int("account", index+1),
			zap.Error(err))
		account.HasError = true
	}

	session := NewSession(account, api, in.signer, in.clock, in.retry, in.cfg, in.log)
	if api == nil || account.HasError {
		return session
	}

	session.RefreshProxyIP(ctx)

	if err := session.Authenticate(ctx); err != nil {
		in.log.Error("wallet verification failed",
			zap.Int("account", index+1),
			zap.Error(err))
		account.HasError = true
		account.RateLimit = domain.RateLimitState{Exhausted: true}
		return session
	}

	if points, err := session.CheckPoints(ctx); err != nil {
		in.log.Warn("initial points check failed",
			zap.Int("account", index+1),
			zap.Error(err))
	} else {
		account.PointsTotal = points
	}

	state, err := session.CheckRateLimit(ctx)
	if err != nil {
		in.log.Warn("initial rate limit check failed",
			zap.Int("account", index+1),
			zap.Error(err))
		state = domain.RateLimitState{Exhausted: true}
		account.RateLimit = state
	}

	if !state.Exhausted {
		if _, err := session.EnsureThread(ctx); err != nil {
			in.log.Warn("could not prepare a conversation",
				zap.Int("account", index+1),
				zap.Error(err))
		}
	}

	return session
}

// InitializeAll builds the fleet sequentially in stable index order. The
// wallet at index i is paired with the proxy at index i.
func (in *Initializer) InitializeAll(ctx context.Context, wallets, proxies []string) []*Session {
	sessions := make([]*Session, 0, len(wallets))
	for i, secret := range wallets {
		sessions = append(sessions, in.Initialize(ctx, i, secret, proxies[i]))
	}
	return sessions
}
