package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"klokfarm/internal/adapters/api/klok"
	"klokfarm/internal/adapters/prompt"
	"klokfarm/internal/adapters/render/status"
	"klokfarm/internal/adapters/repo/textfile"
	"klokfarm/internal/adapters/signer/eth"
	"klokfarm/internal/application"
	"klokfarm/internal/domain"
	"klokfarm/internal/logging"
	"klokfarm/internal/ports"
)

type config struct {
	BaseURL           string
	IPProbeURL        string
	WalletsFile       string
	ProxiesFile       string
	ReferralCode      string
	MaxRetries        int
	RetryDelay        time.Duration
	MaxFailedAttempts int
	AccountPause      time.Duration
	CyclePause        time.Duration
	MaxWait           time.Duration
	TaskPause         time.Duration
	HTTPTimeout       time.Duration
	Debug             bool
}

func loadConfig() (*config, error) {
	v := viper.New()
	v.SetConfigName("klokfarm")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("KLOKFARM")
	v.AutomaticEnv()

	v.SetDefault("base_url", klok.DefaultBaseURL)
	v.SetDefault("ip_probe_url", klok.DefaultIPProbeURL)
	v.SetDefault("wallets_file", "wallets.txt")
	v.SetDefault("proxies_file", "proxies.txt")
	v.SetDefault("referral_code", "WNN5HT8C")
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay", "3s")
	v.SetDefault("max_failed_attempts", 3)
	v.SetDefault("account_pause", "5s")
	v.SetDefault("cycle_pause", "5s")
	v.SetDefault("max_wait", "24h")
	v.SetDefault("task_pause", "1s")
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return &config{
		BaseURL:           v.GetString("base_url"),
		IPProbeURL:        v.GetString("ip_probe_url"),
		WalletsFile:       v.GetString("wallets_file"),
		ProxiesFile:       v.GetString("proxies_file"),
		ReferralCode:      v.GetString("referral_code"),
		MaxRetries:        v.GetInt("max_retries"),
		RetryDelay:        v.GetDuration("retry_delay"),
		MaxFailedAttempts: v.GetInt("max_failed_attempts"),
		AccountPause:      v.GetDuration("account_pause"),
		CyclePause:        v.GetDuration("cycle_pause"),
		MaxWait:           v.GetDuration("max_wait"),
		TaskPause:         v.GetDuration("task_pause"),
		HTTPTimeout:       v.GetDuration("http_timeout"),
		Debug:             v.GetBool("debug"),
	}, nil
}

type app struct {
	cfg         *config
	log         *zap.Logger
	initializer *application.Initializer
	prompts     ports.PromptSource
}

func wireApp(cfg *config) *app {
	logger := logging.NewConsole(cfg.Debug)

	retry := application.RetryPolicy{
		MaxAttempts: cfg.MaxRetries,
		Delay:       cfg.RetryDelay,
		Sleeper:     ports.SystemSleeper{},
		Logger:      logger,
	}

	factory := klok.Factory(klok.Config{
		BaseURL:    cfg.BaseURL,
		IPProbeURL: cfg.IPProbeURL,
		Timeout:    cfg.HTTPTimeout,
	})

	sessionCfg := application.SessionConfig{
		ReferralCode: cfg.ReferralCode,
		TaskPause:    cfg.TaskPause,
	}

	return &app{
		cfg:         cfg,
		log:         logger,
		initializer: application.NewInitializer(factory, eth.Signer{}, ports.SystemClock{}, retry, sessionCfg, logger),
		prompts:     prompt.NewSource(),
	}
}

func (a *app) schedulerConfig() application.SchedulerConfig {
	return application.SchedulerConfig{
		AccountPause:      a.cfg.AccountPause,
		CyclePause:        a.cfg.CyclePause,
		MaxWait:           a.cfg.MaxWait,
		MaxFailedAttempts: a.cfg.MaxFailedAttempts,
	}
}

// bootstrap loads the input files, validates the pairing, initializes the
// fleet sequentially and prints the board. Configuration problems abort the
// process before any network traffic.
func (a *app) bootstrap(ctx context.Context, out io.Writer) ([]*application.Session, error) {
	wallets, err := textfile.LoadWallets(a.cfg.WalletsFile)
	if err != nil {
		return nil, err
	}

	proxies, err := textfile.LoadProxies(a.cfg.ProxiesFile)
	if err != nil {
		return nil, err
	}

	if len(proxies) <= len(wallets) {
		return nil, fmt.Errorf("%w: %d wallets, %d proxies", domain.ErrProxyShortage, len(wallets), len(proxies))
	}

	a.log.Info("inputs loaded",
		zap.Int("wallets", len(wallets)),
		zap.Int("proxies", len(proxies)))

	sessions := a.initializer.InitializeAll(ctx, wallets, proxies)

	accounts := make([]domain.Account, 0, len(sessions))
	for _, sess := range sessions {
		accounts = append(accounts, *sess.Account)
	}
	fmt.Fprintln(out, status.Render(accounts))

	return sessions, nil
}
