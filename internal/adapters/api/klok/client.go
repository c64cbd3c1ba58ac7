// Package klok implements the chat-service API surface over resty, one
// client per account so each keeps its own proxy and session token.
package klok

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	browser "github.com/itzngga/fake-useragent"

	"klokfarm/internal/ports"
)

const (
	DefaultBaseURL    = "https://api1-pp.klokapp.ai/v1"
	DefaultIPProbeURL = "https://api.ipify.org?format=json"
	DefaultTimeout    = 30 * time.Second

	chatModel    = "llama-3.3-70b-instruct"
	chatLanguage = "english"

	// createdAtLayout mirrors the browser client's ISO timestamps.
	createdAtLayout = "2006-01-02T15:04:05.000Z"
)

type Config struct {
	BaseURL    string
	IPProbeURL string
	ProxyURL   string
	Timeout    time.Duration
	UserAgent  string
}

type Client struct {
	http       *resty.Client
	ipProbeURL string
}

var _ ports.ChatAPI = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.IPProbeURL == "" {
		cfg.IPProbeURL = DefaultIPProbeURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = browser.Chrome()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("accept", "*/*").
		SetHeader("accept-language", "en-US,en;q=0.9").
		SetHeader("content-type", "application/json").
		SetHeader("origin", "https://klokapp.ai").
		SetHeader("referer", "https://klokapp.ai/").
		SetHeader("sec-ch-ua", `"Not(A:Brand";v="99", "Google Chrome";v="133", "Chromium";v="133"`).
		SetHeader("sec-ch-ua-mobile", "?0").
		SetHeader("sec-ch-ua-platform", `"Windows"`).
		SetHeader("sec-fetch-dest", "empty").
		SetHeader("sec-fetch-mode", "cors").
		SetHeader("sec-fetch-site", "same-site").
		SetHeader("user-agent", cfg.UserAgent)

	if cfg.ProxyURL != "" {
		httpClient.SetProxy(cfg.ProxyURL)
	}

	return &Client{http: httpClient, ipProbeURL: cfg.IPProbeURL}, nil
}

// Factory binds everything but the proxy, which varies per account.
func Factory(cfg Config) ports.ChatAPIFactory {
	return func(proxyURL string) (ports.ChatAPI, error) {
		bound := cfg
		bound.ProxyURL = proxyURL
		return NewClient(bound)
	}
}

func (c *Client) SetSessionToken(token string) {
	c.http.SetHeader("x-session-token", token)
}

func (c *Client) Verify(ctx context.Context, req ports.VerifyRequest) (ports.VerifyResult, error) {
	var out verifyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(verifyRequest{
			SignedMessage: req.SignedMessage,
			Message:       req.Message,
			ReferralCode:  req.ReferralCode,
		}).
		SetResult(&out).
		Post("/verify")
	if err != nil {
		return ports.VerifyResult{}, fmt.Errorf("post verify: %w", err)
	}
	if resp.IsError() {
		return ports.VerifyResult{}, statusError("verify", resp)
	}

	return ports.VerifyResult{SessionToken: out.SessionToken, UserExists: out.UserExists}, nil
}

func (c *Client) RateLimit(ctx context.Context) (ports.RateLimitSnapshot, error) {
	var out rateLimitResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/rate-limit")
	if err != nil {
		return ports.RateLimitSnapshot{}, fmt.Errorf("get rate limit: %w", err)
	}
	if resp.IsError() {
		return ports.RateLimitSnapshot{}, statusError("rate limit", resp)
	}

	return ports.RateLimitSnapshot{Remaining: out.Remaining, ResetSeconds: out.ResetTime}, nil
}

func (c *Client) Threads(ctx context.Context) ([]ports.Thread, error) {
	var out threadsResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/threads")
	if err != nil {
		return nil, fmt.Errorf("get threads: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("threads", resp)
	}

	threads := make([]ports.Thread, 0, len(out.Data))
	for _, entry := range out.Data {
		threads = append(threads, ports.Thread{ID: entry.ID})
	}

	return threads, nil
}

func (c *Client) SendChat(ctx context.Context, req ports.ChatRequest) (ports.ChatResult, error) {
	messages := make([]chatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	var out ports.ChatResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatPayload{
			ID:        req.ThreadID,
			Title:     "",
			Messages:  messages,
			Sources:   []string{},
			Model:     chatModel,
			CreatedAt: req.CreatedAt.UTC().Format(createdAtLayout),
			Language:  chatLanguage,
		}).
		SetResult(&out).
		Post("/chat")
	if err != nil {
		return nil, fmt.Errorf("post chat: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("chat", resp)
	}

	return out, nil
}

func (c *Client) Points(ctx context.Context) (int64, error) {
	var out pointsResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/points")
	if err != nil {
		return 0, fmt.Errorf("get points: %w", err)
	}
	if resp.IsError() {
		return 0, statusError("points", resp)
	}

	return out.TotalPoints, nil
}

func (c *Client) TaskCompleted(ctx context.Context, task string) (bool, error) {
	var out taskStatusResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/points/action/" + task)
	if err != nil {
		return false, fmt.Errorf("get task status: %w", err)
	}
	if resp.IsError() {
		return false, statusError("task status", resp)
	}

	return out.HasCompleted, nil
}

func (c *Client) CompleteTask(ctx context.Context, task string) (int64, error) {
	var out taskRewardResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Post("/points/action/" + task)
	if err != nil {
		return 0, fmt.Errorf("post task completion: %w", err)
	}
	if resp.IsError() {
		return 0, statusError("task completion", resp)
	}

	return out.PointsAwarded, nil
}

// ExternalIP asks the probe endpoint which address this client's proxy
// egresses from. The probe URL is absolute, so it bypasses the base URL.
func (c *Client) ExternalIP(ctx context.Context) (string, error) {
	var out ipResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.ipProbeURL)
	if err != nil {
		return "", fmt.Errorf("probe external ip: %w", err)
	}
	if resp.IsError() {
		return "", statusError("ip probe", resp)
	}

	return out.IP, nil
}

func statusError(op string, resp *resty.Response) error {
	return fmt.Errorf("%s: unexpected status %s", op, resp.Status())
}
